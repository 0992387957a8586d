package main

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"shegen/internal/diagram"
	"shegen/internal/editor"
	"shegen/internal/render"
	"shegen/internal/router"
	"shegen/internal/viewport"
)

type cellStyle struct {
	fg    string
	bold  bool
	faint bool
}

type cell struct {
	r     rune
	style cellStyle
}

// raster is the terminal-cell picture of the canvas.
type raster struct {
	w, h  int
	cells []cell
}

type boxChars struct {
	tl, tr, bl, br, h, v rune
}

var (
	plainBox    = boxChars{'┌', '┐', '└', '┘', '─', '│'}
	selectedBox = boxChars{'╔', '╗', '╚', '╝', '═', '║'}

	wireStyle    = cellStyle{fg: "#888888"}
	previewStyle = cellStyle{fg: "#F4B400", bold: true}
	outsideStyle = cellStyle{fg: "#444444", faint: true}
)

func newRaster(w, h int) *raster {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	r := &raster{w: w, h: h, cells: make([]cell, w*h)}
	for i := range r.cells {
		r.cells[i].r = ' '
	}
	return r
}

func (r *raster) set(x, y int, ch rune, st cellStyle) {
	if x < 0 || y < 0 || x >= r.w || y >= r.h {
		return
	}
	r.cells[y*r.w+x] = cell{r: ch, style: st}
}

func (r *raster) at(x, y int) rune {
	if x < 0 || y < 0 || x >= r.w || y >= r.h {
		return ' '
	}
	return r.cells[y*r.w+x].r
}

// text writes at most max runes of s starting at (x, y).
func (r *raster) text(x, y int, s string, max int, st cellStyle) {
	i := 0
	for _, ch := range s {
		if i >= max {
			break
		}
		r.set(x+i, y, ch, st)
		i++
	}
}

// lines returns the raster as plain text.
func (r *raster) lines() []string {
	out := make([]string, r.h)
	for y := 0; y < r.h; y++ {
		var b strings.Builder
		for x := 0; x < r.w; x++ {
			b.WriteRune(r.cells[y*r.w+x].r)
		}
		out[y] = b.String()
	}
	return out
}

// styledLines renders each row as runs of equally styled cells.
func (r *raster) styledLines() []string {
	styles := map[cellStyle]lipgloss.Style{}
	styleOf := func(cs cellStyle) lipgloss.Style {
		if s, ok := styles[cs]; ok {
			return s
		}
		s := lipgloss.NewStyle().Bold(cs.bold).Faint(cs.faint)
		if cs.fg != "" {
			s = s.Foreground(lipgloss.Color(cs.fg))
		}
		styles[cs] = s
		return s
	}

	out := make([]string, r.h)
	for y := 0; y < r.h; y++ {
		var b, run strings.Builder
		row := r.cells[y*r.w : (y+1)*r.w]
		cur := row[0].style
		flush := func() {
			if cur == (cellStyle{}) {
				b.WriteString(run.String())
			} else {
				b.WriteString(styleOf(cur).Render(run.String()))
			}
			run.Reset()
		}
		for _, c := range row {
			if c.style != cur {
				flush()
				cur = c.style
			}
			run.WriteRune(c.r)
		}
		flush()
		out[y] = b.String()
	}
	return out
}

func toCell(p viewport.Point) (int, int) {
	return int(math.Floor(p.X / cellWidth)), int(math.Floor(p.Y / cellHeight))
}

// cellCenter is the screen pixel at the middle of a cell.
func cellCenter(cx, cy int) viewport.Point {
	return viewport.Point{X: (float64(cx) + 0.5) * cellWidth, Y: (float64(cy) + 0.5) * cellHeight}
}

type scene struct {
	selected string
	preview  *router.Path
	cursorX  int
	cursorY  int
}

// drawScene rasterizes the session into a w×h cell grid: the area outside
// the canvas, then wires, then nodes on top, then the cursor.
func drawScene(s *editor.Session, w, h int, sc scene) *raster {
	r := newRaster(w, h)
	vp := s.Viewport

	for y := 0; y < r.h; y++ {
		for x := 0; x < r.w; x++ {
			p := vp.ScreenToWorld(cellCenter(x, y))
			if p.X < 0 || p.Y < 0 || p.X > vp.CanvasWidth || p.Y > vp.CanvasHeight {
				r.set(x, y, '░', outsideStyle)
			}
		}
	}

	for _, p := range s.Router.Paths() {
		drawPath(r, p, wireStyle)
	}
	if sc.preview != nil {
		drawPath(r, *sc.preview, previewStyle)
	}
	for _, n := range s.Model.Nodes() {
		drawNode(r, vp, n, n.ID() == sc.selected || s.IsSelected(n.ID()))
	}

	if sc.cursorX >= 0 && sc.cursorY >= 0 {
		r.set(sc.cursorX, sc.cursorY, '█', cellStyle{})
	}
	return r
}

func drawPath(r *raster, p router.Path, st cellStyle) {
	span := math.Hypot(p.End.X-p.Start.X, p.End.Y-p.Start.Y)
	n := int(span / (cellWidth / 2))
	if n < 8 {
		n = 8
	}
	if n > 400 {
		n = 400
	}
	pts := p.Sample(n)
	for i := 1; i < len(pts); i++ {
		x, y := toCell(pts[i])
		r.set(x, y, strokeRune(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y), st)
	}
}

// strokeRune picks a line character for a step in screen pixels. Cells
// are twice as tall as wide, so slopes are compared in cell units.
func strokeRune(dx, dy float64) rune {
	ax, ay := math.Abs(dx)/cellWidth, math.Abs(dy)/cellHeight
	switch {
	case ax >= 2*ay:
		return '─'
	case ay >= 2*ax:
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	default:
		return '╱'
	}
}

func drawNode(r *raster, vp *viewport.Viewport, n *diagram.Node, selected bool) {
	b := n.Bounds()
	tl := vp.WorldToScreen(diagram.Point{X: b.X, Y: b.Y})
	br := vp.WorldToScreen(diagram.Point{X: b.Right(), Y: b.Bottom()})
	x0, y0 := toCell(tl)
	x1 := int(math.Ceil(br.X/cellWidth)) - 1
	y1 := int(math.Ceil(br.Y/cellHeight)) - 1

	st := cellStyle{fg: render.ColorHex(n.Color), bold: selected}
	if x1-x0 < 2 || y1-y0 < 1 {
		r.set(x0, y0, '■', st)
		return
	}

	chars := plainBox
	if selected {
		chars = selectedBox
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			switch {
			case y == y0 && x == x0:
				r.set(x, y, chars.tl, st)
			case y == y0 && x == x1:
				r.set(x, y, chars.tr, st)
			case y == y1 && x == x0:
				r.set(x, y, chars.bl, st)
			case y == y1 && x == x1:
				r.set(x, y, chars.br, st)
			case y == y0 || y == y1:
				r.set(x, y, chars.h, st)
			case x == x0 || x == x1:
				r.set(x, y, chars.v, st)
			default:
				r.set(x, y, ' ', cellStyle{})
			}
		}
	}

	inner := x1 - x0 - 3
	if y0+1 < y1 {
		title := n.Title
		if title == "" {
			title = "(untitled)"
		}
		r.text(x0+2, y0+1, title, inner, cellStyle{fg: st.fg, bold: true})
	}
	_, headerEnd := toCell(vp.WorldToScreen(diagram.Point{X: b.X, Y: b.Y + diagram.HeaderHeight}))
	if n.Description != "" && y0+2 < y1 && y0+2 < headerEnd {
		r.text(x0+2, y0+2, n.Description, inner, cellStyle{faint: true})
	}

	nameWidth := (x1-x0)/2 - 2
	for _, d := range []diagram.Direction{diagram.Input, diagram.Output} {
		for _, p := range n.Ports(d) {
			c, _ := n.PortPosition(d, p.Index)
			_, cy := toCell(vp.WorldToScreen(c))
			if cy <= y0 || cy >= y1 {
				continue
			}
			dot := '○'
			if p.Connected {
				dot = '●'
			}
			if d == diagram.Input {
				r.set(x0, cy, dot, st)
				if nameWidth >= 3 {
					r.text(x0+2, cy, p.Name, nameWidth, cellStyle{})
				}
				continue
			}
			r.set(x1, cy, dot, st)
			if nameWidth >= 3 {
				name := []rune(p.Name)
				if len(name) > nameWidth {
					name = name[:nameWidth]
				}
				r.text(x1-1-len(name), cy, string(name), nameWidth, cellStyle{})
			}
		}
	}
}
