package render

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"shegen/internal/diagram"
)

const (
	titleChars = 22
	descChars  = 30
	portChars  = 12
	portRadius = 5
)

// SVG writes the diagram as a standalone SVG document.
func SVG(w io.Writer, m *diagram.Model, opts Options) error {
	f, err := frameOf(m, opts)
	if err != nil {
		return err
	}

	canvas := svg.New(w)
	canvas.Start(f.w, f.h)
	if opts.Title != "" {
		canvas.Title(opts.Title)
	}
	canvas.Rect(0, 0, f.w, f.h, "fill:#ffffff")

	canvas.Gid("wires")
	for _, p := range wirePaths(m, f) {
		canvas.Path(p.D(), "fill:none;stroke:#555555;stroke-width:2")
	}
	canvas.Gend()

	canvas.Gid("nodes")
	for _, n := range m.Nodes() {
		drawNodeSVG(canvas, n, f)
	}
	canvas.Gend()

	canvas.End()
	return nil
}

func drawNodeSVG(canvas *svg.SVG, n *diagram.Node, f frame) {
	pos := f.at(n.Position)
	x, y := px(pos.X), px(pos.Y)
	h := px(n.Height())
	accent, _ := parseColor(n.Color)
	fill := hexOf(accent)

	canvas.Roundrect(x, y, int(diagram.NodeWidth), h, 6, 6, "fill:#ffffff;stroke:"+fill+";stroke-width:2")
	canvas.Rect(x, y, int(diagram.NodeWidth), int(diagram.HeaderHeight)-20, "fill:"+fill)
	canvas.Text(x+10, y+24, truncate(n.Title, titleChars), "font-family:monospace;font-size:14px;font-weight:bold;fill:#ffffff")
	if n.Description != "" {
		canvas.Text(x+10, y+50, truncate(n.Description, descChars), "font-family:monospace;font-size:11px;fill:#444444")
	}

	for _, d := range []diagram.Direction{diagram.Input, diagram.Output} {
		anchor, dx := "start", 10
		if d == diagram.Output {
			anchor, dx = "end", -10
		}
		for _, p := range n.Ports(d) {
			c, _ := n.PortPosition(d, p.Index)
			c = f.at(c)
			dot := "fill:#ffffff;stroke:" + fill + ";stroke-width:2"
			if p.Connected {
				dot = "fill:" + fill
			}
			canvas.Circle(px(c.X), px(c.Y), portRadius, dot)
			canvas.Text(px(c.X)+dx, px(c.Y)+4, truncate(p.Name, portChars),
				fmt.Sprintf("font-family:monospace;font-size:11px;fill:#333333;text-anchor:%s", anchor))
		}
	}
}

func px(v float64) int { return int(math.Round(v)) }
