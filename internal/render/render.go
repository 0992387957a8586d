// Package render draws a diagram to image formats. Output is in world
// units, cropped to the drawing plus a margin, so it does not depend on
// the current pan or zoom.
package render

import (
	"errors"
	"image/color"
	"math"
	"strconv"
	"strings"

	"shegen/internal/diagram"
	"shegen/internal/router"
)

// ErrNothingToRender is returned for a model with no nodes.
var ErrNothingToRender = errors.New("nothing to render")

// DefaultPadding is the margin around the drawing.
const DefaultPadding = 20.0

// Options control both renderers.
type Options struct {
	// Padding around the drawing; zero means DefaultPadding.
	Padding float64
	// Title is written into the SVG <title>.
	Title string
}

func (o Options) padding() float64 {
	if o.Padding <= 0 {
		return DefaultPadding
	}
	return o.Padding
}

// frame maps world coordinates into the output image.
type frame struct {
	offX, offY float64
	w, h       int
}

func (f frame) at(p diagram.Point) diagram.Point {
	return diagram.Point{X: p.X + f.offX, Y: p.Y + f.offY}
}

func frameOf(m *diagram.Model, opts Options) (frame, error) {
	nodes := m.Nodes()
	if len(nodes) == 0 {
		return frame{}, ErrNothingToRender
	}
	b := nodes[0].Bounds()
	minX, minY, maxX, maxY := b.X, b.Y, b.Right(), b.Bottom()
	for _, n := range nodes[1:] {
		b := n.Bounds()
		minX = math.Min(minX, b.X)
		minY = math.Min(minY, b.Y)
		maxX = math.Max(maxX, b.Right())
		maxY = math.Max(maxY, b.Bottom())
	}
	pad := opts.padding()
	return frame{
		offX: pad - minX,
		offY: pad - minY,
		w:    int(math.Ceil(maxX - minX + 2*pad)),
		h:    int(math.Ceil(maxY - minY + 2*pad)),
	}, nil
}

// wirePaths builds every wire's curve in image coordinates. The curves
// stay inside the hull of their port centers, so they fit the frame.
func wirePaths(m *diagram.Model, f frame) []router.Path {
	var out []router.Path
	for _, w := range m.Wires() {
		a, okA := m.PortPosition(w.Source)
		b, okB := m.PortPosition(w.Target)
		if !okA || !okB {
			continue
		}
		out = append(out, router.NewPath(w.ID, f.at(a), f.at(b)))
	}
	return out
}

var fallbackColor = color.RGBA{R: 0x60, G: 0x60, B: 0x60, A: 0xff}

// parseColor understands #rgb, #rrggbb and rgb(r, g, b).
func parseColor(s string) (color.RGBA, bool) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "#"):
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return fallbackColor, false
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return fallbackColor, false
		}
		return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
	case strings.HasPrefix(strings.ToLower(s), "rgb(") && strings.HasSuffix(s, ")"):
		parts := strings.Split(s[4:len(s)-1], ",")
		if len(parts) != 3 {
			return fallbackColor, false
		}
		var c [3]uint8
		for i, p := range parts {
			v, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || v < 0 || v > 255 {
				return fallbackColor, false
			}
			c[i] = uint8(v)
		}
		return color.RGBA{R: c[0], G: c[1], B: c[2], A: 0xff}, true
	}
	return fallbackColor, false
}

func hexOf(c color.RGBA) string {
	const digits = "0123456789abcdef"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []uint8{c.R, c.G, c.B} {
		b[1+2*i] = digits[v>>4]
		b[2+2*i] = digits[v&0x0f]
	}
	return string(b)
}

// truncate shortens s to at most n runes, marking the cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// ColorHex normalizes a node color to #rrggbb for terminal styles.
// Unknown formats map to a neutral gray.
func ColorHex(s string) string {
	c, _ := parseColor(s)
	return hexOf(c)
}
