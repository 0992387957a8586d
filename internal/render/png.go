package render

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"shegen/internal/diagram"
)

// PNG writes the diagram as a PNG image.
func PNG(w io.Writer, m *diagram.Model, opts Options) error {
	dc, err := drawPNG(m, opts)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

// SavePNG renders the diagram to a file.
func SavePNG(filename string, m *diagram.Model, opts Options) error {
	dc, err := drawPNG(m, opts)
	if err != nil {
		return err
	}
	return dc.SavePNG(filename)
}

func drawPNG(m *diagram.Model, opts Options) (*gg.Context, error) {
	f, err := frameOf(m, opts)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(f.w, f.h)
	dc.SetColor(color.White)
	dc.Clear()

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    12,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	dc.SetFontFace(face)

	// Wires first so boxes sit on top.
	dc.SetLineWidth(2)
	dc.SetRGB255(0x55, 0x55, 0x55)
	for _, p := range wirePaths(m, f) {
		r := p.Reflected()
		dc.MoveTo(p.Start.X, p.Start.Y)
		dc.QuadraticTo(p.Control.X, p.Control.Y, p.Mid.X, p.Mid.Y)
		dc.QuadraticTo(r.X, r.Y, p.End.X, p.End.Y)
		dc.Stroke()
		drawArrowPNG(dc, p.End.X-8, p.End.Y, p.End.X, p.End.Y)
	}

	for _, n := range m.Nodes() {
		drawNodePNG(dc, n, f)
	}
	return dc, nil
}

func drawArrowPNG(dc *gg.Context, fx, fy, tx, ty float64) {
	dx, dy := tx-fx, ty-fy
	length := math.Hypot(dx, dy)
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length

	const size, spread = 7.0, 0.5
	dc.MoveTo(tx, ty)
	dc.LineTo(tx-size*dx+size*dy*spread, ty-size*dy-size*dx*spread)
	dc.LineTo(tx-size*dx-size*dy*spread, ty-size*dy+size*dx*spread)
	dc.ClosePath()
	dc.Fill()
}

func drawNodePNG(dc *gg.Context, n *diagram.Node, f frame) {
	pos := f.at(n.Position)
	accent, _ := parseColor(n.Color)
	h := n.Height()

	dc.DrawRoundedRectangle(pos.X, pos.Y, diagram.NodeWidth, h, 6)
	dc.SetColor(color.White)
	dc.FillPreserve()
	dc.SetColor(accent)
	dc.SetLineWidth(2)
	dc.Stroke()

	dc.DrawRectangle(pos.X, pos.Y, diagram.NodeWidth, diagram.HeaderHeight-20)
	dc.Fill()

	dc.SetColor(color.White)
	dc.DrawString(truncate(n.Title, titleChars), pos.X+10, pos.Y+24)
	if n.Description != "" {
		dc.SetRGB255(0x44, 0x44, 0x44)
		dc.DrawString(truncate(n.Description, descChars), pos.X+10, pos.Y+50)
	}

	for _, d := range []diagram.Direction{diagram.Input, diagram.Output} {
		ax, dx := 0.0, 10.0
		if d == diagram.Output {
			ax, dx = 1.0, -10.0
		}
		for _, p := range n.Ports(d) {
			c, _ := n.PortPosition(d, p.Index)
			c = f.at(c)

			dc.DrawCircle(c.X, c.Y, portRadius)
			if p.Connected {
				dc.SetColor(accent)
				dc.Fill()
			} else {
				dc.SetColor(color.White)
				dc.FillPreserve()
				dc.SetColor(accent)
				dc.Stroke()
			}

			dc.SetRGB255(0x33, 0x33, 0x33)
			dc.DrawStringAnchored(truncate(p.Name, portChars), c.X+dx, c.Y, ax, 0.35)
		}
	}
}
