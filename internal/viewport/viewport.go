// Package viewport implements the affine pan/zoom transform between world
// coordinates (where node positions live) and screen coordinates (pixels
// of the host surface), along with the canvas bounds that grow to fit
// content.
//
// The transform is screen = world*Scale + Translate. Panning is clamped so
// the canvas always covers the container; discrete zoom steps re-clamp as
// well, fit-to-screen does not because it centers a canvas that may be
// smaller than the container.
package viewport

import "math"

// Defaults for a fresh viewport.
const (
	DefaultScale        = 1.0
	DefaultCanvasWidth  = 2000.0
	DefaultCanvasHeight = 2000.0
	DefaultGridSize     = 25.0

	ZoomStep = 0.1
	MinScale = 0.1

	// FitMargin leaves a border around the canvas after FitToScreen.
	FitMargin = 0.9
)

// Point is a 2-D coordinate; whether it is world or screen depends on the
// call that produced it.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned world-space box.
type Rect struct {
	X, Y, W, H float64
}

// PanState is the pan gesture state.
type PanState int

const (
	PanIdle PanState = iota
	Panning
)

// Viewport owns the transform and canvas bounds.
type Viewport struct {
	Scale        float64
	TranslateX   float64
	TranslateY   float64
	CanvasWidth  float64
	CanvasHeight float64
	GridSize     float64

	// ContainerWidth and ContainerHeight are the host surface size in
	// screen pixels.
	ContainerWidth  float64
	ContainerHeight float64

	pan       PanState
	panStartX float64
	panStartY float64
}

// New returns a viewport with default scale, canvas and grid for a
// container of the given size.
func New(containerW, containerH float64) *Viewport {
	return &Viewport{
		Scale:           DefaultScale,
		CanvasWidth:     DefaultCanvasWidth,
		CanvasHeight:    DefaultCanvasHeight,
		GridSize:        DefaultGridSize,
		ContainerWidth:  containerW,
		ContainerHeight: containerH,
	}
}

// Reset restores the transform and canvas size to defaults but keeps the
// container size and grid.
func (v *Viewport) Reset() {
	v.Scale = DefaultScale
	v.TranslateX, v.TranslateY = 0, 0
	v.CanvasWidth, v.CanvasHeight = DefaultCanvasWidth, DefaultCanvasHeight
	v.pan = PanIdle
}

// SetContainer records a new host surface size and re-clamps the pan.
func (v *Viewport) SetContainer(w, h float64) {
	v.ContainerWidth, v.ContainerHeight = w, h
	v.Clamp()
}

// WorldToScreen maps a world point to the screen.
func (v *Viewport) WorldToScreen(p Point) Point {
	return Point{
		X: p.X*v.Scale + v.TranslateX,
		Y: p.Y*v.Scale + v.TranslateY,
	}
}

// ScreenToWorld is the inverse of WorldToScreen.
func (v *Viewport) ScreenToWorld(p Point) Point {
	return Point{
		X: (p.X - v.TranslateX) / v.Scale,
		Y: (p.Y - v.TranslateY) / v.Scale,
	}
}

// VisibleCenter returns the world point at the center of the container.
func (v *Viewport) VisibleCenter() Point {
	return v.ScreenToWorld(Point{X: v.ContainerWidth / 2, Y: v.ContainerHeight / 2})
}

// VisibleRect returns the world-space area currently on screen.
func (v *Viewport) VisibleRect() Rect {
	tl := v.ScreenToWorld(Point{})
	return Rect{X: tl.X, Y: tl.Y, W: v.ContainerWidth / v.Scale, H: v.ContainerHeight / v.Scale}
}

// TranslateBounds returns the allowed [min, 0] range for each axis.
func (v *Viewport) TranslateBounds() (minX, minY float64) {
	return -(v.CanvasWidth*v.Scale - v.ContainerWidth), -(v.CanvasHeight*v.Scale - v.ContainerHeight)
}

// Clamp forces the translation back into its allowed range.
func (v *Viewport) Clamp() {
	minX, minY := v.TranslateBounds()
	v.TranslateX = clamp(v.TranslateX, minX)
	v.TranslateY = clamp(v.TranslateY, minY)
}

// clamp mirrors min(0, max(lo, t)): when the canvas is smaller than the
// container lo is positive and the result pins to 0.
func clamp(t, lo float64) float64 {
	return math.Min(0, math.Max(lo, t))
}

// ZoomIn increases the scale by one step.
func (v *Viewport) ZoomIn() {
	v.Scale += ZoomStep
	v.Clamp()
}

// ZoomOut decreases the scale by one step, never below MinScale.
func (v *Viewport) ZoomOut() {
	v.Scale = math.Max(MinScale, v.Scale-ZoomStep)
	v.Clamp()
}

// ResetZoom returns to 100%.
func (v *Viewport) ResetZoom() {
	v.Scale = DefaultScale
	v.Clamp()
}

// FitToScreen scales the whole canvas into the container with a margin
// and centers it.
func (v *Viewport) FitToScreen() {
	if v.CanvasWidth <= 0 || v.CanvasHeight <= 0 || v.ContainerWidth <= 0 || v.ContainerHeight <= 0 {
		return
	}
	sx := v.ContainerWidth / v.CanvasWidth
	sy := v.ContainerHeight / v.CanvasHeight
	v.Scale = math.Min(sx, sy) * FitMargin
	v.TranslateX = (v.ContainerWidth - v.CanvasWidth*v.Scale) / 2
	v.TranslateY = (v.ContainerHeight - v.CanvasHeight*v.Scale) / 2
}

// ZoomPercent is the scale rounded to a whole percentage.
func (v *Viewport) ZoomPercent() int {
	return int(math.Round(v.Scale * 100))
}

// ExpandToFit grows the canvas so r lies inside it. Growth is rounded to
// the grid. When the canvas grows on the left or top, the returned shift
// must be added to every node position by the caller; translate moves
// back by the same amount on screen, so nothing moves on screen and a
// translate that was in its clamp range stays there.
func (v *Viewport) ExpandToFit(r Rect) (shiftX, shiftY float64) {
	g := v.GridSize
	if g <= 0 {
		g = DefaultGridSize
	}

	if r.X < 0 {
		shiftX = math.Abs(math.Floor(r.X/g)*g) + g
		v.CanvasWidth += shiftX
		v.TranslateX -= shiftX * v.Scale
	}
	if r.Y < 0 {
		shiftY = math.Abs(math.Floor(r.Y/g)*g) + g
		v.CanvasHeight += shiftY
		v.TranslateY -= shiftY * v.Scale
	}

	right := r.X + shiftX + r.W
	bottom := r.Y + shiftY + r.H
	if right > v.CanvasWidth {
		v.CanvasWidth = math.Ceil(right/g)*g + g
	}
	if bottom > v.CanvasHeight {
		v.CanvasHeight = math.Ceil(bottom/g)*g + g
	}
	return shiftX, shiftY
}

// EnsureCanvas grows the canvas to at least w×h. It never shrinks.
func (v *Viewport) EnsureCanvas(w, h float64) {
	if w > v.CanvasWidth {
		v.CanvasWidth = w
	}
	if h > v.CanvasHeight {
		v.CanvasHeight = h
	}
}
