package viewport

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	v := New(800, 600)
	assert.Equal(t, 1.0, v.Scale)
	assert.Equal(t, 2000.0, v.CanvasWidth)
	assert.Equal(t, 2000.0, v.CanvasHeight)
	assert.Equal(t, 25.0, v.GridSize)
	assert.Equal(t, 100, v.ZoomPercent())
}

func TestTransformInvertibility(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	v := New(800, 600)
	for i := 0; i < 500; i++ {
		v.Scale = 0.1 + rng.Float64()*4
		v.TranslateX = (rng.Float64() - 0.5) * 5000
		v.TranslateY = (rng.Float64() - 0.5) * 5000
		p := Point{X: (rng.Float64() - 0.5) * 1e4, Y: (rng.Float64() - 0.5) * 1e4}

		back := v.ScreenToWorld(v.WorldToScreen(p))
		assert.InDelta(t, p.X, back.X, 1e-7)
		assert.InDelta(t, p.Y, back.Y, 1e-7)
	}
}

func TestWorldToScreen(t *testing.T) {
	v := New(800, 600)
	v.Scale = 2
	v.TranslateX, v.TranslateY = -100, -50
	assert.Equal(t, Point{X: 100, Y: 150}, v.WorldToScreen(Point{X: 100, Y: 100}))
	assert.Equal(t, Point{X: 100, Y: 100}, v.ScreenToWorld(Point{X: 100, Y: 150}))
}

func TestPanClamp(t *testing.T) {
	v := New(800, 600)
	rng := rand.New(rand.NewSource(3))

	v.BeginPan(400, 300)
	require.True(t, v.IsPanning())
	for i := 0; i < 200; i++ {
		v.PanTo(rng.Float64()*6000-3000, rng.Float64()*6000-3000)
		minX, minY := v.TranslateBounds()
		assert.GreaterOrEqual(t, v.TranslateX, minX)
		assert.LessOrEqual(t, v.TranslateX, 0.0)
		assert.GreaterOrEqual(t, v.TranslateY, minY)
		assert.LessOrEqual(t, v.TranslateY, 0.0)
	}
	v.EndPan()
	assert.False(t, v.IsPanning())
	assert.False(t, v.PanTo(0, 0))
}

func TestPanFollowsPointer(t *testing.T) {
	v := New(800, 600)
	v.BeginPan(400, 300)
	v.PanTo(300, 250)
	assert.Equal(t, -100.0, v.TranslateX)
	assert.Equal(t, -50.0, v.TranslateY)

	v.PanTo(500, 400)
	assert.Equal(t, 0.0, v.TranslateX)
	assert.Equal(t, 0.0, v.TranslateY)

	v.PanTo(-5000, -5000)
	assert.Equal(t, -1200.0, v.TranslateX)
	assert.Equal(t, -1400.0, v.TranslateY)
}

func TestPanCanvasSmallerThanContainer(t *testing.T) {
	v := New(800, 600)
	v.Scale = 0.2
	v.PanBy(-50, -50)
	assert.Equal(t, 0.0, v.TranslateX)
	assert.Equal(t, 0.0, v.TranslateY)
}

func TestZoom(t *testing.T) {
	v := New(800, 600)
	v.ZoomIn()
	assert.InDelta(t, 1.1, v.Scale, 1e-9)
	v.ResetZoom()
	for i := 0; i < 20; i++ {
		v.ZoomOut()
	}
	assert.Equal(t, MinScale, v.Scale)
}

func TestZoomOutReclamps(t *testing.T) {
	v := New(800, 600)
	v.PanBy(-1200, -1400)
	require.Equal(t, -1200.0, v.TranslateX)

	v.ZoomOut()
	minX, minY := v.TranslateBounds()
	assert.Equal(t, minX, v.TranslateX)
	assert.Equal(t, minY, v.TranslateY)
}

func TestFitToScreen(t *testing.T) {
	v := New(800, 600)
	v.FitToScreen()
	assert.InDelta(t, 0.27, v.Scale, 1e-9)
	assert.InDelta(t, (800-2000*0.27)/2, v.TranslateX, 1e-9)
	assert.InDelta(t, (600-2000*0.27)/2, v.TranslateY, 1e-9)
	assert.Equal(t, 27, v.ZoomPercent())
}

func TestVisibleCenter(t *testing.T) {
	v := New(800, 600)
	v.Scale = 2
	v.TranslateX, v.TranslateY = -200, -100
	assert.Equal(t, Point{X: 300, Y: 200}, v.VisibleCenter())
	assert.Equal(t, Rect{X: 100, Y: 50, W: 400, H: 300}, v.VisibleRect())
}

func TestExpandToFitNegativeSide(t *testing.T) {
	v := New(800, 600)
	v.Scale = 2

	sx, sy := v.ExpandToFit(Rect{X: -30, Y: -10, W: 200, H: 100})
	assert.Equal(t, 75.0, sx)
	assert.Equal(t, 50.0, sy)
	assert.Equal(t, 2075.0, v.CanvasWidth)
	assert.Equal(t, 2050.0, v.CanvasHeight)
	assert.Equal(t, -150.0, v.TranslateX)
	assert.Equal(t, -100.0, v.TranslateY)
}

func TestExpandToFitKeepsScreenPosition(t *testing.T) {
	v := New(800, 600)
	v.Scale = 1.5
	v.TranslateX, v.TranslateY = -300, -120
	p := Point{X: 640, Y: 410}
	before := v.WorldToScreen(p)

	sx, sy := v.ExpandToFit(Rect{X: -60, Y: -5, W: 200, H: 80})
	after := v.WorldToScreen(Point{X: p.X + sx, Y: p.Y + sy})
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)

	minX, minY := v.TranslateBounds()
	assert.GreaterOrEqual(t, v.TranslateX, minX)
	assert.LessOrEqual(t, v.TranslateX, 0.0)
	assert.GreaterOrEqual(t, v.TranslateY, minY)
	assert.LessOrEqual(t, v.TranslateY, 0.0)
}

func TestExpandToFitPositiveSide(t *testing.T) {
	v := New(800, 600)

	sx, sy := v.ExpandToFit(Rect{X: 1900, Y: 1990, W: 200, H: 110})
	assert.Zero(t, sx)
	assert.Zero(t, sy)
	assert.Equal(t, 2125.0, v.CanvasWidth)
	assert.Equal(t, 2125.0, v.CanvasHeight)
	assert.Zero(t, v.TranslateX)
}

func TestExpandToFitInside(t *testing.T) {
	v := New(800, 600)
	sx, sy := v.ExpandToFit(Rect{X: 10, Y: 10, W: 200, H: 100})
	assert.Zero(t, sx)
	assert.Zero(t, sy)
	assert.Equal(t, 2000.0, v.CanvasWidth)
	assert.Equal(t, 2000.0, v.CanvasHeight)
}

func TestEnsureCanvasNeverShrinks(t *testing.T) {
	v := New(800, 600)
	v.EnsureCanvas(1000, 3000)
	assert.Equal(t, 2000.0, v.CanvasWidth)
	assert.Equal(t, 3000.0, v.CanvasHeight)
}
