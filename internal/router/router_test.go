package router

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shegen/internal/diagram"
	"shegen/internal/viewport"
)

type fixture struct {
	model *diagram.Model
	view  *viewport.Viewport
	r     *Router
	a, b  *diagram.Node
	wire  *diagram.Wire
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m := diagram.NewModel()
	a, err := m.CreateNode(diagram.NodeSpec{Title: "A", Outputs: 1, Position: &diagram.Point{X: 100, Y: 100}}, diagram.Placement{})
	require.NoError(t, err)
	b, err := m.CreateNode(diagram.NodeSpec{Title: "B", Inputs: 1, Position: &diagram.Point{X: 400, Y: 100}}, diagram.Placement{})
	require.NoError(t, err)
	w, err := m.CreateWire(
		diagram.PortRef{NodeID: a.ID(), Index: 0, Direction: diagram.Output},
		diagram.PortRef{NodeID: b.ID(), Index: 0, Direction: diagram.Input},
	)
	require.NoError(t, err)

	v := viewport.New(800, 600)
	r := New(m, v, nil)
	r.UpdateAll()
	return &fixture{model: m, view: v, r: r, a: a, b: b, wire: w}
}

func TestPathGeometry(t *testing.T) {
	f := newFixture(t)

	p, ok := f.r.Path(f.wire.ID)
	require.True(t, ok)
	assert.Equal(t, Point{X: 300, Y: 167}, p.Start)
	assert.Equal(t, Point{X: 400, Y: 167}, p.End)
	assert.Equal(t, Point{X: 350, Y: 167}, p.Mid)
	assert.Equal(t, "M 300 167 Q 350 167, 350 167 T 400 167", p.D())
}

func TestEndpointsFollowTransform(t *testing.T) {
	f := newFixture(t)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 50; i++ {
		f.view.Scale = 0.1 + rng.Float64()*3
		f.view.TranslateX = -rng.Float64() * 1000
		f.view.TranslateY = -rng.Float64() * 1000
		f.r.UpdateAll()

		src, _ := f.model.PortPosition(f.wire.Source)
		dst, _ := f.model.PortPosition(f.wire.Target)
		p, ok := f.r.Path(f.wire.ID)
		require.True(t, ok)
		assert.Equal(t, f.view.WorldToScreen(src), p.Start)
		assert.Equal(t, f.view.WorldToScreen(dst), p.End)
		assert.Equal(t, p.Start, p.At(0))
		assert.Equal(t, p.End, p.At(1))
	}
}

func TestPathAt(t *testing.T) {
	p := NewPath("w", Point{X: 0, Y: 0}, Point{X: 100, Y: 50})
	assert.Equal(t, Point{X: 50, Y: 0}, p.Control)
	assert.Equal(t, Point{X: 50, Y: 50}, p.Reflected())
	assert.Equal(t, Point{X: 50, Y: 25}, p.At(0.5))
	assert.Len(t, p.Sample(10), 11)
}

func TestUpdateAfterMoveAndDelete(t *testing.T) {
	f := newFixture(t)

	f.model.MoveNode(f.b.ID(), diagram.Point{X: 500, Y: 200})
	f.r.UpdateAll()
	p, _ := f.r.Path(f.wire.ID)
	assert.Equal(t, Point{X: 500, Y: 267}, p.End)

	f.model.DeleteWire(f.wire.ID)
	assert.False(t, f.r.Update(f.wire.ID))
	_, ok := f.r.Path(f.wire.ID)
	assert.False(t, ok)
	assert.Empty(t, f.r.Paths())
}

func TestUpdateSingleWire(t *testing.T) {
	f := newFixture(t)
	f.view.TranslateX = -100
	require.True(t, f.r.Update(f.wire.ID))
	p, _ := f.r.Path(f.wire.ID)
	assert.Equal(t, Point{X: 200, Y: 167}, p.Start)
	assert.Len(t, f.r.Paths(), 1)
}

func TestHitTest(t *testing.T) {
	f := newFixture(t)

	hit, ok := f.r.HitTest(Point{X: 340, Y: 171}, 5)
	require.True(t, ok)
	assert.Equal(t, f.wire.ID, hit.WireID)
	assert.Equal(t, Point{X: 350, Y: 167}, hit.Mid)
	assert.InDelta(t, 4, hit.Distance, 1e-9)

	_, ok = f.r.HitTest(Point{X: 340, Y: 190}, 5)
	assert.False(t, ok)
}

func TestHitTestPicksNearest(t *testing.T) {
	f := newFixture(t)
	c, err := f.model.CreateNode(diagram.NodeSpec{Inputs: 1, Position: &diagram.Point{X: 400, Y: 110}}, diagram.Placement{})
	require.NoError(t, err)
	w2, err := f.model.CreateWire(f.wire.Source, diagram.PortRef{NodeID: c.ID(), Direction: diagram.Input})
	require.NoError(t, err)
	f.r.UpdateAll()

	hit, ok := f.r.HitTest(Point{X: 400, Y: 176}, 10)
	require.True(t, ok)
	assert.Equal(t, w2.ID, hit.WireID)
}

func TestPreview(t *testing.T) {
	f := newFixture(t)
	p := f.r.Preview(Point{X: 10, Y: 10}, Point{X: 30, Y: 50})
	assert.Empty(t, p.WireID)
	assert.Equal(t, Point{X: 20, Y: 30}, p.Mid)
}
