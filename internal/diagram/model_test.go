package diagram

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel() *Model {
	seq := 0
	return NewModel(
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id%d", seq)
		}),
		WithRand(rand.New(rand.NewSource(1))),
	)
}

func at(x, y float64) *Point { return &Point{X: x, Y: y} }

func mustNode(t *testing.T, m *Model, spec NodeSpec) *Node {
	t.Helper()
	n, err := m.CreateNode(spec, Placement{})
	require.NoError(t, err)
	return n
}

func TestCreateNodeDefaults(t *testing.T) {
	m := newTestModel()
	n := mustNode(t, m, NodeSpec{Title: "A", Inputs: 2, Outputs: 1, InputNames: []string{"", "clk"}, Position: at(10, 20)})

	assert.Equal(t, "id1", n.ID())
	assert.Equal(t, Point{X: 10, Y: 20}, n.Position)
	assert.Contains(t, Palette, n.Color)
	assert.Equal(t, []string{"Input 0", "clk"}, n.PortNames(Input))
	assert.Equal(t, []string{"Output 0"}, n.PortNames(Output))
	assert.True(t, n.HasCustomNames(Input))
	assert.False(t, n.HasCustomNames(Output))
	assert.Equal(t, 1, m.Len())
}

func TestCreateNodeKeepsExplicitColorAndID(t *testing.T) {
	m := newTestModel()
	n := mustNode(t, m, NodeSpec{ID: "box", Color: "rgb(1, 2, 3)", Position: at(0, 0)})
	assert.Equal(t, "box", n.ID())
	assert.Equal(t, "rgb(1, 2, 3)", n.Color)

	_, err := m.CreateNode(NodeSpec{ID: "box"}, Placement{})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestCreateNodeRejectsInvalidSpec(t *testing.T) {
	m := newTestModel()
	_, err := m.CreateNode(NodeSpec{Inputs: -1}, Placement{})
	require.ErrorIs(t, err, ErrInvalidSpec)
	assert.Contains(t, err.Error(), "inputs must be at least 0")
	assert.Zero(t, m.Len())
}

func TestCreateNodeCenteredPlacement(t *testing.T) {
	m := newTestModel()
	n, err := m.CreateNode(NodeSpec{Title: "c"}, Placement{Center: Point{X: 500, Y: 400}})
	require.NoError(t, err)
	assert.Equal(t, Point{X: 400, Y: 350}, n.Position)
}

func TestCreateNodeCollisionNudge(t *testing.T) {
	m := newTestModel()
	place := Placement{Center: Point{X: 500, Y: 400}, Grid: 25, AvoidCollisions: true}

	first, err := m.CreateNode(NodeSpec{Inputs: 1, Outputs: 1}, place)
	require.NoError(t, err)
	second, err := m.CreateNode(NodeSpec{Inputs: 1, Outputs: 1}, place)
	require.NoError(t, err)

	assert.Equal(t, Point{X: 400, Y: 350}, first.Position)
	assert.False(t, first.Bounds().Overlaps(second.Bounds()))
	assert.Equal(t, second.Position.X-first.Position.X, second.Position.Y-first.Position.Y)
}

func TestCreateNodeCollisionGivesUpAfterTenAttempts(t *testing.T) {
	m := newTestModel()
	mustNode(t, m, NodeSpec{Position: at(0, 0), Inputs: 20})

	n, err := m.CreateNode(NodeSpec{}, Placement{Center: Point{X: 100, Y: 50}, Grid: 1, AvoidCollisions: true})
	require.NoError(t, err)
	assert.Equal(t, Point{X: 10, Y: 10}, n.Position)
}

func TestNodeGeometry(t *testing.T) {
	m := newTestModel()
	n := mustNode(t, m, NodeSpec{Inputs: 2, Outputs: 1, Position: at(100, 100)})

	assert.Equal(t, 56.0+22*3+10, n.Height())

	p, ok := n.PortPosition(Input, 1)
	require.True(t, ok)
	assert.Equal(t, Point{X: 100, Y: 100 + 56 + 22 + 11}, p)

	p, ok = n.PortPosition(Output, 0)
	require.True(t, ok)
	assert.Equal(t, Point{X: 300, Y: 100 + 56 + 44 + 11}, p)

	_, ok = n.PortPosition(Output, 1)
	assert.False(t, ok)
}

func TestDeleteNodeIsIdempotent(t *testing.T) {
	m := newTestModel()
	n := mustNode(t, m, NodeSpec{Position: at(0, 0)})
	assert.True(t, m.DeleteNode(n.ID()))
	assert.False(t, m.DeleteNode(n.ID()))
	assert.False(t, m.DeleteNode("nope"))
	assert.Zero(t, m.Len())
}

func TestMoveAndShift(t *testing.T) {
	m := newTestModel()
	a := mustNode(t, m, NodeSpec{Position: at(0, 0)})
	b := mustNode(t, m, NodeSpec{Position: at(10, 10)})

	assert.True(t, m.MoveNode(a.ID(), Point{X: 50, Y: 60}))
	assert.False(t, m.MoveNode("nope", Point{}))

	m.ShiftAll(25, 50)
	assert.Equal(t, Point{X: 75, Y: 110}, a.Position)
	assert.Equal(t, Point{X: 35, Y: 60}, b.Position)
}

func TestDuplicateNode(t *testing.T) {
	m := newTestModel()
	a := mustNode(t, m, NodeSpec{Title: "A", Description: "d", Inputs: 1, Outputs: 2,
		OutputNames: []string{"x", "y"}, Color: "#fff", Position: at(100, 100)})
	b := mustNode(t, m, NodeSpec{Inputs: 1, Position: at(400, 100)})
	_, err := m.CreateWire(PortRef{NodeID: a.ID(), Index: 0, Direction: Output}, PortRef{NodeID: b.ID(), Index: 0, Direction: Input})
	require.NoError(t, err)

	dup, err := m.DuplicateNode(a.ID(), Point{X: 20, Y: 20})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), dup.ID())
	assert.Equal(t, "A", dup.Title)
	assert.Equal(t, "d", dup.Description)
	assert.Equal(t, "#fff", dup.Color)
	assert.Equal(t, []string{"x", "y"}, dup.PortNames(Output))
	assert.Equal(t, Point{X: 120, Y: 120}, dup.Position)
	assert.Empty(t, m.WiresOf(dup.ID()))
	assert.False(t, dup.Outputs[0].Connected)

	_, err = m.DuplicateNode("nope", Point{})
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestNodeAtAndPortAt(t *testing.T) {
	m := newTestModel()
	a := mustNode(t, m, NodeSpec{Inputs: 1, Position: at(0, 0)})
	b := mustNode(t, m, NodeSpec{Outputs: 1, Position: at(100, 0)})

	n, ok := m.NodeAt(Point{X: 150, Y: 10})
	require.True(t, ok)
	assert.Equal(t, b.ID(), n.ID())

	n, ok = m.NodeAt(Point{X: 50, Y: 10})
	require.True(t, ok)
	assert.Equal(t, a.ID(), n.ID())

	_, ok = m.NodeAt(Point{X: 1000, Y: 1000})
	assert.False(t, ok)

	ref, ok := m.PortAt(Point{X: 2, Y: 56 + 11}, 6)
	require.True(t, ok)
	assert.Equal(t, PortRef{NodeID: a.ID(), Index: 0, Direction: Input}, ref)

	ref, ok = m.PortAt(Point{X: 300, Y: 56 + 11}, 6)
	require.True(t, ok)
	assert.Equal(t, PortRef{NodeID: b.ID(), Index: 0, Direction: Output}, ref)
}

func TestClear(t *testing.T) {
	m := newTestModel()
	a := mustNode(t, m, NodeSpec{Outputs: 1, Position: at(0, 0)})
	b := mustNode(t, m, NodeSpec{Inputs: 1, Position: at(300, 0)})
	_, err := m.CreateWire(PortRef{NodeID: a.ID(), Direction: Output}, PortRef{NodeID: b.ID(), Direction: Input})
	require.NoError(t, err)

	m.Clear()
	assert.Zero(t, m.Len())
	assert.Empty(t, m.Wires())
}

func TestTextLimits(t *testing.T) {
	s, cut := TruncateText("héllo", 3)
	assert.True(t, cut)
	assert.Equal(t, "hél", s)
	s, cut = TruncateText("ok", 3)
	assert.False(t, cut)
	assert.Equal(t, "ok", s)

	assert.NoError(t, ValidateText("title", "desc"))
	err := ValidateText(string(make([]rune, MaxTitleLength+1)), "")
	require.ErrorIs(t, err, ErrInvalidSpec)
	assert.Contains(t, err.Error(), "title must be at most 256")
}

func TestValidateColor(t *testing.T) {
	tests := []struct {
		color string
		ok    bool
	}{
		{"#4285F4", true},
		{"#abc", true},
		{"rgb(10, 20, 30)", true},
		{"", false},
		{"red", false},
		{"#12", false},
	}
	for _, tt := range tests {
		err := ValidateColor(tt.color)
		if tt.ok {
			assert.NoError(t, err, tt.color)
		} else {
			assert.ErrorIs(t, err, ErrInvalidColor, tt.color)
		}
	}
}
