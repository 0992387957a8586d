package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func out(id string, i int) PortRef { return PortRef{NodeID: id, Index: i, Direction: Output} }
func in(id string, i int) PortRef  { return PortRef{NodeID: id, Index: i, Direction: Input} }

func twoNodes(t *testing.T) (*Model, *Node, *Node) {
	t.Helper()
	m := newTestModel()
	a := mustNode(t, m, NodeSpec{Title: "A", Outputs: 1, Position: at(100, 100)})
	b := mustNode(t, m, NodeSpec{Title: "B", Inputs: 1, Position: at(400, 100)})
	return m, a, b
}

func TestCreateWireNormalizesDirection(t *testing.T) {
	m, a, b := twoNodes(t)

	w, err := m.CreateWire(in(b.ID(), 0), out(a.ID(), 0))
	require.NoError(t, err)
	assert.Equal(t, out(a.ID(), 0), w.Source)
	assert.Equal(t, in(b.ID(), 0), w.Target)
	assert.True(t, a.Outputs[0].Connected)
	assert.True(t, b.Inputs[0].Connected)
}

func TestCreateWireBetweenTwoOutputsIsRejected(t *testing.T) {
	m := newTestModel()
	a := mustNode(t, m, NodeSpec{Outputs: 1, Position: at(0, 0)})
	c := mustNode(t, m, NodeSpec{Outputs: 1, Position: at(300, 0)})

	w, err := m.CreateWire(out(a.ID(), 0), out(c.ID(), 0))
	assert.Nil(t, w)
	require.ErrorIs(t, err, ErrConnectionRejected)
	assert.ErrorIs(t, err, ErrSameDirection)
	assert.Empty(t, m.Wires())
	assert.False(t, a.Outputs[0].Connected)
	assert.False(t, c.Outputs[0].Connected)
}

func TestCreateWireMissingEndpoints(t *testing.T) {
	m, a, b := twoNodes(t)

	tests := []struct {
		name   string
		src    PortRef
		dst    PortRef
		reason error
	}{
		{"missing source node", out("ghost", 0), in(b.ID(), 0), ErrNodeNotFound},
		{"missing target node", out(a.ID(), 0), in("ghost", 0), ErrNodeNotFound},
		{"port index out of range", out(a.ID(), 3), in(b.ID(), 0), ErrPortNotFound},
		{"negative index", out(a.ID(), 0), in(b.ID(), -1), ErrPortNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.CreateWire(tt.src, tt.dst)
			assert.ErrorIs(t, err, ErrConnectionRejected)
			assert.ErrorIs(t, err, tt.reason)
		})
	}
	assert.Empty(t, m.Wires())
	assert.False(t, a.Outputs[0].Connected)
}

func TestSelfWireIsAllowed(t *testing.T) {
	m := newTestModel()
	n := mustNode(t, m, NodeSpec{Inputs: 1, Outputs: 1, Position: at(0, 0)})
	_, err := m.CreateWire(out(n.ID(), 0), in(n.ID(), 0))
	assert.NoError(t, err)
}

func TestDeleteWireKeepsSharedPortConnected(t *testing.T) {
	m := newTestModel()
	a := mustNode(t, m, NodeSpec{Outputs: 1, Position: at(0, 0)})
	b := mustNode(t, m, NodeSpec{Inputs: 1, Position: at(300, 0)})
	c := mustNode(t, m, NodeSpec{Inputs: 1, Position: at(300, 200)})

	w1, err := m.CreateWire(out(a.ID(), 0), in(b.ID(), 0))
	require.NoError(t, err)
	w2, err := m.CreateWire(out(a.ID(), 0), in(c.ID(), 0))
	require.NoError(t, err)

	assert.True(t, m.DeleteWire(w1.ID))
	assert.True(t, a.Outputs[0].Connected)
	assert.False(t, b.Inputs[0].Connected)
	assert.True(t, c.Inputs[0].Connected)

	assert.True(t, m.DeleteWire(w2.ID))
	assert.False(t, a.Outputs[0].Connected)
	assert.False(t, m.DeleteWire(w2.ID))
}

func TestCascadeDelete(t *testing.T) {
	m := newTestModel()
	a := mustNode(t, m, NodeSpec{Inputs: 1, Outputs: 2, Position: at(0, 0)})
	b := mustNode(t, m, NodeSpec{Inputs: 2, Outputs: 1, Position: at(300, 0)})
	c := mustNode(t, m, NodeSpec{Inputs: 1, Position: at(600, 0)})

	for _, pair := range [][2]PortRef{
		{out(a.ID(), 0), in(b.ID(), 0)},
		{out(a.ID(), 1), in(b.ID(), 1)},
		{out(b.ID(), 0), in(c.ID(), 0)},
		{out(b.ID(), 0), in(a.ID(), 0)},
	} {
		_, err := m.CreateWire(pair[0], pair[1])
		require.NoError(t, err)
	}

	require.True(t, m.DeleteNode(b.ID()))
	assert.Empty(t, m.Wires())
	for _, w := range m.Wires() {
		_, okS := m.Node(w.Source.NodeID)
		_, okT := m.Node(w.Target.NodeID)
		assert.True(t, okS && okT)
	}
	assert.False(t, a.Outputs[0].Connected)
	assert.False(t, a.Inputs[0].Connected)
	assert.False(t, c.Inputs[0].Connected)
}

func TestRestoreWire(t *testing.T) {
	m, a, b := twoNodes(t)
	w, err := m.CreateWire(out(a.ID(), 0), in(b.ID(), 0))
	require.NoError(t, err)
	saved := *w

	require.True(t, m.DeleteWire(w.ID))
	again, err := m.RestoreWire(saved)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, again.ID)

	_, err = m.RestoreWire(saved)
	assert.ErrorIs(t, err, ErrDuplicateID)

	_, err = m.RestoreWire(Wire{Source: saved.Source, Target: saved.Target})
	assert.ErrorIs(t, err, ErrConnectionRejected)
}

func TestWiresOrderAndLookup(t *testing.T) {
	m := newTestModel()
	a := mustNode(t, m, NodeSpec{Outputs: 1, Position: at(0, 0)})
	b := mustNode(t, m, NodeSpec{Inputs: 2, Position: at(300, 0)})

	w1, err := m.CreateWire(out(a.ID(), 0), in(b.ID(), 0))
	require.NoError(t, err)
	w2, err := m.CreateWire(out(a.ID(), 0), in(b.ID(), 1))
	require.NoError(t, err)

	wires := m.Wires()
	require.Len(t, wires, 2)
	assert.Equal(t, w1.ID, wires[0].ID)
	assert.Equal(t, w2.ID, wires[1].ID)

	got, ok := m.Wire(w2.ID)
	require.True(t, ok)
	assert.Same(t, w2, got)
	assert.Len(t, m.WiresOf(b.ID()), 2)
}

func TestSetPortsDropsWiresOnRemovedPorts(t *testing.T) {
	m := newTestModel()
	a := mustNode(t, m, NodeSpec{Outputs: 2, Position: at(0, 0)})
	b := mustNode(t, m, NodeSpec{Inputs: 2, Position: at(300, 0)})
	w0, err := m.CreateWire(out(a.ID(), 0), in(b.ID(), 0))
	require.NoError(t, err)
	w1, err := m.CreateWire(out(a.ID(), 1), in(b.ID(), 1))
	require.NoError(t, err)

	removed, err := m.SetPorts(b.ID(), []string{"data"}, []string{"", "done"})
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, w1.ID, removed[0].ID)

	_, ok := m.Wire(w0.ID)
	assert.True(t, ok)
	assert.Equal(t, []string{"data"}, b.PortNames(Input))
	assert.Equal(t, []string{"Output 0", "done"}, b.PortNames(Output))
	assert.True(t, b.Inputs[0].Connected)
	assert.False(t, a.Outputs[1].Connected)
	assert.Equal(t, NodeHeight(1, 2), b.Height())
}

func TestSetPortsRejectsTooMany(t *testing.T) {
	m := newTestModel()
	a := mustNode(t, m, NodeSpec{Inputs: 1, Position: at(0, 0)})

	_, err := m.SetPorts(a.ID(), make([]string, MaxPorts+1), nil)
	assert.ErrorIs(t, err, ErrInvalidSpec)
	assert.Len(t, a.Inputs, 1)

	_, err = m.SetPorts("ghost", nil, nil)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}
