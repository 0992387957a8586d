// Package diagram is the graph model of the editor: nodes with ordered
// input and output ports, and wires joining an output port to an input
// port. Nodes and wires are kept in an id-indexed arena; wires refer to
// ports by (node id, index, direction) so connectivity never depends on
// where anything is drawn.
//
// Invariants the model keeps:
//   - node ids are unique and never change;
//   - every wire joins an output port to an input port of existing nodes;
//   - deleting a node deletes its wires first.
package diagram

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"shegen/internal/collision"
)

// Placement decides where a node without an explicit position goes.
type Placement struct {
	// Center is the visible center of the viewport in world coordinates.
	Center Point
	// Grid is the diagonal step used when avoiding collisions.
	Grid float64
	// AvoidCollisions enables the diagonal nudge (layer mode).
	AvoidCollisions bool
}

// MaxPlacementAttempts caps the diagonal nudge.
const MaxPlacementAttempts = 10

// Option configures a Model.
type Option func(*Model)

// WithIDGenerator replaces the id generator. Used by tests.
func WithIDGenerator(gen func() string) Option {
	return func(m *Model) { m.newID = gen }
}

// WithRand replaces the color picker's random source.
func WithRand(rng *rand.Rand) Option {
	return func(m *Model) { m.rng = rng }
}

// Model owns nodes and wires.
type Model struct {
	nodes     map[string]*Node
	order     []string
	wires     map[string]*Wire
	wireOrder []string

	newID func() string
	rng   *rand.Rand
}

// NewModel returns an empty model.
func NewModel(opts ...Option) *Model {
	m := &Model{
		nodes: make(map[string]*Node),
		wires: make(map[string]*Wire),
		newID: uuid.NewString,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Len returns the number of nodes.
func (m *Model) Len() int { return len(m.order) }

// Node looks a node up by id.
func (m *Model) Node(id string) (*Node, bool) {
	n, ok := m.nodes[id]
	return n, ok
}

// Nodes returns all nodes in creation order.
func (m *Model) Nodes() []*Node {
	out := make([]*Node, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.nodes[id])
	}
	return out
}

// CreateNode adds a node built from spec. When spec has no position the
// node is centered on place.Center and, if place.AvoidCollisions is set,
// nudged diagonally by place.Grid until it is free or the attempts run
// out, in which case the overlap is accepted.
func (m *Model) CreateNode(spec NodeSpec, place Placement) (*Node, error) {
	if err := validateSpec(spec); err != nil {
		return nil, err
	}

	id := spec.ID
	if id == "" {
		id = m.newID()
	} else if _, taken := m.nodes[id]; taken {
		return nil, fmt.Errorf("%w: node %q", ErrDuplicateID, id)
	}

	color := spec.Color
	if color == "" {
		color = randomColor(m.rng)
	}

	n := &Node{
		id:          id,
		Title:       spec.Title,
		Description: spec.Description,
		Color:       color,
		Inputs:      buildPorts(Input, spec.Inputs, spec.InputNames),
		Outputs:     buildPorts(Output, spec.Outputs, spec.OutputNames),
	}

	if spec.Position != nil {
		n.Position = *spec.Position
	} else {
		n.Position = m.place(n, place)
	}

	m.nodes[id] = n
	m.order = append(m.order, id)
	return n, nil
}

func (m *Model) place(n *Node, place Placement) Point {
	x := place.Center.X - NodeWidth/2
	y := place.Center.Y - DefaultNodeHeight/2
	if !place.AvoidCollisions {
		return Point{X: x, Y: y}
	}
	ix := m.CollisionIndex()
	h := n.Height()
	x, y, _ = collision.Nudge(x, y, place.Grid, MaxPlacementAttempts, func(x, y float64) bool {
		return ix.HasCollision("", collision.Rect{X: x, Y: y, W: NodeWidth, H: h})
	})
	return Point{X: x, Y: y}
}

// DeleteNode removes a node and every wire touching it. Unknown ids are a
// no-op; the return value says whether anything was removed.
func (m *Model) DeleteNode(id string) bool {
	if _, ok := m.nodes[id]; !ok {
		return false
	}
	for _, w := range m.WiresOf(id) {
		m.DeleteWire(w.ID)
	}
	delete(m.nodes, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// MoveNode sets a node's base position.
func (m *Model) MoveNode(id string, pos Point) bool {
	n, ok := m.nodes[id]
	if !ok {
		return false
	}
	n.Position = pos
	return true
}

// ShiftAll adds (dx, dy) to every node position. Canvas growth on the
// left or top edge uses it to keep the drawing in place.
func (m *Model) ShiftAll(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	for _, n := range m.nodes {
		n.Position.X += dx
		n.Position.Y += dy
	}
}

// DuplicateNode copies a node's title, description, ports and color to a
// new node shifted by offset. Wires are not copied.
func (m *Model) DuplicateNode(id string, offset Point) (*Node, error) {
	n, ok := m.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	spec := n.Spec()
	spec.ID = ""
	pos := Point{X: n.Position.X + offset.X, Y: n.Position.Y + offset.Y}
	spec.Position = &pos
	return m.CreateNode(spec, Placement{})
}

// SetPorts replaces a node's ports with one port per name; an empty name
// gets the default. Surviving ports keep their index. Wires on ports that
// no longer exist are deleted and returned.
func (m *Model) SetPorts(id string, inputs, outputs []string) ([]Wire, error) {
	n, ok := m.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	if err := validateSpec(NodeSpec{Inputs: len(inputs), Outputs: len(outputs)}); err != nil {
		return nil, err
	}

	var removed []Wire
	for _, w := range m.WiresOf(id) {
		if (w.Source.NodeID == id && w.Source.Index >= len(outputs)) ||
			(w.Target.NodeID == id && w.Target.Index >= len(inputs)) {
			removed = append(removed, *w)
			m.DeleteWire(w.ID)
		}
	}

	n.Inputs = buildPorts(Input, len(inputs), inputs)
	n.Outputs = buildPorts(Output, len(outputs), outputs)
	for _, w := range m.WiresOf(id) {
		m.refreshConnected(w.Source)
		m.refreshConnected(w.Target)
	}
	return removed, nil
}

// Clear removes every node and wire.
func (m *Model) Clear() {
	m.nodes = make(map[string]*Node)
	m.order = nil
	m.wires = make(map[string]*Wire)
	m.wireOrder = nil
}

// Port resolves a reference.
func (m *Model) Port(ref PortRef) (*Port, error) {
	n, ok := m.nodes[ref.NodeID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, ref.NodeID)
	}
	p := n.port(ref.Direction, ref.Index)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrPortNotFound, ref)
	}
	return p, nil
}

// PortPosition returns the world-space center of a referenced port.
func (m *Model) PortPosition(ref PortRef) (Point, bool) {
	n, ok := m.nodes[ref.NodeID]
	if !ok {
		return Point{}, false
	}
	return n.PortPosition(ref.Direction, ref.Index)
}

// CollisionIndex snapshots node boxes for overlap queries.
func (m *Model) CollisionIndex() *collision.Index {
	entries := make([]collision.Entry, 0, len(m.order))
	for _, id := range m.order {
		entries = append(entries, collision.Entry{ID: id, Rect: m.nodes[id].Bounds()})
	}
	return collision.NewIndex(entries)
}

// NodeAt returns the topmost node containing a world point. Later nodes
// are drawn over earlier ones.
func (m *Model) NodeAt(p Point) (*Node, bool) {
	for i := len(m.order) - 1; i >= 0; i-- {
		n := m.nodes[m.order[i]]
		b := n.Bounds()
		if p.X >= b.X && p.X < b.Right() && p.Y >= b.Y && p.Y < b.Bottom() {
			return n, true
		}
	}
	return nil, false
}

// PortAt returns the port whose center is within radius of p.
func (m *Model) PortAt(p Point, radius float64) (PortRef, bool) {
	for i := len(m.order) - 1; i >= 0; i-- {
		n := m.nodes[m.order[i]]
		for _, d := range []Direction{Input, Output} {
			for _, port := range n.Ports(d) {
				c, _ := n.PortPosition(d, port.Index)
				dx, dy := c.X-p.X, c.Y-p.Y
				if dx*dx+dy*dy <= radius*radius {
					return PortRef{NodeID: n.id, Index: port.Index, Direction: d}, true
				}
			}
		}
	}
	return PortRef{}, false
}
