package diagram

import (
	"fmt"

	"shegen/internal/collision"
	"shegen/internal/viewport"
)

// Point is a world-space position.
type Point = viewport.Point

// Node metrics in world units. Every node has the same width; height
// depends on the number of port rows.
const (
	NodeWidth     = 200.0
	HeaderHeight  = 56.0
	PortRowHeight = 22.0
	NodePadding   = 10.0

	// DefaultNodeHeight is what placement assumes before ports are known.
	DefaultNodeHeight = 100.0

	// MaxPorts bounds the port count per direction (see NodeSpec tags).
	MaxPorts = 64

	// Text limits in runes, matching the NodeSpec tags.
	MaxTitleLength       = 256
	MaxDescriptionLength = 4096
)

// Direction tells inputs from outputs.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Output {
		return Input
	}
	return Output
}

// DefaultPortName is the name a port gets when none is supplied.
func DefaultPortName(d Direction, index int) string {
	if d == Output {
		return fmt.Sprintf("Output %d", index)
	}
	return fmt.Sprintf("Input %d", index)
}

// Port is a connection point on a node. Ports live exactly as long as
// their node.
type Port struct {
	Direction Direction
	Index     int
	Name      string
	// Connected is a styling hint kept in sync by wire operations.
	Connected bool
}

// PortRef addresses a port by node id, index and direction.
type PortRef struct {
	NodeID    string
	Index     int
	Direction Direction
}

func (r PortRef) String() string {
	return fmt.Sprintf("%s.%s%d", r.NodeID, r.Direction, r.Index)
}

// Node is a box on the canvas.
type Node struct {
	id          string
	Title       string
	Description string
	// Position is the base (world) position of the top-left corner.
	Position Point
	Color    string
	Inputs   []Port
	Outputs  []Port
}

// ID returns the node id. It never changes after creation.
func (n *Node) ID() string { return n.id }

// Ports returns the ports of one direction.
func (n *Node) Ports(d Direction) []Port {
	if d == Output {
		return n.Outputs
	}
	return n.Inputs
}

func (n *Node) port(d Direction, index int) *Port {
	ports := n.Inputs
	if d == Output {
		ports = n.Outputs
	}
	if index < 0 || index >= len(ports) {
		return nil
	}
	return &ports[index]
}

// Height returns the node height in world units.
func (n *Node) Height() float64 {
	return NodeHeight(len(n.Inputs), len(n.Outputs))
}

// NodeHeight computes the height of a node with the given port counts.
func NodeHeight(inputs, outputs int) float64 {
	return HeaderHeight + PortRowHeight*float64(inputs+outputs) + NodePadding
}

// Bounds returns the node's world-space box.
func (n *Node) Bounds() collision.Rect {
	return collision.Rect{X: n.Position.X, Y: n.Position.Y, W: NodeWidth, H: n.Height()}
}

// PortOffset returns the center of a port relative to the node's top-left
// corner. Input rows come first, then output rows; inputs sit on the left
// edge and outputs on the right.
func (n *Node) PortOffset(d Direction, index int) (Point, bool) {
	if n.port(d, index) == nil {
		return Point{}, false
	}
	row := index
	x := 0.0
	if d == Output {
		row += len(n.Inputs)
		x = NodeWidth
	}
	return Point{X: x, Y: HeaderHeight + PortRowHeight*float64(row) + PortRowHeight/2}, true
}

// PortPosition returns the world-space center of a port.
func (n *Node) PortPosition(d Direction, index int) (Point, bool) {
	off, ok := n.PortOffset(d, index)
	if !ok {
		return Point{}, false
	}
	return Point{X: n.Position.X + off.X, Y: n.Position.Y + off.Y}, true
}

// HasCustomNames reports whether any port of direction d has a name other
// than its default.
func (n *Node) HasCustomNames(d Direction) bool {
	for _, p := range n.Ports(d) {
		if p.Name != DefaultPortName(d, p.Index) {
			return true
		}
	}
	return false
}

// PortNames lists port names of one direction in index order.
func (n *Node) PortNames(d Direction) []string {
	ports := n.Ports(d)
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.Name
	}
	return names
}

// Spec captures everything needed to recreate the node, including its id
// and position.
func (n *Node) Spec() NodeSpec {
	pos := n.Position
	return NodeSpec{
		ID:          n.id,
		Title:       n.Title,
		Description: n.Description,
		Inputs:      len(n.Inputs),
		Outputs:     len(n.Outputs),
		InputNames:  n.PortNames(Input),
		OutputNames: n.PortNames(Output),
		Position:    &pos,
		Color:       n.Color,
	}
}

// NodeSpec describes a node to create.
type NodeSpec struct {
	// ID is optional; a fresh id is generated when empty.
	ID          string
	Title       string `validate:"max=256"`
	Description string `validate:"max=4096"`
	Inputs      int    `validate:"min=0,max=64"`
	Outputs     int    `validate:"min=0,max=64"`
	InputNames  []string
	OutputNames []string
	// Position is optional; nil means "place it for me".
	Position *Point
	// Color is optional; empty picks from the palette.
	Color string
}

func buildPorts(d Direction, count int, names []string) []Port {
	ports := make([]Port, count)
	for i := range ports {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		if name == "" {
			name = DefaultPortName(d, i)
		}
		ports[i] = Port{Direction: d, Index: i, Name: name}
	}
	return ports
}
