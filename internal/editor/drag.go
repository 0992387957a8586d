package editor

import (
	"errors"

	"go.uber.org/zap"

	"shegen/internal/collision"
	"shegen/internal/diagram"
	"shegen/internal/router"
)

// DragState is the pointer gesture in progress.
type DragState int

const (
	DragIdle DragState = iota
	DraggingNode
	DraggingWire
)

type drag struct {
	state  DragState
	nodeID string
	// grab is the pointer position relative to the node's corner, in
	// world units.
	grab  diagram.Point
	start diagram.Point
	port  diagram.PortRef
	// others are the rest of the selection, carried along by the same
	// offset.
	others []follower
}

type follower struct {
	id    string
	start diagram.Point
}

// ErrNotWiring is returned by EndWire outside a wire gesture.
var ErrNotWiring = errors.New("editor: no wire in progress")

// State returns the current gesture.
func (s *Session) State() DragState { return s.drag.state }

// BeginDrag starts dragging a node from a screen point. When the node is
// selected the whole selection moves with it.
func (s *Session) BeginDrag(id string, sx, sy float64) bool {
	n, ok := s.Model.Node(id)
	if !ok {
		return false
	}
	w := s.Viewport.ScreenToWorld(diagram.Point{X: sx, Y: sy})
	d := drag{
		state:  DraggingNode,
		nodeID: id,
		grab:   diagram.Point{X: w.X - n.Position.X, Y: w.Y - n.Position.Y},
		start:  n.Position,
	}
	if s.selection[id] {
		for _, other := range s.Selection() {
			if other.ID() != id {
				d.others = append(d.others, follower{id: other.ID(), start: other.Position})
			}
		}
	}
	s.drag = d
	return true
}

// DraggedNode returns the id of the node being dragged.
func (s *Session) DraggedNode() (string, bool) {
	if s.drag.state != DraggingNode {
		return "", false
	}
	return s.drag.nodeID, true
}

// DragTo follows the pointer. In magnet mode the position snaps to the
// grid; in layer mode a position overlapping another node is refused and
// the node stays where it is. It reports whether the node moved.
func (s *Session) DragTo(sx, sy float64) bool {
	if s.drag.state != DraggingNode {
		return false
	}
	n, ok := s.Model.Node(s.drag.nodeID)
	if !ok {
		s.drag = drag{}
		return false
	}

	w := s.Viewport.ScreenToWorld(diagram.Point{X: sx, Y: sy})
	pos := diagram.Point{X: w.X - s.drag.grab.X, Y: w.Y - s.drag.grab.Y}
	if s.Policy.Magnet {
		pos.X, pos.Y = collision.SnapPoint(pos.X, pos.Y, s.Viewport.GridSize)
	}
	if pos == n.Position {
		return false
	}

	dx, dy := pos.X-s.drag.start.X, pos.Y-s.drag.start.Y
	targets := map[string]diagram.Point{n.ID(): pos}
	for _, f := range s.drag.others {
		targets[f.id] = diagram.Point{X: f.start.X + dx, Y: f.start.Y + dy}
	}
	if s.Policy.Layer && s.blocked(targets) {
		return false
	}

	for id, p := range targets {
		s.Model.MoveNode(id, p)
		for _, wire := range s.Model.WiresOf(id) {
			s.Router.Update(wire.ID)
		}
	}
	return true
}

// blocked reports whether any moving node would overlap a node that
// stays put.
func (s *Session) blocked(targets map[string]diagram.Point) bool {
	ix := s.Model.CollisionIndex()
	for id, p := range targets {
		n, ok := s.Model.Node(id)
		if !ok {
			continue
		}
		r := collision.Rect{X: p.X, Y: p.Y, W: diagram.NodeWidth, H: n.Height()}
		for _, hit := range ix.Colliding(id, r) {
			if _, moving := targets[hit]; !moving {
				return true
			}
		}
	}
	return false
}

// EndDrag finishes the gesture: the canvas grows to fit the node and the
// whole drag is recorded as one move.
func (s *Session) EndDrag() {
	d := s.drag
	s.drag = drag{}
	if d.state != DraggingNode {
		return
	}
	n, ok := s.Model.Node(d.nodeID)
	if !ok || n.Position == d.start {
		return
	}
	moved := []*diagram.Node{n}
	moves := []nodeMove{{id: n.ID(), from: s.anchor(d.start), to: s.anchor(n.Position)}}
	for _, f := range d.others {
		o, ok := s.Model.Node(f.id)
		if !ok || o.Position == f.start {
			continue
		}
		moved = append(moved, o)
		moves = append(moves, nodeMove{id: f.id, from: s.anchor(f.start), to: s.anchor(o.Position)})
	}
	for _, m := range moved {
		s.growCanvas(m)
	}
	s.record(&moveCmd{label: "move", moves: moves})
}

// CancelDrag ends any gesture, as when the pointer leaves the surface. A
// node drag is kept, exactly like EndDrag; a wire in progress is dropped.
func (s *Session) CancelDrag() {
	switch s.drag.state {
	case DraggingNode:
		s.EndDrag()
	default:
		s.drag = drag{}
	}
}

// BeginWire starts dragging a new wire out of a port.
func (s *Session) BeginWire(ref diagram.PortRef) bool {
	if _, err := s.Model.Port(ref); err != nil {
		return false
	}
	s.drag = drag{state: DraggingWire, port: ref}
	return true
}

// WirePreview returns the in-progress curve from the start port to the
// pointer.
func (s *Session) WirePreview(sx, sy float64) (router.Path, bool) {
	if s.drag.state != DraggingWire {
		return router.Path{}, false
	}
	from, ok := s.Router.PortPosition(s.drag.port)
	if !ok {
		return router.Path{}, false
	}
	return s.Router.Preview(from, router.Point{X: sx, Y: sy}), true
}

// EndWire drops the wire on whatever port lies within radius screen
// pixels of the pointer.
func (s *Session) EndWire(sx, sy, radius float64) (*diagram.Wire, error) {
	d := s.drag
	s.drag = drag{}
	if d.state != DraggingWire {
		return nil, ErrNotWiring
	}
	p := s.Viewport.ScreenToWorld(diagram.Point{X: sx, Y: sy})
	target, ok := s.Model.PortAt(p, radius/s.Viewport.Scale)
	if !ok {
		s.logger.Debug("wire dropped on empty space", zap.Stringer("from", d.port))
		return nil, diagram.ErrPortNotFound
	}
	return s.Connect(d.port, target)
}
