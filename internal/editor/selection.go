package editor

import (
	"fmt"

	"shegen/internal/diagram"
)

// Select adds a node to the selection.
func (s *Session) Select(id string) bool {
	if _, ok := s.Model.Node(id); !ok {
		return false
	}
	s.selection[id] = true
	return true
}

// ToggleSelected flips a node in or out of the selection and reports
// whether it is now selected.
func (s *Session) ToggleSelected(id string) bool {
	if s.selection[id] {
		delete(s.selection, id)
		return false
	}
	return s.Select(id)
}

// IsSelected reports whether a node is selected.
func (s *Session) IsSelected(id string) bool { return s.selection[id] }

// SelectAll selects every node and returns how many there are.
func (s *Session) SelectAll() int {
	for _, n := range s.Model.Nodes() {
		s.selection[n.ID()] = true
	}
	return len(s.selection)
}

// ClearSelection empties the selection.
func (s *Session) ClearSelection() {
	for id := range s.selection {
		delete(s.selection, id)
	}
}

// Selection returns the selected nodes in model order. Nodes deleted
// since they were selected drop out.
func (s *Session) Selection() []*diagram.Node {
	var out []*diagram.Node
	for _, n := range s.Model.Nodes() {
		if s.selection[n.ID()] {
			out = append(out, n)
		}
	}
	for id := range s.selection {
		if _, ok := s.Model.Node(id); !ok {
			delete(s.selection, id)
		}
	}
	return out
}

// MoveSelection shifts every selected node by (dx, dy) world units as one
// undoable step. It returns the number of nodes moved.
func (s *Session) MoveSelection(dx, dy float64) int {
	nodes := s.Selection()
	if len(nodes) == 0 || (dx == 0 && dy == 0) {
		return 0
	}
	moves := make([]nodeMove, 0, len(nodes))
	for _, n := range nodes {
		to := diagram.Point{X: n.Position.X + dx, Y: n.Position.Y + dy}
		moves = append(moves, nodeMove{id: n.ID(), from: s.anchor(n.Position), to: s.anchor(to)})
		s.Model.MoveNode(n.ID(), to)
	}
	for _, n := range nodes {
		s.growCanvas(n)
	}
	s.record(&moveCmd{label: fmt.Sprintf("move %d boxes", len(nodes)), moves: moves})
	return len(nodes)
}

// DuplicateSelection copies every selected node as one undoable step.
// The copies become the selection.
func (s *Session) DuplicateSelection() ([]*diagram.Node, error) {
	nodes := s.Selection()
	if len(nodes) == 0 {
		return nil, nil
	}
	var copies []*diagram.Node
	err := s.Group(fmt.Sprintf("duplicate %d boxes", len(nodes)), func() error {
		for _, n := range nodes {
			dup, err := s.Duplicate(n.ID())
			if err != nil {
				return err
			}
			copies = append(copies, dup)
		}
		return nil
	})
	s.ClearSelection()
	for _, n := range copies {
		s.selection[n.ID()] = true
	}
	return copies, err
}

// DeleteSelection deletes every selected node and its wires as one
// undoable step and returns how many nodes went.
func (s *Session) DeleteSelection() int {
	nodes := s.Selection()
	if len(nodes) == 0 {
		return 0
	}
	removed := 0
	_ = s.Group(fmt.Sprintf("delete %d boxes", len(nodes)), func() error {
		for _, n := range nodes {
			if s.RemoveNode(n.ID()) {
				removed++
			}
		}
		return nil
	})
	s.ClearSelection()
	return removed
}
