package editor

import (
	"sort"

	"shegen/internal/diagram"
)

// Layout spacing for Arrange, in world units.
const (
	arrangeMargin    = 50.0
	arrangeColumnGap = 100.0
	arrangeRowGap    = 40.0
)

// Arrange lays nodes out left to right in columns. A node's column is the
// length of the longest wire path reaching it from a node with no inputs
// wired; on a cycle the node visited first wins. Within a column nodes
// keep their vertical order. The whole layout is one undoable step. It
// returns the number of nodes moved.
func (s *Session) Arrange() int {
	nodes := s.Model.Nodes()
	if len(nodes) == 0 {
		return 0
	}

	cols := columns(s.Model)
	byCol := map[int][]*diagram.Node{}
	maxCol := 0
	for _, n := range nodes {
		c := cols[n.ID()]
		byCol[c] = append(byCol[c], n)
		if c > maxCol {
			maxCol = c
		}
	}

	var moves []nodeMove
	for c := 0; c <= maxCol; c++ {
		col := byCol[c]
		sort.SliceStable(col, func(i, j int) bool { return col[i].Position.Y < col[j].Position.Y })
		x := arrangeMargin + float64(c)*(diagram.NodeWidth+arrangeColumnGap)
		y := arrangeMargin
		for _, n := range col {
			pos := diagram.Point{X: x, Y: y}
			y += n.Height() + arrangeRowGap
			if pos == n.Position {
				continue
			}
			moves = append(moves, nodeMove{id: n.ID(), from: s.anchor(n.Position), to: s.anchor(pos)})
			s.Model.MoveNode(n.ID(), pos)
		}
	}
	if len(moves) == 0 {
		return 0
	}
	for _, n := range nodes {
		s.growCanvas(n)
	}
	s.record(&moveCmd{label: "arrange", moves: moves})
	return len(moves)
}

// columns assigns each node the longest-path depth from the sources of
// the wire graph. Self-wires are ignored and back edges found during the
// walk are cut.
func columns(m *diagram.Model) map[string]int {
	preds := map[string][]string{}
	for _, w := range m.Wires() {
		if w.Source.NodeID == w.Target.NodeID {
			continue
		}
		preds[w.Target.NodeID] = append(preds[w.Target.NodeID], w.Source.NodeID)
	}

	const (
		unseen = iota
		active
		done
	)
	state := map[string]int{}
	depth := map[string]int{}

	var visit func(id string) int
	visit = func(id string) int {
		switch state[id] {
		case done:
			return depth[id]
		case active:
			return -1
		}
		state[id] = active
		d := 0
		for _, p := range preds[id] {
			if pd := visit(p); pd >= 0 && pd+1 > d {
				d = pd + 1
			}
		}
		state[id] = done
		depth[id] = d
		return d
	}
	for _, n := range m.Nodes() {
		visit(n.ID())
	}
	return depth
}
