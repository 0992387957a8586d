package diagram

import "fmt"

// Wire joins an output port (Source) to an input port (Target).
type Wire struct {
	ID     string
	Source PortRef
	Target PortRef
}

// Touches reports whether either endpoint is on the node.
func (w *Wire) Touches(nodeID string) bool {
	return w.Source.NodeID == nodeID || w.Target.NodeID == nodeID
}

// Wire looks a wire up by id.
func (m *Model) Wire(id string) (*Wire, bool) {
	w, ok := m.wires[id]
	return w, ok
}

// Wires returns all wires in creation order.
func (m *Model) Wires() []*Wire {
	out := make([]*Wire, 0, len(m.wireOrder))
	for _, id := range m.wireOrder {
		out = append(out, m.wires[id])
	}
	return out
}

// WiresOf returns the wires with an endpoint on the node.
func (m *Model) WiresOf(nodeID string) []*Wire {
	var out []*Wire
	for _, id := range m.wireOrder {
		if w := m.wires[id]; w.Touches(nodeID) {
			out = append(out, w)
		}
	}
	return out
}

// CreateWire connects two ports. The refs may come in either order; the
// output end becomes Source. Anything but exactly one output and one
// input on existing nodes is rejected with ErrConnectionRejected and the
// model is left untouched. A node may be wired to itself.
func (m *Model) CreateWire(a, b PortRef) (*Wire, error) {
	return m.createWire("", a, b)
}

// RestoreWire recreates a wire with a known id, for undo and redo. It
// goes through the same checks as CreateWire.
func (m *Model) RestoreWire(w Wire) (*Wire, error) {
	if w.ID == "" {
		return nil, fmt.Errorf("%w: empty wire id", ErrConnectionRejected)
	}
	return m.createWire(w.ID, w.Source, w.Target)
}

func (m *Model) createWire(id string, a, b PortRef) (*Wire, error) {
	if a.Direction == b.Direction {
		return nil, fmt.Errorf("%w: %w: %s and %s", ErrConnectionRejected, ErrSameDirection, a, b)
	}
	src, dst := a, b
	if src.Direction == Input {
		src, dst = dst, src
	}

	sp, err := m.Port(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionRejected, err)
	}
	dp, err := m.Port(dst)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionRejected, err)
	}

	if id == "" {
		id = m.newID()
	} else if _, taken := m.wires[id]; taken {
		return nil, fmt.Errorf("%w: %w: wire %q", ErrConnectionRejected, ErrDuplicateID, id)
	}

	w := &Wire{ID: id, Source: src, Target: dst}
	m.wires[id] = w
	m.wireOrder = append(m.wireOrder, id)
	sp.Connected = true
	dp.Connected = true
	return w, nil
}

// DeleteWire removes a wire. Its ports stay marked connected while any
// other wire still uses them. Unknown ids are a no-op.
func (m *Model) DeleteWire(id string) bool {
	w, ok := m.wires[id]
	if !ok {
		return false
	}
	delete(m.wires, id)
	for i, wid := range m.wireOrder {
		if wid == id {
			m.wireOrder = append(m.wireOrder[:i], m.wireOrder[i+1:]...)
			break
		}
	}
	m.refreshConnected(w.Source)
	m.refreshConnected(w.Target)
	return true
}

func (m *Model) refreshConnected(ref PortRef) {
	p, err := m.Port(ref)
	if err != nil {
		return
	}
	p.Connected = m.portInUse(ref)
}

func (m *Model) portInUse(ref PortRef) bool {
	for _, w := range m.wires {
		if w.Source == ref || w.Target == ref {
			return true
		}
	}
	return false
}
