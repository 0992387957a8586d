package editor

import (
	"fmt"

	"shegen/internal/diagram"
)

// Positions inside commands are anchored: they are stored relative to the
// session origin, which moves whenever the canvas grows on the left or
// top and every node is shifted. See Session.anchor.

type addNodeCmd struct {
	spec diagram.NodeSpec
}

func newAddNodeCmd(s *Session, n *diagram.Node) *addNodeCmd {
	spec := n.Spec()
	pos := s.anchor(n.Position)
	spec.Position = &pos
	return &addNodeCmd{spec: spec}
}

func (c *addNodeCmd) Do(s *Session) error {
	spec := c.spec
	pos := s.unanchor(*c.spec.Position)
	spec.Position = &pos
	_, err := s.Model.CreateNode(spec, diagram.Placement{})
	return err
}

func (c *addNodeCmd) Undo(s *Session) error {
	if !s.Model.DeleteNode(c.spec.ID) {
		return fmt.Errorf("%w: %q", diagram.ErrNodeNotFound, c.spec.ID)
	}
	return nil
}

func (c *addNodeCmd) Label() string { return "add " + labelOf(c.spec) }

// removeNodeCmd keeps the node and the wires the cascade took with it.
type removeNodeCmd struct {
	add   *addNodeCmd
	wires []diagram.Wire
}

func (c *removeNodeCmd) Do(s *Session) error { return c.add.Undo(s) }

func (c *removeNodeCmd) Undo(s *Session) error {
	if err := c.add.Do(s); err != nil {
		return err
	}
	for _, w := range c.wires {
		if _, err := s.Model.RestoreWire(w); err != nil {
			return err
		}
	}
	return nil
}

func (c *removeNodeCmd) Label() string { return "delete " + labelOf(c.add.spec) }

type connectCmd struct {
	wire diagram.Wire
}

func (c *connectCmd) Do(s *Session) error {
	_, err := s.Model.RestoreWire(c.wire)
	return err
}

func (c *connectCmd) Undo(s *Session) error {
	s.Model.DeleteWire(c.wire.ID)
	return nil
}

func (c *connectCmd) Label() string { return "connect" }

type disconnectCmd struct {
	connect connectCmd
}

func (c *disconnectCmd) Do(s *Session) error   { return c.connect.Undo(s) }
func (c *disconnectCmd) Undo(s *Session) error { return c.connect.Do(s) }
func (c *disconnectCmd) Label() string         { return "disconnect" }

type nodeMove struct {
	id       string
	from, to diagram.Point
}

// moveCmd moves one or more nodes; Arrange records all of its moves as a
// single command.
type moveCmd struct {
	label string
	moves []nodeMove
}

func (c *moveCmd) apply(s *Session, undo bool) error {
	for _, mv := range c.moves {
		p := mv.to
		if undo {
			p = mv.from
		}
		if !s.Model.MoveNode(mv.id, s.unanchor(p)) {
			return fmt.Errorf("%w: %q", diagram.ErrNodeNotFound, mv.id)
		}
	}
	return nil
}

func (c *moveCmd) Do(s *Session) error   { return c.apply(s, false) }
func (c *moveCmd) Undo(s *Session) error { return c.apply(s, true) }
func (c *moveCmd) Label() string         { return c.label }

type editNodeCmd struct {
	id            string
	before, after nodeText
}

type nodeText struct {
	title, description string
}

func (c *editNodeCmd) set(s *Session, t nodeText) error {
	n, ok := s.Model.Node(c.id)
	if !ok {
		return fmt.Errorf("%w: %q", diagram.ErrNodeNotFound, c.id)
	}
	n.Title, n.Description = t.title, t.description
	return nil
}

func (c *editNodeCmd) Do(s *Session) error   { return c.set(s, c.after) }
func (c *editNodeCmd) Undo(s *Session) error { return c.set(s, c.before) }
func (c *editNodeCmd) Label() string         { return "edit" }

func labelOf(spec diagram.NodeSpec) string {
	if spec.Title != "" {
		return fmt.Sprintf("%q", spec.Title)
	}
	return "box"
}

type setColorCmd struct {
	id            string
	before, after string
}

func (c *setColorCmd) set(s *Session, color string) error {
	n, ok := s.Model.Node(c.id)
	if !ok {
		return fmt.Errorf("%w: %q", diagram.ErrNodeNotFound, c.id)
	}
	n.Color = color
	return nil
}

func (c *setColorCmd) Do(s *Session) error   { return c.set(s, c.after) }
func (c *setColorCmd) Undo(s *Session) error { return c.set(s, c.before) }
func (c *setColorCmd) Label() string         { return "color" }

// setPortsCmd keeps the wires that lost their port so undo can put them
// back.
type setPortsCmd struct {
	id            string
	before, after portNames
	removed       []diagram.Wire
}

type portNames struct {
	inputs, outputs []string
}

func (c *setPortsCmd) Do(s *Session) error {
	_, err := s.Model.SetPorts(c.id, c.after.inputs, c.after.outputs)
	return err
}

func (c *setPortsCmd) Undo(s *Session) error {
	if _, err := s.Model.SetPorts(c.id, c.before.inputs, c.before.outputs); err != nil {
		return err
	}
	for _, w := range c.removed {
		if _, err := s.Model.RestoreWire(w); err != nil {
			return err
		}
	}
	return nil
}

func (c *setPortsCmd) Label() string { return "ports" }

// batchCmd is several commands recorded as one step.
type batchCmd struct {
	label string
	cmds  []Command
}

func (c *batchCmd) Do(s *Session) error {
	for _, sub := range c.cmds {
		if err := sub.Do(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *batchCmd) Undo(s *Session) error {
	for i := len(c.cmds) - 1; i >= 0; i-- {
		if err := c.cmds[i].Undo(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *batchCmd) Label() string { return c.label }
