// Package editor ties the diagram model, viewport and router together
// into an editing session: every user-level operation goes through here,
// is recorded for undo, and leaves the wire paths up to date.
package editor

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"shegen/internal/collision"
	"shegen/internal/diagram"
	"shegen/internal/router"
	"shegen/internal/shelang"
	"shegen/internal/viewport"
)

var (
	ErrNothingToUndo = errors.New("editor: nothing to undo")
	ErrNothingToRedo = errors.New("editor: nothing to redo")
)

// Options configures a new session.
type Options struct {
	ContainerWidth  float64
	ContainerHeight float64
	GridSize        float64
	CanvasWidth     float64
	CanvasHeight    float64
	Policy          collision.Policy
	HistoryLimit    int
	Logger          *zap.Logger
	ModelOptions    []diagram.Option
}

// Session is one open scheme.
type Session struct {
	Model    *diagram.Model
	Viewport *viewport.Viewport
	Router   *router.Router
	History  *History
	Policy   collision.Policy
	Filename string
	Dirty    bool

	logger *zap.Logger
	drag   drag
	// canvasW and canvasH are the configured minimum canvas size.
	canvasW, canvasH float64
	// group collects commands while Group runs.
	group     *batchCmd
	selection map[string]bool
	// origin is the total shift applied to all nodes by canvas growth.
	origin         diagram.Point
	refreshPending bool
}

// New returns an empty session.
func New(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	vp := viewport.New(opts.ContainerWidth, opts.ContainerHeight)
	if opts.GridSize > 0 {
		vp.GridSize = opts.GridSize
	}
	vp.EnsureCanvas(opts.CanvasWidth, opts.CanvasHeight)

	m := diagram.NewModel(opts.ModelOptions...)
	return &Session{
		Model:    m,
		Viewport: vp,
		Router:   router.New(m, vp, logger),
		History:  NewHistory(opts.HistoryLimit),
		Policy:   opts.Policy,
		logger:   logger,
		canvasW:  opts.CanvasWidth,
		canvasH:  opts.CanvasHeight,

		selection: make(map[string]bool),
	}
}

// resetViewport returns to 100% zoom, no pan and the configured canvas.
func (s *Session) resetViewport() {
	s.Viewport.Reset()
	s.Viewport.EnsureCanvas(s.canvasW, s.canvasH)
}

func (s *Session) anchor(p diagram.Point) diagram.Point {
	return diagram.Point{X: p.X - s.origin.X, Y: p.Y - s.origin.Y}
}

func (s *Session) unanchor(p diagram.Point) diagram.Point {
	return diagram.Point{X: p.X + s.origin.X, Y: p.Y + s.origin.Y}
}

// record stores an applied command and refreshes derived state.
func (s *Session) record(c Command) {
	if s.group != nil {
		s.group.cmds = append(s.group.cmds, c)
	} else {
		s.History.Push(c)
	}
	s.changed()
	s.logger.Debug("command", zap.String("label", c.Label()))
}

// changed marks the session dirty and recomputes wire paths, unless the
// canvas just grew, in which case paths wait for Refresh.
func (s *Session) changed() {
	s.Dirty = true
	if !s.refreshPending {
		s.Router.UpdateAll()
	}
}

// placement is where new nodes without a position go.
func (s *Session) placement() diagram.Placement {
	return diagram.Placement{
		Center:          s.Viewport.VisibleCenter(),
		Grid:            s.Viewport.GridSize,
		AvoidCollisions: s.Policy.Layer,
	}
}

// AddNode creates a node. Without a position it is centered in the view,
// nudged off other nodes in layer mode and snapped in magnet mode.
func (s *Session) AddNode(spec diagram.NodeSpec) (*diagram.Node, error) {
	auto := spec.Position == nil
	n, err := s.Model.CreateNode(spec, s.placement())
	if err != nil {
		return nil, err
	}
	if auto && s.Policy.Magnet {
		x, y := collision.SnapPoint(n.Position.X, n.Position.Y, s.Viewport.GridSize)
		s.Model.MoveNode(n.ID(), diagram.Point{X: x, Y: y})
	}
	s.growCanvas(n)
	s.record(newAddNodeCmd(s, n))
	return n, nil
}

// RemoveNode deletes a node and its wires. Unknown ids are ignored.
func (s *Session) RemoveNode(id string) bool {
	n, ok := s.Model.Node(id)
	if !ok {
		return false
	}
	c := &removeNodeCmd{add: newAddNodeCmd(s, n)}
	for _, w := range s.Model.WiresOf(id) {
		c.wires = append(c.wires, *w)
	}
	s.Model.DeleteNode(id)
	s.record(c)
	return true
}

// Duplicate copies a node one grid step down and to the right.
func (s *Session) Duplicate(id string) (*diagram.Node, error) {
	g := s.Viewport.GridSize
	n, err := s.Model.DuplicateNode(id, diagram.Point{X: g, Y: g})
	if err != nil {
		return nil, err
	}
	s.growCanvas(n)
	s.record(newAddNodeCmd(s, n))
	return n, nil
}

// Connect wires two ports in either order.
func (s *Session) Connect(a, b diagram.PortRef) (*diagram.Wire, error) {
	w, err := s.Model.CreateWire(a, b)
	if err != nil {
		s.logger.Debug("connection rejected", zap.Stringer("a", a), zap.Stringer("b", b), zap.Error(err))
		return nil, err
	}
	s.record(&connectCmd{wire: *w})
	return w, nil
}

// Disconnect deletes a wire. Unknown ids are ignored.
func (s *Session) Disconnect(wireID string) bool {
	w, ok := s.Model.Wire(wireID)
	if !ok {
		return false
	}
	c := &disconnectCmd{connect: connectCmd{wire: *w}}
	s.Model.DeleteWire(wireID)
	s.record(c)
	return true
}

// SetNodePosition moves a node as a single undoable step, growing the
// canvas if needed.
func (s *Session) SetNodePosition(id string, pos diagram.Point) bool {
	n, ok := s.Model.Node(id)
	if !ok {
		return false
	}
	if n.Position == pos {
		return true
	}
	mv := nodeMove{id: id, from: s.anchor(n.Position), to: s.anchor(pos)}
	s.Model.MoveNode(id, pos)
	s.growCanvas(n)
	s.record(&moveCmd{label: "move", moves: []nodeMove{mv}})
	return true
}

// Group runs fn and records every command it applies as a single undo
// step with the given label. Nested groups join the outer one.
func (s *Session) Group(label string, fn func() error) error {
	if s.group != nil {
		return fn()
	}
	g := &batchCmd{label: label}
	s.group = g
	err := fn()
	s.group = nil
	if len(g.cmds) > 0 {
		s.History.Push(g)
	}
	return err
}

// EditNode changes a node's title and description. Text over the node
// limits is refused so that a saved scheme reads back unchanged.
func (s *Session) EditNode(id, title, description string) error {
	n, ok := s.Model.Node(id)
	if !ok {
		return fmt.Errorf("%w: %q", diagram.ErrNodeNotFound, id)
	}
	if err := diagram.ValidateText(title, description); err != nil {
		return err
	}
	c := &editNodeCmd{
		id:     id,
		before: nodeText{n.Title, n.Description},
		after:  nodeText{title, description},
	}
	if err := c.Do(s); err != nil {
		return err
	}
	s.record(c)
	return nil
}

// SetColor changes a node's color.
func (s *Session) SetColor(id, color string) error {
	n, ok := s.Model.Node(id)
	if !ok {
		return fmt.Errorf("%w: %q", diagram.ErrNodeNotFound, id)
	}
	if err := diagram.ValidateColor(color); err != nil {
		return err
	}
	if n.Color == color {
		return nil
	}
	c := &setColorCmd{id: id, before: n.Color, after: color}
	n.Color = color
	s.record(c)
	return nil
}

// SetPorts gives a node one input per name in inputs and one output per
// name in outputs. Wires on ports that disappear are removed with it and
// come back on undo.
func (s *Session) SetPorts(id string, inputs, outputs []string) error {
	n, ok := s.Model.Node(id)
	if !ok {
		return fmt.Errorf("%w: %q", diagram.ErrNodeNotFound, id)
	}
	c := &setPortsCmd{
		id:     id,
		before: portNames{n.PortNames(diagram.Input), n.PortNames(diagram.Output)},
		after:  portNames{append([]string(nil), inputs...), append([]string(nil), outputs...)},
	}
	removed, err := s.Model.SetPorts(id, inputs, outputs)
	if err != nil {
		return err
	}
	c.removed = removed
	s.growCanvas(n)
	s.record(c)
	return nil
}

// Undo reverts the last command and returns its label.
func (s *Session) Undo() (string, error) {
	c, ok := s.History.popUndo()
	if !ok {
		return "", ErrNothingToUndo
	}
	if err := c.Undo(s); err != nil {
		s.logger.Error("undo failed", zap.String("label", c.Label()), zap.Error(err))
		s.changed()
		return c.Label(), fmt.Errorf("undo %s: %w", c.Label(), err)
	}
	s.History.redoStack = append(s.History.redoStack, c)
	s.changed()
	return c.Label(), nil
}

// Redo reapplies the last undone command and returns its label.
func (s *Session) Redo() (string, error) {
	c, ok := s.History.popRedo()
	if !ok {
		return "", ErrNothingToRedo
	}
	if err := c.Do(s); err != nil {
		s.logger.Error("redo failed", zap.String("label", c.Label()), zap.Error(err))
		s.changed()
		return c.Label(), fmt.Errorf("redo %s: %w", c.Label(), err)
	}
	s.History.undoStack = append(s.History.undoStack, c)
	s.changed()
	return c.Label(), nil
}

// growCanvas expands the canvas around a node. Growth on the left or top
// shifts every node; wire paths are then refreshed on the next tick.
func (s *Session) growCanvas(n *diagram.Node) {
	sx, sy := s.Viewport.ExpandToFit(viewport.Rect(n.Bounds()))
	if sx == 0 && sy == 0 {
		return
	}
	s.Model.ShiftAll(sx, sy)
	s.origin.X += sx
	s.origin.Y += sy
	s.refreshPending = true
	s.logger.Debug("canvas grown",
		zap.Float64("shift_x", sx), zap.Float64("shift_y", sy),
		zap.Float64("width", s.Viewport.CanvasWidth), zap.Float64("height", s.Viewport.CanvasHeight),
	)
}

// NeedsRefresh reports whether a deferred wire refresh is pending.
func (s *Session) NeedsRefresh() bool { return s.refreshPending }

// Refresh recomputes every wire path and clears the pending flag. The UI
// calls it on the display tick after the canvas changed size.
func (s *Session) Refresh() {
	s.refreshPending = false
	s.Router.UpdateAll()
}

// SetContainer records a new host surface size.
func (s *Session) SetContainer(w, h float64) {
	s.Viewport.SetContainer(w, h)
	s.Router.UpdateAll()
}

// PanBy pans by a screen delta.
func (s *Session) PanBy(dx, dy float64) {
	s.Viewport.PanBy(dx, dy)
	s.Router.UpdateAll()
}

// BeginPan, PanTo and EndPan drive a pointer pan gesture.
func (s *Session) BeginPan(sx, sy float64) { s.Viewport.BeginPan(sx, sy) }

func (s *Session) PanTo(sx, sy float64) {
	if s.Viewport.PanTo(sx, sy) {
		s.Router.UpdateAll()
	}
}

func (s *Session) EndPan() { s.Viewport.EndPan() }

func (s *Session) ZoomIn() {
	s.Viewport.ZoomIn()
	s.Router.UpdateAll()
}

func (s *Session) ZoomOut() {
	s.Viewport.ZoomOut()
	s.Router.UpdateAll()
}

func (s *Session) ResetZoom() {
	s.Viewport.ResetZoom()
	s.Router.UpdateAll()
}

// Fit scales the whole canvas into view.
func (s *Session) Fit() {
	s.Viewport.FitToScreen()
	s.Router.UpdateAll()
}

// ImportScheme replaces the session contents with a scheme. The view
// starts over from the configured canvas, which a CANVAS block may then
// override. History is cleared; the import itself is not undoable.
func (s *Session) ImportScheme(text string) *shelang.Report {
	s.CancelDrag()
	s.ClearSelection()
	s.resetViewport()
	r := shelang.Decode(text, s.Model, s.Viewport, s.logger)
	s.History.Clear()
	s.origin = diagram.Point{}
	s.Dirty = false
	for _, n := range s.Model.Nodes() {
		s.growCanvas(n)
	}
	s.origin = diagram.Point{}
	s.Refresh()
	return r
}

// ExportScheme writes the session as SheLang.
func (s *Session) ExportScheme(w io.Writer, opts shelang.EncodeOptions) error {
	return shelang.Encode(w, s.Model, s.Viewport, opts)
}

// Clear empties the session.
func (s *Session) Clear() {
	s.CancelDrag()
	s.ClearSelection()
	s.Model.Clear()
	s.resetViewport()
	s.History.Clear()
	s.origin = diagram.Point{}
	s.refreshPending = false
	s.Dirty = false
	s.Router.UpdateAll()
}
