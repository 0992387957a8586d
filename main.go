package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shegen/internal/collision"
	"shegen/internal/config"
	"shegen/internal/diagram"
	"shegen/internal/editor"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shegen [file]",
		Short: "Terminal editor for node-and-wire schemes",
		Long: `shegen edits boxes with input and output ports joined by wires,
and reads and writes them as SheLang scheme files.

Without a subcommand it opens the interactive editor.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         runEditor,
	}
	rootCmd.PersistentFlags().String("config", "", "config file (default ~/.shegen.yaml)")

	exportCmd := &cobra.Command{
		Use:   "export <scheme> <output>",
		Short: "Render a scheme to SVG or PNG",
		Args:  cobra.ExactArgs(2),
		RunE:  runExport,
	}
	exportCmd.Flags().String("format", "", "output format: svg|png (default: from the output extension)")

	fmtCmd := &cobra.Command{
		Use:   "fmt <scheme>",
		Short: "Rewrite a scheme in canonical SheLang",
		Args:  cobra.ExactArgs(1),
		RunE:  runFmt,
	}
	fmtCmd.Flags().BoolP("write", "w", false, "write the result back to the file instead of stdout")

	checkCmd := &cobra.Command{
		Use:   "check <scheme>",
		Short: "Report problems in a scheme; exits non-zero on broken wires or an empty document",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}

	rootCmd.AddCommand(exportCmd, fmtCmd, checkCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initialModel(cfg *config.Config, logger *zap.Logger) model {
	return model{
		width:             80,
		height:            24,
		session:           newSession(cfg, logger, 80*cellWidth, 23*cellHeight),
		config:            cfg,
		logger:            logger,
		mode:              ModeNormal,
		selectedFileIndex: -1,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.session.SetContainer(float64(m.width)*cellWidth, float64(m.canvasRows())*cellHeight)
		m.ensureCursorInBounds()
		return m, nil

	case refreshMsg:
		m.session.Refresh()
		return m, nil

	case tea.MouseMsg:
		cmd := m.handleMouse(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.help {
			m.handleHelpKey(msg.String())
			return m, nil
		}
		var cmd tea.Cmd
		switch m.mode {
		case ModeEditing:
			cmd = m.handleEditKey(msg)
		case ModeMove:
			cmd = m.handleMoveKey(msg.String())
		case ModeWire:
			cmd = m.handleWireKey(msg.String())
		case ModeFileInput:
			cmd = m.handleFileKey(msg)
		case ModeConfirm:
			cmd = m.handleConfirmKey(msg.String())
		default:
			cmd = m.handleNormalKey(msg.String())
		}
		return m, cmd
	}
	return m, nil
}

func (m *model) handleNormalKey(key string) tea.Cmd {
	m.errorMessage = ""
	m.successMessage = ""
	s := m.session

	switch key {
	case "q":
		if m.config.Confirmations && s.Dirty {
			m.confirm(ConfirmQuit, "")
			return nil
		}
		return tea.Quit
	case "?":
		m.help = true
		m.helpScroll = 0
	case "z":
		m.panMode = !m.panMode

	case "h", "j", "k", "l", "left", "right", "up", "down",
		"H", "J", "K", "L", "shift+left", "shift+right", "shift+up", "shift+down":
		m.handleNavigation(key, m.getMoveSpeed(key))

	case "b", "B":
		spec := diagram.NodeSpec{
			Title:   fmt.Sprintf("Box %d", s.Model.Len()+1),
			Inputs:  1,
			Outputs: 1,
		}
		if key == "b" {
			pos := m.cursorWorld()
			if s.Policy.Magnet {
				pos.X, pos.Y = collision.SnapPoint(pos.X, pos.Y, s.Viewport.GridSize)
			}
			spec.Position = &pos
		}
		n, err := s.AddNode(spec)
		if err != nil {
			m.setError(err)
			return nil
		}
		m.selected = n.ID()
		m.startEdit(n)
		return m.afterChange()

	case "e":
		if n := m.targetAtCursor().node; n != nil {
			m.selected = n.ID()
			m.startEdit(n)
		}
	case "C":
		return m.cycleColor()
	case "v":
		if n := m.targetAtCursor().node; n != nil {
			if s.ToggleSelected(n.ID()) {
				m.selected = n.ID()
			} else if m.selected == n.ID() {
				m.selected = ""
			}
		}
	case "V":
		m.successMessage = fmt.Sprintf("%d boxes selected", s.SelectAll())
	case "m":
		if n := m.targetAtCursor().node; n != nil {
			m.startMove(n)
		}
	case "a":
		t := m.targetAtCursor()
		if !t.hasPort {
			m.errorMessage = "no port under cursor"
			return nil
		}
		if s.BeginWire(t.port) {
			m.mode = ModeWire
		}
	case "d":
		if n := len(s.Selection()); n > 0 {
			if m.config.Confirmations {
				m.confirm(ConfirmDeleteSelection, "")
				return nil
			}
			s.DeleteSelection()
			m.selected = ""
			return m.afterChange()
		}
		t := m.targetAtCursor()
		switch {
		case t.node != nil && m.config.Confirmations:
			m.confirm(ConfirmDeleteNode, t.node.ID())
		case t.node != nil:
			s.RemoveNode(t.node.ID())
			return m.afterChange()
		case t.wireID != "" && m.config.Confirmations:
			m.confirm(ConfirmDeleteWire, t.wireID)
		case t.wireID != "":
			s.Disconnect(t.wireID)
		}
	case "c":
		if len(s.Selection()) > 0 {
			copies, err := s.DuplicateSelection()
			if err != nil {
				m.setError(err)
			}
			m.successMessage = fmt.Sprintf("duplicated %d boxes", len(copies))
			return m.afterChange()
		}
		if n := m.targetAtCursor().node; n != nil {
			dup, err := s.Duplicate(n.ID())
			if err != nil {
				m.setError(err)
				return nil
			}
			m.selected = dup.ID()
			return m.afterChange()
		}

	case "+", "=":
		s.ZoomIn()
	case "-":
		s.ZoomOut()
	case "0":
		s.ResetZoom()
	case "f":
		s.Fit()
	case "g":
		s.Policy.Magnet = !s.Policy.Magnet
		m.successMessage = "magnet " + onOff(s.Policy.Magnet)
	case "G":
		s.Policy.Layer = !s.Policy.Layer
		m.successMessage = "layer " + onOff(s.Policy.Layer)
	case "r":
		moved := s.Arrange()
		m.successMessage = fmt.Sprintf("arranged %d boxes", moved)
		return m.afterChange()

	case "u", "ctrl+z":
		label, err := s.Undo()
		if err != nil {
			m.setError(err)
			return nil
		}
		m.successMessage = "undid " + label
	case "U", "ctrl+y":
		label, err := s.Redo()
		if err != nil {
			m.setError(err)
			return nil
		}
		m.successMessage = "redid " + label

	case "s":
		if s.Filename != "" {
			if err := m.saveScheme(s.Filename); err != nil {
				m.setError(err)
			}
			return nil
		}
		m.startFileInput(FileOpSave)
	case "S":
		m.confirm(ConfirmChooseExportType, "")
	case "o":
		m.startFileInput(FileOpOpen)
	case "y":
		if err := m.copyToClipboard(); err != nil {
			m.setError(err)
		}
	case "p":
		if err := m.pasteFromClipboard(); err != nil {
			m.setError(err)
		}
	case "n":
		if m.config.Confirmations && s.Dirty {
			m.confirm(ConfirmNewChart, "")
			return nil
		}
		s.Clear()
		s.Filename = ""
		m.selected = ""
	case "esc":
		m.selected = ""
		s.ClearSelection()
	}
	return nil
}

// cycleColor gives the selection, or the box under the cursor, the next
// palette color.
func (m *model) cycleColor() tea.Cmd {
	s := m.session
	nodes := s.Selection()
	if len(nodes) == 0 {
		if n := m.targetAtCursor().node; n != nil {
			nodes = []*diagram.Node{n}
		}
	}
	if len(nodes) == 0 {
		return nil
	}
	err := s.Group("color", func() error {
		for _, n := range nodes {
			next := diagram.Palette[(slices.Index(diagram.Palette, n.Color)+1)%len(diagram.Palette)]
			if err := s.SetColor(n.ID(), next); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		m.setError(err)
	}
	return nil
}

func (m *model) handleHelpKey(key string) {
	switch key {
	case "j", "down":
		maxScroll := len(helpLines) - m.canvasRows()
		if m.helpScroll < maxScroll {
			m.helpScroll++
		}
	case "k", "up":
		if m.helpScroll > 0 {
			m.helpScroll--
		}
	default:
		m.help = false
		m.helpScroll = 0
	}
}

func (m *model) startEdit(n *diagram.Node) {
	m.mode = ModeEditing
	m.editValues = [editFieldCount]string{
		fieldTitle:       n.Title,
		fieldDescription: n.Description,
		fieldInputs:      strings.Join(n.PortNames(diagram.Input), ", "),
		fieldOutputs:     strings.Join(n.PortNames(diagram.Output), ", "),
		fieldColor:       n.Color,
	}
	m.editField = fieldTitle
	m.editText = n.Title
	m.editCursorPos = len([]rune(m.editText))
}

func (m *model) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	runes := []rune(m.editText)
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.errorMessage = ""
		return nil
	case "enter":
		m.editValues[m.editField] = m.editText
		if err := m.applyEdit(); err != nil {
			m.setError(err)
			return nil
		}
		m.mode = ModeNormal
		m.errorMessage = ""
		return m.afterChange()
	case "tab", "shift+tab":
		m.editValues[m.editField] = m.editText
		step := 1
		if msg.String() == "shift+tab" {
			step = editFieldCount - 1
		}
		m.editField = (m.editField + step) % editFieldCount
		m.editText = m.editValues[m.editField]
		m.editCursorPos = len([]rune(m.editText))
		return nil
	case "left":
		if m.editCursorPos > 0 {
			m.editCursorPos--
		}
		return nil
	case "right":
		if m.editCursorPos < len(runes) {
			m.editCursorPos++
		}
		return nil
	case "backspace":
		if m.editCursorPos > 0 {
			runes = append(runes[:m.editCursorPos-1], runes[m.editCursorPos:]...)
			m.editCursorPos--
			m.editText = string(runes)
		}
		return nil
	}

	var insert []rune
	switch msg.Type {
	case tea.KeyRunes:
		insert = msg.Runes
	case tea.KeySpace:
		insert = []rune{' '}
	}
	if len(insert) > 0 {
		out := make([]rune, 0, len(runes)+len(insert))
		out = append(out, runes[:m.editCursorPos]...)
		out = append(out, insert...)
		out = append(out, runes[m.editCursorPos:]...)
		m.editText = string(out)
		m.editCursorPos += len(insert)
	}
	return nil
}

// applyEdit writes the edit fields back to the node as one undo step.
// Nothing changes when any field is invalid.
func (m *model) applyEdit() error {
	s := m.session
	n, ok := s.Model.Node(m.selected)
	if !ok {
		return nil
	}
	v := m.editValues
	if err := diagram.ValidateText(v[fieldTitle], v[fieldDescription]); err != nil {
		return err
	}
	inputs, err := parsePortNames(v[fieldInputs], n.PortNames(diagram.Input))
	if err != nil {
		return fmt.Errorf("inputs: %w", err)
	}
	outputs, err := parsePortNames(v[fieldOutputs], n.PortNames(diagram.Output))
	if err != nil {
		return fmt.Errorf("outputs: %w", err)
	}
	color := strings.TrimSpace(v[fieldColor])
	if color != n.Color {
		if err := diagram.ValidateColor(color); err != nil {
			return err
		}
	}

	return s.Group("edit", func() error {
		if n.Title != v[fieldTitle] || n.Description != v[fieldDescription] {
			if err := s.EditNode(n.ID(), v[fieldTitle], v[fieldDescription]); err != nil {
				return err
			}
		}
		if !slices.Equal(inputs, n.PortNames(diagram.Input)) || !slices.Equal(outputs, n.PortNames(diagram.Output)) {
			if err := s.SetPorts(n.ID(), inputs, outputs); err != nil {
				return err
			}
		}
		if color != n.Color {
			return s.SetColor(n.ID(), color)
		}
		return nil
	})
}

// parsePortNames reads a port field. A bare number sets the port count
// and keeps the names of the ports that remain, new ones get default
// names. Anything else is a comma separated list of names. An empty field
// means no ports.
func parsePortNames(text string, current []string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}, nil
	}
	var names []string
	if n, err := strconv.Atoi(text); err == nil {
		if n < 0 || n > diagram.MaxPorts {
			return nil, fmt.Errorf("port count must be between 0 and %d", diagram.MaxPorts)
		}
		names = make([]string, n)
		copy(names, current)
		return names, nil
	}
	for _, part := range strings.Split(text, ",") {
		names = append(names, strings.TrimSpace(part))
	}
	if len(names) > diagram.MaxPorts {
		return nil, fmt.Errorf("at most %d ports", diagram.MaxPorts)
	}
	return names, nil
}

func (m *model) confirm(action ConfirmAction, target string) {
	m.mode = ModeConfirm
	m.confirmAction = action
	m.confirmTarget = target
}

func (m *model) handleConfirmKey(key string) tea.Cmd {
	s := m.session
	if m.confirmAction == ConfirmChooseExportType {
		m.mode = ModeNormal
		switch key {
		case "p", "P":
			m.startFileInput(FileOpExportPNG)
		case "v", "V":
			m.startFileInput(FileOpExportSVG)
		}
		return nil
	}

	if key != "y" && key != "Y" {
		if m.confirmAction == ConfirmOverwriteFile {
			m.mode = ModeFileInput
			return nil
		}
		m.mode = ModeNormal
		return nil
	}

	m.mode = ModeNormal
	switch m.confirmAction {
	case ConfirmDeleteNode:
		s.RemoveNode(m.confirmTarget)
		if m.selected == m.confirmTarget {
			m.selected = ""
		}
		return m.afterChange()
	case ConfirmDeleteWire:
		s.Disconnect(m.confirmTarget)
	case ConfirmDeleteSelection:
		n := s.DeleteSelection()
		m.selected = ""
		m.successMessage = fmt.Sprintf("deleted %d boxes", n)
		return m.afterChange()
	case ConfirmQuit:
		return tea.Quit
	case ConfirmNewChart:
		s.Clear()
		s.Filename = ""
		m.selected = ""
	case ConfirmOverwriteFile:
		m.performFileOp(m.pendingPath)
	}
	return nil
}

func (m model) View() string {
	if m.help {
		return m.helpView()
	}

	rows := m.canvasRows()
	var body []string
	if m.mode == ModeFileInput && m.fileOp == FileOpOpen {
		body = m.fileListView(rows)
	} else {
		sc := scene{selected: m.selected, cursorX: m.cursorX, cursorY: m.cursorY}
		if id, ok := m.session.DraggedNode(); ok {
			sc.selected = id
		}
		if m.mode == ModeWire {
			c := m.cursorScreen()
			if p, ok := m.session.WirePreview(c.X, c.Y); ok {
				sc.preview = &p
			}
		}
		body = drawScene(m.session, m.width, rows, sc).styledLines()
	}

	return strings.Join(body, "\n") + "\n" + statusStyle.Width(m.width).Render(m.statusLine())
}

var (
	statusStyle = lipgloss.NewStyle().Reverse(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#DB4437")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0F9D58"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
)

var editFieldNames = [editFieldCount]string{
	fieldTitle:       "title",
	fieldDescription: "description",
	fieldInputs:      "inputs",
	fieldOutputs:     "outputs",
	fieldColor:       "color",
}

func (m model) statusLine() string {
	s := m.session
	switch m.mode {
	case ModeEditing:
		field := editFieldNames[m.editField]
		runes := []rune(m.editText)
		pos := m.editCursorPos
		if pos > len(runes) {
			pos = len(runes)
		}
		display := string(runes[:pos]) + "█" + string(runes[pos:])
		line := fmt.Sprintf("Mode: EDIT | %s: %s | Tab/Shift+Tab=field, Enter=save, Esc=cancel", field, display)
		if m.errorMessage != "" {
			line = fmt.Sprintf("Mode: EDIT | ERROR: %s | %s: %s", m.errorMessage, field, display)
		}
		return line
	case ModeMove:
		return "Mode: MOVE | hjkl/arrows=move, Enter=finish, Esc=cancel"
	case ModeWire:
		return "Mode: WIRE | move to a port, a/Enter=connect, Esc=cancel"
	case ModeFileInput:
		op := map[FileOperation]string{
			FileOpSave:      "Save",
			FileOpOpen:      "Open",
			FileOpExportPNG: "Export PNG",
			FileOpExportSVG: "Export SVG",
		}[m.fileOp]
		line := fmt.Sprintf("Mode: FILE | %s filename: %s█ | Enter=confirm, Esc=cancel", op, m.filename)
		if m.errorMessage != "" {
			line = fmt.Sprintf("Mode: FILE | ERROR: %s | %s filename: %s█", m.errorMessage, op, m.filename)
		}
		return line
	case ModeConfirm:
		return "Mode: CONFIRM | " + m.confirmMessage()
	}

	mode := "NORMAL"
	if m.panMode {
		mode = "PAN"
	}
	name := s.Filename
	if name == "" {
		name = "[new]"
	}
	if s.Dirty {
		name += " *"
	}
	status := fmt.Sprintf("Mode: %s | %s | %d boxes, %d wires | %d%%",
		mode, name, s.Model.Len(), len(s.Model.Wires()), s.Viewport.ZoomPercent())
	if s.Policy.Magnet {
		status += " | magnet"
	}
	if s.Policy.Layer {
		status += " | layer"
	}
	if n := len(s.Selection()); n > 0 {
		status += fmt.Sprintf(" | %d selected", n)
	}
	switch {
	case m.errorMessage != "":
		status += " | " + errorStyle.Render("ERROR: "+m.errorMessage)
	case m.successMessage != "":
		status += " | " + okStyle.Render(m.successMessage)
	default:
		status += " | ? for help | q to quit"
	}
	return status
}

func (m model) confirmMessage() string {
	switch m.confirmAction {
	case ConfirmDeleteNode:
		return "Delete this box and its wires? (y/n)"
	case ConfirmDeleteWire:
		return "Delete this wire? (y/n)"
	case ConfirmDeleteSelection:
		return fmt.Sprintf("Delete %d selected boxes and their wires? (y/n)", len(m.session.Selection()))
	case ConfirmQuit:
		return "Quit with unsaved changes? (y/n)"
	case ConfirmNewChart:
		return "Start a new scheme? Unsaved changes will be lost. (y/n)"
	case ConfirmOverwriteFile:
		return fmt.Sprintf("File %s already exists. Overwrite? (y/n)", m.pendingPath)
	case ConfirmChooseExportType:
		return "Export as (p)ng or s(v)g? Any other key cancels"
	}
	return ""
}

var helpLines = []string{
	"SHEGEN Help",
	"===========",
	"",
	"Navigation:",
	"  h/←/j/↓/k/↑/l/→  Move cursor",
	"  Shift+h/j/k/l    Move cursor 2x faster",
	"  z                Toggle pan mode (direction keys pan the canvas)",
	"  +/-/0            Zoom in / out / reset",
	"  f                Fit the canvas to the screen",
	"  Mouse            Drag boxes, drag from a port to wire, drag empty space to pan, wheel to zoom",
	"",
	"Boxes:",
	"  b                New box at cursor",
	"  B                New box in the middle of the view",
	"  e                Edit box under cursor (title, description, ports, color)",
	"                   Ports: comma separated names, or a number of ports",
	"  C                Next palette color for the selection or box under cursor",
	"  m                Move box under cursor (carries the selection along)",
	"  c                Duplicate the selection, or the box under cursor",
	"  d                Delete the selection, or the box or wire under cursor",
	"  v / V            Toggle box under cursor in the selection / select all",
	"  r                Arrange boxes left to right along their wires",
	"  g / G            Toggle magnet (grid snap) / layer (no overlap)",
	"",
	"Wires:",
	"  a                Start a wire on the port under cursor, then press a on the target port",
	"",
	"Files:",
	"  s                Save scheme (.shelang)",
	"  S                Export PNG or SVG",
	"  o                Open a scheme",
	"  y / p            Copy scheme to / import scheme from the clipboard",
	"  n                New scheme",
	"",
	"General:",
	"  u / U            Undo / redo",
	"  Esc              Clear selection or cancel",
	"  ?                Toggle this help",
	"  q / Ctrl+C       Quit",
}

func (m model) helpView() string {
	visible := m.canvasRows()
	start := m.helpScroll
	if start > len(helpLines)-1 {
		start = len(helpLines) - 1
	}
	if start < 0 {
		start = 0
	}
	end := start + visible
	if end > len(helpLines) {
		end = len(helpLines)
	}

	lines := append([]string{}, helpLines[start:end]...)
	if start == 0 && len(lines) > 0 {
		lines[0] = titleStyle.Render(lines[0])
	}
	status := fmt.Sprintf("Help (%d-%d of %d lines) | j/k to scroll, any other key closes",
		start+1, end, len(helpLines))
	return strings.Join(lines, "\n") + "\n" + statusStyle.Width(m.width).Render(status)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m *model) setError(err error) {
	switch {
	case errors.Is(err, editor.ErrNothingToUndo):
		m.errorMessage = "nothing to undo"
	case errors.Is(err, editor.ErrNothingToRedo):
		m.errorMessage = "nothing to redo"
	default:
		m.errorMessage = err.Error()
	}
	m.logger.Debug("ui error", zap.Error(err))
}
