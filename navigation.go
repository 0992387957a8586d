package main

import (
	tea "github.com/charmbracelet/bubbletea"

	"shegen/internal/diagram"
	"shegen/internal/editor"
)

func (m *model) handleNavigation(key string, speed int) {
	if m.panMode {
		m.handlePan(key, speed)
		return
	}
	m.handleCursorMove(key, speed)
}

// handlePan moves the view so the canvas appears to follow the key.
func (m *model) handlePan(key string, speed int) {
	dx := float64(panCells*speed) * cellWidth
	dy := float64(panCells*speed) * cellHeight
	switch key {
	case "h", "left", "H", "shift+left":
		m.session.PanBy(dx, 0)
	case "l", "right", "L", "shift+right":
		m.session.PanBy(-dx, 0)
	case "k", "up", "K", "shift+up":
		m.session.PanBy(0, dy)
	case "j", "down", "J", "shift+down":
		m.session.PanBy(0, -dy)
	}
}

func (m *model) handleCursorMove(key string, speed int) {
	switch key {
	case "h", "left", "H", "shift+left":
		m.cursorX -= speed
	case "l", "right", "L", "shift+right":
		m.cursorX += speed
	case "k", "up", "K", "shift+up":
		m.cursorY -= speed
	case "j", "down", "J", "shift+down":
		m.cursorY += speed
	}
	m.ensureCursorInBounds()
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	default:
		return 1
	}
}

func (m *model) ensureCursorInBounds() {
	if m.cursorX >= m.width {
		m.cursorX = m.width - 1
	}
	if m.cursorY >= m.canvasRows() {
		m.cursorY = m.canvasRows() - 1
	}
	if m.cursorX < 0 {
		m.cursorX = 0
	}
	if m.cursorY < 0 {
		m.cursorY = 0
	}
}

// startMove picks the node up at the cursor; the cursor then carries it.
func (m *model) startMove(n *diagram.Node) {
	c := m.cursorScreen()
	if !m.session.BeginDrag(n.ID(), c.X, c.Y) {
		return
	}
	m.mode = ModeMove
	m.selected = n.ID()
	m.moveStartX, m.moveStartY = m.cursorX, m.cursorY
}

func (m *model) handleMoveKey(key string) tea.Cmd {
	switch key {
	case "enter":
		m.mode = ModeNormal
		m.session.EndDrag()
		return m.afterChange()
	case "esc":
		m.cursorX, m.cursorY = m.moveStartX, m.moveStartY
		c := m.cursorScreen()
		m.session.DragTo(c.X, c.Y)
		m.session.EndDrag()
		m.mode = ModeNormal
		return m.afterChange()
	case "h", "j", "k", "l", "left", "right", "up", "down",
		"H", "J", "K", "L", "shift+left", "shift+right", "shift+up", "shift+down":
		m.handleCursorMove(key, m.getMoveSpeed(key))
		c := m.cursorScreen()
		m.session.DragTo(c.X, c.Y)
	}
	return nil
}

func (m *model) handleWireKey(key string) tea.Cmd {
	switch key {
	case "a", "enter":
		m.finishWire()
	case "esc":
		m.session.CancelDrag()
		m.mode = ModeNormal
	case "h", "j", "k", "l", "left", "right", "up", "down",
		"H", "J", "K", "L", "shift+left", "shift+right", "shift+up", "shift+down":
		m.handleCursorMove(key, m.getMoveSpeed(key))
	}
	return nil
}

func (m *model) finishWire() {
	c := m.cursorScreen()
	m.mode = ModeNormal
	m.dragging = false
	if _, err := m.session.EndWire(c.X, c.Y, portPickRadius); err != nil {
		m.setError(err)
		return
	}
	m.successMessage = "connected"
}

// handleMouse drives the pointer gestures: press on a port starts a wire,
// press on a box drags it, press on empty canvas pans. The wheel zooms.
func (m *model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.mode != ModeNormal && m.mode != ModeWire && m.mode != ModeMove {
		return nil
	}
	if msg.Y >= m.canvasRows() {
		return m.releasePointer(true)
	}
	m.cursorX, m.cursorY = msg.X, msg.Y
	m.ensureCursorInBounds()
	c := m.cursorScreen()
	s := m.session

	switch msg.Type {
	case tea.MouseWheelUp:
		s.ZoomIn()
	case tea.MouseWheelDown:
		s.ZoomOut()

	case tea.MouseLeft:
		if m.mode != ModeNormal {
			return nil
		}
		m.errorMessage = ""
		t := m.targetAtCursor()
		switch {
		case t.hasPort:
			if s.BeginWire(t.port) {
				m.mode = ModeWire
				m.dragging = true
			}
		case t.node != nil:
			if !s.IsSelected(t.node.ID()) {
				s.ClearSelection()
			}
			if s.BeginDrag(t.node.ID(), c.X, c.Y) {
				m.selected = t.node.ID()
				m.dragging = true
			}
		default:
			s.BeginPan(c.X, c.Y)
			m.panningByMouse = true
		}

	case tea.MouseMotion:
		switch {
		case s.State() == editor.DraggingNode && m.dragging:
			s.DragTo(c.X, c.Y)
		case m.panningByMouse:
			s.PanTo(c.X, c.Y)
		}

	case tea.MouseRelease:
		return m.releasePointer(false)
	}
	return nil
}

// releasePointer ends the gesture in progress. A wire dragged off the
// canvas is dropped; a box keeps its last position either way.
func (m *model) releasePointer(left bool) tea.Cmd {
	s := m.session
	switch {
	case m.dragging && s.State() == editor.DraggingNode:
		m.dragging = false
		s.EndDrag()
		return m.afterChange()
	case m.dragging && s.State() == editor.DraggingWire && left:
		m.dragging = false
		m.mode = ModeNormal
		s.CancelDrag()
	case m.dragging && s.State() == editor.DraggingWire:
		m.finishWire()
	case m.panningByMouse:
		m.panningByMouse = false
		s.EndPan()
	}
	return nil
}
