package main

import (
	"go.uber.org/zap"

	"shegen/internal/config"
	"shegen/internal/diagram"
	"shegen/internal/editor"
)

type model struct {
	width   int
	height  int
	cursorX int
	cursorY int
	panMode bool

	session *editor.Session
	config  *config.Config
	logger  *zap.Logger

	mode       Mode
	help       bool
	helpScroll int

	selected      string
	editField     int
	editText      string
	editCursorPos int
	editValues    [editFieldCount]string

	moveStartX int
	moveStartY int

	filename          string
	fileList          []string
	selectedFileIndex int
	fileOp            FileOperation
	pendingPath       string

	confirmAction ConfirmAction
	confirmTarget string

	dragging       bool
	panningByMouse bool

	errorMessage   string
	successMessage string
}

// refreshMsg delivers the deferred wire refresh after the canvas grew.
type refreshMsg struct{}

// target is what sits under the cursor.
type target struct {
	node    *diagram.Node
	port    diagram.PortRef
	hasPort bool
	wireID  string
}
