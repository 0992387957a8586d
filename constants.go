package main

import "time"

type Mode int

const (
	ModeNormal Mode = iota
	ModeEditing
	ModeMove
	ModeWire
	ModeFileInput
	ModeConfirm
)

type FileOperation int

const (
	FileOpSave FileOperation = iota
	FileOpOpen
	FileOpExportPNG
	FileOpExportSVG
)

type ConfirmAction int

const (
	ConfirmDeleteNode ConfirmAction = iota
	ConfirmDeleteWire
	ConfirmQuit
	ConfirmNewChart
	ConfirmOverwriteFile
	ConfirmChooseExportType
	ConfirmDeleteSelection
)

// Editable node fields in ModeEditing, in tab order.
const (
	fieldTitle = iota
	fieldDescription
	fieldInputs
	fieldOutputs
	fieldColor
	editFieldCount
)

const (
	// Screen pixels per terminal cell. The viewport works in pixels so
	// zoom and pan behave like on a pixel surface.
	cellWidth  = 8.0
	cellHeight = 16.0

	// portPickRadius is how close, in screen pixels, the cursor must be
	// to a port to grab it.
	portPickRadius = 12.0
	// wirePickTolerance is the hit distance for wires.
	wirePickTolerance = cellHeight / 2

	panCells = 4

	refreshDelay = 16 * time.Millisecond
)
