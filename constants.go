package main

type Mode int

const (
	ModeGoalInput Mode = iota
	ModeCanvas
	ModeMove
	ModeConfirm
)

type FileOperation int

const (
	FileOpSavePNG FileOperation = iota
	FileOpSaveVisualTXT
)

type ConfirmAction int

const (
	ConfirmClearBoard ConfirmAction = iota
	ConfirmQuit
)

type EditTrigger int

const (
	EditOnClick EditTrigger = iota
	EditOnDoubleClick
)

const (
	gridSize = 40

	minElementWidth  = 3 * gridSize
	minElementHeight = gridSize

	// Text metrics in canvas pixels.
	charWidth  = 10
	lineHeight = gridSize

	fallbackContainerWidth  = 1000
	fallbackContainerHeight = 800

	startElementID      = "start-element"
	startElementOffsetX = gridSize
	layoutLeftMargin    = 200

	// Hover affordances.
	hoverMargin  = gridSize
	handleOffset = gridSize / 4
	handleRadius = gridSize / 4

	nearestThreshold  = gridSize
	pathHitTolerance  = 6.0
	maxCurveOffset    = 100.0
	curveSampleCount  = 32
	doubleClickMillis = 400

	newElementText = "New Element"

	// Terminal cell size in canvas pixels.
	cellWidth  = 10
	cellHeight = 10
)
