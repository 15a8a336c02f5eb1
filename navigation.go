package main

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
	m.board.PointerMove(m.cursorPixel())
}

// handleElementMove nudges the grabbed element one grid unit per key.
func (m *model) handleElementMove(key string, speed int) {
	el, ok := m.board.Element(m.moveID)
	if !ok {
		m.mode = ModeCanvas
		return
	}
	step := gridSize * speed
	x, y := el.X, el.Y
	switch key {
	case "h", "left", "H", "shift+left":
		x -= step
	case "l", "right", "L", "shift+right":
		x += step
	case "k", "up", "K", "shift+up":
		y -= step
	case "j", "down", "J", "shift+down":
		y += step
	}
	m.board.MoveElement(m.moveID, x, y)
	if moved, ok := m.board.Element(m.moveID); ok {
		m.cursorX = (moved.X + moved.Width/2) / cellWidth
		m.cursorY = (moved.Y + moved.Height/2) / cellHeight
		m.ensureCursorInBounds()
	}
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	default:
		return 1
	}
}

func isNavKey(key string) bool {
	switch key {
	case "h", "j", "k", "l", "H", "J", "K", "L",
		"left", "right", "up", "down",
		"shift+left", "shift+right", "shift+up", "shift+down":
		return true
	}
	return false
}

func (m *model) ensureCursorInBounds() {
	m.cursorX = clampAxis(m.cursorX, m.width-1)
	m.cursorY = clampAxis(m.cursorY, m.canvasRows()-1)
}

func (m *model) canvasRows() int {
	return max(m.height-1, 1)
}

func (m *model) cursorPixel() point {
	return cellCenter(m.cursorX, m.cursorY)
}
