package main

import "strings"

type Element struct {
	ID          string
	X           int
	Y           int
	Width       int
	Height      int
	Text        string
	Description string
	Skills      []string
	Duration    Duration
	IsStart     bool
	PathIndex   int
	PhaseIndex  int
}

type Connection struct {
	ID   string
	From string
	To   string
	Side Side
}

func newElement(id string, x, y int, text string) Element {
	el := Element{
		ID:         id,
		X:          x,
		Y:          y,
		PathIndex:  -1,
		PhaseIndex: -1,
	}
	el.SetText(text)
	return el
}

func (e *Element) Lines() []string {
	return strings.Split(e.Text, "\n")
}

// SetText grows the element to fit the new text but never shrinks a size
// the user resized to.
func (e *Element) SetText(text string) {
	e.Text = text
	w, h := naturalSize(text)
	if w > e.Width {
		e.Width = w
	}
	if h > e.Height {
		e.Height = h
	}
}

func naturalSize(text string) (int, int) {
	lines := strings.Split(text, "\n")
	longest := 0
	for _, line := range lines {
		if n := len([]rune(line)); n > longest {
			longest = n
		}
	}
	w := gridCeil((longest+2)*charWidth, gridSize)
	h := gridCeil(len(lines)*lineHeight, gridSize)
	return max(w, minElementWidth), max(h, minElementHeight)
}

func (e Element) size() size {
	return size{e.Width, e.Height}
}

func (e Element) position() point {
	return point{e.X, e.Y}
}

func (e Element) contains(p point) bool {
	return p.X >= e.X && p.X < e.X+e.Width && p.Y >= e.Y && p.Y < e.Y+e.Height
}

// near reports whether p lies within margin of the bounding box.
func (e Element) near(p point, margin int) bool {
	return rectDistance(p.vec(), e) <= float64(margin)
}

func newStartElement(goal string, container size) Element {
	el := newElement(startElementID, startElementOffsetX, 0, goal)
	el.IsStart = true
	el.placeStart(container)
	return el
}

// placeStart pins the start element to the fixed left offset and the
// vertical midpoint of the container.
func (e *Element) placeStart(container size) {
	pos := point{startElementOffsetX, container.H/2 - e.Height/2}
	pos = fitToGrid(pos, e.size(), container)
	e.X, e.Y = pos.X, pos.Y
}
