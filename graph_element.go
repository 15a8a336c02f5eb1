package main

import (
	"fmt"
	"unicode/utf8"
)

type ElementState int

const (
	StateIdle ElementState = iota
	StateEditing
	StateDragging
	StateResizing
)

func (s ElementState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEditing:
		return "editing"
	case StateDragging:
		return "dragging"
	case StateResizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// elementHost is what a GraphElement needs from its owning board.
type elementHost interface {
	element(id string) (Element, bool)
	containerSize() size
	connectionSource() (string, bool)
	pointers() *PointerHub

	MoveElement(id string, x, y int) bool
	ResizeElement(id string, width, height int) bool
	ChangeText(id, text string) bool
	DeleteElement(id string) bool
	StartConnection(id string, side Side, anchor vec) bool
	CompleteConnection(targetID string, release *point) bool
}

type hitKind int

const (
	hitNone hitKind = iota
	hitBody
	hitResize
	hitDismiss
	hitHandle
)

type hitTarget struct {
	kind hitKind
	side Side
}

// GraphElement is the interaction controller of one element.
type GraphElement struct {
	id      string
	host    elementHost
	editOn  EditTrigger
	state   ElementState
	hovered bool

	editText     string
	originalText string

	pressAt  point
	pressPos point
	moved    bool
	session  *GestureSession
}

func newGraphElement(id string, host elementHost, editOn EditTrigger) *GraphElement {
	return &GraphElement{id: id, host: host, editOn: editOn}
}

func (g *GraphElement) ID() string { return g.id }

func (g *GraphElement) State() ElementState { return g.state }

func (g *GraphElement) Hovered() bool { return g.hovered }

func (g *GraphElement) EditText() string { return g.editText }

func (g *GraphElement) data() (Element, bool) {
	return g.host.element(g.id)
}

// setHover updates the hover flag from the pointer position.
func (g *GraphElement) setHover(p point) bool {
	el, ok := g.data()
	g.hovered = ok && el.near(p, hoverMargin)
	return g.hovered
}

func (g *GraphElement) HandlesVisible() bool {
	if !g.hovered || g.state != StateIdle {
		return false
	}
	_, connecting := g.host.connectionSource()
	return !connecting
}

func (g *GraphElement) DismissVisible() bool {
	el, ok := g.data()
	return ok && g.hovered && !el.IsStart && g.state == StateIdle
}

func handlePoint(el Element, side Side) vec {
	a := anchorPoint(el, side)
	switch side {
	case SideLeft:
		a.X -= handleOffset
	case SideRight:
		a.X += handleOffset
	case SideTop:
		a.Y -= handleOffset
	case SideBottom:
		a.Y += handleOffset
	}
	return a
}

func dismissPoint(el Element) vec {
	return vec{float64(el.X + el.Width), float64(el.Y)}
}

func resizePoint(el Element) vec {
	return vec{float64(el.X + el.Width), float64(el.Y + el.Height)}
}

func (g *GraphElement) hitTest(p point) hitTarget {
	el, ok := g.data()
	if !ok {
		return hitTarget{}
	}
	pv := p.vec()
	if g.DismissVisible() && pv.dist(dismissPoint(el)) <= handleRadius {
		return hitTarget{kind: hitDismiss}
	}
	if !el.IsStart && pv.dist(resizePoint(el)) <= handleRadius {
		return hitTarget{kind: hitResize}
	}
	if g.HandlesVisible() {
		for _, side := range connectSides {
			if pv.dist(handlePoint(el, side)) <= handleRadius {
				return hitTarget{kind: hitHandle, side: side}
			}
		}
	}
	if el.contains(p) {
		return hitTarget{kind: hitBody}
	}
	return hitTarget{}
}

// PointerDown dispatches a primary press. clicks is 2 for a double click.
func (g *GraphElement) PointerDown(p point, clicks int) {
	el, ok := g.data()
	if !ok {
		return
	}
	if g.state == StateEditing {
		if !el.contains(p) {
			g.Blur()
		}
		return
	}
	target := g.hitTest(p)
	switch target.kind {
	case hitDismiss:
		g.host.DeleteElement(g.id)
	case hitHandle:
		g.host.StartConnection(g.id, target.side, anchorPoint(el, target.side))
	case hitResize:
		g.beginResize(p)
	case hitBody:
		if el.IsStart {
			return
		}
		if clicks >= 2 && g.editOn == EditOnDoubleClick {
			g.BeginEdit()
			return
		}
		g.beginDrag(p, el)
	}
}

// beginDrag attaches the session before touching state: attaching cancels
// any earlier gesture, which may be this element's own.
func (g *GraphElement) beginDrag(p point, el Element) {
	session := g.host.pointers().Begin(g.dragMove, g.dragEnd, g.dragCancel)
	g.state = StateDragging
	g.pressAt = p
	g.pressPos = el.position()
	g.moved = false
	g.session = session
}

// dragMove follows the pointer delta from the press origin, clamps, snaps
// and commits every step.
func (g *GraphElement) dragMove(p point) {
	if g.state != StateDragging {
		return
	}
	el, ok := g.data()
	if !ok {
		g.endGesture()
		return
	}
	if p != g.pressAt {
		g.moved = true
	}
	target := point{g.pressPos.X + p.X - g.pressAt.X, g.pressPos.Y + p.Y - g.pressAt.Y}
	pos := fitToGrid(target, el.size(), g.host.containerSize())
	if pos != el.position() {
		g.host.MoveElement(g.id, pos.X, pos.Y)
	}
}

func (g *GraphElement) dragEnd(p point) {
	if g.state != StateDragging {
		return
	}
	clicked := !g.moved && p == g.pressAt
	g.endGesture()
	if clicked && g.editOn == EditOnClick {
		if _, connecting := g.host.connectionSource(); !connecting {
			g.BeginEdit()
		}
	}
}

// dragCancel puts the element back where the gesture started.
func (g *GraphElement) dragCancel() {
	if g.state != StateDragging {
		return
	}
	g.host.MoveElement(g.id, g.pressPos.X, g.pressPos.Y)
	g.endGesture()
}

func (g *GraphElement) beginResize(p point) {
	session := g.host.pointers().Begin(g.resizeMove, g.resizeEnd, g.resizeCancel)
	g.state = StateResizing
	g.pressAt = p
	g.session = session
}

func (g *GraphElement) resizeMove(p point) {
	if g.state != StateResizing {
		return
	}
	el, ok := g.data()
	if !ok {
		g.endGesture()
		return
	}
	w := max(snapToGrid(p.X-el.X, gridSize), minElementWidth)
	h := max(snapToGrid(p.Y-el.Y, gridSize), minElementHeight)
	if w != el.Width || h != el.Height {
		g.host.ResizeElement(g.id, w, h)
	}
}

func (g *GraphElement) resizeEnd(point) {
	g.endGesture()
}

func (g *GraphElement) resizeCancel() {
	g.endGesture()
}

func (g *GraphElement) endGesture() {
	g.state = StateIdle
	g.session.Close()
	g.session = nil
}

// BeginEdit opens the inline editor seeded with the current text. The start
// element is edited through the goal input, never here.
func (g *GraphElement) BeginEdit() bool {
	el, ok := g.data()
	if !ok || el.IsStart || g.state != StateIdle {
		return false
	}
	g.state = StateEditing
	g.editText = el.Text
	g.originalText = el.Text
	return true
}

func (g *GraphElement) InsertText(s string) {
	if g.state != StateEditing {
		return
	}
	g.editText += s
}

func (g *GraphElement) Backspace() {
	if g.state != StateEditing || g.editText == "" {
		return
	}
	_, n := utf8.DecodeLastRuneInString(g.editText)
	g.editText = g.editText[:len(g.editText)-n]
}

// Key handles editor keys. It reports whether the key was consumed.
func (g *GraphElement) Key(key string) bool {
	if g.state != StateEditing {
		return false
	}
	switch key {
	case "enter":
		g.commitEdit()
	case "esc":
		g.cancelEdit()
	case "backspace":
		g.Backspace()
	case "space", " ":
		g.InsertText(" ")
	default:
		if utf8.RuneCountInString(key) == 1 {
			g.InsertText(key)
		}
	}
	return true
}

func (g *GraphElement) Blur() {
	if g.state == StateEditing {
		g.commitEdit()
	}
}

func (g *GraphElement) commitEdit() {
	g.state = StateIdle
	if g.editText != g.originalText {
		g.host.ChangeText(g.id, g.editText)
	}
}

func (g *GraphElement) cancelEdit() {
	g.state = StateIdle
	g.editText = g.originalText
}

// Popover lists the element's skills with its formatted duration, preceded
// by the description of map skills. It is empty unless the element is
// hovered.
func (g *GraphElement) Popover() []string {
	el, ok := g.data()
	if !ok || !g.hovered || (len(el.Skills) == 0 && el.Description == "") {
		return nil
	}
	lines := make([]string, 0, len(el.Skills)+1)
	if el.Description != "" {
		lines = append(lines, el.Description)
	}
	for _, skill := range el.Skills {
		lines = append(lines, fmt.Sprintf("%s (%s)", skill, el.Duration))
	}
	return lines
}
