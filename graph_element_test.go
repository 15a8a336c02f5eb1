package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nodeAt400 adds a 120x40 "Node" element at (400, 200); its centre is
// (460, 220).
func nodeAt400(t *testing.T, b *Board) Element {
	t.Helper()
	el := b.addElementAt(point{400, 200}, "Node")
	require.Equal(t, Element{ID: el.ID, X: 400, Y: 200, Width: 120, Height: 40, Text: "Node", PathIndex: -1, PhaseIndex: -1}, el)
	return el
}

func TestDragSnapsAndCommits(t *testing.T) {
	b := newTestBoard(t, "Go")
	el := nodeAt400(t, b)
	v := b.View(el.ID)

	b.PointerDown(point{460, 220}, 1)
	require.Equal(t, StateDragging, v.State())

	b.PointerMove(point{503, 237})
	got, _ := b.Element(el.ID)
	assert.Equal(t, point{440, 200}, got.position())

	b.PointerMove(point{2000, 2000})
	got, _ = b.Element(el.ID)
	assert.Equal(t, point{880, 760}, got.position())

	b.PointerUp(point{2000, 2000})
	assert.Equal(t, StateIdle, v.State())
	assert.Nil(t, b.Editing())
	assert.Equal(t, 0, b.hub.Listeners())
}

func TestDragCancelRestores(t *testing.T) {
	b := newTestBoard(t, "Go")
	el := nodeAt400(t, b)

	b.PointerDown(point{460, 220}, 1)
	b.PointerMove(point{700, 400})
	b.PointerLeave()

	got, _ := b.Element(el.ID)
	assert.Equal(t, point{400, 200}, got.position())
	assert.Equal(t, StateIdle, b.View(el.ID).State())
}

func TestClickEditsText(t *testing.T) {
	b := newTestBoard(t, "Go")
	el := nodeAt400(t, b)
	v := b.View(el.ID)

	b.PointerDown(point{460, 220}, 1)
	b.PointerUp(point{460, 220})
	require.Equal(t, StateEditing, v.State())
	assert.Equal(t, "Node", v.EditText())

	for _, key := range []string{"backspace", "backspace", "backspace", "backspace", "G", "o", " ", "b", "a", "s", "i", "c", "s", "enter"} {
		assert.True(t, b.Key(key))
	}
	assert.Equal(t, StateIdle, v.State())
	got, _ := b.Element(el.ID)
	assert.Equal(t, "Go basics", got.Text)
	assert.Equal(t, 120, got.Width)
}

func TestEditEscapeReverts(t *testing.T) {
	b := newTestBoard(t, "Go")
	el := nodeAt400(t, b)
	v := b.View(el.ID)
	require.True(t, v.BeginEdit())

	v.InsertText(" and more")
	b.Key("esc")
	got, _ := b.Element(el.ID)
	assert.Equal(t, "Node", got.Text)
	assert.Equal(t, StateIdle, v.State())
}

func TestEditBlurCommits(t *testing.T) {
	b := newTestBoard(t, "Go")
	el := nodeAt400(t, b)
	v := b.View(el.ID)
	require.True(t, v.BeginEdit())
	v.InsertText(" with a much longer label")

	b.PointerDown(point{900, 700}, 1)
	got, _ := b.Element(el.ID)
	assert.Equal(t, "Node with a much longer label", got.Text)
	assert.Equal(t, 320, got.Width)
	assert.Equal(t, StateIdle, v.State())
}

func TestDoubleClickMode(t *testing.T) {
	b := newTestBoard(t, "Go", WithEditTrigger(EditOnDoubleClick))
	el := nodeAt400(t, b)
	v := b.View(el.ID)

	b.PointerDown(point{460, 220}, 1)
	b.PointerUp(point{460, 220})
	assert.Equal(t, StateIdle, v.State())

	b.PointerDown(point{460, 220}, 2)
	assert.Equal(t, StateEditing, v.State())

	b.SetEditTrigger(EditOnClick)
	assert.Equal(t, EditOnClick, v.editOn)
}

func TestStartElementIsNotEditableOrDraggable(t *testing.T) {
	b := newTestBoard(t, "Go")
	v := b.View(startElementID)
	require.NotNil(t, v)

	assert.False(t, v.BeginEdit())
	b.PointerDown(point{100, 420}, 1)
	b.PointerMove(point{600, 600})
	b.PointerUp(point{600, 600})
	assert.Equal(t, point{40, 400}, b.Start().position())
	assert.Equal(t, StateIdle, v.State())
	assert.False(t, v.DismissVisible())
}

func TestDismissDeletes(t *testing.T) {
	b := newTestBoard(t, "Go")
	el := nodeAt400(t, b)
	_, err := b.Connect(startElementID, el.ID, SideRight)
	require.NoError(t, err)

	b.PointerMove(point{515, 205})
	require.True(t, b.View(el.ID).DismissVisible())
	b.PointerDown(point{520, 200}, 1)

	assert.Empty(t, b.Elements())
	assert.Empty(t, b.Connections())
}

func TestResizeGesture(t *testing.T) {
	b := newTestBoard(t, "Go")
	el := nodeAt400(t, b)
	v := b.View(el.ID)

	b.PointerDown(point{520, 240}, 1)
	require.Equal(t, StateResizing, v.State())
	b.PointerMove(point{583, 262})
	got, _ := b.Element(el.ID)
	assert.Equal(t, size{200, 80}, got.size())

	b.PointerMove(point{410, 205})
	got, _ = b.Element(el.ID)
	assert.Equal(t, size{minElementWidth, minElementHeight}, got.size())

	b.PointerUp(point{410, 205})
	assert.Equal(t, StateIdle, v.State())
	assert.Equal(t, 0, b.hub.Listeners())
}

func TestHandleDragConnects(t *testing.T) {
	b := newTestBoard(t, "Go")
	el := nodeAt400(t, b)
	other := b.addElementAt(point{700, 500}, "Other")

	b.PointerMove(point{525, 220})
	v := b.View(el.ID)
	require.True(t, v.HandlesVisible())

	b.PointerDown(point{530, 220}, 1)
	from, side, ok := b.Connecting()
	require.True(t, ok)
	assert.Equal(t, el.ID, from)
	assert.Equal(t, SideRight, side)
	assert.False(t, v.HandlesVisible())

	b.PointerMove(point{650, 400})
	preview, ok := b.Preview()
	require.True(t, ok)
	assert.Equal(t, vec{520, 220}, preview.From)
	assert.Equal(t, vec{650, 400}, preview.To)

	b.PointerUp(point{760, 520})
	conns := b.Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, el.ID, conns[0].From)
	assert.Equal(t, other.ID, conns[0].To)
	assert.Len(t, b.Elements(), 2)
}

func TestHandleClickKeepsConnecting(t *testing.T) {
	b := newTestBoard(t, "Go")
	el := nodeAt400(t, b)
	other := b.addElementAt(point{700, 500}, "Other")

	b.PointerMove(point{525, 220})
	b.PointerDown(point{530, 220}, 1)
	b.PointerUp(point{530, 220})

	from, side, ok := b.Connecting()
	require.True(t, ok)
	assert.Equal(t, el.ID, from)
	assert.Equal(t, SideRight, side)
	assert.Equal(t, 2, b.hub.Listeners())
	assert.Empty(t, b.Connections())

	// A release on the source body is still not a target.
	b.PointerUp(point{460, 220})
	_, _, ok = b.Connecting()
	require.True(t, ok)

	b.PointerMove(point{650, 400})
	b.PointerDown(point{760, 520}, 1)
	conns := b.Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, other.ID, conns[0].To)
	_, _, ok = b.Connecting()
	assert.False(t, ok)
	assert.Equal(t, 0, b.hub.Listeners())
	b.PointerUp(point{760, 520})
	assert.Len(t, b.Connections(), 1)
}

func TestPopover(t *testing.T) {
	b := newTestBoard(t, "Go")
	b.FinishGeneration(samplePaths(), nil)
	v := b.View("path-0-phase-0")
	require.NotNil(t, v)
	el, _ := b.Element("path-0-phase-0")

	assert.Nil(t, v.Popover())
	b.PointerMove(point{el.X + 10, el.Y + 10})
	assert.Equal(t, []string{"Syntax (2 weeks)"}, v.Popover())

	tooling, _ := b.Element("path-0-phase-1")
	b.PointerMove(point{tooling.X + 10, tooling.Y + 10})
	assert.Equal(t, []string{"Modules (unknown)", "Testing (unknown)"}, b.View(tooling.ID).Popover())

	phase, _ := b.Element("path-1-phase-0")
	assert.Equal(t, "Phase 1", phase.Text)
}
