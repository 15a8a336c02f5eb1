package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewElementSize(t *testing.T) {
	el := newElement("e", 0, 0, "Go")
	assert.Equal(t, size{minElementWidth, minElementHeight}, el.size())

	el = newElement("e", 0, 0, "Concurrency patterns")
	assert.Equal(t, size{240, 40}, el.size())

	el = newElement("e", 0, 0, "one\ntwo\nthree")
	assert.Equal(t, size{120, 120}, el.size())
	assert.Equal(t, []string{"one", "two", "three"}, el.Lines())
}

func TestSetTextNeverShrinks(t *testing.T) {
	el := newElement("e", 0, 0, "Go")
	el.Width, el.Height = 400, 160

	el.SetText("Rust")
	assert.Equal(t, size{400, 160}, el.size())

	el.SetText("A label far longer than the width the user picked earlier")
	assert.Equal(t, 600, el.Width)
	assert.Equal(t, 160, el.Height)
}

func TestElementHitBox(t *testing.T) {
	el := newElement("e", 400, 200, "Node")
	assert.True(t, el.contains(point{400, 200}))
	assert.True(t, el.contains(point{519, 239}))
	assert.False(t, el.contains(point{520, 220}))
	assert.True(t, el.near(point{540, 220}, hoverMargin))
	assert.False(t, el.near(point{600, 220}, hoverMargin))
}

func TestStartElement(t *testing.T) {
	el := newStartElement("Go", size{1000, 800})
	assert.True(t, el.IsStart)
	assert.Equal(t, point{40, 400}, el.position())

	el.placeStart(size{1000, 300})
	assert.Equal(t, point{40, 120}, el.position())
}
