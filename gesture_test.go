package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointerHubSingleSession(t *testing.T) {
	hub := newPointerHub()
	var cancelled, released int
	var moves []point

	first := hub.Begin(func(p point) { moves = append(moves, p) }, nil, func() { cancelled++ })
	require.Equal(t, 2, hub.Listeners())

	second := hub.Begin(nil, func(point) { released++ }, nil)
	assert.Equal(t, 1, cancelled)
	assert.True(t, first.Closed())
	assert.False(t, second.Closed())
	assert.Equal(t, 2, hub.Listeners())

	// A stale session closing must not detach the live one.
	first.Close()
	assert.Equal(t, 2, hub.Listeners())

	assert.True(t, hub.Move(point{1, 2}))
	assert.Empty(t, moves)

	assert.True(t, hub.Up(point{3, 4}))
	assert.Equal(t, 1, released)
	assert.True(t, second.Closed())
	assert.Equal(t, 0, hub.Listeners())
}

func TestPointerHubLeave(t *testing.T) {
	hub := newPointerHub()
	assert.False(t, hub.Leave())
	assert.False(t, hub.Move(point{}))
	assert.False(t, hub.Up(point{}))

	var cancelled bool
	s := hub.Begin(nil, nil, func() { cancelled = true })
	assert.True(t, hub.Leave())
	assert.True(t, cancelled)
	assert.True(t, s.Closed())
	assert.Equal(t, 0, hub.Listeners())

	s.Close()
	var nilSession *GestureSession
	nilSession.Close()
	assert.True(t, nilSession.Closed())
}

func TestPointerHubCloseInsideCallback(t *testing.T) {
	hub := newPointerHub()
	var s *GestureSession
	s = hub.Begin(nil, func(point) { s.Close() }, func() { s.Close() })
	hub.Up(point{})
	assert.Equal(t, 0, hub.Listeners())

	s = hub.Begin(nil, nil, func() { s.Close() })
	hub.Leave()
	assert.Equal(t, 0, hub.Listeners())
}

func TestPointerHubHoldKeepsSession(t *testing.T) {
	hub := newPointerHub()
	var releases int
	var s *GestureSession
	s = hub.Begin(nil, func(point) {
		releases++
		if releases == 1 {
			s.Hold()
		}
	}, nil)

	assert.True(t, hub.Up(point{}))
	assert.False(t, s.Closed())
	assert.Equal(t, 2, hub.Listeners())

	assert.True(t, hub.Up(point{}))
	assert.True(t, s.Closed())
	assert.Equal(t, 0, hub.Listeners())
	assert.Equal(t, 2, releases)

	// Holding outside a release leaves a closed session closed.
	s.Hold()
	assert.True(t, s.Closed())
	assert.False(t, hub.Up(point{}))
}
