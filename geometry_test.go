package main

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapToGrid(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 0},
		{19, 0},
		{20, 40},
		{60, 80},
		{137, 120},
		{211, 200},
		{-20, 0},
		{-21, -40},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, snapToGrid(tt.in, gridSize), "snap(%d)", tt.in)
	}
}

func TestFitToGridStaysInside(t *testing.T) {
	container := size{1000, 800}
	el := size{120, 40}

	assert.Equal(t, point{880, 760}, fitToGrid(point{990, 790}, el, container))
	assert.Equal(t, point{0, 0}, fitToGrid(point{-300, -1}, el, container))

	// 870 snaps up to 880, which no longer fits a 990 wide container.
	assert.Equal(t, point{840, 0}, fitToGrid(point{2000, 0}, el, size{990, 800}))
}

func TestFitToGridRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	container := size{1010, 790}
	for i := 0; i < 500; i++ {
		el := size{gridSize * (3 + rng.Intn(5)), gridSize * (1 + rng.Intn(4))}
		pos := fitToGrid(point{rng.Intn(3000) - 1000, rng.Intn(3000) - 1000}, el, container)
		require.Zero(t, pos.X%gridSize)
		require.Zero(t, pos.Y%gridSize)
		require.GreaterOrEqual(t, pos.X, 0)
		require.GreaterOrEqual(t, pos.Y, 0)
		require.LessOrEqual(t, pos.X+el.W, container.W)
		require.LessOrEqual(t, pos.Y+el.H, container.H)
	}
}

func TestClosestAnchorPair(t *testing.T) {
	a := Element{ID: "a", X: 0, Y: 0, Width: 120, Height: 40}

	right := Element{ID: "b", X: 400, Y: 0, Width: 120, Height: 40}
	start, end, side := closestAnchorPair(a, SideRight, right)
	assert.Equal(t, vec{120, 20}, start)
	assert.Equal(t, vec{400, 20}, end)
	assert.Equal(t, SideLeft, side)

	below := Element{ID: "c", X: 0, Y: 200, Width: 120, Height: 40}
	_, end, side = closestAnchorPair(a, SideRight, below)
	assert.Equal(t, vec{60, 200}, end)
	assert.Equal(t, SideTop, side)
}

func TestClosestAnchorPairTiesKeepOrder(t *testing.T) {
	square := Element{ID: "s", Width: 80, Height: 80}
	for i := 0; i < 10; i++ {
		_, _, side := closestAnchorPair(square, SideCenter, square)
		require.Equal(t, SideLeft, side)
	}

	wide := Element{ID: "w", Width: 200, Height: 80}
	_, _, side := closestAnchorPair(wide, SideCenter, wide)
	assert.Equal(t, SideTop, side)
}

func TestCurvedPath(t *testing.T) {
	down := curvedPath(vec{0, 0}, vec{100, 300})
	assert.Equal(t, vec{50, 250}, down.Control)

	up := curvedPath(vec{0, 300}, vec{100, 0})
	assert.Equal(t, vec{50, 50}, up.Control)

	small := curvedPath(vec{0, 0}, vec{100, 60})
	assert.Equal(t, vec{50, 60}, small.Control)

	flat := curvedPath(vec{0, 20}, vec{100, 20})
	assert.Equal(t, vec{50, 20}, flat.Control)
	assert.InDelta(t, 0, flat.distanceTo(vec{50, 20}), 1e-9)
	assert.InDelta(t, 30, flat.distanceTo(vec{50, 50}), 1e-9)

	assert.Equal(t, down.Start, down.at(0))
	assert.Equal(t, down.End, down.at(1))
}

func TestNearestElement(t *testing.T) {
	els := []Element{
		{ID: "a", X: 100, Y: 100, Width: 120, Height: 40},
		{ID: "b", X: 300, Y: 100, Width: 120, Height: 40},
	}

	el, ok := nearestElement(vec{90, 100}, els, nearestThreshold)
	require.True(t, ok)
	assert.Equal(t, "a", el.ID)

	el, ok = nearestElement(vec{270, 120}, els, nearestThreshold)
	require.True(t, ok)
	assert.Equal(t, "b", el.ID)

	_, ok = nearestElement(vec{600, 600}, els, nearestThreshold)
	assert.False(t, ok)
}
