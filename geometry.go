package main

import "math"

type point struct {
	X, Y int
}

// vec is a point in continuous canvas space, used for anchors and curves.
type vec struct {
	X, Y float64
}

func (p point) vec() vec {
	return vec{float64(p.X), float64(p.Y)}
}

func (v vec) point() point {
	return point{int(math.Round(v.X)), int(math.Round(v.Y))}
}

func (v vec) dist(o vec) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

type size struct {
	W, H int
}

type Side int

const (
	SideLeft Side = iota
	SideRight
	SideTop
	SideBottom
	SideCenter
)

// connectSides is the enumeration order used for anchor ties.
var connectSides = [...]Side{SideLeft, SideRight, SideTop, SideBottom}

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	case SideTop:
		return "top"
	case SideBottom:
		return "bottom"
	case SideCenter:
		return "center"
	default:
		return "unknown"
	}
}

// snapToGrid rounds half up, so -20 snaps to 0 and 20 to 40.
func snapToGrid(value, grid int) int {
	if grid <= 0 {
		return value
	}
	return int(math.Floor(float64(value)/float64(grid)+0.5)) * grid
}

// gridCeil rounds up to the next multiple of grid.
func gridCeil(value, grid int) int {
	if grid <= 0 {
		return value
	}
	return int(math.Ceil(float64(value)/float64(grid))) * grid
}

func clampToContainer(pos point, el, container size) point {
	return point{
		X: clampAxis(pos.X, container.W-el.W),
		Y: clampAxis(pos.Y, container.H-el.H),
	}
}

func clampAxis(v, limit int) int {
	if v > limit {
		v = limit
	}
	if v < 0 {
		v = 0
	}
	return v
}

// fitToGrid clamps then snaps, stepping back one grid unit when snapping
// pushed the element over the far edge.
func fitToGrid(pos point, el, container size) point {
	pos = clampToContainer(pos, el, container)
	return point{
		X: fitAxis(pos.X, container.W-el.W),
		Y: fitAxis(pos.Y, container.H-el.H),
	}
}

func fitAxis(v, limit int) int {
	v = snapToGrid(v, gridSize)
	for v > limit && v > 0 {
		v -= gridSize
	}
	if v < 0 {
		v = 0
	}
	return v
}

func anchorPoint(el Element, side Side) vec {
	x, y := float64(el.X), float64(el.Y)
	w, h := float64(el.Width), float64(el.Height)
	switch side {
	case SideLeft:
		return vec{x, y + h/2}
	case SideRight:
		return vec{x + w, y + h/2}
	case SideTop:
		return vec{x + w/2, y}
	case SideBottom:
		return vec{x + w/2, y + h}
	default:
		return vec{x + w/2, y + h/2}
	}
}

// closestAnchorPair keeps the source anchor fixed and picks the target side
// nearest to it. Ties keep the earlier side in connectSides.
func closestAnchorPair(from Element, fromSide Side, to Element) (vec, vec, Side) {
	start := anchorPoint(from, fromSide)
	bestSide := connectSides[0]
	best := anchorPoint(to, bestSide)
	bestDist := start.dist(best)
	for _, side := range connectSides[1:] {
		candidate := anchorPoint(to, side)
		if d := start.dist(candidate); d < bestDist {
			best, bestDist, bestSide = candidate, d, side
		}
	}
	return start, best, bestSide
}

// curve is a quadratic Bezier segment.
type curve struct {
	Start, Control, End vec
}

func curvedPath(start, end vec) curve {
	dy := end.Y - start.Y
	offset := math.Min(maxCurveOffset, math.Abs(dy)/2)
	if start.Y >= end.Y {
		offset = -offset
	}
	return curve{
		Start:   start,
		Control: vec{(start.X + end.X) / 2, (start.Y+end.Y)/2 + offset},
		End:     end,
	}
}

func (c curve) at(t float64) vec {
	u := 1 - t
	return vec{
		X: u*u*c.Start.X + 2*u*t*c.Control.X + t*t*c.End.X,
		Y: u*u*c.Start.Y + 2*u*t*c.Control.Y + t*t*c.End.Y,
	}
}

func (c curve) sample(n int) []vec {
	if n < 1 {
		n = 1
	}
	pts := make([]vec, n+1)
	for i := 0; i <= n; i++ {
		pts[i] = c.at(float64(i) / float64(n))
	}
	return pts
}

func (c curve) distanceTo(p vec) float64 {
	pts := c.sample(curveSampleCount)
	best := math.Inf(1)
	for i := 0; i < len(pts)-1; i++ {
		if d := segmentDistance(p, pts[i], pts[i+1]); d < best {
			best = d
		}
	}
	return best
}

func segmentDistance(p, a, b vec) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return p.dist(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return p.dist(vec{a.X + t*dx, a.Y + t*dy})
}

// rectDistance is zero inside the element's bounding box.
func rectDistance(p vec, el Element) float64 {
	dx := math.Max(math.Max(float64(el.X)-p.X, 0), p.X-float64(el.X+el.Width))
	dy := math.Max(math.Max(float64(el.Y)-p.Y, 0), p.Y-float64(el.Y+el.Height))
	return math.Hypot(dx, dy)
}

func nearestElement(p vec, elements []Element, threshold float64) (Element, bool) {
	var best Element
	bestDist := math.Inf(1)
	found := false
	for _, el := range elements {
		d := rectDistance(p, el)
		if d <= threshold && d < bestDist {
			best, bestDist, found = el, d, true
		}
	}
	return best, found
}
