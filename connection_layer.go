package main

type renderedPath struct {
	ConnectionID string
	From         vec
	To           vec
	ToSide       Side
	Curve        curve
	Dashed       bool
}

// ConnectionLayer holds the curves drawn for the board's connections.
// Connections carry no geometry, so every path is rebuilt from the current
// element positions on recompute.
type ConnectionLayer struct {
	paths      []renderedPath
	preview    *renderedPath
	recomputes int
}

func newConnectionLayer() *ConnectionLayer {
	return &ConnectionLayer{}
}

func (l *ConnectionLayer) recompute(elements []Element, connections []Connection) {
	byID := make(map[string]Element, len(elements))
	for _, el := range elements {
		byID[el.ID] = el
	}
	paths := make([]renderedPath, 0, len(connections))
	for _, conn := range connections {
		from, ok := byID[conn.From]
		if !ok {
			continue
		}
		to, ok := byID[conn.To]
		if !ok {
			continue
		}
		start, end, toSide := closestAnchorPair(from, conn.Side, to)
		paths = append(paths, renderedPath{
			ConnectionID: conn.ID,
			From:         start,
			To:           end,
			ToSide:       toSide,
			Curve:        curvedPath(start, end),
		})
	}
	l.paths = paths
	l.recomputes++
}

func (l *ConnectionLayer) setPreview(from vec, to vec) {
	l.preview = &renderedPath{
		From:   from,
		To:     to,
		ToSide: SideCenter,
		Curve:  curvedPath(from, to),
		Dashed: true,
	}
}

func (l *ConnectionLayer) clearPreview() {
	l.preview = nil
}

func (l *ConnectionLayer) Paths() []renderedPath {
	out := make([]renderedPath, len(l.paths))
	copy(out, l.paths)
	return out
}

func (l *ConnectionLayer) Preview() (renderedPath, bool) {
	if l.preview == nil {
		return renderedPath{}, false
	}
	return *l.preview, true
}

// HitTest returns the topmost connection whose curve passes within
// tolerance of p. The preview is never hit.
func (l *ConnectionLayer) HitTest(p vec, tolerance float64) (string, bool) {
	for i := len(l.paths) - 1; i >= 0; i-- {
		if l.paths[i].Curve.distanceTo(p) <= tolerance {
			return l.paths[i].ConnectionID, true
		}
	}
	return "", false
}
