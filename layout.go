package main

import "fmt"

type edge struct {
	from, to string
	side     Side
}

type layoutOutput struct {
	elements []Element
	edges    []edge
}

func layoutResult(res GenerationResult, container size) layoutOutput {
	switch res.Mode {
	case GenerationMap:
		if res.Map != nil {
			return layoutMap(*res.Map, container)
		}
	default:
		if res.Paths != nil {
			return layoutPaths(*res.Paths, container)
		}
	}
	return layoutOutput{}
}

// gridCell places an element in column col of cols and row row of rows.
// Columns share the width right of the start element margin; the element
// is centred vertically in its row. No collision avoidance.
func gridCell(el *Element, col, cols, row, rows int, container size) {
	cols, rows = max(cols, 1), max(rows, 1)
	colWidth := float64(container.W-layoutLeftMargin) / float64(cols)
	rowHeight := float64(container.H) / float64(rows)
	x := layoutLeftMargin + int(colWidth*float64(col))
	y := int(rowHeight*(float64(row)+0.5)) - el.Height/2
	pos := fitToGrid(point{x, y}, el.size(), container)
	el.X, el.Y = pos.X, pos.Y
}

func phaseID(path, phase int) string {
	return fmt.Sprintf("path-%d-phase-%d", path, phase)
}

// layoutPaths puts phases on columns and paths on rows. Each path runs from
// the start element through its phases in order.
func layoutPaths(lp LearningPaths, container size) layoutOutput {
	cols := 0
	for _, path := range lp.Paths {
		cols = max(cols, len(path.Phase))
	}
	rows := len(lp.Paths)

	var out layoutOutput
	for p, path := range lp.Paths {
		for i, phase := range path.Phase {
			text := phase.PhaseName
			if text == "" {
				text = fmt.Sprintf("Phase %d", i+1)
			}
			el := newElement(phaseID(p, i), 0, 0, text)
			el.Skills = append([]string(nil), phase.Skills...)
			el.Duration = normalizeDuration(phase.Duration)
			el.PathIndex, el.PhaseIndex = p, i
			gridCell(&el, i, cols, p, rows, container)
			out.elements = append(out.elements, el)

			from := startElementID
			if i > 0 {
				from = phaseID(p, i-1)
			}
			out.edges = append(out.edges, edge{from: from, to: el.ID, side: SideRight})
		}
	}
	return out
}

// layoutMap puts layers on columns and a layer's skills on rows. Every skill
// links to every skill of the next layer; the first layer hangs off the
// start element. Map layers are recorded in PhaseIndex and the skill row in
// PathIndex.
func layoutMap(lm LearningMap, container size) layoutOutput {
	cols := len(lm.Layers)
	var out layoutOutput
	for l, layer := range lm.Layers {
		for s, skill := range layer.Skills {
			el := newElement(fmt.Sprintf("%d-%d", l, s), 0, 0, skill.Skill)
			el.Description = skill.Description
			el.PathIndex, el.PhaseIndex = s, l
			gridCell(&el, l, cols, s, len(layer.Skills), container)
			out.elements = append(out.elements, el)

			if l == 0 {
				out.edges = append(out.edges, edge{from: startElementID, to: el.ID, side: SideRight})
				continue
			}
			for prev := range lm.Layers[l-1].Skills {
				out.edges = append(out.edges, edge{from: fmt.Sprintf("%d-%d", l-1, prev), to: el.ID, side: SideRight})
			}
		}
	}
	return out
}
