package main

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type cellKind uint8

const (
	kindPlain cellKind = iota
	kindStart
	kindActive
	kindEdge
	kindPreview
	kindHandle
	kindPopover
	kindBanner
	kindError
)

var cellStyles = map[cellKind]lipgloss.Style{
	kindStart:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
	kindActive:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	kindEdge:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	kindPreview: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	kindHandle:  lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	kindPopover: lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("236")),
	kindBanner:  lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
	kindError:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
}

type boxRunes struct {
	tl, tr, bl, br, h, v rune
}

var (
	plainBox  = boxRunes{'┌', '┐', '└', '┘', '─', '│'}
	startBox  = boxRunes{'╔', '╗', '╚', '╝', '═', '║'}
	activeBox = boxRunes{'#', '#', '#', '#', '#', '#'}
)

// raster is the board drawn onto terminal cells, one cell per
// cellWidth x cellHeight pixels.
type raster struct {
	w, h  int
	cells [][]rune
	kinds [][]cellKind
}

func newRaster(cols, rows int) *raster {
	cols, rows = max(cols, 1), max(rows, 1)
	r := &raster{w: cols, h: rows, cells: make([][]rune, rows), kinds: make([][]cellKind, rows)}
	for y := range r.cells {
		r.cells[y] = []rune(strings.Repeat(" ", cols))
		r.kinds[y] = make([]cellKind, cols)
	}
	return r
}

func (r *raster) set(x, y int, ch rune, kind cellKind) {
	if x < 0 || y < 0 || x >= r.w || y >= r.h {
		return
	}
	r.cells[y][x] = ch
	r.kinds[y][x] = kind
}

func (r *raster) at(x, y int) rune {
	if x < 0 || y < 0 || x >= r.w || y >= r.h {
		return 0
	}
	return r.cells[y][x]
}

func (r *raster) text(x, y int, s string, limit int, kind cellKind) {
	i := 0
	for _, ch := range s {
		if limit >= 0 && i >= limit {
			return
		}
		r.set(x+i, y, ch, kind)
		i++
	}
}

func (r *raster) lines() []string {
	out := make([]string, r.h)
	for y, row := range r.cells {
		out[y] = string(row)
	}
	return out
}

// styled renders each row with runs of the same kind wrapped in their style.
func (r *raster) styled() []string {
	out := make([]string, r.h)
	for y, row := range r.cells {
		var sb strings.Builder
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && r.kinds[y][x] == r.kinds[y][start] {
				continue
			}
			run := string(row[start:x])
			if style, ok := cellStyles[r.kinds[y][start]]; ok {
				run = style.Render(run)
			}
			sb.WriteString(run)
			start = x
		}
		out[y] = sb.String()
	}
	return out
}

func toCell(v vec) (int, int) {
	return int(math.Floor(v.X / cellWidth)), int(math.Floor(v.Y / cellHeight))
}

// cellCenter is the pixel position a mouse event in cell (x, y) reports.
func cellCenter(x, y int) point {
	return point{x*cellWidth + cellWidth/2, y*cellHeight + cellHeight/2}
}

type renderOptions struct {
	cursor     point
	showCursor bool
}

// rasterize draws connections first, then elements, then the hover
// affordances and overlays on top.
func rasterize(b *Board, cols, rows int, opts renderOptions) *raster {
	r := newRaster(cols, rows)

	for _, p := range b.Paths() {
		drawCurve(r, p)
	}
	if p, ok := b.Preview(); ok {
		drawCurve(r, p)
	}

	all := b.AllElements()
	for _, el := range all {
		drawElement(r, el, b.View(el.ID))
	}

	if v := b.Hovered(); v != nil {
		if el, ok := b.Element(v.ID()); ok {
			drawAffordances(r, el, v)
		}
	}

	switch {
	case b.Loading():
		banner(r, loadingMessage(b.Mode()), kindBanner)
	case b.Err() != "":
		banner(r, b.Err(), kindError)
	}

	if opts.showCursor {
		cx, cy := toCell(opts.cursor.vec())
		r.set(cx, cy, '█', kindPlain)
	}
	return r
}

func loadingMessage(mode GenerationMode) string {
	if mode == GenerationMap {
		return "Generating learning map..."
	}
	return "Generating learning paths..."
}

func drawCurve(r *raster, p renderedPath) {
	length := p.From.dist(p.Curve.Control) + p.Curve.Control.dist(p.To)
	steps := max(int(length/(cellWidth/2)), 2)
	kind, ch := kindEdge, '•'
	if p.Dashed {
		kind, ch = kindPreview, '·'
	}
	for i, pt := range p.Curve.sample(steps) {
		if p.Dashed && i%4 >= 2 {
			continue
		}
		x, y := toCell(pt)
		r.set(x, y, ch, kind)
	}
	if p.Dashed {
		return
	}
	x, y := toCell(p.To)
	switch p.ToSide {
	case SideLeft:
		r.set(x-1, y, '▶', kind)
	case SideRight:
		r.set(x, y, '◀', kind)
	case SideTop:
		r.set(x, y-1, '▼', kind)
	case SideBottom:
		r.set(x, y, '▲', kind)
	}
}

func drawElement(r *raster, el Element, v *GraphElement) {
	x0, y0 := el.X/cellWidth, el.Y/cellHeight
	w, h := max(el.Width/cellWidth, 2), max(el.Height/cellHeight, 2)

	runes, kind := plainBox, kindPlain
	switch {
	case el.IsStart:
		runes, kind = startBox, kindStart
	case v != nil && (v.State() == StateDragging || v.State() == StateResizing):
		runes, kind = activeBox, kindActive
	}

	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			ch := ' '
			switch {
			case y == y0 && x == x0:
				ch = runes.tl
			case y == y0 && x == x0+w-1:
				ch = runes.tr
			case y == y0+h-1 && x == x0:
				ch = runes.bl
			case y == y0+h-1 && x == x0+w-1:
				ch = runes.br
			case y == y0 || y == y0+h-1:
				ch = runes.h
			case x == x0 || x == x0+w-1:
				ch = runes.v
			}
			r.set(x, y, ch, kind)
		}
	}

	text := el.Text
	editing := v != nil && v.State() == StateEditing
	if editing {
		text = v.EditText() + "█"
	}
	lines := strings.Split(text, "\n")
	inner := h - 2
	top := y0 + 1 + max((inner-len(lines))/2, 0)
	for i, line := range lines {
		if i >= inner {
			break
		}
		pad := max((w-2-len([]rune(line)))/2, 0)
		if editing {
			pad = 0
		}
		r.text(x0+1+pad, top+i, line, w-2-pad, kind)
	}
}

func drawAffordances(r *raster, el Element, v *GraphElement) {
	if v.HandlesVisible() {
		for _, side := range connectSides {
			x, y := toCell(handlePoint(el, side))
			r.set(x, y, '◆', kindHandle)
		}
	}
	if v.DismissVisible() {
		x, y := toCell(dismissPoint(el))
		r.set(x, y, '×', kindHandle)
	}
	if !el.IsStart && v.State() == StateIdle {
		x, y := toCell(resizePoint(el))
		r.set(x, y, '◢', kindHandle)
	}
	drawPopover(r, el, v.Popover())
}

// drawPopover boxes the lines below the element, or above it when the
// bottom of the screen would cut it off.
func drawPopover(r *raster, el Element, lines []string) {
	if len(lines) == 0 {
		return
	}
	width := 0
	for _, line := range lines {
		width = max(width, len([]rune(line)))
	}
	width += 4
	height := len(lines) + 2

	x0 := el.X / cellWidth
	y0 := (el.Y+el.Height)/cellHeight + 1
	if y0+height > r.h {
		y0 = el.Y/cellHeight - height - 1
	}
	if x0+width > r.w {
		x0 = r.w - width
	}
	x0, y0 = max(x0, 0), max(y0, 0)

	for y := y0; y < y0+height; y++ {
		for x := x0; x < x0+width; x++ {
			ch := ' '
			switch {
			case (y == y0 || y == y0+height-1) && (x == x0 || x == x0+width-1):
				ch = '+'
			case y == y0 || y == y0+height-1:
				ch = '-'
			case x == x0 || x == x0+width-1:
				ch = '|'
			}
			r.set(x, y, ch, kindPopover)
		}
	}
	for i, line := range lines {
		r.text(x0+2, y0+1+i, line, width-4, kindPopover)
	}
}

func banner(r *raster, msg string, kind cellKind) {
	n := len([]rune(msg))
	x := max((r.w-n)/2, 0)
	r.text(x, 0, msg, r.w, kind)
}

// renderBoard returns the styled rows for the terminal view.
func renderBoard(b *Board, cols, rows int, opts renderOptions) []string {
	return rasterize(b, cols, rows, opts).styled()
}
