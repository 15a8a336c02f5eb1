package main

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// exportVisualTXT writes the board exactly as the terminal shows it, minus
// cursor and styling.
func exportVisualTXT(b *Board, filename string, cols, rows int) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if cols < 1 {
		cols = 80
	}
	if rows < 1 {
		rows = 24
	}
	for _, line := range rasterize(b, cols, rows, renderOptions{}).lines() {
		if _, err := fmt.Fprintln(file, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

// exportPNG draws the board in canvas pixels: curves with arrow heads,
// then element boxes with their text.
func exportPNG(b *Board, filename string) error {
	elements := b.AllElements()
	if len(elements) == 0 {
		return fmt.Errorf("nothing to export")
	}

	const padding = gridSize
	minX, minY := math.MaxInt, math.MaxInt
	maxX, maxY := 0, 0
	for _, el := range elements {
		minX, minY = min(minX, el.X), min(minY, el.Y)
		maxX, maxY = max(maxX, el.X+el.Width), max(maxY, el.Y+el.Height)
	}
	for _, p := range b.Paths() {
		minY = min(minY, int(p.Curve.Control.Y))
		maxY = max(maxY, int(p.Curve.Control.Y))
	}
	minX, minY = max(minX-padding, 0), max(minY-padding, 0)
	maxX, maxY = maxX+padding, maxY+padding
	off := vec{float64(minX), float64(minY)}

	dc := gg.NewContext(maxX-minX, maxY-minY)
	dc.SetColor(color.White)
	dc.Clear()

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(ttfFont, &truetype.Options{
		Size:    14,
		DPI:     72,
		Hinting: font.HintingFull,
	}))

	for _, p := range b.Paths() {
		drawCurvePNG(dc, p, off)
	}
	for _, el := range elements {
		drawElementPNG(dc, el, off)
	}
	return dc.SavePNG(filename)
}

func drawCurvePNG(dc *gg.Context, p renderedPath, off vec) {
	c := p.Curve
	dc.SetLineWidth(2)
	dc.SetColor(color.RGBA{0x64, 0x74, 0x8b, 0xff})
	dc.MoveTo(c.Start.X-off.X, c.Start.Y-off.Y)
	dc.QuadraticTo(c.Control.X-off.X, c.Control.Y-off.Y, c.End.X-off.X, c.End.Y-off.Y)
	dc.Stroke()
	drawArrowPNG(dc, c.at(0.95), c.End, off)
}

func drawArrowPNG(dc *gg.Context, from, to vec, off vec) {
	dx, dy := to.X-from.X, to.Y-from.Y
	length := math.Hypot(dx, dy)
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length

	const arrowSize = 10.0
	const arrowAngle = 0.5
	tx, ty := to.X-off.X, to.Y-off.Y
	dc.MoveTo(tx, ty)
	dc.LineTo(tx-arrowSize*dx+arrowSize*dy*arrowAngle, ty-arrowSize*dy-arrowSize*dx*arrowAngle)
	dc.LineTo(tx-arrowSize*dx-arrowSize*dy*arrowAngle, ty-arrowSize*dy+arrowSize*dx*arrowAngle)
	dc.ClosePath()
	dc.Fill()
}

func drawElementPNG(dc *gg.Context, el Element, off vec) {
	x, y := float64(el.X)-off.X, float64(el.Y)-off.Y
	w, h := float64(el.Width), float64(el.Height)

	fill := color.RGBA{0xff, 0xff, 0xff, 0xff}
	if el.IsStart {
		fill = color.RGBA{0xdb, 0xea, 0xfe, 0xff}
	}
	dc.DrawRoundedRectangle(x, y, w, h, 6)
	dc.SetColor(fill)
	dc.FillPreserve()
	dc.SetLineWidth(1.5)
	dc.SetColor(color.Black)
	dc.Stroke()

	lines := el.Lines()
	lineH := 18.0
	top := y + h/2 - lineH*float64(len(lines)-1)/2
	for i, line := range lines {
		dc.DrawStringAnchored(line, x+w/2, top+float64(i)*lineH, 0.5, 0.35)
	}
}
