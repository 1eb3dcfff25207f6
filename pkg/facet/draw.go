package facet

import (
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

type thumbnailers []plot.Thumbnailer

// legendPad separates an outside legend from the grid.
var legendPad = vg.Points(8)

// cellPad separates adjacent cells.
var cellPad = vg.Points(6)

// FigureSize returns the base figure size in canvas units, before any
// outside legend growth.
func (g *Grid) FigureSize() (w, h vg.Length) {
	return vg.Length(g.shape.Width) * vg.Inch, vg.Length(g.shape.Height) * vg.Inch
}

// HasLegend reports whether a grid-level legend will be drawn: it requires a
// hue variable distinct from the row and column variables, the legend
// enabled, and at least one harvested entry.
func (g *Grid) HasLegend() bool {
	hue := g.cfg.core.Hue
	if hue == "" || !g.cfg.legend {
		return false
	}
	if hue == g.cfg.core.Row || hue == g.cfg.core.Col {
		return false
	}
	return len(g.legendLabels) > 0
}

// LegendWidth measures the width an outside legend will occupy on the given
// canvas, including padding. It returns zero when no outside legend will be
// drawn. Render sinks use this for the two-pass figure growth: render to a
// draft canvas, measure, grow the figure width, render again.
func (g *Grid) LegendWidth(dc draw.Canvas) vg.Length {
	if !g.HasLegend() || !g.cfg.legendOut {
		return 0
	}
	l := g.buildLegend()
	r := l.Rectangle(dc)
	return r.Max.X - r.Min.X + legendPad
}

// buildLegend assembles the accumulated entries in first-seen label order.
func (g *Grid) buildLegend() plot.Legend {
	l := plot.NewLegend()
	for _, label := range g.legendLabels {
		l.Add(label, g.legendThumbs[label]...)
	}
	l.Top = true
	return l
}

// Draw renders the grid onto the canvas. With an outside legend the grid
// area is narrowed by the measured legend width and the legend is drawn in
// the freed strip; an inside legend is attached to the top-left cell.
func (g *Grid) Draw(dc draw.Canvas) error {
	area := dc
	drawLegendOutside := false

	if g.HasLegend() {
		if g.cfg.legendOut {
			w := g.LegendWidth(dc)
			area = draw.Crop(dc, 0, -w, 0, 0)
			drawLegendOutside = true
		} else {
			cell := g.cells[0][0]
			cell.Legend = g.buildLegend()
		}
	}

	plots := make([][]*plot.Plot, g.shape.Rows)
	for i := range plots {
		plots[i] = make([]*plot.Plot, g.shape.Cols)
		for j := range plots[i] {
			if g.cellActive(i, j) {
				plots[i][j] = g.cells[i][j].Plot
			}
		}
	}

	tiles := draw.Tiles{
		Rows: g.shape.Rows,
		Cols: g.shape.Cols,
		PadX: cellPad,
		PadY: cellPad,
	}
	canvases := plot.Align(plots, tiles, area)
	for i := range plots {
		for j := range plots[i] {
			if plots[i][j] != nil {
				plots[i][j].Draw(canvases[i][j])
			}
		}
	}

	g.drawMarginTitles(canvases)

	if drawLegendOutside {
		l := g.buildLegend()
		strip := draw.Crop(dc, area.Max.X-dc.Min.X, 0, 0, 0)
		l.Left = true
		l.Draw(strip)
	}
	return nil
}

// cellActive reports whether the cell at (i, j) belongs to the grid. Under
// wrapping, trailing cells past the last column label are blank.
func (g *Grid) cellActive(i, j int) bool {
	if g.shape.Wrap == 0 {
		return true
	}
	return i*g.shape.Cols+j < len(g.labels.Col)
}

// drawMarginTitles writes rotated row titles along the right edge of the
// last column.
func (g *Grid) drawMarginTitles(canvases [][]draw.Canvas) {
	if len(g.marginRowTitles) == 0 {
		return
	}
	sty := g.cells[0][0].Title.TextStyle
	sty.Rotation = -math.Pi / 2
	sty.XAlign = text.XCenter
	sty.YAlign = text.YCenter

	last := g.shape.Cols - 1
	for i, title := range g.marginRowTitles {
		if i >= len(canvases) {
			break
		}
		c := canvases[i][last]
		pt := vg.Point{
			X: c.Max.X - vg.Points(4),
			Y: (c.Min.Y + c.Max.Y) / 2,
		}
		c.FillText(sty, pt, title)
	}
}
