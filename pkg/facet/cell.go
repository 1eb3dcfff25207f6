package facet

import (
	"gonum.org/v1/plot"
)

// Cell is one panel of the grid. It embeds *plot.Plot, so plot functions use
// it exactly like a plot, with one difference: Add also harvests legend
// entries for the grid-level legend when a hue layer is active.
type Cell struct {
	*plot.Plot

	grid     *Grid
	row, col int

	// used reports whether any plot function drew into this cell. Trailing
	// cells under column wrapping stay unused.
	used bool
}

func newCell(g *Grid, row, col int) *Cell {
	p := plot.New()
	return &Cell{Plot: p, grid: g, row: row, col: col}
}

// Add forwards to the underlying plot and records thumbnail-capable plotters
// against the active hue label so the grid legend can be assembled later.
func (c *Cell) Add(ps ...plot.Plotter) {
	c.Plot.Add(ps...)
	c.used = true
	if c.grid == nil || c.grid.activeLabel == "" {
		return
	}
	for _, p := range ps {
		if t, ok := p.(plot.Thumbnailer); ok {
			c.grid.recordLegendEntry(c.grid.activeLabel, t)
		}
	}
}

// clean strips the per-cell decorations that the grid manages centrally:
// native axis labels and the cell's own legend.
func (c *Cell) clean() {
	c.X.Label.Text = ""
	c.Y.Label.Text = ""
	c.Legend = plot.NewLegend()
}
