package facet

import (
	"strings"

	"gonum.org/v1/plot"
)

// =============================================================================
// Axis Labels
// =============================================================================

// SetAxisLabels writes the x label on the bottom edge of each column and the
// y label on the left edge of each row. Interior cells stay unlabeled.
func (g *Grid) SetAxisLabels(x, y string) *Grid {
	for i := range g.cells {
		for j, c := range g.cells[i] {
			if g.showsXAxis(i, j) {
				c.X.Label.Text = x
			} else {
				c.X.Label.Text = ""
			}
			if j == 0 {
				c.Y.Label.Text = y
			} else {
				c.Y.Label.Text = ""
			}
		}
	}
	return g
}

// showsXAxis reports whether the cell at (i, j) sits on the bottom edge of
// its column. Under wrapping the last row may be partial, so a cell above an
// empty slot also counts as the bottom edge.
func (g *Grid) showsXAxis(i, j int) bool {
	if g.shape.Wrap == 0 {
		return i == g.shape.Rows-1
	}
	flat := i*g.shape.Cols + j
	return flat+g.shape.Cols >= len(g.labels.Col)
}

// =============================================================================
// Titles
// =============================================================================

// Default title templates. The placeholders expand to the faceting variable
// name and the cell's label.
const (
	DefaultRowTemplate = "{row_var} = {row_name}"
	DefaultColTemplate = "{col_var} = {col_name}"
)

// TitleOptions configures SetTitles. Zero values select the defaults.
type TitleOptions struct {
	RowTemplate string
	ColTemplate string
}

// SetTitles writes per-cell titles from the templates. When margin titles
// are active, column titles go above the top row only and row titles are
// drawn rotated along the right edge at draw time; otherwise each cell
// carries its full "row | col" title.
func (g *Grid) SetTitles(opts TitleOptions) *Grid {
	if opts.RowTemplate == "" {
		opts.RowTemplate = DefaultRowTemplate
	}
	if opts.ColTemplate == "" {
		opts.ColTemplate = DefaultColTemplate
	}

	rowTitles := make([]string, len(g.labels.Row))
	for i, l := range g.labels.Row {
		rowTitles[i] = strings.NewReplacer(
			"{row_var}", g.cfg.core.Row,
			"{row_name}", l.String(),
		).Replace(opts.RowTemplate)
	}
	colTitles := make([]string, len(g.labels.Col))
	for j, l := range g.labels.Col {
		colTitles[j] = strings.NewReplacer(
			"{col_var}", g.cfg.core.Col,
			"{col_name}", l.String(),
		).Replace(opts.ColTemplate)
	}

	if g.shape.Wrap > 0 {
		for k, title := range colTitles {
			g.cells[k/g.shape.Cols][k%g.shape.Cols].Title.Text = title
		}
		return g
	}

	if g.shape.MarginTitles {
		g.marginRowTitles = rowTitles
		for i := range g.cells {
			for j, c := range g.cells[i] {
				c.Title.Text = ""
				if i == 0 && j < len(colTitles) {
					c.Title.Text = colTitles[j]
				}
			}
		}
		return g
	}

	g.marginRowTitles = nil
	for i := range g.cells {
		for j, c := range g.cells[i] {
			var parts []string
			if i < len(rowTitles) {
				parts = append(parts, rowTitles[i])
			}
			if j < len(colTitles) {
				parts = append(parts, colTitles[j])
			}
			c.Title.Text = strings.Join(parts, " | ")
		}
	}
	return g
}

// =============================================================================
// Styling
// =============================================================================

// Despine removes the axis spines from every cell, keeping ticks and labels.
func (g *Grid) Despine() *Grid {
	return g.Each(func(c *Cell) {
		c.X.LineStyle.Width = 0
		c.Y.LineStyle.Width = 0
	})
}

// SetTickFormat replaces the tick label formatting on the named axis ("x" or
// "y") of every cell, keeping the default tick positions.
func (g *Grid) SetTickFormat(axis string, format func(float64) string) *Grid {
	return g.Each(func(c *Cell) {
		t := formatTicker{base: plot.DefaultTicks{}, format: format}
		switch axis {
		case "x":
			c.X.Tick.Marker = t
		case "y":
			c.Y.Tick.Marker = t
		}
	})
}

// formatTicker keeps default tick positions but rewrites the labels.
type formatTicker struct {
	base   plot.Ticker
	format func(float64) string
}

func (t formatTicker) Ticks(min, max float64) []plot.Tick {
	ticks := t.base.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = t.format(ticks[i].Value)
		}
	}
	return ticks
}
