package facet

import (
	"context"
	"image/color"
	"time"

	"gonum.org/v1/plot"

	corefacet "github.com/trellisplot/trellis/pkg/core/facet"
	"github.com/trellisplot/trellis/pkg/dataset"
	"github.com/trellisplot/trellis/pkg/observability"
)

// Style carries the per-subset drawing hints handed to plot functions.
type Style struct {
	// Color is the per-call override when set, otherwise the palette color
	// of the subset's hue label, otherwise nil.
	Color color.Color

	// Label is the hue label text when a hue variable is active. It becomes
	// the legend entry for whatever the plot function draws.
	Label string
}

// PlotFunc draws one data subset into a cell. The vectors correspond
// positionally to the variable names passed to Map, already filtered of
// nulls.
type PlotFunc func(c *Cell, vectors [][]float64, st Style) error

// DatasetFunc draws one data subset into a cell from the subset itself
// rather than extracted vectors. Null handling is up to the function.
type DatasetFunc func(c *Cell, sub *dataset.Dataset, st Style) error

// MapOptions modifies a single Map call.
type MapOptions struct {
	// Color overrides the hue palette for every subset of this call.
	Color color.Color
}

// Map applies fn to every non-empty subset in grid order. The named columns
// are extracted as float vectors with nulls dropped per subset. The first
// two names become the grid's axis labels. Errors from fn propagate
// unchanged; the grid remains usable with whatever was drawn before the
// failure.
func (g *Grid) Map(fn PlotFunc, vars ...string) (*Grid, error) {
	return g.MapWith(fn, MapOptions{}, vars...)
}

// MapWith is Map with per-call options.
func (g *Grid) MapWith(fn PlotFunc, opts MapOptions, vars ...string) (*Grid, error) {
	wrapped := func(c *Cell, sub *dataset.Dataset, st Style) error {
		clean := sub.DropNulls(vars...)
		vectors := make([][]float64, len(vars))
		for i, name := range vars {
			col, err := clean.Column(name)
			if err != nil {
				return err
			}
			vectors[i] = col.Floats()
		}
		return fn(c, vectors, st)
	}
	return g.mapSubsets(wrapped, opts, vars)
}

// MapDataset applies fn to every non-empty subset, passing the filtered
// subset itself. The named columns are validated up front and become axis
// labels, but extraction and null handling are left to fn.
func (g *Grid) MapDataset(fn DatasetFunc, vars ...string) (*Grid, error) {
	return g.MapDatasetWith(fn, MapOptions{}, vars...)
}

// MapDatasetWith is MapDataset with per-call options.
func (g *Grid) MapDatasetWith(fn DatasetFunc, opts MapOptions, vars ...string) (*Grid, error) {
	for _, name := range vars {
		if _, err := g.ds.Column(name); err != nil {
			return g, err
		}
	}
	return g.mapSubsets(fn, opts, vars)
}

func (g *Grid) mapSubsets(fn DatasetFunc, opts MapOptions, vars []string) (*Grid, error) {
	ctx := context.Background()
	rows, cols, hues := g.part.Counts()
	observability.Plot().OnFacetStart(ctx, rows, cols, hues)

	start := time.Now()
	drawn := 0
	var failure error

	for idx, sub := range g.part.Subsets() {
		if sub.Len() == 0 {
			continue
		}
		row, col := g.shape.CellFor(idx)
		cell := g.cells[row][col]
		st := g.styleFor(idx, opts)

		g.activeGen++
		g.activeLabel = st.Label
		err := fn(cell, sub, st)
		g.activeLabel = ""
		cell.clean()
		if err != nil {
			failure = err
			break
		}
		drawn++
	}

	observability.Plot().OnFacetComplete(ctx, drawn, time.Since(start), failure)
	if failure != nil {
		return g, failure
	}

	g.logger.Debug("mapped plot function", "subsets", drawn, "vars", vars)
	g.finalize(vars)
	return g, nil
}

// styleFor resolves the drawing style for one subset.
func (g *Grid) styleFor(idx corefacet.Index, opts MapOptions) Style {
	st := Style{Color: opts.Color}
	if len(g.labels.Hue) == 0 {
		return st
	}
	st.Label = g.labels.Hue[idx.Hue].String()
	if st.Color == nil {
		st.Color = g.hueColors[idx.Hue]
	}
	return st
}

// recordLegendEntry accumulates a legend handle under a label. Handles drawn
// by the same plot function call combine into one entry; a later subset
// reusing the label keeps its position but takes the newest handles.
func (g *Grid) recordLegendEntry(label string, t plot.Thumbnailer) {
	if _, seen := g.legendThumbs[label]; !seen {
		g.legendLabels = append(g.legendLabels, label)
	}
	if g.legendGen[label] == g.activeGen {
		g.legendThumbs[label] = append(g.legendThumbs[label], t)
		return
	}
	g.legendThumbs[label] = thumbnailers{t}
	g.legendGen[label] = g.activeGen
}

// finalize applies the grid-wide polish after a mapping pass: default axis
// labels from the first two variable names, default titles, and shared axis
// ranges.
func (g *Grid) finalize(vars []string) {
	x, y := "", ""
	if len(vars) > 0 {
		x = vars[0]
	}
	if len(vars) > 1 {
		y = vars[1]
	}
	g.SetAxisLabels(x, y)
	g.SetTitles(TitleOptions{})
	g.unifyRanges()
}

// unifyRanges propagates shared axis ranges and fixed limits to every cell.
// When nothing was drawn there is no data range to share and cells keep
// their defaults.
func (g *Grid) unifyRanges() {
	if g.cfg.shareX && g.cfg.xlim == nil {
		if min, max, ok := g.globalRange(func(c *Cell) (float64, float64) { return c.X.Min, c.X.Max }); ok {
			g.Each(func(c *Cell) { c.X.Min, c.X.Max = min, max })
		}
	}
	if g.cfg.shareY && g.cfg.ylim == nil {
		if min, max, ok := g.globalRange(func(c *Cell) (float64, float64) { return c.Y.Min, c.Y.Max }); ok {
			g.Each(func(c *Cell) { c.Y.Min, c.Y.Max = min, max })
		}
	}
	g.Each(g.applyLimits)
}

func (g *Grid) globalRange(axis func(*Cell) (float64, float64)) (float64, float64, bool) {
	first := true
	var lo, hi float64
	g.Each(func(c *Cell) {
		if !c.used {
			return
		}
		min, max := axis(c)
		if first {
			lo, hi = min, max
			first = false
			return
		}
		if min < lo {
			lo = min
		}
		if max > hi {
			hi = max
		}
	})
	return lo, hi, !first
}
