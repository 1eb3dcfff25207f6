// Package facet arranges subsets of a dataset into a grid of gonum/plot
// panels. A Grid is built once from the grouping configuration, then plot
// functions are mapped over every data subset, and finally annotations
// (axis labels, titles, a deduplicated legend) are applied grid-wide.
//
// # Usage
//
//	g, err := facet.New(ds,
//	    facet.Col("region"),
//	    facet.Hue("species"),
//	)
//	if err != nil {
//	    return err
//	}
//	if _, err := g.Map(facet.Scatter, "sepal_length", "sepal_width"); err != nil {
//	    return err
//	}
//	g.SetAxisLabels("Sepal length", "Sepal width")
package facet

import (
	"image/color"

	"github.com/charmbracelet/log"

	corefacet "github.com/trellisplot/trellis/pkg/core/facet"
	"github.com/trellisplot/trellis/pkg/dataset"
	"github.com/trellisplot/trellis/pkg/palette"
)

// =============================================================================
// Configuration
// =============================================================================

type config struct {
	core    corefacet.Options
	shape   corefacet.ShapeConfig
	palette string

	shareX, shareY bool
	xlim, ylim     *[2]float64

	legend    bool
	legendOut bool

	logger *log.Logger
}

// Option configures a Grid.
type Option func(*config)

// Row facets the data by the named column, one grid row per label.
func Row(name string) Option { return func(c *config) { c.core.Row = name } }

// Col facets the data by the named column, one grid column per label.
func Col(name string) Option { return func(c *config) { c.core.Col = name } }

// Hue layers the data by the named column within each cell, one color per
// label.
func Hue(name string) Option { return func(c *config) { c.core.Hue = name } }

// RowOrder fixes the row label order instead of sorting the distinct values.
func RowOrder(labels ...dataset.Value) Option {
	return func(c *config) { c.core.RowOrder = labels }
}

// ColOrder fixes the column label order.
func ColOrder(labels ...dataset.Value) Option {
	return func(c *config) { c.core.ColOrder = labels }
}

// HueOrder fixes the hue label order, which also fixes color assignment.
func HueOrder(labels ...dataset.Value) Option {
	return func(c *config) { c.core.HueOrder = labels }
}

// DropNA excludes rows with a null in any grouping column.
func DropNA() Option { return func(c *config) { c.core.DropNA = true } }

// ColWrap folds the column facets into multiple rows of the given width.
// Incompatible with Row.
func ColWrap(n int) Option { return func(c *config) { c.shape.ColWrap = n } }

// Size sets the height of each cell in inches.
func Size(s float64) Option { return func(c *config) { c.shape.Size = s } }

// Aspect sets the width/height ratio of each cell.
func Aspect(a float64) Option { return func(c *config) { c.shape.Aspect = a } }

// MarginTitles draws row and column titles on the grid margins instead of
// above each cell.
func MarginTitles() Option { return func(c *config) { c.shape.MarginTitles = true } }

// ShareX unifies the x range across all cells.
func ShareX(share bool) Option { return func(c *config) { c.shareX = share } }

// ShareY unifies the y range across all cells.
func ShareY(share bool) Option { return func(c *config) { c.shareY = share } }

// XLim fixes the x range of every cell.
func XLim(min, max float64) Option {
	return func(c *config) { c.xlim = &[2]float64{min, max} }
}

// YLim fixes the y range of every cell.
func YLim(min, max float64) Option {
	return func(c *config) { c.ylim = &[2]float64{min, max} }
}

// Palette names the color palette used for hue labels.
func Palette(name string) Option { return func(c *config) { c.palette = name } }

// Legend enables the grid-level legend. It is drawn only when a hue variable
// is active and distinct from the row and column variables.
func Legend(enabled bool) Option { return func(c *config) { c.legend = enabled } }

// LegendOut places the legend outside the grid on the right, growing the
// figure to fit. Without it the legend is attached to the top-left cell.
func LegendOut(out bool) Option { return func(c *config) { c.legendOut = out } }

// Logger sets the grid's logger.
func Logger(l *log.Logger) Option { return func(c *config) { c.logger = l } }

// =============================================================================
// Grid
// =============================================================================

// Grid owns the panel matrix and the accumulated annotation state.
type Grid struct {
	ds     *dataset.Dataset
	cfg    config
	labels *corefacet.LabelSets
	part   *corefacet.Partition
	shape  corefacet.Shape

	cells     [][]*Cell
	hueColors []color.Color

	// legendLabels keeps entry order; legendThumbs maps label to its latest
	// handles. Duplicate labels overwrite the handles but keep position.
	legendLabels []string
	legendThumbs map[string]thumbnailers
	legendGen    map[string]int

	// activeLabel and activeGen are set around each plot function call so
	// Cell.Add can attribute harvested thumbnails.
	activeLabel string
	activeGen   int

	marginRowTitles []string
	logger          *log.Logger
}

// New derives label sets, computes the grid shape, and allocates one blank
// plot per cell. Key columns must exist; a key with no usable labels is an
// EMPTY_FACET error, and ColWrap combined with Row is INVALID_CONFIG.
func New(ds *dataset.Dataset, options ...Option) (*Grid, error) {
	cfg := config{legend: true, shareX: true, shareY: true}
	for _, o := range options {
		o(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.Default()
	}

	labels, err := corefacet.BuildLabelSets(ds, cfg.core)
	if err != nil {
		return nil, err
	}
	shape, err := corefacet.ComputeShape(len(labels.Row), len(labels.Col), cfg.shape)
	if err != nil {
		return nil, err
	}
	part, err := corefacet.NewPartition(ds, labels, cfg.core)
	if err != nil {
		return nil, err
	}

	g := &Grid{
		ds:           ds,
		cfg:          cfg,
		labels:       labels,
		part:         part,
		shape:        shape,
		legendThumbs: make(map[string]thumbnailers),
		legendGen:    make(map[string]int),
		logger:       cfg.logger,
	}

	if n := len(labels.Hue); n > 0 {
		g.hueColors, err = palette.Colors(cfg.palette, n)
		if err != nil {
			return nil, err
		}
	}

	g.cells = make([][]*Cell, shape.Rows)
	for i := range g.cells {
		g.cells[i] = make([]*Cell, shape.Cols)
		for j := range g.cells[i] {
			cell := newCell(g, i, j)
			g.applyLimits(cell)
			g.cells[i][j] = cell
		}
	}

	g.logger.Debug("created facet grid",
		"rows", shape.Rows,
		"cols", shape.Cols,
		"hues", len(labels.Hue),
		"wrap", shape.Wrap)
	return g, nil
}

func (g *Grid) applyLimits(c *Cell) {
	if g.cfg.xlim != nil {
		c.X.Min, c.X.Max = g.cfg.xlim[0], g.cfg.xlim[1]
	}
	if g.cfg.ylim != nil {
		c.Y.Min, c.Y.Max = g.cfg.ylim[0], g.cfg.ylim[1]
	}
}

// Shape returns the computed physical grid shape.
func (g *Grid) Shape() corefacet.Shape { return g.shape }

// RowLabels returns the ordered row labels.
func (g *Grid) RowLabels() []dataset.Value { return g.labels.Row }

// ColLabels returns the ordered column labels.
func (g *Grid) ColLabels() []dataset.Value { return g.labels.Col }

// HueLabels returns the ordered hue labels.
func (g *Grid) HueLabels() []dataset.Value { return g.labels.Hue }

// HueColors returns the palette colors assigned to the hue labels.
func (g *Grid) HueColors() []color.Color { return g.hueColors }

// Cell returns the panel at the given grid position.
func (g *Grid) Cell(row, col int) *Cell { return g.cells[row][col] }

// Each applies fn to every active cell. Under column wrapping, trailing
// cells past the last column label are skipped.
func (g *Grid) Each(fn func(*Cell)) *Grid {
	n := g.shape.NumCells()
	if g.shape.Wrap > 0 {
		n = len(g.labels.Col)
	}
	for i := 0; i < n; i++ {
		fn(g.cells[i/g.shape.Cols][i%g.shape.Cols])
	}
	return g
}
