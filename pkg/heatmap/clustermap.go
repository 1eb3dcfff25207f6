// Package heatmap renders hierarchically clustered heatmaps: a matrix mesh
// with dendrograms on the clustered axes, optional categorical side-color
// tracks, and a colorbar reflecting the value normalization.
//
// The layout mirrors the track structure along both axes: dendrogram, side
// colors, matrix. Tracks that are absent collapse to zero extent. All
// clustering math lives in pkg/core/cluster; this package owns composition
// and drawing.
package heatmap

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	corecluster "github.com/trellisplot/trellis/pkg/core/cluster"
	"github.com/trellisplot/trellis/pkg/errors"
)

// DefaultFigureSize is the default clustermap figure extent in inches.
const DefaultFigureSize = 10.0

// Config selects clustering, annotation, and scaling behavior.
type Config struct {
	// Metric and Method name the distance and linkage rules. Empty selects
	// euclidean and average.
	Metric string
	Method string

	// ClusterRows and ClusterCols toggle clustering per axis. Nil means on.
	ClusterRows *bool
	ClusterCols *bool

	// RowLinkage and ColLinkage inject precomputed linkage, skipping the
	// in-package computation for that axis. Useful with cached results.
	RowLinkage corecluster.Linkage
	ColLinkage corecluster.Linkage

	// Fast forces the nearest-neighbor chain linkage path.
	Fast bool

	// RowColors and ColColors are categorical side tracks, one label per
	// row or column of the input matrix.
	RowColors []string
	ColColors []string

	// SidePalette names the qualitative palette for side colors.
	SidePalette string

	// LogScale maps values on a log10 scale with a sequential colormap.
	LogScale bool

	// RowLabels and ColLabels are tick labels in input order. Empty slices
	// leave the axis unlabeled.
	RowLabels []string
	ColLabels []string

	// Size is the figure extent in inches, square. Zero means default.
	Size float64
}

// AxisClustering is the per-axis clustering outcome.
type AxisClustering struct {
	Linkage    corecluster.Linkage
	Order      []int
	Dendrogram corecluster.Dendrogram
}

// Clustermap is a fully resolved clustered heatmap, ready to draw.
type Clustermap struct {
	cfg Config

	// Matrix is the input permuted into display order, original scale.
	Matrix *mat.Dense

	// Norm is the value-to-color normalization.
	Norm Norm

	// Rows and Cols are nil for axes that were not clustered.
	Rows *AxisClustering
	Cols *AxisClustering

	// RowSide and ColSide are the side-color tracks in display order.
	RowSide *SideColors
	ColSide *SideColors

	rowLabels []string
	colLabels []string
}

// New validates the matrix, clusters the requested axes, and reorders the
// matrix and annotations into display order.
func New(m *mat.Dense, cfg Config) (*Clustermap, error) {
	if err := corecluster.ValidateMatrix(m); err != nil {
		return nil, err
	}
	if err := checkFinite(m); err != nil {
		return nil, err
	}
	metric, err := corecluster.MetricByName(cfg.Metric)
	if err != nil {
		return nil, err
	}
	method, err := corecluster.MethodByName(cfg.Method)
	if err != nil {
		return nil, err
	}

	norm, err := ChooseNorm(m, cfg.LogScale)
	if err != nil {
		return nil, err
	}

	cm := &Clustermap{cfg: cfg, Matrix: m, Norm: norm}
	nRows, nCols := m.Dims()

	if err := cm.setupSides(nRows, nCols); err != nil {
		return nil, err
	}
	cm.rowLabels = cfg.RowLabels
	cm.colLabels = cfg.ColLabels

	if enabled(cfg.ClusterRows) {
		cm.Rows, err = clusterAxis(m, corecluster.Rows, cfg.RowLinkage, metric, method, cfg.Fast, nRows)
		if err != nil {
			return nil, err
		}
		if err := cm.applyOrder(corecluster.Rows, cm.Rows.Order); err != nil {
			return nil, err
		}
	}
	if enabled(cfg.ClusterCols) {
		cm.Cols, err = clusterAxis(m, corecluster.Cols, cfg.ColLinkage, metric, method, cfg.Fast, nCols)
		if err != nil {
			return nil, err
		}
		if err := cm.applyOrder(corecluster.Cols, cm.Cols.Order); err != nil {
			return nil, err
		}
	}
	return cm, nil
}

func enabled(b *bool) bool { return b == nil || *b }

func checkFinite(m *mat.Dense) error {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := m.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.New(errors.ErrCodeInvalidMatrix,
					"matrix value at (%d, %d) is not finite", i, j)
			}
		}
	}
	return nil
}

func (cm *Clustermap) setupSides(nRows, nCols int) error {
	var err error
	if len(cm.cfg.RowColors) > 0 {
		if cm.RowSide, err = NewSideColors(cm.cfg.RowColors, nRows, cm.cfg.SidePalette); err != nil {
			return err
		}
	}
	if len(cm.cfg.ColColors) > 0 {
		if cm.ColSide, err = NewSideColors(cm.cfg.ColColors, nCols, cm.cfg.SidePalette); err != nil {
			return err
		}
	}
	return nil
}

func clusterAxis(m *mat.Dense, axis corecluster.Axis, pre corecluster.Linkage, metric corecluster.Metric, method corecluster.Method, fast bool, extent int) (*AxisClustering, error) {
	l := pre
	if l == nil {
		var err error
		l, err = corecluster.ComputeLinkage(m, axis, metric, method, fast)
		if err != nil {
			return nil, err
		}
	} else if l.NumItems() != extent {
		return nil, errors.New(errors.ErrCodeInvalidMatrix,
			"precomputed %s linkage covers %d items, axis has %d", axis, l.NumItems(), extent)
	}
	return &AxisClustering{
		Linkage:    l,
		Order:      corecluster.LeafOrder(l),
		Dendrogram: corecluster.BuildDendrogram(l),
	}, nil
}

// applyOrder permutes the matrix and the axis annotations.
func (cm *Clustermap) applyOrder(axis corecluster.Axis, perm []int) error {
	var err error
	if cm.Matrix, err = corecluster.Reorder(cm.Matrix, axis, perm); err != nil {
		return err
	}
	switch axis {
	case corecluster.Rows:
		if cm.RowSide != nil {
			if cm.RowSide, err = cm.RowSide.Reorder(perm); err != nil {
				return err
			}
		}
		if len(cm.rowLabels) > 0 {
			if cm.rowLabels, err = corecluster.ReorderLabels(cm.rowLabels, perm); err != nil {
				return err
			}
		}
	case corecluster.Cols:
		if cm.ColSide != nil {
			if cm.ColSide, err = cm.ColSide.Reorder(perm); err != nil {
				return err
			}
		}
		if len(cm.colLabels) > 0 {
			if cm.colLabels, err = corecluster.ReorderLabels(cm.colLabels, perm); err != nil {
				return err
			}
		}
	}
	return nil
}

// RowTickLabels returns the row labels in display order, nil when unset.
func (cm *Clustermap) RowTickLabels() []string { return cm.rowLabels }

// ColTickLabels returns the column labels in display order, nil when unset.
func (cm *Clustermap) ColTickLabels() []string { return cm.colLabels }

// FigureSize returns the figure extent in canvas units.
func (cm *Clustermap) FigureSize() (w, h vg.Length) {
	size := cm.cfg.Size
	if size <= 0 {
		size = DefaultFigureSize
	}
	return vg.Length(size) * vg.Inch, vg.Length(size) * vg.Inch
}

// =============================================================================
// Drawing
// =============================================================================

// Draw composes the tracks onto the canvas: dendrograms top and left, side
// colors between dendrograms and matrix, the matrix mesh bottom-right, and
// the colorbar in the top-left corner block.
func (cm *Clustermap) Draw(dc draw.Canvas) error {
	width := dc.Max.X - dc.Min.X
	height := dc.Max.Y - dc.Min.Y

	rx := Ratios(cm.Rows != nil, cm.RowSide != nil)
	ry := Ratios(cm.Cols != nil, cm.ColSide != nil)

	wDendro := width * vg.Length(rx[0])
	wSide := width * vg.Length(rx[1])
	hDendro := height * vg.Length(ry[0])
	hSide := height * vg.Length(ry[1])

	left := wDendro + wSide
	top := hDendro + hSide

	// Matrix mesh, bottom right.
	matrixArea := draw.Crop(dc, left, 0, 0, -top)
	if err := cm.drawMatrix(matrixArea); err != nil {
		return err
	}

	nRows, nCols := cm.Matrix.Dims()

	if cm.Cols != nil {
		area := draw.Crop(dc, left, 0, height-hDendro, 0)
		cm.drawDendrogram(area, cm.Cols.Dendrogram, OrientTop, nCols)
	}
	if cm.ColSide != nil {
		area := draw.Crop(dc, left, 0, height-top, -hDendro)
		drawStrip(area, &strip{colors: cm.ColSide.Colors})
	}
	if cm.Rows != nil {
		area := draw.Crop(dc, 0, -(width - wDendro), 0, -top)
		cm.drawDendrogram(area, cm.Rows.Dendrogram, OrientLeft, nRows)
	}
	if cm.RowSide != nil {
		area := draw.Crop(dc, wDendro, -(width - left), 0, -top)
		drawStrip(area, &strip{colors: cm.RowSide.Colors, vertical: true})
	}

	// Colorbar in the corner block above the row tracks.
	if left > 0 && top > 0 {
		area := draw.Crop(dc, 0, -(width - left), height-top, 0)
		cm.drawColorbar(area)
	}
	return nil
}

func (cm *Clustermap) drawMatrix(area draw.Canvas) error {
	p := plot.New()
	hm := plotter.NewHeatMap(matrixGrid{m: cm.Norm.Transform(cm.Matrix)}, cm.Norm.Palette())
	hm.Min = cm.Norm.Min
	hm.Max = cm.Norm.Max
	p.Add(hm)

	if len(cm.colLabels) > 0 {
		p.X.Tick.Marker = labelTicks(cm.colLabels)
	} else {
		p.HideX()
	}
	if len(cm.rowLabels) > 0 {
		p.Y.Tick.Marker = labelTicks(cm.rowLabels)
	} else {
		p.HideY()
	}
	p.Draw(area)
	return nil
}

func (cm *Clustermap) drawDendrogram(area draw.Canvas, d corecluster.Dendrogram, orient Orientation, extent int) {
	p := plot.New()
	p.HideAxes()
	for _, xy := range DendrogramLines(d, orient) {
		l, err := plotter.NewLine(xy)
		if err != nil {
			continue
		}
		p.Add(l)
	}
	// Pin the leaf axis to the matrix extent so leaves line up with cells.
	switch orient {
	case OrientTop:
		p.X.Min, p.X.Max = 0, float64(extent)
	case OrientLeft:
		p.Y.Min, p.Y.Max = 0, float64(extent)
	}
	p.Draw(area)
}

func drawStrip(area draw.Canvas, s *strip) {
	p := plot.New()
	p.HideAxes()
	p.Add(s)
	p.Draw(area)
}

func (cm *Clustermap) drawColorbar(area draw.Canvas) {
	p := plot.New()
	p.Add(&plotter.ColorBar{ColorMap: cm.Norm.ColorMap})
	p.HideY()
	p.Draw(area)
}

// labelTicks places one label at each cell center.
func labelTicks(labels []string) plot.ConstantTicks {
	ticks := make([]plot.Tick, len(labels))
	for i, l := range labels {
		ticks[i] = plot.Tick{Value: float64(i) + 0.5, Label: l}
	}
	return plot.ConstantTicks(ticks)
}
