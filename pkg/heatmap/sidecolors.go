package heatmap

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	corecluster "github.com/trellisplot/trellis/pkg/core/cluster"
	"github.com/trellisplot/trellis/pkg/errors"
	"github.com/trellisplot/trellis/pkg/palette"
)

// SideColors maps categorical track labels next to the matrix to colors.
// Each distinct label gets one palette color by first appearance, a discrete
// mapping rather than a continuous colormap.
type SideColors struct {
	Labels []string
	Colors []color.Color
}

// NewSideColors validates the track against the axis extent and assigns
// colors. paletteName selects the qualitative palette, empty for the
// default.
func NewSideColors(labels []string, axisLen int, paletteName string) (*SideColors, error) {
	if len(labels) != axisLen {
		return nil, errors.New(errors.ErrCodeInvalidMatrix,
			"side color track length %d does not match axis extent %d", len(labels), axisLen)
	}

	distinct := make([]string, 0)
	index := make(map[string]int)
	for _, l := range labels {
		if _, ok := index[l]; !ok {
			index[l] = len(distinct)
			distinct = append(distinct, l)
		}
	}
	colors, err := palette.Colors(paletteName, len(distinct))
	if err != nil {
		return nil, err
	}

	out := &SideColors{Labels: labels, Colors: make([]color.Color, len(labels))}
	for i, l := range labels {
		out.Colors[i] = colors[index[l]]
	}
	return out, nil
}

// Reorder returns the track permuted into display order.
func (s *SideColors) Reorder(perm []int) (*SideColors, error) {
	labels, err := corecluster.ReorderLabels(s.Labels, perm)
	if err != nil {
		return nil, err
	}
	colors, err := corecluster.ReorderLabels(s.Colors, perm)
	if err != nil {
		return nil, err
	}
	return &SideColors{Labels: labels, Colors: colors}, nil
}

// strip draws the colors as a single row or column of unit blocks.
type strip struct {
	colors   []color.Color
	vertical bool
}

// Plot fills one unit-square block per color in data coordinates.
func (s *strip) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for i, col := range s.colors {
		lo, hi := float64(i), float64(i+1)
		var poly []vg.Point
		if s.vertical {
			poly = []vg.Point{
				{X: trX(0), Y: trY(lo)},
				{X: trX(1), Y: trY(lo)},
				{X: trX(1), Y: trY(hi)},
				{X: trX(0), Y: trY(hi)},
			}
		} else {
			poly = []vg.Point{
				{X: trX(lo), Y: trY(0)},
				{X: trX(hi), Y: trY(0)},
				{X: trX(hi), Y: trY(1)},
				{X: trX(lo), Y: trY(1)},
			}
		}
		c.FillPolygon(col, poly)
	}
}

// DataRange spans the block extent so the axes fit tightly.
func (s *strip) DataRange() (xmin, xmax, ymin, ymax float64) {
	n := float64(len(s.colors))
	if s.vertical {
		return 0, 1, 0, n
	}
	return 0, n, 0, 1
}

var (
	_ plot.Plotter    = (*strip)(nil)
	_ plot.DataRanger = (*strip)(nil)
)
