package heatmap

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot/plotter"
)

// matrixGrid adapts a dense matrix to plotter.GridXYZ. Cell (i, j) is
// centered at (j+0.5, i+0.5) with row 0 at the bottom, matching the
// dendrogram leaf coordinates.
type matrixGrid struct {
	m *mat.Dense
}

func (g matrixGrid) Dims() (c, r int) {
	r, c = g.m.Dims()
	return c, r
}

func (g matrixGrid) Z(c, r int) float64 { return g.m.At(r, c) }
func (g matrixGrid) X(c int) float64    { return float64(c) + 0.5 }
func (g matrixGrid) Y(r int) float64    { return float64(r) + 0.5 }

var _ plotter.GridXYZ = matrixGrid{}
