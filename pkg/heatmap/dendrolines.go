package heatmap

import (
	"gonum.org/v1/plot/plotter"

	corecluster "github.com/trellisplot/trellis/pkg/core/cluster"
)

// Orientation places a dendrogram relative to the matrix.
type Orientation int

const (
	// OrientTop grows upward above the matrix: leaves on the x axis,
	// merge heights on y. Used for column dendrograms.
	OrientTop Orientation = iota

	// OrientLeft grows leftward beside the matrix: leaves on the y axis,
	// merge heights on negated x so the root sits furthest left.
	OrientLeft
)

// leafScale converts leaf positions (5, 15, 25, ...) to matrix cell centers
// (0.5, 1.5, 2.5, ...).
const leafScale = 10

// DendrogramLines converts bracket geometry into one polyline per merge,
// n-1 in total, in the coordinate frame of the matrix.
func DendrogramLines(d corecluster.Dendrogram, orient Orientation) []plotter.XYs {
	lines := make([]plotter.XYs, len(d.Icoord))
	for k := range d.Icoord {
		xy := make(plotter.XYs, 4)
		for p := 0; p < 4; p++ {
			leaf := d.Icoord[k][p] / leafScale
			height := d.Dcoord[k][p]
			switch orient {
			case OrientLeft:
				xy[p].X = -height
				xy[p].Y = leaf
			default:
				xy[p].X = leaf
				xy[p].Y = height
			}
		}
		lines[k] = xy
	}
	return lines
}
