package facet

import (
	"gonum.org/v1/plot/plotter"

	"github.com/trellisplot/trellis/pkg/errors"
)

// Scatter is a PlotFunc drawing the first two vectors as points.
func Scatter(c *Cell, vectors [][]float64, st Style) error {
	xy, err := pairXY(vectors)
	if err != nil {
		return err
	}
	s, err := plotter.NewScatter(xy)
	if err != nil {
		return err
	}
	if st.Color != nil {
		s.GlyphStyle.Color = st.Color
	}
	c.Add(s)
	return nil
}

// Line is a PlotFunc drawing the first two vectors as a connected line.
func Line(c *Cell, vectors [][]float64, st Style) error {
	xy, err := pairXY(vectors)
	if err != nil {
		return err
	}
	l, err := plotter.NewLine(xy)
	if err != nil {
		return err
	}
	if st.Color != nil {
		l.LineStyle.Color = st.Color
	}
	c.Add(l)
	return nil
}

func pairXY(vectors [][]float64) (plotter.XYs, error) {
	if len(vectors) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"need two variables, got %d", len(vectors))
	}
	x, y := vectors[0], vectors[1]
	if len(x) != len(y) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"variable lengths differ: %d vs %d", len(x), len(y))
	}
	xy := make(plotter.XYs, len(x))
	for i := range x {
		xy[i].X = x[i]
		xy[i].Y = y[i]
	}
	return xy, nil
}
