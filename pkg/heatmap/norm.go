package heatmap

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"

	"github.com/trellisplot/trellis/pkg/errors"
)

// PaletteSteps is the number of discrete colors sampled from a colormap.
const PaletteSteps = 256

// Norm describes how matrix values map to colors.
type Norm struct {
	// Min and Max are the color scale limits.
	Min, Max float64

	// Diverging is true when the scale is centered at zero.
	Diverging bool

	// Log is true when values were log10-transformed before mapping.
	Log bool

	// ColorMap is the selected continuous map with limits applied.
	ColorMap palette.ColorMap
}

// ChooseNorm selects the color normalization for a matrix. Data spanning
// both signs gets a diverging map centered at zero with symmetric limits;
// one-signed data gets a sequential map. With logScale the values must be
// strictly positive and are mapped on a log10 scale.
func ChooseNorm(m *mat.Dense, logScale bool) (Norm, error) {
	min, max := matrixRange(m)

	if logScale {
		if min <= 0 {
			return Norm{}, errors.New(errors.ErrCodeInvalidInput,
				"log scale requires strictly positive values, found %v", min)
		}
		cm := moreland.Kindlmann()
		lo, hi := math.Log10(min), math.Log10(max)
		if lo == hi {
			hi = lo + 1
		}
		cm.SetMin(lo)
		cm.SetMax(hi)
		return Norm{Min: lo, Max: hi, Log: true, ColorMap: cm}, nil
	}

	if min < 0 && max > 0 {
		limit := math.Max(math.Abs(min), math.Abs(max))
		cm := moreland.SmoothBlueRed()
		cm.SetMin(-limit)
		cm.SetMax(limit)
		return Norm{Min: -limit, Max: limit, Diverging: true, ColorMap: cm}, nil
	}

	cm := moreland.Kindlmann()
	if min == max {
		max = min + 1
	}
	cm.SetMin(min)
	cm.SetMax(max)
	return Norm{Min: min, Max: max, ColorMap: cm}, nil
}

// Transform returns the matrix in color space: identity except under log
// scale, where every value is log10-transformed.
func (n Norm) Transform(m *mat.Dense) *mat.Dense {
	if !n.Log {
		return m
	}
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, math.Log10(m.At(i, j)))
		}
	}
	return out
}

// Palette samples the colormap into discrete steps for the heatmap mesh.
func (n Norm) Palette() palette.Palette {
	return n.ColorMap.Palette(PaletteSteps)
}

func matrixRange(m *mat.Dense) (min, max float64) {
	r, c := m.Dims()
	min, max = math.Inf(1), math.Inf(-1)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	return min, max
}
