package cluster

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/trellisplot/trellis/pkg/errors"
)

// Axis selects which matrix axis is clustered.
type Axis int

// Clustering axes.
const (
	Rows Axis = iota
	Cols
)

// String returns the axis name for logs and hooks.
func (a Axis) String() string {
	if a == Rows {
		return "rows"
	}
	return "cols"
}

// Metric computes the distance between two equal-length vectors.
type Metric func(a, b []float64) float64

// Euclidean is the L2 distance, the default metric.
func Euclidean(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// CityBlock is the L1 (Manhattan) distance.
func CityBlock(a, b []float64) float64 {
	return floats.Distance(a, b, 1)
}

// Cosine is one minus the cosine similarity. Zero vectors are at distance 1
// from everything.
func Cosine(a, b []float64) float64 {
	na := math.Sqrt(floats.Dot(a, a))
	nb := math.Sqrt(floats.Dot(b, b))
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - floats.Dot(a, b)/(na*nb)
}

// Correlation is one minus the Pearson correlation: the cosine distance of
// the mean-centered vectors. Constant vectors are at distance 1 from
// everything.
func Correlation(a, b []float64) float64 {
	ca := center(a)
	cb := center(b)
	return Cosine(ca, cb)
}

func center(v []float64) []float64 {
	mean := floats.Sum(v) / float64(len(v))
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x - mean
	}
	return out
}

// MetricByName resolves a metric name. Empty means Euclidean.
func MetricByName(name string) (Metric, error) {
	switch name {
	case "", "euclidean":
		return Euclidean, nil
	case "cityblock", "manhattan":
		return CityBlock, nil
	case "cosine":
		return Cosine, nil
	case "correlation":
		return Correlation, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidMetric, "unknown metric %q", name)
	}
}

// ValidateMatrix checks that m is a usable 2-D matrix.
func ValidateMatrix(m *mat.Dense) error {
	if m == nil {
		return errors.New(errors.ErrCodeInvalidMatrix, "matrix is nil")
	}
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return errors.New(errors.ErrCodeInvalidMatrix, "matrix has zero extent (%d×%d)", r, c)
	}
	return nil
}

// PairwiseDistances computes the condensed distance vector over the chosen
// axis's vectors: entry for pair (i, j), i < j, at the standard condensed
// index. Returns the vector and the item count n.
func PairwiseDistances(m *mat.Dense, axis Axis, metric Metric) ([]float64, int, error) {
	if err := ValidateMatrix(m); err != nil {
		return nil, 0, err
	}
	if metric == nil {
		metric = Euclidean
	}

	vecs := axisVectors(m, axis)
	n := len(vecs)
	if n < 2 {
		return nil, 0, errors.New(errors.ErrCodeInvalidMatrix,
			"need at least 2 items along %s, got %d", axis, n)
	}

	cd := make([]float64, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			cd[condensedIndex(n, i, j)] = metric(vecs[i], vecs[j])
		}
	}
	return cd, n, nil
}

// condensedIndex maps pair (i, j), i < j, into the condensed vector.
func condensedIndex(n, i, j int) int {
	return n*i - i*(i+1)/2 + (j - i - 1)
}

// axisVectors extracts the axis's vectors as rows.
func axisVectors(m *mat.Dense, axis Axis) [][]float64 {
	r, c := m.Dims()
	if axis == Cols {
		out := make([][]float64, c)
		for j := 0; j < c; j++ {
			col := make([]float64, r)
			mat.Col(col, j, m)
			out[j] = col
		}
		return out
	}
	out := make([][]float64, r)
	for i := 0; i < r; i++ {
		row := make([]float64, c)
		mat.Row(row, i, m)
		out[i] = row
	}
	return out
}
