package dataset

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/trellisplot/trellis/pkg/errors"
)

// Pivoted is the result of reshaping a tidy (long-form) dataset into a 2-D
// matrix: one row per distinct index value, one column per distinct columns
// value, cells holding the corresponding values entry.
type Pivoted struct {
	Matrix    *mat.Dense
	RowLabels []Value
	ColLabels []Value
}

// Pivot reshapes a tidy dataset into a 2-D matrix. Row and column labels are
// the distinct non-null values of the index and columns variables in
// first-appearance order. Cells with no matching observation are NaN; when a
// (row, col) pair appears more than once the last observation wins.
func Pivot(ds *Dataset, index, columns, values string) (*Pivoted, error) {
	idxCol, err := ds.Column(index)
	if err != nil {
		return nil, err
	}
	colCol, err := ds.Column(columns)
	if err != nil {
		return nil, err
	}
	valCol, err := ds.Column(values)
	if err != nil {
		return nil, err
	}
	if valCol.Kind() != KindFloat {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"values column %q must be numeric", values)
	}

	rowLabels := idxCol.Unique()
	colLabels := colCol.Unique()
	if len(rowLabels) == 0 || len(colLabels) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyDataset,
			"pivot of %q×%q produced no labels", index, columns)
	}

	rowIdx := make(map[Value]int, len(rowLabels))
	for i, v := range rowLabels {
		rowIdx[v] = i
	}
	colIdx := make(map[Value]int, len(colLabels))
	for j, v := range colLabels {
		colIdx[v] = j
	}

	m := mat.NewDense(len(rowLabels), len(colLabels), nil)
	for i := 0; i < len(rowLabels); i++ {
		for j := 0; j < len(colLabels); j++ {
			m.Set(i, j, math.NaN())
		}
	}
	for k := 0; k < ds.Len(); k++ {
		if idxCol.IsNull(k) || colCol.IsNull(k) {
			continue
		}
		i := rowIdx[idxCol.Value(k)]
		j := colIdx[colCol.Value(k)]
		m.Set(i, j, valCol.Float(k))
	}

	return &Pivoted{Matrix: m, RowLabels: rowLabels, ColLabels: colLabels}, nil
}
