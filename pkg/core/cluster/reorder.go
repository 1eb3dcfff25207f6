package cluster

import (
	"gonum.org/v1/gonum/mat"

	"github.com/trellisplot/trellis/pkg/errors"
)

// Reorder returns a copy of m with the given axis permuted by perm. The input
// matrix is not modified.
func Reorder(m *mat.Dense, axis Axis, perm []int) (*mat.Dense, error) {
	if err := ValidateMatrix(m); err != nil {
		return nil, err
	}
	r, c := m.Dims()
	want := r
	if axis == Cols {
		want = c
	}
	if err := validatePermutation(perm, want); err != nil {
		return nil, err
	}

	out := mat.NewDense(r, c, nil)
	switch axis {
	case Rows:
		for i, src := range perm {
			out.SetRow(i, mat.Row(nil, src, m))
		}
	case Cols:
		for j, src := range perm {
			out.SetCol(j, mat.Col(nil, src, m))
		}
	}
	return out, nil
}

// ReorderLabels applies perm to a label slice.
func ReorderLabels[T any](labels []T, perm []int) ([]T, error) {
	if err := validatePermutation(perm, len(labels)); err != nil {
		return nil, err
	}
	out := make([]T, len(labels))
	for i, src := range perm {
		out[i] = labels[src]
	}
	return out, nil
}

// InversePermutation returns q such that q[perm[i]] = i.
func InversePermutation(perm []int) []int {
	inv := make([]int, len(perm))
	for i, p := range perm {
		inv[p] = i
	}
	return inv
}

func validatePermutation(perm []int, n int) error {
	if len(perm) != n {
		return errors.New(errors.ErrCodeInvalidInput, "permutation length %d does not match axis extent %d", len(perm), n)
	}
	seen := make([]bool, n)
	for _, p := range perm {
		if p < 0 || p >= n || seen[p] {
			return errors.New(errors.ErrCodeInvalidInput, "invalid permutation: index %d out of range or repeated", p)
		}
		seen[p] = true
	}
	return nil
}
