package facet

import (
	"iter"

	"github.com/trellisplot/trellis/pkg/dataset"
)

// Index locates a subset within the grid: row and column cell indices plus
// the hue layer drawn within that cell.
type Index struct {
	Row, Col, Hue int
}

// Partition enumerates data subsets over the Cartesian product of the
// per-dimension masks. Dimensions without a grouping key contribute a single
// all-true mask, so the enumeration is uniform regardless of which
// dimensions are active.
type Partition struct {
	ds       *dataset.Dataset
	rowMasks []dataset.Mask
	colMasks []dataset.Mask
	hueMasks []dataset.Mask
	notNA    dataset.Mask
}

// NewPartition builds the mask sets for the given label sets.
func NewPartition(ds *dataset.Dataset, labels *LabelSets, opts Options) (*Partition, error) {
	p := &Partition{ds: ds, notNA: labels.NotNA}

	var err error
	if p.rowMasks, err = dimensionMasks(ds, opts.Row, labels.Row); err != nil {
		return nil, err
	}
	if p.colMasks, err = dimensionMasks(ds, opts.Col, labels.Col); err != nil {
		return nil, err
	}
	if p.hueMasks, err = dimensionMasks(ds, opts.Hue, labels.Hue); err != nil {
		return nil, err
	}
	return p, nil
}

// Counts returns the number of masks per dimension (at least 1 each).
// The total number of subsets yielded is the product of the three.
func (p *Partition) Counts() (rows, cols, hues int) {
	return len(p.rowMasks), len(p.colMasks), len(p.hueMasks)
}

// Subsets lazily yields ((row, col, hue), subset) pairs in row-major order
// with hue innermost. Empty subsets are yielded so that callers stay aligned
// with the grid; skipping them is the caller's job.
func (p *Partition) Subsets() iter.Seq2[Index, *dataset.Dataset] {
	return func(yield func(Index, *dataset.Dataset) bool) {
		for i, rm := range p.rowMasks {
			for j, cm := range p.colMasks {
				rc := rm.And(cm)
				for k, hm := range p.hueMasks {
					mask := rc.And(hm).And(p.notNA)
					if !yield(Index{Row: i, Col: j, Hue: k}, p.ds.Filter(mask)) {
						return
					}
				}
			}
		}
	}
}

// dimensionMasks builds one equality mask per label, or the single all-true
// mask when the dimension has no key.
func dimensionMasks(ds *dataset.Dataset, key string, labels []dataset.Value) ([]dataset.Mask, error) {
	if key == "" || len(labels) == 0 {
		return []dataset.Mask{dataset.NewMask(ds.Len(), true)}, nil
	}
	col, err := ds.Column(key)
	if err != nil {
		return nil, err
	}
	masks := make([]dataset.Mask, len(labels))
	for i, l := range labels {
		masks[i] = col.EqualMask(l)
	}
	return masks, nil
}
