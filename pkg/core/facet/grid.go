package facet

import (
	"github.com/trellisplot/trellis/pkg/errors"
)

// Default figure geometry, in abstract size units (inches at render time).
const (
	DefaultSize   = 3.0
	DefaultAspect = 1.0
)

// ShapeConfig carries the caller-facing layout knobs.
type ShapeConfig struct {
	// ColWrap folds a single logical row of column facets into multiple
	// physical rows of this width. Zero disables wrapping. Incompatible
	// with a row variable.
	ColWrap int

	// Size is the height of each facet; Aspect × Size is its width.
	Size, Aspect float64

	// MarginTitles draws row/column titles on the grid margins instead of
	// above each cell. Forced off under column wrapping.
	MarginTitles bool
}

// Shape is the computed physical grid.
type Shape struct {
	Rows, Cols int

	// Wrap is the column-wrap width, zero when not wrapping. Under wrap the
	// cell for subset (i, j) is the flattened index j, not (i, j).
	Wrap int

	// Width and Height are the base figure size in abstract units. A legend
	// drawn outside the grid grows the width later.
	Width, Height float64

	MarginTitles bool
}

// ComputeShape maps label counts to the physical grid shape.
//
// Row count is 1 without a row variable, else the row label count; likewise
// for columns. Column wrapping with a row variable is a configuration error:
// wrapping redefines the physical row dimension, so both cannot control it.
func ComputeShape(nRowLabels, nColLabels int, cfg ShapeConfig) (Shape, error) {
	if cfg.Size <= 0 {
		cfg.Size = DefaultSize
	}
	if cfg.Aspect <= 0 {
		cfg.Aspect = DefaultAspect
	}

	s := Shape{
		Rows:         max(nRowLabels, 1),
		Cols:         max(nColLabels, 1),
		MarginTitles: cfg.MarginTitles,
	}

	if cfg.ColWrap > 0 {
		if nRowLabels > 0 {
			return Shape{}, errors.New(errors.ErrCodeInvalidConfig,
				"col_wrap is incompatible with a row variable")
		}
		if nColLabels == 0 {
			return Shape{}, errors.New(errors.ErrCodeInvalidConfig,
				"col_wrap requires a col variable")
		}
		s.Wrap = cfg.ColWrap
		s.Cols = cfg.ColWrap
		s.Rows = (nColLabels + cfg.ColWrap - 1) / cfg.ColWrap
		s.MarginTitles = false
	}

	s.Width = float64(s.Cols) * cfg.Size * cfg.Aspect
	s.Height = float64(s.Rows) * cfg.Size
	return s, nil
}

// CellFor resolves the physical cell for a subset index. Under wrap the
// flattened position is the column index; otherwise it is (row, col).
func (s Shape) CellFor(idx Index) (row, col int) {
	if s.Wrap > 0 {
		return idx.Col / s.Wrap, idx.Col % s.Wrap
	}
	return idx.Row, idx.Col
}

// NumCells returns the total number of physical cells.
func (s Shape) NumCells() int { return s.Rows * s.Cols }
