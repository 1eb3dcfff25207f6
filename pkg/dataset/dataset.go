// Package dataset provides an immutable, column-oriented tidy table.
//
// A Dataset holds named columns of equal length where each column is a
// variable and each row is an observation. Columns are either numeric
// (float64, with NaN marking missing values) or categorical (string, with an
// explicit validity mask). The facet and heatmap layers read datasets but
// never mutate them: filtering produces a new Dataset.
//
// # Usage
//
//	ds, err := dataset.New(
//	    dataset.Floats("total_bill", bills),
//	    dataset.Strings("day", days),
//	    dataset.Strings("sex", sexes),
//	)
//	subset := ds.Filter(ds.MustColumn("day").EqualMask(dataset.Str("Sun")))
package dataset

import (
	"github.com/trellisplot/trellis/pkg/errors"
)

// Dataset is an immutable column-oriented table.
type Dataset struct {
	cols   []*Column
	byName map[string]int
	n      int
}

// New creates a Dataset from columns. All columns must have the same length
// and distinct names.
func New(cols ...*Column) (*Dataset, error) {
	if len(cols) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyDataset, "dataset needs at least one column")
	}
	n := cols[0].Len()
	byName := make(map[string]int, len(cols))
	for i, c := range cols {
		if c.Len() != n {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"column %q has %d rows, want %d", c.Name, c.Len(), n)
		}
		if _, dup := byName[c.Name]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate column %q", c.Name)
		}
		byName[c.Name] = i
	}
	return &Dataset{cols: cols, byName: byName, n: n}, nil
}

// MustNew is like New but panics on error. Intended for tests and literals.
func MustNew(cols ...*Column) *Dataset {
	ds, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return ds
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return d.n }

// Names returns the column names in declaration order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.cols))
	for i, c := range d.cols {
		names[i] = c.Name
	}
	return names
}

// Has reports whether a column with the given name exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.byName[name]
	return ok
}

// Column returns the named column.
func (d *Dataset) Column(name string) (*Column, error) {
	i, ok := d.byName[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeColumnNotFound, "no column %q", name)
	}
	return d.cols[i], nil
}

// MustColumn is like Column but panics on missing columns.
// Intended for tests and callers that already validated the name.
func (d *Dataset) MustColumn(name string) *Column {
	c, err := d.Column(name)
	if err != nil {
		panic(err)
	}
	return c
}

// Filter returns a new Dataset containing only the rows where mask is true.
// The mask length must equal Len; extra entries are ignored, missing entries
// treated as false. The receiver is not modified.
func (d *Dataset) Filter(mask Mask) *Dataset {
	cols := make([]*Column, len(d.cols))
	for i, c := range d.cols {
		cols[i] = c.filter(mask)
	}
	out, _ := New(cols...)
	return out
}

// Select returns a new Dataset with only the named columns, in the given
// order. Row order and count are preserved.
func (d *Dataset) Select(names ...string) (*Dataset, error) {
	cols := make([]*Column, 0, len(names))
	for _, name := range names {
		c, err := d.Column(name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return New(cols...)
}

// DropNulls returns a new Dataset excluding any row that has a null in any
// of the named columns. With no names, all columns are checked.
func (d *Dataset) DropNulls(names ...string) *Dataset {
	if len(names) == 0 {
		names = d.Names()
	}
	keep := NewMask(d.n, true)
	for _, name := range names {
		c, err := d.Column(name)
		if err != nil {
			continue
		}
		keep = keep.And(c.NullMask().Not())
	}
	return d.Filter(keep)
}
