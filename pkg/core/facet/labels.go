package facet

import (
	"sort"

	"github.com/trellisplot/trellis/pkg/dataset"
	"github.com/trellisplot/trellis/pkg/errors"
)

// Options configures label-set derivation and partitioning.
type Options struct {
	// Row, Col, Hue name the grouping columns. Empty means the dimension
	// is not faceted and collapses to a single implicit facet.
	Row, Col, Hue string

	// RowOrder, ColOrder, HueOrder override the derived sorted-unique label
	// order. An explicit order is used verbatim (after NA filtering when
	// DropNA is set).
	RowOrder, ColOrder, HueOrder []dataset.Value

	// DropNA excludes rows holding a null in any grouping column from every
	// subset, and filters nulls from derived and explicit label sets.
	DropNA bool
}

// LabelSets holds the ordered label sets for each grouping dimension plus
// the global NA-exclusion mask. Label order is fixed for the lifetime of a
// grid and determines both axis placement and color assignment.
type LabelSets struct {
	Row, Col, Hue []dataset.Value

	// NotNA is true for rows that survive NA exclusion. Without DropNA it
	// is all true. It is intersected into every partition mask.
	NotNA dataset.Mask
}

// BuildLabelSets derives the label sets for the configured dimensions.
//
// For each dimension with a key: an explicit order is used verbatim,
// otherwise the distinct non-null values sorted ascending. A key whose label
// set comes out empty yields an EMPTY_FACET error; callers may degrade the
// dimension to a single implicit facet.
func BuildLabelSets(ds *dataset.Dataset, opts Options) (*LabelSets, error) {
	ls := &LabelSets{NotNA: dataset.NewMask(ds.Len(), true)}

	dims := []struct {
		key   string
		order []dataset.Value
		dst   *[]dataset.Value
	}{
		{opts.Row, opts.RowOrder, &ls.Row},
		{opts.Col, opts.ColOrder, &ls.Col},
		{opts.Hue, opts.HueOrder, &ls.Hue},
	}

	for _, d := range dims {
		if d.key == "" {
			continue
		}
		col, err := ds.Column(d.key)
		if err != nil {
			return nil, err
		}

		labels := d.order
		if labels == nil {
			labels = sortedUnique(col)
		}
		if opts.DropNA {
			labels = dropNullLabels(labels)
			ls.NotNA = ls.NotNA.And(col.NullMask().Not())
		}
		if len(labels) == 0 {
			return nil, errors.New(errors.ErrCodeEmptyFacet,
				"variable %q has no non-null labels", d.key)
		}
		*d.dst = labels
	}

	return ls, nil
}

func sortedUnique(col *dataset.Column) []dataset.Value {
	labels := col.Unique()
	sort.Slice(labels, func(i, j int) bool { return labels[i].Less(labels[j]) })
	return labels
}

func dropNullLabels(labels []dataset.Value) []dataset.Value {
	out := labels[:0:0]
	for _, l := range labels {
		if !l.IsNull() {
			out = append(out, l)
		}
	}
	return out
}
