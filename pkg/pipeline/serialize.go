package pipeline

import (
	"encoding/json"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/trellisplot/trellis/pkg/cache"
	"github.com/trellisplot/trellis/pkg/dataset"
	"github.com/trellisplot/trellis/pkg/errors"
	"github.com/trellisplot/trellis/pkg/heatmap"
)

// valueStrings renders pivot labels as plain strings for tick display.
func valueStrings(vals []dataset.Value) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.String()
	}
	return out
}

// matrixFromColumns assembles a matrix from every numeric column of ds,
// in column order. Row labels are the zero-based row indices rendered as
// strings; column labels are the column names.
func matrixFromColumns(ds *dataset.Dataset) (*mat.Dense, []string, []string, error) {
	var colLabels []string
	var cols []*dataset.Column
	for _, name := range ds.Names() {
		col := ds.MustColumn(name)
		if col.Kind() != dataset.KindFloat {
			continue
		}
		colLabels = append(colLabels, name)
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		return nil, nil, nil, errors.New(errors.ErrCodeEmptyDataset, "no numeric columns to build a matrix from")
	}
	n := ds.Len()
	if n == 0 {
		return nil, nil, nil, errors.New(errors.ErrCodeEmptyDataset, "dataset has no rows")
	}

	m := mat.NewDense(n, len(cols), nil)
	for j, col := range cols {
		for i := 0; i < n; i++ {
			m.Set(i, j, col.Float(i))
		}
	}
	rowLabels := make([]string, n)
	for i := range rowLabels {
		rowLabels[i] = strconv.Itoa(i)
	}
	return m, rowLabels, colLabels, nil
}

// =============================================================================
// JSON artifact
// =============================================================================

// collapseTrack reduces a per-observation side-color track to one entry per
// pivot row, keeping the first value seen for each index label.
func collapseTrack(idx, track *dataset.Column, rowLabels []string) []string {
	first := make(map[string]string, len(rowLabels))
	for i := 0; i < idx.Len(); i++ {
		if idx.IsNull(i) {
			continue
		}
		k := idx.Value(i).String()
		if _, ok := first[k]; !ok {
			first[k] = track.Value(i).String()
		}
	}
	out := make([]string, len(rowLabels))
	for i, l := range rowLabels {
		out[i] = first[l]
	}
	return out
}

type axisJSON struct {
	Order   []int       `json:"order"`
	Linkage [][]float64 `json:"linkage"` // [left, right, distance, size] per merge
}

type clustermapJSON struct {
	Rows      int         `json:"rows"`
	Cols      int         `json:"cols"`
	Values    [][]float64 `json:"values"` // display order, row-major
	RowLabels []string    `json:"row_labels,omitempty"`
	ColLabels []string    `json:"col_labels,omitempty"`
	RowAxis   *axisJSON   `json:"row_clustering,omitempty"`
	ColAxis   *axisJSON   `json:"col_clustering,omitempty"`
	Min       float64     `json:"min"`
	Max       float64     `json:"max"`
	Diverging bool        `json:"diverging"`
	Log       bool        `json:"log"`
}

func axisToJSON(ax *heatmap.AxisClustering) *axisJSON {
	if ax == nil {
		return nil
	}
	links := make([][]float64, len(ax.Linkage))
	for i, mg := range ax.Linkage {
		links[i] = []float64{float64(mg.Left), float64(mg.Right), mg.Distance, float64(mg.Size)}
	}
	return &axisJSON{Order: ax.Order, Linkage: links}
}

// marshalClustermap serializes a clustermap: the reordered matrix,
// per-axis leaf orders, and linkage rows of [left, right, distance, size].
func marshalClustermap(cm *heatmap.Clustermap) ([]byte, error) {
	r, c := cm.Matrix.Dims()
	values := make([][]float64, r)
	for i := 0; i < r; i++ {
		values[i] = mat.Row(nil, i, cm.Matrix)
	}
	doc := clustermapJSON{
		Rows:      r,
		Cols:      c,
		Values:    values,
		RowLabels: cm.RowTickLabels(),
		ColLabels: cm.ColTickLabels(),
		RowAxis:   axisToJSON(cm.Rows),
		ColAxis:   axisToJSON(cm.Cols),
		Min:       cm.Norm.Min,
		Max:       cm.Norm.Max,
		Diverging: cm.Norm.Diverging,
		Log:       cm.Norm.Log,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encoding clustermap")
	}
	return data, nil
}

// plotHash fingerprints a clustermap together with the options that shape
// its artifacts. Formats, Refresh, and the logger do not affect output and
// are excluded so one figure shares cache entries across runs.
func plotHash(cm *heatmap.Clustermap, opts Options) (string, error) {
	body, err := marshalClustermap(cm)
	if err != nil {
		return "", err
	}
	opts.Formats = nil
	opts.Refresh = false
	opts.Logger = nil
	params, err := json.Marshal(opts)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encoding options")
	}
	return cache.Hash(append(body, params...)), nil
}
