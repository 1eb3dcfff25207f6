package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/trellisplot/trellis/pkg/heatmap"
)

// HTMLOptions configures the interactive heatmap export.
type HTMLOptions struct {
	Title    string
	Subtitle string
}

// WriteHTML exports a clustermap as a standalone interactive HTML heatmap.
// The matrix is already in display order, so the exported cells match the
// static rendering; dendrograms and side colors are not carried over.
func WriteHTML(cm *heatmap.Clustermap, o HTMLOptions, w io.Writer) error {
	rows, cols := cm.Matrix.Dims()

	xLabels := cm.ColTickLabels()
	if xLabels == nil {
		xLabels = make([]string, cols)
		for j := range xLabels {
			xLabels[j] = fmt.Sprintf("%d", j)
		}
	}
	yLabels := cm.RowTickLabels()
	if yLabels == nil {
		yLabels = make([]string, rows)
		for i := range yLabels {
			yLabels[i] = fmt.Sprintf("%d", i)
		}
	}

	// Values go out in color space so they line up with the visual map
	// limits, which are log10 under a log scale.
	m := cm.Norm.Transform(cm.Matrix)
	data := make([]opts.HeatMapData, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data = append(data, opts.HeatMapData{
				Value: [3]interface{}{j, i, m.At(i, j)},
			})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    o.Title,
			Subtitle: o.Subtitle,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "category",
			Data: xLabels,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "category",
			Data: yLabels,
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Min:        float32(cm.Norm.Min),
			Max:        float32(cm.Norm.Max),
			Calculable: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	hm.AddSeries("value", data)

	return hm.Render(w)
}
