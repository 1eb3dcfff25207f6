// Package pipeline provides the end-to-end plotting pipeline shared by the
// CLI and the preview server.
//
// Two figure kinds run through it:
//
//  1. facet: partition a tidy dataset into a grid of panels and map a plot
//     function over every subset
//  2. clustermap: pivot or load a matrix, cluster its axes, and compose the
//     heatmap with dendrograms
//
// Both end in the render stage, which produces artifacts in the requested
// formats. Linkage computation goes through pkg/cluster so repeated runs
// over the same matrix hit the cache.
package pipeline

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/trellisplot/trellis/pkg/render"
)

// =============================================================================
// Defaults - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// KindFacet and KindClustermap name the two figure kinds.
	KindFacet      = "facet"
	KindClustermap = "clustermap"

	// DefaultPlot is the plot function mapped over facet subsets.
	DefaultPlot = "scatter"

	// DefaultFormat is the render output format.
	DefaultFormat = string(render.FormatSVG)

	// Clustering defaults.
	DefaultMetric = "euclidean"
	DefaultMethod = "average"
)

// ValidPlots enumerates the plot functions Map understands.
var ValidPlots = map[string]bool{
	"scatter": true,
	"line":    true,
}

// Options configures a pipeline run. The struct supports JSON serialization
// for server requests.
type Options struct {
	// Kind selects the figure: facet or clustermap.
	Kind string `json:"kind"`

	// Facet options
	Plot         string   `json:"plot,omitempty"`
	X            string   `json:"x,omitempty"`
	Y            string   `json:"y,omitempty"`
	Row          string   `json:"row,omitempty"`
	Col          string   `json:"col,omitempty"`
	Hue          string   `json:"hue,omitempty"`
	ColWrap      int      `json:"col_wrap,omitempty"`
	Size         float64  `json:"size,omitempty"`
	Aspect       float64  `json:"aspect,omitempty"`
	Palette      string   `json:"palette,omitempty"`
	DropNA       bool     `json:"drop_na,omitempty"`
	MarginTitles bool     `json:"margin_titles,omitempty"`
	LegendOut    bool     `json:"legend_out,omitempty"`

	// Clustermap options. Index, Columns, and Values pivot a tidy dataset
	// into the matrix; empty means the input is already a matrix.
	Index       string `json:"index,omitempty"`
	Columns     string `json:"columns,omitempty"`
	Values      string `json:"values,omitempty"`
	Metric      string `json:"metric,omitempty"`
	Method      string `json:"method,omitempty"`
	Fast        bool   `json:"fast,omitempty"`
	LogScale    bool   `json:"log_scale,omitempty"`
	NoRows      bool   `json:"no_cluster_rows,omitempty"`
	NoCols      bool   `json:"no_cluster_cols,omitempty"`
	RowColorCol string `json:"row_color_col,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Refresh bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// Idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	switch o.Kind {
	case KindFacet:
		if o.Plot == "" {
			o.Plot = DefaultPlot
		}
		if !ValidPlots[o.Plot] {
			return fmt.Errorf("invalid plot: %q (must be one of: scatter, line)", o.Plot)
		}
		if o.X == "" || o.Y == "" {
			return fmt.Errorf("x and y variables are required")
		}
	case KindClustermap:
		if o.Metric == "" {
			o.Metric = DefaultMetric
		}
		if o.Method == "" {
			o.Method = DefaultMethod
		}
		pivotKeys := 0
		for _, k := range []string{o.Index, o.Columns, o.Values} {
			if k != "" {
				pivotKeys++
			}
		}
		if pivotKeys != 0 && pivotKeys != 3 {
			return fmt.Errorf("pivot requires index, columns, and values together")
		}
	default:
		return fmt.Errorf("invalid kind: %q (must be facet or clustermap)", o.Kind)
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	for _, f := range o.Formats {
		if _, err := render.ParseFormat(f); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}
