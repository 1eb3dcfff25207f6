package cli

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/trellisplot/trellis/pkg/cache"
	"github.com/trellisplot/trellis/pkg/observability"
	"github.com/trellisplot/trellis/pkg/pipeline"
)

// clustermapOpts holds the command-line flags for the clustermap command.
type clustermapOpts struct {
	output  string // output file path, or base path for multiple formats
	formats string // comma-separated output formats

	index   string // pivot: column providing matrix row labels
	columns string // pivot: column providing matrix column labels
	values  string // pivot: column providing matrix cell values

	metric    string // distance metric
	method    string // linkage method
	fast      bool   // force the nearest-neighbor chain path
	logScale  bool   // log10 color normalization
	noRows    bool   // skip row clustering
	noCols    bool   // skip column clustering
	rowColors string // column mapped to a categorical row color strip
	palette   string // palette for the side color strip
	refresh   bool   // recompute linkage even on a cache hit
}

// newClustermapCmd creates the clustermap command for building clustered
// heatmaps from CSV input. Without pivot flags every numeric column becomes
// a matrix column; with --index, --columns, and --values the tidy input is
// pivoted first.
func newClustermapCmd() *cobra.Command {
	var opts clustermapOpts

	cmd := &cobra.Command{
		Use:   "clustermap [file.csv]",
		Short: "Build a hierarchically clustered heatmap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClustermap(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), png, html, dot, json (comma-separated)")
	cmd.Flags().StringVar(&opts.index, "index", "", "pivot column for matrix rows")
	cmd.Flags().StringVar(&opts.columns, "columns", "", "pivot column for matrix columns")
	cmd.Flags().StringVar(&opts.values, "values", "", "pivot column for matrix values")
	cmd.Flags().StringVar(&opts.metric, "metric", "", "distance metric: euclidean (default), cityblock, cosine, correlation")
	cmd.Flags().StringVar(&opts.method, "method", "", "linkage method: average (default), single, complete, ward")
	cmd.Flags().BoolVar(&opts.fast, "fast", false, "force the fast linkage path for small matrices")
	cmd.Flags().BoolVar(&opts.logScale, "log", false, "normalize colors on a log10 scale")
	cmd.Flags().BoolVar(&opts.noRows, "no-cluster-rows", false, "keep the input row order")
	cmd.Flags().BoolVar(&opts.noCols, "no-cluster-cols", false, "keep the input column order")
	cmd.Flags().StringVar(&opts.rowColors, "row-colors", "", "column mapped to a categorical row color strip")
	cmd.Flags().StringVar(&opts.palette, "palette", "", "side color palette: deep (default), rainbow, heat")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute linkage even when cached")

	return cmd
}

func runClustermap(cmd *cobra.Command, input string, opts *clustermapOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)

	ds, err := loadCSV(input)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded %s: %d rows, %d columns", input, ds.Len(), len(ds.Names()))

	c, err := openCache(ctx, cfg)
	if err != nil {
		printWarning("Cache unavailable (%v), continuing without one", err)
		c = cache.NewNullCache()
	}
	defer c.Close()

	var hits hitCounter
	observability.SetCacheHooks(&hits)
	defer observability.Reset()

	metric := cfg.Cluster.Metric
	if opts.metric != "" {
		metric = opts.metric
	}
	method := cfg.Cluster.Method
	if opts.method != "" {
		method = opts.method
	}

	runner := pipeline.NewRunner(c, logger)
	tracker := newProgress(logger)
	res, err := runner.Execute(ctx, ds, pipeline.Options{
		Kind:        pipeline.KindClustermap,
		Index:       opts.index,
		Columns:     opts.columns,
		Values:      opts.values,
		Metric:      metric,
		Method:      method,
		Fast:        opts.fast || cfg.Cluster.Fast,
		LogScale:    opts.logScale,
		NoRows:      opts.noRows,
		NoCols:      opts.noCols,
		RowColorCol: opts.rowColors,
		Palette:     opts.palette,
		Refresh:     opts.refresh,
		Formats:     parseFormats(opts.formats, cfg.Output.Format),
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	rows, cols := res.Clustermap.Matrix.Dims()
	tracker.done(fmt.Sprintf("Clustered %d×%d matrix", rows, cols))

	if err := writeArtifacts(res.Artifacts, opts.output, input); err != nil {
		return err
	}

	printSuccess("Clustered %s", input)
	printClusterStats(rows, cols, hits.n.Load() > 0)
	if opts.rowColors == "" && opts.index == "" {
		printNextStep("Pivot tidy data", "trellis clustermap --index gene --columns sample --values expr "+input)
	}
	return nil
}

// hitCounter counts linkage cache hits during one command run.
type hitCounter struct {
	observability.NoopCacheHooks

	n atomic.Int64
}

func (h *hitCounter) OnCacheHit(ctx context.Context, key string) { h.n.Add(1) }
