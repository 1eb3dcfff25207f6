package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/trellisplot/trellis/pkg/cache"
	"github.com/trellisplot/trellis/pkg/cluster"
	"github.com/trellisplot/trellis/pkg/dataset"
	"github.com/trellisplot/trellis/pkg/errors"
	"github.com/trellisplot/trellis/pkg/facet"
	"github.com/trellisplot/trellis/pkg/heatmap"
	"github.com/trellisplot/trellis/pkg/observability"
	"github.com/trellisplot/trellis/pkg/render"
)

// Runner executes the plotting pipeline with caching. It is stateless apart
// from the cache and logger, so one Runner can serve concurrent requests.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger

	clusterer *cluster.Clusterer
}

// NewRunner creates a runner. A nil cache disables caching.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:     c,
		Logger:    logger,
		clusterer: cluster.NewClusterer(c, logger),
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID correlates log lines and artifacts of one execution.
	RunID string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Grid is set for facet runs.
	Grid *facet.Grid

	// Clustermap is set for clustermap runs.
	Clustermap *heatmap.Clustermap

	// Stats contains timing information.
	Stats Stats
}

// Stats contains pipeline execution timings.
type Stats struct {
	BuildTime  time.Duration
	RenderTime time.Duration
}

// Execute runs the full pipeline for a dataset: build the figure for the
// configured kind, then render the requested formats.
func (r *Runner) Execute(ctx context.Context, ds *dataset.Dataset, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	res := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}
	logger := r.Logger.With("run_id", res.RunID)

	buildStart := time.Now()
	var fig render.Figure
	switch opts.Kind {
	case KindFacet:
		grid, err := r.Facet(ctx, ds, opts)
		if err != nil {
			return nil, fmt.Errorf("facet: %w", err)
		}
		res.Grid = grid
		fig = grid
	case KindClustermap:
		cm, err := r.ClustermapFromDataset(ctx, ds, opts)
		if err != nil {
			return nil, fmt.Errorf("clustermap: %w", err)
		}
		res.Clustermap = cm
		fig = cm
	}
	res.Stats.BuildTime = time.Since(buildStart)
	logger.Info("built figure", "kind", opts.Kind, "duration", res.Stats.BuildTime)

	renderStart := time.Now()
	artifacts, err := r.Render(ctx, fig, res.Clustermap, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	res.Artifacts = artifacts
	res.Stats.RenderTime = time.Since(renderStart)
	logger.Info("rendered outputs", "formats", opts.Formats, "duration", res.Stats.RenderTime)

	return res, nil
}

// Facet builds a faceted grid and maps the configured plot function.
// Grouping variables with no usable labels are dropped with a warning, so a
// degenerate key degrades to a single implicit facet instead of failing.
func (r *Runner) Facet(ctx context.Context, ds *dataset.Dataset, opts Options) (*facet.Grid, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	row := r.usableKey(ds, opts.Row)
	col := r.usableKey(ds, opts.Col)
	hue := r.usableKey(ds, opts.Hue)

	gridOpts := []facet.Option{
		facet.Row(row),
		facet.Col(col),
		facet.Hue(hue),
		facet.Logger(r.Logger),
		facet.LegendOut(opts.LegendOut),
	}
	if opts.ColWrap > 0 {
		gridOpts = append(gridOpts, facet.ColWrap(opts.ColWrap))
	}
	if opts.Size > 0 {
		gridOpts = append(gridOpts, facet.Size(opts.Size))
	}
	if opts.Aspect > 0 {
		gridOpts = append(gridOpts, facet.Aspect(opts.Aspect))
	}
	if opts.Palette != "" {
		gridOpts = append(gridOpts, facet.Palette(opts.Palette))
	}
	if opts.DropNA {
		gridOpts = append(gridOpts, facet.DropNA())
	}
	if opts.MarginTitles {
		gridOpts = append(gridOpts, facet.MarginTitles())
	}

	grid, err := facet.New(ds, gridOpts...)
	if err != nil {
		return nil, err
	}

	fn := facet.Scatter
	if opts.Plot == "line" {
		fn = facet.Line
	}
	return grid.Map(fn, opts.X, opts.Y)
}

// usableKey returns the key if its column has at least one non-null label,
// else empty. A dropped key is logged; the dimension collapses to a single
// implicit facet.
func (r *Runner) usableKey(ds *dataset.Dataset, key string) string {
	if key == "" {
		return ""
	}
	col, err := ds.Column(key)
	if err != nil {
		// Let grid construction report the missing column.
		return key
	}
	for _, v := range col.Unique() {
		if !v.IsNull() {
			return key
		}
	}
	r.Logger.Warn("grouping variable has no usable labels, ignoring", "key", key)
	return ""
}

// ClustermapFromDataset pivots a tidy dataset when pivot keys are set, or
// converts numeric columns to a matrix otherwise, then clusters it.
func (r *Runner) ClustermapFromDataset(ctx context.Context, ds *dataset.Dataset, opts Options) (*heatmap.Clustermap, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	var (
		m                    *mat.Dense
		rowLabels, colLabels []string
		err                  error
	)
	if opts.Index != "" {
		pv, err := dataset.Pivot(ds, opts.Index, opts.Columns, opts.Values)
		if err != nil {
			return nil, err
		}
		m = pv.Matrix
		rowLabels = valueStrings(pv.RowLabels)
		colLabels = valueStrings(pv.ColLabels)
	} else {
		m, rowLabels, colLabels, err = matrixFromColumns(ds)
		if err != nil {
			return nil, err
		}
	}

	var rowColors []string
	if opts.RowColorCol != "" {
		col, err := ds.Column(opts.RowColorCol)
		if err != nil {
			return nil, err
		}
		if opts.Index != "" {
			// Pivoting collapses observations onto index labels, so the
			// track collapses the same way.
			idx, err := ds.Column(opts.Index)
			if err != nil {
				return nil, err
			}
			rowColors = collapseTrack(idx, col, rowLabels)
		} else {
			rowColors = make([]string, col.Len())
			for i := range rowColors {
				rowColors[i] = col.Value(i).String()
			}
		}
	}

	return r.Clustermap(ctx, m, rowLabels, colLabels, rowColors, opts)
}

// Clustermap clusters the matrix through the caching clusterer and composes
// the heatmap with the precomputed linkage injected.
func (r *Runner) Clustermap(ctx context.Context, m *mat.Dense, rowLabels, colLabels, rowColors []string, opts Options) (*heatmap.Clustermap, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	clusterRows := !opts.NoRows
	clusterCols := !opts.NoCols
	cres, err := r.clusterer.ClusterMatrix(ctx, m, cluster.Options{
		Metric:      opts.Metric,
		Method:      opts.Method,
		ClusterRows: &clusterRows,
		ClusterCols: &clusterCols,
		Fast:        opts.Fast,
		Refresh:     opts.Refresh,
	})
	if err != nil {
		return nil, err
	}

	cfg := heatmap.Config{
		Metric:      opts.Metric,
		Method:      opts.Method,
		ClusterRows: &clusterRows,
		ClusterCols: &clusterCols,
		Fast:        opts.Fast,
		LogScale:    opts.LogScale,
		RowLabels:   rowLabels,
		ColLabels:   colLabels,
		RowColors:   rowColors,
		SidePalette: opts.Palette,
	}
	if cres.Rows != nil {
		cfg.RowLinkage = cres.Rows.Linkage
	}
	if cres.Cols != nil {
		cfg.ColLinkage = cres.Cols.Linkage
	}
	return heatmap.New(m, cfg)
}

// TTLArtifact is how long cached rendered artifacts live.
const TTLArtifact = 24 * time.Hour

// Render produces artifacts for every requested format. HTML and DOT apply
// only to clustermaps; requesting them for a facet grid is UNSUPPORTED.
// Clustermap artifacts are cached keyed on the plot content and options;
// Refresh bypasses the cache and recomputes.
func (r *Runner) Render(ctx context.Context, fig render.Figure, cm *heatmap.Clustermap, opts Options) (map[string][]byte, error) {
	formats := opts.Formats
	observability.Plot().OnRenderStart(ctx, formats)
	start := time.Now()

	hash := ""
	if cm != nil {
		h, err := plotHash(cm, opts)
		if err != nil {
			r.Logger.Warn("artifact fingerprint failed, rendering without cache", "err", err)
		} else {
			hash = h
		}
	}

	artifacts := make(map[string][]byte, len(formats))
	var failure error
	for _, name := range formats {
		format, err := render.ParseFormat(name)
		if err != nil {
			failure = err
			break
		}

		if hash != "" && !opts.Refresh {
			key := cache.ArtifactKey(hash, name)
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				r.Logger.Debug("artifact cache hit", "format", name)
				artifacts[name] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}

		data, err := r.renderOne(ctx, fig, cm, format)
		if err != nil {
			failure = err
			break
		}
		if hash != "" && !opts.Refresh {
			key := cache.ArtifactKey(hash, name)
			if err := r.Cache.Set(ctx, key, data, TTLArtifact); err == nil {
				observability.Cache().OnCacheSet(ctx, "artifact", len(data))
			}
		}
		artifacts[name] = data
	}

	observability.Plot().OnRenderComplete(ctx, formats, time.Since(start), failure)
	if failure != nil {
		return nil, failure
	}
	return artifacts, nil
}

func (r *Runner) renderOne(ctx context.Context, fig render.Figure, cm *heatmap.Clustermap, format render.Format) ([]byte, error) {
	switch format {
	case render.FormatSVG:
		return render.SVG(fig)
	case render.FormatPNG:
		return render.PNG(fig)
	case render.FormatHTML:
		if cm == nil {
			return nil, errors.New(errors.ErrCodeUnsupported, "html output requires a clustermap")
		}
		var buf bytes.Buffer
		if err := render.WriteHTML(cm, render.HTMLOptions{Title: "clustermap"}, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case render.FormatDOT:
		if cm == nil || cm.Rows == nil {
			return nil, errors.New(errors.ErrCodeUnsupported, "dot output requires a row-clustered clustermap")
		}
		return []byte(render.DendrogramToDOT(cm.Rows.Linkage, cm.RowTickLabels())), nil
	case render.FormatJSON:
		if cm == nil {
			return nil, errors.New(errors.ErrCodeUnsupported, "json output requires a clustermap")
		}
		return marshalClustermap(cm)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown output format %q", format)
	}
}
