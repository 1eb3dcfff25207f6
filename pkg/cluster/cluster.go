// Package cluster wraps the pure linkage algorithms in pkg/core/cluster with
// logging, caching, and instrumentation. Use this package from pipelines and
// the CLI; use pkg/core/cluster directly when you only need the math.
package cluster

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/mat"

	"github.com/trellisplot/trellis/pkg/cache"
	corecluster "github.com/trellisplot/trellis/pkg/core/cluster"
	"github.com/trellisplot/trellis/pkg/observability"
)

// TTLLinkage is how long cached linkage results live.
const TTLLinkage = 24 * time.Hour

// Options selects the clustering behavior for one matrix.
type Options struct {
	// Metric names the distance function: euclidean (default), cityblock,
	// cosine, or correlation.
	Metric string `json:"metric,omitempty"`

	// Method names the linkage rule: average (default), single, complete,
	// or ward.
	Method string `json:"method,omitempty"`

	// ClusterRows and ClusterCols select which axes to cluster. Both default
	// to true through ValidateAndSetDefaults.
	ClusterRows *bool `json:"cluster_rows,omitempty"`
	ClusterCols *bool `json:"cluster_cols,omitempty"`

	// Fast forces the nearest-neighbor chain path regardless of input size.
	Fast bool `json:"fast,omitempty"`

	// Refresh bypasses the cache and recomputes.
	Refresh bool `json:"refresh,omitempty"`
}

// ValidateAndSetDefaults resolves names and fills defaults in place.
func (o *Options) ValidateAndSetDefaults() error {
	if _, err := corecluster.MetricByName(o.Metric); err != nil {
		return err
	}
	if _, err := corecluster.MethodByName(o.Method); err != nil {
		return err
	}
	t := true
	if o.ClusterRows == nil {
		o.ClusterRows = &t
	}
	if o.ClusterCols == nil {
		o.ClusterCols = &t
	}
	return nil
}

// AxisResult is the clustering outcome for one axis.
type AxisResult struct {
	Linkage    corecluster.Linkage
	Order      []int
	Dendrogram corecluster.Dendrogram
}

// Result holds per-axis outcomes plus the reordered matrix.
type Result struct {
	// Rows and Cols are nil for axes that were not clustered.
	Rows *AxisResult
	Cols *AxisResult

	// Matrix is the input with clustered axes permuted into display order.
	Matrix *mat.Dense

	// RowsHit and ColsHit report per-axis cache hits.
	RowsHit, ColsHit bool
}

// Clusterer computes and caches linkage. The zero value is not usable;
// construct with NewClusterer. Safe for concurrent use.
type Clusterer struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewClusterer creates a clusterer. A nil cache disables caching and a nil
// logger falls back to the package default.
func NewClusterer(c cache.Cache, logger *log.Logger) *Clusterer {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Clusterer{Cache: c, Logger: logger}
}

// ClusterMatrix clusters the selected axes of m and returns linkage, leaf
// order, dendrogram geometry, and the reordered matrix.
func (c *Clusterer) ClusterMatrix(ctx context.Context, m *mat.Dense, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := corecluster.ValidateMatrix(m); err != nil {
		return nil, err
	}

	res := &Result{Matrix: m}
	matrixHash := matrixHash(m)

	if *opts.ClusterRows {
		ar, hit, err := c.clusterAxis(ctx, m, corecluster.Rows, matrixHash, opts)
		if err != nil {
			return nil, err
		}
		res.Rows = ar
		res.RowsHit = hit
	}
	if *opts.ClusterCols {
		ar, hit, err := c.clusterAxis(ctx, m, corecluster.Cols, matrixHash, opts)
		if err != nil {
			return nil, err
		}
		res.Cols = ar
		res.ColsHit = hit
	}

	// Apply permutations after both axes are computed so each linkage sees
	// the original matrix.
	var err error
	if res.Rows != nil {
		if res.Matrix, err = corecluster.Reorder(res.Matrix, corecluster.Rows, res.Rows.Order); err != nil {
			return nil, err
		}
	}
	if res.Cols != nil {
		if res.Matrix, err = corecluster.Reorder(res.Matrix, corecluster.Cols, res.Cols.Order); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (c *Clusterer) clusterAxis(ctx context.Context, m *mat.Dense, axis corecluster.Axis, matrixHash string, opts Options) (*AxisResult, bool, error) {
	metric, _ := corecluster.MetricByName(opts.Metric)
	method, _ := corecluster.MethodByName(opts.Method)

	r, cols := m.Dims()
	items := r
	if axis == corecluster.Cols {
		items = cols
	}

	key := cache.LinkageKey(matrixHash, axis.String(), opts.Metric, opts.Method)

	if !opts.Refresh {
		if data, hit, err := c.Cache.Get(ctx, key); err == nil && hit {
			if l, err := decodeLinkage(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "linkage")
				c.Logger.Debug("linkage cache hit", "axis", axis, "items", items)
				return axisResult(l), true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "linkage")
	}

	observability.Plot().OnLinkageStart(ctx, axis.String(), items)
	start := time.Now()
	l, err := corecluster.ComputeLinkage(m, axis, metric, method, opts.Fast)
	observability.Plot().OnLinkageComplete(ctx, axis.String(), items, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	c.Logger.Info("computed linkage",
		"axis", axis,
		"items", items,
		"method", method,
		"duration", time.Since(start))

	if !opts.Refresh {
		if data, err := encodeLinkage(l); err == nil {
			if err := c.Cache.Set(ctx, key, data, TTLLinkage); err == nil {
				observability.Cache().OnCacheSet(ctx, "linkage", len(data))
			}
		}
	}
	return axisResult(l), false, nil
}

func axisResult(l corecluster.Linkage) *AxisResult {
	return &AxisResult{
		Linkage:    l,
		Order:      corecluster.LeafOrder(l),
		Dendrogram: corecluster.BuildDendrogram(l),
	}
}

// matrixHash fingerprints the matrix content for cache keys.
func matrixHash(m *mat.Dense) string {
	data, _ := m.MarshalBinary()
	return cache.Hash(data)
}

func encodeLinkage(l corecluster.Linkage) ([]byte, error) {
	return json.Marshal(l)
}

func decodeLinkage(data []byte) (corecluster.Linkage, error) {
	var l corecluster.Linkage
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, err
	}
	return l, nil
}
