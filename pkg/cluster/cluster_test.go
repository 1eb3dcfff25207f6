package cluster

import (
	"context"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/trellisplot/trellis/pkg/cache"
	corecluster "github.com/trellisplot/trellis/pkg/core/cluster"
	"github.com/trellisplot/trellis/pkg/errors"
)

func testMatrix() *mat.Dense {
	return mat.NewDense(4, 3, []float64{
		0, 0, 0,
		10, 10, 10,
		0.5, 0, 0,
		10, 10, 11,
	})
}

func TestClusterMatrixBothAxes(t *testing.T) {
	ctx := context.Background()
	c := NewClusterer(nil, nil)

	res, err := c.ClusterMatrix(ctx, testMatrix(), Options{})
	if err != nil {
		t.Fatalf("ClusterMatrix: %v", err)
	}
	if res.Rows == nil || res.Cols == nil {
		t.Fatal("both axes should be clustered by default")
	}
	if len(res.Rows.Linkage) != 3 {
		t.Errorf("row linkage length = %d, want 3", len(res.Rows.Linkage))
	}
	if len(res.Cols.Linkage) != 2 {
		t.Errorf("col linkage length = %d, want 2", len(res.Cols.Linkage))
	}
	if len(res.Rows.Order) != 4 || len(res.Cols.Order) != 3 {
		t.Errorf("order lengths = %d, %d, want 4, 3", len(res.Rows.Order), len(res.Cols.Order))
	}

	// Similar rows end up adjacent: 0 with 2, 1 with 3.
	pos := make(map[int]int)
	for i, r := range res.Rows.Order {
		pos[r] = i
	}
	if d := pos[0] - pos[2]; d != 1 && d != -1 {
		t.Errorf("rows 0 and 2 should be adjacent, order = %v", res.Rows.Order)
	}
	if d := pos[1] - pos[3]; d != 1 && d != -1 {
		t.Errorf("rows 1 and 3 should be adjacent, order = %v", res.Rows.Order)
	}

	// Reordered matrix has the same shape.
	r, cols := res.Matrix.Dims()
	if r != 4 || cols != 3 {
		t.Errorf("reordered dims = %dx%d, want 4x3", r, cols)
	}
}

func TestClusterMatrixRowsOnly(t *testing.T) {
	ctx := context.Background()
	c := NewClusterer(nil, nil)

	f := false
	res, err := c.ClusterMatrix(ctx, testMatrix(), Options{ClusterCols: &f})
	if err != nil {
		t.Fatalf("ClusterMatrix: %v", err)
	}
	if res.Rows == nil {
		t.Error("rows should be clustered")
	}
	if res.Cols != nil {
		t.Error("cols should not be clustered")
	}
	// Column order untouched.
	orig := testMatrix()
	perm := res.Rows.Order
	for i := 0; i < 4; i++ {
		for j := 0; j < 3; j++ {
			if res.Matrix.At(i, j) != orig.At(perm[i], j) {
				t.Fatalf("matrix[%d][%d] not reordered by row permutation", i, j)
			}
		}
	}
}

func TestClusterMatrixCaching(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	c := NewClusterer(fc, nil)

	first, err := c.ClusterMatrix(ctx, testMatrix(), Options{})
	if err != nil {
		t.Fatalf("first ClusterMatrix: %v", err)
	}
	if first.RowsHit || first.ColsHit {
		t.Error("first run should miss the cache")
	}

	second, err := c.ClusterMatrix(ctx, testMatrix(), Options{})
	if err != nil {
		t.Fatalf("second ClusterMatrix: %v", err)
	}
	if !second.RowsHit || !second.ColsHit {
		t.Error("second run should hit the cache on both axes")
	}

	// Cached result matches the computed one.
	for i := range first.Rows.Linkage {
		a, b := first.Rows.Linkage[i], second.Rows.Linkage[i]
		if a != b {
			t.Errorf("cached merge %d = %+v, want %+v", i, b, a)
		}
	}

	// Refresh bypasses the cache.
	third, err := c.ClusterMatrix(ctx, testMatrix(), Options{Refresh: true})
	if err != nil {
		t.Fatalf("refresh ClusterMatrix: %v", err)
	}
	if third.RowsHit || third.ColsHit {
		t.Error("refresh should not report cache hits")
	}
}

func TestClusterMatrixInvalidOptions(t *testing.T) {
	ctx := context.Background()
	c := NewClusterer(nil, nil)

	_, err := c.ClusterMatrix(ctx, testMatrix(), Options{Metric: "hamming"})
	if errors.GetCode(err) != errors.ErrCodeInvalidMetric {
		t.Errorf("bad metric code = %v, want INVALID_METRIC", errors.GetCode(err))
	}

	_, err = c.ClusterMatrix(ctx, testMatrix(), Options{Method: "median"})
	if errors.GetCode(err) != errors.ErrCodeInvalidMethod {
		t.Errorf("bad method code = %v, want INVALID_METHOD", errors.GetCode(err))
	}

	_, err = c.ClusterMatrix(ctx, nil, Options{})
	if errors.GetCode(err) != errors.ErrCodeInvalidMatrix {
		t.Errorf("nil matrix code = %v, want INVALID_MATRIX", errors.GetCode(err))
	}
}

func TestLinkageCodecRoundTrip(t *testing.T) {
	l := corecluster.Linkage{
		{Left: 0, Right: 1, Distance: 0.5, Size: 2},
		{Left: 2, Right: 3, Distance: 1.5, Size: 3},
	}
	data, err := encodeLinkage(l)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := decodeLinkage(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != len(l) {
		t.Fatalf("decoded length = %d, want %d", len(got), len(l))
	}
	for i := range l {
		if got[i] != l[i] {
			t.Errorf("merge %d = %+v, want %+v", i, got[i], l[i])
		}
	}
}
