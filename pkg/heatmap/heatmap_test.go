package heatmap

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

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

func TestChooseNormDiverging(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{-3, 1, 2, 0.5})
	n, err := ChooseNorm(m, false)
	if err != nil {
		t.Fatalf("ChooseNorm: %v", err)
	}
	if !n.Diverging {
		t.Error("mixed-sign data should select a diverging norm")
	}
	if n.Min != -3 || n.Max != 3 {
		t.Errorf("limits = [%v, %v], want symmetric [-3, 3]", n.Min, n.Max)
	}
}

func TestChooseNormSequential(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	n, err := ChooseNorm(m, false)
	if err != nil {
		t.Fatalf("ChooseNorm: %v", err)
	}
	if n.Diverging {
		t.Error("one-signed data should select a sequential norm")
	}
	if n.Min != 1 || n.Max != 4 {
		t.Errorf("limits = [%v, %v], want [1, 4]", n.Min, n.Max)
	}
}

func TestChooseNormLog(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{1, 10, 100, 1000})
	n, err := ChooseNorm(m, true)
	if err != nil {
		t.Fatalf("ChooseNorm: %v", err)
	}
	if !n.Log {
		t.Error("norm should be log scaled")
	}
	if n.Min != 0 || n.Max != 3 {
		t.Errorf("limits = [%v, %v], want log10 [0, 3]", n.Min, n.Max)
	}
	tr := n.Transform(m)
	if got := tr.At(0, 1); got != 1 {
		t.Errorf("Transform(10) = %v, want 1", got)
	}
}

func TestChooseNormLogRejectsNonPositive(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{0, 1, 2, 3})
	_, err := ChooseNorm(m, true)
	if errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("code = %v, want INVALID_INPUT", errors.GetCode(err))
	}
}

func TestRatios(t *testing.T) {
	cases := []struct {
		dendro, side bool
	}{
		{true, true}, {true, false}, {false, true}, {false, false},
	}
	for _, c := range cases {
		r := Ratios(c.dendro, c.side)
		sum := r[0] + r[1] + r[2]
		if math.Abs(sum-1) > 1e-12 {
			t.Errorf("Ratios(%v, %v) sums to %v, want 1", c.dendro, c.side, sum)
		}
		if !c.dendro && r[0] != 0 {
			t.Errorf("absent dendrogram should have zero extent, got %v", r[0])
		}
		if !c.side && r[1] != 0 {
			t.Errorf("absent side colors should have zero extent, got %v", r[1])
		}
	}
}

func TestDendrogramLines(t *testing.T) {
	m := mat.NewDense(4, 1, []float64{0, 1, 10, 11})
	cd, n, err := corecluster.PairwiseDistances(m, corecluster.Rows, corecluster.Euclidean)
	if err != nil {
		t.Fatalf("PairwiseDistances: %v", err)
	}
	d := corecluster.BuildDendrogram(corecluster.ReferenceLinkage(cd, n, corecluster.MethodSingle))

	top := DendrogramLines(d, OrientTop)
	if len(top) != n-1 {
		t.Fatalf("got %d lines, want %d", len(top), n-1)
	}
	// First bracket spans the first two leaves at cell centers.
	if top[0][0].X != 0.5 || top[0][3].X != 1.5 {
		t.Errorf("leaf positions = %v, %v, want 0.5, 1.5", top[0][0].X, top[0][3].X)
	}

	left := DendrogramLines(d, OrientLeft)
	for _, xy := range left {
		for _, pt := range xy {
			if pt.X > 0 {
				t.Fatalf("left orientation should negate heights, got X = %v", pt.X)
			}
		}
	}
	if left[0][0].Y != 0.5 {
		t.Errorf("left leaf position = %v, want 0.5", left[0][0].Y)
	}
}

func TestNewSideColors(t *testing.T) {
	s, err := NewSideColors([]string{"a", "b", "a"}, 3, "")
	if err != nil {
		t.Fatalf("NewSideColors: %v", err)
	}
	if s.Colors[0] != s.Colors[2] {
		t.Error("same label should map to the same color")
	}
	if s.Colors[0] == s.Colors[1] {
		t.Error("distinct labels should map to distinct colors")
	}

	_, err = NewSideColors([]string{"a", "b"}, 3, "")
	if errors.GetCode(err) != errors.ErrCodeInvalidMatrix {
		t.Errorf("length mismatch code = %v, want INVALID_MATRIX", errors.GetCode(err))
	}
}

func TestNewClustermap(t *testing.T) {
	cm, err := New(testMatrix(), Config{
		RowColors: []string{"x", "y", "x", "y"},
		RowLabels: []string{"r0", "r1", "r2", "r3"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cm.Rows == nil || cm.Cols == nil {
		t.Fatal("both axes should be clustered by default")
	}
	if len(cm.Rows.Order) != 4 || len(cm.Cols.Order) != 3 {
		t.Fatalf("orders = %v, %v", cm.Rows.Order, cm.Cols.Order)
	}

	// Labels and side colors follow the row permutation.
	for i, src := range cm.Rows.Order {
		want := []string{"r0", "r1", "r2", "r3"}[src]
		if cm.rowLabels[i] != want {
			t.Errorf("rowLabels[%d] = %q, want %q", i, cm.rowLabels[i], want)
		}
		wantSide := []string{"x", "y", "x", "y"}[src]
		if cm.RowSide.Labels[i] != wantSide {
			t.Errorf("RowSide.Labels[%d] = %q, want %q", i, cm.RowSide.Labels[i], wantSide)
		}
	}

	// Matrix is the input permuted by both orders.
	orig := testMatrix()
	for i, ri := range cm.Rows.Order {
		for j, cj := range cm.Cols.Order {
			if cm.Matrix.At(i, j) != orig.At(ri, cj) {
				t.Fatalf("Matrix[%d][%d] not consistent with leaf orders", i, j)
			}
		}
	}
}

func TestNewClustermapPrecomputedLinkage(t *testing.T) {
	cd, n, err := corecluster.PairwiseDistances(testMatrix(), corecluster.Rows, corecluster.Euclidean)
	if err != nil {
		t.Fatalf("PairwiseDistances: %v", err)
	}
	pre := corecluster.ReferenceLinkage(cd, n, corecluster.MethodAverage)

	cm, err := New(testMatrix(), Config{RowLinkage: pre})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(cm.Rows.Linkage) != len(pre) {
		t.Fatalf("injected linkage not used")
	}
	for i := range pre {
		if cm.Rows.Linkage[i] != pre[i] {
			t.Errorf("merge %d = %+v, want injected %+v", i, cm.Rows.Linkage[i], pre[i])
		}
	}

	// A linkage for the wrong extent is rejected.
	_, err = New(mat.NewDense(3, 3, nil), Config{RowLinkage: pre, LogScale: false})
	if errors.GetCode(err) != errors.ErrCodeInvalidMatrix {
		t.Errorf("wrong-extent linkage code = %v, want INVALID_MATRIX", errors.GetCode(err))
	}
}

func TestNewClustermapRejectsNaN(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{1, math.NaN(), 3, 4})
	_, err := New(m, Config{})
	if errors.GetCode(err) != errors.ErrCodeInvalidMatrix {
		t.Errorf("code = %v, want INVALID_MATRIX", errors.GetCode(err))
	}
}

func TestNewClustermapDisabledAxes(t *testing.T) {
	f := false
	cm, err := New(testMatrix(), Config{ClusterRows: &f, ClusterCols: &f})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cm.Rows != nil || cm.Cols != nil {
		t.Error("disabled axes should not be clustered")
	}
	// Matrix untouched.
	if cm.Matrix.At(3, 2) != 11 {
		t.Error("matrix should keep input order when clustering is off")
	}
}

func TestClustermapDrawSmoke(t *testing.T) {
	cm, err := New(testMatrix(), Config{
		RowColors: []string{"x", "y", "x", "y"},
		RowLabels: []string{"r0", "r1", "r2", "r3"},
		ColLabels: []string{"c0", "c1", "c2"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w, h := cm.FigureSize()
	img := vgimg.New(w, h)
	if err := cm.Draw(draw.New(img)); err != nil {
		t.Fatalf("Draw: %v", err)
	}
}
