package cluster

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/trellisplot/trellis/pkg/errors"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCondensedIndex(t *testing.T) {
	n := 5
	k := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if got := condensedIndex(n, i, j); got != k {
				t.Errorf("condensedIndex(%d, %d, %d) = %d, want %d", n, i, j, got, k)
			}
			k++
		}
	}
}

func TestPairwiseDistances(t *testing.T) {
	m := mat.NewDense(3, 2, []float64{
		0, 0,
		3, 4,
		0, 1,
	})
	cd, n, err := PairwiseDistances(m, Rows, Euclidean)
	if err != nil {
		t.Fatalf("PairwiseDistances: %v", err)
	}
	if n != 3 {
		t.Errorf("n = %d, want 3", n)
	}
	want := []float64{5, 1, math.Sqrt(18)}
	for i, w := range want {
		if !almostEqual(cd[i], w) {
			t.Errorf("cd[%d] = %v, want %v", i, cd[i], w)
		}
	}
}

func TestPairwiseDistancesCols(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{
		0, 3, 0,
		0, 4, 1,
	})
	cd, n, err := PairwiseDistances(m, Cols, Euclidean)
	if err != nil {
		t.Fatalf("PairwiseDistances: %v", err)
	}
	if n != 3 {
		t.Errorf("n = %d, want 3", n)
	}
	if !almostEqual(cd[0], 5) || !almostEqual(cd[1], 1) {
		t.Errorf("cd = %v, want [5 1 ...]", cd)
	}
}

func TestMetricByName(t *testing.T) {
	for _, name := range []string{"", "euclidean", "cityblock", "cosine", "correlation"} {
		if _, err := MetricByName(name); err != nil {
			t.Errorf("MetricByName(%q) returned error: %v", name, err)
		}
	}
	_, err := MetricByName("hamming")
	if errors.GetCode(err) != errors.ErrCodeInvalidMetric {
		t.Errorf("MetricByName(hamming) code = %v, want INVALID_METRIC", errors.GetCode(err))
	}
}

func TestMethodByName(t *testing.T) {
	for _, name := range []string{"", "average", "single", "complete", "ward"} {
		if _, err := MethodByName(name); err != nil {
			t.Errorf("MethodByName(%q) returned error: %v", name, err)
		}
	}
	_, err := MethodByName("centroid")
	if errors.GetCode(err) != errors.ErrCodeInvalidMethod {
		t.Errorf("MethodByName(centroid) code = %v, want INVALID_METHOD", errors.GetCode(err))
	}
}

func TestReferenceLinkageSimple(t *testing.T) {
	// Items on a line at 0, 1, 5: single linkage merges {0,1} at 1, then
	// the pair with 2 at distance 4.
	m := mat.NewDense(3, 1, []float64{0, 1, 5})
	cd, n, err := PairwiseDistances(m, Rows, Euclidean)
	if err != nil {
		t.Fatalf("PairwiseDistances: %v", err)
	}
	l := ReferenceLinkage(cd, n, MethodSingle)
	if len(l) != 2 {
		t.Fatalf("len(linkage) = %d, want 2", len(l))
	}
	if l[0].Left != 0 || l[0].Right != 1 || !almostEqual(l[0].Distance, 1) || l[0].Size != 2 {
		t.Errorf("merge 0 = %+v, want {0 1 1 2}", l[0])
	}
	if l[1].Left != 2 || l[1].Right != 3 || !almostEqual(l[1].Distance, 4) || l[1].Size != 3 {
		t.Errorf("merge 1 = %+v, want {2 3 4 3}", l[1])
	}
}

func randomMatrix(r *rand.Rand, rows, cols int) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = r.NormFloat64()
	}
	return mat.NewDense(rows, cols, data)
}

func TestFastMatchesReference(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	methods := []Method{MethodAverage, MethodSingle, MethodComplete, MethodWard}
	for trial := 0; trial < 5; trial++ {
		m := randomMatrix(r, 12, 4)
		cd, n, err := PairwiseDistances(m, Rows, Euclidean)
		if err != nil {
			t.Fatalf("PairwiseDistances: %v", err)
		}
		for _, method := range methods {
			ref := ReferenceLinkage(cd, n, method)
			fast := FastLinkage(cd, n, method)
			if len(ref) != len(fast) {
				t.Fatalf("%v: length mismatch %d vs %d", method, len(ref), len(fast))
			}
			for i := range ref {
				if ref[i].Left != fast[i].Left || ref[i].Right != fast[i].Right {
					t.Errorf("%v: merge %d ids = {%d %d}, want {%d %d}",
						method, i, fast[i].Left, fast[i].Right, ref[i].Left, ref[i].Right)
				}
				if !almostEqual(ref[i].Distance, fast[i].Distance) {
					t.Errorf("%v: merge %d distance = %v, want %v",
						method, i, fast[i].Distance, ref[i].Distance)
				}
				if ref[i].Size != fast[i].Size {
					t.Errorf("%v: merge %d size = %d, want %d",
						method, i, fast[i].Size, ref[i].Size)
				}
			}
		}
	}
}

func TestLeafOrderIsPermutation(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	m := randomMatrix(r, 15, 3)
	cd, n, err := PairwiseDistances(m, Rows, Euclidean)
	if err != nil {
		t.Fatalf("PairwiseDistances: %v", err)
	}
	l := ReferenceLinkage(cd, n, MethodAverage)
	order := LeafOrder(l)
	if len(order) != n {
		t.Fatalf("len(order) = %d, want %d", len(order), n)
	}
	seen := make([]bool, n)
	for _, idx := range order {
		if idx < 0 || idx >= n {
			t.Fatalf("leaf index %d out of range", idx)
		}
		if seen[idx] {
			t.Fatalf("leaf index %d repeated", idx)
		}
		seen[idx] = true
	}
}

func TestBuildDendrogram(t *testing.T) {
	m := mat.NewDense(4, 1, []float64{0, 1, 10, 11})
	cd, n, err := PairwiseDistances(m, Rows, Euclidean)
	if err != nil {
		t.Fatalf("PairwiseDistances: %v", err)
	}
	l := ReferenceLinkage(cd, n, MethodSingle)
	dg := BuildDendrogram(l)
	if len(dg.Icoord) != n-1 || len(dg.Dcoord) != n-1 {
		t.Fatalf("bracket counts = %d, %d, want %d", len(dg.Icoord), len(dg.Dcoord), n-1)
	}
	// First leaf sits at x = 5, second at 15.
	if dg.Icoord[0][0] != 5 || dg.Icoord[0][3] != 15 {
		t.Errorf("first bracket x = %v, want risers at 5 and 15", dg.Icoord[0])
	}
	// Bracket tops carry the merge distance.
	for i, m := range l {
		if !almostEqual(dg.Dcoord[i][1], m.Distance) || !almostEqual(dg.Dcoord[i][2], m.Distance) {
			t.Errorf("bracket %d top = %v, want %v", i, dg.Dcoord[i], m.Distance)
		}
	}
	// Leaves on the baseline.
	if dg.Dcoord[0][0] != 0 || dg.Dcoord[0][3] != 0 {
		t.Errorf("first bracket bottoms = %v, want zeros at ends", dg.Dcoord[0])
	}
}

func TestReorderRoundTrip(t *testing.T) {
	m := mat.NewDense(3, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
	})
	perm := []int{2, 0, 1}
	re, err := Reorder(m, Rows, perm)
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if re.At(0, 0) != 5 || re.At(1, 0) != 1 || re.At(2, 0) != 3 {
		t.Errorf("reordered first column = [%v %v %v], want [5 1 3]",
			re.At(0, 0), re.At(1, 0), re.At(2, 0))
	}
	back, err := Reorder(re, Rows, InversePermutation(perm))
	if err != nil {
		t.Fatalf("Reorder inverse: %v", err)
	}
	if !mat.EqualApprox(m, back, 1e-12) {
		t.Errorf("inverse reorder did not restore the original matrix")
	}
}

func TestReorderCols(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	})
	re, err := Reorder(m, Cols, []int{1, 2, 0})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if re.At(0, 0) != 2 || re.At(0, 1) != 3 || re.At(0, 2) != 1 {
		t.Errorf("reordered first row = [%v %v %v], want [2 3 1]",
			re.At(0, 0), re.At(0, 1), re.At(0, 2))
	}
}

func TestReorderInvalidPermutation(t *testing.T) {
	m := mat.NewDense(3, 1, []float64{1, 2, 3})
	cases := [][]int{
		{0, 1},       // wrong length
		{0, 0, 1},    // repeated
		{0, 1, 3},    // out of range
		{-1, 0, 1},   // negative
	}
	for _, perm := range cases {
		if _, err := Reorder(m, Rows, perm); errors.GetCode(err) != errors.ErrCodeInvalidInput {
			t.Errorf("Reorder(%v) code = %v, want INVALID_INPUT", perm, errors.GetCode(err))
		}
	}
}

func TestReorderLabels(t *testing.T) {
	labels := []string{"a", "b", "c"}
	out, err := ReorderLabels(labels, []int{2, 0, 1})
	if err != nil {
		t.Fatalf("ReorderLabels: %v", err)
	}
	if out[0] != "c" || out[1] != "a" || out[2] != "b" {
		t.Errorf("ReorderLabels = %v, want [c a b]", out)
	}
}

func TestValidateMatrix(t *testing.T) {
	if err := ValidateMatrix(nil); errors.GetCode(err) != errors.ErrCodeInvalidMatrix {
		t.Errorf("ValidateMatrix(nil) code = %v, want INVALID_MATRIX", errors.GetCode(err))
	}
	if err := ValidateMatrix(mat.NewDense(2, 2, nil)); err != nil {
		t.Errorf("ValidateMatrix(2x2) returned error: %v", err)
	}
}

func TestPairwiseDistancesTooSmall(t *testing.T) {
	m := mat.NewDense(1, 3, []float64{1, 2, 3})
	_, _, err := PairwiseDistances(m, Rows, Euclidean)
	if errors.GetCode(err) != errors.ErrCodeInvalidMatrix {
		t.Errorf("code = %v, want INVALID_MATRIX", errors.GetCode(err))
	}
}

func TestCosineMetric(t *testing.T) {
	if d := Cosine([]float64{1, 0}, []float64{0, 1}); !almostEqual(d, 1) {
		t.Errorf("Cosine(orthogonal) = %v, want 1", d)
	}
	if d := Cosine([]float64{2, 0}, []float64{5, 0}); !almostEqual(d, 0) {
		t.Errorf("Cosine(parallel) = %v, want 0", d)
	}
	if d := Cosine([]float64{0, 0}, []float64{1, 1}); !almostEqual(d, 1) {
		t.Errorf("Cosine(zero vector) = %v, want 1", d)
	}
}

func TestCorrelationMetric(t *testing.T) {
	if d := Correlation([]float64{1, 2, 3}, []float64{10, 20, 30}); !almostEqual(d, 0) {
		t.Errorf("Correlation(positively correlated) = %v, want 0", d)
	}
	if d := Correlation([]float64{1, 2, 3}, []float64{3, 2, 1}); !almostEqual(d, 2) {
		t.Errorf("Correlation(anti-correlated) = %v, want 2", d)
	}
	if d := Correlation([]float64{5, 5, 5}, []float64{1, 2, 3}); !almostEqual(d, 1) {
		t.Errorf("Correlation(constant vector) = %v, want 1", d)
	}
}
