package cluster

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/trellisplot/trellis/pkg/errors"
)

// Method selects the agglomeration rule.
type Method int

// Linkage methods.
const (
	MethodAverage Method = iota // default
	MethodSingle
	MethodComplete
	MethodWard
)

// String returns the method name.
func (m Method) String() string {
	switch m {
	case MethodSingle:
		return "single"
	case MethodComplete:
		return "complete"
	case MethodWard:
		return "ward"
	default:
		return "average"
	}
}

// MethodByName resolves a method name. Empty means average.
func MethodByName(name string) (Method, error) {
	switch name {
	case "", "average":
		return MethodAverage, nil
	case "single":
		return MethodSingle, nil
	case "complete":
		return MethodComplete, nil
	case "ward":
		return MethodWard, nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidMethod, "unknown linkage method %q", name)
	}
}

// Merge is one agglomeration step. Left and Right are cluster ids: ids below
// n refer to original items, ids ≥ n to earlier merges. Left < Right.
type Merge struct {
	Left, Right int
	Distance    float64
	Size        int // member count of the merged cluster
}

// Linkage is the merge history for n items: exactly n-1 records.
type Linkage []Merge

// NumItems returns n, the original item count.
func (l Linkage) NumItems() int { return len(l) + 1 }

// FastPathThreshold is the item count above which ComputeLinkage uses the
// nearest-neighbor chain path by default.
const FastPathThreshold = 64

// ComputeLinkage computes hierarchical linkage over one axis of a matrix.
// The fast flag forces the nearest-neighbor chain path; otherwise it is
// selected automatically for inputs above FastPathThreshold. Both paths are
// numerically equivalent on distance-distinct inputs.
func ComputeLinkage(m *mat.Dense, axis Axis, metric Metric, method Method, fast bool) (Linkage, error) {
	cd, n, err := PairwiseDistances(m, axis, metric)
	if err != nil {
		return nil, err
	}
	if fast || n > FastPathThreshold {
		return FastLinkage(cd, n, method), nil
	}
	return ReferenceLinkage(cd, n, method), nil
}

// ReferenceLinkage is the straightforward O(n³) agglomeration: at each step,
// merge the globally closest active pair and update distances by the
// Lance–Williams recurrence. cd is the condensed distance vector for n items.
func ReferenceLinkage(cd []float64, n int, method Method) Linkage {
	// Working copies indexed by position in the active list.
	labels := make([]int, n)
	sizes := make([]int, n)
	d := make([][]float64, n)
	for i := 0; i < n; i++ {
		labels[i] = i
		sizes[i] = 1
		d[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dist := cd[condensedIndex(n, i, j)]
			d[i][j] = dist
			d[j][i] = dist
		}
	}

	active := n
	out := make(Linkage, 0, n-1)
	for step := 0; step < n-1; step++ {
		// Globally closest active pair; ties break to the lowest indices.
		bi, bj := 0, 1
		best := math.Inf(1)
		for i := 0; i < active; i++ {
			for j := i + 1; j < active; j++ {
				if d[i][j] < best {
					best = d[i][j]
					bi, bj = i, j
				}
			}
		}

		left, right := labels[bi], labels[bj]
		if left > right {
			left, right = right, left
		}
		merged := sizes[bi] + sizes[bj]
		out = append(out, Merge{Left: left, Right: right, Distance: best, Size: merged})

		// Fold cluster bj into bi.
		for k := 0; k < active; k++ {
			if k == bi || k == bj {
				continue
			}
			nd := lanceWilliams(method, d[bi][k], d[bj][k], best, sizes[bi], sizes[bj], sizes[k])
			d[bi][k] = nd
			d[k][bi] = nd
		}
		labels[bi] = n + step
		sizes[bi] = merged

		// Remove position bj by swapping in the last active position.
		last := active - 1
		if bj != last {
			labels[bj] = labels[last]
			sizes[bj] = sizes[last]
			for k := 0; k < active; k++ {
				d[bj][k] = d[last][k]
				d[k][bj] = d[k][last]
			}
			d[bj][bj] = 0
		}
		active--
	}
	return out
}

// lanceWilliams computes the distance from the merger of clusters a and b
// (distance dab) to cluster k.
func lanceWilliams(method Method, dak, dbk, dab float64, na, nb, nk int) float64 {
	switch method {
	case MethodSingle:
		return math.Min(dak, dbk)
	case MethodComplete:
		return math.Max(dak, dbk)
	case MethodWard:
		fa := float64(na + nk)
		fb := float64(nb + nk)
		fk := float64(nk)
		ft := float64(na + nb + nk)
		return math.Sqrt((fa*dak*dak + fb*dbk*dbk - fk*dab*dab) / ft)
	default: // average
		fa := float64(na)
		fb := float64(nb)
		return (fa*dak + fb*dbk) / (fa + fb)
	}
}
