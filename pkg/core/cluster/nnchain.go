package cluster

import (
	"math"
	"sort"
)

// FastLinkage computes linkage by the nearest-neighbor chain algorithm in
// O(n²) time. It produces the same tree as ReferenceLinkage on inputs with
// distinct pairwise distances; the raw merge order may differ, so the output
// is re-sorted by merge distance and cluster ids are relabeled to match the
// reference numbering.
func FastLinkage(cd []float64, n int, method Method) Linkage {
	d := make([]float64, len(cd))
	copy(d, cd)
	sizes := make([]int, n)
	for i := range sizes {
		sizes[i] = 1
	}
	alive := make([]bool, n)
	for i := range alive {
		alive[i] = true
	}

	type rawMerge struct {
		a, b int
		dist float64
	}
	raw := make([]rawMerge, 0, n-1)

	chain := make([]int, 0, n)
	for len(raw) < n-1 {
		if len(chain) == 0 {
			for i := 0; i < n; i++ {
				if alive[i] {
					chain = append(chain, i)
					break
				}
			}
		}
		for {
			tip := chain[len(chain)-1]
			// Nearest alive neighbor of the chain tip; prefer the previous
			// chain element on ties so reciprocal pairs terminate.
			nearest := -1
			best := math.Inf(1)
			if len(chain) > 1 {
				nearest = chain[len(chain)-2]
				best = d[condensedIndex(n, tip, nearest)]
			}
			for k := 0; k < n; k++ {
				if !alive[k] || k == tip {
					continue
				}
				dist := d[condensedIndex(n, tip, k)]
				if dist < best {
					best = dist
					nearest = k
				}
			}
			if len(chain) > 1 && nearest == chain[len(chain)-2] {
				// Reciprocal nearest neighbors: merge.
				a, b := tip, nearest
				chain = chain[:len(chain)-2]
				raw = append(raw, rawMerge{a: a, b: b, dist: best})

				// Keep the merged cluster under slot min(a,b).
				keep, drop := a, b
				if drop < keep {
					keep, drop = drop, keep
				}
				for k := 0; k < n; k++ {
					if !alive[k] || k == keep || k == drop {
						continue
					}
					dak := d[condensedIndex(n, keep, k)]
					dbk := d[condensedIndex(n, drop, k)]
					d[condensedIndex(n, keep, k)] = lanceWilliams(method, dak, dbk, best, sizes[keep], sizes[drop], sizes[k])
				}
				sizes[keep] += sizes[drop]
				alive[drop] = false
				break
			}
			chain = append(chain, nearest)
		}
	}

	// Stable sort by merge distance, then relabel with a union-find so the
	// numbering matches the distance-ordered reference output.
	sort.SliceStable(raw, func(i, j int) bool { return raw[i].dist < raw[j].dist })

	uf := newUnionFind(n)
	out := make(Linkage, 0, n-1)
	for _, m := range raw {
		left := uf.find(m.a)
		right := uf.find(m.b)
		if left > right {
			left, right = right, left
		}
		size := uf.merge(m.a, m.b)
		out = append(out, Merge{Left: left, Right: right, Distance: m.dist, Size: size})
	}
	return out
}

// unionFind tracks cluster membership during relabeling. Slots 0..n-1 are the
// original items; each merge claims the next id starting at n.
type unionFind struct {
	parent []int
	size   []int
	next   int
}

func newUnionFind(n int) *unionFind {
	u := &unionFind{
		parent: make([]int, 2*n-1),
		size:   make([]int, 2*n-1),
		next:   n,
	}
	for i := range u.parent {
		u.parent[i] = i
		u.size[i] = 1
	}
	return u
}

// find returns the current cluster id containing item x.
func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

// merge joins the clusters containing x and y under a fresh id and returns
// the merged size.
func (u *unionFind) merge(x, y int) int {
	rx, ry := u.find(x), u.find(y)
	id := u.next
	u.next++
	u.parent[rx] = id
	u.parent[ry] = id
	u.size[id] = u.size[rx] + u.size[ry]
	return u.size[id]
}
