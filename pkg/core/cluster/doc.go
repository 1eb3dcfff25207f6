// Package cluster implements the hierarchical-clustering core: pairwise
// distances, agglomerative linkage, dendrogram layout, and matrix
// reordering.
//
// This package contains no drawing code and no caching or logging; those
// live in pkg/cluster and pkg/heatmap. Everything here is deterministic and
// pure: reordering returns new matrices, dendrograms are derived values.
//
// # Linkage encoding
//
// A Linkage is the standard merge-history encoding: n-1 merge records for n
// items, where cluster ids below n refer to original items and ids ≥ n refer
// to earlier merge records. Two computation paths exist:
//
//   - Reference: straightforward O(n³) Lance–Williams agglomeration.
//   - Fast: the nearest-neighbor chain algorithm, O(n²), followed by a
//     stable sort and union-find relabeling.
//
// Both paths produce numerically equivalent linkage matrices on inputs with
// distinct merge distances; ComputeLinkage selects between them.
package cluster
