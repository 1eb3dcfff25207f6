// Package facet implements the pure faceting core: label-set derivation,
// data partitioning, and grid-shape computation.
//
// This package contains no drawing code. It decides how a tidy dataset is
// split across a grid of subplots conditioned on up to three categorical
// variables (row, column, hue) and what shape that grid has. The drawing
// layer in pkg/facet consumes these decisions.
//
// # Pipeline
//
//  1. BuildLabelSets derives the ordered, de-duplicated, NA-filtered label
//     sets for each active dimension and the global NA-exclusion mask.
//  2. NewPartition turns label sets into per-dimension boolean masks. A
//     dimension with no grouping key collapses to a single all-true mask,
//     which keeps the subset enumeration branch-free.
//  3. Partition.Subsets lazily enumerates the Cartesian product of masks in
//     row-major order with hue innermost. This order governs draw order and
//     therefore z-ordering and legend accumulation.
//  4. ComputeShape maps label counts to the physical grid: rows × cols,
//     column wrapping, and abstract figure size.
//
// Empty subsets are yielded, not suppressed: callers skip them, and index
// alignment with the grid is preserved.
package facet
