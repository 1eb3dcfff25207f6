package cluster

// LeafOrder returns the permutation of original items produced by a
// depth-first walk of the linkage tree, left child before right. This is the
// order used to reorder matrix rows or columns for display.
func LeafOrder(l Linkage) []int {
	n := l.NumItems()
	order := make([]int, 0, n)
	var walk func(id int)
	walk = func(id int) {
		if id < n {
			order = append(order, id)
			return
		}
		m := l[id-n]
		walk(m.Left)
		walk(m.Right)
	}
	walk(2*n - 2)
	return order
}

// Dendrogram holds plot-ready tree geometry. Each merge contributes one
// bracket of four points: two vertical risers joined by a horizontal bar at
// the merge distance. Leaves sit at x = 5 + 10*position in display order.
type Dendrogram struct {
	Leaves []int        // display order of original items
	Icoord [][4]float64 // x coordinates per bracket
	Dcoord [][4]float64 // y coordinates per bracket
}

// BuildDendrogram converts a linkage into bracket geometry. It returns
// exactly n-1 brackets for n items.
func BuildDendrogram(l Linkage) Dendrogram {
	n := l.NumItems()
	leaves := LeafOrder(l)

	pos := make(map[int]int, n)
	for i, leaf := range leaves {
		pos[leaf] = i
	}

	// Per cluster id: x center and top height of its bracket.
	x := make([]float64, 2*n-1)
	h := make([]float64, 2*n-1)
	for _, leaf := range leaves {
		x[leaf] = 5 + 10*float64(pos[leaf])
	}

	dg := Dendrogram{
		Leaves: leaves,
		Icoord: make([][4]float64, 0, n-1),
		Dcoord: make([][4]float64, 0, n-1),
	}
	for i, m := range l {
		id := n + i
		xl, xr := x[m.Left], x[m.Right]
		hl, hr := h[m.Left], h[m.Right]
		dg.Icoord = append(dg.Icoord, [4]float64{xl, xl, xr, xr})
		dg.Dcoord = append(dg.Dcoord, [4]float64{hl, m.Distance, m.Distance, hr})
		x[id] = (xl + xr) / 2
		h[id] = m.Distance
	}
	return dg
}
