package heatmap

// Track extents as fractions of the figure along one axis. Absent tracks
// collapse to zero and the matrix absorbs the remainder.
const (
	dendroFraction = 0.15
	sideFraction   = 0.05
)

// Ratios returns the (dendrogram, side colors, matrix) extent fractions for
// one axis. The three always sum to 1.
func Ratios(hasDendro, hasSideColors bool) [3]float64 {
	var r [3]float64
	if hasDendro {
		r[0] = dendroFraction
	}
	if hasSideColors {
		r[1] = sideFraction
	}
	r[2] = 1 - r[0] - r[1]
	return r
}
