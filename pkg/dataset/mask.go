package dataset

// Mask is a boolean row filter. Masks combine with And and are applied with
// Dataset.Filter; every combinator returns a new mask.
type Mask []bool

// NewMask creates a mask of length n with every entry set to fill.
func NewMask(n int, fill bool) Mask {
	m := make(Mask, n)
	if fill {
		for i := range m {
			m[i] = true
		}
	}
	return m
}

// And returns the element-wise conjunction. The result has the length of
// the shorter operand.
func (m Mask) And(o Mask) Mask {
	n := len(m)
	if len(o) < n {
		n = len(o)
	}
	out := make(Mask, n)
	for i := range out {
		out[i] = m[i] && o[i]
	}
	return out
}

// Not returns the element-wise negation.
func (m Mask) Not() Mask {
	out := make(Mask, len(m))
	for i := range out {
		out[i] = !m[i]
	}
	return out
}

// Count returns the number of true entries.
func (m Mask) Count() int {
	n := 0
	for _, b := range m {
		if b {
			n++
		}
	}
	return n
}

// Any reports whether at least one entry is true.
func (m Mask) Any() bool {
	for _, b := range m {
		if b {
			return true
		}
	}
	return false
}
