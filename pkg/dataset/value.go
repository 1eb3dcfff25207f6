package dataset

import "strconv"

// Value is a single cell value usable as a grouping label. It is comparable
// (usable as a map key) and carries a total order: numbers sort before
// strings, numbers ascend numerically, strings ascend lexically.
type Value struct {
	num   float64
	str   string
	isNum bool
	null  bool
}

// Num creates a numeric value.
func Num(f float64) Value { return Value{num: f, isNum: true} }

// Str creates a string value.
func Str(s string) Value { return Value{str: s} }

// Null creates a null value.
func Null() Value { return Value{null: true} }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.null }

// IsNum reports whether the value is numeric.
func (v Value) IsNum() bool { return v.isNum }

// Float returns the numeric value and whether the value is numeric.
func (v Value) Float() (float64, bool) { return v.num, v.isNum && !v.null }

// Equal reports whether two values are equal. Null equals nothing,
// including another null.
func (v Value) Equal(o Value) bool {
	if v.null || o.null {
		return false
	}
	return v == o
}

// Less provides the total order used for derived label sets.
func (v Value) Less(o Value) bool {
	if v.isNum != o.isNum {
		return v.isNum // numbers before strings
	}
	if v.isNum {
		return v.num < o.num
	}
	return v.str < o.str
}

// String formats the value for titles, tick labels, and legends.
func (v Value) String() string {
	switch {
	case v.null:
		return "<null>"
	case v.isNum:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	default:
		return v.str
	}
}
