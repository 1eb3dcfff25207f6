package dataset

import "math"

// Kind discriminates column storage.
type Kind int

// Column kinds.
const (
	KindFloat Kind = iota
	KindString
)

// Column is a single named variable. Numeric columns store float64 values
// with NaN marking nulls; categorical columns store strings with an explicit
// validity mask.
type Column struct {
	Name string

	kind    Kind
	floats  []float64
	strings []string
	valid   []bool // string columns only; nil means all valid
}

// Floats creates a numeric column. NaN values are treated as null.
func Floats(name string, values []float64) *Column {
	return &Column{Name: name, kind: KindFloat, floats: values}
}

// Strings creates a categorical column with all values valid.
func Strings(name string, values []string) *Column {
	return &Column{Name: name, kind: KindString, strings: values}
}

// StringsWithNulls creates a categorical column with an explicit validity
// mask. valid[i] == false marks row i as null.
func StringsWithNulls(name string, values []string, valid []bool) *Column {
	return &Column{Name: name, kind: KindString, strings: values, valid: valid}
}

// Len returns the number of rows.
func (c *Column) Len() int {
	if c.kind == KindFloat {
		return len(c.floats)
	}
	return len(c.strings)
}

// Kind returns the column kind.
func (c *Column) Kind() Kind { return c.kind }

// IsNull reports whether row i holds a null value.
func (c *Column) IsNull(i int) bool {
	if c.kind == KindFloat {
		return math.IsNaN(c.floats[i])
	}
	return c.valid != nil && !c.valid[i]
}

// Value returns the value at row i.
func (c *Column) Value(i int) Value {
	if c.IsNull(i) {
		return Null()
	}
	if c.kind == KindFloat {
		return Num(c.floats[i])
	}
	return Str(c.strings[i])
}

// Float returns the numeric value at row i. For categorical columns it
// returns NaN.
func (c *Column) Float(i int) float64 {
	if c.kind == KindFloat {
		return c.floats[i]
	}
	return math.NaN()
}

// Floats returns a copy of the numeric values. For categorical columns the
// result is all NaN.
func (c *Column) Floats() []float64 {
	out := make([]float64, c.Len())
	for i := range out {
		out[i] = c.Float(i)
	}
	return out
}

// NullMask returns a mask that is true where the column is null.
func (c *Column) NullMask() Mask {
	m := make(Mask, c.Len())
	for i := range m {
		m[i] = c.IsNull(i)
	}
	return m
}

// EqualMask returns a mask that is true where the column equals v.
// Null cells never match.
func (c *Column) EqualMask(v Value) Mask {
	m := make(Mask, c.Len())
	for i := range m {
		m[i] = !c.IsNull(i) && c.Value(i).Equal(v)
	}
	return m
}

// Unique returns the distinct non-null values in first-appearance order.
func (c *Column) Unique() []Value {
	seen := make(map[Value]struct{})
	var out []Value
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		v := c.Value(i)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// filter returns a new column with only the rows where mask is true.
func (c *Column) filter(mask Mask) *Column {
	out := &Column{Name: c.Name, kind: c.kind}
	for i := 0; i < c.Len() && i < len(mask); i++ {
		if !mask[i] {
			continue
		}
		if c.kind == KindFloat {
			out.floats = append(out.floats, c.floats[i])
		} else {
			out.strings = append(out.strings, c.strings[i])
			if c.valid != nil {
				out.valid = append(out.valid, c.valid[i])
			}
		}
	}
	return out
}
