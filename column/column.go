// Package column provides tagged columnar values and ordered tables.
//
// Columns carry an explicit Kind decided at ingestion time: Categorical
// columns are eligible for dictionary encoding, Numeric and Other columns are
// stored as-is. Tables are ordered collections of equal-length named columns.
package column

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind identifies the ingestion classification of a Column.
type Kind uint8

const (
	// KindInvalid represents an invalid kind.
	KindInvalid Kind = iota
	// KindCategorical marks a textual column eligible for dictionary encoding.
	KindCategorical
	// KindNumeric marks an integer or floating point column.
	KindNumeric
	// KindOther marks a column that is neither categorical nor numeric.
	KindOther
)

// String returns a human readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindCategorical:
		return "categorical"
	case KindNumeric:
		return "numeric"
	case KindOther:
		return "other"
	default:
		return "invalid"
	}
}

// Column is a single typed column of values.
//
// Exactly one backing slice is populated, selected by the kind and the
// physical type. The zero value is an empty invalid column.
type Column struct {
	kind  Kind
	strs  []string
	ints  []int64
	flts  []float64
	bools []bool
}

// Strings creates a categorical column from string values.
func Strings(values ...string) Column {
	return Column{kind: KindCategorical, strs: values}
}

// Ints creates a numeric column from int64 values.
func Ints(values ...int64) Column {
	return Column{kind: KindNumeric, ints: values}
}

// Floats creates a numeric column from float64 values.
func Floats(values ...float64) Column {
	return Column{kind: KindNumeric, flts: values}
}

// Bools creates a column of KindOther from boolean values.
func Bools(values ...bool) Column {
	return Column{kind: KindOther, bools: values}
}

// Kind returns the ingestion classification of the column.
func (c Column) Kind() Kind { return c.kind }

// Len returns the number of values in the column.
func (c Column) Len() int {
	switch {
	case c.strs != nil:
		return len(c.strs)
	case c.ints != nil:
		return len(c.ints)
	case c.flts != nil:
		return len(c.flts)
	case c.bools != nil:
		return len(c.bools)
	default:
		return 0
	}
}

// IsCategorical reports whether the column is dictionary-encodable.
func (c Column) IsCategorical() bool { return c.kind == KindCategorical }

// StringValues returns the backing string slice, or nil for non-string columns.
func (c Column) StringValues() []string { return c.strs }

// IntValues returns the backing int64 slice, or nil for non-int columns.
func (c Column) IntValues() []int64 { return c.ints }

// FloatValues returns the backing float64 slice, or nil for non-float columns.
func (c Column) FloatValues() []float64 { return c.flts }

// BoolValues returns the backing bool slice, or nil for non-bool columns.
func (c Column) BoolValues() []bool { return c.bools }

// Value returns the value at index i as an any.
func (c Column) Value(i int) any {
	switch {
	case c.strs != nil:
		return c.strs[i]
	case c.ints != nil:
		return c.ints[i]
	case c.flts != nil:
		return c.flts[i]
	case c.bools != nil:
		return c.bools[i]
	default:
		return nil
	}
}

// Key returns a stable string representation of the value at index i,
// usable as a map key. Representations of different physical types never
// collide.
func (c Column) Key(i int) string {
	switch {
	case c.strs != nil:
		return "s:" + c.strs[i]
	case c.ints != nil:
		return "i:" + strconv.FormatInt(c.ints[i], 10)
	case c.flts != nil:
		return "f:" + strconv.FormatFloat(c.flts[i], 'g', -1, 64)
	case c.bools != nil:
		if c.bools[i] {
			return "b:1"
		}
		return "b:0"
	default:
		return ""
	}
}

// Compare orders the value at index i against other's value at index j.
// Both columns must share the same physical type; mismatched types order by
// their stable keys so multi-column sorts stay deterministic.
func (c Column) Compare(i int, other Column, j int) int {
	switch {
	case c.strs != nil && other.strs != nil:
		switch {
		case c.strs[i] < other.strs[j]:
			return -1
		case c.strs[i] > other.strs[j]:
			return 1
		}
		return 0
	case c.ints != nil && other.ints != nil:
		switch {
		case c.ints[i] < other.ints[j]:
			return -1
		case c.ints[i] > other.ints[j]:
			return 1
		}
		return 0
	case c.flts != nil && other.flts != nil:
		switch {
		case c.flts[i] < other.flts[j]:
			return -1
		case c.flts[i] > other.flts[j]:
			return 1
		}
		return 0
	case c.bools != nil && other.bools != nil:
		switch {
		case !c.bools[i] && other.bools[j]:
			return -1
		case c.bools[i] && !other.bools[j]:
			return 1
		}
		return 0
	default:
		a, b := c.Key(i), other.Key(j)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}
}

// EqualAt reports whether the value at index i equals other's value at j.
func (c Column) EqualAt(i int, other Column, j int) bool {
	return c.Compare(i, other, j) == 0
}

// Gather returns a new column holding the values at the given indices, in
// the given order.
func (c Column) Gather(indices []int) Column {
	out := Column{kind: c.kind}
	switch {
	case c.strs != nil:
		out.strs = make([]string, len(indices))
		for k, i := range indices {
			out.strs[k] = c.strs[i]
		}
	case c.ints != nil:
		out.ints = make([]int64, len(indices))
		for k, i := range indices {
			out.ints[k] = c.ints[i]
		}
	case c.flts != nil:
		out.flts = make([]float64, len(indices))
		for k, i := range indices {
			out.flts[k] = c.flts[i]
		}
	case c.bools != nil:
		out.bools = make([]bool, len(indices))
		for k, i := range indices {
			out.bools[k] = c.bools[i]
		}
	}
	return out
}

// Concat returns a column holding all values of a followed by all values of
// b. Both columns must share the same physical type.
func Concat(a, b Column) (Column, error) {
	if a.Len() == 0 {
		return b, nil
	}
	if b.Len() == 0 {
		return a, nil
	}
	out := Column{kind: a.kind}
	switch {
	case a.strs != nil && b.strs != nil:
		out.strs = append(append(make([]string, 0, len(a.strs)+len(b.strs)), a.strs...), b.strs...)
	case a.ints != nil && b.ints != nil:
		out.ints = append(append(make([]int64, 0, len(a.ints)+len(b.ints)), a.ints...), b.ints...)
	case a.flts != nil && b.flts != nil:
		out.flts = append(append(make([]float64, 0, len(a.flts)+len(b.flts)), a.flts...), b.flts...)
	case a.bools != nil && b.bools != nil:
		out.bools = append(append(make([]bool, 0, len(a.bools)+len(b.bools)), a.bools...), b.bools...)
	default:
		return Column{}, fmt.Errorf("column: cannot concat columns of different physical types")
	}
	return out, nil
}

// columnJSON is the persisted form of a Column.
//
// NOTE: This is used by snapshots; keep it stable.
type columnJSON struct {
	Kind  Kind      `json:"k"`
	Strs  []string  `json:"s,omitempty"`
	Ints  []int64   `json:"i,omitempty"`
	Flts  []float64 `json:"f,omitempty"`
	Bools []bool    `json:"b,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (c Column) MarshalJSON() ([]byte, error) {
	return json.Marshal(columnJSON{
		Kind:  c.kind,
		Strs:  c.strs,
		Ints:  c.ints,
		Flts:  c.flts,
		Bools: c.bools,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Column) UnmarshalJSON(data []byte) error {
	var aux columnJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	populated := 0
	for _, ok := range []bool{aux.Strs != nil, aux.Ints != nil, aux.Flts != nil, aux.Bools != nil} {
		if ok {
			populated++
		}
	}
	if populated > 1 {
		return fmt.Errorf("column: multiple backing arrays in persisted column")
	}
	*c = Column{kind: aux.Kind, strs: aux.Strs, ints: aux.Ints, flts: aux.Flts, bools: aux.Bools}
	return nil
}
