// Package dictionary provides immutable ordered dictionaries for
// categorical column encoding.
//
// A dictionary maps dense integer codes [0, k) to the distinct values of a
// single column, in ascending value order. Dictionaries are built once per
// load and replaced wholesale on reload; they are never merged.
package dictionary

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Dictionary is an immutable mapping between dense integer codes and the
// distinct values of a categorical column. Codes are positions in the sorted
// distinct-value list.
type Dictionary struct {
	values      []string
	codes       map[string]int64
	placeholder bool
}

// New builds a dictionary from the sorted distinct values of a column.
// The input must already be sorted and duplicate-free; ownership of the
// slice passes to the dictionary.
func New(sortedDistinct []string) (*Dictionary, error) {
	codes := make(map[string]int64, len(sortedDistinct))
	for i, v := range sortedDistinct {
		if i > 0 && sortedDistinct[i-1] >= v {
			return nil, fmt.Errorf("dictionary: values not sorted and distinct at position %d", i)
		}
		codes[v] = int64(i)
	}
	return &Dictionary{values: sortedDistinct, codes: codes}, nil
}

// FromValues builds a dictionary from arbitrary column values: distinct
// values are computed, sorted ascending, and assigned sequential codes.
func FromValues(values []string) *Dictionary {
	seen := make(map[string]struct{}, len(values))
	distinct := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		distinct = append(distinct, v)
	}
	sort.Strings(distinct)
	d, _ := New(distinct)
	return d
}

// Placeholder returns the degenerate single-value dictionary recorded for
// columns that are not dictionary-encoded.
func Placeholder() *Dictionary {
	return &Dictionary{
		values:      []string{" "},
		codes:       map[string]int64{" ": 0},
		placeholder: true,
	}
}

// Len returns the number of distinct values, k.
func (d *Dictionary) Len() int { return len(d.values) }

// IsPlaceholder reports whether the dictionary is the degenerate placeholder
// for an unencoded column.
func (d *Dictionary) IsPlaceholder() bool { return d.placeholder }

// Value returns the original value for a code.
func (d *Dictionary) Value(code int64) (string, bool) {
	if code < 0 || code >= int64(len(d.values)) {
		return "", false
	}
	return d.values[code], true
}

// Code returns the code for an original value.
func (d *Dictionary) Code(value string) (int64, bool) {
	code, ok := d.codes[value]
	return code, ok
}

// Values returns a copy of the sorted distinct-value list.
func (d *Dictionary) Values() []string {
	out := make([]string, len(d.values))
	copy(out, d.values)
	return out
}

// Encode broadcasts codes over the given values. Values absent from the
// dictionary yield -1.
func (d *Dictionary) Encode(values []string) []int64 {
	out := make([]int64, len(values))
	for i, v := range values {
		code, ok := d.codes[v]
		if !ok {
			code = -1
		}
		out[i] = code
	}
	return out
}

// Decode maps codes back to original values. Out-of-range codes yield the
// empty string.
func (d *Dictionary) Decode(codes []int64) []string {
	out := make([]string, len(codes))
	for i, code := range codes {
		if v, ok := d.Value(code); ok {
			out[i] = v
		}
	}
	return out
}

// dictionaryJSON is the persisted form of a Dictionary.
type dictionaryJSON struct {
	Values      []string `json:"values"`
	Placeholder bool     `json:"placeholder,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (d *Dictionary) MarshalJSON() ([]byte, error) {
	return json.Marshal(dictionaryJSON{Values: d.values, Placeholder: d.placeholder})
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Dictionary) UnmarshalJSON(data []byte) error {
	var aux dictionaryJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Placeholder {
		*d = *Placeholder()
		return nil
	}
	nd, err := New(aux.Values)
	if err != nil {
		return err
	}
	*d = *nd
	return nil
}
