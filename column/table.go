package column

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Table is an ordered collection of equal-length named columns.
//
// The zero value is an empty table ready for use. Tables are value types;
// Gather, Project and Drop return new tables that share backing arrays with
// the original where possible.
type Table struct {
	names []string
	cols  map[string]Column
}

// NewTable creates a table from alternating name/column pairs preserving
// the given order.
func NewTable(pairs ...any) (Table, error) {
	if len(pairs)%2 != 0 {
		return Table{}, fmt.Errorf("column: NewTable requires name/column pairs, got %d arguments", len(pairs))
	}
	var t Table
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			return Table{}, fmt.Errorf("column: NewTable argument %d is not a column name", i)
		}
		col, ok := pairs[i+1].(Column)
		if !ok {
			return Table{}, fmt.Errorf("column: NewTable argument %d is not a column", i+1)
		}
		if err := t.Set(name, col); err != nil {
			return Table{}, err
		}
	}
	return t, nil
}

// MustTable is like NewTable but panics on error. Intended for tests and
// literals.
func MustTable(pairs ...any) Table {
	t, err := NewTable(pairs...)
	if err != nil {
		panic(err)
	}
	return t
}

// Set adds a column under the given name, or replaces it if present.
// All columns in a table must have the same length.
func (t *Table) Set(name string, col Column) error {
	if t.cols == nil {
		t.cols = make(map[string]Column)
	}
	if len(t.names) > 0 {
		if _, exists := t.cols[name]; !exists || len(t.names) > 1 {
			if col.Len() != t.NumRows() {
				return fmt.Errorf("column: column %q has %d rows, table has %d", name, col.Len(), t.NumRows())
			}
		}
	}
	if _, exists := t.cols[name]; !exists {
		t.names = append(t.names, name)
	}
	t.cols[name] = col
	return nil
}

// Get returns the named column.
func (t Table) Get(name string) (Column, bool) {
	col, ok := t.cols[name]
	return col, ok
}

// Has reports whether the table contains the named column.
func (t Table) Has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Names returns the column names in insertion order.
func (t Table) Names() []string {
	return slices.Clone(t.names)
}

// NumCols returns the number of columns.
func (t Table) NumCols() int { return len(t.names) }

// NumRows returns the number of rows, zero for an empty table.
func (t Table) NumRows() int {
	if len(t.names) == 0 {
		return 0
	}
	return t.cols[t.names[0]].Len()
}

// Project returns a table containing only the named columns, in the given
// order.
func (t Table) Project(names ...string) (Table, error) {
	var out Table
	for _, name := range names {
		col, ok := t.cols[name]
		if !ok {
			return Table{}, fmt.Errorf("column: table has no column %q", name)
		}
		if err := out.Set(name, col); err != nil {
			return Table{}, err
		}
	}
	return out, nil
}

// Drop returns a table without the named columns. Unknown names are ignored.
func (t Table) Drop(names ...string) Table {
	var out Table
	for _, name := range t.names {
		if slices.Contains(names, name) {
			continue
		}
		_ = out.Set(name, t.cols[name])
	}
	return out
}

// Gather returns a table holding the rows at the given indices, in the
// given order, across all columns.
func (t Table) Gather(indices []int) Table {
	var out Table
	for _, name := range t.names {
		_ = out.Set(name, t.cols[name].Gather(indices))
	}
	return out
}

// RowEqual reports whether row i of t equals row j of other across all of
// other's columns. Columns missing from t never match.
func (t Table) RowEqual(i int, other Table, j int) bool {
	for _, name := range other.names {
		col, ok := t.cols[name]
		if !ok {
			return false
		}
		if !col.EqualAt(i, other.cols[name], j) {
			return false
		}
	}
	return true
}

// tableJSON is the persisted form of a Table.
type tableJSON struct {
	Names []string          `json:"names,omitempty"`
	Cols  map[string]Column `json:"cols,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (t Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(tableJSON{Names: t.names, Cols: t.cols})
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Table) UnmarshalJSON(data []byte) error {
	var aux tableJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	for _, name := range aux.Names {
		if _, ok := aux.Cols[name]; !ok {
			return fmt.Errorf("column: persisted table references unknown column %q", name)
		}
	}
	*t = Table{names: aux.Names, cols: aux.Cols}
	return nil
}
