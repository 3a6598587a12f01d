// Package arrowio converts between propgraph column tables and Apache Arrow
// records, for interchange with Arrow-native tooling.
//
// The mapping is by physical type: categorical columns become Arrow strings
// (codes are not preserved), integer columns become int64, floating point
// columns float64, boolean columns booleans. Null values are not produced
// and not accepted.
package arrowio

import (
	"fmt"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"github.com/hupe1980/propgraph"
	"github.com/hupe1980/propgraph/column"
)

// FromTable builds an Arrow record holding the columns of t, in table
// order. The caller owns the record and must Release it.
func FromTable(mem memory.Allocator, t column.Table) (arrow.Record, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	names := t.Names()
	fields := make([]arrow.Field, 0, len(names))
	cols := make([]arrow.Array, 0, len(names))
	release := func() {
		for _, c := range cols {
			c.Release()
		}
	}

	for _, name := range names {
		col, _ := t.Get(name)
		arr, err := fromColumn(mem, col)
		if err != nil {
			release()
			return nil, fmt.Errorf("arrowio: column %q: %w", name, err)
		}
		fields = append(fields, arrow.Field{Name: name, Type: arr.DataType()})
		cols = append(cols, arr)
	}

	schema := arrow.NewSchema(fields, nil)
	rec := array.NewRecord(schema, cols, int64(t.NumRows()))
	release()
	return rec, nil
}

func fromColumn(mem memory.Allocator, col column.Column) (arrow.Array, error) {
	switch {
	case col.StringValues() != nil:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		b.AppendValues(col.StringValues(), nil)
		return b.NewStringArray(), nil
	case col.IntValues() != nil:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		b.AppendValues(col.IntValues(), nil)
		return b.NewInt64Array(), nil
	case col.FloatValues() != nil:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		b.AppendValues(col.FloatValues(), nil)
		return b.NewFloat64Array(), nil
	case col.BoolValues() != nil:
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		b.AppendValues(col.BoolValues(), nil)
		return b.NewBooleanArray(), nil
	default:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		return b.NewStringArray(), nil
	}
}

// ToTable converts an Arrow record back into a column table. String columns
// come back categorical, int64 and float64 numeric, booleans as plain
// columns. Any other Arrow type is an error.
func ToTable(rec arrow.Record) (column.Table, error) {
	var out column.Table
	schema := rec.Schema()

	for i := 0; i < int(rec.NumCols()); i++ {
		name := schema.Field(i).Name
		col, err := toColumn(rec.Column(i))
		if err != nil {
			return column.Table{}, fmt.Errorf("arrowio: column %q: %w", name, err)
		}
		if err := out.Set(name, col); err != nil {
			return column.Table{}, err
		}
	}
	return out, nil
}

func toColumn(arr arrow.Array) (column.Column, error) {
	if arr.NullN() > 0 {
		return column.Column{}, fmt.Errorf("null values are not supported")
	}

	switch a := arr.(type) {
	case *array.String:
		values := make([]string, a.Len())
		for i := range values {
			values[i] = a.Value(i)
		}
		return column.Strings(values...), nil
	case *array.Int64:
		values := make([]int64, a.Len())
		copy(values, a.Int64Values())
		return column.Ints(values...), nil
	case *array.Float64:
		values := make([]float64, a.Len())
		copy(values, a.Float64Values())
		return column.Floats(values...), nil
	case *array.Boolean:
		values := make([]bool, a.Len())
		for i := range values {
			values[i] = a.Value(i)
		}
		return column.Bools(values...), nil
	default:
		return column.Column{}, fmt.Errorf("unsupported arrow type %s", arr.DataType())
	}
}

// NodeRecord exports the node attribute view of a graph as an Arrow record:
// the external identifiers under "nodes" plus the loaded label-code columns
// and plain property columns. The caller must Release the record.
func NodeRecord(mem memory.Allocator, g *propgraph.Graph) (arrow.Record, error) {
	var out column.Table
	if err := out.Set("nodes", g.Nodes()); err != nil {
		return nil, err
	}

	if labels, err := g.NodeLabels(); err == nil {
		if err := mergeAligned(&out, g, labels, "nodes"); err != nil {
			return nil, err
		}
	}
	if attrs, err := g.NodeAttributes(); err == nil && attrs.NumCols() > 0 {
		if err := mergeAligned(&out, g, attrs, "nodes"); err != nil {
			return nil, err
		}
	}
	return FromTable(mem, out)
}

// EdgeRecord exports the edge attribute view of a graph as an Arrow record:
// the external (src,dst) pairs plus the loaded relationship-code columns and
// plain property columns. The caller must Release the record.
func EdgeRecord(mem memory.Allocator, g *propgraph.Graph) (arrow.Record, error) {
	src, dst := g.Edges()
	var out column.Table
	if err := out.Set("src", src); err != nil {
		return nil, err
	}
	if err := out.Set("dst", dst); err != nil {
		return nil, err
	}

	if rels, err := g.EdgeRelationships(); err == nil {
		if err := mergeEdgeAligned(&out, g, rels); err != nil {
			return nil, err
		}
	}
	if attrs, err := g.EdgeAttributes(); err == nil && attrs.NumCols() > 0 {
		if err := mergeEdgeAligned(&out, g, attrs); err != nil {
			return nil, err
		}
	}
	return FromTable(mem, out)
}

// mergeAligned copies the non-key columns of sparse into out, expanded to
// one row per vertex. Vertices without a row get the zero value of the
// column's physical type.
func mergeAligned(out *column.Table, g *propgraph.Graph, sparse column.Table, key string) error {
	keys, _ := sparse.Get(key)
	positions, err := alignTo(g.Nodes(), keys)
	if err != nil {
		return err
	}
	return scatter(out, sparse, []string{key}, positions, g.Order())
}

func mergeEdgeAligned(out *column.Table, g *propgraph.Graph, sparse column.Table) error {
	src, dst := g.Edges()
	sparseSrc, _ := sparse.Get("src")
	sparseDst, _ := sparse.Get("dst")

	index := make(map[[2]string]int, src.Len())
	for i := 0; i < src.Len(); i++ {
		index[[2]string{src.Key(i), dst.Key(i)}] = i
	}
	positions := make([]int, sparseSrc.Len())
	for i := range positions {
		pos, ok := index[[2]string{sparseSrc.Key(i), sparseDst.Key(i)}]
		if !ok {
			return fmt.Errorf("arrowio: edge attribute row %d has no canonical edge", i)
		}
		positions[i] = pos
	}
	return scatter(out, sparse, []string{"src", "dst"}, positions, src.Len())
}

func alignTo(universe, keys column.Column) ([]int, error) {
	index := make(map[string]int, universe.Len())
	for i := 0; i < universe.Len(); i++ {
		index[universe.Key(i)] = i
	}
	positions := make([]int, keys.Len())
	for i := range positions {
		pos, ok := index[keys.Key(i)]
		if !ok {
			return nil, fmt.Errorf("arrowio: attribute row %d has no canonical vertex", i)
		}
		positions[i] = pos
	}
	return positions, nil
}

// scatter writes each row of sparse (minus its key columns) to its aligned
// position in dense columns of the given length.
func scatter(out *column.Table, sparse column.Table, keys []string, positions []int, length int) error {
	skip := make(map[string]bool, len(keys))
	for _, k := range keys {
		skip[k] = true
	}
	for _, name := range sparse.Names() {
		if skip[name] {
			continue
		}
		col, _ := sparse.Get(name)
		dense, err := scatterColumn(col, positions, length)
		if err != nil {
			return fmt.Errorf("arrowio: column %q: %w", name, err)
		}
		if err := out.Set(name, dense); err != nil {
			return err
		}
	}
	return nil
}

func scatterColumn(col column.Column, positions []int, length int) (column.Column, error) {
	switch {
	case col.StringValues() != nil:
		values := make([]string, length)
		for i, pos := range positions {
			values[pos] = col.StringValues()[i]
		}
		return column.Strings(values...), nil
	case col.IntValues() != nil:
		values := make([]int64, length)
		for i, pos := range positions {
			values[pos] = col.IntValues()[i]
		}
		return column.Ints(values...), nil
	case col.FloatValues() != nil:
		values := make([]float64, length)
		for i, pos := range positions {
			values[pos] = col.FloatValues()[i]
		}
		return column.Floats(values...), nil
	case col.BoolValues() != nil:
		values := make([]bool, length)
		for i, pos := range positions {
			values[pos] = col.BoolValues()[i]
		}
		return column.Bools(values...), nil
	default:
		return column.Column{}, fmt.Errorf("empty column")
	}
}
