package arrowio

import (
	"context"
	"testing"

	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/propgraph"
	"github.com/hupe1980/propgraph/column"
)

func TestTableRoundTrip(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	orig := column.MustTable(
		"id", column.Strings("A", "B"),
		"n", column.Ints(1, 2),
		"score", column.Floats(0.5, 0.9),
		"flag", column.Bools(true, false),
	)

	rec, err := FromTable(mem, orig)
	require.NoError(t, err)
	defer rec.Release()

	require.Equal(t, int64(2), rec.NumRows())
	require.Equal(t, int64(4), rec.NumCols())

	got, err := ToTable(rec)
	require.NoError(t, err)
	require.Equal(t, orig.Names(), got.Names())

	id, _ := got.Get("id")
	require.Equal(t, []string{"A", "B"}, id.StringValues())
	require.Equal(t, column.KindCategorical, id.Kind())

	n, _ := got.Get("n")
	require.Equal(t, []int64{1, 2}, n.IntValues())

	score, _ := got.Get("score")
	require.Equal(t, []float64{0.5, 0.9}, score.FloatValues())

	flag, _ := got.Get("flag")
	require.Equal(t, []bool{true, false}, flag.BoolValues())
}

func TestNodeRecord(t *testing.T) {
	ctx := context.Background()

	g, err := propgraph.New()
	require.NoError(t, err)

	_, err = g.AddEdges(ctx, column.Strings("A", "A", "B"), column.Strings("B", "C", "C"))
	require.NoError(t, err)

	_, err = g.LoadNodeAttributes(ctx, column.MustTable(
		"id", column.Strings("A", "B", "C"),
		"type", column.Strings("Person", "Person", "Bot"),
		"age", column.Ints(30, 40, 1),
	), "id", []string{"type"})
	require.NoError(t, err)

	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	rec, err := NodeRecord(mem, g)
	require.NoError(t, err)
	defer rec.Release()

	require.Equal(t, int64(3), rec.NumRows())

	got, err := ToTable(rec)
	require.NoError(t, err)

	nodes, _ := got.Get("nodes")
	require.Equal(t, []string{"A", "B", "C"}, nodes.StringValues())

	codes, _ := got.Get("type")
	require.Equal(t, []int64{1, 1, 0}, codes.IntValues())

	age, _ := got.Get("age")
	require.Equal(t, []int64{30, 40, 1}, age.IntValues())
}

func TestEdgeRecord(t *testing.T) {
	ctx := context.Background()

	g, err := propgraph.New()
	require.NoError(t, err)

	_, err = g.AddEdges(ctx, column.Strings("A", "A"), column.Strings("B", "C"))
	require.NoError(t, err)

	_, err = g.LoadEdgeAttributes(ctx, column.MustTable(
		"from", column.Strings("A"),
		"to", column.Strings("C"),
		"weight", column.Floats(0.9),
	), "from", "to", nil)
	require.NoError(t, err)

	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	rec, err := EdgeRecord(mem, g)
	require.NoError(t, err)
	defer rec.Release()

	got, err := ToTable(rec)
	require.NoError(t, err)

	src, _ := got.Get("src")
	dst, _ := got.Get("dst")
	require.Equal(t, []string{"A", "A"}, src.StringValues())
	require.Equal(t, []string{"B", "C"}, dst.StringValues())

	// The unattributed edge (A,B) gets the zero value.
	weight, _ := got.Get("weight")
	require.Equal(t, []float64{0, 0.9}, weight.FloatValues())
}
