package column

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestColumn_Kinds(t *testing.T) {
	require.Equal(t, KindCategorical, Strings("a").Kind())
	require.Equal(t, KindNumeric, Ints(1).Kind())
	require.Equal(t, KindNumeric, Floats(1.5).Kind())
	require.Equal(t, KindOther, Bools(true).Kind())

	require.True(t, Strings("a").IsCategorical())
	require.False(t, Ints(1).IsCategorical())
}

func TestColumn_Gather(t *testing.T) {
	col := Strings("a", "b", "c", "d")

	got := col.Gather([]int{3, 1, 1})
	require.Equal(t, []string{"d", "b", "b"}, got.StringValues())
	require.Equal(t, KindCategorical, got.Kind())
}

func TestColumn_Concat(t *testing.T) {
	t.Run("same type", func(t *testing.T) {
		got, err := Concat(Ints(1, 2), Ints(3))
		require.NoError(t, err)
		require.Equal(t, []int64{1, 2, 3}, got.IntValues())
	})

	t.Run("empty side", func(t *testing.T) {
		got, err := Concat(Column{}, Strings("x"))
		require.NoError(t, err)
		require.Equal(t, []string{"x"}, got.StringValues())
	})

	t.Run("mismatched types", func(t *testing.T) {
		_, err := Concat(Ints(1), Strings("x"))
		require.Error(t, err)
	})
}

func TestColumn_KeysNeverCollideAcrossTypes(t *testing.T) {
	// "1" as a string and 1 as an int must stay distinct in keyed lookups.
	s := Strings("1")
	i := Ints(1)
	require.NotEqual(t, s.Key(0), i.Key(0))

	b := Bools(true)
	f := Floats(1)
	require.NotEqual(t, i.Key(0), f.Key(0))
	require.NotEqual(t, b.Key(0), i.Key(0))
}

func TestColumn_Compare(t *testing.T) {
	col := Strings("b", "a", "b")
	require.Equal(t, 1, col.Compare(0, col, 1))
	require.Equal(t, -1, col.Compare(1, col, 0))
	require.Equal(t, 0, col.Compare(0, col, 2))
	require.True(t, col.EqualAt(0, col, 2))

	nums := Floats(1.5, 2.5)
	require.Equal(t, -1, nums.Compare(0, nums, 1))
}

func TestColumn_JSONRoundTrip(t *testing.T) {
	orig := Ints(7, 8, 9)

	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var got Column
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, orig.IntValues(), got.IntValues())
	require.Equal(t, orig.Kind(), got.Kind())
}

func TestTable_SetValidatesLength(t *testing.T) {
	var tbl Table
	require.NoError(t, tbl.Set("a", Ints(1, 2)))

	err := tbl.Set("b", Ints(1))
	require.Error(t, err)

	require.NoError(t, tbl.Set("b", Ints(3, 4)))
	require.Equal(t, 2, tbl.NumCols())
	require.Equal(t, 2, tbl.NumRows())
}

func TestTable_OrderAndProjection(t *testing.T) {
	tbl := MustTable(
		"id", Strings("x", "y"),
		"score", Floats(0.5, 0.9),
		"flag", Bools(true, false),
	)

	require.Equal(t, []string{"id", "score", "flag"}, tbl.Names())

	proj, err := tbl.Project("flag", "id")
	require.NoError(t, err)
	require.Equal(t, []string{"flag", "id"}, proj.Names())

	_, err = tbl.Project("missing")
	require.Error(t, err)

	dropped := tbl.Drop("score", "unknown")
	require.Equal(t, []string{"id", "flag"}, dropped.Names())
}

func TestTable_Gather(t *testing.T) {
	tbl := MustTable(
		"id", Strings("x", "y", "z"),
		"n", Ints(10, 20, 30),
	)

	got := tbl.Gather([]int{2, 0})
	require.Equal(t, 2, got.NumRows())

	ids, _ := got.Get("id")
	ns, _ := got.Get("n")
	require.Equal(t, []string{"z", "x"}, ids.StringValues())
	require.Equal(t, []int64{30, 10}, ns.IntValues())
}

func TestTable_RowEqual(t *testing.T) {
	a := MustTable("id", Strings("x", "y"), "n", Ints(1, 2))
	b := MustTable("id", Strings("y"), "n", Ints(2))

	require.True(t, a.RowEqual(1, b, 0))
	require.False(t, a.RowEqual(0, b, 0))
}

func TestTable_JSONRoundTrip(t *testing.T) {
	orig := MustTable("id", Strings("x"), "n", Ints(5))

	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var got Table
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, orig.Names(), got.Names())

	n, ok := got.Get("n")
	require.True(t, ok)
	require.Equal(t, []int64{5}, n.IntValues())
}
