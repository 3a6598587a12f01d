package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/propgraph/column"
	"github.com/hupe1980/propgraph/engine"
)

func populated(t *testing.T) *Canonical {
	t.Helper()

	c := New(engine.NewLocal())
	collapsed, err := c.AddEdges(context.Background(),
		column.Strings("A", "A", "B"),
		column.Strings("B", "C", "C"))
	require.NoError(t, err)
	require.Equal(t, 0, collapsed)
	return c
}

func TestCanonical_AddEdges(t *testing.T) {
	c := populated(t)

	require.True(t, c.Populated())
	require.Equal(t, 3, c.Order())
	require.Equal(t, 3, c.Size())

	// Vertices are the sorted union of both endpoint columns.
	require.Equal(t, []string{"A", "B", "C"}, c.Vertices().StringValues())

	// Edges are deduplicated internal pairs in ascending pair order.
	require.Equal(t, []int64{0, 0, 1}, c.EdgeSrc())
	require.Equal(t, []int64{1, 2, 2}, c.EdgeDst())
}

func TestCanonical_AddEdgesCollapsesDuplicates(t *testing.T) {
	c := New(engine.NewLocal())

	collapsed, err := c.AddEdges(context.Background(),
		column.Strings("A", "A", "A"),
		column.Strings("B", "B", "C"))
	require.NoError(t, err)
	require.Equal(t, 1, collapsed)
	require.Equal(t, 2, c.Size())
}

func TestCanonical_AddEdgesValidation(t *testing.T) {
	c := New(engine.NewLocal())
	ctx := context.Background()

	_, err := c.AddEdges(ctx, column.Strings("A"), column.Strings("B", "C"))
	require.Error(t, err)

	_, err = c.AddEdges(ctx, column.Strings(), column.Strings())
	require.Error(t, err)
}

func TestCanonical_AddEdgesRebuilds(t *testing.T) {
	c := populated(t)

	_, err := c.AddEdges(context.Background(), column.Strings("X"), column.Strings("Y"))
	require.NoError(t, err)
	require.Equal(t, []string{"X", "Y"}, c.Vertices().StringValues())
	require.Equal(t, 1, c.Size())
}

func TestCanonical_ResolveVertices(t *testing.T) {
	c := populated(t)

	t.Run("drops unknown ids", func(t *testing.T) {
		ids, kept, err := c.ResolveVertices(context.Background(), column.Strings("A", "B", "D"))
		require.NoError(t, err)
		require.Equal(t, []int64{0, 1}, ids)
		require.Equal(t, []int{0, 1}, kept)
	})

	t.Run("resolution is stable", func(t *testing.T) {
		ids, _, err := c.ResolveVertices(context.Background(), column.Strings("C", "C"))
		require.NoError(t, err)
		require.Equal(t, []int64{2, 2}, ids)
	})

	t.Run("empty store", func(t *testing.T) {
		empty := New(engine.NewLocal())
		_, _, err := empty.ResolveVertices(context.Background(), column.Strings("A"))
		require.ErrorIs(t, err, ErrNoEdges)
	})
}

func TestCanonical_ResolveEdges(t *testing.T) {
	c := populated(t)

	t.Run("drops non canonical pairs", func(t *testing.T) {
		// (B,A) is not an edge; direction matters.
		ids, kept, err := c.ResolveEdges(context.Background(),
			column.Strings("A", "B", "B"),
			column.Strings("B", "A", "C"))
		require.NoError(t, err)
		require.Equal(t, []int64{0, 2}, ids)
		require.Equal(t, []int{0, 2}, kept)
	})

	t.Run("unknown endpoint drops row", func(t *testing.T) {
		ids, kept, err := c.ResolveEdges(context.Background(),
			column.Strings("Z"),
			column.Strings("B"))
		require.NoError(t, err)
		require.Empty(t, ids)
		require.Empty(t, kept)
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, _, err := c.ResolveEdges(context.Background(),
			column.Strings("A"),
			column.Strings("B", "C"))
		require.Error(t, err)
	})

	t.Run("empty store", func(t *testing.T) {
		empty := New(engine.NewLocal())
		_, _, err := empty.ResolveEdges(context.Background(), column.Strings("A"), column.Strings("B"))
		require.ErrorIs(t, err, ErrNoEdges)
	})
}

func TestCanonical_SnapshotRestore(t *testing.T) {
	c := populated(t)

	snap := c.Snapshot()

	restored := New(engine.NewLocal())
	require.NoError(t, restored.Restore(snap))
	require.Equal(t, c.Vertices().StringValues(), restored.Vertices().StringValues())
	require.Equal(t, c.EdgeSrc(), restored.EdgeSrc())
	require.Equal(t, c.EdgeDst(), restored.EdgeDst())

	t.Run("mismatched snapshot rejected", func(t *testing.T) {
		bad := Snapshot{Vertices: column.Strings("A"), EdgeSrc: []int64{0}, EdgeDst: nil}
		require.Error(t, New(engine.NewLocal()).Restore(bad))
	})
}
