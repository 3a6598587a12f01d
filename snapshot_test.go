package propgraph

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/propgraph/blobstore"
	"github.com/hupe1980/propgraph/codec"
	"github.com/hupe1980/propgraph/column"
	"github.com/hupe1980/propgraph/engine"
)

// loaded builds a graph with labels, relationships and properties on the
// triangle edge set.
func loaded(t *testing.T) *Graph {
	t.Helper()
	ctx := context.Background()

	g := triangle(t)

	_, err := g.LoadNodeAttributes(ctx, column.MustTable(
		"id", column.Strings("A", "B", "C"),
		"type", column.Strings("Person", "Person", "Bot"),
		"age", column.Ints(30, 40, 1),
	), "id", []string{"type"})
	require.NoError(t, err)

	_, err = g.LoadEdgeAttributes(ctx, column.MustTable(
		"from", column.Strings("A", "A"),
		"to", column.Strings("B", "C"),
		"rel", column.Strings("Knows", "Owns"),
		"weight", column.Floats(0.5, 0.9),
	), "from", "to", []string{"rel"})
	require.NoError(t, err)

	return g
}

func requireSameGraph(t *testing.T, want, got *Graph) {
	t.Helper()

	require.Equal(t, want.Order(), got.Order())
	require.Equal(t, want.Size(), got.Size())
	require.Equal(t, want.Nodes().StringValues(), got.Nodes().StringValues())

	wantLabels, err := want.NodeLabels()
	require.NoError(t, err)
	gotLabels, err := got.NodeLabels()
	require.NoError(t, err)
	require.Equal(t, wantLabels.Names(), gotLabels.Names())

	wantDict, ok := want.LabelDictionary("type")
	require.True(t, ok)
	gotDict, ok := got.LabelDictionary("type")
	require.True(t, ok)
	require.Equal(t, wantDict.Values(), gotDict.Values())

	wantAttrs, err := want.EdgeAttributes()
	require.NoError(t, err)
	gotAttrs, err := got.EdgeAttributes()
	require.NoError(t, err)

	wantWeight, _ := wantAttrs.Get("weight")
	gotWeight, _ := gotAttrs.Get("weight")
	require.Equal(t, wantWeight.FloatValues(), gotWeight.FloatValues())

	// Matching works identically on the restored graph.
	src, dst, err := got.FindPathsOfLengthOne(context.Background(),
		column.MustTable("type", column.Strings("Person")),
		column.Table{})
	require.NoError(t, err)
	require.Equal(t, []string{"A"}, src.StringValues())
	require.Equal(t, []string{"B"}, dst.StringValues())
}

func TestSnapshot_WriterRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name        string
		compression Compression
	}{
		{"none", CompressionNone},
		{"zstd", CompressionZstd},
		{"lz4", CompressionLZ4},
	} {
		t.Run(tc.name, func(t *testing.T) {
			g := loaded(t)
			g.compression = tc.compression

			var buf bytes.Buffer
			require.NoError(t, g.SaveToWriter(&buf))

			got, err := NewFromReader(context.Background(), &buf)
			require.NoError(t, err)
			requireSameGraph(t, g, got)
		})
	}
}

func TestSnapshot_FileRoundTrip(t *testing.T) {
	g := loaded(t)
	path := filepath.Join(t.TempDir(), "graph.pgs")

	require.NoError(t, g.SaveToFile(path))

	got, err := NewFromFile(context.Background(), path)
	require.NoError(t, err)
	requireSameGraph(t, g, got)
}

func TestSnapshot_BlobRoundTrip(t *testing.T) {
	ctx := context.Background()
	g := loaded(t)
	bs := blobstore.NewMemory()

	require.NoError(t, g.SaveToBlob(ctx, bs, "graphs/test.pgs"))

	got, err := NewFromBlob(ctx, bs, "graphs/test.pgs")
	require.NoError(t, err)
	requireSameGraph(t, g, got)

	_, err = NewFromBlob(ctx, bs, "graphs/missing.pgs")
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestSnapshot_RestoreRebuildsBackend(t *testing.T) {
	ctx := context.Background()
	g := loaded(t)

	var buf bytes.Buffer
	require.NoError(t, g.SaveToWriter(&buf))

	local := engine.NewLocal()
	got, err := NewFromReader(ctx, &buf, WithEngine(local))
	require.NoError(t, err)

	// The dictionary-encoded label column was replayed into the fresh
	// backend under the new handle.
	stored, ok := local.NodeArray(got.Handle(), "type")
	require.True(t, ok)
	require.Len(t, stored.Indices, 3)

	mapper, ok := local.NodeMapper(got.Handle(), "type")
	require.True(t, ok)
	require.Equal(t, []string{"Bot", "Person"}, mapper.StringValues())

	weight, ok := local.EdgeArray(got.Handle(), "weight")
	require.True(t, ok)
	require.Equal(t, []float64{0.5, 0.9}, weight.Values.FloatValues())
}

func TestSnapshot_CodecHeaderWins(t *testing.T) {
	g := loaded(t)
	g.codec = codec.JSON{}

	var buf bytes.Buffer
	require.NoError(t, g.SaveToWriter(&buf))

	// The reader is configured with a different codec; the header decides.
	got, err := NewFromReader(context.Background(), &buf, WithCodec(codec.GoJSON{}))
	require.NoError(t, err)
	requireSameGraph(t, g, got)
}

func TestSnapshot_Invalid(t *testing.T) {
	ctx := context.Background()

	t.Run("truncated", func(t *testing.T) {
		_, err := NewFromReader(ctx, bytes.NewReader([]byte("PG")))
		require.ErrorIs(t, err, ErrInvalidSnapshot)
	})

	t.Run("bad magic", func(t *testing.T) {
		_, err := NewFromReader(ctx, bytes.NewReader([]byte("NOPE\x00\x00")))
		require.ErrorIs(t, err, ErrInvalidSnapshot)
	})

	t.Run("unknown codec", func(t *testing.T) {
		data := append([]byte("PGS1"), 0, 3)
		data = append(data, "xml"...)
		data = append(data, 0, 0, 0, 0)
		_, err := NewFromReader(ctx, bytes.NewReader(data))
		require.ErrorIs(t, err, ErrUnknownCodec)
	})
}
