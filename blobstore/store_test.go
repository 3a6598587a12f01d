package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testLifecycle(t *testing.T, store BlobStore) {
	t.Helper()
	ctx := context.Background()

	// 1. Missing blob
	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	// 2. Put and Get
	data := []byte("graph snapshot payload")
	require.NoError(t, store.Put(ctx, "graphs/one.pgs", data))

	got, err := store.Get(ctx, "graphs/one.pgs")
	require.NoError(t, err)
	require.Equal(t, data, got)

	// 3. Put replaces
	require.NoError(t, store.Put(ctx, "graphs/one.pgs", []byte("v2")))
	got, err = store.Get(ctx, "graphs/one.pgs")
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), got)

	// 4. Delete is idempotent
	require.NoError(t, store.Delete(ctx, "graphs/one.pgs"))
	require.NoError(t, store.Delete(ctx, "graphs/one.pgs"))

	_, err = store.Get(ctx, "graphs/one.pgs")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_Lifecycle(t *testing.T) {
	testLifecycle(t, NewMemory())
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, store.Put(ctx, "blob", []byte("abc")))

	got, err := store.Get(ctx, "blob")
	require.NoError(t, err)
	got[0] = 'x'

	again, err := store.Get(ctx, "blob")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), again)
}

func TestLocal_Lifecycle(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	testLifecycle(t, store)
}

func TestLocal_WritesInsideRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocal(root)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "../escape", []byte("x")))

	// The cleaned name stays inside the root directory.
	_, err = os.Stat(filepath.Join(root, "escape"))
	require.NoError(t, err)
}
