// Package blobstore abstracts where graph snapshots live.
package blobstore

import (
	"context"
	"os"
)

// ErrNotFound is returned by Get when no blob exists under the given name.
var ErrNotFound = os.ErrNotExist

// BlobStore stores opaque snapshot bytes under a name.
// Implementations must be safe for concurrent use.
type BlobStore interface {
	// Put stores data under name, replacing any existing blob.
	Put(ctx context.Context, name string, data []byte) error
	// Get returns the blob stored under name, or ErrNotFound.
	Get(ctx context.Context, name string) ([]byte, error)
	// Delete removes the blob stored under name. Deleting a missing
	// blob is not an error.
	Delete(ctx context.Context, name string) error
}
