package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// errors.Is(err, ErrNotFound). The default maps to os.ErrNotExist, so local
// filesystem errors satisfy it without translation.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for storing immutable data blobs (snapshots).
type BlobStore interface {
	// Put writes the blob named name from r, replacing any existing content.
	// The replacement is atomic: a concurrent Get observes either the old
	// blob or the new one, never a partial write.
	Put(ctx context.Context, name string, r io.Reader) error

	// Get opens the named blob for reading. The caller must close the
	// returned reader. A missing blob returns ErrNotFound.
	Get(ctx context.Context, name string) (io.ReadCloser, error)

	// Delete removes the named blob. Deleting a missing blob is not an
	// error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all blobs starting with prefix, sorted
	// lexicographically.
	List(ctx context.Context, prefix string) ([]string, error)
}
