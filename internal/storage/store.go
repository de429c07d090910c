// Package storage provides read-only access to the files of a dataset, either
// on the local filesystem or in an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when a file or directory does not exist.
//
// Implementations wrap it, so callers should test with errors.Is.
var ErrNotFound = errors.New("not found")

// Store is a read-only view of a directory tree. Names are slash-separated
// and relative to the root of the store.
type Store interface {
	// Open opens a regular file for reading. Directories are reported as
	// ErrNotFound.
	Open(ctx context.Context, name string) (Blob, error)

	// List returns the names of the entries directly under dir.
	List(ctx context.Context, dir string) ([]string, error)
}

// Blob is an open file. The caller must close it.
type Blob interface {
	io.ReadSeekCloser
	Stat() (Info, error)
}

// Info describes a Blob.
type Info struct {
	Name    string
	Size    int64
	ModTime time.Time
}
