// Package storage holds uploaded CSV blobs. Records in MySQL reference a
// blob by its generated storage key; the key never changes after upload.
package storage

import (
	"context"
	"errors"
	"io"
)

var ErrBlobNotFound = errors.New("stored file blob not found")

// Store is the durable home of uploaded file content. Open returns a
// streaming reader so large files are never buffered whole.
type Store interface {
	Save(ctx context.Context, key string, src io.Reader, size int64) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}
