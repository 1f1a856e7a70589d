package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStore keeps blobs as plain files under a single directory. It is the
// default driver and the one exercised by tests.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir failed: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Save(_ context.Context, key string, src io.Reader, _ int64) error {
	path := s.path(key)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create blob file failed: %w", err)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write blob file failed: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close blob file failed: %w", err)
	}
	return nil
}

func (s *LocalStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("open blob file failed: %w", err)
	}
	return f, nil
}

func (s *LocalStore) Remove(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil {
		if os.IsNotExist(err) {
			return ErrBlobNotFound
		}
		return fmt.Errorf("remove blob file failed: %w", err)
	}
	return nil
}

func (s *LocalStore) path(key string) string {
	// Keys are generated server side, but never trust them as paths.
	return filepath.Join(s.dir, filepath.Base(key))
}
