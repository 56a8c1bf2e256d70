package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore implements Store on the local filesystem, for development and
// tests.
type LocalStore struct {
	dataDir string
}

// NewLocalStore creates a new local store rooted at dataDir.
func NewLocalStore(dataDir string) (*LocalStore, error) {
	if err := os.MkdirAll(dataDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("%w: failed to create data directory %s: %v", ErrStorage, dataDir, err)
	}
	return &LocalStore{dataDir: dataDir}, nil
}

func (s *LocalStore) fullPath(path string) string {
	return filepath.Join(s.dataDir, filepath.FromSlash(path))
}

// Fetch reads a file's full content.
func (s *LocalStore) Fetch(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(s.fullPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, path)
		}
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrStorage, path, err)
	}
	return data, nil
}

// Put writes a file, creating parent directories as needed.
func (s *LocalStore) Put(_ context.Context, path string, data []byte) error {
	full := s.fullPath(path)
	if err := os.MkdirAll(filepath.Dir(full), os.ModePerm); err != nil {
		return fmt.Errorf("%w: failed to create directory for %s: %v", ErrStorage, path, err)
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", ErrStorage, path, err)
	}
	return nil
}

// Exists checks if a file exists.
func (s *LocalStore) Exists(_ context.Context, path string) bool {
	_, err := os.Stat(s.fullPath(path))
	return err == nil
}
