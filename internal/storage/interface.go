package storage

import (
	"context"
	"errors"
)

var (
	ErrStorage        = errors.New("storage operation failed")
	ErrObjectNotFound = errors.New("object not found")
)

// Store is a durable byte-blob store for collection documents. The engine
// is agnostic to what sits behind the path string.
type Store interface {
	// Fetch reads the object at path. A missing object fails with
	// ErrObjectNotFound; any other failure wraps ErrStorage.
	Fetch(ctx context.Context, path string) ([]byte, error)

	// Put writes the object at path, replacing any previous content.
	Put(ctx context.Context, path string, data []byte) error

	// Exists reports whether an object is present at path.
	Exists(ctx context.Context, path string) bool
}
