package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const (
	gcsFetchTimeout = time.Minute
	gcsPutTimeout   = 5 * time.Minute
)

// GCSStore implements Store on Google Cloud Storage.
type GCSStore struct {
	client       *storage.Client
	bucket       string
	objectPrefix string
}

// NewGCSStore creates a new GCSStore instance.
func NewGCSStore(ctx context.Context, bucketName, objectPrefix, credentialsFile string) (*GCSStore, error) {
	var client *storage.Client
	var err error

	// Create a client
	if credentialsFile != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	} else {
		// Use application default credentials
		client, err = storage.NewClient(ctx)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStore{
		client:       client,
		bucket:       bucketName,
		objectPrefix: objectPrefix,
	}, nil
}

func (s *GCSStore) objectName(path string) string {
	if s.objectPrefix != "" {
		return s.objectPrefix + "/" + path
	}
	return path
}

// Fetch reads an object's full content.
func (s *GCSStore) Fetch(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, gcsFetchTimeout)
	defer cancel()

	rc, err := s.client.Bucket(s.bucket).Object(s.objectName(path)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, path)
		}
		return nil, fmt.Errorf("%w: failed to open GCS object: %v", ErrStorage, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read GCS object: %v", ErrStorage, err)
	}
	return data, nil
}

// Put writes an object, replacing previous content.
func (s *GCSStore) Put(ctx context.Context, path string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, gcsPutTimeout)
	defer cancel()

	wc := s.client.Bucket(s.bucket).Object(s.objectName(path)).NewWriter(ctx)
	if _, err := wc.Write(data); err != nil {
		return fmt.Errorf("%w: failed to write GCS object: %v", ErrStorage, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("%w: failed to close GCS writer: %v", ErrStorage, err)
	}
	return nil
}

// Exists checks if an object exists.
func (s *GCSStore) Exists(ctx context.Context, path string) bool {
	ctx, cancel := context.WithTimeout(ctx, gcsFetchTimeout)
	defer cancel()

	_, err := s.client.Bucket(s.bucket).Object(s.objectName(path)).Attrs(ctx)
	return err == nil
}

// Close closes the GCS client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
