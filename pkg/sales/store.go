// Package sales loads daily sales files from object storage.
package sales

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// ErrObjectNotFound signals that a requested key does not exist in the
// bucket, as distinct from a hard transport failure. A missing day file is
// the only recoverable condition in a run.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is the object-storage collaborator.
type ObjectStore interface {
	// Download fetches the bytes stored under key. A missing key yields an
	// error wrapping ErrObjectNotFound.
	Download(ctx context.Context, key string) ([]byte, error)

	// List enumerates object names under the prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// GCSStore implements ObjectStore over a GCS bucket.
type GCSStore struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
}

// NewGCSStore creates a store bound to one bucket.
func NewGCSStore(ctx context.Context, bucketName string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSStore{
		client: client,
		bucket: client.Bucket(bucketName),
		name:   bucketName,
	}, nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

// BucketName returns the bound bucket's name.
func (s *GCSStore) BucketName() string {
	return s.name
}

// Download fetches one object's bytes.
func (s *GCSStore) Download(ctx context.Context, key string) ([]byte, error) {
	r, err := s.bucket.Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: gs://%s/%s", ErrObjectNotFound, s.name, key)
		}

		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", s.name, key, err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		_ = r.Close()

		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", s.name, key, err)
	}

	if err := r.Close(); err != nil {
		return nil, fmt.Errorf("failed to close reader for gs://%s/%s: %w", s.name, key, err)
	}

	return data, nil
}

// List enumerates object names under the prefix.
func (s *GCSStore) List(ctx context.Context, prefix string) ([]string, error) {
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: prefix})

	var names []string

	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to list gs://%s/%s*: %w", s.name, prefix, err)
		}

		names = append(names, attrs.Name)
	}

	return names, nil
}
