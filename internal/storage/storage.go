package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Bucket() string
}

// SnapshotStore archives export snapshots in object storage. A nil
// *SnapshotStore is a no-op, so export handlers never need to check
// whether archival is configured.
type SnapshotStore struct {
	backend ObjectStorage
}

// NewSnapshotStore constructs a SnapshotStore over the given backend.
func NewSnapshotStore(backend ObjectStorage) *SnapshotStore {
	return &SnapshotStore{backend: backend}
}

// EnsureBucket ensures the configured bucket exists.
func (s *SnapshotStore) EnsureBucket(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.backend.EnsureBucket(ctx)
}

// Save archives one export snapshot and returns its object key. Keys
// are prefixed by kind and creation date so snapshots of one export
// family list together.
func (s *SnapshotStore) Save(ctx context.Context, kind string, data []byte, contentType string) (string, error) {
	if s == nil {
		return "", nil
	}
	key := fmt.Sprintf("%s/%s-%s.csv", kind, time.Now().UTC().Format("2006-01-02"), uuid.NewString())
	if err := s.backend.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return "", err
	}
	return key, nil
}

// Open opens a previously archived snapshot.
func (s *SnapshotStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if s == nil {
		return nil, fmt.Errorf("snapshot storage is not configured")
	}
	return s.backend.Get(ctx, key)
}

// Bucket returns the configured bucket name, or empty when disabled.
func (s *SnapshotStore) Bucket() string {
	if s == nil {
		return ""
	}
	return s.backend.Bucket()
}
