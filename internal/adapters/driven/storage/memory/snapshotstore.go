package memory

import (
	"context"
	"sync"

	"github.com/archivemed/dedup-cli/internal/core/domain"
	"github.com/archivemed/dedup-cli/internal/core/ports/driven"
)

// Ensure SnapshotStore implements the interface.
var _ driven.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore is an in-memory implementation of driven.SnapshotStore.
type SnapshotStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		blobs: make(map[string][]byte),
	}
}

// Store atomically replaces the blob with the given name.
func (s *SnapshotStore) Store(_ context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	blob := make([]byte, len(data))
	copy(blob, data)
	s.blobs[name] = blob
	return nil
}

// Load returns the blob with the given name.
func (s *SnapshotStore) Load(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, nil
}
