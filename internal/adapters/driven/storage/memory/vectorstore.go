package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/archivemed/dedup-cli/internal/core/domain"
	"github.com/archivemed/dedup-cli/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

type vectorKey struct {
	ownerID string
	kind    domain.VectorKind
}

// VectorStore is an in-memory implementation of driven.VectorStore.
type VectorStore struct {
	mu      sync.RWMutex
	vectors map[vectorKey]domain.StoredVector
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		vectors: make(map[vectorKey]domain.StoredVector),
	}
}

// Put stores or replaces the vector for an owner.
func (s *VectorStore) Put(_ context.Context, vec *domain.StoredVector) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *vec
	stored.Vector = cloneVector(vec.Vector)
	s.vectors[vectorKey{vec.OwnerID, vec.Kind}] = stored
	return nil
}

// Get retrieves the vector for an owner.
func (s *VectorStore) Get(_ context.Context, ownerID string, kind domain.VectorKind) (*domain.StoredVector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vec, ok := s.vectors[vectorKey{ownerID, kind}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := vec
	out.Vector = cloneVector(vec.Vector)
	return &out, nil
}

// ListByVersion returns all vectors of a kind and version, ordered by owner.
func (s *VectorStore) ListByVersion(_ context.Context, kind domain.VectorKind, version int) ([]domain.StoredVector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.StoredVector
	for key, vec := range s.vectors {
		if key.kind != kind || vec.Version != version {
			continue
		}
		v := vec
		v.Vector = cloneVector(vec.Vector)
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OwnerID < out[j].OwnerID })
	return out, nil
}

// DeleteByOwner removes all vectors belonging to an owner.
func (s *VectorStore) DeleteByOwner(_ context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.vectors {
		if key.ownerID == ownerID {
			delete(s.vectors, key)
		}
	}
	return nil
}

func cloneVector(v domain.Vector) domain.Vector {
	out := make(domain.Vector, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
