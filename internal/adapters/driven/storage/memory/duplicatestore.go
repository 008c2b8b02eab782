package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/archivemed/dedup-cli/internal/core/domain"
	"github.com/archivemed/dedup-cli/internal/core/ports/driven"
)

// Ensure DuplicateStore implements the interface.
var _ driven.DuplicateStore = (*DuplicateStore)(nil)

// DuplicateStore is an in-memory implementation of driven.DuplicateStore.
type DuplicateStore struct {
	mu       sync.RWMutex
	docEdges []domain.DuplicateRelationship
	pgEdges  []domain.PageDuplicate
}

// NewDuplicateStore creates a new in-memory duplicate store.
func NewDuplicateStore() *DuplicateStore {
	return &DuplicateStore{}
}

// SaveDocumentDuplicate records a document-level duplicate edge.
func (s *DuplicateStore) SaveDocumentDuplicate(_ context.Context, rel *domain.DuplicateRelationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.docEdges {
		if e.SourceID == rel.SourceID && e.DuplicateID == rel.DuplicateID {
			return nil
		}
	}
	s.docEdges = append(s.docEdges, *rel)
	return nil
}

// ListDocumentDuplicates returns all edges touching a document.
func (s *DuplicateStore) ListDocumentDuplicates(_ context.Context, documentID string) ([]domain.DuplicateRelationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.DuplicateRelationship
	for _, e := range s.docEdges {
		if e.SourceID == documentID || e.DuplicateID == documentID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// SavePageDuplicate records a page-level duplicate edge.
func (s *DuplicateStore) SavePageDuplicate(_ context.Context, rel *domain.PageDuplicate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.pgEdges {
		if e.SourcePageID == rel.SourcePageID && e.DuplicatePageID == rel.DuplicatePageID {
			return nil
		}
	}
	s.pgEdges = append(s.pgEdges, *rel)
	return nil
}

// ListPageDuplicates returns edges where the page is the source.
func (s *DuplicateStore) ListPageDuplicates(_ context.Context, sourcePageID string) ([]domain.PageDuplicate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.PageDuplicate
	for _, e := range s.pgEdges {
		if e.SourcePageID == sourcePageID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
