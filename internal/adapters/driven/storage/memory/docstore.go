package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/archivemed/dedup-cli/internal/core/domain"
	"github.com/archivemed/dedup-cli/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.Mutex
	documents map[string]domain.Document
	hashes    map[string]string // content hash -> document ID
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		hashes:    make(map[string]string),
	}
}

// SaveDocument stores or updates a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	if doc.ContentHash != "" {
		if _, claimed := s.hashes[doc.ContentHash]; !claimed {
			s.hashes[doc.ContentHash] = doc.ID
		}
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetByContentHash retrieves the document holding a content hash.
func (s *DocumentStore) GetByContentHash(_ context.Context, hash string) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.hashes[hash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc := s.documents[id]
	return &doc, nil
}

// ClaimContentHash atomically records a content hash for a document.
func (s *DocumentStore) ClaimContentHash(_ context.Context, documentID, hash string) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if holderID, claimed := s.hashes[hash]; claimed && holderID != documentID {
		holder := s.documents[holderID]
		return &holder, domain.ErrAlreadyExists
	}

	s.hashes[hash] = documentID
	doc := s.documents[documentID]
	doc.ContentHash = hash
	s.documents[documentID] = doc
	return nil, nil
}

// ListDocuments returns all documents, optionally filtered by status.
func (s *DocumentStore) ListDocuments(_ context.Context, status domain.DocumentStatus) ([]domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var docs []domain.Document
	for _, doc := range s.documents {
		if status != "" && doc.Status != status {
			continue
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})
	return docs, nil
}

// ListRetainedContent returns ID and content pairs ordered by ID.
func (s *DocumentStore) ListRetainedContent(_ context.Context) ([]domain.DocumentContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.DocumentContent
	for _, doc := range s.documents {
		if doc.Content == "" {
			continue
		}
		out = append(out, domain.DocumentContent{ID: doc.ID, Content: doc.Content})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListSignatures returns all stored MinHash signatures ordered by ID.
func (s *DocumentStore) ListSignatures(_ context.Context) ([]driven.SignatureEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []driven.SignatureEntry
	for _, doc := range s.documents {
		if len(doc.MinHash) == 0 {
			continue
		}
		sig := make([]uint64, len(doc.MinHash))
		copy(sig, doc.MinHash)
		out = append(out, driven.SignatureEntry{DocumentID: doc.ID, Signature: sig})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocumentID < out[j].DocumentID })
	return out, nil
}

// DeleteDocument removes a document.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	if holder, claimed := s.hashes[doc.ContentHash]; claimed && holder == id {
		delete(s.hashes, doc.ContentHash)
	}
	delete(s.documents, id)
	return nil
}

// CountByStatus returns document counts keyed by status.
func (s *DocumentStore) CountByStatus(_ context.Context) (map[domain.DocumentStatus]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[domain.DocumentStatus]int)
	for _, doc := range s.documents {
		counts[doc.Status]++
	}
	return counts, nil
}
