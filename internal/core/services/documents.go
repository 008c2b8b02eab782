package services

import (
	"context"
	"fmt"

	"github.com/archivemed/dedup-cli/internal/core/domain"
	"github.com/archivemed/dedup-cli/internal/core/ports/driven"
	"github.com/archivemed/dedup-cli/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService exposes stored documents for inspection and removal.
type DocumentService struct {
	docStore driven.DocumentStore
	dupStore driven.DuplicateStore
}

// NewDocumentService creates a document service.
func NewDocumentService(docStore driven.DocumentStore, dupStore driven.DuplicateStore) *DocumentService {
	return &DocumentService{
		docStore: docStore,
		dupStore: dupStore,
	}
}

// List returns documents, optionally filtered by status.
func (s *DocumentService) List(ctx context.Context, status domain.DocumentStatus) ([]domain.Document, error) {
	if status != "" && !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}
	return s.docStore.ListDocuments(ctx, status)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, documentID)
}

// Duplicates returns all duplicate edges touching a document.
func (s *DocumentService) Duplicates(ctx context.Context, documentID string) ([]domain.DuplicateRelationship, error) {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return s.dupStore.ListDocumentDuplicates(ctx, documentID)
}

// Delete removes a document with its pages, vectors and duplicate edges.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return err
	}
	return s.docStore.DeleteDocument(ctx, documentID)
}

// Stats returns document counts by status.
func (s *DocumentService) Stats(ctx context.Context) (map[domain.DocumentStatus]int, error) {
	return s.docStore.CountByStatus(ctx)
}
