package driving

import (
	"context"

	"github.com/archivemed/dedup-cli/internal/core/domain"
)

// DocumentService exposes stored documents for inspection.
type DocumentService interface {
	// List returns documents, optionally filtered by status.
	List(ctx context.Context, status domain.DocumentStatus) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// Duplicates returns all duplicate edges touching a document.
	Duplicates(ctx context.Context, documentID string) ([]domain.DuplicateRelationship, error)

	// Delete removes a document together with its pages, vectors and
	// duplicate edges.
	Delete(ctx context.Context, documentID string) error

	// Stats returns document counts by status.
	Stats(ctx context.Context) (map[domain.DocumentStatus]int, error)
}
