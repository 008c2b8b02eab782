package driven

import (
	"context"

	"github.com/archivemed/dedup-cli/internal/core/domain"
)

// DuplicateStore persists duplicate relationships between documents and
// between pages. Inserting an edge that already exists is a no-op.
type DuplicateStore interface {
	// SaveDocumentDuplicate records a document-level duplicate edge.
	SaveDocumentDuplicate(ctx context.Context, rel *domain.DuplicateRelationship) error

	// ListDocumentDuplicates returns all edges touching a document, as
	// source or duplicate. Ordered by creation time.
	ListDocumentDuplicates(ctx context.Context, documentID string) ([]domain.DuplicateRelationship, error)

	// SavePageDuplicate records a page-level duplicate edge.
	SavePageDuplicate(ctx context.Context, rel *domain.PageDuplicate) error

	// ListPageDuplicates returns all page edges where the given page is the
	// source. Ordered by creation time.
	ListPageDuplicates(ctx context.Context, sourcePageID string) ([]domain.PageDuplicate, error)
}
