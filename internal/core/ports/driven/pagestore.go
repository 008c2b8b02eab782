package driven

import (
	"context"

	"github.com/archivemed/dedup-cli/internal/core/domain"
)

// PageStore persists per-page fingerprints and review state.
type PageStore interface {
	// SavePage stores or updates a page.
	SavePage(ctx context.Context, page *domain.Page) error

	// GetPage retrieves a page by ID.
	// Returns domain.ErrNotFound if no such page exists.
	GetPage(ctx context.Context, id string) (*domain.Page, error)

	// GetFirstByHash returns the earliest-created page with the given hash,
	// excluding the page with the given ID so a page never resolves to
	// itself as its own source. Pages of the same document do match.
	// Returns domain.ErrNotFound when no other page carries the hash.
	GetFirstByHash(ctx context.Context, hash, excludePageID string) (*domain.Page, error)

	// ListByHash returns every page carrying the given hash, ordered by
	// creation time.
	ListByHash(ctx context.Context, hash string) ([]domain.Page, error)

	// ListByDocument returns a document's pages ordered by page number.
	ListByDocument(ctx context.Context, documentID string) ([]domain.Page, error)

	// UpdateReview records a page's review status, reviewer and note.
	UpdateReview(ctx context.Context, pageID string, status domain.PageStatus, reviewer, note string) error
}
