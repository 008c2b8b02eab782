package driving

import (
	"context"

	"github.com/archivemed/dedup-cli/internal/core/domain"
)

// PageMatch is one duplicate page pair within a document.
type PageMatch struct {
	// SourcePageID and DuplicatePageID identify the stored pages. Empty
	// for matches computed on the fly from extracted page texts.
	SourcePageID    string
	DuplicatePageID string

	// SourcePage and DuplicatePage are 1-based page numbers.
	SourcePage    int
	DuplicatePage int

	// Similarity is 1.0 for hash matches, cosine similarity otherwise.
	Similarity float64

	// Method is the signal that produced the match.
	Method domain.DetectionMethod
}

// PageReviewer manages human review of repeated pages.
type PageReviewer interface {
	// SetStatus records a review decision on every page carrying the
	// hash, then propagates the status once to all currently-known
	// duplicate pages. Pages discovered later do not inherit it.
	SetStatus(ctx context.Context, pageHash string, status domain.PageStatus, reviewer, note string) (int, error)

	// FindDuplicates returns every page carrying the hash, ordered by
	// creation time; the first entry is the first-seen source.
	FindDuplicates(ctx context.Context, pageHash string) ([]domain.Page, error)

	// ListByDocument returns a document's pages in page order.
	ListByDocument(ctx context.Context, documentID string) ([]domain.Page, error)

	// IntraDocumentDuplicates returns duplicate page pairs where both
	// pages belong to the given document: hash-equal pairs from the
	// recorded edges plus near-duplicate pairs found by comparing the
	// stored page vectors. Ordered by source page number.
	IntraDocumentDuplicates(ctx context.Context, documentID string) ([]PageMatch, error)

	// InspectPages compares a document's extracted page texts against
	// each other with a vocabulary fitted on those pages alone. A
	// threshold of zero or less uses the configured page similarity
	// threshold. Nothing is persisted.
	InspectPages(pageTexts []string, threshold float64) ([]PageMatch, error)
}
