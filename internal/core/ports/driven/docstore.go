package driven

import (
	"context"

	"github.com/archivemed/dedup-cli/internal/core/domain"
)

// SignatureEntry pairs a document ID with its stored MinHash signature.
// Used when rebuilding the LSH index from persisted state.
type SignatureEntry struct {
	DocumentID string
	Signature  []uint64
}

// DocumentStore persists documents and their fingerprints.
// Backed by SQLite for metadata storage.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if no such document exists.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetByContentHash retrieves the document holding a content hash.
	// Returns domain.ErrNotFound if no document has the hash.
	GetByContentHash(ctx context.Context, hash string) (*domain.Document, error)

	// ClaimContentHash atomically records a content hash for a document.
	// If another document already holds the hash, the claim fails and the
	// existing holder is returned with domain.ErrAlreadyExists. The
	// check-and-insert must be atomic so concurrent uploads of identical
	// content cannot both claim uniqueness.
	ClaimContentHash(ctx context.Context, documentID, hash string) (*domain.Document, error)

	// ListDocuments returns all documents, optionally filtered by status.
	// An empty status returns everything. Ordered by creation time.
	ListDocuments(ctx context.Context, status domain.DocumentStatus) ([]domain.Document, error)

	// ListRetainedContent returns ID and content for every document whose
	// text was retained, for vocabulary refitting. Ordered by ID.
	ListRetainedContent(ctx context.Context) ([]domain.DocumentContent, error)

	// ListSignatures returns all stored MinHash signatures, for LSH index
	// rebuilds. Documents without a signature are omitted. Ordered by ID.
	ListSignatures(ctx context.Context) ([]SignatureEntry, error)

	// DeleteDocument removes a document and its pages, vectors and
	// duplicate relationships.
	DeleteDocument(ctx context.Context, id string) error

	// CountByStatus returns document counts keyed by status.
	CountByStatus(ctx context.Context) (map[domain.DocumentStatus]int, error)
}
