package driven

import (
	"context"

	"github.com/archivemed/dedup-cli/internal/core/domain"
)

// VectorStore persists sparse TF-IDF vectors for documents and pages.
// Vectors are versioned by the vocabulary that produced them; similarity
// search only compares vectors of the same version.
type VectorStore interface {
	// Put stores or replaces the vector for an owner.
	Put(ctx context.Context, vec *domain.StoredVector) error

	// Get retrieves the vector for an owner.
	// Returns domain.ErrNotFound if no vector is stored.
	Get(ctx context.Context, ownerID string, kind domain.VectorKind) (*domain.StoredVector, error)

	// ListByVersion returns all vectors of a kind produced by the given
	// vocabulary version. Ordered by owner ID.
	ListByVersion(ctx context.Context, kind domain.VectorKind, version int) ([]domain.StoredVector, error)

	// DeleteByOwner removes all vectors belonging to an owner.
	DeleteByOwner(ctx context.Context, ownerID string) error
}
