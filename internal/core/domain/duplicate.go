package domain

import "time"

// DetectionMethod identifies which signal produced a duplicate edge.
type DetectionMethod string

// Available detection methods.
const (
	// MethodHash is an exact content-hash match.
	MethodHash DetectionMethod = "hash"

	// MethodLSH is a MinHash/LSH candidate match.
	MethodLSH DetectionMethod = "lsh"

	// MethodTFIDF is a TF-IDF cosine-similarity match.
	MethodTFIDF DetectionMethod = "tfidf"
)

// IsValid returns true if the detection method is recognised.
func (m DetectionMethod) IsValid() bool {
	switch m {
	case MethodHash, MethodLSH, MethodTFIDF:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m DetectionMethod) String() string {
	return string(m)
}

// DuplicateRelationship is a directed document-level duplicate edge.
// The first-seen document is always the source, so (A,B) and (B,A) are
// never both stored for the same pair.
type DuplicateRelationship struct {
	// SourceID is the first-seen document.
	SourceID string

	// DuplicateID is the later document found to duplicate the source.
	DuplicateID string

	// Similarity is the similarity score (1.0 for hash matches).
	Similarity float64

	// Method is the detection signal that produced this edge.
	Method DetectionMethod

	// CreatedAt is when the edge was recorded.
	CreatedAt time.Time
}

// PageDuplicate is a directed page-level duplicate edge under the
// hash-equality relation. The first-seen page is the source. Pages are
// never merged or deleted automatically; review is an external decision.
type PageDuplicate struct {
	// SourcePageID is the first page seen with this content hash.
	SourcePageID string

	// DuplicatePageID is the later page with the same hash.
	DuplicatePageID string

	// Similarity is 1.0 for hash-equal pages.
	Similarity float64

	// CreatedAt is when the edge was recorded.
	CreatedAt time.Time
}
