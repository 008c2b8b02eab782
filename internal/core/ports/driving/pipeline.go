package driving

import (
	"context"

	"github.com/archivemed/dedup-cli/internal/core/domain"
)

// ProcessResult summarises a single document's trip through the pipeline.
type ProcessResult struct {
	// Document is the persisted document in its terminal state.
	Document *domain.Document

	// LSHCandidates are document IDs the LSH index flagged as likely
	// near-duplicates. Advisory only; verdicts come from exact hashing
	// and TF-IDF similarity.
	LSHCandidates []string

	// PageDuplicates counts pages matched against earlier documents.
	PageDuplicates int
}

// SimilarMatch is one hit from an ad hoc similarity search.
type SimilarMatch struct {
	DocumentID string
	Filename   string
	Similarity float64
}

// DocumentPipeline ingests documents and answers similarity queries.
type DocumentPipeline interface {
	// Process runs a PDF through the full pipeline: extraction, page
	// fingerprinting, exact hashing, LSH lookup and TF-IDF similarity.
	// The returned document always carries a terminal status; processing
	// failures are recorded on the document rather than returned, so an
	// error return means the result itself could not be persisted.
	Process(ctx context.Context, path, filename, documentID string) (*ProcessResult, error)

	// SearchSimilar vectorizes the given text and returns stored documents
	// whose cosine similarity meets the threshold. Nothing is persisted.
	SearchSimilar(ctx context.Context, text string, threshold float64) ([]SimilarMatch, error)
}
