package driving

import "context"

// Maintenance exposes the background index upkeep operations. The
// scheduler drives these periodically; the CLI can invoke them directly.
type Maintenance interface {
	// RebuildLSH rebuilds the LSH index from all persisted signatures and
	// atomically swaps it in. Documents processed since the last rebuild
	// become visible to LSH queries only after this runs.
	RebuildLSH(ctx context.Context) error

	// RefitVocabulary refits the TF-IDF vocabulary on the retained corpus
	// and synchronously re-vectorizes every document. Without force, the
	// refit is skipped when the corpus has not grown since the last fit.
	RefitVocabulary(ctx context.Context, force bool) error
}
