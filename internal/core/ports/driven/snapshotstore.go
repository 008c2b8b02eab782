package driven

import "context"

// Snapshot blob names used by the indexing services.
const (
	SnapshotVectorizer = "vectorizer.json"
	SnapshotLSHIndex   = "lsh_index.json"
)

// SnapshotStore persists named opaque blobs such as the fitted vectorizer
// and the LSH index. Snapshots are caches: a corrupt or missing blob is
// reported as domain.ErrNotFound and the owning service rebuilds from the
// primary store.
type SnapshotStore interface {
	// Store atomically replaces the blob with the given name. Readers
	// never observe a partially written blob.
	Store(ctx context.Context, name string, data []byte) error

	// Load returns the blob with the given name.
	// Returns domain.ErrNotFound if the blob does not exist.
	Load(ctx context.Context, name string) ([]byte, error)
}
