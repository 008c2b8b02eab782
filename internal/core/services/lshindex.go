package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/archivemed/dedup-cli/internal/core/domain"
	"github.com/archivemed/dedup-cli/internal/core/ports/driven"
	"github.com/archivemed/dedup-cli/internal/fingerprint"
	"github.com/archivemed/dedup-cli/internal/logger"
	"github.com/archivemed/dedup-cli/internal/similarity"
)

// LSHService serves near-duplicate candidate queries from an immutable
// LSH index. The index is a point-in-time snapshot: documents ingested
// after the last rebuild are invisible to queries until Rebuild runs, and
// queries never block ingestion. Exact hashing and TF-IDF similarity do
// not depend on it, so a stale index only delays advisory candidates.
type LSHService struct {
	docStore  driven.DocumentStore
	snapshots driven.SnapshotStore
	threshold float64
	numPerm   int

	index atomic.Pointer[similarity.LSHIndex]

	// rebuildMu serialises rebuilds; queries stay lock-free.
	rebuildMu sync.Mutex
}

// NewLSHService creates an LSH service with no index loaded.
// Call LoadSnapshot or Rebuild to make queries available.
func NewLSHService(docStore driven.DocumentStore, snapshots driven.SnapshotStore, cfg domain.PipelineConfig) *LSHService {
	return &LSHService{
		docStore:  docStore,
		snapshots: snapshots,
		threshold: cfg.LSHJaccardThreshold,
		numPerm:   cfg.LSHNumPermutations,
	}
}

// LoadSnapshot restores the index from the snapshot store. A missing or
// corrupt snapshot leaves the service without an index; the persisted
// signatures remain the source of truth for the next rebuild.
func (s *LSHService) LoadSnapshot(ctx context.Context) error {
	data, err := s.snapshots.Load(ctx, driven.SnapshotLSHIndex)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load lsh snapshot: %w", err)
	}

	idx, err := similarity.DecodeLSHIndex(data)
	if err != nil {
		logger.Warn("LSH snapshot corrupt, index unavailable until rebuild: %v", err)
		return nil
	}

	s.index.Store(idx)
	logger.Debug("Loaded LSH snapshot: %d signatures", idx.Len())
	return nil
}

// Query returns candidate document IDs whose estimated Jaccard similarity
// with the signature meets the threshold. Returns
// domain.ErrIndexUnavailable when no index has been built yet.
func (s *LSHService) Query(sig fingerprint.Signature) ([]string, error) {
	idx := s.index.Load()
	if idx == nil {
		return nil, domain.ErrIndexUnavailable
	}
	return idx.Query(sig), nil
}

// Len returns the number of signatures in the current index.
func (s *LSHService) Len() int {
	idx := s.index.Load()
	if idx == nil {
		return 0
	}
	return idx.Len()
}

// Rebuild constructs a fresh index from every persisted signature,
// persists the snapshot and atomically swaps it in. Readers see either
// the old index or the new one, never an intermediate state.
func (s *LSHService) Rebuild(ctx context.Context) error {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	entries, err := s.docStore.ListSignatures(ctx)
	if err != nil {
		return fmt.Errorf("list signatures: %w", err)
	}

	sigs := make(map[string]fingerprint.Signature, len(entries))
	for _, e := range entries {
		sigs[e.DocumentID] = fingerprint.Signature(e.Signature)
	}

	idx := similarity.BuildLSH(s.threshold, s.numPerm, sigs)

	data, err := idx.Encode()
	if err != nil {
		return fmt.Errorf("encode lsh index: %w", err)
	}
	if err := s.snapshots.Store(ctx, driven.SnapshotLSHIndex, data); err != nil {
		return fmt.Errorf("store lsh snapshot: %w", err)
	}

	s.index.Store(idx)
	logger.Info("Rebuilt LSH index: %d signatures", idx.Len())
	return nil
}
