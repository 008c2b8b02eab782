package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/archivemed/dedup-cli/internal/core/domain"
	"github.com/archivemed/dedup-cli/internal/core/ports/driven"
	"github.com/archivemed/dedup-cli/internal/logger"
	"github.com/archivemed/dedup-cli/internal/similarity"
)

// VocabularyService owns the TF-IDF vectorizer shared by the pipeline,
// similarity search and clustering. Reads take a shared lock; refits swap
// in a freshly fitted vectorizer under the exclusive lock, so in-flight
// vectorizations always see a consistent vocabulary.
type VocabularyService struct {
	docStore  driven.DocumentStore
	vecStore  driven.VectorStore
	snapshots driven.SnapshotStore

	mu         sync.RWMutex
	vectorizer *similarity.Vectorizer

	// refitMu guards refitting. The channel is non-nil while a refit is
	// in flight and is closed when it completes, so waiters can block on
	// the refit without holding any lock.
	refitMu   sync.Mutex
	refitting chan struct{}
}

// NewVocabularyService creates a vocabulary service with an unfitted
// vectorizer. Call LoadSnapshot to restore persisted state.
func NewVocabularyService(
	docStore driven.DocumentStore,
	vecStore driven.VectorStore,
	snapshots driven.SnapshotStore,
) *VocabularyService {
	return &VocabularyService{
		docStore:   docStore,
		vecStore:   vecStore,
		snapshots:  snapshots,
		vectorizer: similarity.NewVectorizer(),
	}
}

// LoadSnapshot restores the fitted vectorizer from the snapshot store.
// A missing or corrupt snapshot leaves the service unfitted; the snapshot
// is a cache, the document store remains the source of truth.
func (s *VocabularyService) LoadSnapshot(ctx context.Context) error {
	data, err := s.snapshots.Load(ctx, driven.SnapshotVectorizer)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load vectorizer snapshot: %w", err)
	}

	v, err := similarity.DecodeVectorizer(data)
	if err != nil {
		logger.Warn("Vectorizer snapshot corrupt, starting unfitted: %v", err)
		return nil
	}

	s.mu.Lock()
	s.vectorizer = v
	s.mu.Unlock()

	logger.Debug("Loaded vectorizer snapshot: version %d, %d terms", v.Version, len(v.Vocabulary))
	return nil
}

// Fitted reports whether the vectorizer has a vocabulary.
func (s *VocabularyService) Fitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vectorizer.Fitted()
}

// Version returns the current vocabulary version. Zero means unfitted.
func (s *VocabularyService) Version() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vectorizer.Version
}

// Vectorize transforms text with the current vocabulary. The returned
// version identifies the vocabulary that produced the vector. ok is false
// when the vectorizer is unfitted or the text is empty after
// preprocessing; no zero vectors are ever returned.
func (s *VocabularyService) Vectorize(text string) (vec domain.Vector, version int, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vec, ok = s.vectorizer.Transform(text)
	return vec, s.vectorizer.Version, ok
}

// beginRefit marks a refit as in flight. Returns false with the
// existing completion channel when one is already running.
func (s *VocabularyService) beginRefit() (chan struct{}, bool) {
	s.refitMu.Lock()
	defer s.refitMu.Unlock()
	if s.refitting != nil {
		return s.refitting, false
	}
	ch := make(chan struct{})
	s.refitting = ch
	return ch, true
}

// endRefit clears the in-flight marker and releases all waiters.
func (s *VocabularyService) endRefit(ch chan struct{}) {
	s.refitMu.Lock()
	s.refitting = nil
	s.refitMu.Unlock()
	close(ch)
}

// AwaitRefit blocks until the in-flight refit, if any, has completed.
func (s *VocabularyService) AwaitRefit(ctx context.Context) error {
	s.refitMu.Lock()
	ch := s.refitting
	s.refitMu.Unlock()
	if ch == nil {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Refit fits a new vocabulary on every retained document text, bumps the
// version, re-vectorizes all documents synchronously and persists the new
// vectors before the snapshot is stored. Without force the refit is
// skipped when the corpus has not grown since the last fit. A concurrent
// refit is rejected with domain.ErrRefitInProgress; callers that only
// need a current vocabulary can AwaitRefit instead of failing.
func (s *VocabularyService) Refit(ctx context.Context, force bool) error {
	ch, ok := s.beginRefit()
	if !ok {
		return domain.ErrRefitInProgress
	}
	defer s.endRefit(ch)

	corpus, err := s.docStore.ListRetainedContent(ctx)
	if err != nil {
		return fmt.Errorf("list corpus: %w", err)
	}

	s.mu.RLock()
	current := s.vectorizer
	s.mu.RUnlock()

	if !force && current.Fitted() && len(corpus) <= current.DocCount {
		logger.Debug("Refit skipped: corpus unchanged at %d documents", len(corpus))
		return nil
	}

	texts := make([]string, len(corpus))
	for i, dc := range corpus {
		texts[i] = dc.Content
	}

	next := similarity.NewVectorizer()
	next.Version = current.Version
	if err := next.Fit(texts); err != nil {
		return fmt.Errorf("fit vocabulary: %w", err)
	}

	logger.Info("Fitted vocabulary version %d: %d terms over %d documents",
		next.Version, len(next.Vocabulary), next.DocCount)

	// Re-vectorize the whole corpus under the new vocabulary before it
	// becomes visible, so similarity search never mixes versions.
	for _, dc := range corpus {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		vec, ok := next.Transform(dc.Content)
		if !ok {
			continue
		}
		sv := &domain.StoredVector{
			OwnerID: dc.ID,
			Kind:    domain.VectorKindDocument,
			Version: next.Version,
			Vector:  vec,
		}
		if err := s.vecStore.Put(ctx, sv); err != nil {
			return fmt.Errorf("store vector for %s: %w", dc.ID, err)
		}
	}

	s.mu.Lock()
	s.vectorizer = next
	s.mu.Unlock()

	data, err := next.Encode()
	if err != nil {
		return fmt.Errorf("encode vectorizer: %w", err)
	}
	if err := s.snapshots.Store(ctx, driven.SnapshotVectorizer, data); err != nil {
		return fmt.Errorf("store vectorizer snapshot: %w", err)
	}

	return nil
}
