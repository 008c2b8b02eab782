package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/archivemed/dedup-cli/internal/core/domain"
	"github.com/archivemed/dedup-cli/internal/core/ports/driven"
	"github.com/archivemed/dedup-cli/internal/core/ports/driving"
	"github.com/archivemed/dedup-cli/internal/fingerprint"
	"github.com/archivemed/dedup-cli/internal/logger"
	"github.com/archivemed/dedup-cli/internal/similarity"
)

// Ensure PageTracker implements the interface.
var _ driving.PageReviewer = (*PageTracker)(nil)

// PageTracker fingerprints pages during ingestion and manages review of
// repeated pages. Matching during ingestion is hash equality; stored
// page vectors additionally support near-duplicate inspection within a
// document. Matched pages are recorded, never merged or removed.
type PageTracker struct {
	pages   driven.PageStore
	dupes   driven.DuplicateStore
	vectors driven.VectorStore
	vocab   *VocabularyService
	cfg     domain.PipelineConfig
}

// NewPageTracker creates a page tracker.
func NewPageTracker(
	pages driven.PageStore,
	dupes driven.DuplicateStore,
	vectors driven.VectorStore,
	vocab *VocabularyService,
	cfg domain.PipelineConfig,
) *PageTracker {
	return &PageTracker{
		pages:   pages,
		dupes:   dupes,
		vectors: vectors,
		vocab:   vocab,
		cfg:     cfg,
	}
}

// FingerprintPages hashes each page of a document, persists the page
// records and links every page whose hash was already seen, in this
// document or any other, to its first-seen source. Pages with no
// extractable text are skipped. When the vocabulary is fitted, a TF-IDF
// vector is stored per page for later inspection.
// Returns how many pages matched an earlier page.
func (t *PageTracker) FingerprintPages(ctx context.Context, documentID string, pageTexts []string, medicalConfidence float64) (int, error) {
	duplicates := 0

	for i, text := range pageTexts {
		normalized := fingerprint.Normalize(text)
		if normalized == "" {
			continue
		}

		page := &domain.Page{
			ID:                uuid.NewString(),
			DocumentID:        documentID,
			PageNumber:        i + 1,
			Hash:              fingerprint.ContentHash(text),
			TextSnippet:       snippet(text, t.cfg.SnippetLength),
			MedicalConfidence: medicalConfidence,
			Status:            domain.PageStatusPending,
			CreatedAt:         time.Now(),
		}
		if err := t.pages.SavePage(ctx, page); err != nil {
			return duplicates, fmt.Errorf("save page %d: %w", page.PageNumber, err)
		}

		// The page vector is an optional attribute; losing it costs
		// inspection detail, not a verdict.
		if vec, version, ok := t.vocab.Vectorize(text); ok {
			sv := &domain.StoredVector{
				OwnerID: page.ID,
				Kind:    domain.VectorKindPage,
				Version: version,
				Vector:  vec,
			}
			if err := t.vectors.Put(ctx, sv); err != nil {
				logger.Warn("Storing vector for page %s failed: %v", page.ID, err)
			}
		}

		// Only the page itself is excluded: repeated boilerplate within
		// one document is a duplicate like any other.
		source, err := t.pages.GetFirstByHash(ctx, page.Hash, page.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return duplicates, fmt.Errorf("lookup page hash: %w", err)
		}

		rel := &domain.PageDuplicate{
			SourcePageID:    source.ID,
			DuplicatePageID: page.ID,
			Similarity:      1.0,
			CreatedAt:       time.Now(),
		}
		if err := t.dupes.SavePageDuplicate(ctx, rel); err != nil {
			return duplicates, fmt.Errorf("save page duplicate: %w", err)
		}
		duplicates++
		logger.Debug("Page %d of %s duplicates page %s", page.PageNumber, documentID, source.ID)
	}

	return duplicates, nil
}

// SetStatus records a review decision on every page currently carrying
// the hash. The propagation is one-shot: pages fingerprinted after this
// call do not inherit the decision.
func (t *PageTracker) SetStatus(ctx context.Context, pageHash string, status domain.PageStatus, reviewer, note string) (int, error) {
	if status == "" {
		return 0, fmt.Errorf("%w: empty page status", domain.ErrInvalidInput)
	}

	pages, err := t.pages.ListByHash(ctx, pageHash)
	if err != nil {
		return 0, fmt.Errorf("list pages by hash: %w", err)
	}
	if len(pages) == 0 {
		return 0, fmt.Errorf("%w: no page with hash %s", domain.ErrNotFound, pageHash)
	}

	// First-seen page gets the reviewer's note verbatim; the rest are
	// annotated as propagated.
	first := pages[0]
	if err := t.pages.UpdateReview(ctx, first.ID, status, reviewer, note); err != nil {
		return 0, fmt.Errorf("update review: %w", err)
	}

	updated := 1
	for _, page := range pages[1:] {
		autoNote := fmt.Sprintf("propagated from page %s", first.ID)
		if note != "" {
			autoNote = fmt.Sprintf("%s: %s", autoNote, note)
		}
		if err := t.pages.UpdateReview(ctx, page.ID, status, reviewer, autoNote); err != nil {
			return updated, fmt.Errorf("propagate review to %s: %w", page.ID, err)
		}
		updated++
	}

	logger.Info("Marked %d page(s) with hash %s as %s", updated, pageHash, status)
	return updated, nil
}

// FindDuplicates returns all pages carrying the hash, first-seen first.
func (t *PageTracker) FindDuplicates(ctx context.Context, pageHash string) ([]domain.Page, error) {
	pages, err := t.pages.ListByHash(ctx, pageHash)
	if err != nil {
		return nil, fmt.Errorf("list pages by hash: %w", err)
	}
	return pages, nil
}

// ListByDocument returns a document's pages in page order.
func (t *PageTracker) ListByDocument(ctx context.Context, documentID string) ([]domain.Page, error) {
	return t.pages.ListByDocument(ctx, documentID)
}

// IntraDocumentDuplicates returns the duplicate page pairs whose
// endpoints both belong to the document: hash-equal pairs from the
// recorded edges, plus distinct-hash pairs whose stored page vectors
// meet the page similarity threshold.
func (t *PageTracker) IntraDocumentDuplicates(ctx context.Context, documentID string) ([]driving.PageMatch, error) {
	pages, err := t.pages.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}

	byID := make(map[string]domain.Page, len(pages))
	for _, page := range pages {
		byID[page.ID] = page
	}

	var matches []driving.PageMatch
	for _, page := range pages {
		edges, err := t.dupes.ListPageDuplicates(ctx, page.ID)
		if err != nil {
			return nil, fmt.Errorf("list page edges: %w", err)
		}
		for _, edge := range edges {
			dup, ok := byID[edge.DuplicatePageID]
			if !ok {
				continue
			}
			matches = append(matches, driving.PageMatch{
				SourcePageID:    page.ID,
				DuplicatePageID: dup.ID,
				SourcePage:      page.PageNumber,
				DuplicatePage:   dup.PageNumber,
				Similarity:      edge.Similarity,
				Method:          domain.MethodHash,
			})
		}
	}

	near, err := t.nearDuplicatePairs(ctx, pages)
	if err != nil {
		return nil, err
	}
	matches = append(matches, near...)

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].SourcePage != matches[j].SourcePage {
			return matches[i].SourcePage < matches[j].SourcePage
		}
		return matches[i].DuplicatePage < matches[j].DuplicatePage
	})
	return matches, nil
}

// nearDuplicatePairs compares the stored vectors of a document's pages.
// Only distinct-hash pairs vectorized under the same vocabulary version
// are compared; hash-equal pairs are already covered by the edges.
func (t *PageTracker) nearDuplicatePairs(ctx context.Context, pages []domain.Page) ([]driving.PageMatch, error) {
	type pageVector struct {
		page domain.Page
		sv   *domain.StoredVector
	}

	var vectored []pageVector
	for _, page := range pages {
		sv, err := t.vectors.Get(ctx, page.ID, domain.VectorKindPage)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("load page vector: %w", err)
		}
		vectored = append(vectored, pageVector{page: page, sv: sv})
	}

	var matches []driving.PageMatch
	for i := range vectored {
		for j := i + 1; j < len(vectored); j++ {
			a, b := vectored[i], vectored[j]
			if a.page.Hash == b.page.Hash || a.sv.Version != b.sv.Version {
				continue
			}
			sim := domain.Cosine(a.sv.Vector, b.sv.Vector)
			if sim < t.cfg.PageSimilarityThreshold {
				continue
			}
			matches = append(matches, driving.PageMatch{
				SourcePageID:    a.page.ID,
				DuplicatePageID: b.page.ID,
				SourcePage:      a.page.PageNumber,
				DuplicatePage:   b.page.PageNumber,
				Similarity:      sim,
				Method:          domain.MethodTFIDF,
			})
		}
	}
	return matches, nil
}

// InspectPages compares extracted page texts against each other with a
// vocabulary fitted on those pages alone, so it works on documents that
// were never ingested. A threshold of zero or less uses the configured
// page similarity threshold.
func (t *PageTracker) InspectPages(pageTexts []string, threshold float64) ([]driving.PageMatch, error) {
	if threshold <= 0 {
		threshold = t.cfg.PageSimilarityThreshold
	}

	pairs, err := similarity.AnalyzePages(pageTexts, threshold)
	if err != nil {
		return nil, fmt.Errorf("analyze pages: %w", err)
	}

	matches := make([]driving.PageMatch, len(pairs))
	for i, pair := range pairs {
		matches[i] = driving.PageMatch{
			SourcePage:    pair.PageA,
			DuplicatePage: pair.PageB,
			Similarity:    pair.Similarity,
			Method:        domain.MethodTFIDF,
		}
	}
	return matches, nil
}

// snippet bounds text to maxLen characters with newlines collapsed.
func snippet(text string, maxLen int) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if maxLen > 0 && len(collapsed) > maxLen {
		return collapsed[:maxLen]
	}
	return collapsed
}
