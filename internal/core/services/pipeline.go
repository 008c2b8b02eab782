package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/archivemed/dedup-cli/internal/core/domain"
	"github.com/archivemed/dedup-cli/internal/core/ports/driven"
	"github.com/archivemed/dedup-cli/internal/core/ports/driving"
	"github.com/archivemed/dedup-cli/internal/fingerprint"
	"github.com/archivemed/dedup-cli/internal/logger"
)

// Ensure PipelineService implements the interface.
var _ driving.DocumentPipeline = (*PipelineService)(nil)

// PipelineService runs documents through the deduplication pipeline:
// extraction, page fingerprinting, exact hashing, LSH candidate lookup
// and TF-IDF similarity. Failures land on the document as a terminal
// error status naming the failed stage; Process itself only errors when
// that terminal state cannot be persisted.
type PipelineService struct {
	docStore  driven.DocumentStore
	vecStore  driven.VectorStore
	dupStore  driven.DuplicateStore
	extractor driven.TextExtractor
	pages     *PageTracker
	vocab     *VocabularyService
	lsh       *LSHService
	cfg       domain.PipelineConfig
}

// NewPipelineService creates the pipeline orchestrator.
func NewPipelineService(
	docStore driven.DocumentStore,
	vecStore driven.VectorStore,
	dupStore driven.DuplicateStore,
	extractor driven.TextExtractor,
	pages *PageTracker,
	vocab *VocabularyService,
	lsh *LSHService,
	cfg domain.PipelineConfig,
) *PipelineService {
	return &PipelineService{
		docStore:  docStore,
		vecStore:  vecStore,
		dupStore:  dupStore,
		extractor: extractor,
		pages:     pages,
		vocab:     vocab,
		lsh:       lsh,
		cfg:       cfg,
	}
}

// Process ingests one PDF. The returned document always carries a
// terminal status.
//
//nolint:gocyclo // Pipeline orchestration with sequential stages
func (p *PipelineService) Process(ctx context.Context, path, filename, documentID string) (result *driving.ProcessResult, err error) {
	if documentID == "" {
		documentID = uuid.NewString()
	}

	doc := &domain.Document{
		ID:        documentID,
		Filename:  filename,
		Status:    domain.StatusProcessing,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := p.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	// Anything that escapes a stage lands the document in a terminal
	// error state rather than crashing the worker. Fingerprints persisted
	// before the panic stay persisted.
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Pipeline panic for %s: %v", doc.ID, r)
			result, err = p.failDocument(ctx, doc, domain.StagePipelineCritical, fmt.Errorf("panic: %v", r))
		}
	}()

	logger.Section(fmt.Sprintf("Processing %s", filename))

	// 1. EXTRACT TEXT (timeout-bounded)
	text, pageTexts, extractErr := p.extract(ctx, path)
	if extractErr != nil {
		return p.failDocument(ctx, doc, domain.StageTextExtraction, extractErr)
	}
	normalized := fingerprint.Normalize(text)
	if len(normalized) < p.cfg.MinTextLength {
		return p.failDocument(ctx, doc, domain.StageTextExtraction,
			fmt.Errorf("%w: %d characters after normalisation, need %d",
				domain.ErrExtractionFailed, len(normalized), p.cfg.MinTextLength))
	}
	doc.Content = text
	doc.PageCount = len(pageTexts)
	logger.Debug("Extracted %d pages, %d characters", doc.PageCount, len(text))

	// 2. FINGERPRINT PAGES (always runs, even if the document later turns
	// out to be a duplicate)
	pageDupes, pageErr := p.pages.FingerprintPages(ctx, doc.ID, pageTexts, 0)
	if pageErr != nil {
		logger.Warn("Page fingerprinting incomplete for %s: %v", doc.ID, pageErr)
	}

	// 3. CONTENT HASH + ATOMIC CLAIM
	doc.ContentHash = fingerprint.ContentHash(text)
	existing, claimErr := p.docStore.ClaimContentHash(ctx, doc.ID, doc.ContentHash)
	if claimErr != nil {
		if !errors.Is(claimErr, domain.ErrAlreadyExists) {
			return p.failDocument(ctx, doc, domain.StageHashComputation, claimErr)
		}

		logger.Info("Exact duplicate of %s", existing.ID)
		doc.Status = domain.StatusExactDuplicate
		doc.MatchedDocID = existing.ID
		doc.Similarity = 1.0
		if err := p.finishDocument(ctx, doc); err != nil {
			return nil, err
		}
		rel := &domain.DuplicateRelationship{
			SourceID:    existing.ID,
			DuplicateID: doc.ID,
			Similarity:  1.0,
			Method:      domain.MethodHash,
			CreatedAt:   time.Now(),
		}
		if err := p.dupStore.SaveDocumentDuplicate(ctx, rel); err != nil {
			return nil, fmt.Errorf("save duplicate edge: %w", err)
		}
		return &driving.ProcessResult{Document: doc, PageDuplicates: pageDupes}, nil
	}

	// 4. MINHASH + LSH CANDIDATES (advisory; a missing index is not an
	// error, the document simply gets no candidates until a rebuild)
	sig := fingerprint.MinHash(text, p.cfg.LSHNumPermutations)
	doc.MinHash = sig
	if err := p.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save signature: %w", err)
	}

	var candidates []string
	if cands, lshErr := p.lsh.Query(sig); lshErr != nil {
		if !errors.Is(lshErr, domain.ErrIndexUnavailable) {
			logger.Warn("LSH query failed for %s: %v", doc.ID, lshErr)
		}
	} else {
		for _, id := range cands {
			if id != doc.ID {
				candidates = append(candidates, id)
			}
		}
		if len(candidates) > 0 {
			logger.Debug("LSH candidates: %v", candidates)
		}
	}

	// 5. VECTORIZE. When the vocabulary cannot represent the text, either
	// because it is unfitted or because the corpus has outgrown it, refit
	// on the retained corpus (which now includes this document) and retry.
	// A refit already running in another worker is waited out rather than
	// treated as a failure; if its vocabulary still predates this
	// document, the second pass runs a refit of our own.
	vec, version, ok := p.vocab.Vectorize(text)
	for attempt := 0; !ok && attempt < 2; attempt++ {
		refitErr := p.vocab.Refit(ctx, false)
		if errors.Is(refitErr, domain.ErrRefitInProgress) {
			refitErr = p.vocab.AwaitRefit(ctx)
		}
		if refitErr != nil {
			return p.failDocument(ctx, doc, domain.StageTFIDFVectorization, refitErr)
		}
		vec, version, ok = p.vocab.Vectorize(text)
	}
	if !ok {
		return p.failDocument(ctx, doc, domain.StageTFIDFVectorization,
			fmt.Errorf("%w: no usable terms after preprocessing", domain.ErrEmptyText))
	}

	sv := &domain.StoredVector{
		OwnerID: doc.ID,
		Kind:    domain.VectorKindDocument,
		Version: version,
		Vector:  vec,
	}
	if putErr := p.vecStore.Put(ctx, sv); putErr != nil {
		return p.failDocument(ctx, doc, domain.StageTFIDFVectorization, putErr)
	}

	// 6. SIMILARITY SEARCH
	matchID, matchSim, searchErr := p.bestMatch(ctx, doc.ID, vec, version)
	if searchErr != nil {
		return p.failDocument(ctx, doc, domain.StageSimilaritySearch, searchErr)
	}

	if matchID != "" && matchSim >= p.cfg.DocSimilarityThreshold {
		logger.Info("Content duplicate of %s (similarity %.4f)", matchID, matchSim)
		doc.Status = domain.StatusContentDuplicate
		doc.MatchedDocID = matchID
		doc.Similarity = matchSim
		if err := p.finishDocument(ctx, doc); err != nil {
			return nil, err
		}
		rel := &domain.DuplicateRelationship{
			SourceID:    matchID,
			DuplicateID: doc.ID,
			Similarity:  matchSim,
			Method:      domain.MethodTFIDF,
			CreatedAt:   time.Now(),
		}
		if err := p.dupStore.SaveDocumentDuplicate(ctx, rel); err != nil {
			return nil, fmt.Errorf("save duplicate edge: %w", err)
		}
	} else {
		logger.Info("Unique document %s", doc.ID)
		doc.Status = domain.StatusUnique
		if err := p.finishDocument(ctx, doc); err != nil {
			return nil, err
		}
	}

	return &driving.ProcessResult{
		Document:       doc,
		LSHCandidates:  candidates,
		PageDuplicates: pageDupes,
	}, nil
}

// SearchSimilar vectorizes text and returns stored documents meeting the
// threshold, most similar first. Nothing is persisted.
func (p *PipelineService) SearchSimilar(ctx context.Context, text string, threshold float64) ([]driving.SimilarMatch, error) {
	vec, version, ok := p.vocab.Vectorize(text)
	if !ok {
		if !p.vocab.Fitted() {
			return nil, domain.ErrVectorizerNotFitted
		}
		return nil, fmt.Errorf("%w: no usable terms after preprocessing", domain.ErrEmptyText)
	}

	stored, err := p.vecStore.ListByVersion(ctx, domain.VectorKindDocument, version)
	if err != nil {
		return nil, fmt.Errorf("list vectors: %w", err)
	}

	var matches []driving.SimilarMatch
	for _, sv := range stored {
		sim := domain.Cosine(vec, sv.Vector)
		if sim < threshold {
			continue
		}
		match := driving.SimilarMatch{DocumentID: sv.OwnerID, Similarity: sim}
		if doc, docErr := p.docStore.GetDocument(ctx, sv.OwnerID); docErr == nil {
			match.Filename = doc.Filename
		}
		matches = append(matches, match)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].DocumentID < matches[j].DocumentID
	})
	return matches, nil
}

// extract pulls full text and per-page text under the stage timeout.
func (p *PipelineService) extract(ctx context.Context, path string) (string, []string, error) {
	extractCtx := ctx
	if p.cfg.StageTimeout > 0 {
		var cancel context.CancelFunc
		extractCtx, cancel = context.WithTimeout(ctx, p.cfg.StageTimeout)
		defer cancel()
	}

	text, err := p.extractor.ExtractText(extractCtx, path)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}
	pageTexts, err := p.extractor.ExtractPages(extractCtx, path)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}
	return text, pageTexts, nil
}

// bestMatch finds the most similar stored document vector, excluding the
// document itself. Only vectors of the same vocabulary version compare.
func (p *PipelineService) bestMatch(ctx context.Context, selfID string, vec domain.Vector, version int) (string, float64, error) {
	stored, err := p.vecStore.ListByVersion(ctx, domain.VectorKindDocument, version)
	if err != nil {
		return "", 0, fmt.Errorf("list vectors: %w", err)
	}

	bestID := ""
	bestSim := 0.0
	for _, sv := range stored {
		if sv.OwnerID == selfID {
			continue
		}
		sim := domain.Cosine(vec, sv.Vector)
		if sim > bestSim || (sim == bestSim && bestID != "" && sv.OwnerID < bestID) {
			bestID = sv.OwnerID
			bestSim = sim
		}
	}
	return bestID, bestSim, nil
}

// failDocument persists a terminal error state naming the failed stage.
func (p *PipelineService) failDocument(ctx context.Context, doc *domain.Document, stage string, cause error) (*driving.ProcessResult, error) {
	logger.Warn("Stage %s failed for %s: %v", stage, doc.ID, cause)

	doc.Status = domain.StatusError
	doc.ErrorStage = stage
	if err := p.finishDocument(ctx, doc); err != nil {
		return nil, err
	}
	return &driving.ProcessResult{Document: doc}, nil
}

// finishDocument persists a document's terminal state.
func (p *PipelineService) finishDocument(ctx context.Context, doc *domain.Document) error {
	doc.UpdatedAt = time.Now()
	if err := p.docStore.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("persist %s state: %w", doc.Status, err)
	}
	return nil
}
