package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/archivemed/dedup-cli/internal/core/domain"
	"github.com/archivemed/dedup-cli/internal/core/ports/driven"
	"github.com/archivemed/dedup-cli/internal/core/ports/driving"
	"github.com/archivemed/dedup-cli/internal/logger"
	"github.com/archivemed/dedup-cli/internal/similarity"
)

// Ensure ClusteringService implements the interface.
var _ driving.ClusteringRunner = (*ClusteringService)(nil)

// ClusteringService groups stored documents by content similarity using
// DBSCAN over cosine distance. Runs are exclusive with themselves; the
// scheduler and the CLI may both trigger one, whichever starts second is
// rejected.
type ClusteringService struct {
	docStore driven.DocumentStore
	vecStore driven.VectorStore
	vocab    *VocabularyService
	cfg      domain.PipelineConfig

	running atomic.Bool
}

// NewClusteringService creates a clustering service.
func NewClusteringService(
	docStore driven.DocumentStore,
	vecStore driven.VectorStore,
	vocab *VocabularyService,
	cfg domain.PipelineConfig,
) *ClusteringService {
	return &ClusteringService{
		docStore: docStore,
		vecStore: vecStore,
		vocab:    vocab,
		cfg:      cfg,
	}
}

// Run clusters all documents with a vector from the current vocabulary
// version and persists a cluster label on each. Corpora smaller than the
// minimum cluster size are labelled outlier wholesale.
func (s *ClusteringService) Run(ctx context.Context) (*driving.ClusterSummary, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w: clustering", domain.ErrTaskInProgress)
	}
	defer s.running.Store(false)

	if !s.vocab.Fitted() {
		return nil, domain.ErrVectorizerNotFitted
	}
	version := s.vocab.Version()

	stored, err := s.vecStore.ListByVersion(ctx, domain.VectorKindDocument, version)
	if err != nil {
		return nil, fmt.Errorf("%w: list vectors: %w", domain.ErrClusteringFailed, err)
	}

	ids := make([]string, 0, len(stored))
	vectors := make([]domain.Vector, 0, len(stored))
	for _, sv := range stored {
		if len(sv.Vector) == 0 {
			continue
		}
		ids = append(ids, sv.OwnerID)
		vectors = append(vectors, sv.Vector)
	}

	summary := &driving.ClusterSummary{
		Documents:   len(ids),
		Assignments: make(map[string]string, len(ids)),
	}

	if len(ids) < s.cfg.MinClusterSize {
		for _, id := range ids {
			summary.Assignments[id] = domain.OutlierLabel
		}
		summary.Outliers = len(ids)
		if err := s.persistLabels(ctx, summary.Assignments); err != nil {
			return nil, err
		}
		logger.Info("Clustering: %d document(s), below minimum cluster size, all outliers", len(ids))
		return summary, nil
	}

	eps := 1.0 - s.cfg.ClusterThreshold
	labels := similarity.DBSCAN(vectors, eps, s.cfg.MinClusterSize)

	clusters := 0
	for i, label := range labels {
		if label == similarity.NoiseLabel {
			summary.Assignments[ids[i]] = domain.OutlierLabel
			summary.Outliers++
			continue
		}
		summary.Assignments[ids[i]] = fmt.Sprintf("cluster_%d", label)
		if label+1 > clusters {
			clusters = label + 1
		}
	}
	summary.Clusters = clusters

	if err := s.persistLabels(ctx, summary.Assignments); err != nil {
		return nil, err
	}

	logger.Info("Clustering: %d documents into %d cluster(s), %d outlier(s)",
		summary.Documents, summary.Clusters, summary.Outliers)
	return summary, nil
}

// persistLabels writes cluster labels back onto the documents. Documents
// labelled outlier keep their duplicate or error status; only unique
// documents transition to outlier.
func (s *ClusteringService) persistLabels(ctx context.Context, assignments map[string]string) error {
	for id, label := range assignments {
		doc, err := s.docStore.GetDocument(ctx, id)
		if err != nil {
			return fmt.Errorf("%w: get document %s: %w", domain.ErrClusteringFailed, id, err)
		}

		doc.ClusterLabel = label
		if label == domain.OutlierLabel && doc.Status == domain.StatusUnique {
			doc.Status = domain.StatusOutlier
		}
		doc.UpdatedAt = time.Now()

		if err := s.docStore.SaveDocument(ctx, doc); err != nil {
			return fmt.Errorf("%w: save document %s: %w", domain.ErrClusteringFailed, id, err)
		}
	}
	return nil
}
