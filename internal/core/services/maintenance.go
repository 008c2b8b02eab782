package services

import (
	"context"

	"github.com/archivemed/dedup-cli/internal/core/ports/driving"
)

// Ensure MaintenanceService implements the interface.
var _ driving.Maintenance = (*MaintenanceService)(nil)

// MaintenanceService bundles the index upkeep operations behind a single
// driving port for the scheduler and the CLI.
type MaintenanceService struct {
	vocab *VocabularyService
	lsh   *LSHService
}

// NewMaintenanceService creates a maintenance facade.
func NewMaintenanceService(vocab *VocabularyService, lsh *LSHService) *MaintenanceService {
	return &MaintenanceService{vocab: vocab, lsh: lsh}
}

// RebuildLSH rebuilds the LSH index from persisted signatures.
func (m *MaintenanceService) RebuildLSH(ctx context.Context) error {
	return m.lsh.Rebuild(ctx)
}

// RefitVocabulary refits the TF-IDF vocabulary on the retained corpus.
func (m *MaintenanceService) RefitVocabulary(ctx context.Context, force bool) error {
	return m.vocab.Refit(ctx, force)
}
