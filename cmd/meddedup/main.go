// Command meddedup is the medical document deduplication CLI.
package main

import (
	"context"
	"fmt"
	"os"

	configfile "github.com/archivemed/dedup-cli/internal/adapters/driven/config/file"
	pdfextractor "github.com/archivemed/dedup-cli/internal/adapters/driven/extractor/pdf"
	"github.com/archivemed/dedup-cli/internal/adapters/driven/snapshot"
	"github.com/archivemed/dedup-cli/internal/adapters/driven/storage/sqlite"
	"github.com/archivemed/dedup-cli/internal/adapters/driving/cli"
	"github.com/archivemed/dedup-cli/internal/core/services"
	"github.com/archivemed/dedup-cli/internal/logger"
)

// version is overridden at build time:
//
//	go build -ldflags "-X main.version=1.0.0"
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("initialising config: %w", err)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("initialising storage: %w", err)
	}
	defer store.Close()

	snapshots, err := snapshot.NewStore("")
	if err != nil {
		return fmt.Errorf("initialising snapshot store: %w", err)
	}

	pipelineCfg := configfile.PipelineConfigFrom(configStore)
	schedulerCfg := configfile.SchedulerConfigFrom(configStore)

	docStore := store.DocumentStore()
	pageStore := store.PageStore()
	vecStore := store.VectorStore()
	dupStore := store.DuplicateStore()

	vocab := services.NewVocabularyService(docStore, vecStore, snapshots)
	lsh := services.NewLSHService(docStore, snapshots, pipelineCfg)

	// Snapshots are caches; failing to restore one just means the first
	// rebuild starts cold.
	ctx := context.Background()
	if err := vocab.LoadSnapshot(ctx); err != nil {
		logger.Warn("vectorizer snapshot not restored: %v", err)
	}
	if err := lsh.LoadSnapshot(ctx); err != nil {
		logger.Warn("LSH snapshot not restored: %v", err)
	}

	pages := services.NewPageTracker(pageStore, dupStore, vecStore, vocab, pipelineCfg)
	extractor := pdfextractor.NewExtractor()

	pipeline := services.NewPipelineService(
		docStore, vecStore, dupStore, extractor, pages, vocab, lsh, pipelineCfg)
	clustering := services.NewClusteringService(docStore, vecStore, vocab, pipelineCfg)
	maintain := services.NewMaintenanceService(vocab, lsh)
	scheduler := services.NewScheduler(schedulerCfg, store.SchedulerStore(), maintain, clustering)
	documents := services.NewDocumentService(docStore, dupStore)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Pipeline:   pipeline,
		Documents:  documents,
		Pages:      pages,
		Clustering: clustering,
		Maintain:   maintain,
		Scheduler:  scheduler,
		Extractor:  extractor,
	})

	return cli.Execute()
}
