// Package cli implements the cobra-based command line interface.
// Commands are registered on the package-level rootCmd in their init
// functions; services are injected once at startup via SetServices.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/archivemed/dedup-cli/internal/core/ports/driven"
	"github.com/archivemed/dedup-cli/internal/core/ports/driving"
	"github.com/archivemed/dedup-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "meddedup",
	Short: "Medical document deduplication",
	Long: `meddedup ingests medical PDF documents and detects duplicates.

Each document is fingerprinted with a content hash, a MinHash signature
and a TF-IDF vector. Exact duplicates are caught by hash, near duplicates
by cosine similarity, and repeated pages are tracked for human review.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
	SilenceUsage: true,
}

// Injected services. Commands check for nil and fail with a clear error
// when invoked unconfigured (e.g. in tests that exercise arg parsing).
var (
	pipelineService  driving.DocumentPipeline
	documentService  driving.DocumentService
	pageReviewer     driving.PageReviewer
	clusteringRunner driving.ClusteringRunner
	maintenance      driving.Maintenance
	schedulerService driving.Scheduler
	textExtractor    driven.TextExtractor
)

// Services bundles everything the commands need.
type Services struct {
	Pipeline   driving.DocumentPipeline
	Documents  driving.DocumentService
	Pages      driving.PageReviewer
	Clustering driving.ClusteringRunner
	Maintain   driving.Maintenance
	Scheduler  driving.Scheduler
	Extractor  driven.TextExtractor
}

// SetServices wires service implementations into the commands.
func SetServices(s Services) {
	pipelineService = s.Pipeline
	documentService = s.Documents
	pageReviewer = s.Pages
	clusteringRunner = s.Clustering
	maintenance = s.Maintain
	schedulerService = s.Scheduler
	textExtractor = s.Extractor
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}
