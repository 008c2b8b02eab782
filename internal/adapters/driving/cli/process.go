package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/archivemed/dedup-cli/internal/core/domain"
	"github.com/archivemed/dedup-cli/internal/logger"
)

var (
	processWorkers int
	processJSON    bool
)

var processCmd = &cobra.Command{
	Use:   "process [pdf-files...]",
	Short: "Run PDF files through the deduplication pipeline",
	Long: `Ingests one or more PDF files. Each file is fingerprinted and
classified as unique, an exact duplicate, or a content duplicate.
Files are processed concurrently; use --workers to bound parallelism.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().IntVarP(&processWorkers, "workers", "w", 4, "number of concurrent workers")
	processCmd.Flags().BoolVar(&processJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(processCmd)
}

// processOutput is the JSON shape for a single processed file.
type processOutput struct {
	File           string  `json:"file"`
	DocumentID     string  `json:"document_id"`
	Status         string  `json:"status"`
	MatchedDocID   string  `json:"matched_doc_id,omitempty"`
	Similarity     float64 `json:"similarity,omitempty"`
	ErrorStage     string  `json:"error_stage,omitempty"`
	PageCount      int     `json:"page_count"`
	PageDuplicates int     `json:"page_duplicates"`
	LSHCandidates  int     `json:"lsh_candidates"`
}

func runProcess(cmd *cobra.Command, args []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	workers := processWorkers
	if workers < 1 {
		workers = 1
	}

	ctx := context.Background()
	outputs := make([]processOutput, len(args))

	var mu sync.Mutex
	var failed int

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			documentID := uuid.NewString()
			logger.Debug("processing %s as %s", path, documentID)

			result, err := pipelineService.Process(gctx, path, filepath.Base(path), documentID)
			if err != nil {
				// Persist failure, not a pipeline verdict. Record it and
				// keep going with the remaining files.
				mu.Lock()
				outputs[i] = processOutput{File: path, DocumentID: documentID, Status: "store_error"}
				failed++
				mu.Unlock()
				logger.Warn("processing %s: %v", path, err)
				return nil
			}

			doc := result.Document
			mu.Lock()
			outputs[i] = processOutput{
				File:           path,
				DocumentID:     doc.ID,
				Status:         doc.Status.String(),
				MatchedDocID:   doc.MatchedDocID,
				Similarity:     doc.Similarity,
				ErrorStage:     doc.ErrorStage,
				PageCount:      doc.PageCount,
				PageDuplicates: result.PageDuplicates,
				LSHCandidates:  len(result.LSHCandidates),
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	if processJSON {
		data, err := json.MarshalIndent(outputs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	for _, out := range outputs {
		printProcessResult(cmd, out)
	}
	cmd.Printf("\nProcessed %d files (%d store errors)\n", len(args), failed)
	return nil
}

func printProcessResult(cmd *cobra.Command, out processOutput) {
	cmd.Printf("%s\n", out.File)
	cmd.Printf("  Document: %s\n", out.DocumentID)
	cmd.Printf("  Status:   %s\n", out.Status)

	switch domain.DocumentStatus(out.Status) {
	case domain.StatusExactDuplicate:
		cmd.Printf("  Matches:  %s (exact)\n", out.MatchedDocID)
	case domain.StatusContentDuplicate:
		cmd.Printf("  Matches:  %s (similarity %.4f)\n", out.MatchedDocID, out.Similarity)
	case domain.StatusError:
		cmd.Printf("  Failed:   %s\n", out.ErrorStage)
	}

	if out.PageCount > 0 {
		cmd.Printf("  Pages:    %d (%d seen before)\n", out.PageCount, out.PageDuplicates)
	}
	if out.LSHCandidates > 0 {
		cmd.Printf("  LSH:      %d candidate(s)\n", out.LSHCandidates)
	}
	cmd.Println()
}
