package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/archivemed/dedup-cli/internal/logger"
	"github.com/archivemed/dedup-cli/internal/watcher"
)

var (
	watchRate     float64
	watchSchedule bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and process incoming PDFs",
	Long: `Watches a directory and runs every new or modified PDF through
the deduplication pipeline. Runs until interrupted.

With --schedule the background maintenance scheduler also runs, keeping
the LSH index, the vocabulary and cluster labels up to date while
documents stream in.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Float64Var(&watchRate, "rate", 0, "maximum files per second (0 = unlimited)")
	watchCmd.Flags().BoolVar(&watchSchedule, "schedule", false, "run background maintenance tasks")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}
	if watchSchedule && schedulerService == nil {
		return errors.New("scheduler not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New(args[0], watchRate)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", args[0], err)
	}
	defer w.Close()

	paths, err := w.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", args[0], err)
	}

	if watchSchedule {
		go func() {
			if err := schedulerService.Start(ctx); err != nil {
				logger.Warn("scheduler stopped: %v", err)
			}
		}()
		defer func() {
			if err := schedulerService.Stop(); err != nil {
				logger.Warn("scheduler shutdown: %v", err)
			}
		}()
	}

	cmd.Printf("Watching %s for PDF files (Ctrl+C to stop)...\n", args[0])

	for path := range paths {
		documentID := uuid.NewString()
		result, err := pipelineService.Process(ctx, path, filepath.Base(path), documentID)
		if err != nil {
			cmd.PrintErrf("failed to process %s: %v\n", path, err)
			continue
		}

		doc := result.Document
		cmd.Printf("%s: %s", filepath.Base(path), doc.Status)
		if doc.MatchedDocID != "" {
			cmd.Printf(" (matches %s)", doc.MatchedDocID)
		}
		cmd.Println()
	}

	cmd.Println("Watch stopped.")
	return nil
}
