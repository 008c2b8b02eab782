package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var refitForce bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Maintain the similarity indexes",
	Long:  `Rebuild the LSH candidate index or refit the TF-IDF vocabulary.`,
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the LSH index from stored signatures",
	Long: `Rebuilds the LSH candidate index from all persisted MinHash
signatures and swaps it in atomically. Documents processed since the
last rebuild become visible to LSH queries.`,
	Args: cobra.NoArgs,
	RunE: runIndexRebuild,
}

var indexRefitCmd = &cobra.Command{
	Use:   "refit",
	Short: "Refit the TF-IDF vocabulary",
	Long: `Refits the TF-IDF vocabulary on the full retained corpus and
re-vectorizes every document. Without --force the refit is skipped when
the corpus has not grown since the last fit.`,
	Args: cobra.NoArgs,
	RunE: runIndexRefit,
}

func init() {
	indexRefitCmd.Flags().BoolVarP(&refitForce, "force", "f", false, "refit even if the corpus has not grown")

	indexCmd.AddCommand(indexRebuildCmd)
	indexCmd.AddCommand(indexRefitCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexRebuild(cmd *cobra.Command, _ []string) error {
	if maintenance == nil {
		return errors.New("maintenance service not configured")
	}

	if err := maintenance.RebuildLSH(context.Background()); err != nil {
		return fmt.Errorf("LSH rebuild failed: %w", err)
	}

	cmd.Println("LSH index rebuilt.")
	return nil
}

func runIndexRefit(cmd *cobra.Command, _ []string) error {
	if maintenance == nil {
		return errors.New("maintenance service not configured")
	}

	if err := maintenance.RefitVocabulary(context.Background(), refitForce); err != nil {
		return fmt.Errorf("vocabulary refit failed: %w", err)
	}

	cmd.Println("Vocabulary refitted.")
	return nil
}
