package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	searchThreshold float64
	searchText      bool
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [pdf-file]",
	Short: "Find stored documents similar to a file",
	Long: `Extracts the text of a PDF and returns stored documents whose
TF-IDF cosine similarity meets the threshold. Nothing is stored.
With --text the argument is treated as literal text instead of a path.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Float64VarP(&searchThreshold, "threshold", "t", 0.85, "minimum cosine similarity")
	searchCmd.Flags().BoolVar(&searchText, "text", false, "treat the argument as literal text")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	ctx := context.Background()

	text := args[0]
	if !searchText {
		if textExtractor == nil {
			return errors.New("text extractor not configured")
		}
		extracted, err := textExtractor.ExtractText(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to extract text: %w", err)
		}
		text = extracted
	}

	matches, err := pipelineService.SearchSimilar(ctx, text, searchThreshold)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(matches, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(matches) == 0 {
		cmd.Printf("No documents at or above similarity %.2f\n", searchThreshold)
		return nil
	}

	cmd.Printf("Similar documents for %s:\n\n", filepath.Base(args[0]))
	for _, m := range matches {
		cmd.Printf("  %.4f  %s  %s\n", m.Similarity, m.DocumentID, m.Filename)
	}
	cmd.Printf("\nTotal: %d matches\n", len(matches))
	return nil
}
