package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archivemed/dedup-cli/internal/core/domain"
)

var (
	pagesReviewer         string
	pagesNote             string
	pagesInspectThreshold float64
)

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Inspect and review page fingerprints",
	Long:  `List a document's pages, find repeats of a page, or record review decisions.`,
}

var pagesListCmd = &cobra.Command{
	Use:   "list [document-id]",
	Short: "List a document's pages",
	Args:  cobra.ExactArgs(1),
	RunE:  runPagesList,
}

var pagesDuplicatesCmd = &cobra.Command{
	Use:   "duplicates [page-hash]",
	Short: "Show every page carrying a hash",
	Long: `Shows every stored page with the given content hash, ordered by
creation time. The first entry is the first-seen source page.`,
	Args: cobra.ExactArgs(1),
	RunE: runPagesDuplicates,
}

var pagesIntraCmd = &cobra.Command{
	Use:   "intra [document-id]",
	Short: "Show duplicate pages within one document",
	Long: `Shows duplicate page pairs whose pages both belong to the given
document: hash-equal pages plus near-duplicates found by comparing the
stored page vectors.`,
	Args: cobra.ExactArgs(1),
	RunE: runPagesIntra,
}

var pagesInspectCmd = &cobra.Command{
	Use:   "inspect [pdf-file]",
	Short: "Inspect a PDF for internal duplicate pages",
	Long: `Extracts the PDF's pages and compares them against each other
with a vocabulary fitted on those pages alone. Works on documents that
were never ingested; nothing is persisted.`,
	Args: cobra.ExactArgs(1),
	RunE: runPagesInspect,
}

var pagesMarkCmd = &cobra.Command{
	Use:   "mark [page-hash] [status]",
	Short: "Record a review decision for a page hash",
	Long: `Sets the review status on every page carrying the hash and
propagates the decision once to all currently-known duplicate pages.
Pages ingested later do not inherit the decision.`,
	Args: cobra.ExactArgs(2),
	RunE: runPagesMark,
}

func init() {
	pagesMarkCmd.Flags().StringVarP(&pagesReviewer, "reviewer", "r", "", "who is making the decision")
	pagesMarkCmd.Flags().StringVarP(&pagesNote, "note", "m", "", "review note")
	pagesInspectCmd.Flags().Float64VarP(&pagesInspectThreshold, "threshold", "t", 0,
		"similarity threshold, 0 uses the configured default")

	pagesCmd.AddCommand(pagesListCmd)
	pagesCmd.AddCommand(pagesDuplicatesCmd)
	pagesCmd.AddCommand(pagesIntraCmd)
	pagesCmd.AddCommand(pagesInspectCmd)
	pagesCmd.AddCommand(pagesMarkCmd)
	rootCmd.AddCommand(pagesCmd)
}

func runPagesList(cmd *cobra.Command, args []string) error {
	if pageReviewer == nil {
		return errors.New("page service not configured")
	}

	documentID := args[0]
	pages, err := pageReviewer.ListByDocument(context.Background(), documentID)
	if err != nil {
		return fmt.Errorf("failed to list pages: %w", err)
	}

	if len(pages) == 0 {
		cmd.Printf("No pages found for document: %s\n", documentID)
		return nil
	}

	cmd.Printf("Pages for document %s:\n\n", documentID)
	for i := range pages {
		printPage(cmd, &pages[i])
	}
	cmd.Printf("Total: %d pages\n", len(pages))
	return nil
}

func runPagesDuplicates(cmd *cobra.Command, args []string) error {
	if pageReviewer == nil {
		return errors.New("page service not configured")
	}

	hash := args[0]
	pages, err := pageReviewer.FindDuplicates(context.Background(), hash)
	if err != nil {
		return fmt.Errorf("failed to find pages: %w", err)
	}

	if len(pages) == 0 {
		cmd.Printf("No pages found with hash: %s\n", hash)
		return nil
	}

	cmd.Printf("Pages with hash %s (first entry is the source):\n\n", hash)
	for i := range pages {
		printPage(cmd, &pages[i])
	}
	return nil
}

func runPagesIntra(cmd *cobra.Command, args []string) error {
	if pageReviewer == nil {
		return errors.New("page service not configured")
	}

	documentID := args[0]
	matches, err := pageReviewer.IntraDocumentDuplicates(context.Background(), documentID)
	if err != nil {
		return fmt.Errorf("failed to inspect document: %w", err)
	}

	if len(matches) == 0 {
		cmd.Printf("No duplicate pages within document: %s\n", documentID)
		return nil
	}

	cmd.Printf("Found %d duplicate page pair(s) in %s:\n", len(matches), documentID)
	for _, m := range matches {
		cmd.Printf("  page %d duplicates page %d  %.4f (%s)\n",
			m.DuplicatePage, m.SourcePage, m.Similarity, m.Method)
	}
	return nil
}

func runPagesInspect(cmd *cobra.Command, args []string) error {
	if pageReviewer == nil || textExtractor == nil {
		return errors.New("page service not configured")
	}

	path := args[0]
	pageTexts, err := textExtractor.ExtractPages(context.Background(), path)
	if err != nil {
		return fmt.Errorf("failed to extract pages: %w", err)
	}

	matches, err := pageReviewer.InspectPages(pageTexts, pagesInspectThreshold)
	if err != nil {
		return fmt.Errorf("failed to inspect pages: %w", err)
	}

	if len(matches) == 0 {
		cmd.Println("No duplicate pages detected in the document.")
		return nil
	}

	cmd.Printf("Found %d pair(s) of similar pages:\n", len(matches))
	for _, m := range matches {
		cmd.Printf("  page %d is similar to page %d  %.4f\n",
			m.SourcePage, m.DuplicatePage, m.Similarity)
	}
	return nil
}

func runPagesMark(cmd *cobra.Command, args []string) error {
	if pageReviewer == nil {
		return errors.New("page service not configured")
	}

	hash := args[0]
	status := domain.PageStatus(args[1])

	count, err := pageReviewer.SetStatus(context.Background(), hash, status, pagesReviewer, pagesNote)
	if err != nil {
		return fmt.Errorf("failed to mark pages: %w", err)
	}

	cmd.Printf("Marked %d page(s) as %s\n", count, status)
	return nil
}

func printPage(cmd *cobra.Command, p *domain.Page) {
	cmd.Printf("  %s (page %d of %s)\n", p.ID, p.PageNumber, p.DocumentID)
	cmd.Printf("    Hash:   %s\n", p.Hash)
	cmd.Printf("    Status: %s\n", p.Status)
	if p.Reviewer != "" {
		cmd.Printf("    Review: %s", p.Reviewer)
		if p.ReviewNote != "" {
			cmd.Printf(" (%s)", p.ReviewNote)
		}
		cmd.Println()
	}
	if p.TextSnippet != "" {
		cmd.Printf("    Text:   %s\n", p.TextSnippet)
	}
	cmd.Println()
}
