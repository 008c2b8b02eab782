package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/archivemed/dedup-cli/internal/core/domain"
)

var (
	documentStatus string
	documentJSON   bool
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage stored documents",
	Long:  `List, inspect, or delete documents and their duplicate edges.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show document details",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentShow,
}

var documentDuplicatesCmd = &cobra.Command{
	Use:   "duplicates [doc-id]",
	Short: "Show duplicate edges touching a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDuplicates,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document",
	Long:  `Removes a document together with its pages, vectors and duplicate edges.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show document counts by status",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	documentListCmd.Flags().StringVarP(&documentStatus, "status", "s", "", "filter by status")
	documentListCmd.Flags().BoolVar(&documentJSON, "json", false, "output results as JSON")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentShowCmd)
	documentCmd.AddCommand(documentDuplicatesCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
	rootCmd.AddCommand(statsCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	status := domain.DocumentStatus(documentStatus)
	if documentStatus != "" && !status.IsValid() {
		return fmt.Errorf("unknown status: %s", documentStatus)
	}

	docs, err := documentService.List(context.Background(), status)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if documentJSON {
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal documents: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	for i := range docs {
		d := &docs[i]
		cmd.Printf("  %s  %-18s  %s\n", d.ID, d.Status, d.Filename)
	}
	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runDocumentShow(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Filename: %s\n", doc.Filename)
	cmd.Printf("  Status:   %s\n", doc.Status)
	cmd.Printf("  Pages:    %d\n", doc.PageCount)
	cmd.Printf("  Created:  %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:  %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))

	if doc.ContentHash != "" {
		cmd.Printf("  Hash:     %s\n", doc.ContentHash)
	}
	if doc.ClusterLabel != "" {
		cmd.Printf("  Cluster:  %s\n", doc.ClusterLabel)
	}
	if doc.MatchedDocID != "" {
		cmd.Printf("  Matches:  %s", doc.MatchedDocID)
		if doc.Status == domain.StatusContentDuplicate {
			cmd.Printf(" (similarity %.4f)", doc.Similarity)
		}
		cmd.Println()
	}
	if doc.ErrorStage != "" {
		cmd.Printf("  Failed:   %s\n", doc.ErrorStage)
	}
	return nil
}

func runDocumentDuplicates(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docID := args[0]
	edges, err := documentService.Duplicates(context.Background(), docID)
	if err != nil {
		return fmt.Errorf("failed to list duplicates: %w", err)
	}

	if len(edges) == 0 {
		cmd.Printf("No duplicate edges for document: %s\n", docID)
		return nil
	}

	cmd.Printf("Duplicate edges for %s:\n\n", docID)
	for _, e := range edges {
		cmd.Printf("  %s -> %s  %.4f (%s)\n", e.SourceID, e.DuplicateID, e.Similarity, e.Method)
	}
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docID := args[0]
	if err := documentService.Delete(context.Background(), docID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Deleted document %s\n", docID)
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	counts, err := documentService.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	if len(counts) == 0 {
		cmd.Println("No documents stored.")
		return nil
	}

	statuses := make([]string, 0, len(counts))
	total := 0
	for status, n := range counts {
		statuses = append(statuses, status.String())
		total += n
	}
	sort.Strings(statuses)

	cmd.Println("Documents by status:")
	for _, status := range statuses {
		cmd.Printf("  %-18s %d\n", status, counts[domain.DocumentStatus(status)])
	}
	cmd.Printf("\nTotal: %d documents\n", total)
	return nil
}
