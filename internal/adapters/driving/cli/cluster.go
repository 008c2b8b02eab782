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

var clusterJSON bool

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Group stored documents by content similarity",
	Long: `Runs density-based clustering over the TF-IDF vectors of all
stored documents and persists a cluster label on each. Documents that
fall outside every cluster are labelled outliers.`,
	Args: cobra.NoArgs,
	RunE: runCluster,
}

func init() {
	clusterCmd.Flags().BoolVar(&clusterJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(clusterCmd)
}

func runCluster(cmd *cobra.Command, _ []string) error {
	if clusteringRunner == nil {
		return errors.New("clustering service not configured")
	}

	summary, err := clusteringRunner.Run(context.Background())
	if err != nil {
		if errors.Is(err, domain.ErrVectorizerNotFitted) {
			return errors.New("no fitted vocabulary yet; process documents or run 'index refit' first")
		}
		return fmt.Errorf("clustering failed: %w", err)
	}

	if clusterJSON {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Clustered %d documents into %d clusters (%d outliers)\n\n",
		summary.Documents, summary.Clusters, summary.Outliers)

	// Group assignments by label for readable output
	byLabel := make(map[string][]string)
	for docID, label := range summary.Assignments {
		byLabel[label] = append(byLabel[label], docID)
	}
	labels := make([]string, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		ids := byLabel[label]
		sort.Strings(ids)
		cmd.Printf("  %s:\n", label)
		for _, id := range ids {
			cmd.Printf("    %s\n", id)
		}
	}
	return nil
}
