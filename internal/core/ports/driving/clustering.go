package driving

import "context"

// ClusterSummary reports the outcome of a clustering run.
type ClusterSummary struct {
	// Documents is how many documents had a usable vector.
	Documents int

	// Clusters is the number of clusters found.
	Clusters int

	// Outliers is the number of documents labelled outlier.
	Outliers int

	// Assignments maps document ID to its cluster label
	// ("cluster_N" or "outlier").
	Assignments map[string]string
}

// ClusteringRunner groups stored documents by content similarity.
// At most one run may be in flight; a second concurrent Run returns
// domain.ErrTaskInProgress.
type ClusteringRunner interface {
	Run(ctx context.Context) (*ClusterSummary, error)
}
