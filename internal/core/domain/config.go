package domain

import "time"

// PipelineConfig holds the tunable thresholds and limits for the
// deduplication pipeline.
type PipelineConfig struct {
	// DocSimilarityThreshold is the inclusive cosine-similarity threshold
	// for classifying a document as a content duplicate.
	DocSimilarityThreshold float64

	// PageSimilarityThreshold is the inclusive threshold for page-level
	// TF-IDF comparisons.
	PageSimilarityThreshold float64

	// ClusterThreshold is the similarity threshold for clustering.
	// DBSCAN eps is 1 - ClusterThreshold (cosine distance).
	ClusterThreshold float64

	// MinClusterSize is the DBSCAN min_samples parameter. Corpora smaller
	// than this are all marked outliers without running the algorithm.
	MinClusterSize int

	// LSHJaccardThreshold is the estimated-Jaccard threshold for LSH
	// candidate queries.
	LSHJaccardThreshold float64

	// LSHNumPermutations is the MinHash signature length.
	LSHNumPermutations int

	// MinTextLength is the minimum extracted-text length considered
	// meaningful for fingerprinting.
	MinTextLength int

	// SnippetLength bounds the retained page text excerpt.
	SnippetLength int

	// StageTimeout bounds each pipeline stage. Zero disables the bound.
	// Extraction is the likeliest hang point.
	StageTimeout time.Duration
}

// DefaultPipelineConfig returns the standard thresholds.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		DocSimilarityThreshold:  0.85,
		PageSimilarityThreshold: 0.85,
		ClusterThreshold:        0.75,
		MinClusterSize:          2,
		LSHJaccardThreshold:     0.8,
		LSHNumPermutations:      128,
		MinTextLength:           50,
		SnippetLength:           300,
		StageTimeout:            2 * time.Minute,
	}
}
