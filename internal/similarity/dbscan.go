package similarity

import (
	"github.com/archivemed/dedup-cli/internal/core/domain"
)

// NoiseLabel marks points assigned to no cluster.
const NoiseLabel = -1

// DBSCAN runs density-based clustering over the vectors using cosine
// distance (1 - cosine similarity). A point is a core point when at
// least minSamples points, itself included, lie within eps. Returned
// labels parallel the input: values >= 0 are cluster ids, NoiseLabel is
// an outlier.
//
// The implementation is deterministic for a fixed input order: points
// are visited in index order and neighbourhoods expand in index order,
// so identical input always produces identical labels. Callers wanting
// reproducibility across runs should order points by id.
func DBSCAN(vectors []domain.Vector, eps float64, minSamples int) []int {
	n := len(vectors)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = NoiseLabel
	}

	visited := make([]bool, n)
	next := 0

	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		visited[i] = true

		neighbours := regionQuery(vectors, i, eps)
		if len(neighbours) < minSamples {
			continue // Noise unless later absorbed by a cluster.
		}

		labels[i] = next
		expandCluster(vectors, labels, visited, neighbours, next, eps, minSamples)
		next++
	}

	return labels
}

// expandCluster grows a cluster from a core point's neighbourhood,
// processing the frontier as a FIFO queue so expansion order is stable.
func expandCluster(vectors []domain.Vector, labels []int, visited []bool, frontier []int, cluster int, eps float64, minSamples int) {
	for q := 0; q < len(frontier); q++ {
		j := frontier[q]

		if labels[j] == NoiseLabel {
			labels[j] = cluster // Border or core point, either way in-cluster.
		}

		if visited[j] {
			continue
		}
		visited[j] = true

		neighbours := regionQuery(vectors, j, eps)
		if len(neighbours) >= minSamples {
			frontier = append(frontier, neighbours...)
		}
	}
}

// regionQuery returns the indices within eps cosine distance of point i,
// including i itself, in ascending index order.
func regionQuery(vectors []domain.Vector, i int, eps float64) []int {
	var neighbours []int
	for j := range vectors {
		if 1-domain.Cosine(vectors[i], vectors[j]) <= eps {
			neighbours = append(neighbours, j)
		}
	}
	return neighbours
}
