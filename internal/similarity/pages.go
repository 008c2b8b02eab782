package similarity

import (
	"fmt"

	"github.com/archivemed/dedup-cli/internal/core/domain"
)

// PagePair flags two pages of one document as similar.
type PagePair struct {
	// PageA and PageB are 1-based page numbers, PageA < PageB.
	PageA int
	PageB int

	// Similarity is the cosine similarity of the two page vectors.
	Similarity float64
}

// AnalyzePages compares every pair of pages within one document using a
// vocabulary fitted on those pages alone, so the comparison does not
// depend on the corpus-wide vectorizer being fitted. Pairs meeting the
// inclusive threshold are returned in page order.
func AnalyzePages(pageTexts []string, threshold float64) ([]PagePair, error) {
	if len(pageTexts) < 2 {
		return nil, nil
	}

	v := NewVectorizer()
	if err := v.Fit(pageTexts); err != nil {
		return nil, fmt.Errorf("fit page vocabulary: %w", err)
	}

	vectors := make([]domain.Vector, len(pageTexts))
	for i, text := range pageTexts {
		if vec, ok := v.Transform(text); ok {
			vectors[i] = vec
		}
	}

	var pairs []PagePair
	for i := range vectors {
		if vectors[i] == nil {
			continue
		}
		for j := i + 1; j < len(vectors); j++ {
			if vectors[j] == nil {
				continue
			}
			sim := domain.Cosine(vectors[i], vectors[j])
			if sim >= threshold {
				pairs = append(pairs, PagePair{PageA: i + 1, PageB: j + 1, Similarity: sim})
			}
		}
	}
	return pairs, nil
}
