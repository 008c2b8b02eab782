package similarity

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/archivemed/dedup-cli/internal/core/domain"
	"github.com/archivemed/dedup-cli/internal/fingerprint"
)

// Document-frequency bounds for vocabulary construction. Terms appearing
// in fewer than minDocFreq documents or in more than maxDocFreqRatio of
// the corpus are excluded: the former are noise, the latter carry no
// discriminative signal.
const (
	minDocFreq      = 2
	maxDocFreqRatio = 0.95
)

// Vectorizer is a corpus-fitted TF-IDF model: a vocabulary of 1-2 word
// n-grams with stable column indices and smoothed IDF weights. A
// Vectorizer is immutable once fitted; refitting builds a replacement.
// Vectors produced under different versions are not comparable.
type Vectorizer struct {
	// Version increments on every fit. Zero means unfitted.
	Version int

	// Vocabulary maps each term to its column index.
	Vocabulary map[string]int

	// IDF holds the inverse-document-frequency weight per column.
	IDF []float64

	// DocCount is the corpus size the model was fitted on.
	DocCount int
}

// NewVectorizer returns an unfitted vectorizer.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{}
}

// Fitted returns true if the vectorizer has a fitted vocabulary.
func (v *Vectorizer) Fitted() bool {
	return len(v.Vocabulary) > 0
}

// Fit builds the vocabulary and IDF weights from the corpus, replacing
// any prior state and incrementing the version. It fails with
// domain.ErrEmptyCorpus if the corpus is empty or all texts are empty
// after preprocessing; a zero-term model is never produced silently.
//
// The document-frequency bounds are relaxed when they would exclude
// every term, which happens on corpora too small for an absolute
// min-df of 2 to be satisfiable alongside the max-df ratio.
func (v *Vectorizer) Fit(corpus []string) error {
	// Per-document term sets for document frequency, plus overall counts.
	docFreq := map[string]int{}
	nonEmpty := 0

	for _, text := range corpus {
		terms := extractTerms(text)
		if len(terms) == 0 {
			continue
		}
		nonEmpty++

		seen := map[string]struct{}{}
		for _, term := range terms {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			docFreq[term]++
		}
	}

	if nonEmpty == 0 {
		return domain.ErrEmptyCorpus
	}

	vocabulary := boundedVocabulary(docFreq, nonEmpty, true)
	if len(vocabulary) == 0 {
		// Bounds excluded everything; refit without them so small
		// corpora stay usable.
		vocabulary = boundedVocabulary(docFreq, nonEmpty, false)
	}
	if len(vocabulary) == 0 {
		return domain.ErrEmptyCorpus
	}

	idf := make([]float64, len(vocabulary))
	for term, col := range vocabulary {
		// Smoothed IDF: ln((1+n) / (1+df)) + 1.
		idf[col] = math.Log(float64(1+nonEmpty)/float64(1+docFreq[term])) + 1
	}

	v.Vocabulary = vocabulary
	v.IDF = idf
	v.DocCount = nonEmpty
	v.Version++
	return nil
}

// boundedVocabulary assigns stable column indices to the terms that
// survive the document-frequency bounds. Terms are ordered
// lexicographically so indices are deterministic across fits.
func boundedVocabulary(docFreq map[string]int, docs int, applyBounds bool) map[string]int {
	maxDF := int(maxDocFreqRatio * float64(docs))

	terms := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if applyBounds && (df < minDocFreq || df > maxDF) {
			continue
		}
		terms = append(terms, term)
	}
	sort.Strings(terms)

	vocabulary := make(map[string]int, len(terms))
	for i, term := range terms {
		vocabulary[term] = i
	}
	return vocabulary
}

// Transform vectorizes text against the fitted vocabulary, returning the
// L2-normalised TF-IDF vector. The second return is false when the
// vectorizer is unfitted or the text is empty after preprocessing -
// "no signal" is distinct from an all-zero "dissimilar to everything"
// vector, which Transform can still legitimately return for text sharing
// no vocabulary terms with the corpus.
func (v *Vectorizer) Transform(text string) (domain.Vector, bool) {
	if !v.Fitted() {
		return nil, false
	}

	terms := extractTerms(text)
	if len(terms) == 0 {
		return nil, false
	}

	vec := domain.Vector{}
	for _, term := range terms {
		if col, ok := v.Vocabulary[term]; ok {
			vec[col] += v.IDF[col]
		}
	}

	// L2 normalise so cosine similarity reduces to a dot product.
	if norm := vec.Norm(); norm > 0 {
		for col := range vec {
			vec[col] /= norm
		}
	}
	return vec, true
}

// extractTerms preprocesses text identically to corpus fitting and
// returns its 1-2 word n-grams with stop words removed.
func extractTerms(text string) []string {
	tokens := strings.Fields(fingerprint.Normalize(text))

	kept := tokens[:0]
	for _, tok := range tokens {
		if !isStopWord(tok) {
			kept = append(kept, tok)
		}
	}

	terms := make([]string, 0, 2*len(kept))
	for i, tok := range kept {
		terms = append(terms, tok)
		if i+1 < len(kept) {
			terms = append(terms, tok+" "+kept[i+1])
		}
	}
	return terms
}

// vectorizerSnapshot is the serialised form of a fitted vectorizer.
type vectorizerSnapshot struct {
	Version    int            `json:"version"`
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
	DocCount   int            `json:"doc_count"`
}

// Encode serialises the vectorizer for snapshot storage.
func (v *Vectorizer) Encode() ([]byte, error) {
	return json.Marshal(vectorizerSnapshot{
		Version:    v.Version,
		Vocabulary: v.Vocabulary,
		IDF:        v.IDF,
		DocCount:   v.DocCount,
	})
}

// DecodeVectorizer deserialises a vectorizer snapshot. The snapshot is a
// cache: callers treat decode failures by starting unfitted and refitting
// from retained corpus text.
func DecodeVectorizer(data []byte) (*Vectorizer, error) {
	var snap vectorizerSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding vectorizer snapshot: %w", err)
	}
	if len(snap.Vocabulary) != len(snap.IDF) {
		return nil, fmt.Errorf("vectorizer snapshot inconsistent: %d terms, %d idf weights",
			len(snap.Vocabulary), len(snap.IDF))
	}
	return &Vectorizer{
		Version:    snap.Version,
		Vocabulary: snap.Vocabulary,
		IDF:        snap.IDF,
		DocCount:   snap.DocCount,
	}, nil
}
