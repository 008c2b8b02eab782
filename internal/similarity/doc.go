// Package similarity implements the similarity machinery of the
// deduplication pipeline:
//
//   - Vectorizer: a corpus-fitted TF-IDF model producing sparse vectors
//   - LSHIndex: a banded MinHash index for approximate Jaccard queries
//   - DBSCAN: deterministic density-based clustering over cosine distance
//
// All types here are pure data structures with no storage or I/O
// concerns; services own their lifecycle and persistence.
package similarity
