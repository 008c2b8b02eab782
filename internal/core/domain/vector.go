package domain

import "math"

// VectorKind distinguishes document-level from page-level vectors.
type VectorKind string

// Available vector kinds.
const (
	// VectorKindDocument is a whole-document TF-IDF vector.
	VectorKindDocument VectorKind = "document"

	// VectorKindPage is a per-page TF-IDF vector.
	VectorKindPage VectorKind = "page"
)

// IsValid returns true if the vector kind is recognised.
func (k VectorKind) IsValid() bool {
	return k == VectorKindDocument || k == VectorKindPage
}

// String returns the string representation.
func (k VectorKind) String() string {
	return string(k)
}

// Vector is a sparse TF-IDF vector mapping vocabulary column index to
// weight. Vectors produced under different vectorizer versions are not
// comparable; StoredVector carries the version they were produced under.
type Vector map[int]float64

// Norm returns the Euclidean norm.
func (v Vector) Norm() float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Dot returns the dot product with another vector.
func (v Vector) Dot(other Vector) float64 {
	// Iterate the smaller map.
	a, b := v, other
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for i, w := range a {
		sum += w * b[i]
	}
	return sum
}

// Cosine returns the cosine similarity between two vectors, clamped to
// [0,1]. Zero-norm vectors have similarity 0 with anything; there is
// never a divide-by-zero.
func Cosine(a, b Vector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	sim := a.Dot(b) / (na * nb)
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

// StoredVector is a persisted vector together with the entity and
// vectorizer version it belongs to.
type StoredVector struct {
	// OwnerID is the document or page id the vector belongs to.
	OwnerID string

	// Kind distinguishes document from page vectors.
	Kind VectorKind

	// Version is the vectorizer version that produced the vector.
	// Vectors from different versions must never be compared.
	Version int

	// Vector is the sparse TF-IDF vector.
	Vector Vector
}
