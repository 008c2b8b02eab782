package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCosine_IdenticalVectors tests similarity of a vector with itself
func TestCosine_IdenticalVectors(t *testing.T) {
	v := Vector{0: 0.5, 3: 0.2, 7: 0.8}
	assert.InDelta(t, 1.0, Cosine(v, v), 1e-9)
}

// TestCosine_OrthogonalVectors tests disjoint vectors
func TestCosine_OrthogonalVectors(t *testing.T) {
	a := Vector{0: 1.0}
	b := Vector{1: 1.0}
	assert.InDelta(t, 0.0, Cosine(a, b), 1e-9)
}

// TestCosine_ZeroVector tests the zero-norm rule: similarity 0, no NaN
func TestCosine_ZeroVector(t *testing.T) {
	zero := Vector{}
	v := Vector{0: 1.0}

	assert.Equal(t, 0.0, Cosine(zero, v))
	assert.Equal(t, 0.0, Cosine(v, zero))
	assert.Equal(t, 0.0, Cosine(zero, zero))
	assert.False(t, math.IsNaN(Cosine(zero, zero)))
}

// TestCosine_Symmetric tests symmetry
func TestCosine_Symmetric(t *testing.T) {
	a := Vector{0: 0.3, 2: 0.7, 5: 0.1}
	b := Vector{0: 0.2, 2: 0.4, 9: 0.9}
	assert.InDelta(t, Cosine(a, b), Cosine(b, a), 1e-12)
}

// TestVector_Dot tests sparse dot product over the intersection
func TestVector_Dot(t *testing.T) {
	a := Vector{0: 2, 1: 3, 5: 1}
	b := Vector{1: 4, 5: 2, 9: 7}
	assert.InDelta(t, 14.0, a.Dot(b), 1e-12)
	assert.InDelta(t, 14.0, b.Dot(a), 1e-12)
}

// TestVector_Norm tests the Euclidean norm
func TestVector_Norm(t *testing.T) {
	v := Vector{0: 3, 1: 4}
	assert.InDelta(t, 5.0, v.Norm(), 1e-12)
	assert.Equal(t, 0.0, Vector{}.Norm())
}
