// Package vectormath provides similarity primitives over embedding vectors.
package vectormath

import (
	"errors"
	"math"
)

var (
	// ErrDimensionMismatch means the two vectors are not comparable.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrZeroMagnitude means at least one vector has no direction.
	ErrZeroMagnitude = errors.New("vector has zero magnitude")
)

// CosineSimilarity returns dot(a,b) / (|a|*|b|) in [-1,1]. Accumulation is
// done in float64 to keep long vectors stable.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	if len(a) == 0 {
		return 0, ErrZeroMagnitude
	}

	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, ErrZeroMagnitude
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// IsUsable reports whether v can participate in similarity search: non-empty
// and every component finite.
func IsUsable(v []float32) bool {
	if len(v) == 0 {
		return false
	}
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
