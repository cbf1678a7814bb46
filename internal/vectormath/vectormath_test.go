package vectormath

import (
	"errors"
	"math"
	"testing"
)

func TestCosineSimilaritySelfIsOne(t *testing.T) {
	vectors := [][]float32{
		{1, 0, 0},
		{0.3, -0.7, 2.5},
		{1e-3, 4e2, 0.125, 9},
	}
	for _, v := range vectors {
		got, err := CosineSimilarity(v, v)
		if err != nil {
			t.Fatalf("CosineSimilarity(%v, %v) returned error: %v", v, v, err)
		}
		if math.Abs(got-1) > 1e-9 {
			t.Fatalf("expected self-similarity 1, got %v for %v", got, v)
		}
	}
}

func TestCosineSimilarityOrthogonal(t *testing.T) {
	got, err := CosineSimilarity([]float32{1, 0, 0}, []float32{0, 1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got) > 1e-9 {
		t.Fatalf("expected similarity 0, got %v", got)
	}
}

func TestCosineSimilarityOpposite(t *testing.T) {
	got, err := CosineSimilarity([]float32{2, 3}, []float32{-2, -3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got+1) > 1e-9 {
		t.Fatalf("expected similarity -1, got %v", got)
	}
}

func TestCosineSimilarityDimensionMismatch(t *testing.T) {
	if _, err := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestCosineSimilarityZeroMagnitude(t *testing.T) {
	if _, err := CosineSimilarity([]float32{0, 0, 0}, []float32{1, 2, 3}); !errors.Is(err, ErrZeroMagnitude) {
		t.Fatalf("expected ErrZeroMagnitude for zero vector, got %v", err)
	}
	if _, err := CosineSimilarity(nil, nil); !errors.Is(err, ErrZeroMagnitude) {
		t.Fatalf("expected ErrZeroMagnitude for empty vectors, got %v", err)
	}
}

func TestIsUsable(t *testing.T) {
	cases := []struct {
		name string
		vec  []float32
		want bool
	}{
		{"nil", nil, false},
		{"empty", []float32{}, false},
		{"finite", []float32{0.1, -2, 3}, true},
		{"nan", []float32{1, float32(math.NaN())}, false},
		{"inf", []float32{float32(math.Inf(1))}, false},
	}
	for _, tc := range cases {
		if got := IsUsable(tc.vec); got != tc.want {
			t.Fatalf("%s: IsUsable = %v, want %v", tc.name, got, tc.want)
		}
	}
}
