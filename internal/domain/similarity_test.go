package domain

import (
	"math"
	"testing"
)

func floatEq(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float32
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"scaled copy", []float32{1, 2, 3}, []float32{2, 4, 6}, 1.0},
		{"zero vector", []float32{0, 0, 0}, []float32{1, 2, 3}, 0.0},
		{"dimension mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if !floatEq(got, tt.want) {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSimilaritySymmetry(t *testing.T) {
	a := []float32{0.3, -0.7, 0.2, 0.9}
	b := []float32{0.1, 0.4, -0.5, 0.8}
	if !floatEq(CosineSimilarity(a, b), CosineSimilarity(b, a)) {
		t.Error("cosine similarity should be symmetric")
	}
}
