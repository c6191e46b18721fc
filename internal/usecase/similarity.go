package usecase

import "math"

// CosineSimilarity returns the cosine of the angle between a and b, clamped to
// [-1, 1]. Empty vectors, mismatched lengths and zero-norm vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / math.Sqrt(normA*normB)
	switch {
	case math.IsNaN(sim):
		return 0
	case sim > 1:
		return 1
	case sim < -1:
		return -1
	}
	return sim
}

// CosineSimilarities scores every candidate against query, in input order.
// Candidates without a usable vector score exactly 0.
func CosineSimilarities(query []float32, candidates [][]float32) []float64 {
	scores := make([]float64, len(candidates))
	if len(query) == 0 {
		return scores
	}
	for i, c := range candidates {
		scores[i] = CosineSimilarity(query, c)
	}
	return scores
}
