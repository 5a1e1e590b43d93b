// Package score computes bounded similarity between feature vectors.
// Every scorer returns values clamped to [0, 1]; modality caps keep
// perfect matches from being reported as certainty 1.0, since an exact
// match is more likely a replayed artifact than genuine confidence.
package score

import "math"

// Cosine returns the clamped cosine similarity of two numeric series.
// Both series are truncated to the shorter length first. Empty or
// zero-norm inputs score 0; division by zero never happens.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return clamp01(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// ScalarSimilarity compares two scalars as 1 - |a-b|/max(a,b),
// defined as 0 when the larger magnitude is not positive.
func ScalarSimilarity(a, b float64) float64 {
	diff := math.Abs(a - b)
	maxVal := math.Max(a, b)
	if maxVal <= 0 {
		return 0
	}
	return clamp01(1 - diff/maxVal)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
