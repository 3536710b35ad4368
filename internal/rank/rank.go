// Package rank implements cosine-similarity ranking of candidate vectors
// against a query vector. It is a pure function over immutable inputs and is
// safe to call concurrently.
package rank

import (
	"math"
	"sort"
)

// Candidate is a vectorized entry offered for ranking.
type Candidate struct {
	ID     string
	Vector []float32
}

// Match is a ranked result. Score is the raw cosine similarity in [-1, 1];
// no re-normalization is applied after filtering.
type Match struct {
	ID    string
	Score float64
}

// Rank scores every candidate against the query vector, drops candidates
// below threshold, and returns at most topK matches in descending score
// order. Equal scores keep their input order, so output is deterministic.
//
// A zero-norm vector on either side scores 0, never NaN. Candidates whose
// dimension differs from the query also score 0 rather than erroring.
func Rank(query []float32, candidates []Candidate, topK int, threshold float64) []Match {
	if topK <= 0 || len(candidates) == 0 {
		return []Match{}
	}

	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		score := Cosine(query, c.Vector)
		if score < threshold {
			continue
		}
		matches = append(matches, Match{ID: c.ID, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

// Cosine computes the cosine similarity dot(a,b)/(|a|*|b|).
// Returns 0 when either vector has zero norm or the dimensions differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		av := float64(a[i])
		bv := float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
