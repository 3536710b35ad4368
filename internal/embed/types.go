// Package embed provides text embedding for faqdesk.
// An Embedder turns text into a fixed-length float32 vector. The production
// embedder talks to Ollama; a deterministic hash-based embedder serves as an
// offline fallback and as the test vehicle.
package embed

import (
	"context"
	"math"
	"time"
)

// Common embedding constants.
const (
	// DefaultTimeout bounds a single encode request. A stall past this is
	// reported as the model being unavailable so one slow encode cannot
	// hold up unrelated searches.
	DefaultTimeout = 30 * time.Second

	// DefaultDimensions is the dimension of nomic-embed-text.
	DefaultDimensions = 768

	// StaticDimensions is the dimension of the hash-based embedder.
	StaticDimensions = 256

	// DefaultCacheSize is the number of embeddings kept in the LRU cache.
	DefaultCacheSize = 1000
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimension.
	Dimensions() int

	// ModelName returns the model identifier.
	ModelName() string

	// Available checks if the embedder is ready.
	Available(ctx context.Context) bool

	// Close releases resources.
	Close() error
}

// normalizeVector normalizes a vector to unit length.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}

	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}

	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = float32(float64(val) / magnitude)
	}
	return normalized
}
