package embed

import (
	"context"
	"fmt"
	"sync/atomic"
)

// mockEmbedder is a test double that counts calls.
type mockEmbedder struct {
	embedCalls     atomic.Int64
	batchCalls     atomic.Int64
	closeCalls     atomic.Int64
	dimensions     int
	modelName      string
	available      bool
	returnedVector []float32
	embedErr       error
}

func newMockEmbedder(dims int) *mockEmbedder {
	vec := make([]float32, dims)
	for i := range vec {
		vec[i] = float32(i) * 0.001
	}
	return &mockEmbedder{
		dimensions:     dims,
		modelName:      "mock-model",
		available:      true,
		returnedVector: vec,
	}
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.embedCalls.Add(1)
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.returnedVector, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.batchCalls.Add(1)
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.returnedVector
	}
	return result, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dimensions }

func (m *mockEmbedder) ModelName() string { return m.modelName }

func (m *mockEmbedder) Available(ctx context.Context) bool { return m.available }

func (m *mockEmbedder) Close() error {
	m.closeCalls.Add(1)
	return nil
}

// distinctMockEmbedder returns a different vector per text so cache tests can
// tell results apart.
type distinctMockEmbedder struct {
	mockEmbedder
}

func newDistinctMockEmbedder(dims int) *distinctMockEmbedder {
	return &distinctMockEmbedder{mockEmbedder: *newMockEmbedder(dims)}
}

func (m *distinctMockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.embedCalls.Add(1)
	vec := make([]float32, m.dimensions)
	for i, r := range text {
		vec[i%m.dimensions] += float32(r)
	}
	return vec, nil
}

func (m *distinctMockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.batchCalls.Add(1)
	result := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, m.dimensions)
		for j, r := range text {
			vec[j%m.dimensions] += float32(r)
		}
		result[i] = vec
	}
	return result, nil
}

var errBoom = fmt.Errorf("boom")
