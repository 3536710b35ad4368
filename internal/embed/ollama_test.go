package embed

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	faqerrors "github.com/faqdesk/faqdesk/internal/errors"
)

// fakeOllama returns a test server answering /api/embed with fixed vectors
// and /api/tags with 200.
func fakeOllama(t *testing.T, dims int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			w.WriteHeader(http.StatusOK)
		case "/api/embed":
			var req ollamaEmbedRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

			count := 1
			if list, ok := req.Input.([]any); ok {
				count = len(list)
			}
			embeddings := make([][]float64, count)
			for i := range embeddings {
				vec := make([]float64, dims)
				vec[i%dims] = 1.0
				embeddings[i] = vec
			}
			_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{
				Model:      req.Model,
				Embeddings: embeddings,
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestOllamaEmbedder_Embed_ReturnsNormalizedVector(t *testing.T) {
	srv := fakeOllama(t, 8)
	defer srv.Close()

	e := NewOllamaEmbedder(OllamaConfig{Host: srv.URL, Model: "test-model", Dimensions: 8})
	defer func() { _ = e.Close() }()

	vec, err := e.Embed(context.Background(), "how do I reset my password")

	require.NoError(t, err)
	require.Len(t, vec, 8)
	var sumSquares float64
	for _, v := range vec {
		sumSquares += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sumSquares), 1e-5)
}

func TestOllamaEmbedder_EmbedBatch_ReturnsVectorPerText(t *testing.T) {
	srv := fakeOllama(t, 8)
	defer srv.Close()

	e := NewOllamaEmbedder(OllamaConfig{Host: srv.URL, Model: "test-model", Dimensions: 8})
	defer func() { _ = e.Close() }()

	vecs, err := e.EmbedBatch(context.Background(), []string{"one", "two", "three"})

	require.NoError(t, err)
	require.Len(t, vecs, 3)
	for _, vec := range vecs {
		assert.Len(t, vec, 8)
	}
}

func TestOllamaEmbedder_EmbedBatch_EmptyInput_NoRequest(t *testing.T) {
	e := NewOllamaEmbedder(OllamaConfig{Host: "http://127.0.0.1:1", Model: "test-model", Dimensions: 8})
	defer func() { _ = e.Close() }()

	vecs, err := e.EmbedBatch(context.Background(), []string{})

	require.NoError(t, err)
	assert.Empty(t, vecs)
}

func TestOllamaEmbedder_ServerDown_ReturnsModelUnavailable(t *testing.T) {
	// Port 1 is never listening.
	e := NewOllamaEmbedder(OllamaConfig{
		Host:       "http://127.0.0.1:1",
		Model:      "test-model",
		Dimensions: 8,
		Timeout:    2 * time.Second,
	})
	defer func() { _ = e.Close() }()

	_, err := e.Embed(context.Background(), "anything")

	require.Error(t, err)
	assert.True(t, faqerrors.IsModelUnavailable(err))
}

func TestOllamaEmbedder_ServerError_ReturnsModelUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(OllamaConfig{Host: srv.URL, Model: "missing-model", Dimensions: 8})
	defer func() { _ = e.Close() }()

	_, err := e.Embed(context.Background(), "anything")

	require.Error(t, err)
	assert.True(t, faqerrors.IsModelUnavailable(err))
}

func TestOllamaEmbedder_DimensionMismatch_Rejected(t *testing.T) {
	// Server answers with 4 dimensions while the client expects 8.
	srv := fakeOllama(t, 4)
	defer srv.Close()

	e := NewOllamaEmbedder(OllamaConfig{Host: srv.URL, Model: "test-model", Dimensions: 8})
	defer func() { _ = e.Close() }()

	_, err := e.Embed(context.Background(), "anything")

	require.Error(t, err)
	assert.True(t, faqerrors.IsModelUnavailable(err))
}

func TestOllamaEmbedder_SlowServer_ReturnsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(OllamaConfig{
		Host:       srv.URL,
		Model:      "test-model",
		Dimensions: 8,
		Timeout:    50 * time.Millisecond,
	})
	defer func() { _ = e.Close() }()

	_, err := e.Embed(context.Background(), "anything")

	require.Error(t, err)
	assert.Equal(t, faqerrors.ErrCodeModelTimeout, faqerrors.GetCode(err))
}

func TestOllamaEmbedder_Available_ProbesTagsEndpoint(t *testing.T) {
	srv := fakeOllama(t, 8)

	e := NewOllamaEmbedder(OllamaConfig{Host: srv.URL, Model: "test-model", Dimensions: 8})
	defer func() { _ = e.Close() }()

	assert.True(t, e.Available(context.Background()))

	srv.Close()
	assert.False(t, e.Available(context.Background()))
}

func TestOllamaEmbedder_Closed_RefusesRequests(t *testing.T) {
	srv := fakeOllama(t, 8)
	defer srv.Close()

	e := NewOllamaEmbedder(OllamaConfig{Host: srv.URL, Model: "test-model", Dimensions: 8})
	require.NoError(t, e.Close())

	_, err := e.Embed(context.Background(), "anything")

	require.Error(t, err)
	assert.True(t, faqerrors.IsModelUnavailable(err))
	assert.False(t, e.Available(context.Background()))
}
