package search

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faqdesk/faqdesk/internal/config"
	faqerrors "github.com/faqdesk/faqdesk/internal/errors"
	"github.com/faqdesk/faqdesk/internal/store"
	"github.com/faqdesk/faqdesk/internal/telemetry"
)

const testDims = 4

// fakeEmbedder returns canned vectors and counts calls.
type fakeEmbedder struct {
	embedCalls atomic.Int64
	vectors    map[string][]float32
	fail       bool
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{vectors: map[string][]float32{}}
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.embedCalls.Add(1)
	if f.fail {
		return nil, faqerrors.ModelUnavailable("model is down", nil)
	}
	if vec, ok := f.vectors[text]; ok {
		return vec, nil
	}
	return []float32{0, 0, 0, 1}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		result[i] = vec
	}
	return result, nil
}

func (f *fakeEmbedder) Dimensions() int                    { return testDims }
func (f *fakeEmbedder) ModelName() string                  { return "fake-model" }
func (f *fakeEmbedder) Available(ctx context.Context) bool { return !f.fail }
func (f *fakeEmbedder) Close() error                       { return nil }

func testConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Embeddings.Provider = config.ProviderStatic
	cfg.Embeddings.Dimensions = testDims
	return cfg
}

func newTestEngine(t *testing.T, em *fakeEmbedder, cfg *config.Config) (*Engine, *store.SQLiteStore) {
	t.Helper()
	s, err := store.NewSQLiteStore("", testDims)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	engine, err := NewEngine(s, em, telemetry.NewMetrics(), cfg)
	require.NoError(t, err)
	return engine, s
}

func addEntry(t *testing.T, s *store.SQLiteStore, question, answer string, vec []float32) *store.Entry {
	t.Helper()
	entry := store.NewEntry(question, answer)
	if vec != nil {
		entry.Vector = vec
		entry.ModelID = "fake-model"
	}
	require.NoError(t, s.Upsert(context.Background(), entry))
	return entry
}

func TestEngine_EmptyQuery_ValidationErrorBeforeAnyWork(t *testing.T) {
	// Given: an engine whose embedder would succeed
	em := newFakeEmbedder()
	engine, _ := newTestEngine(t, em, testConfig())

	// When: the query is blank after sanitization
	_, err := engine.Search(context.Background(), "   \t  ")

	// Then: a validation error comes back and the embedder was never called
	require.Error(t, err)
	assert.True(t, faqerrors.IsValidation(err))
	assert.Equal(t, faqerrors.ErrCodeQueryEmpty, faqerrors.GetCode(err))
	assert.Zero(t, em.embedCalls.Load())
}

func TestEngine_OverLengthQuery_Rejected(t *testing.T) {
	em := newFakeEmbedder()
	engine, _ := newTestEngine(t, em, testConfig())

	long := strings.Repeat("a", 201)
	_, err := engine.Search(context.Background(), long)

	require.Error(t, err)
	assert.Equal(t, faqerrors.ErrCodeQueryTooLong, faqerrors.GetCode(err))
	assert.Zero(t, em.embedCalls.Load())
}

func TestEngine_SemanticStage_RanksAndFilters(t *testing.T) {
	// Given: one close entry and one orthogonal entry
	em := newFakeEmbedder()
	em.vectors["reset password"] = []float32{1, 0, 0, 0}
	engine, s := newTestEngine(t, em, testConfig())

	match := addEntry(t, s, "How do I reset my password?", "Use the link.", []float32{1, 0, 0, 0})
	addEntry(t, s, "Shipping times", "Three days.", []float32{0, 1, 0, 0})

	// When: searching semantically
	results, err := engine.Search(context.Background(), "reset password")

	// Then: only the entry above the threshold comes back, scored
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, match.ID, results[0].ID)
	assert.Equal(t, StrategySemantic, results[0].Strategy)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestEngine_ModelUnavailable_FallsBackToKeyword(t *testing.T) {
	// Given: a dead embedder and an entry matching by token
	em := newFakeEmbedder()
	em.fail = true
	engine, s := newTestEngine(t, em, testConfig())

	entry := addEntry(t, s, "How do I reset my password?", "Use the link.", nil)

	// When: searching
	results, err := engine.Search(context.Background(), "password")

	// Then: the keyword stage answers and the caller sees no error
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, entry.ID, results[0].ID)
	assert.Equal(t, StrategyKeyword, results[0].Strategy)
	assert.Zero(t, results[0].Score)
}

func TestEngine_NoKeywordMatch_FallsBackToCatalog(t *testing.T) {
	// Given: a dead embedder and a query matching nothing
	em := newFakeEmbedder()
	em.fail = true
	engine, s := newTestEngine(t, em, testConfig())

	addEntry(t, s, "How do I reset my password?", "Use the link.", nil)
	addEntry(t, s, "Shipping times", "Three days.", nil)

	// When: searching for an unrelated topic
	results, err := engine.Search(context.Background(), "quantum blockchain")

	// Then: the full catalog comes back
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, StrategyCatalog, r.Strategy)
	}
}

func TestEngine_SemanticBelowThreshold_AdvancesChain(t *testing.T) {
	// Given: an entry whose vector is orthogonal to every query
	em := newFakeEmbedder()
	em.vectors["unrelated topic"] = []float32{1, 0, 0, 0}
	engine, s := newTestEngine(t, em, testConfig())

	addEntry(t, s, "Shipping times", "Three days.", []float32{0, 1, 0, 0})

	// When: searching for something semantically distant with no token match
	results, err := engine.Search(context.Background(), "unrelated topic")

	// Then: the chain advances past semantic and keyword to the catalog
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, StrategyCatalog, results[0].Strategy)
}

func TestEngine_SemanticDisabled_SkipsEmbedder(t *testing.T) {
	// Given: semantic search switched off
	cfg := testConfig()
	cfg.Search.Enabled = false
	em := newFakeEmbedder()
	engine, s := newTestEngine(t, em, cfg)

	entry := addEntry(t, s, "How do I reset my password?", "Use the link.", []float32{1, 0, 0, 0})

	// When: searching
	results, err := engine.Search(context.Background(), "password")

	// Then: the keyword stage answers without touching the embedder
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, entry.ID, results[0].ID)
	assert.Equal(t, StrategyKeyword, results[0].Strategy)
	assert.Zero(t, em.embedCalls.Load())
}

func TestEngine_EmptyKnowledgeBase_EmptyCatalogIsValid(t *testing.T) {
	em := newFakeEmbedder()
	engine, _ := newTestEngine(t, em, testConfig())

	results, err := engine.Search(context.Background(), "anything at all")

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestEngine_CatalogStage_NeverFails(t *testing.T) {
	// Given: a store that errors on every call
	em := newFakeEmbedder()
	s, err := store.NewSQLiteStore("", testDims)
	require.NoError(t, err)
	engine, err := NewEngine(s, em, telemetry.NewMetrics(), testConfig())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// When: searching
	results, searchErr := engine.Search(context.Background(), "anything")

	// Then: the caller sees an empty catalog, not an error
	require.NoError(t, searchErr)
	assert.Empty(t, results)
}

func TestEngine_TopK_LimitsSemanticResults(t *testing.T) {
	cfg := testConfig()
	cfg.Search.TopK = 2
	cfg.Search.SimilarityThreshold = 0.1
	em := newFakeEmbedder()
	em.vectors["question"] = []float32{1, 0, 0, 0}
	engine, s := newTestEngine(t, em, cfg)

	addEntry(t, s, "one", "a", []float32{1, 0, 0, 0})
	addEntry(t, s, "two", "b", []float32{0.9, 0.1, 0, 0})
	addEntry(t, s, "three", "c", []float32{0.8, 0.2, 0, 0})

	results, err := engine.Search(context.Background(), "question")

	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestEngine_RecordsTelemetry(t *testing.T) {
	em := newFakeEmbedder()
	em.fail = true
	engine, s := newTestEngine(t, em, testConfig())
	addEntry(t, s, "How do I reset my password?", "Use the link.", nil)

	_, err := engine.Search(context.Background(), "password")
	require.NoError(t, err)

	snap := engine.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.TotalQueries)
	assert.Equal(t, int64(1), snap.StrategyCounts[string(StrategyKeyword)])
}
