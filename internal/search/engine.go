package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/faqdesk/faqdesk/internal/config"
	"github.com/faqdesk/faqdesk/internal/embed"
	"github.com/faqdesk/faqdesk/internal/rank"
	"github.com/faqdesk/faqdesk/internal/store"
	"github.com/faqdesk/faqdesk/internal/telemetry"
	"github.com/faqdesk/faqdesk/internal/validate"
)

// Engine runs the strategy chain. Construction is cheap; the embedder loads
// lazily on the first semantic attempt.
type Engine struct {
	store    store.Store
	embedder embed.Embedder
	metrics  *telemetry.Metrics

	enabled        bool
	topK           int
	threshold      float64
	maxQueryLength int
}

// NewEngine creates a search engine.
func NewEngine(st store.Store, em embed.Embedder, metrics *telemetry.Metrics, cfg *config.Config) (*Engine, error) {
	if st == nil {
		return nil, fmt.Errorf("search: store is required")
	}
	if em == nil {
		return nil, fmt.Errorf("search: embedder is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("search: config is required")
	}
	if metrics == nil {
		metrics = telemetry.NewMetrics()
	}
	return &Engine{
		store:          st,
		embedder:       em,
		metrics:        metrics,
		enabled:        cfg.Search.Enabled,
		topK:           cfg.Search.TopK,
		threshold:      cfg.Search.SimilarityThreshold,
		maxQueryLength: cfg.Search.MaxQueryLength,
	}, nil
}

// Metrics exposes the collector backing this engine.
func (e *Engine) Metrics() *telemetry.Metrics {
	return e.metrics
}

// Search validates the query and walks the strategy chain. The only error a
// caller ever sees is a validation error; every operational failure inside
// the chain is logged and degrades to the next stage. An empty result list
// with a nil error means the knowledge base itself is empty.
func (e *Engine) Search(ctx context.Context, rawQuery string) ([]Result, error) {
	query, err := validate.Query(rawQuery, e.maxQueryLength)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results, strategy := e.runChain(ctx, query)

	e.metrics.Record(telemetry.QueryEvent{
		Query:       query,
		Strategy:    string(strategy),
		ResultCount: len(results),
		Latency:     time.Since(start),
		Timestamp:   start.UTC(),
	})
	slog.Info("search_completed",
		slog.String("strategy", string(strategy)),
		slog.Int("results", len(results)),
		slog.Duration("elapsed", time.Since(start)))

	return results, nil
}

// runChain tries each stage in order and returns the first non-empty result
// set plus the strategy that produced it. The catalog stage terminates the
// chain unconditionally.
func (e *Engine) runChain(ctx context.Context, query string) ([]Result, Strategy) {
	if e.enabled {
		if results, ok := e.semanticStage(ctx, query); ok {
			return results, StrategySemantic
		}
	}

	if results, ok := e.keywordStage(ctx, query); ok {
		return results, StrategyKeyword
	}

	return e.catalogStage(ctx), StrategyCatalog
}

// semanticStage embeds the query and ranks it against every vectorized
// entry. Any failure, or an empty match set, advances the chain.
func (e *Engine) semanticStage(ctx context.Context, query string) ([]Result, bool) {
	qvec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		slog.Warn("semantic_stage_unavailable",
			slog.String("error", err.Error()))
		return nil, false
	}

	entries, err := e.store.AllVectorized(ctx, e.embedder.ModelName())
	if err != nil {
		slog.Warn("semantic_stage_store_failed",
			slog.String("error", err.Error()))
		return nil, false
	}
	if len(entries) == 0 {
		return nil, false
	}

	byID := make(map[string]*store.Entry, len(entries))
	candidates := make([]rank.Candidate, 0, len(entries))
	for _, entry := range entries {
		byID[entry.ID] = entry
		candidates = append(candidates, rank.Candidate{ID: entry.ID, Vector: entry.Vector})
	}

	matches := rank.Rank(qvec, candidates, e.topK, e.threshold)
	if len(matches) == 0 {
		return nil, false
	}

	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		entry := byID[m.ID]
		results = append(results, Result{
			ID:       entry.ID,
			Question: entry.Question,
			Answer:   entry.Answer,
			Score:    m.Score,
			Strategy: StrategySemantic,
		})
	}
	return results, true
}

// keywordStage matches query tokens against the FTS index.
func (e *Engine) keywordStage(ctx context.Context, query string) ([]Result, bool) {
	entries, err := e.store.KeywordSearch(ctx, query, e.topK)
	if err != nil {
		slog.Warn("keyword_stage_failed",
			slog.String("error", err.Error()))
		return nil, false
	}
	if len(entries) == 0 {
		return nil, false
	}
	return entriesToResults(entries, StrategyKeyword), true
}

// catalogStage returns the full entry list. It never fails: a store error
// yields an empty catalog, logged.
func (e *Engine) catalogStage(ctx context.Context) []Result {
	entries, err := e.store.List(ctx, 0, 0)
	if err != nil {
		slog.Error("catalog_stage_failed",
			slog.String("error", err.Error()))
		return []Result{}
	}
	return entriesToResults(entries, StrategyCatalog)
}

func entriesToResults(entries []*store.Entry, strategy Strategy) []Result {
	results := make([]Result, 0, len(entries))
	for _, entry := range entries {
		results = append(results, Result{
			ID:       entry.ID,
			Question: entry.Question,
			Answer:   entry.Answer,
			Strategy: strategy,
		})
	}
	return results
}
