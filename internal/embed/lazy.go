package embed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	faqerrors "github.com/faqdesk/faqdesk/internal/errors"
)

// LazyEmbedder defers construction of the inner embedder until first use.
// The load is guarded by a one-time-initialization gate: the first caller
// runs the factory while concurrent callers block on the same gate, then all
// share the single loaded instance. A failed load is latched and every later
// call returns the same model-unavailable error without re-attempting — the
// retry/fallback decision belongs to the search chain, not the adapter.
type LazyEmbedder struct {
	factory   func(context.Context) (Embedder, error)
	modelName string
	dims      int

	once    sync.Once
	inner   Embedder
	loadErr error

	mu     sync.Mutex
	closed bool
}

var _ Embedder = (*LazyEmbedder)(nil)

// NewLazyEmbedder wraps a factory. modelName and dims describe the embedder
// that the factory will produce; they are answerable before the load runs.
func NewLazyEmbedder(modelName string, dims int, factory func(context.Context) (Embedder, error)) *LazyEmbedder {
	return &LazyEmbedder{
		factory:   factory,
		modelName: modelName,
		dims:      dims,
	}
}

// get loads the inner embedder exactly once and returns it.
func (l *LazyEmbedder) get(ctx context.Context) (Embedder, error) {
	l.once.Do(func() {
		start := time.Now()
		slog.Info("embedder_loading", slog.String("model", l.modelName))

		inner, err := l.factory(ctx)
		if err != nil {
			l.loadErr = faqerrors.ModelUnavailable("embedder load failed", err)
			slog.Warn("embedder_load_failed",
				slog.String("model", l.modelName),
				slog.String("error", err.Error()))
			return
		}

		l.mu.Lock()
		l.inner = inner
		l.mu.Unlock()
		slog.Info("embedder_loaded",
			slog.String("model", l.modelName),
			slog.Int("dimensions", inner.Dimensions()),
			slog.Duration("elapsed", time.Since(start)))
	})

	if l.loadErr != nil {
		return nil, l.loadErr
	}
	return l.inner, nil
}

// Embed loads the model on first use and delegates.
func (l *LazyEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	inner, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return inner.Embed(ctx, text)
}

// EmbedBatch loads the model on first use and delegates.
func (l *LazyEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	inner, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return inner.EmbedBatch(ctx, texts)
}

// Dimensions returns the embedding dimension without triggering a load.
func (l *LazyEmbedder) Dimensions() int {
	return l.dims
}

// ModelName returns the model identifier without triggering a load.
func (l *LazyEmbedder) ModelName() string {
	return l.modelName
}

// Loaded reports whether the inner embedder has been constructed.
func (l *LazyEmbedder) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner != nil
}

// Available delegates to the inner embedder if loaded; it never triggers a
// load itself.
func (l *LazyEmbedder) Available(ctx context.Context) bool {
	l.mu.Lock()
	inner := l.inner
	closed := l.closed
	l.mu.Unlock()

	if closed || inner == nil {
		return false
	}
	return inner.Available(ctx)
}

// Close closes the inner embedder if it was ever loaded.
func (l *LazyEmbedder) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	if l.inner != nil {
		return l.inner.Close()
	}
	return nil
}
