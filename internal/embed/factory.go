package embed

import (
	"context"
	"fmt"

	"github.com/faqdesk/faqdesk/internal/config"
)

// New builds the embedder stack for the configured provider. The returned
// embedder is lazy: nothing is constructed or contacted until the first
// Embed call. Results are cached by text content.
func New(cfg *config.Config) (Embedder, error) {
	if cfg == nil {
		return nil, fmt.Errorf("embed: config is required")
	}

	var lazy *LazyEmbedder
	switch cfg.Embeddings.Provider {
	case config.ProviderOllama:
		ollamaCfg := OllamaConfig{
			Host:       cfg.Embeddings.OllamaHost,
			Model:      cfg.Embeddings.Model,
			Dimensions: cfg.Embeddings.Dimensions,
			Timeout:    cfg.Embeddings.RequestTimeout,
		}
		lazy = NewLazyEmbedder(ollamaCfg.Model, ollamaCfg.Dimensions, func(ctx context.Context) (Embedder, error) {
			e := NewOllamaEmbedder(ollamaCfg)
			if !e.Available(ctx) {
				_ = e.Close()
				return nil, fmt.Errorf("ollama not reachable at %s", ollamaCfg.Host)
			}
			return e, nil
		})

	case config.ProviderStatic:
		lazy = NewLazyEmbedder("static", StaticDimensions, func(_ context.Context) (Embedder, error) {
			return NewStaticEmbedder(), nil
		})

	default:
		return nil, fmt.Errorf("embed: unknown provider %q", cfg.Embeddings.Provider)
	}

	return NewCachedEmbedder(lazy, cfg.Embeddings.CacheSize), nil
}
