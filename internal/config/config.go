// Package config loads and validates faqdesk configuration.
// Precedence, lowest to highest: hardcoded defaults, YAML config file,
// FAQDESK_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Embedding providers.
const (
	ProviderOllama = "ollama"
	ProviderStatic = "static"
)

// Config represents the complete faqdesk configuration.
type Config struct {
	Storage    StorageConfig    `yaml:"storage"`
	Search     SearchConfig     `yaml:"search"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Limits     LimitsConfig     `yaml:"limits"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// StorageConfig configures the SQLite entry store.
type StorageConfig struct {
	// Path is the SQLite database file. Empty uses an in-memory database.
	Path string `yaml:"path"`
}

// SearchConfig configures the semantic search chain.
type SearchConfig struct {
	// Enabled toggles the semantic stage. When false the chain starts at
	// the keyword stage.
	Enabled bool `yaml:"enabled"`

	// TopK is the maximum number of results returned (default: 5).
	TopK int `yaml:"top_k"`

	// SimilarityThreshold is the minimum cosine score for inclusion
	// (default: 0.3).
	SimilarityThreshold float64 `yaml:"similarity_threshold"`

	// BackfillBatchSize is the number of entries embedded per backfill
	// batch (default: 10).
	BackfillBatchSize int `yaml:"backfill_batch_size"`

	// MaxQueryLength is the maximum accepted query length in runes
	// (default: 200). Longer queries are rejected, not truncated.
	MaxQueryLength int `yaml:"max_query_length"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	// Provider selects the embedder backend: "ollama" or "static".
	Provider string `yaml:"provider"`

	// Model is the model identifier stored alongside each vector.
	// Vectors produced by a different model are treated as stale.
	Model string `yaml:"model"`

	// Dimensions is the embedding dimension D.
	Dimensions int `yaml:"dimensions"`

	// OllamaHost is the Ollama API endpoint.
	OllamaHost string `yaml:"ollama_host"`

	// RequestTimeout bounds a single encode call; a stall past this is
	// treated as the model being unavailable.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// CacheSize is the number of query embeddings kept in the LRU cache.
	CacheSize int `yaml:"cache_size"`
}

// LimitsConfig bounds stored content.
type LimitsConfig struct {
	MaxQuestionLength int `yaml:"max_question_length"`
	MaxAnswerLength   int `yaml:"max_answer_length"`
	MaxEntries        int `yaml:"max_entries"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// NewConfig creates a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Path: "faqdesk.db",
		},
		Search: SearchConfig{
			Enabled:             true,
			TopK:                5,
			SimilarityThreshold: 0.3,
			BackfillBatchSize:   10,
			MaxQueryLength:      200,
		},
		Embeddings: EmbeddingsConfig{
			Provider:       ProviderOllama,
			Model:          "nomic-embed-text",
			Dimensions:     768,
			OllamaHost:     "http://localhost:11434",
			RequestTimeout: 30 * time.Second,
			CacheSize:      1000,
		},
		Limits: LimitsConfig{
			MaxQuestionLength: 500,
			MaxAnswerLength:   2000,
			MaxEntries:        100,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the given YAML file (optional) and applies
// environment overrides. An empty path skips the file step.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)

	// Zero is a real value in the search section (an explicitly disabled
	// stage, a 0.0 threshold), so the zero-value merge cannot tell "set
	// to zero" from "absent". Re-read it through pointer fields and apply
	// whatever the file actually set.
	var probe struct {
		Search struct {
			Enabled             *bool    `yaml:"enabled"`
			TopK                *int     `yaml:"top_k"`
			SimilarityThreshold *float64 `yaml:"similarity_threshold"`
			BackfillBatchSize   *int     `yaml:"backfill_batch_size"`
			MaxQueryLength      *int     `yaml:"max_query_length"`
		} `yaml:"search"`
	}
	if err := yaml.Unmarshal(data, &probe); err == nil {
		if probe.Search.Enabled != nil {
			c.Search.Enabled = *probe.Search.Enabled
		}
		if probe.Search.TopK != nil {
			c.Search.TopK = *probe.Search.TopK
		}
		if probe.Search.SimilarityThreshold != nil {
			c.Search.SimilarityThreshold = *probe.Search.SimilarityThreshold
		}
		if probe.Search.BackfillBatchSize != nil {
			c.Search.BackfillBatchSize = *probe.Search.BackfillBatchSize
		}
		if probe.Search.MaxQueryLength != nil {
			c.Search.MaxQueryLength = *probe.Search.MaxQueryLength
		}
	}
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Storage.Path != "" {
		c.Storage.Path = other.Storage.Path
	}

	// Search fields are merged by loadYAML through pointer fields so an
	// explicit zero survives; nothing to do for them here.

	if other.Embeddings.Provider != "" {
		c.Embeddings.Provider = other.Embeddings.Provider
	}
	if other.Embeddings.Model != "" {
		c.Embeddings.Model = other.Embeddings.Model
	}
	if other.Embeddings.Dimensions != 0 {
		c.Embeddings.Dimensions = other.Embeddings.Dimensions
	}
	if other.Embeddings.OllamaHost != "" {
		c.Embeddings.OllamaHost = other.Embeddings.OllamaHost
	}
	if other.Embeddings.RequestTimeout != 0 {
		c.Embeddings.RequestTimeout = other.Embeddings.RequestTimeout
	}
	if other.Embeddings.CacheSize != 0 {
		c.Embeddings.CacheSize = other.Embeddings.CacheSize
	}

	if other.Limits.MaxQuestionLength != 0 {
		c.Limits.MaxQuestionLength = other.Limits.MaxQuestionLength
	}
	if other.Limits.MaxAnswerLength != 0 {
		c.Limits.MaxAnswerLength = other.Limits.MaxAnswerLength
	}
	if other.Limits.MaxEntries != 0 {
		c.Limits.MaxEntries = other.Limits.MaxEntries
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.File != "" {
		c.Logging.File = other.Logging.File
	}
}

// applyEnvOverrides applies FAQDESK_* environment variables.
// Environment variables have the highest precedence.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FAQDESK_DB_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("FAQDESK_SEARCH_ENABLED"); v != "" {
		c.Search.Enabled = parseBool(v, c.Search.Enabled)
	}
	if v := os.Getenv("FAQDESK_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.TopK = n
		}
	}
	if v := os.Getenv("FAQDESK_SIMILARITY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Search.SimilarityThreshold = f
		}
	}
	if v := os.Getenv("FAQDESK_BACKFILL_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.BackfillBatchSize = n
		}
	}
	if v := os.Getenv("FAQDESK_MAX_QUERY_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.MaxQueryLength = n
		}
	}
	if v := os.Getenv("FAQDESK_EMBED_PROVIDER"); v != "" {
		c.Embeddings.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("FAQDESK_EMBED_MODEL"); v != "" {
		c.Embeddings.Model = v
	}
	if v := os.Getenv("FAQDESK_EMBED_DIMENSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Embeddings.Dimensions = n
		}
	}
	if v := os.Getenv("FAQDESK_OLLAMA_HOST"); v != "" {
		c.Embeddings.OllamaHost = v
	}
	if v := os.Getenv("FAQDESK_EMBED_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Embeddings.RequestTimeout = d
		}
	}
	if v := os.Getenv("FAQDESK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("FAQDESK_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
}

// parseBool interprets common truthy/falsy spellings, keeping fallback on
// anything unrecognized.
func parseBool(v string, fallback bool) bool {
	switch strings.ToLower(v) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return fallback
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Search.TopK < 1 {
		return fmt.Errorf("search.top_k must be >= 1, got %d", c.Search.TopK)
	}
	if c.Search.SimilarityThreshold < -1 || c.Search.SimilarityThreshold > 1 {
		return fmt.Errorf("search.similarity_threshold must be in [-1, 1], got %v", c.Search.SimilarityThreshold)
	}
	if c.Search.BackfillBatchSize < 1 {
		return fmt.Errorf("search.backfill_batch_size must be >= 1, got %d", c.Search.BackfillBatchSize)
	}
	if c.Search.MaxQueryLength < 1 {
		return fmt.Errorf("search.max_query_length must be >= 1, got %d", c.Search.MaxQueryLength)
	}
	if c.Embeddings.Dimensions < 1 {
		return fmt.Errorf("embeddings.dimensions must be >= 1, got %d", c.Embeddings.Dimensions)
	}
	switch c.Embeddings.Provider {
	case ProviderOllama, ProviderStatic:
	default:
		return fmt.Errorf("embeddings.provider must be %q or %q, got %q", ProviderOllama, ProviderStatic, c.Embeddings.Provider)
	}
	if c.Embeddings.RequestTimeout <= 0 {
		return fmt.Errorf("embeddings.request_timeout must be positive, got %v", c.Embeddings.RequestTimeout)
	}
	if c.Limits.MaxQuestionLength < 1 || c.Limits.MaxAnswerLength < 1 {
		return fmt.Errorf("limits.max_question_length and limits.max_answer_length must be >= 1")
	}
	return nil
}
