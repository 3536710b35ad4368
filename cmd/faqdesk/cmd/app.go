package cmd

import (
	"github.com/faqdesk/faqdesk/internal/config"
	"github.com/faqdesk/faqdesk/internal/embed"
	"github.com/faqdesk/faqdesk/internal/store"
)

// app wires the collaborators a command needs: config, store and embedder.
// The embedder is lazy, so commands that never embed pay nothing for it.
type app struct {
	cfg      *config.Config
	store    *store.SQLiteStore
	embedder embed.Embedder

	logCleanup func()
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logCleanup, err := setupLogging(cfg)
	if err != nil {
		return nil, err
	}

	em, err := embed.New(cfg)
	if err != nil {
		logCleanup()
		return nil, err
	}

	// The store validates blob lengths against the embedder's dimension,
	// not the configured one; the static provider has a fixed dimension
	// regardless of config.
	st, err := store.NewSQLiteStore(cfg.Storage.Path, em.Dimensions())
	if err != nil {
		_ = em.Close()
		logCleanup()
		return nil, err
	}

	return &app{
		cfg:        cfg,
		store:      st,
		embedder:   em,
		logCleanup: logCleanup,
	}, nil
}

func (a *app) Close() {
	_ = a.embedder.Close()
	_ = a.store.Close()
	a.logCleanup()
}
