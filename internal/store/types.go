// Package store persists FAQ entries and their embedding vectors in SQLite.
// A single database file holds the entries table, the embedding blobs and an
// FTS5 index used by the keyword search stage.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry is one question/answer pair. Vector is nil until the entry has been
// embedded; ModelID records which model produced the vector so a model
// switch marks every old vector stale rather than silently mixing spaces.
type Entry struct {
	ID        string
	Question  string
	Answer    string
	Vector    []float32
	ModelID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewEntry creates an entry with a fresh ID and timestamps. The vector is
// left empty; callers embed eagerly or leave it for backfill.
func NewEntry(question, answer string) *Entry {
	now := time.Now().UTC()
	return &Entry{
		ID:        uuid.NewString(),
		Question:  question,
		Answer:    answer,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Vectorized reports whether the entry carries an embedding.
func (e *Entry) Vectorized() bool {
	return len(e.Vector) > 0
}

// Store is the persistence contract consumed by the search chain, the
// backfill job and the CLI.
type Store interface {
	// Upsert inserts or replaces the full entry row, vector included,
	// together with its FTS row in one transaction.
	Upsert(ctx context.Context, entry *Entry) error

	// Update replaces the question and/or answer of an existing entry.
	// A question change invalidates the stored vector, so the entry
	// re-enters the backfill set until it is re-embedded.
	Update(ctx context.Context, id, question, answer string) (*Entry, error)

	// SetVector attaches an embedding to an existing entry without
	// touching its text.
	SetVector(ctx context.Context, id string, vector []float32, modelID string) error

	// ClearVector drops the embedding and model of an entry, marking it
	// for backfill.
	ClearVector(ctx context.Context, id string) error

	// Remove deletes the entry and its FTS row.
	Remove(ctx context.Context, id string) error

	// Get returns one entry by ID.
	Get(ctx context.Context, id string) (*Entry, error)

	// List returns entries ordered by creation time, newest first.
	List(ctx context.Context, offset, limit int) ([]*Entry, error)

	// Count returns the total number of entries.
	Count(ctx context.Context) (int, error)

	// AllVectorized returns every entry embedded with the given model.
	// Corrupt vector blobs are logged and skipped, never returned and
	// never fatal.
	AllVectorized(ctx context.Context, modelID string) ([]*Entry, error)

	// MissingOrStale returns up to limit entries that have no vector or a
	// vector from a different model, oldest first.
	MissingOrStale(ctx context.Context, modelID string, limit int) ([]*Entry, error)

	// KeywordSearch returns entries whose question or answer matches the
	// query tokens.
	KeywordSearch(ctx context.Context, query string, limit int) ([]*Entry, error)

	// Close releases the database handle.
	Close() error
}
