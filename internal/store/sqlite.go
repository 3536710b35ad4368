package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	faqerrors "github.com/faqdesk/faqdesk/internal/errors"
)

// timeFormat is the column format for created_at/updated_at.
const timeFormat = time.RFC3339Nano

// SQLiteStore implements Store on a single SQLite file. WAL mode plus a
// single-writer connection pool keeps concurrent readers and the backfill
// writer from tripping over each other.
type SQLiteStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	dims   int
	closed bool
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at path. dims is the
// expected vector dimension, enforced when vectors are read back.
// An empty path opens an in-memory database for testing.
func NewSQLiteStore(path string, dims int) (*SQLiteStore, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("store: dimensions must be positive, got %d", dims)
	}

	dsn := ":memory:"
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable,
				fmt.Errorf("failed to create directory %s: %w", dir, err))
		}
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable, err)
	}

	// Single writer to prevent lock contention.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// WAL must be set via PRAGMA for modernc.org/sqlite; DSN params are
	// not honored.
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable,
				fmt.Errorf("failed to set pragma: %w", err))
		}
	}

	s := &SQLiteStore{db: db, path: path, dims: dims}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable,
			fmt.Errorf("failed to initialize schema: %w", err))
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS entries (
		id              TEXT PRIMARY KEY,
		question        TEXT NOT NULL,
		answer          TEXT NOT NULL,
		embedding       BLOB,
		embedding_model TEXT NOT NULL DEFAULT '',
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	);

	-- entry_id is UNINDEXED (stored but not searchable); content holds
	-- question and answer text for the keyword stage.
	CREATE VIRTUAL TABLE IF NOT EXISTS entries_fts USING fts5(
		entry_id UNINDEXED,
		content,
		tokenize='unicode61'
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return faqerrors.New(faqerrors.ErrCodeStorageUnavailable, "store is closed", nil)
	}
	return nil
}

// Upsert inserts or replaces the entry row and its FTS row in one
// transaction.
func (s *SQLiteStore) Upsert(ctx context.Context, entry *Entry) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if entry == nil || entry.ID == "" {
		return faqerrors.New(faqerrors.ErrCodeInvalidInput, "entry must have an ID", nil)
	}

	entry.UpdatedAt = time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = entry.UpdatedAt
	}

	var blob []byte
	if entry.Vectorized() {
		blob = MarshalVector(entry.Vector)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO entries
			(id, question, answer, embedding, embedding_model, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Question, entry.Answer, blob, entry.ModelID,
		entry.CreatedAt.Format(timeFormat), entry.UpdatedAt.Format(timeFormat))
	if err != nil {
		return faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable, err)
	}

	// FTS5 virtual tables don't support REPLACE, so delete first.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM entries_fts WHERE entry_id = ?`, entry.ID); err != nil {
		return faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO entries_fts (entry_id, content) VALUES (?, ?)`,
		entry.ID, entry.Question+"\n"+entry.Answer); err != nil {
		return faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable, err)
	}

	slog.Debug("entry_upserted",
		slog.String("entry_id", entry.ID),
		slog.Bool("vectorized", entry.Vectorized()))
	return nil
}

// Update replaces the question and/or answer of an existing entry. A
// question change means the stored vector no longer embeds the text it was
// made from, so the embedding is cleared and the entry becomes pending
// again; an answer-only change keeps the vector. The FTS row is refreshed
// either way. Returns the updated entry.
func (s *SQLiteStore) Update(ctx context.Context, id, question, answer string) (*Entry, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	questionChanged := question != entry.Question
	entry.Question = question
	entry.Answer = answer
	entry.UpdatedAt = time.Now().UTC()
	if questionChanged {
		entry.Vector = nil
		entry.ModelID = ""
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	if questionChanged {
		_, err = tx.ExecContext(ctx, `
			UPDATE entries
			SET question = ?, answer = ?, embedding = NULL,
			    embedding_model = '', updated_at = ?
			WHERE id = ?`,
			question, answer, entry.UpdatedAt.Format(timeFormat), id)
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE entries
			SET question = ?, answer = ?, updated_at = ?
			WHERE id = ?`,
			question, answer, entry.UpdatedAt.Format(timeFormat), id)
	}
	if err != nil {
		return nil, faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM entries_fts WHERE entry_id = ?`, id); err != nil {
		return nil, faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO entries_fts (entry_id, content) VALUES (?, ?)`,
		id, question+"\n"+answer); err != nil {
		return nil, faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable, err)
	}

	slog.Debug("entry_updated",
		slog.String("entry_id", id),
		slog.Bool("question_changed", questionChanged))
	return entry, nil
}

// SetVector attaches an embedding to an existing entry without touching its
// text.
func (s *SQLiteStore) SetVector(ctx context.Context, id string, vector []float32, modelID string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if len(vector) == 0 {
		return faqerrors.New(faqerrors.ErrCodeInvalidInput, "vector must not be empty", nil)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE entries
		SET embedding = ?, embedding_model = ?, updated_at = ?
		WHERE id = ?`,
		MarshalVector(vector), modelID, time.Now().UTC().Format(timeFormat), id)
	if err != nil {
		return faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable, err)
	}
	return s.requireRow(res, id)
}

// ClearVector drops the embedding and model of an entry.
func (s *SQLiteStore) ClearVector(ctx context.Context, id string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE entries
		SET embedding = NULL, embedding_model = '', updated_at = ?
		WHERE id = ?`,
		time.Now().UTC().Format(timeFormat), id)
	if err != nil {
		return faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable, err)
	}
	return s.requireRow(res, id)
}

// Remove deletes the entry and its FTS row in one transaction.
func (s *SQLiteStore) Remove(ctx context.Context, id string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable, err)
	}
	if affected == 0 {
		return faqerrors.New(faqerrors.ErrCodeEntryNotFound, "entry not found", nil).
			WithDetail("entry_id", id)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM entries_fts WHERE entry_id = ?`, id); err != nil {
		return faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable, err)
	}

	slog.Debug("entry_removed", slog.String("entry_id", id))
	return nil
}

// Get returns one entry by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Entry, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, question, answer, embedding, embedding_model, created_at, updated_at
		FROM entries WHERE id = ?`, id)

	entry, err := s.scanEntry(row.Scan, true)
	if err == sql.ErrNoRows {
		return nil, faqerrors.New(faqerrors.ErrCodeEntryNotFound, "entry not found", nil).
			WithDetail("entry_id", id)
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns entries ordered by creation time, newest first. limit <= 0
// means no limit.
func (s *SQLiteStore) List(ctx context.Context, offset, limit int) ([]*Entry, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = -1 // SQLite: negative LIMIT means unlimited
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question, answer, embedding, embedding_model, created_at, updated_at
		FROM entries
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	return s.collectEntries(rows, true)
}

// Count returns the total number of entries.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entries`).Scan(&count); err != nil {
		return 0, faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable, err)
	}
	return count, nil
}

// AllVectorized returns every entry embedded with the given model. Entries
// whose blob fails decoding are logged and skipped; the read itself never
// fails on corruption.
func (s *SQLiteStore) AllVectorized(ctx context.Context, modelID string) ([]*Entry, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question, answer, embedding, embedding_model, created_at, updated_at
		FROM entries
		WHERE embedding IS NOT NULL AND embedding_model = ?
		ORDER BY created_at, id`, modelID)
	if err != nil {
		return nil, faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	return s.collectEntries(rows, true)
}

// MissingOrStale returns up to limit entries that have no vector or carry a
// vector from a different model, oldest first so batches are deterministic.
func (s *SQLiteStore) MissingOrStale(ctx context.Context, modelID string, limit int) ([]*Entry, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question, answer, embedding, embedding_model, created_at, updated_at
		FROM entries
		WHERE embedding IS NULL OR embedding_model != ?
		ORDER BY created_at, id
		LIMIT ?`, modelID, limit)
	if err != nil {
		return nil, faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	// Vectors are stale here by definition; don't decode them.
	return s.collectEntries(rows, false)
}

// KeywordSearch matches query tokens against question and answer text via
// FTS5, falling back to a LIKE substring scan when FTS5 rejects the query.
func (s *SQLiteStore) KeywordSearch(ctx context.Context, query string, limit int) ([]*Entry, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	tokens := keywordTokens(query)
	if len(tokens) == 0 {
		return []*Entry{}, nil
	}

	// Quote each token so FTS5 operators in user input stay literal; OR
	// semantics favor recall since this stage runs after semantic search
	// has already failed.
	quoted := make([]string, len(tokens))
	for i, tok := range tokens {
		quoted[i] = `"` + tok + `"`
	}
	match := strings.Join(quoted, " OR ")

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.question, e.answer, e.embedding, e.embedding_model, e.created_at, e.updated_at
		FROM entries_fts f
		JOIN entries e ON e.id = f.entry_id
		WHERE entries_fts MATCH ?
		ORDER BY bm25(entries_fts)
		LIMIT ?`, match, limit)
	if err != nil {
		if strings.Contains(err.Error(), "fts5") || strings.Contains(err.Error(), "syntax error") {
			return s.likeSearch(ctx, tokens, limit)
		}
		return nil, faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	return s.collectEntries(rows, false)
}

// likeSearch is the substring fallback for queries FTS5 cannot parse.
func (s *SQLiteStore) likeSearch(ctx context.Context, tokens []string, limit int) ([]*Entry, error) {
	conds := make([]string, 0, len(tokens))
	args := make([]any, 0, len(tokens)*2)
	for _, tok := range tokens {
		pattern := "%" + strings.ToLower(tok) + "%"
		conds = append(conds, "(LOWER(question) LIKE ? OR LOWER(answer) LIKE ?)")
		args = append(args, pattern, pattern)
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question, answer, embedding, embedding_model, created_at, updated_at
		FROM entries
		WHERE `+strings.Join(conds, " OR ")+`
		ORDER BY created_at DESC, id
		LIMIT ?`, args...)
	if err != nil {
		return nil, faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	return s.collectEntries(rows, false)
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// requireRow converts a zero-row UPDATE into an entry-not-found error.
func (s *SQLiteStore) requireRow(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable, err)
	}
	if affected == 0 {
		return faqerrors.New(faqerrors.ErrCodeEntryNotFound, "entry not found", nil).
			WithDetail("entry_id", id)
	}
	return nil
}

// scanEntry maps one row to an Entry. When decodeVector is set, a bad blob
// surfaces as a storage corruption error; callers decide whether that skips
// the entry or fails the call.
func (s *SQLiteStore) scanEntry(scan func(...any) error, decodeVector bool) (*Entry, error) {
	var (
		entry              Entry
		blob               []byte
		createdAt, updated string
	)
	if err := scan(&entry.ID, &entry.Question, &entry.Answer, &blob,
		&entry.ModelID, &createdAt, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable, err)
	}

	var err error
	if entry.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return nil, faqerrors.StorageCorruption("unparseable created_at", err)
	}
	if entry.UpdatedAt, err = time.Parse(timeFormat, updated); err != nil {
		return nil, faqerrors.StorageCorruption("unparseable updated_at", err)
	}

	if decodeVector && len(blob) > 0 {
		vec, err := UnmarshalVector(blob, s.dims)
		if err != nil {
			return &entry, err
		}
		entry.Vector = vec
	}
	return &entry, nil
}

// collectEntries drains rows, skipping corrupt vectors with a log line.
func (s *SQLiteStore) collectEntries(rows *sql.Rows, decodeVector bool) ([]*Entry, error) {
	entries := []*Entry{}
	for rows.Next() {
		entry, err := s.scanEntry(rows.Scan, decodeVector)
		if err != nil {
			if faqerrors.IsStorageCorruption(err) {
				id := ""
				if entry != nil {
					id = entry.ID
				}
				slog.Warn("entry_vector_corrupt",
					slog.String("entry_id", id),
					slog.String("error", err.Error()))
				continue
			}
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, faqerrors.Wrap(faqerrors.ErrCodeStorageUnavailable, err)
	}
	return entries, nil
}

// keywordTokens lowercases and splits a query into word tokens.
func keywordTokens(query string) []string {
	return strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
