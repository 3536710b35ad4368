// Package backfill embeds entries that have no vector yet, or whose vector
// was produced by a different model. It runs in batches so an interrupt
// loses at most one batch of work, and a second run picks up exactly where
// the first one stopped.
package backfill

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/faqdesk/faqdesk/internal/embed"
	"github.com/faqdesk/faqdesk/internal/store"
)

// DefaultBatchSize bounds one fetch of pending entries.
const DefaultBatchSize = 10

// embedConcurrency bounds parallel embed requests within a batch.
const embedConcurrency = 4

// Job embeds pending entries until none remain.
type Job struct {
	store    store.Store
	embedder embed.Embedder
}

// NewJob creates a backfill job.
func NewJob(st store.Store, em embed.Embedder) (*Job, error) {
	if st == nil {
		return nil, fmt.Errorf("backfill: store is required")
	}
	if em == nil {
		return nil, fmt.Errorf("backfill: embedder is required")
	}
	return &Job{store: st, embedder: em}, nil
}

// Run embeds pending entries in batches of batchSize and returns the number
// embedded. An entry whose embedding fails is logged and skipped; it stays
// pending for the next run. Context cancellation stops cleanly between
// batches, returning the count so far.
func (j *Job) Run(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	modelID := j.embedder.ModelName()
	start := time.Now()

	var embedded, failed atomic.Int64
	attempted := make(map[string]bool)

	slog.Info("backfill_started",
		slog.String("model", modelID),
		slog.Int("batch_size", batchSize))

	for {
		if err := ctx.Err(); err != nil {
			slog.Info("backfill_interrupted",
				slog.Int64("embedded", embedded.Load()))
			return int(embedded.Load()), err
		}

		// Failed entries stay pending and come back from the store on
		// the next fetch. Widen the fetch past them so a bad batch at
		// the front never hides the entries behind it, then drop the
		// ones already attempted so the loop terminates.
		entries, err := j.store.MissingOrStale(ctx, modelID, batchSize+len(attempted))
		if err != nil {
			return int(embedded.Load()), err
		}

		pending := entries[:0]
		for _, entry := range entries {
			if !attempted[entry.ID] {
				pending = append(pending, entry)
			}
		}
		if len(pending) == 0 {
			break
		}
		if len(pending) > batchSize {
			pending = pending[:batchSize]
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(embedConcurrency)
		for _, entry := range pending {
			entry := entry
			attempted[entry.ID] = true
			g.Go(func() error {
				vec, err := j.embedder.Embed(gctx, entry.Question)
				if err != nil {
					failed.Add(1)
					slog.Warn("backfill_entry_failed",
						slog.String("entry_id", entry.ID),
						slog.String("error", err.Error()))
					return nil
				}
				if err := j.store.SetVector(gctx, entry.ID, vec, modelID); err != nil {
					return err
				}
				embedded.Add(1)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return int(embedded.Load()), err
		}
	}

	slog.Info("backfill_complete",
		slog.Int64("embedded", embedded.Load()),
		slog.Int64("failed", failed.Load()),
		slog.Duration("elapsed", time.Since(start)))
	return int(embedded.Load()), nil
}
