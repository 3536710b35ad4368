package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	faqerrors "github.com/faqdesk/faqdesk/internal/errors"
	"github.com/faqdesk/faqdesk/internal/output"
	"github.com/faqdesk/faqdesk/internal/store"
	"github.com/faqdesk/faqdesk/internal/validate"
)

func newAddCmd() *cobra.Command {
	var question, answer string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a question/answer entry",
		Long: `Add a new entry to the knowledge base.

The entry is embedded immediately when the embedding model is reachable.
If it is not, the entry is saved without a vector and picked up by the
next 'faqdesk backfill' run.

Examples:
  faqdesk add -q "How do I reset my password?" -a "Use the forgot password link."`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd.Context(), cmd, question, answer)
		},
	}

	cmd.Flags().StringVarP(&question, "question", "q", "", "Question text (required)")
	cmd.Flags().StringVarP(&answer, "answer", "a", "", "Answer text (required)")
	_ = cmd.MarkFlagRequired("question")
	_ = cmd.MarkFlagRequired("answer")

	return cmd
}

func runAdd(ctx context.Context, cmd *cobra.Command, question, answer string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	q, err := validate.Question(question, a.cfg.Limits.MaxQuestionLength)
	if err != nil {
		return err
	}
	ans, err := validate.Answer(answer, a.cfg.Limits.MaxAnswerLength)
	if err != nil {
		return err
	}

	count, err := a.store.Count(ctx)
	if err != nil {
		return err
	}
	if count >= a.cfg.Limits.MaxEntries {
		return faqerrors.New(faqerrors.ErrCodeStorageFull,
			fmt.Sprintf("knowledge base is full (%d entries)", a.cfg.Limits.MaxEntries), nil)
	}

	entry := store.NewEntry(q, ans)

	// Embed eagerly but tolerate failure: a vector-less entry is still
	// searchable by keyword and gets its vector on the next backfill.
	vectorized := false
	if vec, err := a.embedder.Embed(ctx, q); err != nil {
		slog.Warn("add_embed_failed",
			slog.String("entry_id", entry.ID),
			slog.String("error", err.Error()))
	} else {
		entry.Vector = vec
		entry.ModelID = a.embedder.ModelName()
		vectorized = true
	}

	if err := a.store.Upsert(ctx, entry); err != nil {
		return err
	}

	out := output.New(cmd.OutOrStdout())
	out.Successf("Added entry %s", entry.ID)
	if !vectorized {
		out.Warning("Embedding unavailable; run 'faqdesk backfill' later.")
	}
	return nil
}
