package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/faqdesk/faqdesk/internal/output"
	"github.com/faqdesk/faqdesk/internal/validate"
)

func newEditCmd() *cobra.Command {
	var question, answer string

	cmd := &cobra.Command{
		Use:   "edit <entry-id>",
		Short: "Edit an existing entry",
		Long: `Edit the question and/or answer of an existing entry.

Changing the question invalidates the stored embedding; the entry is
re-embedded immediately when the model is reachable, otherwise it is
picked up by the next 'faqdesk backfill' run. Changing only the answer
keeps the existing embedding.

Examples:
  faqdesk edit 4f2c... -a "Use the forgot password link on the login page."
  faqdesk edit 4f2c... -q "How do I reset my password?"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd.Context(), cmd, args[0], question, answer)
		},
	}

	cmd.Flags().StringVarP(&question, "question", "q", "", "New question text")
	cmd.Flags().StringVarP(&answer, "answer", "a", "", "New answer text")

	return cmd
}

func runEdit(ctx context.Context, cmd *cobra.Command, id, question, answer string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	out := output.New(cmd.OutOrStdout())
	if question == "" && answer == "" {
		out.Warning("Nothing to change; pass --question and/or --answer.")
		return nil
	}

	current, err := a.store.Get(ctx, id)
	if err != nil {
		return err
	}

	newQuestion := current.Question
	if question != "" {
		newQuestion, err = validate.Question(question, a.cfg.Limits.MaxQuestionLength)
		if err != nil {
			return err
		}
	}
	newAnswer := current.Answer
	if answer != "" {
		newAnswer, err = validate.Answer(answer, a.cfg.Limits.MaxAnswerLength)
		if err != nil {
			return err
		}
	}

	updated, err := a.store.Update(ctx, id, newQuestion, newAnswer)
	if err != nil {
		return err
	}

	out.Successf("Updated entry %s", id)

	// A question change cleared the vector; re-embed eagerly but tolerate
	// failure the same way add does.
	if updated.Vectorized() {
		return nil
	}
	if vec, err := a.embedder.Embed(ctx, newQuestion); err != nil {
		slog.Warn("edit_embed_failed",
			slog.String("entry_id", id),
			slog.String("error", err.Error()))
		out.Warning("Embedding unavailable; run 'faqdesk backfill' later.")
	} else if err := a.store.SetVector(ctx, id, vec, a.embedder.ModelName()); err != nil {
		return err
	}
	return nil
}
