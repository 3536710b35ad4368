package cmd

import (
	"github.com/spf13/cobra"

	"github.com/faqdesk/faqdesk/internal/backfill"
	"github.com/faqdesk/faqdesk/internal/output"
)

func newBackfillCmd() *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Embed entries that are missing a vector",
		Long: `Embed every entry that has no vector, or whose vector was produced by a
different model. Safe to interrupt and re-run; a second run embeds only
what the first one did not finish.

Example:
  faqdesk backfill --batch-size 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if batchSize <= 0 {
				batchSize = a.cfg.Search.BackfillBatchSize
			}

			job, err := backfill.NewJob(a.store, a.embedder)
			if err != nil {
				return err
			}

			out := output.New(cmd.OutOrStdout())
			count, err := job.Run(cmd.Context(), batchSize)
			if err != nil {
				out.Errorf("Backfill stopped after %d entries: %v", count, err)
				return err
			}

			if count == 0 {
				out.Plain("Nothing to backfill.")
			} else {
				out.Successf("Embedded %d entries.", count)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Entries per batch (default from config)")

	return cmd
}
