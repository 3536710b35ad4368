package cmd

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"
)

// statsReport summarizes the knowledge base state.
type statsReport struct {
	DBPath     string `json:"db_path"`
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions"`
	Entries    int    `json:"entries"`
	Vectorized int    `json:"vectorized"`
	Pending    int    `json:"pending"`
}

func newStatsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show knowledge base statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context(), cmd, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runStats(ctx context.Context, cmd *cobra.Command, format string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	total, err := a.store.Count(ctx)
	if err != nil {
		return err
	}
	modelID := a.embedder.ModelName()
	vectorized, err := a.store.AllVectorized(ctx, modelID)
	if err != nil {
		return err
	}
	pending, err := a.store.MissingOrStale(ctx, modelID, 0)
	if err != nil {
		return err
	}

	report := statsReport{
		DBPath:     a.cfg.Storage.Path,
		Provider:   a.cfg.Embeddings.Provider,
		Model:      modelID,
		Dimensions: a.embedder.Dimensions(),
		Entries:    total,
		Vectorized: len(vectorized),
		Pending:    len(pending),
	}

	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	cmd.Printf("Database:   %s\n", report.DBPath)
	cmd.Printf("Embeddings: %s (%s, %d dimensions)\n", report.Provider, report.Model, report.Dimensions)
	cmd.Printf("Entries:    %d\n", report.Entries)
	cmd.Printf("Vectorized: %d\n", report.Vectorized)
	if report.Pending > 0 {
		cmd.Printf("Pending:    %d (run 'faqdesk backfill')\n", report.Pending)
	}
	return nil
}
