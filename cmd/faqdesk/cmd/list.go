package cmd

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var page, pageSize int
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries in the knowledge base",
		Long: `List entries, newest first.

Examples:
  faqdesk list
  faqdesk list --page 2 --page-size 10
  faqdesk list --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), cmd, page, pageSize, format)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "Entries per page")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runList(ctx context.Context, cmd *cobra.Command, page, pageSize int, format string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	entries, err := a.store.List(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return err
	}
	total, err := a.store.Count(ctx)
	if err != nil {
		return err
	}

	if format == "json" {
		type listEntry struct {
			ID         string `json:"id"`
			Question   string `json:"question"`
			Answer     string `json:"answer"`
			Vectorized bool   `json:"vectorized"`
			CreatedAt  string `json:"created_at"`
		}
		out := make([]listEntry, 0, len(entries))
		for _, e := range entries {
			out = append(out, listEntry{
				ID:         e.ID,
				Question:   e.Question,
				Answer:     e.Answer,
				Vectorized: e.Vectorized(),
				CreatedAt:  e.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(entries) == 0 {
		cmd.Println("No entries.")
		return nil
	}

	for _, e := range entries {
		marker := " "
		if !e.Vectorized() {
			marker = "*"
		}
		cmd.Printf("%s %s  %s\n", marker, e.ID, e.Question)
		cmd.Printf("    %s\n", e.Answer)
	}
	cmd.Printf("\nPage %d (%d of %d entries). Entries marked * await backfill.\n",
		page, len(entries), total)
	return nil
}
