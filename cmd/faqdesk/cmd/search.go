package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/faqdesk/faqdesk/internal/search"
	"github.com/faqdesk/faqdesk/internal/telemetry"
)

func newSearchCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the knowledge base",
		Long: `Answer a free-form question against the knowledge base.

Semantic similarity is tried first; if the embedding model is not
reachable the query degrades to keyword matching, and failing that the
full catalog is returned so there is always something to work with.

Examples:
  faqdesk search "how do I change my password"
  faqdesk search refund --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), cmd, strings.Join(args, " "), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, query, format string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	engine, err := search.NewEngine(a.store, a.embedder, telemetry.NewMetrics(), a.cfg)
	if err != nil {
		return err
	}

	results, err := engine.Search(ctx, query)
	if err != nil {
		return err
	}

	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		cmd.Println("The knowledge base is empty.")
		return nil
	}

	switch results[0].Strategy {
	case search.StrategyKeyword:
		cmd.Println("Semantic search unavailable; showing keyword matches.")
	case search.StrategyCatalog:
		cmd.Println("No direct match; showing the full catalog.")
	}

	for i, r := range results {
		header := fmt.Sprintf("%d. %s", i+1, r.Question)
		if r.Strategy == search.StrategySemantic {
			header += fmt.Sprintf("  (%.2f)", r.Score)
		}
		cmd.Println(header)
		cmd.Printf("   %s\n", r.Answer)
	}
	return nil
}
