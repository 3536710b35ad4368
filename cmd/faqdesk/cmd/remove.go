package cmd

import (
	"github.com/spf13/cobra"

	"github.com/faqdesk/faqdesk/internal/output"
)

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an entry",
		Long: `Remove an entry and its embedding from the knowledge base.

Example:
  faqdesk remove 3f1c9a4e-8d2b-4f6a-9c01-5a7e2b8d4c10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			output.New(cmd.OutOrStdout()).Successf("Removed entry %s", args[0])
			return nil
		},
	}
	return cmd
}
