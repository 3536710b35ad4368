package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/faqdesk/faqdesk/configs"
)

const defaultConfigName = "faqdesk.yaml"

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write an annotated config file",
		Long: `Write an annotated faqdesk.yaml with every option and its default into
the current directory. Edit it, then pass it with --config or keep it
next to the database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(defaultConfigName); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", defaultConfigName)
			}
			if err := os.WriteFile(defaultConfigName, []byte(configs.ConfigTemplate), 0644); err != nil {
				return err
			}
			cmd.Printf("Wrote %s\n", defaultConfigName)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}
