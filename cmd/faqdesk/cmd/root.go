// Package cmd provides the CLI commands for faqdesk.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/faqdesk/faqdesk/internal/config"
	"github.com/faqdesk/faqdesk/internal/logging"
	"github.com/faqdesk/faqdesk/pkg/version"
)

var (
	cfgFile   string
	dbPath    string
	debugMode bool
)

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd creates the root command for the faqdesk CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "faqdesk",
		Short: "Semantic FAQ knowledge base",
		Long: `faqdesk keeps a question/answer knowledge base in a single SQLite file
and answers free-form queries by embedding similarity, with keyword and
catalog fallbacks when the embedding model is unavailable.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.SetVersionTemplate("faqdesk version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file (YAML)")
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to database file (overrides config)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newEditCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newRemoveCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newBackfillCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// loadConfig loads the effective configuration for a command run.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	if debugMode {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// setupLogging installs the default logger per config. stderr stays quiet at
// warn level unless --debug is set, so command output remains readable.
func setupLogging(cfg *config.Config) (func(), error) {
	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.FilePath = cfg.Logging.File
	logCfg.WriteToStderr = debugMode || cfg.Logging.File == ""
	if !debugMode && cfg.Logging.File == "" {
		logCfg.Level = "warn"
	}

	cleanup, err := logging.SetupDefault(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: logging setup failed: %v\n", err)
		return func() {}, nil
	}
	return cleanup, nil
}
