package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/selivandex/news-sentiment/internal/adapters/config"
	"github.com/selivandex/news-sentiment/pkg/logger"
)

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "sentiment",
		Short:         "Crypto news ingestion and 24h LLM sentiment forecasts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := initConfig()
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	getConfig := func() *config.Config { return cfg }

	root.AddCommand(
		newServeCmd(getConfig),
		newCollectCmd(getConfig),
		newPredictCmd(getConfig),
		newMigrateCmd(getConfig),
		newVersionCmd(),
	)

	return root
}

// initConfig loads configuration and initializes logger
func initConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// version must work without a valid environment
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sentiment %s (commit: %s)\n", version, commit)
		},
	}
}
