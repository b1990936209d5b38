package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ministryofjustice/operations-engineering-reports/pkg/config"
)

// Version is set via ldflags when building.
var Version = "dev"

var (
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:          "reports",
		Short:        "GitHub repository compliance reports",
		Long:         "Stores the compliance reports pushed by the repository checker job and serves them as listings and badges.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load() // silently ignore if .env doesn't exist

			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			setupLogging(cfg.LogLevel, cfg.LogFormat)
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(
		serveCmd,
		migrateCmd,
		ingestCmd,
	)
	rootCmd.Version = Version
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
