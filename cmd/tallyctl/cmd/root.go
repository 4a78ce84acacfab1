package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/tally/internal/app"
	"github.com/MrJamesThe3rd/tally/internal/changefeed"
	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "tallyctl",
	Short: "Maintenance commands for Tally projects and invoices",
	Long: `tallyctl talks to the Tally database directly. It reads the same
environment variables (and .env file) as the API server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		loaded, err := config.Load()
		if err != nil {
			return err
		}

		cfg = loaded

		level, _ := cmd.Flags().GetString("log-level")
		if level == "" {
			level = cfg.Log.Level
		}

		return logger.Setup(logger.Config{Level: level, Format: cfg.Log.Format, Output: os.Stderr})
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Override LOG_LEVEL")
}

// openApp connects to the database. The CLI never writes invoices, so the
// change feed is a local one nobody reads.
func openApp(ctx context.Context) (*app.App, error) {
	a, err := app.New(ctx, cfg, changefeed.NewMemory(1))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return a, nil
}
