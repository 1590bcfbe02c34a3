package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"trending-etl/lib/telemetry"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath *string
var verbose *bool

var tel telemetry.Telemetry

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The config file, config.local.json5 overrides it when present.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enables debug logging.")
}

var rootCmd = &cobra.Command{
	Use:   "trending-cli",
	Short: "trending-cli collects the GitHub trending page into a database and reports on it.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)

		err := godotenv.Load()
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to load .env", "err", err)
		}

		tel, err = telemetry.SetupFromEnv(cmd.Context(), "trending-cli")
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to setup telemetry", "err", err)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		err := tel.Shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to shutdown telemetry", "err", err)
		}
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
