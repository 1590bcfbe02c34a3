package commands

import (
	"log/slog"
	"trending-etl/lib/serviceutil"
	"trending-etl/lib/trendstore"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(schemaCmd)
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Creates the trending table if it does not exist yet.",
	Run: func(cmd *cobra.Command, args []string) {
		store := mustStore(mustConfig())
		defer store.Close()

		err := store.EnsureSchema(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to ensure schema", err)
		}
		slog.Info("schema is ready", "table", trendstore.Table, "driver", store.Dialect().Name)
	},
}
