package commands

import (
	"os"
	"time"
	"trending-etl/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(batchesCmd)
}

var batchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "Lists the saved batches, newest first.",
	Run: func(cmd *cobra.Command, args []string) {
		store := mustStore(mustConfig())
		defer store.Close()

		err := store.EnsureSchema(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to ensure schema", err)
		}
		batches, err := store.Batches(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to list batches", err)
		}

		t := newTable(os.Stdout)
		t.AppendHeader(table.Row{"Batch", "Fetched at", "Rows"})
		for _, b := range batches {
			t.AppendRow(table.Row{b.Id, b.FetchedAt.Local().Format(time.DateTime), b.Rows})
		}
		t.Render()
	},
}
