package commands

import (
	"os"
	"trending-etl/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var ingestUrl *string
var ingestLayout *string

func init() {
	ingestUrl = ingestCmd.Flags().String("url", "", "Overrides the page to fetch.")
	ingestLayout = ingestCmd.Flags().String("layout", "", "Overrides the page layout (current, classic).")
	rootCmd.AddCommand(ingestCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [--url <link>] [--layout <name>]",
	Short: "Fetches the trending page and appends its repositories to the store as a new batch.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustConfig()
		if *ingestUrl != "" {
			cfg.Source.Url = *ingestUrl
		}
		if *ingestLayout != "" {
			cfg.Source.Layout = *ingestLayout
		}

		store := mustStore(cfg)
		defer store.Close()
		service := mustService(cfg, store)

		result, err := service.Ingest(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to ingest", err)
		}

		t := newTable(os.Stdout)
		t.AppendRows([]table.Row{
			{"batch", result.Batch.Id},
			{"entries", result.Entries},
			{"saved", result.Saved},
			{"dropped", result.Dropped},
		})
		t.Render()

		if len(result.Warnings) == 0 {
			return
		}
		warnings := newTable(os.Stdout)
		warnings.AppendHeader(table.Row{"Entry", "Field", "Problem"})
		for _, w := range result.Warnings {
			warnings.AppendRow(table.Row{w.Index, w.Field, w.Err.Error()})
		}
		warnings.Render()
	},
}
