package commands

import (
	"io"
	"os"
	"trending-etl/lib/report"
	"trending-etl/lib/serviceutil"
	"trending-etl/lib/trending"
	trendingsvc "trending-etl/services/trending"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var showLatest *bool
var showLimit *int

func init() {
	showLatest = showCmd.Flags().Bool("latest", false, "Only show the most recent batch.")
	showLimit = showCmd.Flags().Int("limit", 0, "Shows at most this many rows, 0 shows all of them.")
	rootCmd.AddCommand(showCmd)
}

func newTable(w io.Writer) table.Writer {
	return report.NewTable(w)
}

func renderRecords(w io.Writer, records trending.Dataset, limit int) {
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Repository", "Stars", "Forks", "Today", "Language", "Url"})
	for _, r := range records {
		t.AppendRow(table.Row{r.FullName(), r.Star, r.Fork, r.TodayStar, r.Language, r.RepoUrl})
	}
	t.Render()
}

var showCmd = &cobra.Command{
	Use:   "show [--latest] [--limit <n>]",
	Short: "Prints the stored repositories.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustConfig()
		store := mustStore(cfg)
		defer store.Close()
		service := mustService(cfg, store)

		records, err := service.Load(cmd.Context(), trendingsvc.ReportOptions{Latest: *showLatest})
		if err != nil {
			serviceutil.Fatal("failed to load records", err)
		}
		renderRecords(os.Stdout, records, *showLimit)
	},
}
