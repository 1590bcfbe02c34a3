package commands

import (
	"errors"
	"os"
	"trending-etl/lib/report"
	"trending-etl/lib/serviceutil"
	"trending-etl/services/trending"

	"github.com/spf13/cobra"
)

var reportLatest *bool

func init() {
	reportLatest = reportCmd.Flags().Bool("latest", false, "Only summarize the most recent batch.")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report [--latest]",
	Short: "Summarizes the stored repositories: star/fork correlation, distributions and languages.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustConfig()
		store := mustStore(cfg)
		defer store.Close()
		service := mustService(cfg, store)

		err := service.Report(cmd.Context(), os.Stdout, trending.ReportOptions{Latest: *reportLatest})
		if errors.Is(err, report.ErrEmptyDataset) {
			serviceutil.Fatal("nothing to report, run ingest first", err)
		}
		if err != nil {
			serviceutil.Fatal("failed to report", err)
		}
	},
}
