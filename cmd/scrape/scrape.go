// Package scrape implements the scrape command, which runs one full
// extraction pass against the tender listing.
package scrape

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/gotenders/cmd/common"
	"github.com/jonesrussell/gotenders/internal/domain"
)

// Command returns the scrape command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Run one scrape of the tender listing",
		Long: `Scrape walks the tender listing page by page, expands each row
advertised inside the configured date range, and merges the extracted
records into the cumulative and date-specific output files.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.Setup(cmd)
			if err != nil {
				return err
			}

			summary, err := common.RunScrape(cmd.Context(), deps)
			if err != nil {
				return err
			}

			renderSummary(summary)
			return nil
		},
	}
}

// renderSummary prints the run summary as a table.
func renderSummary(summary *domain.RunSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Run ID", summary.RunID},
		{"Report date", summary.ReportDate},
		{"Pages visited", summary.PagesVisited},
		{"Rows processed", summary.RowsProcessed},
		{"Rows skipped", summary.RowsSkipped},
		{"Rows outside range", summary.RowsFiltered},
		{"Inserted", summary.Merge.Inserted},
		{"Duplicates", summary.Merge.Duplicates},
		{"Rejected", summary.Merge.Rejected},
		{"Elapsed", summary.Elapsed.Round(time.Millisecond)},
	})
	t.Render()
}
