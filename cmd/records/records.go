// Package records implements the records command, which lists the contents
// of the cumulative output file.
package records

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/gotenders/cmd/common"
	"github.com/jonesrussell/gotenders/internal/domain"
	"github.com/jonesrussell/gotenders/internal/store"
)

const defaultLimit = 20

// Command returns the records command.
func Command() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "records",
		Short: "List records from the cumulative output file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.Setup(cmd)
			if err != nil {
				return err
			}

			s, err := store.OpenExcel(deps.Config.Output.CumulativeFile, domain.Columns())
			if err != nil {
				return fmt.Errorf("open cumulative store: %w", err)
			}

			render(s.ExistingRows(), limit)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", defaultLimit, "maximum number of records to show, most recent first")

	return cmd
}

// render prints the newest rows in a compact table. The full row is too wide
// for a terminal, so only the identifying columns are shown.
func render(rows [][]string, limit int) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{
		domain.ColRecordID, domain.ColTenderID, domain.ColPublicationDate,
		domain.ColClosingDate, domain.ColDepartment, domain.ColDescription,
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: domain.ColDescription, WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})

	start := len(rows) - limit
	if limit <= 0 || start < 0 {
		start = 0
	}
	for _, row := range rows[start:] {
		t.AppendRow(table.Row{row[1], row[2], row[3], row[4], row[9], row[7]})
	}

	t.Render()
	fmt.Printf("%d of %d records\n", len(rows)-start, len(rows))
}
