package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jonesrussell/gotenders/internal/domain"
)

// Workbook layout.
const (
	sheetName = "Sheet1"

	// maxColumnWidth caps auto-sized column widths.
	maxColumnWidth = 50
	// columnPadding is added to the longest cell when sizing a column.
	columnPadding = 2

	dateNumberFormat = "yyyy/mm/dd"
)

// dateColumns are styled with a date number format on flush.
var dateColumns = []string{
	domain.ColReportDate,
	domain.ColPublicationDate,
	domain.ColClosingDate,
	domain.ColBriefingDate,
}

// ExcelStore is an xlsx-backed Tabular store.
type ExcelStore struct {
	path     string
	columns  []string
	existing [][]string
	staged   [][]string
}

// Compile-time check that ExcelStore implements Tabular.
var _ Tabular = (*ExcelStore)(nil)

// OpenExcel opens the store at path, loading any existing rows. A missing
// file is an empty store; an existing file must carry the expected header.
func OpenExcel(path string, columns []string) (*ExcelStore, error) {
	s := &ExcelStore{path: path, columns: columns}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return s, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &PersistenceFailure{Path: path, Err: err}
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, &PersistenceFailure{Path: path, Err: err}
	}
	if len(rows) == 0 {
		return s, nil
	}

	if !slices.Equal(rows[0], columns) {
		return nil, &PersistenceFailure{Path: path, Err: ErrColumnMismatch}
	}

	for _, row := range rows[1:] {
		s.existing = append(s.existing, padRow(row, len(columns)))
	}

	return s, nil
}

// NewExcel creates a store that ignores any file already at path. Flushing
// replaces the file outright, which is what a per-run snapshot needs.
func NewExcel(path string, columns []string) *ExcelStore {
	return &ExcelStore{path: path, columns: columns}
}

// Path returns the backing file path.
func (s *ExcelStore) Path() string {
	return s.path
}

// Columns returns the column contract.
func (s *ExcelStore) Columns() []string {
	return s.columns
}

// ExistingRows returns the rows present before this run.
func (s *ExcelStore) ExistingRows() [][]string {
	return s.existing
}

// Append stages one row for the end-of-run flush.
func (s *ExcelStore) Append(row []string) {
	s.staged = append(s.staged, padRow(row, len(s.columns)))
}

// Flush writes the workbook to a temporary file and renames it into place,
// so a failed write never clobbers the previous run's output.
func (s *ExcelStore) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &PersistenceFailure{Path: s.path, Err: err}
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := s.writeRows(f); err != nil {
		return &PersistenceFailure{Path: s.path, Err: err}
	}
	if err := s.applyFormatting(f); err != nil {
		return &PersistenceFailure{Path: s.path, Err: err}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &PersistenceFailure{Path: s.path, Err: err}
	}

	tmp := s.path + ".tmp.xlsx"
	if err := f.SaveAs(tmp); err != nil {
		return &PersistenceFailure{Path: s.path, Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return &PersistenceFailure{Path: s.path, Err: err}
	}

	return nil
}

// writeRows writes the header, existing rows, and staged rows.
func (s *ExcelStore) writeRows(f *excelize.File) error {
	if err := f.SetSheetRow(sheetName, "A1", &s.columns); err != nil {
		return err
	}

	rowIndex := 2
	for _, rows := range [][][]string{s.existing, s.staged} {
		for _, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, rowIndex)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
				return err
			}
			rowIndex++
		}
	}

	return nil
}

// applyFormatting styles date columns, turns LINK cells into hyperlinks, and
// sizes columns to their content.
func (s *ExcelStore) applyFormatting(f *excelize.File) error {
	rowCount := len(s.existing) + len(s.staged)

	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(dateNumberFormat)})
	if err != nil {
		return err
	}
	for _, name := range dateColumns {
		idx := slices.Index(s.columns, name)
		if idx < 0 {
			continue
		}
		col, colErr := excelize.ColumnNumberToName(idx + 1)
		if colErr != nil {
			return colErr
		}
		if rowCount > 0 {
			top := fmt.Sprintf("%s2", col)
			bottom := fmt.Sprintf("%s%d", col, rowCount+1)
			if styleErr := f.SetCellStyle(sheetName, top, bottom, dateStyle); styleErr != nil {
				return styleErr
			}
		}
	}

	if err := s.applyHyperlinks(f); err != nil {
		return err
	}

	return s.sizeColumns(f)
}

// applyHyperlinks marks http(s) LINK cells as external hyperlinks.
func (s *ExcelStore) applyHyperlinks(f *excelize.File) error {
	linkIdx := slices.Index(s.columns, domain.ColLink)
	if linkIdx < 0 {
		return nil
	}

	rowIndex := 2
	for _, rows := range [][][]string{s.existing, s.staged} {
		for _, row := range rows {
			value := row[linkIdx]
			if strings.HasPrefix(value, "http") {
				cell, err := excelize.CoordinatesToCellName(linkIdx+1, rowIndex)
				if err != nil {
					return err
				}
				if err := f.SetCellHyperLink(sheetName, cell, value, "External"); err != nil {
					return err
				}
			}
			rowIndex++
		}
	}

	return nil
}

// sizeColumns widens each column to its longest cell, capped.
func (s *ExcelStore) sizeColumns(f *excelize.File) error {
	for i, name := range s.columns {
		width := len(name)
		for _, rows := range [][][]string{s.existing, s.staged} {
			for _, row := range rows {
				if len(row[i]) > width {
					width = len(row[i])
				}
			}
		}

		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, col, col, float64(min(width+columnPadding, maxColumnWidth))); err != nil {
			return err
		}
	}

	return nil
}

// padRow extends a short row to the column count so positional access is
// always in bounds.
func padRow(row []string, size int) []string {
	if len(row) >= size {
		return row[:size]
	}
	padded := make([]string, size)
	copy(padded, row)
	return padded
}

func strPtr(s string) *string {
	return &s
}
