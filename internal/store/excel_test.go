package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/gotenders/internal/domain"
	"github.com/jonesrussell/gotenders/internal/store"
)

func testColumns() []string {
	return []string{"REPORT_DATE", "RECORD_ID", "TENDER_ID", "LINK"}
}

func TestOpenExcelMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.xlsx")

	s, err := store.OpenExcel(path, testColumns())
	require.NoError(t, err)
	require.Empty(t, s.ExistingRows())
	require.Equal(t, path, s.Path())
}

func TestExcelRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.xlsx")

	s, err := store.OpenExcel(path, testColumns())
	require.NoError(t, err)

	s.Append([]string{"2025/07/31", "1", "RFQ-100", "https://example.com/doc.pdf"})
	s.Append([]string{"2025/07/31", "2", "RFQ-101", ""})
	require.NoError(t, s.Flush(context.Background()))

	reopened, err := store.OpenExcel(path, testColumns())
	require.NoError(t, err)

	rows := reopened.ExistingRows()
	require.Len(t, rows, 2)
	require.Equal(t, []string{"2025/07/31", "1", "RFQ-100", "https://example.com/doc.pdf"}, rows[0])
	require.Equal(t, []string{"2025/07/31", "2", "RFQ-101", ""}, rows[1])
}

func TestExcelFlushAppendsToExistingRows(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.xlsx")

	s, err := store.OpenExcel(path, testColumns())
	require.NoError(t, err)
	s.Append([]string{"2025/07/30", "1", "RFQ-100", ""})
	require.NoError(t, s.Flush(context.Background()))

	s, err = store.OpenExcel(path, testColumns())
	require.NoError(t, err)
	require.Len(t, s.ExistingRows(), 1)
	s.Append([]string{"2025/07/31", "2", "RFQ-101", ""})
	require.NoError(t, s.Flush(context.Background()))

	reopened, err := store.OpenExcel(path, testColumns())
	require.NoError(t, err)
	require.Len(t, reopened.ExistingRows(), 2)
}

func TestOpenExcelRejectsHeaderMismatch(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.xlsx")

	s, err := store.OpenExcel(path, []string{"A", "B"})
	require.NoError(t, err)
	s.Append([]string{"1", "2"})
	require.NoError(t, s.Flush(context.Background()))

	_, err = store.OpenExcel(path, testColumns())
	require.ErrorIs(t, err, store.ErrColumnMismatch)

	var failure *store.PersistenceFailure
	require.ErrorAs(t, err, &failure)
	require.Equal(t, path, failure.Path)
}

func TestNewExcelReplacesExistingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "snapshot.xlsx")

	first := store.NewExcel(path, testColumns())
	first.Append([]string{"2025/07/30", "", "RFQ-100", ""})
	require.NoError(t, first.Flush(context.Background()))

	second := store.NewExcel(path, testColumns())
	require.Empty(t, second.ExistingRows())
	second.Append([]string{"2025/07/31", "", "RFQ-200", ""})
	require.NoError(t, second.Flush(context.Background()))

	reopened, err := store.OpenExcel(path, testColumns())
	require.NoError(t, err)

	rows := reopened.ExistingRows()
	require.Len(t, rows, 1)
	require.Equal(t, "RFQ-200", rows[0][2])
}

func TestExcelShortRowsPadded(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.xlsx")

	s, err := store.OpenExcel(path, testColumns())
	require.NoError(t, err)
	s.Append([]string{"2025/07/31", "1"})
	require.NoError(t, s.Flush(context.Background()))

	reopened, err := store.OpenExcel(path, testColumns())
	require.NoError(t, err)

	rows := reopened.ExistingRows()
	require.Len(t, rows, 1)
	require.Len(t, rows[0], len(testColumns()))
}

func TestExcelFlushFullColumnContract(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cumulative.xlsx")

	s, err := store.OpenExcel(path, domain.Columns())
	require.NoError(t, err)

	record := &domain.TenderRecord{
		ReportDate:      "2025/07/31",
		RecordID:        1,
		TenderID:        "RFQ-100",
		PublicationDate: "2025/07/01",
		ClosingDate:     "2025/07/31",
		Source:          domain.TenderSource,
		DocumentLink:    "https://example.com/doc.pdf",
	}
	s.Append(record.Row())
	require.NoError(t, s.Flush(context.Background()))

	reopened, err := store.OpenExcel(path, domain.Columns())
	require.NoError(t, err)
	require.Len(t, reopened.ExistingRows(), 1)
	require.Equal(t, record.Row(), reopened.ExistingRows()[0])
}
