package scraper_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/gotenders/internal/browser"
	"github.com/jonesrussell/gotenders/internal/config"
	"github.com/jonesrussell/gotenders/internal/domain"
	"github.com/jonesrussell/gotenders/internal/logger"
	"github.com/jonesrussell/gotenders/internal/scraper"
	"github.com/jonesrussell/gotenders/internal/store"
)

const (
	selTable  = "table.listing"
	selRows   = "table.listing > tbody > tr"
	selExpand = "table.listing > tbody > tr > td.expand"
	selDetail = "tr.detail"
	selNext   = "#next"
)

// listingRow is one tender on the fake listing.
type listingRow struct {
	tenderID   string
	advertised string
}

func (r listingRow) summaryHTML() string {
	return fmt.Sprintf(
		`<tr><td class="expand"></td><td>Goods</td><td>Supply for %s</td><td>✔</td><td>%s</td></tr>`,
		r.tenderID, r.advertised,
	)
}

func (r listingRow) detailHTML() string {
	return fmt.Sprintf(`<tr class="detail"><td>
		<table>
			<tr><td><b>Tender Number:</b></td><td>%s</td>
				<td><b>Province:</b></td><td>Gauteng</td></tr>
			<tr><td><b>Closing Date:</b></td><td>Friday, 15 August 2025 - 10:00</td></tr>
		</table>
	</td></tr>`, r.tenderID)
}

// listingPage fakes the portal: a single listing page of rows, one
// expandable at a time.
type listingPage struct {
	rows      []listingRow
	expanded  int
	navigated string
	evaluated int
}

func newListingPage(rows ...listingRow) *listingPage {
	return &listingPage{rows: rows, expanded: -1}
}

func (p *listingPage) Navigate(_ context.Context, url string) error {
	p.navigated = url
	return nil
}

func (p *listingPage) Evaluate(context.Context, string) error {
	p.evaluated++
	return nil
}

func (p *listingPage) WaitVisible(_ context.Context, selector string) error {
	if selector == selDetail && p.expanded < 0 {
		return &browser.Failure{Kind: browser.KindTimeout, Op: "wait", Err: errors.New("not visible")}
	}
	return nil
}

func (p *listingPage) Click(_ context.Context, selector string) error {
	return fmt.Errorf("unexpected click on %q", selector)
}

func (p *listingPage) OuterHTML(_ context.Context, selector string) (string, error) {
	if selector != selTable {
		return "", fmt.Errorf("unexpected read of %q", selector)
	}
	detail := ""
	if p.expanded >= 0 {
		detail = p.rows[p.expanded].detailHTML()
	}
	return "<table>" + detail + "</table>", nil
}

func (p *listingPage) Attribute(_ context.Context, selector, name string) (string, bool, error) {
	if selector == selNext && name == "class" {
		return "paginate_button next disabled", true, nil
	}
	return "", false, fmt.Errorf("unexpected attribute read %q@%q", selector, name)
}

func (p *listingPage) Count(_ context.Context, selector string) (int, error) {
	switch selector {
	case selRows:
		return len(p.rows), nil
	case selNext:
		return 1, nil
	default:
		return 0, fmt.Errorf("unexpected count of %q", selector)
	}
}

func (p *listingPage) ClickNth(_ context.Context, selector string, n int) error {
	if selector != selExpand {
		return fmt.Errorf("unexpected click on %q", selector)
	}
	if p.expanded == n {
		p.expanded = -1
	} else {
		p.expanded = n
	}
	return nil
}

func (p *listingPage) OuterHTMLNth(_ context.Context, selector string, n int) (string, error) {
	if selector != selRows {
		return "", fmt.Errorf("unexpected read of %q", selector)
	}
	return p.rows[n].summaryHTML(), nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Scrape: config.ScrapeConfig{
			URL:      "https://www.etenders.gov.za/Home/opportunities?id=1",
			DateFrom: "2025-07-01",
			DateTo:   "2025-07-31",
		},
		Timing: config.TimingConfig{
			PageLoadWait:     time.Millisecond,
			ModalRemovalWait: time.Millisecond,
			ExpandRowWait:    time.Millisecond,
			CollapseRowWait:  time.Millisecond,
			NextPageWait:     time.Millisecond,
			RetryDelay:       time.Millisecond,
			OpTimeout:        time.Second,
		},
		Retry: config.RetryConfig{
			MaxRetries:          2,
			StaleElementRetries: 2,
			MaxPages:            5,
		},
		Selectors: config.SelectorsConfig{
			Table:      selTable,
			Rows:       selRows,
			ExpandCell: selExpand,
			Detail:     selDetail,
			NextButton: selNext,
		},
		Output: config.OutputConfig{
			DateSpecificFile: filepath.Join(dir, "tenders_{date}.xlsx"),
			CumulativeFile:   filepath.Join(dir, "tenders_all.xlsx"),
		},
	}
}

func cellIndex(t *testing.T, column string) int {
	t.Helper()
	for i, name := range domain.Columns() {
		if name == column {
			return i
		}
	}
	t.Fatalf("unknown column %q", column)
	return -1
}

func TestRunEndToEnd(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	page := newListingPage(
		listingRow{tenderID: "RFQ-100", advertised: "15/07/2025"},
		listingRow{tenderID: "RFQ-101", advertised: "10/07/2025"},
		listingRow{tenderID: "RFQ-100", advertised: "10/07/2025"},
	)

	s := scraper.New(page, cfg, logger.NewNoOp())

	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, cfg.Scrape.URL, page.navigated)
	require.Positive(t, page.evaluated)

	require.Equal(t, 1, summary.PagesVisited)
	require.Equal(t, 3, summary.RowsProcessed)
	require.Equal(t, 2, summary.Merge.Inserted)
	require.Equal(t, 1, summary.Merge.Duplicates)
	require.NotEmpty(t, summary.RunID)

	// The cumulative store holds one row per unique tender number with
	// sequential record IDs.
	cumulative, err := store.OpenExcel(cfg.Output.CumulativeFile, domain.Columns())
	require.NoError(t, err)
	rows := cumulative.ExistingRows()
	require.Len(t, rows, 2)

	idIdx := cellIndex(t, domain.ColRecordID)
	tenderIdx := cellIndex(t, domain.ColTenderID)
	closingIdx := cellIndex(t, domain.ColClosingDate)
	sourceIdx := cellIndex(t, domain.ColTenderSource)

	require.Equal(t, "1", rows[0][idIdx])
	require.Equal(t, "RFQ-100", rows[0][tenderIdx])
	require.Equal(t, "2025/08/15", rows[0][closingIdx])
	require.Equal(t, domain.TenderSource, rows[0][sourceIdx])
	require.Equal(t, "2", rows[1][idIdx])
	require.Equal(t, "RFQ-101", rows[1][tenderIdx])

	// The snapshot holds every processed row, undeduplicated, with no
	// record IDs.
	snapshotPath := cfg.Output.SnapshotPath(cfg.Scrape.DateTo)
	snapshot, err := store.OpenExcel(snapshotPath, domain.Columns())
	require.NoError(t, err)
	snapRows := snapshot.ExistingRows()
	require.Len(t, snapRows, 3)
	for _, row := range snapRows {
		require.Empty(t, row[idIdx])
	}
}

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	page := newListingPage(listingRow{tenderID: "RFQ-100", advertised: "15/07/2025"})

	_, err := scraper.New(page, cfg, logger.NewNoOp()).Run(context.Background())
	require.NoError(t, err)

	summary, err := scraper.New(page, cfg, logger.NewNoOp()).Run(context.Background())
	require.NoError(t, err)

	require.Zero(t, summary.Merge.Inserted)
	require.Equal(t, 1, summary.Merge.Duplicates)

	cumulative, err := store.OpenExcel(cfg.Output.CumulativeFile, domain.Columns())
	require.NoError(t, err)
	require.Len(t, cumulative.ExistingRows(), 1)
}

func TestRunEmptyListingStillWritesOutputs(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	page := newListingPage()

	summary, err := scraper.New(page, cfg, logger.NewNoOp()).Run(context.Background())
	require.NoError(t, err)

	require.Zero(t, summary.RowsProcessed)
	require.Zero(t, summary.Merge.Inserted)

	// Both files exist with the header even when no rows were scraped.
	cumulative, err := store.OpenExcel(cfg.Output.CumulativeFile, domain.Columns())
	require.NoError(t, err)
	require.Empty(t, cumulative.ExistingRows())

	snapshot, err := store.OpenExcel(cfg.Output.SnapshotPath(cfg.Scrape.DateTo), domain.Columns())
	require.NoError(t, err)
	require.Empty(t, snapshot.ExistingRows())
}
