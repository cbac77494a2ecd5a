// Package scraper wires the pipeline together and runs it end to end: open
// the listing, walk its pages, extract and validate each expanded row, then
// merge the survivors into the output stores.
package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/gotenders/internal/access"
	"github.com/jonesrussell/gotenders/internal/browser"
	"github.com/jonesrussell/gotenders/internal/config"
	"github.com/jonesrussell/gotenders/internal/domain"
	"github.com/jonesrussell/gotenders/internal/extract"
	"github.com/jonesrussell/gotenders/internal/logger"
	"github.com/jonesrussell/gotenders/internal/merge"
	"github.com/jonesrussell/gotenders/internal/store"
	"github.com/jonesrussell/gotenders/internal/validate"
	"github.com/jonesrussell/gotenders/internal/walker"
)

// removeOverlaysJS strips the site's welcome modal and its backdrop, which
// otherwise intercept clicks on the listing underneath.
const removeOverlaysJS = `
(() => {
	document.querySelectorAll('.modal, .modal-backdrop').forEach((el) => el.remove());
	document.body.classList.remove('modal-open');
	document.body.style.overflow = '';
})();`

// Scraper runs the extraction pipeline against a live listing page.
type Scraper struct {
	page   browser.Page
	cfg    *config.Config
	logger logger.Interface
}

// New creates a Scraper over an open page.
func New(page browser.Page, cfg *config.Config, log logger.Interface) *Scraper {
	return &Scraper{
		page:   page,
		cfg:    cfg,
		logger: log.WithComponent("scraper"),
	}
}

// Run executes one full scrape and returns its summary. Row-level failures
// are counted, never fatal; navigation, store, and flush failures abort the
// run.
func (s *Scraper) Run(ctx context.Context) (*domain.RunSummary, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := s.logger.WithRun(runID)
	reportDate := start.Format(domain.DateLayout)

	from, to, err := s.cfg.Scrape.DateRange()
	if err != nil {
		return nil, fmt.Errorf("date range: %w", err)
	}

	log.Info("starting run",
		"url", s.cfg.Scrape.URL,
		"date_from", s.cfg.Scrape.DateFrom,
		"date_to", s.cfg.Scrape.DateTo,
	)

	cumulative, err := store.OpenExcel(s.cfg.Output.CumulativeFile, domain.Columns())
	if err != nil {
		return nil, fmt.Errorf("open cumulative store: %w", err)
	}
	snapshot := store.NewExcel(s.cfg.Output.SnapshotPath(s.cfg.Scrape.DateTo), domain.Columns())

	if err := s.openListing(ctx); err != nil {
		return nil, err
	}

	acc := access.New(s.page, access.Config{
		MaxRetries:       s.cfg.Retry.MaxRetries,
		RetryDelay:       s.cfg.Timing.RetryDelay,
		RecoverableKinds: recoverableKinds(s.cfg.Retry.RecoverableKinds),
	}, log)

	rows := walker.NewRowController(acc, s.cfg.Selectors, s.cfg.Timing, log)
	walk := walker.New(rows, acc, walker.Config{
		Selectors:           s.cfg.Selectors,
		From:                from,
		To:                  to,
		NextPageWait:        s.cfg.Timing.NextPageWait,
		StaleElementRetries: s.cfg.Retry.StaleElementRetries,
		MaxPages:            s.cfg.Retry.MaxPages,
	}, log)

	extractor := extract.New(log)
	validator := validate.New(reportDate, log)

	var (
		records  []*domain.TenderRecord
		rejected int
	)
	visit := func(_ context.Context, summary *extract.Summary, detailHTML string) error {
		raw, err := extractor.Extract(summary, detailHTML)
		if err != nil {
			return err
		}
		record, err := validator.Validate(raw)
		if err != nil {
			rejected++
			log.Warn("record rejected", "error", err)
			return nil
		}
		records = append(records, record)
		return nil
	}

	stats, err := walk.Walk(ctx, visit)
	if err != nil {
		return nil, fmt.Errorf("walk listing: %w", err)
	}

	report := merge.New(cumulative, snapshot, log).Merge(records, rejected)

	if err := cumulative.Flush(ctx); err != nil {
		return nil, fmt.Errorf("flush cumulative store: %w", err)
	}
	if err := snapshot.Flush(ctx); err != nil {
		return nil, fmt.Errorf("flush snapshot store: %w", err)
	}

	summary := &domain.RunSummary{
		RunID:         runID,
		ReportDate:    reportDate,
		PagesVisited:  stats.Pages,
		RowsProcessed: stats.Processed,
		RowsSkipped:   stats.Skipped,
		RowsFiltered:  stats.Filtered,
		Merge:         report,
		Elapsed:       time.Since(start),
	}

	log.WithDuration(summary.Elapsed).Info("run complete",
		"pages", summary.PagesVisited,
		"processed", summary.RowsProcessed,
		"skipped", summary.RowsSkipped,
		"filtered", summary.RowsFiltered,
		"inserted", report.Inserted,
		"duplicates", report.Duplicates,
		"rejected", report.Rejected,
	)

	return summary, nil
}

// openListing navigates to the listing, clears blocking overlays, and waits
// for the table to render.
func (s *Scraper) openListing(ctx context.Context) error {
	if err := s.page.Navigate(ctx, s.cfg.Scrape.URL); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}
	if err := wait(ctx, s.cfg.Timing.PageLoadWait); err != nil {
		return err
	}

	if err := s.page.Evaluate(ctx, removeOverlaysJS); err != nil {
		s.logger.Warn("overlay removal failed, continuing", "error", err)
	}
	if err := wait(ctx, s.cfg.Timing.ModalRemovalWait); err != nil {
		return err
	}

	if err := s.page.WaitVisible(ctx, s.cfg.Selectors.Table); err != nil {
		return fmt.Errorf("wait for listing table: %w", err)
	}
	return nil
}

// recoverableKinds converts configured kind names into browser kinds.
func recoverableKinds(names []string) []browser.Kind {
	kinds := make([]browser.Kind, 0, len(names))
	for _, name := range names {
		kinds = append(kinds, browser.Kind(name))
	}
	return kinds
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
