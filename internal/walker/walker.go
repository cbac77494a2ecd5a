package walker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonesrussell/gotenders/internal/access"
	"github.com/jonesrussell/gotenders/internal/browser"
	"github.com/jonesrussell/gotenders/internal/config"
	"github.com/jonesrussell/gotenders/internal/extract"
	"github.com/jonesrussell/gotenders/internal/logger"
)

// Visit receives one expanded row: its parsed summary and the listing
// table's detail markup. A Visit error skips the row; it never aborts the
// walk.
type Visit func(ctx context.Context, summary *extract.Summary, detailHTML string) error

// Stats reports what a walk covered.
type Stats struct {
	// Pages is the number of listing pages visited.
	Pages int
	// Processed is the number of rows handed to the visit callback.
	Processed int
	// Skipped is the number of rows abandoned after errors.
	Skipped int
	// Filtered is the number of rows outside the advertised date range.
	Filtered int
}

// Config configures a walk.
type Config struct {
	// Selectors locates the listing's elements.
	Selectors config.SelectorsConfig
	// From and To bound the advertised date range, inclusive.
	From time.Time
	To   time.Time
	// NextPageWait is the settle delay after advancing a page.
	NextPageWait time.Duration
	// StaleElementRetries is the per-row attempt budget.
	StaleElementRetries int
	// MaxPages caps the number of pages visited.
	MaxPages int
}

// Walker traverses the paginated listing, visiting each row whose advertised
// date falls inside the configured range. The listing is ordered newest
// first, so the walk stops outright at the first row older than the range.
type Walker struct {
	rows   *RowController
	access *access.Accessor
	cfg    Config
	logger logger.Interface
}

// New creates a Walker over the given row controller and accessor.
func New(rows *RowController, acc *access.Accessor, cfg Config, log logger.Interface) *Walker {
	if cfg.StaleElementRetries < 1 {
		cfg.StaleElementRetries = 1
	}
	return &Walker{
		rows:   rows,
		access: acc,
		cfg:    cfg,
		logger: log.WithComponent("walker"),
	}
}

// Walk traverses every listing page, invoking visit for each in-range row.
// Row-level failures are counted and skipped; only session-level failures
// and context cancellation abort the walk.
func (w *Walker) Walk(ctx context.Context, visit Visit) (Stats, error) {
	var stats Stats

	for {
		stats.Pages++

		stop, err := w.walkPage(ctx, visit, &stats)
		if err != nil {
			return stats, fmt.Errorf("page %d: %w", stats.Pages, err)
		}
		if stop {
			w.logger.Info("reached rows older than the date range, stopping",
				"pages", stats.Pages)
			return stats, nil
		}

		if stats.Pages >= w.cfg.MaxPages {
			w.logger.Warn("page ceiling reached, stopping",
				"max_pages", w.cfg.MaxPages)
			return stats, nil
		}

		advanced, err := w.nextPage(ctx)
		if err != nil {
			return stats, fmt.Errorf("advance past page %d: %w", stats.Pages, err)
		}
		if !advanced {
			return stats, nil
		}
	}
}

// walkPage visits every row on the current page. It reports stop=true when a
// row is advertised before the range start.
func (w *Walker) walkPage(ctx context.Context, visit Visit, stats *Stats) (stop bool, err error) {
	count, err := w.access.Count(ctx, w.cfg.Selectors.Rows)
	if err != nil {
		return false, fmt.Errorf("count rows: %w", err)
	}

	w.logger.Debug("walking page", "page", stats.Pages, "rows", count)

	for n := 0; n < count; n++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		older, err := w.visitRow(ctx, visit, n)
		switch {
		case err == nil && older:
			return true, nil
		case err == nil:
			stats.Processed++
		case errors.Is(err, extract.ErrNotATenderRow):
			stats.Skipped++
			w.logger.Debug("row carries no tender summary, skipping", "row", n)
		case errors.Is(err, errFiltered):
			stats.Filtered++
		case ctx.Err() != nil:
			return false, ctx.Err()
		default:
			stats.Skipped++
			w.logger.WithError(err).Error("row abandoned", "row", n)
		}
	}

	return false, nil
}

// errFiltered marks a row advertised after the range end.
var errFiltered = errors.New("row outside date range")

// RowFailure reports a row abandoned after its retry budget.
type RowFailure struct {
	Row      int
	Attempts int
	Err      error
}

// Error implements the error interface.
func (f *RowFailure) Error() string {
	return fmt.Sprintf("row %d abandoned after %d attempts: %v", f.Row, f.Attempts, f.Err)
}

// Unwrap returns the last underlying error.
func (f *RowFailure) Unwrap() error {
	return f.Err
}

// visitRow processes the n-th row on the current page, retrying the whole
// expand-read cycle when the document shifts underneath it. It reports
// older=true when the row is advertised before the range start.
func (w *Walker) visitRow(ctx context.Context, visit Visit, n int) (older bool, err error) {
	var lastErr error

	for attempt := 1; attempt <= w.cfg.StaleElementRetries; attempt++ {
		older, err := w.rowCycle(ctx, visit, n)
		if err == nil {
			return older, nil
		}
		if errors.Is(err, extract.ErrNotATenderRow) || errors.Is(err, errFiltered) {
			return false, err
		}
		var extractErr *extract.ExtractFailure
		if errors.As(err, &extractErr) {
			// The markup itself is short a field; re-reading the same
			// document cannot change that.
			return false, err
		}
		if ctx.Err() != nil {
			return false, ctx.Err()
		}

		lastErr = err
		if attempt < w.cfg.StaleElementRetries {
			w.logger.Warn("retrying row",
				"row", n,
				"attempt", attempt,
				"max_attempts", w.cfg.StaleElementRetries,
				"error", err,
			)
		}
	}

	return false, &RowFailure{Row: n, Attempts: w.cfg.StaleElementRetries, Err: lastErr}
}

// rowCycle runs one full expand-read-collapse pass over the n-th row.
func (w *Walker) rowCycle(ctx context.Context, visit Visit, n int) (older bool, err error) {
	summaryHTML, err := w.rows.SummaryHTML(ctx, n)
	if err != nil {
		return false, fmt.Errorf("read summary: %w", err)
	}

	summary, err := extract.ParseSummary(summaryHTML)
	if err != nil {
		return false, err
	}

	if !summary.Advertised.IsZero() {
		if summary.Advertised.Before(w.cfg.From) {
			return true, nil
		}
		if summary.Advertised.After(w.cfg.To) {
			return false, errFiltered
		}
	}

	if err := w.rows.Expand(ctx, n); err != nil {
		return false, fmt.Errorf("expand: %w", err)
	}

	detailHTML, err := w.rows.DetailHTML(ctx)
	if err != nil {
		w.rows.Collapse(ctx, n)
		return false, fmt.Errorf("read detail: %w", err)
	}

	err = visit(ctx, summary, detailHTML)
	w.rows.Collapse(ctx, n)
	if err != nil {
		return false, fmt.Errorf("visit: %w", err)
	}
	return false, nil
}

// nextPage advances to the next listing page. It reports advanced=false when
// the next control is absent or disabled, which marks the end of the listing.
func (w *Walker) nextPage(ctx context.Context) (advanced bool, err error) {
	count, err := w.access.Count(ctx, w.cfg.Selectors.NextButton)
	if err != nil {
		return false, fmt.Errorf("locate next control: %w", err)
	}
	if count == 0 {
		w.logger.Debug("next control absent, listing exhausted")
		return false, nil
	}

	class, _, err := w.access.Attribute(ctx, w.cfg.Selectors.NextButton, "class")
	if err != nil {
		// The control can vanish between the count and the read; a timed-out
		// or stale lookup at the end of a page is the same absent control.
		if nextControlGone(err) {
			w.logger.Debug("next control gone, listing exhausted")
			return false, nil
		}
		return false, fmt.Errorf("inspect next control: %w", err)
	}
	if strings.Contains(class, "disabled") {
		w.logger.Debug("next control disabled, listing exhausted")
		return false, nil
	}

	if err := w.access.Click(ctx, w.cfg.Selectors.NextButton); err != nil {
		return false, fmt.Errorf("click next: %w", err)
	}
	if err := sleep(ctx, w.cfg.NextPageWait); err != nil {
		return false, err
	}
	if err := w.access.WaitVisible(ctx, w.cfg.Selectors.Rows); err != nil {
		return false, fmt.Errorf("wait for rows: %w", err)
	}
	return true, nil
}

// nextControlGone reports whether an exhausted lookup of the next control
// means the control no longer exists on the page.
func nextControlGone(err error) bool {
	var failure *access.AccessFailure
	if !errors.As(err, &failure) {
		return false
	}
	return failure.Kind == browser.KindTimeout || failure.Kind == browser.KindStale
}
