// Package walker drives the listing traversal: expanding rows one at a time,
// reading their detail markup, and advancing through pagination until the
// listing is exhausted. Rows are addressed by position against the live
// document, never by held references.
package walker

import (
	"context"
	"time"

	"github.com/jonesrussell/gotenders/internal/access"
	"github.com/jonesrussell/gotenders/internal/config"
	"github.com/jonesrussell/gotenders/internal/logger"
)

// RowController expands and collapses a single listing row and reads its
// markup. Every operation re-resolves the row by position, so a re-rendered
// listing never invalidates the controller.
type RowController struct {
	access    *access.Accessor
	selectors config.SelectorsConfig
	timing    config.TimingConfig
	logger    logger.Interface
}

// NewRowController creates a RowController over the given accessor.
func NewRowController(
	acc *access.Accessor,
	selectors config.SelectorsConfig,
	timing config.TimingConfig,
	log logger.Interface,
) *RowController {
	return &RowController{
		access:    acc,
		selectors: selectors,
		timing:    timing,
		logger:    log.WithComponent("rows"),
	}
}

// SummaryHTML reads the outer HTML of the n-th summary row.
func (r *RowController) SummaryHTML(ctx context.Context, n int) (string, error) {
	return r.access.OuterHTMLNth(ctx, r.selectors.Rows, n)
}

// Expand clicks the n-th row's expand control and waits for its detail
// content to render.
func (r *RowController) Expand(ctx context.Context, n int) error {
	if err := r.access.ClickNth(ctx, r.selectors.ExpandCell, n); err != nil {
		return err
	}
	if err := sleep(ctx, r.timing.ExpandRowWait); err != nil {
		return err
	}
	return r.access.WaitVisible(ctx, r.selectors.Detail)
}

// DetailHTML reads the listing table's outer HTML. Called while a row is
// expanded, the result carries that row's detail markup.
func (r *RowController) DetailHTML(ctx context.Context) (string, error) {
	return r.access.OuterHTML(ctx, r.selectors.Table)
}

// Collapse clicks the n-th row's expand control again to close its detail
// content. A collapse failure is logged and swallowed: the next expand
// replaces the open detail, so a row left open never corrupts the walk.
func (r *RowController) Collapse(ctx context.Context, n int) {
	if err := r.access.ClickNth(ctx, r.selectors.ExpandCell, n); err != nil {
		r.logger.Warn("row collapse failed, continuing", "row", n, "error", err)
		return
	}
	if err := sleep(ctx, r.timing.CollapseRowWait); err != nil {
		r.logger.Warn("row collapse interrupted", "row", n, "error", err)
	}
}

// sleep blocks for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
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
