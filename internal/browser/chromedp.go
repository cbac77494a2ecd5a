package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// Default session values.
const (
	DefaultOpTimeout = 30 * time.Second
)

// SessionConfig configures the headless Chrome session.
type SessionConfig struct {
	// Headless runs the browser without a window.
	Headless bool
	// Maximized starts the browser window maximized.
	Maximized bool
	// DisableExtensions disables browser extensions.
	DisableExtensions bool
	// DisableInfobars suppresses automation infobars.
	DisableInfobars bool
	// UserAgent overrides the browser user agent when non-empty.
	UserAgent string
	// OpTimeout bounds each individual page operation.
	OpTimeout time.Duration
}

// Session is a chromedp-backed Page implementation holding one live tab.
type Session struct {
	browserCtx context.Context
	cancels    []context.CancelFunc
	opTimeout  time.Duration
}

// Compile-time check that Session implements Page.
var _ Page = (*Session)(nil)

// NewSession starts a Chrome instance and opens a single tab.
func NewSession(ctx context.Context, cfg SessionConfig) (*Session, error) {
	opts := append([]chromedp.ExecAllocatorOption{},
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
	)
	opts = append(opts, chromedp.Flag("headless", cfg.Headless))
	if cfg.Maximized {
		opts = append(opts, chromedp.Flag("start-maximized", true))
	}
	if cfg.DisableExtensions {
		opts = append(opts, chromedp.Flag("disable-extensions", true))
	}
	if cfg.DisableInfobars {
		opts = append(opts, chromedp.Flag("disable-infobars", true))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	opTimeout := cfg.OpTimeout
	if opTimeout <= 0 {
		opTimeout = DefaultOpTimeout
	}

	s := &Session{
		browserCtx: tabCtx,
		cancels:    []context.CancelFunc{cancelTab, cancelAlloc},
		opTimeout:  opTimeout,
	}

	// Launch the browser eagerly so startup failures surface here rather
	// than on the first page operation.
	if err := chromedp.Run(tabCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return s, nil
}

// Close shuts down the tab and the browser process.
func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}

// Navigate loads the given URL and waits for the document to be ready.
func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, "navigate",
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// Evaluate runs a JavaScript expression against the document.
func (s *Session) Evaluate(ctx context.Context, js string) error {
	return s.run(ctx, "evaluate", chromedp.Evaluate(js, nil))
}

// WaitVisible blocks until the selector matches a visible node.
func (s *Session) WaitVisible(ctx context.Context, selector string) error {
	return s.run(ctx, "wait-visible", chromedp.WaitVisible(selector, chromedp.ByQuery))
}

// Click clicks the first node matching the selector.
func (s *Session) Click(ctx context.Context, selector string) error {
	return s.run(ctx, "click", chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

// OuterHTML returns the outer HTML of the first node matching the selector.
func (s *Session) OuterHTML(ctx context.Context, selector string) (string, error) {
	var html string
	err := s.run(ctx, "outer-html", chromedp.OuterHTML(selector, &html, chromedp.ByQuery))
	return html, err
}

// Attribute returns the named attribute of the first matching node.
func (s *Session) Attribute(ctx context.Context, selector, name string) (string, bool, error) {
	var (
		value string
		ok    bool
	)
	err := s.run(ctx, "attribute", chromedp.AttributeValue(selector, name, &value, &ok, chromedp.ByQuery))
	return value, ok, err
}

// Count returns the number of nodes matching the selector.
func (s *Session) Count(ctx context.Context, selector string) (int, error) {
	var count int
	js := fmt.Sprintf("document.querySelectorAll(%q).length", selector)
	err := s.run(ctx, "count", chromedp.Evaluate(js, &count))
	return count, err
}

// ClickNth clicks the n-th node matching the selector. The node list is
// resolved fresh inside the browser, so a re-render between calls cannot
// leave a stale handle on this side.
func (s *Session) ClickNth(ctx context.Context, selector string, n int) error {
	js := fmt.Sprintf(`(function() {
		const els = document.querySelectorAll(%q);
		if (els.length <= %d) { throw new Error("node index out of range"); }
		els[%d].click();
	})()`, selector, n, n)
	return s.run(ctx, "click-nth", chromedp.Evaluate(js, nil))
}

// OuterHTMLNth returns the outer HTML of the n-th node matching the selector.
func (s *Session) OuterHTMLNth(ctx context.Context, selector string, n int) (string, error) {
	var html string
	js := fmt.Sprintf(`(function() {
		const els = document.querySelectorAll(%q);
		if (els.length <= %d) { throw new Error("node index out of range"); }
		return els[%d].outerHTML;
	})()`, selector, n, n)
	err := s.run(ctx, "outer-html-nth", chromedp.Evaluate(js, &html))
	return html, err
}

// run executes chromedp actions against the live tab, bounded by the
// per-operation timeout, and classifies any failure.
func (s *Session) run(ctx context.Context, op string, actions ...chromedp.Action) error {
	// The tab context carries the CDP session; the caller context only
	// contributes cancellation and the per-op deadline.
	opCtx, cancel := context.WithTimeout(s.browserCtx, s.opTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- chromedp.Run(opCtx, actions...)
	}()

	select {
	case <-ctx.Done():
		cancel()
		<-done
		return &Failure{Kind: KindSession, Op: op, Err: ctx.Err()}
	case err := <-done:
		if err == nil {
			return nil
		}
		return &Failure{Kind: classify(err), Op: op, Err: err}
	}
}

// classify maps a raw CDP error onto a failure kind. The recoverable set is
// decided by the caller; this only names what went wrong.
func classify(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "detached"),
		strings.Contains(msg, "stale"),
		strings.Contains(msg, "node index out of range"),
		strings.Contains(msg, "node with given id does not belong to the document"),
		strings.Contains(msg, "could not find node"):
		return KindStale
	case strings.Contains(msg, "not visible"),
		strings.Contains(msg, "not clickable"),
		strings.Contains(msg, "could not compute box model"),
		strings.Contains(msg, "element is not interactable"):
		return KindNotInteractable
	case strings.Contains(msg, "deadline exceeded"),
		strings.Contains(msg, "timeout"):
		return KindTimeout
	case strings.Contains(msg, "invalid selector"),
		strings.Contains(msg, "failed to execute 'queryselector"):
		return KindBadSelector
	default:
		return KindSession
	}
}
