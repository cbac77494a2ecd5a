// Package access wraps page operations with bounded retry over transient
// failures. A stale node cannot be waited out, so every attempt re-runs the
// full operation, which re-resolves its target by selector.
package access

import (
	"context"
	"fmt"
	"time"

	"github.com/jonesrussell/gotenders/internal/browser"
	"github.com/jonesrussell/gotenders/internal/logger"
)

// Operation is one named action against the live page. Do must re-resolve
// any elements it touches; it is invoked once per attempt.
type Operation struct {
	Name string
	Do   func(ctx context.Context) error
}

// AccessFailure reports that an operation exhausted its retry budget.
type AccessFailure struct {
	Kind     browser.Kind
	Op       string
	Attempts int
	LastErr  error
}

// Error implements the error interface.
func (f *AccessFailure) Error() string {
	return fmt.Sprintf("%s failed after %d attempts (%s): %v", f.Op, f.Attempts, f.Kind, f.LastErr)
}

// Unwrap returns the last underlying error.
func (f *AccessFailure) Unwrap() error {
	return f.LastErr
}

// Config configures retry behavior for page operations.
type Config struct {
	// MaxRetries is the total number of attempts per operation.
	MaxRetries int
	// RetryDelay is the fixed delay between attempts.
	RetryDelay time.Duration
	// RecoverableKinds lists the failure kinds worth retrying. The live
	// site's failure modes are not fully known, so the set is configuration
	// rather than code.
	RecoverableKinds []browser.Kind
}

// DefaultRecoverableKinds returns the failure kinds retried when the
// configuration does not name its own set.
func DefaultRecoverableKinds() []browser.Kind {
	return []browser.Kind{
		browser.KindStale,
		browser.KindNotInteractable,
		browser.KindTimeout,
	}
}

// Accessor performs page operations with bounded retry.
type Accessor struct {
	page        browser.Page
	maxRetries  int
	retryDelay  time.Duration
	recoverable map[browser.Kind]struct{}
	logger      logger.Interface
}

// New creates a new Accessor for the given page.
func New(page browser.Page, cfg Config, log logger.Interface) *Accessor {
	kinds := cfg.RecoverableKinds
	if len(kinds) == 0 {
		kinds = DefaultRecoverableKinds()
	}

	recoverable := make(map[browser.Kind]struct{}, len(kinds))
	for _, kind := range kinds {
		recoverable[kind] = struct{}{}
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &Accessor{
		page:        page,
		maxRetries:  maxRetries,
		retryDelay:  cfg.RetryDelay,
		recoverable: recoverable,
		logger:      log.WithComponent("access"),
	}
}

// Perform runs op, retrying recoverable failures up to the configured bound
// with a fixed delay between attempts. Non-recoverable failures propagate
// immediately without retry.
func (a *Accessor) Perform(ctx context.Context, op Operation) error {
	var lastErr error

	for attempt := 1; attempt <= a.maxRetries; attempt++ {
		err := op.Do(ctx)
		if err == nil {
			return nil
		}

		kind := browser.KindOf(err)
		if _, ok := a.recoverable[kind]; !ok {
			return err
		}
		lastErr = err

		if attempt == a.maxRetries {
			break
		}

		a.logger.Warn("retrying page operation",
			"op", op.Name,
			"kind", string(kind),
			"attempt", attempt,
			"max_attempts", a.maxRetries,
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s interrupted: %w", op.Name, ctx.Err())
		case <-time.After(a.retryDelay):
		}
	}

	return &AccessFailure{
		Kind:     browser.KindOf(lastErr),
		Op:       op.Name,
		Attempts: a.maxRetries,
		LastErr:  lastErr,
	}
}

// Click clicks the first node matching the selector, with retry.
func (a *Accessor) Click(ctx context.Context, selector string) error {
	return a.Perform(ctx, Operation{
		Name: "click " + selector,
		Do: func(ctx context.Context) error {
			return a.page.Click(ctx, selector)
		},
	})
}

// WaitVisible waits for the selector to match a visible node, with retry.
func (a *Accessor) WaitVisible(ctx context.Context, selector string) error {
	return a.Perform(ctx, Operation{
		Name: "wait " + selector,
		Do: func(ctx context.Context) error {
			return a.page.WaitVisible(ctx, selector)
		},
	})
}

// OuterHTML reads the outer HTML of the first matching node, with retry.
func (a *Accessor) OuterHTML(ctx context.Context, selector string) (string, error) {
	var html string
	err := a.Perform(ctx, Operation{
		Name: "read " + selector,
		Do: func(ctx context.Context) error {
			var readErr error
			html, readErr = a.page.OuterHTML(ctx, selector)
			return readErr
		},
	})
	return html, err
}

// ClickNth clicks the n-th node matching the selector, with retry. Each
// attempt re-resolves the node list by position.
func (a *Accessor) ClickNth(ctx context.Context, selector string, n int) error {
	return a.Perform(ctx, Operation{
		Name: fmt.Sprintf("click %s[%d]", selector, n),
		Do: func(ctx context.Context) error {
			return a.page.ClickNth(ctx, selector, n)
		},
	})
}

// OuterHTMLNth reads the outer HTML of the n-th matching node, with retry.
func (a *Accessor) OuterHTMLNth(ctx context.Context, selector string, n int) (string, error) {
	var html string
	err := a.Perform(ctx, Operation{
		Name: fmt.Sprintf("read %s[%d]", selector, n),
		Do: func(ctx context.Context) error {
			var readErr error
			html, readErr = a.page.OuterHTMLNth(ctx, selector, n)
			return readErr
		},
	})
	return html, err
}

// Attribute reads the named attribute of the first matching node, with retry.
func (a *Accessor) Attribute(ctx context.Context, selector, name string) (string, bool, error) {
	var (
		value   string
		present bool
	)
	err := a.Perform(ctx, Operation{
		Name: fmt.Sprintf("attr %s@%s", selector, name),
		Do: func(ctx context.Context) error {
			var attrErr error
			value, present, attrErr = a.page.Attribute(ctx, selector, name)
			return attrErr
		},
	})
	return value, present, err
}

// Count counts the nodes matching the selector, with retry.
func (a *Accessor) Count(ctx context.Context, selector string) (int, error) {
	var count int
	err := a.Perform(ctx, Operation{
		Name: "count " + selector,
		Do: func(ctx context.Context) error {
			var countErr error
			count, countErr = a.page.Count(ctx, selector)
			return countErr
		},
	})
	return count, err
}
