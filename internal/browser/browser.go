// Package browser defines the queryable, interactable document capability the
// pipeline runs against, plus a typed failure classification for its
// operations. Every operation addresses elements by CSS selector at the
// moment of use; the package never hands out element references that could
// go stale across a re-render.
package browser

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a page operation failure.
type Kind string

const (
	// KindStale marks a node that detached from the document mid-operation.
	KindStale Kind = "stale-reference"
	// KindNotInteractable marks a node that exists but cannot be clicked yet.
	KindNotInteractable Kind = "not-interactable"
	// KindTimeout marks an operation that exceeded its wait budget.
	KindTimeout Kind = "timeout"
	// KindBadSelector marks a selector the document engine rejected.
	KindBadSelector Kind = "bad-selector"
	// KindSession marks a browser or session level failure.
	KindSession Kind = "session"
)

// Failure wraps a page operation error with its classification.
type Failure struct {
	Kind Kind
	Op   string
	Err  error
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s: %v", f.Op, f.Kind, f.Err)
}

// Unwrap returns the underlying error.
func (f *Failure) Unwrap() error {
	return f.Err
}

// KindOf returns the failure kind of err, or KindSession when err carries no
// classification.
func KindOf(err error) Kind {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure.Kind
	}
	return KindSession
}

// Page is the rendered-document capability consumed by the pipeline.
type Page interface {
	// Navigate loads the given URL and waits for the document to be ready.
	Navigate(ctx context.Context, url string) error
	// Evaluate runs a JavaScript expression against the document.
	Evaluate(ctx context.Context, js string) error
	// WaitVisible blocks until the selector matches a visible node.
	WaitVisible(ctx context.Context, selector string) error
	// Click clicks the first node matching the selector.
	Click(ctx context.Context, selector string) error
	// OuterHTML returns the outer HTML of the first node matching the selector.
	OuterHTML(ctx context.Context, selector string) (string, error)
	// Attribute returns the named attribute of the first matching node, and
	// whether the attribute is present.
	Attribute(ctx context.Context, selector, name string) (string, bool, error)
	// Count returns the number of nodes matching the selector.
	Count(ctx context.Context, selector string) (int, error)
	// ClickNth clicks the n-th node (zero-based) matching the selector. The
	// node is located by position at the moment of the click.
	ClickNth(ctx context.Context, selector string, n int) error
	// OuterHTMLNth returns the outer HTML of the n-th node (zero-based)
	// matching the selector.
	OuterHTMLNth(ctx context.Context, selector string, n int) (string, error)
}
