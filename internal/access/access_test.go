package access_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/gotenders/internal/access"
	"github.com/jonesrussell/gotenders/internal/browser"
	"github.com/jonesrussell/gotenders/internal/logger"
)

// stubPage is a no-op Page; these tests drive the accessor through Perform
// with scripted operations instead.
type stubPage struct{}

func (stubPage) Navigate(context.Context, string) error            { return nil }
func (stubPage) Evaluate(context.Context, string) error            { return nil }
func (stubPage) WaitVisible(context.Context, string) error         { return nil }
func (stubPage) Click(context.Context, string) error               { return nil }
func (stubPage) OuterHTML(context.Context, string) (string, error) { return "", nil }
func (stubPage) Attribute(context.Context, string, string) (string, bool, error) {
	return "", false, nil
}
func (stubPage) Count(context.Context, string) (int, error)              { return 0, nil }
func (stubPage) ClickNth(context.Context, string, int) error             { return nil }
func (stubPage) OuterHTMLNth(context.Context, string, int) (string, error) { return "", nil }

func newAccessor(t *testing.T, maxRetries int) *access.Accessor {
	t.Helper()
	return access.New(stubPage{}, access.Config{
		MaxRetries: maxRetries,
		RetryDelay: time.Millisecond,
	}, logger.NewNoOp())
}

func staleErr() error {
	return &browser.Failure{Kind: browser.KindStale, Op: "click", Err: errors.New("node detached")}
}

func TestPerformSucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	acc := newAccessor(t, 3)

	calls := 0
	err := acc.Perform(context.Background(), access.Operation{
		Name: "noop",
		Do: func(context.Context) error {
			calls++
			return nil
		},
	})

	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestPerformRetriesRecoverableFailures(t *testing.T) {
	t.Parallel()

	acc := newAccessor(t, 3)

	calls := 0
	err := acc.Perform(context.Background(), access.Operation{
		Name: "flaky",
		Do: func(context.Context) error {
			calls++
			if calls < 3 {
				return staleErr()
			}
			return nil
		},
	})

	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestPerformExhaustsRetryBudget(t *testing.T) {
	t.Parallel()

	const maxRetries = 4
	acc := newAccessor(t, maxRetries)

	calls := 0
	err := acc.Perform(context.Background(), access.Operation{
		Name: "always stale",
		Do: func(context.Context) error {
			calls++
			return staleErr()
		},
	})

	require.Equal(t, maxRetries, calls)

	var failure *access.AccessFailure
	require.ErrorAs(t, err, &failure)
	require.Equal(t, maxRetries, failure.Attempts)
	require.Equal(t, browser.KindStale, failure.Kind)
}

func TestPerformDoesNotRetryNonRecoverable(t *testing.T) {
	t.Parallel()

	acc := newAccessor(t, 3)

	badSelector := &browser.Failure{
		Kind: browser.KindBadSelector,
		Op:   "click",
		Err:  errors.New("invalid selector"),
	}

	calls := 0
	err := acc.Perform(context.Background(), access.Operation{
		Name: "bad selector",
		Do: func(context.Context) error {
			calls++
			return badSelector
		},
	})

	require.Equal(t, 1, calls)
	require.ErrorIs(t, err, badSelector)

	var failure *access.AccessFailure
	require.False(t, errors.As(err, &failure))
}

func TestPerformUnclassifiedErrorNotRetried(t *testing.T) {
	t.Parallel()

	acc := newAccessor(t, 3)

	plain := errors.New("connection refused")

	calls := 0
	err := acc.Perform(context.Background(), access.Operation{
		Name: "session failure",
		Do: func(context.Context) error {
			calls++
			return plain
		},
	})

	require.Equal(t, 1, calls)
	require.ErrorIs(t, err, plain)
}

func TestPerformStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	acc := access.New(stubPage{}, access.Config{
		MaxRetries: 5,
		RetryDelay: time.Minute,
	}, logger.NewNoOp())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := acc.Perform(ctx, access.Operation{
		Name: "cancelled",
		Do: func(context.Context) error {
			calls++
			return staleErr()
		},
	})

	require.Equal(t, 1, calls)
	require.ErrorIs(t, err, context.Canceled)
}

func TestPerformConfiguredRecoverableKinds(t *testing.T) {
	t.Parallel()

	// Only timeouts are recoverable here; a stale reference must propagate
	// without retry.
	acc := access.New(stubPage{}, access.Config{
		MaxRetries:       3,
		RetryDelay:       time.Millisecond,
		RecoverableKinds: []browser.Kind{browser.KindTimeout},
	}, logger.NewNoOp())

	calls := 0
	err := acc.Perform(context.Background(), access.Operation{
		Name: "stale not recoverable",
		Do: func(context.Context) error {
			calls++
			return staleErr()
		},
	})

	require.Equal(t, 1, calls)
	require.Equal(t, browser.KindStale, browser.KindOf(err))
}
