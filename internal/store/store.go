// Package store provides the tabular record stores backing the snapshot and
// cumulative outputs. Writes are staged in memory and flushed once at end of
// run; a crash mid-run leaves the previously persisted file untouched.
package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrColumnMismatch is returned when an existing file's header does not
// match the expected column contract.
var ErrColumnMismatch = errors.New("existing file header does not match column contract")

// PersistenceFailure reports an unwritable or unreadable store. It is the
// one failure class that aborts a run.
type PersistenceFailure struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (f *PersistenceFailure) Error() string {
	return fmt.Sprintf("store %s: %v", f.Path, f.Err)
}

// Unwrap returns the underlying error.
func (f *PersistenceFailure) Unwrap() error {
	return f.Err
}

// Tabular is a named tabular record store.
type Tabular interface {
	// Path returns the backing file path.
	Path() string
	// Columns returns the column contract.
	Columns() []string
	// ExistingRows returns the rows present before this run, in file order.
	ExistingRows() [][]string
	// Append stages one row for the end-of-run flush.
	Append(row []string)
	// Flush writes header, existing rows, and staged rows in one shot.
	// The file is written even when it holds no data rows.
	Flush(ctx context.Context) error
}
