// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingLedger signals that a pipeline stage received a nil ledger.
var ErrMissingLedger = errors.New("ledger is missing")

// StructuralError is fatal: the input spreadsheet does not have the shape
// the pipeline requires. It aborts the run before any write.
type StructuralError struct {
	Label   string
	Reason  string
	Columns []string
	Rows    []int
	Example string
}

func (e *StructuralError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Label, e.Reason)
	if len(e.Columns) > 0 {
		fmt.Fprintf(&b, ": missing columns %s", strings.Join(e.Columns, ", "))
	}
	if len(e.Rows) > 0 {
		fmt.Fprintf(&b, " (rows %v)", e.Rows)
	}
	if e.Example != "" {
		fmt.Fprintf(&b, ", example value %q", e.Example)
	}
	return b.String()
}

// MissingInputError is fatal: a source table could not be loaded at all.
type MissingInputError struct {
	Err  error
	Path string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("cannot load input %s: %v", e.Path, e.Err)
}

func (e *MissingInputError) Unwrap() error {
	return e.Err
}

// ArtifactWriteError is fatal: the merge/save step failed before the final
// save call. Nothing was written to the output path.
type ArtifactWriteError struct {
	Err  error
	Path string
}

func (e *ArtifactWriteError) Error() string {
	return fmt.Sprintf("cannot write artifact %s: %v", e.Path, e.Err)
}

func (e *ArtifactWriteError) Unwrap() error {
	return e.Err
}

// IsFatalInput reports whether an error belongs to the structural/input
// taxonomy that should map to a distinct exit code at the CLI boundary.
func IsFatalInput(err error) bool {
	var structural *StructuralError
	var missing *MissingInputError
	return errors.As(err, &structural) || errors.As(err, &missing)
}
