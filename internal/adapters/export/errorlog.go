// Package export consumes committed coupling windows for external writers.
// The error log records the L2 error of the discrete solution against the
// manufactured solution, one line per committed window.
package export

import (
	"fmt"
	"os"

	"github.com/fem-labs/partheat/internal/domain"
)

// ErrorLog implements ports.CommitObserver by appending "time, error"
// lines to a log file.
type ErrorLog struct {
	f     *os.File
	errFn func(domain.SolutionState) float64
}

// NewErrorLog creates (or truncates) the log file at path. errFn computes
// the error measure of a committed state; the field solver's L2Error is
// the usual choice.
func NewErrorLog(path string, errFn func(domain.SolutionState) float64) (*ErrorLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create error log: %w", err)
	}
	return &ErrorLog{f: f, errFn: errFn}, nil
}

// OnCommit appends one line for the committed window. Write failures are
// swallowed; the error log is diagnostics, not coupling state.
func (l *ErrorLog) OnCommit(state domain.SolutionState, now float64) {
	fmt.Fprintf(l.f, "%.6f, %.6e\n", now, l.errFn(state))
}

// Close flushes and closes the log file.
func (l *ErrorLog) Close() error {
	return l.f.Close()
}
