package ports

import (
	"github.com/fem-labs/partheat/internal/domain"
)

// CommitObserver consumes the final state of each committed coupling
// window, e.g. for export or error tracking. Observers see committed
// windows only; rolled-back sub-iterations are never reported.
type CommitObserver interface {
	OnCommit(state domain.SolutionState, now float64)
}

// NoopObserver discards all commits.
type NoopObserver struct{}

// OnCommit discards the committed state.
func (NoopObserver) OnCommit(state domain.SolutionState, now float64) {}
