package app

// Step identifies a stage of the coupling iteration. Within one iteration
// the stages execute strictly in declaration order; the loop returns to
// StepAwaitRead while the coupling clock reports ongoing and ends in
// StepFinalized.
type Step int

const (
	StepAwaitRead Step = iota
	StepMaybeCheckpoint
	StepSolve
	StepMaybeWrite
	StepAdvance
	StepDecide
	StepFinalized
)

// String returns a human-readable representation of the step.
func (s Step) String() string {
	switch s {
	case StepAwaitRead:
		return "AwaitRead"
	case StepMaybeCheckpoint:
		return "MaybeCheckpoint"
	case StepSolve:
		return "Solve"
	case StepMaybeWrite:
		return "MaybeWrite"
	case StepAdvance:
		return "Advance"
	case StepDecide:
		return "Decide"
	case StepFinalized:
		return "Finalized"
	default:
		return "Unknown"
	}
}
