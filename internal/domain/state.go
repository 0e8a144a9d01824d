package domain

import "math"

// SolutionState holds the degrees of freedom of one participant's field at
// a single time level. Its length is fixed for the run's lifetime.
type SolutionState []float64

// Clone returns an independent copy of the state.
func (s SolutionState) Clone() SolutionState {
	c := make(SolutionState, len(s))
	copy(c, s)
	return c
}

// ConstraintSet assigns a prescribed Dirichlet value to constrained degrees
// of freedom. Unconstrained entries hold NaN. The set always has the same
// length as the SolutionState it applies to.
type ConstraintSet []float64

// NewConstraintSet returns a set of the given length with every entry
// unconstrained.
func NewConstraintSet(n int) ConstraintSet {
	c := make(ConstraintSet, n)
	for i := range c {
		c[i] = math.NaN()
	}
	return c
}

// Constrained reports whether dof i carries a prescribed value.
func (c ConstraintSet) Constrained(i int) bool {
	return !math.IsNaN(c[i])
}

// Clone returns an independent copy of the set.
func (c ConstraintSet) Clone() ConstraintSet {
	d := make(ConstraintSet, len(c))
	copy(d, c)
	return d
}

// Checkpoint is a saved copy of a participant's state taken at the start of
// a coupling window. Exactly one checkpoint exists at a time; it is restored
// verbatim when the coordinator rejects the window.
type Checkpoint struct {
	State SolutionState
	Time  float64
}

// Take overwrites the checkpoint with a copy of the given state and time.
func (c *Checkpoint) Take(state SolutionState, now float64) {
	c.State = state.Clone()
	c.Time = now
}

// Restore returns an independent copy of the saved state.
func (c *Checkpoint) Restore() SolutionState {
	return c.State.Clone()
}

// CouplingClock tracks the coupling coordinator's view of time: the current
// simulation time, the admissible size of the next step, and whether the
// coupling is still ongoing. It is mutated only by the channel's Advance.
type CouplingClock struct {
	Now            float64
	AdmissibleStep float64
	Ongoing        bool
}
