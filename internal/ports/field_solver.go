package ports

import (
	"github.com/fem-labs/partheat/internal/domain"
)

// FieldSolver owns the discretized PDE state for one participant. Given
// previous-step degrees of freedom, a time-step size, and boundary data, it
// produces new degrees of freedom.
//
// The solver is a black box to the controller: the controller never touches
// matrices or quadrature, only dof vectors and interface samples.
type FieldSolver interface {
	// Size returns the fixed number of degrees of freedom.
	Size() int

	// InitialState returns the dof vector at simulation time zero.
	InitialState() domain.SolutionState

	// BaseConstraints returns the fixed outer-boundary Dirichlet values.
	// Interface and interior entries are unconstrained. The returned set is
	// a copy; callers may mutate it.
	BaseConstraints() domain.ConstraintSet

	// BuildConstraints fits interface values sampled at the consumption
	// points onto the interface trace basis and merges the result over the
	// base constraints. Dofs whose trace-mass diagonal falls below droptol
	// remain unconstrained.
	BuildConstraints(sample domain.InterfaceSample, values []float64, droptol float64) (domain.ConstraintSet, error)

	// BuildSource assembles the weak-form interface load from flux values
	// sampled at the consumption points. The result has Size() entries.
	BuildSource(sample domain.InterfaceSample, values []float64) ([]float64, error)

	// Solve advances the field by one step of size dt. Constrained dofs in
	// the returned state equal their prescribed values within solver
	// tolerance. Fails with domain.ErrSolverDivergence when the solve does
	// not converge; that failure is fatal to the run.
	Solve(prev domain.SolutionState, dt float64, cons domain.ConstraintSet, source []float64) (domain.SolutionState, error)

	// Residual evaluates the weak-form residual of the step from prev to
	// cur. Entries on constrained dofs carry the discrete flux reactions.
	Residual(prev, cur domain.SolutionState, dt float64, source []float64) ([]float64, error)

	// Moments assembles the nodal moment vector of a field given by point
	// values at the sample, i.e. the weighted trace-basis integrals.
	Moments(sample domain.InterfaceSample, values []float64) ([]float64, error)

	// EvaluateTemperature evaluates the solution field at the sample points.
	EvaluateTemperature(state domain.SolutionState, sample domain.InterfaceSample) ([]float64, error)

	// EvaluateFlux evaluates the flux field spanned by the interface trace
	// basis with the given dof coefficients at the sample points.
	EvaluateFlux(fluxDofs []float64, sample domain.InterfaceSample) ([]float64, error)

	// L2Error returns the L2 norm of the difference between the discrete
	// field and the manufactured solution.
	L2Error(state domain.SolutionState) float64
}
