package fem

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/fem-labs/partheat/internal/domain"
)

// Solver owns the discretized heat problem for one participant and
// implements ports.FieldSolver. All matrices are assembled once at
// construction; the mesh is fixed for the run's lifetime.
type Solver struct {
	role  domain.Role
	g     grid
	mass  *mat.SymDense
	stiff *mat.SymDense

	// ifaceNodes lists the dof indices on the interface column, ordered
	// bottom to top. This order backs the interface trace basis.
	ifaceNodes []int

	base domain.ConstraintSet
}

// New assembles the participant's mesh and matrices.
func New(cfg Config) (*Solver, error) {
	if cfg.Diffusivity <= 0 {
		return nil, fmt.Errorf("%w: diffusivity must be positive", domain.ErrInvalidConfig)
	}
	g, err := newGrid(cfg)
	if err != nil {
		return nil, err
	}

	mass, stiff := assemble(g, cfg.Diffusivity)

	ic := g.interfaceColumn()
	ifaceNodes := make([]int, g.ny+1)
	for j := 0; j <= g.ny; j++ {
		ifaceNodes[j] = g.node(ic, j)
	}

	base := domain.NewConstraintSet(g.size())
	for j := 0; j <= g.ny; j++ {
		for i := 0; i <= g.nx; i++ {
			if g.onOuterBoundary(i, j) {
				x, y := g.coords(i, j)
				base[g.node(i, j)] = exact(x, y)
			}
		}
	}

	return &Solver{
		role:       cfg.Role,
		g:          g,
		mass:       mass,
		stiff:      stiff,
		ifaceNodes: ifaceNodes,
		base:       base,
	}, nil
}

// Size returns the number of degrees of freedom.
func (s *Solver) Size() int { return s.g.size() }

// InterfaceX returns the horizontal position of the coupling interface.
func (s *Solver) InterfaceX() float64 {
	x, _ := s.g.coords(s.g.interfaceColumn(), 0)
	return x
}

// InterfaceElements returns the number of mesh elements along the interface.
func (s *Solver) InterfaceElements() int { return s.g.ny }

// InitialState samples the manufactured solution at every node.
func (s *Solver) InitialState() domain.SolutionState {
	state := make(domain.SolutionState, s.g.size())
	for j := 0; j <= s.g.ny; j++ {
		for i := 0; i <= s.g.nx; i++ {
			x, y := s.g.coords(i, j)
			state[s.g.node(i, j)] = exact(x, y)
		}
	}
	return state
}

// BaseConstraints returns a copy of the fixed outer-boundary values.
func (s *Solver) BaseConstraints() domain.ConstraintSet {
	return s.base.Clone()
}

// Solve advances the field by one backward-Euler step of size dt under the
// given constraints and weak-form source.
func (s *Solver) Solve(prev domain.SolutionState, dt float64, cons domain.ConstraintSet, source []float64) (domain.SolutionState, error) {
	n := s.g.size()
	if len(prev) != n || len(cons) != n {
		return nil, fmt.Errorf("%w: state length %d, constraints length %d, want %d",
			domain.ErrInvalidConfig, len(prev), len(cons), n)
	}
	if source != nil && len(source) != n {
		return nil, fmt.Errorf("%w: source length %d, want %d", domain.ErrInvalidConfig, len(source), n)
	}
	if dt <= 0 {
		return nil, fmt.Errorf("%w: step size %g must be positive", domain.ErrInvalidConfig, dt)
	}

	// A = M/dt + K, b = M*prev/dt + source.
	a := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a.Set(i, j, s.mass.At(i, j)/dt+s.stiff.At(i, j))
		}
	}
	b := mat.NewVecDense(n, nil)
	b.MulVec(s.mass, mat.NewVecDense(n, prev))
	for i := 0; i < n; i++ {
		v := b.AtVec(i) / dt
		if source != nil {
			v += source[i]
		}
		b.SetVec(i, v)
	}

	// Constrained rows become identity rows carrying the prescribed value.
	for i := 0; i < n; i++ {
		if !cons.Constrained(i) {
			continue
		}
		for j := 0; j < n; j++ {
			a.Set(i, j, 0)
		}
		a.Set(i, i, 1)
		b.SetVec(i, cons[i])
	}

	var lu mat.LU
	lu.Factorize(a)
	var x mat.VecDense
	if err := lu.SolveVecTo(&x, false, b); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSolverDivergence, err)
	}

	state := make(domain.SolutionState, n)
	copy(state, x.RawVector().Data)
	return state, nil
}

// Residual evaluates the weak-form residual of the step from prev to cur.
// Interior entries vanish for a converged solve; constrained entries carry
// the discrete boundary flux reactions.
func (s *Solver) Residual(prev, cur domain.SolutionState, dt float64, source []float64) ([]float64, error) {
	n := s.g.size()
	if len(prev) != n || len(cur) != n {
		return nil, fmt.Errorf("%w: state lengths %d/%d, want %d",
			domain.ErrInvalidConfig, len(prev), len(cur), n)
	}
	if source != nil && len(source) != n {
		return nil, fmt.Errorf("%w: source length %d, want %d", domain.ErrInvalidConfig, len(source), n)
	}

	diff := mat.NewVecDense(n, nil)
	diff.SubVec(mat.NewVecDense(n, cur), mat.NewVecDense(n, prev))

	var mPart, kPart mat.VecDense
	mPart.MulVec(s.mass, diff)
	kPart.MulVec(s.stiff, mat.NewVecDense(n, cur))

	r := make([]float64, n)
	for i := 0; i < n; i++ {
		r[i] = mPart.AtVec(i)/dt + kPart.AtVec(i)
		if source != nil {
			r[i] -= source[i]
		}
	}
	return r, nil
}

// L2Error integrates the squared difference between the discrete field and
// the manufactured solution with 2x2 Gauss quadrature per element.
func (s *Solver) L2Error(state domain.SolutionState) float64 {
	const c = 0.5773502691896257 // 1/sqrt(3)
	sum := 0.0
	w := s.g.hx * s.g.hy / 4
	for ey := 0; ey < s.g.ny; ey++ {
		for ex := 0; ex < s.g.nx; ex++ {
			u := [4]float64{
				state[s.g.node(ex, ey)],
				state[s.g.node(ex+1, ey)],
				state[s.g.node(ex+1, ey+1)],
				state[s.g.node(ex, ey+1)],
			}
			xc := s.g.x0 + (float64(ex)+0.5)*s.g.hx
			yc := (float64(ey) + 0.5) * s.g.hy
			for _, gx := range [2]float64{-c, c} {
				for _, gy := range [2]float64{-c, c} {
					// Bilinear interpolation at the Gauss point.
					xi, eta := (gx+1)/2, (gy+1)/2
					uh := u[0]*(1-xi)*(1-eta) + u[1]*xi*(1-eta) + u[2]*xi*eta + u[3]*(1-xi)*eta
					x := xc + gx*s.g.hx/2
					y := yc + gy*s.g.hy/2
					d := uh - exact(x, y)
					sum += w * d * d
				}
			}
		}
	}
	return math.Sqrt(sum)
}
