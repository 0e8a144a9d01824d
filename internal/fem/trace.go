package fem

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/fem-labs/partheat/internal/domain"
)

// traceElement locates an interface point within the 1D trace mesh and
// returns the element index together with the local coordinate in [0,1].
func (s *Solver) traceElement(y float64) (int, float64) {
	e := int(y / s.g.hy)
	if e >= s.g.ny {
		e = s.g.ny - 1
	}
	if e < 0 {
		e = 0
	}
	return e, y/s.g.hy - float64(e)
}

// BuildConstraints fits values given at the sample points onto the
// interface trace basis by a weighted least-squares (trace mass) solve and
// merges the result over the fixed outer-boundary constraints, which take
// precedence. Trace dofs whose mass diagonal falls below droptol remain
// unconstrained.
func (s *Solver) BuildConstraints(sample domain.InterfaceSample, values []float64, droptol float64) (domain.ConstraintSet, error) {
	if len(values) != sample.Len() {
		return nil, fmt.Errorf("%w: %d values for %d sample points",
			domain.ErrInvalidConfig, len(values), sample.Len())
	}

	m := s.g.ny + 1
	tm := s.traceMass()
	rhs := mat.NewVecDense(m, nil)
	for p, pt := range sample.Points {
		e, xi := s.traceElement(pt.Y)
		rhs.SetVec(e, rhs.AtVec(e)+pt.Weight*(1-xi)*values[p])
		rhs.SetVec(e+1, rhs.AtVec(e+1)+pt.Weight*xi*values[p])
	}

	var ch mat.Cholesky
	if !ch.Factorize(tm) {
		return nil, fmt.Errorf("%w: interface trace mass not positive definite", domain.ErrSolverDivergence)
	}
	var c mat.VecDense
	if err := ch.SolveVecTo(&c, rhs); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSolverDivergence, err)
	}

	cons := s.base.Clone()
	for a := 0; a < m; a++ {
		if tm.At(a, a) < droptol {
			continue
		}
		node := s.ifaceNodes[a]
		if cons.Constrained(node) {
			continue
		}
		cons[node] = c.AtVec(a)
	}
	return cons, nil
}

// BuildSource assembles the weak-form interface load from flux values at
// the sample points. Incoming flux is measured in the peer's outward
// normal, opposite to this participant's, hence the sign flip.
func (s *Solver) BuildSource(sample domain.InterfaceSample, values []float64) ([]float64, error) {
	if len(values) != sample.Len() {
		return nil, fmt.Errorf("%w: %d values for %d sample points",
			domain.ErrInvalidConfig, len(values), sample.Len())
	}
	src := make([]float64, s.g.size())
	for p, pt := range sample.Points {
		e, xi := s.traceElement(pt.Y)
		src[s.ifaceNodes[e]] -= pt.Weight * (1 - xi) * values[p]
		src[s.ifaceNodes[e+1]] -= pt.Weight * xi * values[p]
	}
	return src, nil
}

// Moments assembles the nodal moment vector of a field given by point
// values at the sample: m_i = sum_p w_p phi_i(p) v_p.
func (s *Solver) Moments(sample domain.InterfaceSample, values []float64) ([]float64, error) {
	if len(values) != sample.Len() {
		return nil, fmt.Errorf("%w: %d values for %d sample points",
			domain.ErrInvalidConfig, len(values), sample.Len())
	}
	m := make([]float64, s.g.size())
	for p, pt := range sample.Points {
		e, xi := s.traceElement(pt.Y)
		m[s.ifaceNodes[e]] += pt.Weight * (1 - xi) * values[p]
		m[s.ifaceNodes[e+1]] += pt.Weight * xi * values[p]
	}
	return m, nil
}

// EvaluateTemperature evaluates the solution field at the sample points.
func (s *Solver) EvaluateTemperature(state domain.SolutionState, sample domain.InterfaceSample) ([]float64, error) {
	if len(state) != s.g.size() {
		return nil, fmt.Errorf("%w: state length %d, want %d", domain.ErrInvalidConfig, len(state), s.g.size())
	}
	return s.evalTrace(state, sample), nil
}

// EvaluateFlux evaluates the flux field spanned by the trace basis with the
// given dof coefficients at the sample points.
func (s *Solver) EvaluateFlux(fluxDofs []float64, sample domain.InterfaceSample) ([]float64, error) {
	if len(fluxDofs) != s.g.size() {
		return nil, fmt.Errorf("%w: flux dof length %d, want %d", domain.ErrInvalidConfig, len(fluxDofs), s.g.size())
	}
	return s.evalTrace(fluxDofs, sample), nil
}

func (s *Solver) evalTrace(dofs []float64, sample domain.InterfaceSample) []float64 {
	out := make([]float64, sample.Len())
	for p, pt := range sample.Points {
		e, xi := s.traceElement(pt.Y)
		out[p] = (1-xi)*dofs[s.ifaceNodes[e]] + xi*dofs[s.ifaceNodes[e+1]]
	}
	return out
}

// traceMass is the 1D mass matrix of the interface trace basis.
func (s *Solver) traceMass() *mat.SymDense {
	m := s.g.ny + 1
	h := s.g.hy
	tm := mat.NewSymDense(m, nil)
	for e := 0; e < s.g.ny; e++ {
		tm.SetSym(e, e, tm.At(e, e)+h/3)
		tm.SetSym(e, e+1, tm.At(e, e+1)+h/6)
		tm.SetSym(e+1, e+1, tm.At(e+1, e+1)+h/3)
	}
	return tm
}

// InterfaceMass returns the full-size basis outer-product matrix over the
// interface: nonzero only on the trace block. Projector input.
func (s *Solver) InterfaceMass() *mat.SymDense {
	n := s.g.size()
	tm := s.traceMass()
	im := mat.NewSymDense(n, nil)
	for a := 0; a <= s.g.ny; a++ {
		for b := a; b <= s.g.ny; b++ {
			if v := tm.At(a, b); v != 0 {
				i, j := s.ifaceNodes[a], s.ifaceNodes[b]
				if i > j {
					i, j = j, i
				}
				im.SetSym(i, j, v)
			}
		}
	}
	return im
}

// InterfaceAreas returns the integral of each basis function over the
// interface; zero for dofs without interface support. Projector input.
func (s *Solver) InterfaceAreas() []float64 {
	areas := make([]float64, s.g.size())
	h := s.g.hy
	for a := 0; a <= s.g.ny; a++ {
		w := h
		if a == 0 || a == s.g.ny {
			w = h / 2
		}
		areas[s.ifaceNodes[a]] = w
	}
	return areas
}
