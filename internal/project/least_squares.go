package project

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/fem-labs/partheat/internal/domain"
)

// LeastSquares projects moments by solving the interface-mass system,
// restricted to the degrees of freedom with non-negligible row support.
// All remaining dofs are constrained to zero contribution.
type LeastSquares struct {
	support []int
	chol    mat.Cholesky
	size    int
}

// NewLeastSquares builds the projector from the full-size interface-mass
// matrix. The factorization of the supported block is computed once and
// reused for every exchange.
func NewLeastSquares(ifaceMass *mat.SymDense, droptol float64) (*LeastSquares, error) {
	n := ifaceMass.SymmetricDim()

	var support []int
	for i := 0; i < n; i++ {
		rowMax := 0.0
		for j := 0; j < n; j++ {
			if v := math.Abs(ifaceMass.At(i, j)); v > rowMax {
				rowMax = v
			}
		}
		if rowMax > droptol {
			support = append(support, i)
		}
	}
	if len(support) == 0 {
		return nil, fmt.Errorf("%w: interface mass matrix has no supported rows", domain.ErrInvalidConfig)
	}

	k := len(support)
	block := mat.NewSymDense(k, nil)
	for a := 0; a < k; a++ {
		for b := a; b < k; b++ {
			block.SetSym(a, b, ifaceMass.At(support[a], support[b]))
		}
	}

	p := &LeastSquares{support: support, size: n}
	if !p.chol.Factorize(block) {
		return nil, fmt.Errorf("%w: interface mass matrix not positive definite", domain.ErrInvalidConfig)
	}
	return p, nil
}

// Project solves the supported block against the moment vector; dofs
// outside the support map to zero.
func (p *LeastSquares) Project(moments []float64) ([]float64, error) {
	if err := checkLength(len(moments), p.size); err != nil {
		return nil, err
	}

	rhs := mat.NewVecDense(len(p.support), nil)
	for a, i := range p.support {
		rhs.SetVec(a, moments[i])
	}
	var x mat.VecDense
	if err := p.chol.SolveVecTo(&x, rhs); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSolverDivergence, err)
	}

	out := make([]float64, p.size)
	for a, i := range p.support {
		out[i] = x.AtVec(a)
	}
	return out, nil
}
