// Package project maps nodal flux moment vectors onto interface flux
// degrees of freedom. Two interchangeable strategies exist:
//
//   - [LeastSquares]: a constrained interface-mass solve, mass-consistent
//     and exact, at the cost of one linear solve per exchange. Preferred
//     when the two exchange resolutions differ significantly.
//   - [AreaWeighted]: division by precomputed per-dof interface areas,
//     cheap and approximate. Preferred when resolutions are comparable.
//
// Both strategies are deterministic given identical input and the fixed
// mesh, and both satisfy ports.FluxProjector.
package project

import (
	"fmt"

	"github.com/fem-labs/partheat/internal/domain"
)

// DefaultDroptol is the row-support threshold below which a degree of
// freedom is considered to have no interface contribution.
const DefaultDroptol = 1e-15

func checkLength(got, want int) error {
	if got != want {
		return fmt.Errorf("%w: moment vector length %d, want %d", domain.ErrInvalidConfig, got, want)
	}
	return nil
}
