// Package fem implements the local field solver for one participant: a
// bilinear-quadrilateral discretization of transient heat conduction on
// half of the unit square, advanced with backward-Euler steps.
//
// The Dirichlet-role participant owns [1/2,1]x[0,1], the Neumann-role
// participant owns [0,1/2]x[0,1]; the coupling interface is the shared
// vertical edge at x = 1/2. Outer boundaries carry Dirichlet values of the
// manufactured solution u = sin(x)*cosh(y), which is harmonic, so the exact
// transient solution is constant in time and the discrete error per
// committed window is well defined.
package fem

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/fem-labs/partheat/internal/domain"
)

// Config selects the participant's subdomain and mesh resolution.
type Config struct {
	// Role picks the subdomain and the interface side.
	Role domain.Role

	// Elements is the number of elements along a full unit-square edge.
	// The subdomain is meshed with Elements/2 x Elements square cells.
	// Must be even and at least 2.
	Elements int

	// Diffusivity is the (constant) heat conduction coefficient.
	Diffusivity float64
}

// grid is the structured mesh of one participant's subdomain.
type grid struct {
	nx, ny int     // elements per direction
	hx, hy float64 // cell sizes
	x0     float64 // x of the left edge
}

func newGrid(cfg Config) (grid, error) {
	if cfg.Elements < 2 || cfg.Elements%2 != 0 {
		return grid{}, fmt.Errorf("%w: element count %d must be even and at least 2",
			domain.ErrInvalidConfig, cfg.Elements)
	}
	g := grid{
		nx: cfg.Elements / 2,
		ny: cfg.Elements,
		hx: 1.0 / float64(cfg.Elements),
		hy: 1.0 / float64(cfg.Elements),
	}
	switch cfg.Role {
	case domain.RoleDirichlet:
		g.x0 = 0.5
	case domain.RoleNeumann:
		g.x0 = 0.0
	default:
		return grid{}, fmt.Errorf("%w: unsupported role %v", domain.ErrInvalidConfig, cfg.Role)
	}
	return g, nil
}

// node returns the dof index of grid node (i, j).
func (g grid) node(i, j int) int { return j*(g.nx+1) + i }

// coords returns the physical coordinates of grid node (i, j).
func (g grid) coords(i, j int) (float64, float64) {
	return g.x0 + float64(i)*g.hx, float64(j) * g.hy
}

// size returns the number of degrees of freedom.
func (g grid) size() int { return (g.nx + 1) * (g.ny + 1) }

// interfaceColumn returns the i index of the coupling interface column.
// The Dirichlet subdomain couples on its left edge, the Neumann subdomain
// on its right edge.
func (g grid) interfaceColumn() int {
	if g.x0 == 0.5 {
		return 0
	}
	return g.nx
}

// onOuterBoundary reports whether grid node (i, j) lies on a non-interface
// boundary edge. Interface endpoints at y=0 and y=1 belong to the outer
// boundary and keep their fixed values throughout the run.
func (g grid) onOuterBoundary(i, j int) bool {
	if j == 0 || j == g.ny {
		return true
	}
	ic := g.interfaceColumn()
	if i == 0 && ic != 0 {
		return true
	}
	if i == g.nx && ic != g.nx {
		return true
	}
	return false
}

// exact is the manufactured solution. It is harmonic, so it solves the
// transient heat equation with itself as initial and boundary data.
func exact(x, y float64) float64 { return math.Sin(x) * math.Cosh(y) }

// Reference element matrices for a bilinear quad of size hx x hy, local
// node order (0,0), (1,0), (1,1), (0,1). The entries are the exact
// integrals, which 2x2 Gauss quadrature reproduces.
var (
	massRef = [4][4]float64{
		{4, 2, 1, 2},
		{2, 4, 2, 1},
		{1, 2, 4, 2},
		{2, 1, 2, 4},
	}
	stiffX = [4][4]float64{
		{2, -2, -1, 1},
		{-2, 2, 1, -1},
		{-1, 1, 2, -2},
		{1, -1, -2, 2},
	}
	stiffY = [4][4]float64{
		{2, 1, -1, -2},
		{1, 2, -2, -1},
		{-1, -2, 2, 1},
		{-2, -1, 1, 2},
	}
)

// assemble builds the global mass and stiffness matrices.
func assemble(g grid, kappa float64) (mass, stiff *mat.SymDense) {
	n := g.size()
	mass = mat.NewSymDense(n, nil)
	stiff = mat.NewSymDense(n, nil)

	mScale := g.hx * g.hy / 36
	kxScale := kappa * g.hy / (6 * g.hx)
	kyScale := kappa * g.hx / (6 * g.hy)

	for ey := 0; ey < g.ny; ey++ {
		for ex := 0; ex < g.nx; ex++ {
			nodes := [4]int{
				g.node(ex, ey),
				g.node(ex+1, ey),
				g.node(ex+1, ey+1),
				g.node(ex, ey+1),
			}
			for a := 0; a < 4; a++ {
				for b := a; b < 4; b++ {
					i, j := nodes[a], nodes[b]
					if i > j {
						i, j = j, i
					}
					mass.SetSym(i, j, mass.At(i, j)+mScale*massRef[a][b])
					stiff.SetSym(i, j, stiff.At(i, j)+kxScale*stiffX[a][b]+kyScale*stiffY[a][b])
				}
			}
		}
	}
	return mass, stiff
}
