package fem

import (
	"errors"
	"math"
	"testing"

	"github.com/fem-labs/partheat/internal/domain"
	"github.com/fem-labs/partheat/internal/project"
	"github.com/fem-labs/partheat/internal/sampler"
)

func newTestSolver(t *testing.T, role domain.Role) *Solver {
	t.Helper()
	s, err := New(Config{Role: role, Elements: 8, Diffusivity: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func testSamples(t *testing.T, s *Solver) (consume, produce domain.InterfaceSample) {
	t.Helper()
	smp, err := sampler.New(sampler.Config{
		X:          s.InterfaceX(),
		Elements:   s.InterfaceElements(),
		SubSamples: 16,
	})
	if err != nil {
		t.Fatalf("sampler.New: %v", err)
	}
	return smp.Consumption(), smp.Production()
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"odd elements", Config{Role: domain.RoleDirichlet, Elements: 7, Diffusivity: 1}},
		{"too few elements", Config{Role: domain.RoleDirichlet, Elements: 0, Diffusivity: 1}},
		{"zero diffusivity", Config{Role: domain.RoleDirichlet, Elements: 8, Diffusivity: 0}},
		{"bad role", Config{Role: domain.Role(42), Elements: 8, Diffusivity: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); !errors.Is(err, domain.ErrInvalidConfig) {
				t.Fatalf("error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestInterfaceGeometry(t *testing.T) {
	d := newTestSolver(t, domain.RoleDirichlet)
	n := newTestSolver(t, domain.RoleNeumann)

	if d.InterfaceX() != 0.5 || n.InterfaceX() != 0.5 {
		t.Errorf("interface at x = %g / %g, want 0.5 for both roles", d.InterfaceX(), n.InterfaceX())
	}
	if d.InterfaceElements() != 8 {
		t.Errorf("interface elements = %d, want 8", d.InterfaceElements())
	}
	if d.Size() != 45 {
		t.Errorf("dofs = %d, want 45 for a 4x8 grid", d.Size())
	}
}

func TestInitialStateInterpolatesExactSolution(t *testing.T) {
	s := newTestSolver(t, domain.RoleDirichlet)
	if err := s.L2Error(s.InitialState()); err > 1e-2 {
		t.Errorf("interpolant L2 error = %g, want below 1e-2", err)
	}
}

func TestSolve_ConstrainedDofsMatchPrescribedValues(t *testing.T) {
	s := newTestSolver(t, domain.RoleDirichlet)
	consume, _ := testSamples(t, s)

	// Constrain the interface to the exact temperature trace.
	values := make([]float64, consume.Len())
	for i, p := range consume.Points {
		values[i] = math.Sin(p.X) * math.Cosh(p.Y)
	}
	cons, err := s.BuildConstraints(consume, values, 1e-15)
	if err != nil {
		t.Fatalf("BuildConstraints: %v", err)
	}

	state, err := s.Solve(s.InitialState(), 0.1, cons, nil)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	for i := range state {
		if !cons.Constrained(i) {
			continue
		}
		if diff := math.Abs(state[i] - cons[i]); diff > 1e-10 {
			t.Errorf("constrained dof %d off by %g", i, diff)
		}
	}
}

func TestSolve_Deterministic(t *testing.T) {
	s := newTestSolver(t, domain.RoleNeumann)
	prev := s.InitialState()
	cons := s.BaseConstraints()

	a, err := s.Solve(prev, 0.1, cons, nil)
	if err != nil {
		t.Fatalf("first solve: %v", err)
	}
	b, err := s.Solve(prev, 0.1, cons, nil)
	if err != nil {
		t.Fatalf("second solve: %v", err)
	}

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("dof %d differs between identical solves: %g vs %g", i, a[i], b[i])
		}
	}
}

func TestSolve_StaysNearExactSolution(t *testing.T) {
	// The manufactured solution is steady, so stepping from its
	// interpolant under exact boundary data must not drift.
	s := newTestSolver(t, domain.RoleDirichlet)
	consume, _ := testSamples(t, s)

	values := make([]float64, consume.Len())
	for i, p := range consume.Points {
		values[i] = math.Sin(p.X) * math.Cosh(p.Y)
	}
	cons, err := s.BuildConstraints(consume, values, 1e-15)
	if err != nil {
		t.Fatalf("BuildConstraints: %v", err)
	}

	state := s.InitialState()
	for step := 0; step < 5; step++ {
		if state, err = s.Solve(state, 0.1, cons, nil); err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
	}
	if errNorm := s.L2Error(state); errNorm > 5e-2 {
		t.Errorf("L2 error after 5 steps = %g, want below 5e-2", errNorm)
	}
}

func TestResidual_VanishesOnUnconstrainedDofs(t *testing.T) {
	s := newTestSolver(t, domain.RoleDirichlet)
	cons := s.BaseConstraints()
	prev := s.InitialState()

	cur, err := s.Solve(prev, 0.1, cons, nil)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	r, err := s.Residual(prev, cur, 0.1, nil)
	if err != nil {
		t.Fatalf("Residual: %v", err)
	}

	for i := range r {
		if cons.Constrained(i) {
			continue
		}
		if math.Abs(r[i]) > 1e-9 {
			t.Errorf("residual at unconstrained dof %d = %g, want ~0", i, r[i])
		}
	}
}

func TestDirichletWritePath_RecoversExactFlux(t *testing.T) {
	// Full Dirichlet-role write path: solve under exact interface
	// temperatures, project the residual, evaluate the flux field at the
	// production points, and compare with the analytic normal flux.
	s := newTestSolver(t, domain.RoleDirichlet)
	consume, produce := testSamples(t, s)

	values := make([]float64, consume.Len())
	for i, p := range consume.Points {
		values[i] = math.Sin(p.X) * math.Cosh(p.Y)
	}
	cons, err := s.BuildConstraints(consume, values, 1e-15)
	if err != nil {
		t.Fatalf("BuildConstraints: %v", err)
	}
	prev := s.InitialState()
	cur, err := s.Solve(prev, 0.1, cons, nil)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	residual, err := s.Residual(prev, cur, 0.1, nil)
	if err != nil {
		t.Fatalf("Residual: %v", err)
	}

	proj, err := project.NewLeastSquares(s.InterfaceMass(), 1e-15)
	if err != nil {
		t.Fatalf("NewLeastSquares: %v", err)
	}
	fluxDofs, err := proj.Project(residual)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	flux, err := s.EvaluateFlux(fluxDofs, produce)
	if err != nil {
		t.Fatalf("EvaluateFlux: %v", err)
	}

	// Outward normal of the Dirichlet subdomain on the interface points in
	// -x, so the exact flux is -cos(1/2)cosh(y).
	for i, p := range produce.Points {
		if p.Y < 0.25 || p.Y > 0.75 {
			// Skip the interface ends where outer-edge reactions mix in.
			continue
		}
		want := -math.Cos(0.5) * math.Cosh(p.Y)
		if diff := math.Abs(flux[i] - want); diff > 0.1 {
			t.Errorf("flux at y=%.3f = %g, want %g within 0.1", p.Y, flux[i], want)
		}
	}
}

func TestBuildSource_OpposesIncomingFlux(t *testing.T) {
	s := newTestSolver(t, domain.RoleNeumann)
	consume, _ := testSamples(t, s)

	values := make([]float64, consume.Len())
	for i := range values {
		values[i] = 2.0
	}
	src, err := s.BuildSource(consume, values)
	if err != nil {
		t.Fatalf("BuildSource: %v", err)
	}

	// Loads appear only on interface dofs and integrate to minus the total
	// incoming flux.
	total := 0.0
	areas := s.InterfaceAreas()
	for i, v := range src {
		if areas[i] == 0 && v != 0 {
			t.Errorf("source on non-interface dof %d = %g", i, v)
		}
		total += v
	}
	if math.Abs(total-(-2.0)) > 1e-12 {
		t.Errorf("total source = %g, want -2", total)
	}
}

func TestEvaluateTemperature_MatchesTrace(t *testing.T) {
	s := newTestSolver(t, domain.RoleNeumann)
	_, produce := testSamples(t, s)

	got, err := s.EvaluateTemperature(s.InitialState(), produce)
	if err != nil {
		t.Fatalf("EvaluateTemperature: %v", err)
	}
	for i, p := range produce.Points {
		want := math.Sin(p.X) * math.Cosh(p.Y)
		if math.Abs(got[i]-want) > 1e-2 {
			t.Errorf("temperature at y=%.3f = %g, want %g", p.Y, got[i], want)
		}
	}
}

func TestSolve_LengthValidation(t *testing.T) {
	s := newTestSolver(t, domain.RoleDirichlet)

	_, err := s.Solve(make(domain.SolutionState, 3), 0.1, s.BaseConstraints(), nil)
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("short state error = %v, want ErrInvalidConfig", err)
	}

	_, err = s.Solve(s.InitialState(), -0.1, s.BaseConstraints(), nil)
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("negative step error = %v, want ErrInvalidConfig", err)
	}
}
