package project

import (
	"errors"
	"math"
	"testing"

	"github.com/fem-labs/partheat/internal/domain"
	"github.com/fem-labs/partheat/internal/fem"
	"github.com/fem-labs/partheat/internal/sampler"
)

func testFixture(t *testing.T) (*fem.Solver, domain.InterfaceSample, domain.InterfaceSample) {
	t.Helper()
	s, err := fem.New(fem.Config{Role: domain.RoleDirichlet, Elements: 8, Diffusivity: 1})
	if err != nil {
		t.Fatalf("fem.New: %v", err)
	}
	smp, err := sampler.New(sampler.Config{
		X:          s.InterfaceX(),
		Elements:   s.InterfaceElements(),
		SubSamples: 16,
	})
	if err != nil {
		t.Fatalf("sampler.New: %v", err)
	}
	return s, smp.Consumption(), smp.Production()
}

func TestAreaWeighted_ConstantFieldRoundTrip(t *testing.T) {
	// A uniform flux over the full interface must come back unchanged.
	s, consume, produce := testFixture(t)

	const c = 3.25
	values := make([]float64, consume.Len())
	for i := range values {
		values[i] = c
	}
	moments, err := s.Moments(consume, values)
	if err != nil {
		t.Fatalf("Moments: %v", err)
	}

	proj := NewAreaWeighted(s.InterfaceAreas())
	fluxDofs, err := proj.Project(moments)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	out, err := s.EvaluateFlux(fluxDofs, produce)
	if err != nil {
		t.Fatalf("EvaluateFlux: %v", err)
	}

	for i, v := range out {
		if math.Abs(v-c) > 1e-12 {
			t.Errorf("output %d = %g, want %g", i, v, c)
		}
	}
}

func TestAreaWeighted_ZeroAreaMapsToZero(t *testing.T) {
	areas := []float64{0.5, 0, 0.25}
	proj := NewAreaWeighted(areas)

	out, err := proj.Project([]float64{1, 1, 1})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if out[1] != 0 {
		t.Errorf("zero-area dof mapped to %g, want 0", out[1])
	}
	if out[0] != 2 || out[2] != 4 {
		t.Errorf("out = %v, want [2 0 4]", out)
	}
}

func TestLeastSquares_ConservesIntegratedFlux(t *testing.T) {
	// The weighted sum of the projected output over the production points
	// must equal the weighted sum of the input over the consumption points.
	s, consume, produce := testFixture(t)

	// A non-trivial field from the trace space, so both quadratures are
	// exact and the comparison is tight.
	values := make([]float64, consume.Len())
	for i, p := range consume.Points {
		values[i] = 1 + 2*p.Y
	}
	moments, err := s.Moments(consume, values)
	if err != nil {
		t.Fatalf("Moments: %v", err)
	}

	proj, err := NewLeastSquares(s.InterfaceMass(), DefaultDroptol)
	if err != nil {
		t.Fatalf("NewLeastSquares: %v", err)
	}
	fluxDofs, err := proj.Project(moments)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	out, err := s.EvaluateFlux(fluxDofs, produce)
	if err != nil {
		t.Fatalf("EvaluateFlux: %v", err)
	}

	in := 0.0
	for i, p := range consume.Points {
		in += p.Weight * values[i]
	}
	got := 0.0
	for i, p := range produce.Points {
		got += p.Weight * out[i]
	}
	if rel := math.Abs(got-in) / math.Abs(in); rel > 1e-10 {
		t.Errorf("integrated flux %g vs %g, relative error %g beyond 1e-10", got, in, rel)
	}
}

func TestLeastSquares_ReproducesTraceFields(t *testing.T) {
	// Mass-consistent projection recovers fields from the trace space
	// exactly, not just their integral.
	s, consume, produce := testFixture(t)

	values := make([]float64, consume.Len())
	for i, p := range consume.Points {
		values[i] = 4 - 3*p.Y
	}
	moments, err := s.Moments(consume, values)
	if err != nil {
		t.Fatalf("Moments: %v", err)
	}

	proj, err := NewLeastSquares(s.InterfaceMass(), DefaultDroptol)
	if err != nil {
		t.Fatalf("NewLeastSquares: %v", err)
	}
	fluxDofs, err := proj.Project(moments)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	out, err := s.EvaluateFlux(fluxDofs, produce)
	if err != nil {
		t.Fatalf("EvaluateFlux: %v", err)
	}

	for i, p := range produce.Points {
		want := 4 - 3*p.Y
		if math.Abs(out[i]-want) > 1e-10 {
			t.Errorf("output at y=%.3f = %g, want %g", p.Y, out[i], want)
		}
	}
}

func TestProjectors_Deterministic(t *testing.T) {
	s, consume, _ := testFixture(t)

	values := make([]float64, consume.Len())
	for i, p := range consume.Points {
		values[i] = math.Sin(5 * p.Y)
	}
	moments, err := s.Moments(consume, values)
	if err != nil {
		t.Fatalf("Moments: %v", err)
	}

	ls, err := NewLeastSquares(s.InterfaceMass(), DefaultDroptol)
	if err != nil {
		t.Fatalf("NewLeastSquares: %v", err)
	}
	aw := NewAreaWeighted(s.InterfaceAreas())

	for _, proj := range []interface {
		Project([]float64) ([]float64, error)
	}{ls, aw} {
		a, err := proj.Project(moments)
		if err != nil {
			t.Fatalf("Project: %v", err)
		}
		b, err := proj.Project(moments)
		if err != nil {
			t.Fatalf("Project: %v", err)
		}
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("dof %d differs between identical projections", i)
			}
		}
	}
}

func TestProject_LengthValidation(t *testing.T) {
	s, _, _ := testFixture(t)

	ls, err := NewLeastSquares(s.InterfaceMass(), DefaultDroptol)
	if err != nil {
		t.Fatalf("NewLeastSquares: %v", err)
	}
	if _, err := ls.Project(make([]float64, 3)); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("least-squares length error = %v, want ErrInvalidConfig", err)
	}

	aw := NewAreaWeighted(s.InterfaceAreas())
	if _, err := aw.Project(make([]float64, 3)); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("area-weighted length error = %v, want ErrInvalidConfig", err)
	}
}
