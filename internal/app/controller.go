package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fem-labs/partheat/internal/domain"
	"github.com/fem-labs/partheat/internal/ports"
)

// Config contains configuration for the coupling controller.
type Config struct {
	// Role selects the Dirichlet or Neumann behavior of this participant.
	Role domain.Role

	// MaxStep caps the local step size; the effective step of each solve
	// is min(MaxStep, admissible step reported by the coordinator).
	MaxStep float64

	// Droptol is the support threshold for rebuilding interface
	// constraints from incoming data.
	Droptol float64
}

// Controller drives the coupling iteration for one participant: it decides
// the step size, triggers checkpoint save/restore, orchestrates the
// read-before-solve and write-after-solve ordering, and terminates when
// the coordinator reports completion.
//
// All numerical state (previous-window dofs, constraints, source,
// checkpoint) is owned by the controller instance with lifetime tied to
// the run, so multiple independent runs can coexist in one process.
type Controller struct {
	cfg       Config
	solver    ports.FieldSolver
	channel   ports.CouplingChannel
	projector ports.FluxProjector
	consume   domain.InterfaceSample
	produce   domain.InterfaceSample
	observer  ports.CommitObserver
	logger    zerolog.Logger

	prev       domain.SolutionState
	cons       domain.ConstraintSet
	source     []float64
	checkpoint domain.Checkpoint
	clock      domain.CouplingClock
}

// New creates a controller with the given collaborators. The consumption
// sample must match the solver quadrature; the production sample is the
// exchange resolution.
func New(
	cfg Config,
	solver ports.FieldSolver,
	channel ports.CouplingChannel,
	projector ports.FluxProjector,
	consume, produce domain.InterfaceSample,
	observer ports.CommitObserver,
	logger zerolog.Logger,
) (*Controller, error) {
	if cfg.MaxStep <= 0 {
		return nil, fmt.Errorf("%w: max step %g must be positive", domain.ErrInvalidConfig, cfg.MaxStep)
	}
	if cfg.Role != domain.RoleDirichlet && cfg.Role != domain.RoleNeumann {
		return nil, fmt.Errorf("%w: unsupported role %v", domain.ErrInvalidConfig, cfg.Role)
	}
	if cfg.Role == domain.RoleDirichlet && projector == nil {
		return nil, fmt.Errorf("%w: Dirichlet role requires a flux projector", domain.ErrInvalidConfig)
	}
	if cfg.Droptol <= 0 {
		cfg.Droptol = 1e-15
	}
	if observer == nil {
		observer = ports.NoopObserver{}
	}
	return &Controller{
		cfg:       cfg,
		solver:    solver,
		channel:   channel,
		projector: projector,
		consume:   consume,
		produce:   produce,
		observer:  observer,
		logger:    logger.With().Str("role", cfg.Role.String()).Logger(),
	}, nil
}

// Run executes the coupling loop until the coordinator reports completion.
// Any error is fatal and identifies the failing step; coordinator-signaled
// rollback is normal control flow, not an error.
func (c *Controller) Run(ctx context.Context) error {
	consumeHandle, err := c.channel.RegisterInterface("Mesh-GP-"+c.cfg.Role.String(), c.consume)
	if err != nil {
		return fmt.Errorf("register consumption interface: %w", err)
	}
	produceHandle, err := c.channel.RegisterInterface("Mesh-CC-"+c.cfg.Role.String(), c.produce)
	if err != nil {
		return fmt.Errorf("register production interface: %w", err)
	}

	c.clock, err = c.channel.Initialize(ctx)
	if err != nil {
		return fmt.Errorf("initialize coupling: %w", err)
	}

	c.prev = c.solver.InitialState()
	c.cons = c.solver.BaseConstraints()
	c.source = nil

	c.logger.Info().
		Float64("admissible_step", c.clock.AdmissibleStep).
		Int("dofs", c.solver.Size()).
		Msg("coupling initialized")

	for c.channel.IsOngoing() {
		if err := c.iterate(ctx, consumeHandle, produceHandle); err != nil {
			return err
		}
	}

	c.logger.Info().Float64("time", c.clock.Now).Str("step", StepFinalized.String()).Msg("coupling complete")
	if err := c.channel.Finalize(); err != nil {
		return fmt.Errorf("%s: %w", StepFinalized, err)
	}
	return nil
}

// iterate runs one pass of the coupling state machine.
func (c *Controller) iterate(ctx context.Context, consumeHandle, produceHandle ports.MeshHandle) error {
	// AwaitRead: fold incoming data into the boundary condition. When no
	// new data arrived the previous boundary condition is reused unchanged.
	if c.channel.IsReadAvailable() {
		if err := c.readBoundaryData(ctx, consumeHandle); err != nil {
			return fmt.Errorf("%s: %w", StepAwaitRead, err)
		}
	}

	// MaybeCheckpoint: save state before the window's first solve.
	if c.channel.IsActionRequired(domain.ActionWriteCheckpoint) {
		c.checkpoint.Take(c.prev, c.clock.Now)
		if err := c.channel.Acknowledge(domain.ActionWriteCheckpoint); err != nil {
			return fmt.Errorf("%s: %w", StepMaybeCheckpoint, err)
		}
		c.logger.Debug().Float64("time", c.clock.Now).Msg("checkpoint written")
	}

	// Solve.
	dt := c.cfg.MaxStep
	if c.clock.AdmissibleStep < dt {
		dt = c.clock.AdmissibleStep
	}
	cur, err := c.solver.Solve(c.prev, dt, c.cons, c.source)
	if err != nil {
		return fmt.Errorf("%s: %w", StepSolve, err)
	}

	// MaybeWrite.
	if c.channel.IsWriteRequired(dt) {
		if err := c.writeBoundaryData(ctx, produceHandle, cur, dt); err != nil {
			return fmt.Errorf("%s: %w", StepMaybeWrite, err)
		}
	}

	// Advance: the clock mutates here and nowhere else.
	c.clock, err = c.channel.Advance(ctx, dt)
	if err != nil {
		return fmt.Errorf("%s: %w", StepAdvance, err)
	}

	// Decide: restore the checkpoint or commit the window.
	if c.channel.IsActionRequired(domain.ActionReadCheckpoint) {
		c.prev = c.checkpoint.Restore()
		if err := c.channel.Acknowledge(domain.ActionReadCheckpoint); err != nil {
			return fmt.Errorf("%s: %w", StepDecide, err)
		}
		c.logger.Debug().Float64("time", c.checkpoint.Time).Msg("checkpoint restored")
	} else {
		c.prev = cur
		c.observer.OnCommit(c.prev, c.clock.Now)
		c.logger.Debug().Float64("time", c.clock.Now).Float64("dt", dt).Msg("window committed")
	}
	return nil
}

// readBoundaryData pulls the read quantity and rebuilds the role's boundary
// condition from it.
func (c *Controller) readBoundaryData(ctx context.Context, h ports.MeshHandle) error {
	buf, err := c.channel.Read(ctx, c.cfg.Role.ReadQuantity(), h)
	if err != nil {
		return err
	}
	if err := buf.Validate(c.consume); err != nil {
		return err
	}
	switch c.cfg.Role {
	case domain.RoleDirichlet:
		c.cons, err = c.solver.BuildConstraints(c.consume, buf.Values, c.cfg.Droptol)
	case domain.RoleNeumann:
		c.source, err = c.solver.BuildSource(c.consume, buf.Values)
	}
	return err
}

// writeBoundaryData produces the write quantity at the production sample
// and pushes it through the channel.
func (c *Controller) writeBoundaryData(ctx context.Context, h ports.MeshHandle, cur domain.SolutionState, dt float64) error {
	var values []float64
	var err error
	switch c.cfg.Role {
	case domain.RoleDirichlet:
		// The weak-form residual carries the discrete interface flux;
		// project it onto the trace basis and sample at the exchange points.
		var residual, fluxDofs []float64
		if residual, err = c.solver.Residual(c.prev, cur, dt, c.source); err != nil {
			return err
		}
		if fluxDofs, err = c.projector.Project(residual); err != nil {
			return err
		}
		values, err = c.solver.EvaluateFlux(fluxDofs, c.produce)
	case domain.RoleNeumann:
		values, err = c.solver.EvaluateTemperature(cur, c.produce)
	}
	if err != nil {
		return err
	}
	return c.channel.Write(ctx, c.cfg.Role.WriteQuantity(), h, domain.ExchangeBuffer{
		Quantity: c.cfg.Role.WriteQuantity(),
		Values:   values,
	})
}
