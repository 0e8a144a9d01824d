// Package partheat runs one participant of a partitioned transient
// heat-conduction simulation: two independently discretized subdomains
// coupled at a shared interface, exchanging temperature and flux through
// a coupling coordinator with checkpoint/rollback support.
//
// Example usage:
//
//	cfg := partheat.DefaultConfig()
//	cfg.Role = "Neumann"
//	cfg.CouplingDir = "/shared/run"
//	if err := partheat.Run(context.Background(), cfg, logger); err != nil {
//	    log.Fatal(err)
//	}
//
// The peer participant runs the same way with the opposite role.
package partheat

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fem-labs/partheat/internal/adapters/export"
	"github.com/fem-labs/partheat/internal/adapters/filecoupling"
	"github.com/fem-labs/partheat/internal/app"
	"github.com/fem-labs/partheat/internal/config"
	"github.com/fem-labs/partheat/internal/domain"
	"github.com/fem-labs/partheat/internal/fem"
	"github.com/fem-labs/partheat/internal/ports"
	"github.com/fem-labs/partheat/internal/project"
	"github.com/fem-labs/partheat/internal/sampler"
)

// Config holds the configuration for one participant run.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = config.Config

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return config.DefaultConfig()
}

// Run executes one participant until the coupling completes. It blocks on
// the peer's progress; cancel the context to abort.
func Run(ctx context.Context, cfg Config, logger zerolog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	role := cfg.ParsedRole()

	solver, err := fem.New(fem.Config{
		Role:        role,
		Elements:    cfg.Elements,
		Diffusivity: cfg.Diffusivity,
	})
	if err != nil {
		return err
	}

	smp, err := sampler.New(sampler.Config{
		X:          solver.InterfaceX(),
		Elements:   solver.InterfaceElements(),
		SubSamples: cfg.SubSamples,
	})
	if err != nil {
		return err
	}

	var projector ports.FluxProjector
	if role == domain.RoleDirichlet {
		switch cfg.Projection {
		case config.ProjectionLeastSquares:
			projector, err = project.NewLeastSquares(solver.InterfaceMass(), cfg.Droptol)
		case config.ProjectionAreaWeighted:
			projector = project.NewAreaWeighted(solver.InterfaceAreas())
		default:
			err = fmt.Errorf("%w: unsupported projection %q", domain.ErrInvalidConfig, cfg.Projection)
		}
		if err != nil {
			return err
		}
	}

	channel, err := filecoupling.New(filecoupling.Config{
		Dir:           cfg.CouplingDir,
		Participant:   cfg.Participant,
		Peer:          cfg.Peer,
		First:         role == domain.RoleDirichlet,
		WindowSize:    cfg.WindowSize,
		MaxTime:       cfg.EndTime,
		MaxIterations: cfg.MaxIterations,
		ConvTol:       cfg.ConvTol,
		PollInterval:  cfg.PollInterval,
	}, logger)
	if err != nil {
		return err
	}

	var observer ports.CommitObserver
	if cfg.ErrorLog != "-" {
		errLog, err := export.NewErrorLog(cfg.ErrorLog, solver.L2Error)
		if err != nil {
			return err
		}
		defer errLog.Close()
		observer = errLog
	}

	controller, err := app.New(
		app.Config{Role: role, MaxStep: cfg.Timestep, Droptol: cfg.Droptol},
		solver, channel, projector,
		smp.Consumption(), smp.Production(),
		observer, logger,
	)
	if err != nil {
		return err
	}
	return controller.Run(ctx)
}
