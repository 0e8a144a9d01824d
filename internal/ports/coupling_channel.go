package ports

import (
	"context"

	"github.com/fem-labs/partheat/internal/domain"
)

// MeshHandle identifies an interface point set registered with the
// coordinator. Handles are valid for the lifetime of the channel.
type MeshHandle int

// CouplingChannel is the process-boundary abstraction over the external
// coupling coordinator. Its wire behavior is external to this core; the
// controller relies only on the contract below.
//
// Read, Write and Advance may block pending the other participant's
// progress; they are the only yield points of a run and honor context
// cancellation. Calls made out of contract order return
// domain.ErrProtocolViolation.
type CouplingChannel interface {
	// RegisterInterface registers an interface point set under a name and
	// returns a handle for subsequent reads or writes. Must be called for
	// all point sets before Initialize.
	RegisterInterface(name string, sample domain.InterfaceSample) (MeshHandle, error)

	// Initialize establishes the coupling and returns the initial clock,
	// including the first admissible step size.
	Initialize(ctx context.Context) (domain.CouplingClock, error)

	// IsReadAvailable reports whether new data can be pulled this iteration.
	IsReadAvailable() bool

	// Read pulls the buffer for the named quantity, mapped onto the point
	// set behind the handle. Only valid when IsReadAvailable reports true.
	Read(ctx context.Context, quantity domain.Quantity, h MeshHandle) (domain.ExchangeBuffer, error)

	// IsWriteRequired reports whether outgoing data must be written for a
	// step of the given size.
	IsWriteRequired(dt float64) bool

	// Write pushes the buffer for the named quantity on the point set
	// behind the handle. Only valid when IsWriteRequired reports true.
	Write(ctx context.Context, quantity domain.Quantity, h MeshHandle, buf domain.ExchangeBuffer) error

	// Advance moves the coupling clock by dt and returns the updated clock.
	// This is the point at which the coordinator may reject convergence.
	Advance(ctx context.Context, dt float64) (domain.CouplingClock, error)

	// IsActionRequired reports whether the coordinator requires the given
	// checkpoint action before the run may proceed.
	IsActionRequired(kind domain.ActionKind) bool

	// Acknowledge marks a required action as fulfilled. Acknowledging an
	// action that is not pending is a protocol violation.
	Acknowledge(kind domain.ActionKind) error

	// IsOngoing reports whether the coupling is still in progress.
	IsOngoing() bool

	// Finalize releases the channel. No primitive may be used afterwards.
	Finalize() error
}
