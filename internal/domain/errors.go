package domain

import "errors"

// Domain errors represent error conditions in the partheat domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrSolverDivergence is returned when the local PDE solve fails to
	// converge. Fatal to the run; resilience against rejected coupling
	// windows comes from the coordinator's rollback, not a local retry.
	ErrSolverDivergence = errors.New("partheat: local solve diverged")

	// ErrProtocolViolation is returned when channel calls are made out of
	// contract order, e.g. a write attempted when none is required.
	ErrProtocolViolation = errors.New("partheat: coordinator protocol violation")

	// ErrInvalidConfig is returned when configuration validation fails,
	// including unsupported role values and mismatched buffer lengths.
	ErrInvalidConfig = errors.New("partheat: invalid configuration")

	// ErrChannelClosed is returned when a channel primitive is used after
	// the coupling has been finalized.
	ErrChannelClosed = errors.New("partheat: coupling channel closed")
)
