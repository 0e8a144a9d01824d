package domain

import "fmt"

// Role identifies the coupling role of a participant. The Dirichlet-role
// participant receives interface temperatures and returns fluxes; the
// Neumann-role participant receives fluxes and returns temperatures.
type Role int

const (
	RoleDirichlet Role = iota
	RoleNeumann
)

// String returns a human-readable representation of the role.
func (r Role) String() string {
	switch r {
	case RoleDirichlet:
		return "Dirichlet"
	case RoleNeumann:
		return "Neumann"
	default:
		return "Unknown"
	}
}

// ParseRole converts a configuration string into a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "Dirichlet", "dirichlet":
		return RoleDirichlet, nil
	case "Neumann", "neumann":
		return RoleNeumann, nil
	default:
		return 0, fmt.Errorf("%w: unsupported role %q", ErrInvalidConfig, s)
	}
}

// ReadQuantity returns the quantity this role consumes from the peer.
func (r Role) ReadQuantity() Quantity {
	if r == RoleDirichlet {
		return QuantityTemperature
	}
	return QuantityFlux
}

// WriteQuantity returns the quantity this role produces for the peer.
func (r Role) WriteQuantity() Quantity {
	if r == RoleDirichlet {
		return QuantityFlux
	}
	return QuantityTemperature
}

// Quantity names a physical field exchanged across the interface.
type Quantity string

const (
	QuantityTemperature Quantity = "Temperature"
	QuantityFlux        Quantity = "Flux"
)

// ActionKind identifies a checkpoint action signaled by the coordinator.
type ActionKind int

const (
	// ActionWriteCheckpoint requires saving the current state before the
	// window's first solve.
	ActionWriteCheckpoint ActionKind = iota

	// ActionReadCheckpoint requires restoring the saved state, discarding
	// the rejected sub-iteration.
	ActionReadCheckpoint
)

// String returns a human-readable representation of the action kind.
func (a ActionKind) String() string {
	switch a {
	case ActionWriteCheckpoint:
		return "WriteCheckpoint"
	case ActionReadCheckpoint:
		return "ReadCheckpoint"
	default:
		return "Unknown"
	}
}

// Point is a geometric evaluation point on the coupling interface together
// with its integration weight.
type Point struct {
	X, Y   float64
	Weight float64
}

// InterfaceSample is an ordered set of interface points. The order is the
// indexing contract used by the coupling channel to match buffers to points;
// samples are immutable once built from the fixed mesh.
type InterfaceSample struct {
	Name   string
	Points []Point
}

// Len returns the number of sample points.
func (s InterfaceSample) Len() int { return len(s.Points) }

// ExchangeBuffer carries one scalar value per sample point for a named
// quantity. Its lifetime is a single coupling exchange.
type ExchangeBuffer struct {
	Quantity Quantity
	Values   []float64
}

// Validate checks that the buffer matches the sample it is indexed by.
func (b ExchangeBuffer) Validate(sample InterfaceSample) error {
	if len(b.Values) != sample.Len() {
		return fmt.Errorf("%w: buffer carries %d values for %d sample points",
			ErrInvalidConfig, len(b.Values), sample.Len())
	}
	return nil
}
