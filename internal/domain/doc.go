// Package domain contains the core entities and value objects for partheat.
//
// This package represents the innermost layer of the architecture. It has
// no dependencies on infrastructure concerns (file system, logging, linear
// algebra backends) and contains only the coupling vocabulary.
//
// # Entities
//
//   - [SolutionState]: degrees of freedom of one participant at one time level
//   - [ConstraintSet]: Dirichlet values per dof, NaN where unconstrained
//   - [InterfaceSample]: ordered interface points with integration weights
//   - [ExchangeBuffer]: one scalar per sample point for a named quantity
//   - [Checkpoint]: saved state enabling re-solution of a rejected window
//   - [CouplingClock]: simulation time, admissible step, and the ongoing flag
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Testable without mocks or external systems
package domain
