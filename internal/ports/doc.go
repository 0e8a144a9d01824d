// Package ports defines the interfaces (ports) that connect the coupling
// controller to its collaborators.
//
// Ports are the boundaries between the application core and the outside
// world. They define what the controller needs from external systems
// without specifying how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [FieldSolver]: the local PDE solve, boundary-condition assembly, and
//     interface-trace evaluation for one participant
//   - [CouplingChannel]: the external coupling coordinator (registration,
//     data exchange, clock advancement, checkpoint actions)
//   - [FluxProjector]: conversion of a nodal flux moment vector into
//     interface flux degrees of freedom
//   - [CommitObserver]: consumer of the committed state per coupling window
//
// The application layer (internal/app) depends only on these interfaces.
// Concrete implementations live in internal/fem, internal/project, and
// internal/adapters. The separation keeps the control loop testable with
// scripted fakes and keeps the coordinator's wire behavior external.
package ports
