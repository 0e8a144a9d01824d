package ports

// FluxProjector converts a nodal flux moment vector (typically the weak-form
// residual of a committed solve) into interface flux degrees of freedom.
//
// Implementations are selected at configuration time and must be
// deterministic given identical input and the fixed mesh. The output has
// the same length as the input dof vector; entries without interface
// support are zero.
type FluxProjector interface {
	Project(moments []float64) ([]float64, error)
}
