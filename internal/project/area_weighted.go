package project

// AreaWeighted projects moments by dividing each entry by the precomputed
// integral of its basis function over the interface. Dofs with zero area
// map to zero.
type AreaWeighted struct {
	normalize []float64
}

// NewAreaWeighted builds the projector from the per-dof interface areas.
func NewAreaWeighted(areas []float64) *AreaWeighted {
	normalize := make([]float64, len(areas))
	for i, a := range areas {
		if a > 0 {
			normalize[i] = 1 / a
		}
	}
	return &AreaWeighted{normalize: normalize}
}

// Project scales each moment by its inverse interface area.
func (p *AreaWeighted) Project(moments []float64) ([]float64, error) {
	if err := checkLength(len(moments), len(p.normalize)); err != nil {
		return nil, err
	}
	out := make([]float64, len(moments))
	for i, v := range moments {
		out[i] = v * p.normalize[i]
	}
	return out, nil
}
