// Package sampler builds the two interface point sets used for coupling
// data exchange: a Gauss sample matching the solver quadrature for data
// consumption, and a coarser uniform sample matching the exchange mesh
// resolution for data production.
//
// Both samples are built once from the fixed interface geometry; their
// stable point order is the indexing contract the coupling channel uses to
// match buffers to points. Resampling mid-run is not supported.
package sampler

import (
	"fmt"
	"math"

	"github.com/fem-labs/partheat/internal/domain"
)

// Config describes the fixed interface geometry: a vertical segment of unit
// length at x = X, discretized into Elements edge elements.
type Config struct {
	// X is the horizontal position of the interface.
	X float64

	// Elements is the number of mesh elements along the interface.
	Elements int

	// SubSamples is the number of uniform production points per element.
	SubSamples int
}

// Sampler holds the two immutable interface samples for one participant.
type Sampler struct {
	consume domain.InterfaceSample
	produce domain.InterfaceSample
}

// New builds both samples from the interface geometry.
func New(cfg Config) (*Sampler, error) {
	if cfg.Elements <= 0 {
		return nil, fmt.Errorf("%w: interface needs at least one element", domain.ErrInvalidConfig)
	}
	if cfg.SubSamples <= 0 {
		return nil, fmt.Errorf("%w: sub-sample count must be positive", domain.ErrInvalidConfig)
	}
	return &Sampler{
		consume: gaussSample(cfg.X, cfg.Elements),
		produce: uniformSample(cfg.X, cfg.Elements, cfg.SubSamples),
	}, nil
}

// Consumption returns the high-accuracy Gauss sample used to pull data in.
func (s *Sampler) Consumption() domain.InterfaceSample { return s.consume }

// Production returns the uniform sample used to push data out.
func (s *Sampler) Production() domain.InterfaceSample { return s.produce }

// gaussSample places two Gauss-Legendre points per interface element, the
// quadrature the solver integrates boundary terms with.
func gaussSample(x float64, elems int) domain.InterfaceSample {
	h := 1.0 / float64(elems)
	offset := h / (2 * math.Sqrt(3))
	pts := make([]domain.Point, 0, 2*elems)
	for e := 0; e < elems; e++ {
		mid := (float64(e) + 0.5) * h
		pts = append(pts,
			domain.Point{X: x, Y: mid - offset, Weight: h / 2},
			domain.Point{X: x, Y: mid + offset, Weight: h / 2},
		)
	}
	return domain.InterfaceSample{Name: "gauss", Points: pts}
}

// uniformSample places sub equally spaced midpoints per interface element.
func uniformSample(x float64, elems, sub int) domain.InterfaceSample {
	h := 1.0 / float64(elems)
	w := h / float64(sub)
	pts := make([]domain.Point, 0, elems*sub)
	for e := 0; e < elems; e++ {
		for k := 0; k < sub; k++ {
			y := float64(e)*h + (float64(k)+0.5)*w
			pts = append(pts, domain.Point{X: x, Y: y, Weight: w})
		}
	}
	return domain.InterfaceSample{Name: "uniform", Points: pts}
}
