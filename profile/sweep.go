package profile

import (
	"fmt"
	"math"
)

// Range returns start, start+step, ... stopping before stop
func Range(start, stop, step float64) ([]float64, error) {
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("step %g must be positive and finite", step)
	}
	if !(stop > start) || math.IsInf(stop-start, 0) {
		return nil, fmt.Errorf("empty range [%g, %g)", start, stop)
	}
	// tolerate rounding in (stop-start)/step landing just above an integer
	n := int(math.Ceil((stop-start)/step - 1e-9))
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out, nil
}

// Sweep is a grid of grading parameters: every order against every sigma
// ratio against every kappa_max.
type Sweep struct {
	Orders []float64
	Ratios []float64
	Kappas []float64
}

func (s Sweep) Len() int {
	return len(s.Orders) * len(s.Ratios) * len(s.Kappas)
}

// At returns the grading of point (m, r, k)
func (s Sweep) At(m, r, k int) Grading {
	return Grading{Order: s.Orders[m], SigmaMaxRatio: s.Ratios[r], KappaMax: s.Kappas[k]}
}

func (s Sweep) Validate() error {
	if s.Len() == 0 {
		return fmt.Errorf("sweep has no points")
	}
	for m := range s.Orders {
		for r := range s.Ratios {
			for k := range s.Kappas {
				if err := s.At(m, r, k).Validate(); err != nil {
					return fmt.Errorf("sweep point (%d,%d,%d): %w", m, r, k, err)
				}
			}
		}
	}
	return nil
}
