// Package probe samples field values over time and compares runs, the way a
// PML reflection study compares a test box against a larger reference box.
package probe

import (
	"fmt"

	"github.com/notargets/fdtdupml/field"
)

// Probe records one cell of a field array each time Record is called
type Probe[T field.Scalar] struct {
	Name    string
	Field   *field.Array[T]
	I, J, K int
	Samples []T
}

func New[T field.Scalar](name string, a *field.Array[T], i, j, k int) (*Probe[T], error) {
	if a == nil {
		return nil, fmt.Errorf("probe %s: nil field", name)
	}
	if !a.Contains(i, j, k) {
		return nil, fmt.Errorf("probe %s: (%d,%d,%d) outside %v", name, i, j, k, a.Size)
	}
	return &Probe[T]{Name: name, Field: a, I: i, J: j, K: k}, nil
}

// Record appends the current value of the probed cell and returns it
func (p *Probe[T]) Record() T {
	v := p.Field.At(p.I, p.J, p.K)
	p.Samples = append(p.Samples, v)
	return v
}

func (p *Probe[T]) Len() int { return len(p.Samples) }

// Real returns the real part of every sample
func (p *Probe[T]) Real() []float64 {
	out := make([]float64, len(p.Samples))
	for n, v := range p.Samples {
		switch x := any(v).(type) {
		case float32:
			out[n] = float64(x)
		case float64:
			out[n] = x
		case complex64:
			out[n] = float64(real(x))
		case complex128:
			out[n] = real(x)
		}
	}
	return out
}

func (p *Probe[T]) Reset() { p.Samples = p.Samples[:0] }
