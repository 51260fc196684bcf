// Package material holds the per-cell field update rules of the FDTD core:
// the capability interfaces driven by the time stepper, a no-op placeholder,
// and the UPML recursive-convolution kernels for the six Yee components.
package material

import (
	"github.com/notargets/fdtdupml/field"
)

// ElectricMaterial updates one electric field cell from the curl of the two
// tangential magnetic components. target is modified in place at (i, j, k)
// and the new value is returned. d1 and d2 are the spacings along the two
// curl directions, n is the current time or step index.
type ElectricMaterial[T field.Scalar] interface {
	Update(target, in1, in2 *field.Array[T], d1, d2, dt, n float64, i, j, k int) T
	electric()
}

// MagneticMaterial is the magnetic counterpart of ElectricMaterial. The
// unexported family methods keep the two interfaces disjoint.
type MagneticMaterial[T field.Scalar] interface {
	Update(target, in1, in2 *field.Array[T], d1, d2, dt, n float64, i, j, k int) T
	magnetic()
}

// DummyElectric leaves the field untouched. It stands in for cells that are
// updated elsewhere (vacuum interior, other material models).
type DummyElectric[T field.Scalar] struct{}

// Update returns the current value of the target cell without writing it,
// or zero when the target does not hold that cell. The neighbour arrays are
// never read.
func (DummyElectric[T]) Update(target, in1, in2 *field.Array[T], d1, d2, dt, n float64, i, j, k int) T {
	return current(target, i, j, k)
}

func (DummyElectric[T]) electric() {}

// DummyMagnetic leaves the field untouched
type DummyMagnetic[T field.Scalar] struct{}

func (DummyMagnetic[T]) Update(target, in1, in2 *field.Array[T], d1, d2, dt, n float64, i, j, k int) T {
	return current(target, i, j, k)
}

func (DummyMagnetic[T]) magnetic() {}

func current[T field.Scalar](target *field.Array[T], i, j, k int) (v T) {
	if target == nil || len(target.Data) == 0 || !target.Contains(i, j, k) {
		return v
	}
	return target.At(i, j, k)
}
