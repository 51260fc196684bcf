package material

import (
	"github.com/notargets/fdtdupml/field"
)

// The UPML update follows the auxiliary differential equation form of
// S. Gedney, "Perfectly Matched Layer Absorbing Boundary Conditions", in
// Taflove and Hagness, Computational Electrodynamics, 3rd ed., 2005.
//
// Electric kernels read the magnetic field at forward offsets, magnetic
// kernels read the electric field at backward offsets. No index is checked;
// the grid owner guarantees the halo covers every stencil read.

type UpmlEx[T field.Scalar] struct {
	UpmlElectric[T]
}

func NewUpmlEx[T field.Scalar](eps float64, co Coefficients) *UpmlEx[T] {
	return &UpmlEx[T]{NewUpmlElectric[T](eps, co)}
}

func (m *UpmlEx[T]) Update(ex, hz, hy *field.Array[T], dy, dz, dt, n float64, i, j, k int) T {
	curl := (hz.At(i+1, j+1, k)-hz.At(i+1, j, k))/m.d1.of(dy) -
		(hy.At(i+1, j, k+1)-hy.At(i+1, j, k))/m.d2.of(dz)
	return m.advance(ex.Ptr(i, j, k), curl)
}

type UpmlEy[T field.Scalar] struct {
	UpmlElectric[T]
}

func NewUpmlEy[T field.Scalar](eps float64, co Coefficients) *UpmlEy[T] {
	return &UpmlEy[T]{NewUpmlElectric[T](eps, co)}
}

func (m *UpmlEy[T]) Update(ey, hx, hz *field.Array[T], dz, dx, dt, n float64, i, j, k int) T {
	curl := (hx.At(i, j+1, k+1)-hx.At(i, j+1, k))/m.d1.of(dz) -
		(hz.At(i+1, j+1, k)-hz.At(i, j+1, k))/m.d2.of(dx)
	return m.advance(ey.Ptr(i, j, k), curl)
}

type UpmlEz[T field.Scalar] struct {
	UpmlElectric[T]
}

func NewUpmlEz[T field.Scalar](eps float64, co Coefficients) *UpmlEz[T] {
	return &UpmlEz[T]{NewUpmlElectric[T](eps, co)}
}

func (m *UpmlEz[T]) Update(ez, hy, hx *field.Array[T], dx, dy, dt, n float64, i, j, k int) T {
	curl := (hy.At(i+1, j, k+1)-hy.At(i, j, k+1))/m.d1.of(dx) -
		(hx.At(i, j+1, k+1)-hx.At(i, j, k+1))/m.d2.of(dy)
	return m.advance(ez.Ptr(i, j, k), curl)
}

// Magnetic kernels pass the negated curl: b = c1*b - c2*curl(E).

type UpmlHx[T field.Scalar] struct {
	UpmlMagnetic[T]
}

func NewUpmlHx[T field.Scalar](mu float64, co Coefficients) *UpmlHx[T] {
	return &UpmlHx[T]{NewUpmlMagnetic[T](mu, co)}
}

func (m *UpmlHx[T]) Update(hx, ez, ey *field.Array[T], dy, dz, dt, n float64, i, j, k int) T {
	curl := (ez.At(i, j, k-1)-ez.At(i, j-1, k-1))/m.d1.of(dy) -
		(ey.At(i, j-1, k)-ey.At(i, j-1, k-1))/m.d2.of(dz)
	return m.advance(hx.Ptr(i, j, k), -curl)
}

type UpmlHy[T field.Scalar] struct {
	UpmlMagnetic[T]
}

func NewUpmlHy[T field.Scalar](mu float64, co Coefficients) *UpmlHy[T] {
	return &UpmlHy[T]{NewUpmlMagnetic[T](mu, co)}
}

func (m *UpmlHy[T]) Update(hy, ex, ez *field.Array[T], dz, dx, dt, n float64, i, j, k int) T {
	curl := (ex.At(i-1, j, k)-ex.At(i-1, j, k-1))/m.d1.of(dz) -
		(ez.At(i, j, k-1)-ez.At(i-1, j, k-1))/m.d2.of(dx)
	return m.advance(hy.Ptr(i, j, k), -curl)
}

type UpmlHz[T field.Scalar] struct {
	UpmlMagnetic[T]
}

func NewUpmlHz[T field.Scalar](mu float64, co Coefficients) *UpmlHz[T] {
	return &UpmlHz[T]{NewUpmlMagnetic[T](mu, co)}
}

func (m *UpmlHz[T]) Update(hz, ey, ex *field.Array[T], dx, dy, dt, n float64, i, j, k int) T {
	curl := (ey.At(i, j-1, k)-ey.At(i-1, j-1, k))/m.d1.of(dx) -
		(ex.At(i-1, j, k)-ex.At(i-1, j-1, k))/m.d2.of(dy)
	return m.advance(hz.Ptr(i, j, k), -curl)
}

var (
	_ ElectricMaterial[float64]    = (*UpmlEx[float64])(nil)
	_ ElectricMaterial[complex128] = (*UpmlEy[complex128])(nil)
	_ ElectricMaterial[float64]    = (*UpmlEz[float64])(nil)
	_ MagneticMaterial[float64]    = (*UpmlHx[float64])(nil)
	_ MagneticMaterial[complex128] = (*UpmlHy[complex128])(nil)
	_ MagneticMaterial[float64]    = (*UpmlHz[float64])(nil)
	_ ElectricMaterial[float32]    = DummyElectric[float32]{}
	_ MagneticMaterial[float32]    = DummyMagnetic[float32]{}
)
