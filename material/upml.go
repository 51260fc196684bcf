package material

import (
	"github.com/notargets/fdtdupml/field"
)

// Coefficients are the six real update coefficients of a UPML cell. They
// encode the integrated stretching profile and are produced by the material
// configuration layer (see package profile).
type Coefficients struct {
	C1, C2, C3, C4, C5, C6 float64
}

// Array returns the coefficients in c1..c6 order
func (c Coefficients) Array() [6]float64 {
	return [6]float64{c.C1, c.C2, c.C3, c.C4, c.C5, c.C6}
}

// spacing caches a grid spacing converted to the field value type so the
// update path never converts.
type spacing[T field.Scalar] struct {
	d float64
	v T
}

func (s *spacing[T]) of(d float64) T {
	if d != s.d {
		s.d = d
		s.v = field.FromReal[T](d)
	}
	return s.v
}

// upml is the coefficient and state block shared by all six kernels
type upml[T field.Scalar] struct {
	constant  float64
	constantT T
	coeffs    Coefficients

	c1, c2, c3, c4, c5, c6 T
	aux                    T
	d1, d2                 spacing[T]
}

func newUpml[T field.Scalar](constant float64, co Coefficients) upml[T] {
	return upml[T]{
		constant:  constant,
		constantT: field.FromReal[T](constant),
		coeffs:    co,
		c1:        field.FromReal[T](co.C1),
		c2:        field.FromReal[T](co.C2),
		c3:        field.FromReal[T](co.C3),
		c4:        field.FromReal[T](co.C4),
		c5:        field.FromReal[T](co.C5),
		c6:        field.FromReal[T](co.C6),
	}
}

func (u *upml[T]) setConstant(v float64) {
	u.constant = v
	u.constantT = field.FromReal[T](v)
}

// advance applies the recursive convolution to the cell at f and returns the
// new field value. sign is folded into curl by the caller.
func (u *upml[T]) advance(f *T, curl T) T {
	store := u.aux
	u.aux = u.c1*u.aux + u.c2*curl
	*f = u.c3**f + u.c4*(u.c5*u.aux-u.c6*store)/u.constantT
	return *f
}

// UpmlElectric holds the permittivity, coefficients and the auxiliary flux
// density d of one electric UPML cell.
type UpmlElectric[T field.Scalar] struct {
	upml[T]
}

func NewUpmlElectric[T field.Scalar](eps float64, co Coefficients) UpmlElectric[T] {
	return UpmlElectric[T]{upml: newUpml[T](eps, co)}
}

func (UpmlElectric[T]) electric() {}

func (u *UpmlElectric[T]) Epsilon() float64 { return u.constant }

// SetEpsilon takes effect on the next Update
func (u *UpmlElectric[T]) SetEpsilon(eps float64) { u.setConstant(eps) }

func (u *UpmlElectric[T]) Coefficients() Coefficients { return u.coeffs }

// D is the auxiliary state after the last Update
func (u *UpmlElectric[T]) D() T { return u.aux }

// UpmlMagnetic holds the permeability, coefficients and the auxiliary flux
// density b of one magnetic UPML cell.
type UpmlMagnetic[T field.Scalar] struct {
	upml[T]
}

func NewUpmlMagnetic[T field.Scalar](mu float64, co Coefficients) UpmlMagnetic[T] {
	return UpmlMagnetic[T]{upml: newUpml[T](mu, co)}
}

func (UpmlMagnetic[T]) magnetic() {}

func (u *UpmlMagnetic[T]) Mu() float64 { return u.constant }

// SetMu takes effect on the next Update
func (u *UpmlMagnetic[T]) SetMu(mu float64) { u.setConstant(mu) }

func (u *UpmlMagnetic[T]) Coefficients() Coefficients { return u.coeffs }

// B is the auxiliary state after the last Update
func (u *UpmlMagnetic[T]) B() T { return u.aux }
