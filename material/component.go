package material

import (
	"fmt"

	"github.com/notargets/fdtdupml/field"
)

// Component identifies one Yee field component
type Component uint8

const (
	Ex Component = iota
	Ey
	Ez
	Hx
	Hy
	Hz
)

// Components lists all six components in declaration order
var Components = [6]Component{Ex, Ey, Ez, Hx, Hy, Hz}

func (c Component) String() string {
	switch c {
	case Ex:
		return "Ex"
	case Ey:
		return "Ey"
	case Ez:
		return "Ez"
	case Hx:
		return "Hx"
	case Hy:
		return "Hy"
	case Hz:
		return "Hz"
	default:
		return fmt.Sprintf("Component(%d)", uint8(c))
	}
}

func (c Component) Valid() bool {
	return c <= Hz
}

func (c Component) IsElectric() bool {
	return c <= Ez
}

// Axis is the direction the component points along
func (c Component) Axis() field.Axis {
	return field.Axis(c % 3)
}

// Operands returns the components read by the curl, in argument order
func (c Component) Operands() (in1, in2 Component) {
	switch c {
	case Ex:
		return Hz, Hy
	case Ey:
		return Hx, Hz
	case Ez:
		return Hy, Hx
	case Hx:
		return Ez, Ey
	case Hy:
		return Ex, Ez
	default:
		return Ey, Ex
	}
}

// Spacings returns the axes whose spacings are passed as d1 and d2
func (c Component) Spacings() (d1, d2 field.Axis) {
	a := c.Axis()
	return (a + 1) % 3, (a + 2) % 3
}

// Offset is an (i, j, k) displacement from the updated cell
type Offset [3]int

// Stencil describes the Yee curl of one component as data:
//
//	curl = (in1[In1[0]] - in1[In1[1]])/d1 - (in2[In2[0]] - in2[In2[1]])/d2
//	aux  = c1*aux + Sign*c2*curl
type Stencil struct {
	In1  [2]Offset
	In2  [2]Offset
	Sign float64
}

var stencils = [6]Stencil{
	Ex: {In1: [2]Offset{{1, 1, 0}, {1, 0, 0}}, In2: [2]Offset{{1, 0, 1}, {1, 0, 0}}, Sign: 1},
	Ey: {In1: [2]Offset{{0, 1, 1}, {0, 1, 0}}, In2: [2]Offset{{1, 1, 0}, {0, 1, 0}}, Sign: 1},
	Ez: {In1: [2]Offset{{1, 0, 1}, {0, 0, 1}}, In2: [2]Offset{{0, 1, 1}, {0, 0, 1}}, Sign: 1},
	Hx: {In1: [2]Offset{{0, 0, -1}, {0, -1, -1}}, In2: [2]Offset{{0, -1, 0}, {0, -1, -1}}, Sign: -1},
	Hy: {In1: [2]Offset{{-1, 0, 0}, {-1, 0, -1}}, In2: [2]Offset{{0, 0, -1}, {-1, 0, -1}}, Sign: -1},
	Hz: {In1: [2]Offset{{0, -1, 0}, {-1, -1, 0}}, In2: [2]Offset{{-1, 0, 0}, {-1, -1, 0}}, Sign: -1},
}

// Stencil returns the offset table used by the kernel for c
func (c Component) Stencil() Stencil {
	return stencils[c]
}

// NewUpmlElectricFor builds the UPML kernel for an electric component
func NewUpmlElectricFor[T field.Scalar](c Component, eps float64, co Coefficients) (ElectricMaterial[T], error) {
	switch c {
	case Ex:
		return NewUpmlEx[T](eps, co), nil
	case Ey:
		return NewUpmlEy[T](eps, co), nil
	case Ez:
		return NewUpmlEz[T](eps, co), nil
	}
	return nil, fmt.Errorf("%s is not an electric component", c)
}

// NewUpmlMagneticFor builds the UPML kernel for a magnetic component
func NewUpmlMagneticFor[T field.Scalar](c Component, mu float64, co Coefficients) (MagneticMaterial[T], error) {
	switch c {
	case Hx:
		return NewUpmlHx[T](mu, co), nil
	case Hy:
		return NewUpmlHy[T](mu, co), nil
	case Hz:
		return NewUpmlHz[T](mu, co), nil
	}
	return nil, fmt.Errorf("%s is not a magnetic component", c)
}
