// Package profile derives UPML update coefficients from a polynomial grading
// of the stretching parameters. All quantities are normalised so that
// eps0 = mu0 = c = 1 and spacings are in the same length unit as dt.
package profile

import (
	"fmt"
	"math"

	"github.com/notargets/fdtdupml/field"
	"github.com/notargets/fdtdupml/material"
)

// Grading is the polynomial profile of the layer: sigma and kappa grow as
// (depth/thickness)^Order from the inner face to the outer wall.
type Grading struct {
	Order         float64 `yaml:"order"`
	KappaMax      float64 `yaml:"kappa_max"`
	SigmaMaxRatio float64 `yaml:"sigma_max_ratio"` // sigma_max / sigma_opt
}

func DefaultGrading() Grading {
	return Grading{Order: 3, KappaMax: 1, SigmaMaxRatio: 1}
}

func (g Grading) Validate() error {
	if !(g.Order >= 0) || math.IsInf(g.Order, 0) {
		return fmt.Errorf("grading order %g must be finite and non-negative", g.Order)
	}
	if !(g.KappaMax >= 1) || math.IsInf(g.KappaMax, 0) {
		return fmt.Errorf("kappa_max %g must be finite and at least 1", g.KappaMax)
	}
	if !(g.SigmaMaxRatio >= 0) || math.IsInf(g.SigmaMaxRatio, 0) {
		return fmt.Errorf("sigma_max_ratio %g must be finite and non-negative", g.SigmaMaxRatio)
	}
	return nil
}

// SigmaOpt is the optimal peak conductivity for a polynomial grading of the
// given order over cells of size delta (unit impedance).
func SigmaOpt(order, delta float64) float64 {
	return 0.8 * (order + 1) / delta
}

// Stretch holds the conductivity and real stretch of one axis at a point
type Stretch struct {
	Sigma float64
	Kappa float64
}

// Vacuum is the unstretched axis
var Vacuum = Stretch{Sigma: 0, Kappa: 1}

// At evaluates the grading at depth into a layer of the given thickness.
// Depths outside [0, thickness] are clamped.
func (g Grading) At(depth, thickness, delta float64) Stretch {
	if thickness <= 0 || depth <= 0 {
		return Vacuum
	}
	rho := math.Min(depth/thickness, 1)
	p := math.Pow(rho, g.Order)
	return Stretch{
		Sigma: g.SigmaMaxRatio * SigmaOpt(g.Order, delta) * p,
		Kappa: 1 + (g.KappaMax-1)*p,
	}
}

// Coefficients returns c1..c6 of component c for the per-axis stretches s.
//
// With (a, b, c) the axes following the component axis cyclically and the
// component axis itself:
//
//	c1 = (2ka - sa dt)/(2ka + sa dt)   c2 = 2 dt/(2ka + sa dt)
//	c3 = (2kb - sb dt)/(2kb + sb dt)   c4 = 1/(2kb + sb dt)
//	c5 = 2kc + sc dt                   c6 = 2kc - sc dt
func Coefficients(c material.Component, s [3]Stretch, dt float64) material.Coefficients {
	own := c.Axis()
	a, b := s[(own+1)%3], s[(own+2)%3]
	w := s[own]

	da := 2*a.Kappa + a.Sigma*dt
	db := 2*b.Kappa + b.Sigma*dt
	return material.Coefficients{
		C1: (2*a.Kappa - a.Sigma*dt) / da,
		C2: 2 * dt / da,
		C3: (2*b.Kappa - b.Sigma*dt) / db,
		C4: 1 / db,
		C5: 2*w.Kappa + w.Sigma*dt,
		C6: 2*w.Kappa - w.Sigma*dt,
	}
}

// Position returns the Yee location of component c at index (i, j, k) in
// cell units. Electric components sit half a cell forward along their own
// axis; magnetic components half a cell back along the two other axes, which
// matches the forward/backward stencil offsets of the kernels.
func Position(c material.Component, i, j, k int) [3]float64 {
	pos := [3]float64{float64(i), float64(j), float64(k)}
	own := c.Axis()
	if c.IsElectric() {
		pos[own] += 0.5
		return pos
	}
	for ax := field.X; ax <= field.Z; ax++ {
		if ax != own {
			pos[ax] -= 0.5
		}
	}
	return pos
}
