package profile

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/notargets/fdtdupml/material"
	"gopkg.in/yaml.v3"
)

// Layer describes a rectangular box of Yee cells wrapped in UPML on every
// non-collapsed axis. An axis with one cell is collapsed and never stretched.
type Layer struct {
	Cells     [3]int     `yaml:"cells"`
	Spacing   [3]float64 `yaml:"spacing"`
	Dt        float64    `yaml:"dt"`
	Thickness [3]int     `yaml:"thickness"` // PML cells on each side of an axis
	Eps       float64    `yaml:"eps"`
	Mu        float64    `yaml:"mu"`
	Grading   Grading    `yaml:"grading"`
}

// DefaultLayer is a vacuum-filled box with a 10-cell default grading. Cells
// and Dt still need to be set.
func DefaultLayer() Layer {
	return Layer{
		Cells:     [3]int{1, 1, 1},
		Spacing:   [3]float64{1, 1, 1},
		Thickness: [3]int{0, 0, 0},
		Eps:       1,
		Mu:        1,
		Grading:   DefaultGrading(),
	}
}

// LoadLayer decodes a YAML layer description over DefaultLayer and validates it
func LoadLayer(r io.Reader) (*Layer, error) {
	l := DefaultLayer()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&l); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode layer: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layer: %w", err)
	}
	return &l, nil
}

// Collapsed reports whether axis ax has a single cell
func (l *Layer) Collapsed(ax int) bool {
	return l.Cells[ax] == 1
}

// CourantLimit is the largest stable dt for the layer's spacing in normalised
// units. Collapsed axes do not contribute.
func (l *Layer) CourantLimit() float64 {
	var sum float64
	for ax := 0; ax < 3; ax++ {
		if l.Collapsed(ax) {
			continue
		}
		sum += 1 / (l.Spacing[ax] * l.Spacing[ax])
	}
	if sum == 0 {
		return math.Inf(1)
	}
	return 1 / math.Sqrt(sum)
}

func (l *Layer) Validate() error {
	for ax := 0; ax < 3; ax++ {
		if l.Cells[ax] < 1 {
			return fmt.Errorf("axis %d: cells %d must be positive", ax, l.Cells[ax])
		}
		if !(l.Spacing[ax] > 0) || math.IsInf(l.Spacing[ax], 0) {
			return fmt.Errorf("axis %d: spacing %g must be positive and finite", ax, l.Spacing[ax])
		}
		if l.Thickness[ax] < 0 {
			return fmt.Errorf("axis %d: negative thickness %d", ax, l.Thickness[ax])
		}
		if l.Collapsed(ax) && l.Thickness[ax] != 0 {
			return fmt.Errorf("axis %d: collapsed axis cannot carry a layer", ax)
		}
		if 2*l.Thickness[ax] > l.Cells[ax] {
			return fmt.Errorf("axis %d: layers of %d cells overlap in a box of %d",
				ax, l.Thickness[ax], l.Cells[ax])
		}
	}
	if !(l.Dt > 0) || math.IsInf(l.Dt, 0) {
		return fmt.Errorf("dt %g must be positive and finite", l.Dt)
	}
	if limit := l.CourantLimit(); l.Dt > limit {
		return fmt.Errorf("dt %g exceeds the Courant limit %g", l.Dt, limit)
	}
	if l.Eps == 0 || math.IsNaN(l.Eps) || math.IsInf(l.Eps, 0) {
		return fmt.Errorf("eps %g must be non-zero and finite", l.Eps)
	}
	if l.Mu == 0 || math.IsNaN(l.Mu) || math.IsInf(l.Mu, 0) {
		return fmt.Errorf("mu %g must be non-zero and finite", l.Mu)
	}
	if err := l.Grading.Validate(); err != nil {
		return err
	}
	return nil
}

// Stretch returns the per-axis stretching at a position in cell units
func (l *Layer) Stretch(pos [3]float64) [3]Stretch {
	var s [3]Stretch
	for ax := 0; ax < 3; ax++ {
		s[ax] = Vacuum
		t := float64(l.Thickness[ax])
		if l.Collapsed(ax) || t == 0 {
			continue
		}
		outer := float64(l.Cells[ax])
		depth := math.Max(t-pos[ax], pos[ax]-(outer-t))
		// grading is in physical length
		s[ax] = l.Grading.At(depth*l.Spacing[ax], t*l.Spacing[ax], l.Spacing[ax])
	}
	return s
}

// InLayer reports whether any axis of the component at (i, j, k) is stretched
func (l *Layer) InLayer(c material.Component, i, j, k int) bool {
	for _, s := range l.Stretch(Position(c, i, j, k)) {
		if s != Vacuum {
			return true
		}
	}
	return false
}

// Material returns the physical constant and update coefficients of
// component c at index (i, j, k).
func (l *Layer) Material(c material.Component, i, j, k int) (float64, material.Coefficients) {
	co := Coefficients(c, l.Stretch(Position(c, i, j, k)), l.Dt)
	if c.IsElectric() {
		return l.Eps, co
	}
	return l.Mu, co
}
