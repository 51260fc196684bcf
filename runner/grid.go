package runner

import (
	"fmt"

	"github.com/notargets/fdtdupml/field"
	"github.com/notargets/fdtdupml/material"
)

// Grid holds the six Yee components of a simulation box and its spacing
type Grid[T field.Scalar] struct {
	Fields  [6]field.Array[T] // Indexed by material.Component
	Spacing [3]float64
}

// NewYeeGrid allocates the six components for a box of cells. Electric arrays
// have one entry per cell; magnetic arrays carry one extra plane on each axis
// normal to their own so the backward stencils of the boundary cells resolve.
// An axis with one cell is collapsed in every array.
func NewYeeGrid[T field.Scalar](cells [3]int, spacing [3]float64) (*Grid[T], error) {
	for ax := 0; ax < 3; ax++ {
		if cells[ax] < 1 {
			return nil, fmt.Errorf("axis %s: cells %d must be positive", field.Axis(ax), cells[ax])
		}
		if spacing[ax] <= 0 {
			return nil, fmt.Errorf("axis %s: spacing %g must be positive", field.Axis(ax), spacing[ax])
		}
	}

	g := &Grid[T]{Spacing: spacing}
	for _, c := range material.Components {
		size := cells
		if !c.IsElectric() {
			for ax := 0; ax < 3; ax++ {
				if field.Axis(ax) != c.Axis() && cells[ax] > 1 {
					size[ax]++
				}
			}
		}
		g.Fields[c] = field.New[T](size[0], size[1], size[2])
	}
	return g, nil
}

// Field returns the array of component c
func (g *Grid[T]) Field(c material.Component) *field.Array[T] {
	return &g.Fields[c]
}

// Operands returns the arrays read by the curl of c and the matching spacings
func (g *Grid[T]) Operands(c material.Component) (in1, in2 *field.Array[T], d1, d2 float64) {
	c1, c2 := c.Operands()
	a1, a2 := c.Spacings()
	return g.Field(c1), g.Field(c2), g.Spacing[a1], g.Spacing[a2]
}

// CanUpdate reports whether the cell (i, j, k) of component c and every
// stencil read it makes are inside the allocated arrays.
func (g *Grid[T]) CanUpdate(c material.Component, i, j, k int) bool {
	if !g.Field(c).Contains(i, j, k) {
		return false
	}
	in1, in2, _, _ := g.Operands(c)
	st := c.Stencil()
	for n := 0; n < 2; n++ {
		o1, o2 := st.In1[n], st.In2[n]
		if !in1.Contains(i+o1[0], j+o1[1], k+o1[2]) || !in2.Contains(i+o2[0], j+o2[1], k+o2[2]) {
			return false
		}
	}
	return true
}

// UpdateBox returns the largest box [lo, hi) of cells of c that CanUpdate.
// Collapsed target axes yield the single index 0. The box is empty when
// hi <= lo on any axis.
func (g *Grid[T]) UpdateBox(c material.Component) (lo, hi [3]int) {
	target := g.Field(c)
	in1, in2, _, _ := g.Operands(c)
	st := c.Stencil()
	for ax := 0; ax < 3; ax++ {
		lo[ax], hi[ax] = 0, target.Size[ax]
		if target.Collapsed[ax] {
			continue
		}
		clip := func(a *field.Array[T], offs [2]material.Offset) {
			if a.Collapsed[ax] {
				return
			}
			for _, o := range offs {
				lo[ax] = max(lo[ax], -o[ax])
				hi[ax] = min(hi[ax], a.Size[ax]-o[ax])
			}
		}
		clip(in1, st.In1)
		clip(in2, st.In2)
	}
	return lo, hi
}

// Clone returns a deep copy of the grid
func (g *Grid[T]) Clone() *Grid[T] {
	out := &Grid[T]{Spacing: g.Spacing}
	for c := range g.Fields {
		out.Fields[c] = g.Fields[c].Clone()
	}
	return out
}
