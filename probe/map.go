package probe

import (
	"fmt"
	"math"

	"github.com/notargets/fdtdupml/field"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Map is a two-parameter table of values, such as the reflection error of a
// grading sweep or one plane of a field. Column c sits at Xs[c] and row r at
// Ys[r]. Map satisfies gonum plotter.GridXYZ.
type Map struct {
	Xs, Ys []float64
	Values *mat.Dense // rows follow Ys, columns follow Xs
}

func NewMap(xs, ys []float64) (*Map, error) {
	if len(xs) == 0 || len(ys) == 0 {
		return nil, fmt.Errorf("map needs at least one column and one row, got %dx%d", len(xs), len(ys))
	}
	return &Map{Xs: xs, Ys: ys, Values: mat.NewDense(len(ys), len(xs), nil)}, nil
}

// PlaneMap snapshots the z plane k of a onto physical x and y coordinates
func PlaneMap(a field.Array[float64], k int, dx, dy float64) *Map {
	nx, ny, _ := a.Dims()
	m := &Map{Xs: axis(nx, dx), Ys: axis(ny, dy)}
	// ToDense puts x on rows; a Map puts x on columns
	m.Values = mat.DenseCopyOf(field.ToDense(a, k).T())
	return m
}

func axis(n int, d float64) []float64 {
	out := make([]float64, n)
	if n > 1 {
		floats.Span(out, 0, float64(n-1)*d)
	}
	return out
}

func (m *Map) Set(c, r int, v float64) { m.Values.Set(r, c, v) }

func (m *Map) Dims() (c, r int) {
	r, c = m.Values.Dims()
	return c, r
}

func (m *Map) Z(c, r int) float64 { return m.Values.At(r, c) }
func (m *Map) X(c int) float64    { return m.Xs[c] }
func (m *Map) Y(r int) float64    { return m.Ys[r] }

// Decibels returns a copy holding 10*log10 of every value. Values below
// floor are clamped to it so the result stays finite.
func (m *Map) Decibels(floor float64) *Map {
	out := &Map{Xs: m.Xs, Ys: m.Ys, Values: &mat.Dense{}}
	out.Values.Apply(func(_, _ int, v float64) float64 {
		return 10 * math.Log10(math.Max(v, floor))
	}, m.Values)
	return out
}

// Min returns the position and value of the smallest entry
func (m *Map) Min() (c, r int, v float64) {
	rows, _ := m.Values.Dims()
	v = math.Inf(1)
	for i := 0; i < rows; i++ {
		row := m.Values.RawRowView(i)
		if j := floats.MinIdx(row); row[j] < v {
			c, r, v = j, i, row[j]
		}
	}
	return c, r, v
}
