// Package runner drives the material kernels over a Yee grid. It owns the
// scheduling obligations the kernels rely on: every registered cell has its
// stencil inside the allocated arrays, each field cell has a single writer,
// and one field family is complete before the other family reads it.
package runner

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/notargets/fdtdupml/field"
	"github.com/notargets/fdtdupml/material"
	"github.com/notargets/fdtdupml/partitions"
	"github.com/notargets/fdtdupml/profile"
)

// Config holds configuration for creating a Runner
type Config struct {
	NumPartitions int // Concurrent x slabs; 0 uses GOMAXPROCS
}

func (c Config) Validate() error {
	if c.NumPartitions < 0 {
		return fmt.Errorf("invalid partition count %d", c.NumPartitions)
	}
	return nil
}

type electricCell[T field.Scalar] struct {
	i, j, k int
	m       material.ElectricMaterial[T]
}

type magneticCell[T field.Scalar] struct {
	i, j, k int
	m       material.MagneticMaterial[T]
}

type cellKey struct {
	c   material.Component
	idx int
}

// Runner sweeps registered materials over a Grid in leapfrog order
type Runner[T field.Scalar] struct {
	Grid   *Grid[T]
	Layout *partitions.PartitionLayout

	// [component][partition] cell lists
	electric [3][][]electricCell[T]
	magnetic [3][][]magneticCell[T]
	owned    map[cellKey]struct{}
}

// NewRunner creates a runner partitioned along x over the widest array of grid
func NewRunner[T field.Scalar](grid *Grid[T], cfg Config) (*Runner[T], error) {
	if grid == nil {
		return nil, fmt.Errorf("nil grid")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	parts := cfg.NumPartitions
	if parts == 0 {
		parts = runtime.GOMAXPROCS(0)
	}

	planes := 1
	for _, f := range grid.Fields {
		planes = max(planes, f.Size[0])
	}
	layout, err := partitions.NewSlabLayout(0, planes, parts)
	if err != nil {
		return nil, fmt.Errorf("failed to partition grid: %w", err)
	}

	r := &Runner[T]{
		Grid:   grid,
		Layout: layout,
		owned:  make(map[cellKey]struct{}),
	}
	for c := 0; c < 3; c++ {
		r.electric[c] = make([][]electricCell[T], layout.NumPartitions)
		r.magnetic[c] = make([][]magneticCell[T], layout.NumPartitions)
	}
	return r, nil
}

// claim checks the halo and single-writer rules for a new cell and returns
// the partition that will sweep it.
func (r *Runner[T]) claim(c material.Component, i, j, k int) (int, error) {
	if !c.Valid() {
		return 0, fmt.Errorf("invalid component %d", uint8(c))
	}
	if !r.Grid.CanUpdate(c, i, j, k) {
		return 0, fmt.Errorf("%s(%d,%d,%d): stencil leaves the allocated arrays", c, i, j, k)
	}
	target := r.Grid.Field(c)
	key := cellKey{c: c, idx: target.Index(i, j, k)}
	if _, dup := r.owned[key]; dup {
		return 0, fmt.Errorf("%s(%d,%d,%d): cell already has a material", c, i, j, k)
	}
	r.owned[key] = struct{}{}

	plane := i
	if target.Collapsed[0] {
		plane = 0
	}
	return r.Layout.GetPartition(plane), nil
}

// AddElectric assigns m to the electric cell (i, j, k) of component c
func (r *Runner[T]) AddElectric(c material.Component, i, j, k int, m material.ElectricMaterial[T]) error {
	if !c.IsElectric() {
		return fmt.Errorf("%s is not an electric component", c)
	}
	p, err := r.claim(c, i, j, k)
	if err != nil {
		return err
	}
	r.electric[c][p] = append(r.electric[c][p], electricCell[T]{i: i, j: j, k: k, m: m})
	return nil
}

// AddMagnetic assigns m to the magnetic cell (i, j, k) of component c
func (r *Runner[T]) AddMagnetic(c material.Component, i, j, k int, m material.MagneticMaterial[T]) error {
	if !c.Valid() || c.IsElectric() {
		return fmt.Errorf("%s is not a magnetic component", c)
	}
	p, err := r.claim(c, i, j, k)
	if err != nil {
		return err
	}
	h := c - material.Hx
	r.magnetic[h][p] = append(r.magnetic[h][p], magneticCell[T]{i: i, j: j, k: k, m: m})
	return nil
}

// FillUpml assigns UPML kernels from layer to every cell in the update box of
// each listed component. Layer coefficients of interior cells reduce to the
// vacuum Yee update.
func (r *Runner[T]) FillUpml(layer *profile.Layer, comps ...material.Component) error {
	if err := layer.Validate(); err != nil {
		return fmt.Errorf("invalid layer: %w", err)
	}
	for _, c := range comps {
		lo, hi := r.Grid.UpdateBox(c)
		for i := lo[0]; i < hi[0]; i++ {
			for j := lo[1]; j < hi[1]; j++ {
				for k := lo[2]; k < hi[2]; k++ {
					constant, co := layer.Material(c, i, j, k)
					var err error
					if c.IsElectric() {
						m, ferr := material.NewUpmlElectricFor[T](c, constant, co)
						if ferr != nil {
							return ferr
						}
						err = r.AddElectric(c, i, j, k, m)
					} else {
						m, ferr := material.NewUpmlMagneticFor[T](c, constant, co)
						if ferr != nil {
							return ferr
						}
						err = r.AddMagnetic(c, i, j, k, m)
					}
					if err != nil {
						return fmt.Errorf("failed to fill %s: %w", c, err)
					}
				}
			}
		}
	}
	return nil
}

// NumCells returns the number of cells registered for component c
func (r *Runner[T]) NumCells(c material.Component) int {
	var n int
	for p := 0; p < r.Layout.NumPartitions; p++ {
		if c.IsElectric() {
			n += len(r.electric[c][p])
		} else {
			n += len(r.magnetic[c-material.Hx][p])
		}
	}
	return n
}

// forEachPartition runs fn for every partition and returns when all are done
func (r *Runner[T]) forEachPartition(fn func(p int)) {
	if r.Layout.NumPartitions == 1 {
		fn(0)
		return
	}
	var wg sync.WaitGroup
	wg.Add(r.Layout.NumPartitions)
	for p := 0; p < r.Layout.NumPartitions; p++ {
		go func(p int) {
			defer wg.Done()
			fn(p)
		}(p)
	}
	wg.Wait()
}

// StepE updates every registered electric cell from the current H field
func (r *Runner[T]) StepE(dt, n float64) {
	r.forEachPartition(func(p int) {
		for c := material.Ex; c <= material.Ez; c++ {
			target := r.Grid.Field(c)
			in1, in2, d1, d2 := r.Grid.Operands(c)
			for _, cell := range r.electric[c][p] {
				cell.m.Update(target, in1, in2, d1, d2, dt, n, cell.i, cell.j, cell.k)
			}
		}
	})
}

// StepH updates every registered magnetic cell from the current E field
func (r *Runner[T]) StepH(dt, n float64) {
	r.forEachPartition(func(p int) {
		for c := material.Hx; c <= material.Hz; c++ {
			target := r.Grid.Field(c)
			in1, in2, d1, d2 := r.Grid.Operands(c)
			for _, cell := range r.magnetic[c-material.Hx][p] {
				cell.m.Update(target, in1, in2, d1, d2, dt, n, cell.i, cell.j, cell.k)
			}
		}
	})
}

// Step advances one full leapfrog step: H from E, then E from the new H.
// n is passed through to the kernels unchanged.
func (r *Runner[T]) Step(dt, n float64) {
	r.StepH(dt, n)
	r.StepE(dt, n)
}
