// Package device runs UPML sweeps of a host Yee grid on an OCCA device. It is
// kept apart from package runner so the host path builds without OCCA.
package device

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/notargets/fdtdupml/field"
	"github.com/notargets/fdtdupml/material"
	"github.com/notargets/fdtdupml/profile"
	"github.com/notargets/fdtdupml/runner"
	"github.com/notargets/gocca"
)

// BlockSize is the inner loop width of generated kernels
const BlockSize = 256

// MaterialFunc returns the physical constant and coefficients of a cell.
// profile.Layer.Material satisfies it.
type MaterialFunc func(c material.Component, i, j, k int) (float64, material.Coefficients)

type deviceSweep struct {
	name   string
	comp   material.Component
	lo, hi [3]int
	cells  int
	kernel *gocca.OCCAKernel
	aux    *gocca.OCCAMemory
	coeffs *gocca.OCCAMemory
	consts *gocca.OCCAMemory
}

// Grid runs UPML boxes of a float64 runner.Grid on an OCCA device. The host
// grid is the staging copy for Upload and Download.
type Grid struct {
	Device *gocca.OCCADevice
	Host   *runner.Grid[float64]
	Fields [6]*gocca.OCCAMemory

	electric []*deviceSweep
	magnetic []*deviceSweep
}

// New allocates the six components of host on dev and uploads them
func New(dev *gocca.OCCADevice, host *runner.Grid[float64]) (*Grid, error) {
	if dev == nil || host == nil {
		return nil, fmt.Errorf("device and grid are required")
	}
	dg := &Grid{Device: dev, Host: host}
	for _, c := range material.Components {
		data := host.Field(c).Data
		dg.Fields[c] = dev.Malloc(int64(len(data)*8), unsafe.Pointer(&data[0]), nil)
	}
	return dg, nil
}

// AddUpmlBox builds a kernel that updates component c over the cells [lo, hi)
// with materials from mat. Boxes of one component must not overlap.
func (dg *Grid) AddUpmlBox(c material.Component, lo, hi [3]int, mat MaterialFunc) error {
	if !c.Valid() {
		return fmt.Errorf("invalid component %d", uint8(c))
	}
	target := dg.Host.Field(c)
	cells := 1
	for ax := 0; ax < 3; ax++ {
		if hi[ax] <= lo[ax] {
			return fmt.Errorf("%s: empty box on axis %s", c, field.Axis(ax))
		}
		if target.Collapsed[ax] && (lo[ax] != 0 || hi[ax] != 1) {
			return fmt.Errorf("%s: collapsed axis %s must span [0, 1)", c, field.Axis(ax))
		}
		cells *= hi[ax] - lo[ax]
	}
	if !dg.Host.CanUpdate(c, lo[0], lo[1], lo[2]) || !dg.Host.CanUpdate(c, hi[0]-1, hi[1]-1, hi[2]-1) {
		return fmt.Errorf("%s: box %v-%v leaves the allocated arrays", c, lo, hi)
	}
	for _, s := range dg.sweeps(c) {
		if s.comp == c && overlaps(s.lo, s.hi, lo, hi) {
			return fmt.Errorf("%s: box %v-%v overlaps %s", c, lo, hi, s.name)
		}
	}

	coeffs := make([]float64, 6*cells)
	consts := make([]float64, cells)
	aux := make([]float64, cells)
	n := 0
	for i := lo[0]; i < hi[0]; i++ {
		for j := lo[1]; j < hi[1]; j++ {
			for k := lo[2]; k < hi[2]; k++ {
				constant, co := mat(c, i, j, k)
				a := co.Array()
				copy(coeffs[6*n:], a[:])
				consts[n] = constant
				n++
			}
		}
	}

	s := &deviceSweep{
		name:  fmt.Sprintf("upml%s_%d", c, len(dg.sweeps(c))),
		comp:  c,
		lo:    lo,
		hi:    hi,
		cells: cells,
	}
	src := dg.kernelSource(s)

	var err error
	if dg.Device.Mode() == "OpenMP" {
		props := gocca.JsonParse(`{"compiler_flags": "-O3"}`)
		defer props.Free()
		s.kernel, err = dg.Device.BuildKernelFromString(src, s.name, props)
	} else {
		s.kernel, err = dg.Device.BuildKernelFromString(src, s.name, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to build kernel %s: %w", s.name, err)
	}
	if s.kernel == nil {
		return fmt.Errorf("kernel build returned nil for %s", s.name)
	}

	s.coeffs = dg.Device.Malloc(int64(len(coeffs)*8), unsafe.Pointer(&coeffs[0]), nil)
	s.consts = dg.Device.Malloc(int64(len(consts)*8), unsafe.Pointer(&consts[0]), nil)
	s.aux = dg.Device.Malloc(int64(len(aux)*8), unsafe.Pointer(&aux[0]), nil)

	if c.IsElectric() {
		dg.electric = append(dg.electric, s)
	} else {
		dg.magnetic = append(dg.magnetic, s)
	}
	return nil
}

func (dg *Grid) sweeps(c material.Component) []*deviceSweep {
	if c.IsElectric() {
		return dg.electric
	}
	return dg.magnetic
}

func overlaps(alo, ahi, blo, bhi [3]int) bool {
	for ax := 0; ax < 3; ax++ {
		if ahi[ax] <= blo[ax] || bhi[ax] <= alo[ax] {
			return false
		}
	}
	return true
}

// kernelSource generates the OCCA source for one sweep. Box extents, strides
// and spacings are baked in as macros; collapsed axes carry stride 0.
func (dg *Grid) kernelSource(s *deviceSweep) string {
	target := dg.Host.Field(s.comp)
	in1, in2, d1, d2 := dg.Host.Operands(s.comp)
	st := s.comp.Stencil()

	var sb strings.Builder
	define := func(name string, v any) {
		fmt.Fprintf(&sb, "#define %s %v\n", name, v)
	}
	define("NCELLS", s.cells)
	define("NBLOCK", (s.cells+BlockSize-1)/BlockSize)
	define("BLOCK", BlockSize)
	define("E1", s.hi[1]-s.lo[1])
	define("E2", s.hi[2]-s.lo[2])
	for ax := 0; ax < 3; ax++ {
		define(fmt.Sprintf("LO%d", ax), s.lo[ax])
		define(fmt.Sprintf("TS%d", ax), target.Stride[ax])
		define(fmt.Sprintf("AS%d", ax), in1.Stride[ax])
		define(fmt.Sprintf("BS%d", ax), in2.Stride[ax])
	}
	define("TOFF", target.Offset)
	define("AOFF", in1.Offset)
	define("BOFF", in2.Offset)
	define("D1", fmt.Sprintf("%.17g", d1))
	define("D2", fmt.Sprintf("%.17g", d2))
	define("SIGN", fmt.Sprintf("(%.1f)", st.Sign))

	idx := func(array string, o material.Offset) string {
		return fmt.Sprintf("%s[%sOFF + (i+(%d))*%sS0 + (j+(%d))*%sS1 + (k+(%d))*%sS2]",
			array, array, o[0], array, o[1], array, o[2], array)
	}

	fmt.Fprintf(&sb, `
@kernel void %s(double *T, const double *A, const double *B,
                double *AUX, const double *C, const double *K) {
    for (int b = 0; b < NBLOCK; ++b; @outer) {
        for (int t = 0; t < BLOCK; ++t; @inner) {
            const int n = b*BLOCK + t;
            if (n < NCELLS) {
                const int i = LO0 + n/(E1*E2);
                const int j = LO1 + (n/E2)%%E1;
                const int k = LO2 + n%%E2;
                const double curl = (%s - %s)/D1 - (%s - %s)/D2;
                const double *c = C + 6*n;
                const double store = AUX[n];
                AUX[n] = c[0]*store + c[1]*(SIGN*curl);
                double *f = T + TOFF + i*TS0 + j*TS1 + k*TS2;
                *f = c[2]*(*f) + c[3]*(c[4]*AUX[n] - c[5]*store)/K[n];
            }
        }
    }
}
`, s.name,
		idx("A", st.In1[0]), idx("A", st.In1[1]),
		idx("B", st.In2[0]), idx("B", st.In2[1]))
	return sb.String()
}

func (dg *Grid) run(sweeps []*deviceSweep) error {
	for _, s := range sweeps {
		c1, c2 := s.comp.Operands()
		err := s.kernel.RunWithArgs(dg.Fields[s.comp], dg.Fields[c1], dg.Fields[c2], s.aux, s.coeffs, s.consts)
		if err != nil {
			return fmt.Errorf("kernel %s execution failed: %w", s.name, err)
		}
	}
	dg.Device.Finish()
	return nil
}

// StepH runs every magnetic box and waits for the device
func (dg *Grid) StepH() error { return dg.run(dg.magnetic) }

// StepE runs every electric box and waits for the device
func (dg *Grid) StepE() error { return dg.run(dg.electric) }

// Step runs StepH then StepE
func (dg *Grid) Step() error {
	if err := dg.StepH(); err != nil {
		return err
	}
	return dg.StepE()
}

// Upload copies the host grid to the device
func (dg *Grid) Upload() {
	for _, c := range material.Components {
		data := dg.Host.Field(c).Data
		dg.Fields[c].CopyFrom(unsafe.Pointer(&data[0]), int64(len(data)*8))
	}
}

// Download copies the device fields into the host grid
func (dg *Grid) Download() {
	for _, c := range material.Components {
		data := dg.Host.Field(c).Data
		dg.Fields[c].CopyTo(unsafe.Pointer(&data[0]), int64(len(data)*8))
	}
}

// Free releases all kernels and device memory
func (dg *Grid) Free() {
	for _, sweeps := range [][]*deviceSweep{dg.electric, dg.magnetic} {
		for _, s := range sweeps {
			s.kernel.Free()
			s.aux.Free()
			s.coeffs.Free()
			s.consts.Free()
		}
	}
	dg.electric, dg.magnetic = nil, nil
	for c, mem := range dg.Fields {
		if mem != nil {
			mem.Free()
			dg.Fields[c] = nil
		}
	}
}

// AddUpmlLayer adds one box per listed component covering its update box,
// with materials from layer.
func (dg *Grid) AddUpmlLayer(layer *profile.Layer, comps ...material.Component) error {
	if err := layer.Validate(); err != nil {
		return fmt.Errorf("invalid layer: %w", err)
	}
	for _, c := range comps {
		lo, hi := dg.Host.UpdateBox(c)
		if err := dg.AddUpmlBox(c, lo, hi, layer.Material); err != nil {
			return err
		}
	}
	return nil
}
