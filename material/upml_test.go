package material

import (
	"math"
	"math/rand"
	"testing"

	"github.com/notargets/fdtdupml/field"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// updater is the Update method shared by both families
type updater interface {
	Update(target, in1, in2 *field.Array[float64], d1, d2, dt, n float64, i, j, k int) float64
}

func newKernel(t testing.TB, c Component, constant float64, co Coefficients) updater {
	if c.IsElectric() {
		m, err := NewUpmlElectricFor[float64](c, constant, co)
		require.NoError(t, err)
		return m
	}
	m, err := NewUpmlMagneticFor[float64](c, constant, co)
	require.NoError(t, err)
	return m
}

func auxOf(m updater) float64 {
	switch v := m.(type) {
	case interface{ D() float64 }:
		return v.D()
	case interface{ B() float64 }:
		return v.B()
	}
	panic("kernel exposes no auxiliary state")
}

func randomArray(rng *rand.Rand, nx, ny, nz int) field.Array[float64] {
	a := field.New[float64](nx, ny, nz)
	for i := range a.Data {
		a.Data[i] = 2*rng.Float64() - 1
	}
	return a
}

// stencilCurl evaluates the curl of c directly from its offset table
func stencilCurl(c Component, in1, in2 *field.Array[float64], d1, d2 float64, i, j, k int) float64 {
	st := c.Stencil()
	at := func(a *field.Array[float64], o Offset) float64 {
		return a.At(i+o[0], j+o[1], k+o[2])
	}
	return (at(in1, st.In1[0])-at(in1, st.In1[1]))/d1 - (at(in2, st.In2[0])-at(in2, st.In2[1]))/d2
}

// rotate relabels axes x->y->z->x: out(p, q, r) = a(q, r, p)
func rotate(a field.Array[float64]) field.Array[float64] {
	nx, ny, nz := a.Dims()
	out := field.New[float64](nz, nx, ny)
	out.Each(func(p, q, r int) {
		out.Set(p, q, r, a.At(q, r, p))
	})
	return out
}

func next(c Component) Component {
	if c.IsElectric() {
		return (c + 1) % 3
	}
	return Hx + (c-Hx+1)%3
}

// ============================================================================
// Section 1: Stencil and component tables
// ============================================================================

func TestComponent_Tables(t *testing.T) {
	testCases := []struct {
		c        Component
		in1, in2 Component
		d1, d2   field.Axis
		electric bool
	}{
		{Ex, Hz, Hy, field.Y, field.Z, true},
		{Ey, Hx, Hz, field.Z, field.X, true},
		{Ez, Hy, Hx, field.X, field.Y, true},
		{Hx, Ez, Ey, field.Y, field.Z, false},
		{Hy, Ex, Ez, field.Z, field.X, false},
		{Hz, Ey, Ex, field.X, field.Y, false},
	}
	for _, tc := range testCases {
		t.Run(tc.c.String(), func(t *testing.T) {
			in1, in2 := tc.c.Operands()
			assert.Equal(t, tc.in1, in1)
			assert.Equal(t, tc.in2, in2)
			d1, d2 := tc.c.Spacings()
			assert.Equal(t, tc.d1, d1)
			assert.Equal(t, tc.d2, d2)
			assert.Equal(t, tc.electric, tc.c.IsElectric())
			if tc.electric {
				assert.Equal(t, 1.0, tc.c.Stencil().Sign)
			} else {
				assert.Equal(t, -1.0, tc.c.Stencil().Sign)
			}
		})
	}
	assert.False(t, Component(6).Valid())
	assert.Equal(t, "Component(9)", Component(9).String())
}

func TestComponent_StencilIsCyclic(t *testing.T) {
	// Relabelling x->y->z->x maps offset (a, b, c) to (c, a, b)
	rot := func(o Offset) Offset { return Offset{o[2], o[0], o[1]} }
	for _, c := range Components {
		st, nst := c.Stencil(), next(c).Stencil()
		for n := 0; n < 2; n++ {
			assert.Equal(t, nst.In1[n], rot(st.In1[n]), "%s -> %s in1", c, next(c))
			assert.Equal(t, nst.In2[n], rot(st.In2[n]), "%s -> %s in2", c, next(c))
		}
	}
}

func TestFactories_RejectWrongFamily(t *testing.T) {
	_, err := NewUpmlElectricFor[float64](Hx, 1, Coefficients{})
	assert.Error(t, err)
	_, err = NewUpmlMagneticFor[float64](Ez, 1, Coefficients{})
	assert.Error(t, err)
}

// ============================================================================
// Section 2: Kernel behaviour
// ============================================================================

func TestUpml_KernelsMatchStencilTable(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pass := Coefficients{C1: 0, C2: 1, C3: 0, C4: 1, C5: 1, C6: 0}
	for _, c := range Components {
		t.Run(c.String(), func(t *testing.T) {
			target := randomArray(rng, 5, 5, 5)
			in1 := randomArray(rng, 5, 5, 5)
			in2 := randomArray(rng, 5, 5, 5)
			d1, d2 := 0.3, 0.7

			m := newKernel(t, c, 1, pass)
			got := m.Update(&target, &in1, &in2, d1, d2, 0.1, 0, 2, 2, 2)

			want := c.Stencil().Sign * stencilCurl(c, &in1, &in2, d1, d2, 2, 2, 2)
			assert.InDelta(t, want, got, 1e-12)
			assert.Equal(t, got, target.At(2, 2, 2))
			assert.InDelta(t, want, auxOf(m), 1e-12)
		})
	}
}

func TestUpml_Identity(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	co := Coefficients{C1: 1, C2: 0, C3: 1, C4: 0, C5: rng.Float64(), C6: rng.Float64()}
	for _, c := range Components {
		t.Run(c.String(), func(t *testing.T) {
			target := randomArray(rng, 4, 4, 4)
			in1 := randomArray(rng, 4, 4, 4)
			in2 := randomArray(rng, 4, 4, 4)
			before := append([]float64(nil), target.Data...)

			m := newKernel(t, c, 2.5, co)
			for step := 0; step < 5; step++ {
				got := m.Update(&target, &in1, &in2, 0.5, 0.25, 0.1, float64(step), 1, 1, 1)
				assert.Equal(t, before[target.Index(1, 1, 1)], got)
				assert.Zero(t, auxOf(m))
			}
			assert.Equal(t, before, target.Data)
		})
	}
}

func TestUpml_ZeroNeighbourDecay(t *testing.T) {
	const (
		c1    = 0.8
		steps = 12
	)
	rng := rand.New(rand.NewSource(3))
	co := Coefficients{C1: c1, C2: 0.5, C3: 1, C4: 1, C5: 1, C6: 1}
	for _, c := range Components {
		t.Run(c.String(), func(t *testing.T) {
			target := field.New[float64](4, 4, 4)
			in1 := randomArray(rng, 4, 4, 4)
			in2 := randomArray(rng, 4, 4, 4)
			m := newKernel(t, c, 1, co)

			// Seed the auxiliary state with one non-trivial curl
			m.Update(&target, &in1, &in2, 1, 1, 0.1, 0, 1, 1, 1)
			initial := auxOf(m)
			require.NotZero(t, initial)

			zero1 := field.New[float64](4, 4, 4)
			zero2 := field.New[float64](4, 4, 4)
			for n := 0; n < steps; n++ {
				m.Update(&target, &zero1, &zero2, 1, 1, 0.1, float64(n), 1, 1, 1)
			}
			assert.InDelta(t, math.Pow(c1, steps)*initial, auxOf(m), 1e-15)
		})
	}
}

func TestUpml_AxisPermutationSymmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	co := Coefficients{C1: 0.9, C2: 0.4, C3: 0.95, C4: 0.6, C5: 1.3, C6: 0.7}
	for _, c := range Components {
		t.Run(c.String()+"->"+next(c).String(), func(t *testing.T) {
			target := randomArray(rng, 4, 5, 6)
			in1 := randomArray(rng, 5, 6, 7)
			in2 := randomArray(rng, 5, 6, 7)
			rt, r1, r2 := rotate(target), rotate(in1), rotate(in2)

			m := newKernel(t, c, 1.7, co)
			mr := newKernel(t, next(c), 1.7, co)
			for step := 0; step < 3; step++ {
				got := m.Update(&target, &in1, &in2, 0.4, 0.9, 0.1, 0, 1, 2, 3)
				gotRot := mr.Update(&rt, &r1, &r2, 0.4, 0.9, 0.1, 0, 3, 1, 2)
				assert.Equal(t, got, gotRot)
			}
			assert.Equal(t, auxOf(m), auxOf(mr))
		})
	}
}

func TestUpml_DegenerateAxisInvariance(t *testing.T) {
	co := Coefficients{C1: 0.9, C2: 0.4, C3: 0.95, C4: 0.6, C5: 1.3, C6: 0.7}
	for _, c := range Components {
		t.Run(c.String(), func(t *testing.T) {
			rng := rand.New(rand.NewSource(13))
			// z collapsed everywhere, as in a 2D simulation
			target := randomArray(rng, 4, 4, 1)
			in1 := randomArray(rng, 4, 4, 1)
			in2 := randomArray(rng, 4, 4, 1)

			var results []float64
			for _, k := range []int{0, 1, 7, -3} {
				tt := target.Clone()
				m := newKernel(t, c, 1.1, co)
				results = append(results, m.Update(&tt, &in1, &in2, 0.5, 0.5, 0.1, 0, 1, 2, k))
			}
			for _, r := range results[1:] {
				assert.Equal(t, results[0], r)
			}
		})
	}
}

func TestUpml_CollapsedOperandOnly(t *testing.T) {
	// TMz: Hx reads a point-collapsed Ey, which must behave as a constant
	rng := rand.New(rand.NewSource(17))
	hx := field.New[float64](4, 4, 1)
	ez := randomArray(rng, 4, 4, 1)
	ey := field.New[float64](1, 1, 1)
	ey.Set(0, 0, 0, 42)

	m := NewUpmlHx[float64](1, Coefficients{C1: 0, C2: 1, C3: 0, C4: 1, C5: 1, C6: 0})
	got := m.Update(&hx, &ez, &ey, 0.5, 0.5, 0.1, 0, 2, 2, 0)
	want := -(ez.At(2, 2, 0) - ez.At(2, 1, 0)) / 0.5
	assert.InDelta(t, want, got, 1e-12)
}

func TestUpmlEx_EndToEnd(t *testing.T) {
	const (
		dy = 0.5
		dz = 0.25
	)
	hz := field.New[float64](2, 2, 1)
	hz.Set(1, 1, 0, 3)
	hz.Set(1, 0, 0, 1)
	hy := field.New[float64](2, 1, 2)
	hy.Set(1, 0, 1, 5)
	hy.Set(1, 0, 0, 2)
	ex := field.New[float64](1, 1, 1)

	m := NewUpmlEx[float64](1, Coefficients{C1: 0, C2: 1, C3: 1, C4: 1, C5: 1, C6: 0})
	got := m.Update(&ex, &hz, &hy, dy, dz, 0.01, 0, 0, 0, 0)

	want := (3.0-1.0)/dy - (5.0-2.0)/dz
	assert.InDelta(t, want, got, 1e-12)
	assert.InDelta(t, want, ex.At(0, 0, 0), 1e-12)
	assert.InDelta(t, want, m.D(), 1e-12)
}

func TestUpml_RecursionAgainstClosedForm(t *testing.T) {
	// Two steps with a constant curl, checked against the update written out by hand
	co := Coefficients{C1: 0.9, C2: 0.3, C3: 0.8, C4: 0.5, C5: 2.1, C6: 1.9}
	const eps = 2.0
	hz := field.New[float64](2, 2, 1)
	hz.Set(1, 1, 0, 1)
	hy := field.New[float64](2, 1, 1)
	ex := field.New[float64](1, 1, 1)
	ex.Set(0, 0, 0, 0.25)
	curl := 1.0

	m := NewUpmlEx[float64](eps, co)
	d0, e0 := 0.0, 0.25
	for step := 0; step < 2; step++ {
		d1 := co.C1*d0 + co.C2*curl
		e1 := co.C3*e0 + co.C4*(co.C5*d1-co.C6*d0)/eps
		got := m.Update(&ex, &hz, &hy, 1, 1, 0.1, float64(step), 0, 0, 0)
		assert.InDelta(t, e1, got, 1e-15)
		assert.InDelta(t, d1, m.D(), 1e-15)
		d0, e0 = d1, e1
	}
}

func TestUpml_ConstantChangeIsNotRetroactive(t *testing.T) {
	co := Coefficients{C1: 1, C2: 1, C3: 1, C4: 1, C5: 1, C6: 0}
	hz := field.New[float64](2, 2, 1)
	hz.Set(1, 1, 0, 1)
	hy := field.New[float64](2, 1, 1)
	ex := field.New[float64](1, 1, 1)

	m := NewUpmlEx[float64](1, co)
	first := m.Update(&ex, &hz, &hy, 1, 1, 0.1, 0, 0, 0, 0)
	assert.InDelta(t, 1.0, first, 1e-15)

	m.SetEpsilon(4)
	assert.Equal(t, 4.0, m.Epsilon())
	assert.InDelta(t, 1.0, ex.At(0, 0, 0), 1e-15)

	// d is now 2, so the increment is 2/4
	second := m.Update(&ex, &hz, &hy, 1, 1, 0.1, 1, 0, 0, 0)
	assert.InDelta(t, 1.5, second, 1e-15)

	h := NewUpmlHz[float64](2, co)
	h.SetMu(3)
	assert.Equal(t, 3.0, h.Mu())
	assert.Equal(t, co, h.Coefficients())
	assert.Equal(t, co, m.Coefficients())
}

func TestUpml_ZeroConstantPropagatesNonFinite(t *testing.T) {
	hz := field.New[float64](2, 2, 1)
	hz.Set(1, 1, 0, 1)
	hy := field.New[float64](2, 1, 1)
	ex := field.New[float64](1, 1, 1)
	m := NewUpmlEx[float64](0, Coefficients{C1: 1, C2: 1, C3: 1, C4: 1, C5: 1, C6: 0})
	got := m.Update(&ex, &hz, &hy, 1, 1, 0.1, 0, 0, 0, 0)
	assert.True(t, math.IsInf(got, 1))
}

func TestUpml_ComplexField(t *testing.T) {
	hz := field.New[complex128](2, 2, 1)
	hz.Set(1, 1, 0, 1+2i)
	hy := field.New[complex128](2, 1, 2)
	hy.Set(1, 0, 1, 0.5i)
	ex := field.New[complex128](1, 1, 1)

	m := NewUpmlEx[complex128](1, Coefficients{C1: 0, C2: 1, C3: 1, C4: 1, C5: 1, C6: 0})
	got := m.Update(&ex, &hz, &hy, 0.5, 0.5, 0.1, 0, 0, 0, 0)
	want := (1+2i)/0.5 - (0.5i)/0.5
	assert.InDelta(t, real(want), real(got), 1e-12)
	assert.InDelta(t, imag(want), imag(got), 1e-12)
}

func TestUpml_NoAllocation(t *testing.T) {
	rng := rand.New(rand.NewSource(19))
	target := randomArray(rng, 4, 4, 4)
	in1 := randomArray(rng, 4, 4, 4)
	in2 := randomArray(rng, 4, 4, 4)
	for _, c := range Components {
		m := newKernel(t, c, 1, Coefficients{C1: 0.5, C2: 0.5, C3: 0.5, C4: 0.5, C5: 1, C6: 1})
		allocs := testing.AllocsPerRun(50, func() {
			m.Update(&target, &in1, &in2, 0.5, 0.5, 0.1, 0, 1, 1, 1)
		})
		assert.Zero(t, allocs, c.String())
	}
}

// ============================================================================
// Section 3: No-op material
// ============================================================================

func TestDummy_LeavesFieldUntouched(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	target := randomArray(rng, 3, 3, 3)
	in1 := randomArray(rng, 3, 3, 3)
	in2 := randomArray(rng, 3, 3, 3)
	before := append([]float64(nil), target.Data...)

	var e ElectricMaterial[float64] = DummyElectric[float64]{}
	var h MagneticMaterial[float64] = DummyMagnetic[float64]{}
	for _, idx := range [][3]int{{0, 0, 0}, {1, 2, 1}, {2, 2, 2}} {
		want := target.At(idx[0], idx[1], idx[2])
		assert.Equal(t, want, e.Update(&target, &in1, &in2, 1, 1, 0.1, 0, idx[0], idx[1], idx[2]))
		assert.Equal(t, want, h.Update(&target, &in1, &in2, 1, 1, 0.1, 0, idx[0], idx[1], idx[2]))
	}
	assert.Equal(t, before, target.Data)

	// Neighbours are never read
	assert.Equal(t, target.At(1, 1, 1), e.Update(&target, nil, nil, 0, 0, 0, 0, 1, 1, 1))

	// Degenerate targets
	var empty field.Array[float64]
	assert.Equal(t, 0.0, e.Update(&empty, nil, nil, 0, 0, 0, 0, 0, 0, 0))
	assert.Equal(t, 0.0, h.Update(nil, nil, nil, 0, 0, 0, 0, 5, 5, 5))
	assert.Equal(t, 0.0, h.Update(&target, &in1, &in2, 1, 1, 0.1, 0, 3, 0, 0))
	assert.Equal(t, before, target.Data)
}

func TestFamilies_AreDisjoint(t *testing.T) {
	co := Coefficients{C1: 1, C2: 0.5, C3: 1, C4: 0.5, C5: 2, C6: 2}
	electric := []any{
		NewUpmlEx[float64](1, co), NewUpmlEy[float64](1, co), NewUpmlEz[float64](1, co),
		DummyElectric[float64]{},
	}
	magnetic := []any{
		NewUpmlHx[float64](1, co), NewUpmlHy[float64](1, co), NewUpmlHz[float64](1, co),
		DummyMagnetic[float64]{},
	}
	for _, m := range electric {
		_, isE := m.(ElectricMaterial[float64])
		_, isH := m.(MagneticMaterial[float64])
		assert.True(t, isE, "%T", m)
		assert.False(t, isH, "%T", m)
	}
	for _, m := range magnetic {
		_, isE := m.(ElectricMaterial[float64])
		_, isH := m.(MagneticMaterial[float64])
		assert.False(t, isE, "%T", m)
		assert.True(t, isH, "%T", m)
	}
}

// ============================================================================
// Section 4: Benchmarks
// ============================================================================

func BenchmarkUpmlEx(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	ex := randomArray(rng, 32, 32, 32)
	hz := randomArray(rng, 33, 33, 33)
	hy := randomArray(rng, 33, 33, 33)
	m := NewUpmlEx[float64](1, Coefficients{C1: 0.9, C2: 0.1, C3: 0.9, C4: 0.5, C5: 2, C6: 2})

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		for i := 0; i < 32; i++ {
			for j := 0; j < 32; j++ {
				for k := 0; k < 32; k++ {
					m.Update(&ex, &hz, &hy, 0.1, 0.1, 0.05, float64(n), i, j, k)
				}
			}
		}
	}
}

func BenchmarkUpmlHzInterface(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	hz := randomArray(rng, 32, 32, 1)
	ey := randomArray(rng, 33, 33, 1)
	ex := randomArray(rng, 33, 33, 1)
	var m MagneticMaterial[float64] = NewUpmlHz[float64](1, Coefficients{C1: 0.9, C2: 0.1, C3: 0.9, C4: 0.5, C5: 2, C6: 2})

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		for i := 1; i < 32; i++ {
			for j := 1; j < 32; j++ {
				m.Update(&hz, &ey, &ex, 0.1, 0.1, 0.05, float64(n), i, j, 0)
			}
		}
	}
}
