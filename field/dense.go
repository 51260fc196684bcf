package field

import (
	"gonum.org/v1/gonum/cmplxs"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ToDense copies the z plane k of a into a new matrix
func ToDense(a Array[float64], k int) *mat.Dense {
	nx, ny, _ := a.Dims()
	m := mat.NewDense(nx, ny, nil)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			m.Set(i, j, a.At(i, j, k))
		}
	}
	return m
}

// Values gathers the logical cells of a in row-major order
func Values[T Scalar](a Array[T]) []T {
	out := make([]T, 0, a.Len())
	a.Each(func(i, j, k int) {
		out = append(out, a.At(i, j, k))
	})
	return out
}

// Norm returns the L-norm of the logical cells of a
func Norm[T Scalar](a Array[T], L float64) float64 {
	switch vals := any(Values(a)).(type) {
	case []float64:
		return floats.Norm(vals, L)
	case []float32:
		wide := make([]float64, len(vals))
		for i, v := range vals {
			wide[i] = float64(v)
		}
		return floats.Norm(wide, L)
	case []complex128:
		return cmplxs.Norm(vals, L)
	case []complex64:
		wide := make([]complex128, len(vals))
		for i, v := range vals {
			wide[i] = complex128(v)
		}
		return cmplxs.Norm(wide, L)
	}
	return 0
}
