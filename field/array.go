package field

import (
	"fmt"
)

// Scalar is the numeric value type carried by a Yee field component
type Scalar interface {
	float32 | float64 | complex64 | complex128
}

// Axis identifies one of the three grid directions
type Axis uint8

const (
	X Axis = iota
	Y
	Z
)

func (a Axis) String() string {
	switch a {
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	default:
		return fmt.Sprintf("Axis(%d)", uint8(a))
	}
}

// Array is a non-owning strided 3D view of one field component.
//
// An axis with extent 1 is collapsed: its stride is zero, so every index along
// it resolves to offset 0. Dimension-reduced simulations run the same stencils
// without branching on the array shape.
type Array[T Scalar] struct {
	Data      []T
	Size      [3]int
	Stride    [3]int
	Collapsed [3]bool
	Offset    int
}

// New allocates a zeroed row-major array of extent nx*ny*nz
func New[T Scalar](nx, ny, nz int) Array[T] {
	arr, err := View(make([]T, nx*ny*nz), nx, ny, nz)
	if err != nil {
		panic(err)
	}
	return arr
}

// View wraps data as a row-major (x slowest, z fastest) array
func View[T Scalar](data []T, nx, ny, nz int) (Array[T], error) {
	if nx < 1 || ny < 1 || nz < 1 {
		return Array[T]{}, fmt.Errorf("invalid extents %dx%dx%d", nx, ny, nz)
	}
	if len(data) < nx*ny*nz {
		return Array[T]{}, fmt.Errorf("data length %d smaller than %dx%dx%d", len(data), nx, ny, nz)
	}
	return Strided(data, [3]int{nx, ny, nz}, [3]int{ny * nz, nz, 1}, 0)
}

// Strided wraps data with explicit per-axis strides, used for views into
// storage the caller lays out itself (halo padding, matrix rows).
func Strided[T Scalar](data []T, size, stride [3]int, offset int) (Array[T], error) {
	arr := Array[T]{Data: data, Size: size, Offset: offset}
	last := offset
	for ax := 0; ax < 3; ax++ {
		if size[ax] < 1 {
			return Array[T]{}, fmt.Errorf("axis %s: extent %d must be positive", Axis(ax), size[ax])
		}
		if stride[ax] < 0 {
			return Array[T]{}, fmt.Errorf("axis %s: negative stride %d", Axis(ax), stride[ax])
		}
		if size[ax] == 1 {
			arr.Collapsed[ax] = true
			continue
		}
		arr.Stride[ax] = stride[ax]
		last += (size[ax] - 1) * stride[ax]
	}
	if offset < 0 || last >= len(data) {
		return Array[T]{}, fmt.Errorf("view spans [%d,%d] beyond data length %d", offset, last, len(data))
	}
	return arr, nil
}

// Index flattens (i, j, k) into Data. Collapsed axes contribute nothing.
func (a Array[T]) Index(i, j, k int) int {
	return a.Offset + i*a.Stride[0] + j*a.Stride[1] + k*a.Stride[2]
}

func (a Array[T]) At(i, j, k int) T {
	return a.Data[a.Index(i, j, k)]
}

func (a Array[T]) Set(i, j, k int, v T) {
	a.Data[a.Index(i, j, k)] = v
}

// Ptr returns the address of the element at (i, j, k)
func (a Array[T]) Ptr(i, j, k int) *T {
	return &a.Data[a.Index(i, j, k)]
}

func (a Array[T]) Dims() (nx, ny, nz int) {
	return a.Size[0], a.Size[1], a.Size[2]
}

// Len is the number of logical cells in the view
func (a Array[T]) Len() int {
	return a.Size[0] * a.Size[1] * a.Size[2]
}

// Contains reports whether (i, j, k) addresses a stored cell. Indices along
// collapsed axes always resolve, so they are not checked.
func (a Array[T]) Contains(i, j, k int) bool {
	idx := [3]int{i, j, k}
	for ax := 0; ax < 3; ax++ {
		if a.Collapsed[ax] {
			continue
		}
		if idx[ax] < 0 || idx[ax] >= a.Size[ax] {
			return false
		}
	}
	return true
}

// Fill sets every logical cell to v
func (a Array[T]) Fill(v T) {
	a.Each(func(i, j, k int) {
		a.Set(i, j, k, v)
	})
}

// Each visits every logical cell in row-major order
func (a Array[T]) Each(fn func(i, j, k int)) {
	for i := 0; i < a.Size[0]; i++ {
		for j := 0; j < a.Size[1]; j++ {
			for k := 0; k < a.Size[2]; k++ {
				fn(i, j, k)
			}
		}
	}
}

// Clone copies the logical cells into a freshly allocated row-major array
func (a Array[T]) Clone() Array[T] {
	out := New[T](a.Size[0], a.Size[1], a.Size[2])
	a.Each(func(i, j, k int) {
		out.Set(i, j, k, a.At(i, j, k))
	})
	return out
}

// FromReal converts a real coefficient into the field value type
func FromReal[T Scalar](x float64) T {
	var v T
	switch p := any(&v).(type) {
	case *float64:
		*p = x
	case *float32:
		*p = float32(x)
	case *complex128:
		*p = complex(x, 0)
	case *complex64:
		*p = complex64(complex(x, 0))
	}
	return v
}
