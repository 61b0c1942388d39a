package ndarray

import "fmt"

// Permute reorders the axes so that axis i of the result is axis axes[i] of
// the receiver. It works for any rank.
func (a *Array) Permute(axes ...int) (*Array, error) {
	if len(axes) != len(a.shape) {
		return nil, fmt.Errorf("%w: got %d axes for rank %d", ErrInvalidAxes, len(axes), len(a.shape))
	}

	seen := make([]bool, len(axes))
	shape := make([]int, len(axes))
	strides := make([]int, len(axes))
	for i, ax := range axes {
		if ax < 0 || ax >= len(axes) || seen[ax] {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAxes, axes)
		}
		seen[ax] = true
		shape[i] = a.shape[ax]
		strides[i] = a.strides[ax]
	}

	return a.gather(0, shape, strides), nil
}

// Transpose reverses the order of the axes. Arrays of rank 1 come back as
// an equal copy.
func (a *Array) Transpose() *Array {
	axes := make([]int, len(a.shape))
	for i := range axes {
		axes[i] = len(axes) - 1 - i
	}
	t, _ := a.Permute(axes...)
	return t
}

// T is an alias of Transpose.
func (a *Array) T() *Array { return a.Transpose() }
