package ndarray

import "fmt"

// Operand is either a Scalar or an *Array. It is the right-hand side of
// every element-wise operator and the result of indexing.
type Operand interface {
	operand()
}

// Scalar is a single number used where an Operand is expected.
type Scalar float64

func (Scalar) operand() {}
func (*Array) operand() {}

func (s Scalar) String() string {
	return fmt.Sprintf("%g", float64(s))
}

// AsArray coerces an operand to an array. A Scalar becomes a one-element
// 1-D array; an *Array is returned unchanged.
func AsArray(o Operand) (*Array, error) {
	switch v := o.(type) {
	case Scalar:
		return &Array{shape: []int{1}, strides: []int{1}, data: []float64{float64(v)}}, nil
	case *Array:
		if v == nil {
			return nil, fmt.Errorf("%w: nil array", ErrInvalidInput)
		}
		return v, nil
	}
	return nil, fmt.Errorf("%w: unsupported operand %T", ErrInvalidInput, o)
}

// Float extracts a number from a Scalar or a one-element array.
func Float(o Operand) (float64, bool) {
	switch v := o.(type) {
	case Scalar:
		return float64(v), true
	case *Array:
		if v != nil && len(v.data) == 1 {
			return v.data[0], true
		}
	}
	return 0, false
}

// Sum adds every element of an operand.
func Sum(o Operand) float64 {
	switch v := o.(type) {
	case Scalar:
		return float64(v)
	case *Array:
		if v != nil {
			return v.Sum()
		}
	}
	return 0
}
