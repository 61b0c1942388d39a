package ndarray

import "fmt"

// Stack joins operands of identical shape along a new leading axis.
// Scalars stack into a 1-D array.
func Stack(parts ...Operand) (*Array, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: nothing to stack", ErrInvalidInput)
	}

	var (
		inner []int
		data  []float64
	)
	for i, p := range parts {
		var (
			shape []int
			vals  []float64
		)
		switch v := p.(type) {
		case Scalar:
			vals = []float64{float64(v)}
		case *Array:
			if v == nil {
				return nil, fmt.Errorf("%w: nil array in stack", ErrInvalidInput)
			}
			shape, vals = v.shape, v.data
		default:
			return nil, fmt.Errorf("%w: unsupported operand %T", ErrInvalidInput, p)
		}

		if i == 0 {
			inner = shape
			data = make([]float64, 0, len(parts)*len(vals))
		} else if !equalShape(inner, shape) {
			return nil, &ShapeMismatchError{Left: inner, Right: shape}
		}
		data = append(data, vals...)
	}

	return FromFlat(append([]int{len(parts)}, inner...), data)
}
