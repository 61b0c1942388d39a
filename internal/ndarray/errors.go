package ndarray

import (
	"errors"
	"fmt"
)

// Domain errors for array operations.
var (
	// ErrInvalidInput indicates construction from something that is not a
	// rectangular sequence of numbers.
	ErrInvalidInput = errors.New("ndarray: invalid input (expected a rectangular numeric sequence)")

	// ErrTooManyIndices indicates more index components than the array has axes.
	ErrTooManyIndices = errors.New("ndarray: too many indices")

	// ErrIndexOutOfRange indicates an integer index outside its axis.
	ErrIndexOutOfRange = errors.New("ndarray: index out of range")

	// ErrInvalidIndex indicates a malformed index component, such as a zero step.
	ErrInvalidIndex = errors.New("ndarray: invalid index")

	// ErrShapeMismatch indicates operands that cannot be broadcast together.
	ErrShapeMismatch = errors.New("ndarray: shape mismatch")

	// ErrInvalidAxes indicates an axis list that is not a permutation of the array's axes.
	ErrInvalidAxes = errors.New("ndarray: invalid axis permutation")
)

// IndexError reports an index with more components than the array's rank.
type IndexError struct {
	Shape []int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("too many indices: at most %d for shape %v, found %d", len(e.Shape), e.Shape, e.Count)
}

func (e *IndexError) Unwrap() error {
	return ErrTooManyIndices
}

// ShapeMismatchError reports the shapes of two operands that could not be combined.
type ShapeMismatchError struct {
	Left  []int
	Right []int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("cannot cast arrays of shape %v and %v together", e.Left, e.Right)
}

func (e *ShapeMismatchError) Unwrap() error {
	return ErrShapeMismatch
}
