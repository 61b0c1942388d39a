package calculus

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch indicates a call with the wrong number of arguments.
	ErrDimensionMismatch = errors.New("calculus: number of arguments does not match function dimension")

	// ErrInvalidFunction indicates a nil mapping or an arity below one.
	ErrInvalidFunction = errors.New("calculus: invalid function definition")

	// ErrInvalidStep indicates a step that is not a positive finite number.
	ErrInvalidStep = errors.New("calculus: step must be a positive finite number")

	// ErrInvalidBounds indicates integration bounds that cannot be used.
	ErrInvalidBounds = errors.New("calculus: invalid integration bounds")
)

// DimensionMismatchError reports the required and supplied argument counts.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("function requires %d arguments, got %d", e.Want, e.Got)
}

func (e *DimensionMismatchError) Unwrap() error {
	return ErrDimensionMismatch
}
