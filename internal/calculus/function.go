package calculus

import (
	"fmt"
	"math"

	"github.com/san-kum/ndcalc/internal/ndarray"
)

// Mapping is the wrapped computation. It receives exactly Arity arrays.
type Mapping func(args []*ndarray.Array) (ndarray.Operand, error)

// Function is a numeric function of a fixed number of array arguments.
// Functions are immutable and safe for concurrent use as long as their
// mapping is.
type Function struct {
	mapping    Mapping
	arity      int
	step       float64
	outputDims []int
	quadrature Quadrature
	parallel   bool

	// err is set on derived functions built with invalid options and is
	// returned by every Call.
	err error
}

// New wraps mapping as a function of arity arguments.
func New(arity int, mapping Mapping, opts ...Option) (*Function, error) {
	if mapping == nil {
		return nil, fmt.Errorf("%w: nil mapping", ErrInvalidFunction)
	}
	if arity < 1 {
		return nil, fmt.Errorf("%w: arity %d", ErrInvalidFunction, arity)
	}

	f := &Function{mapping: mapping, arity: arity, step: DefaultStep}
	for _, opt := range opts {
		opt(f)
	}
	if err := validateStep(f.step); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Function) Arity() int { return f.arity }

func (f *Function) Step() float64 { return f.step }

// OutputDims returns the shape of one output sample, nil for scalar fields.
func (f *Function) OutputDims() []int {
	return append([]int(nil), f.outputDims...)
}

func (f *Function) Quadrature() Quadrature { return f.quadrature }

// Call evaluates the function. Scalars are coerced to one-element arrays
// before the mapping runs, and a one-element 1-D result is returned as a
// Scalar.
func (f *Function) Call(args ...ndarray.Operand) (ndarray.Operand, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(args) != f.arity {
		return nil, &DimensionMismatchError{Want: f.arity, Got: len(args)}
	}

	in := make([]*ndarray.Array, len(args))
	for i, arg := range args {
		a, err := ndarray.AsArray(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in[i] = a
	}

	out, err := f.mapping(in)
	if err != nil {
		return nil, err
	}
	return normalize(out)
}

// CallValues is Call with scalar arguments.
func (f *Function) CallValues(xs ...float64) (ndarray.Operand, error) {
	args := make([]ndarray.Operand, len(xs))
	for i, x := range xs {
		args[i] = ndarray.Scalar(x)
	}
	return f.Call(args...)
}

// With returns a copy of f with opts applied. The mapping is shared.
func (f *Function) With(opts ...Option) *Function {
	g := f.derive(opts)
	g.mapping = f.mapping
	return g
}

// derive copies the receiver's settings and applies opts for a derived
// function. The mapping is filled in by the caller.
func (f *Function) derive(opts []Option) *Function {
	g := &Function{
		arity:      f.arity,
		step:       f.step,
		outputDims: f.OutputDims(),
		quadrature: f.quadrature,
		parallel:   f.parallel,
		err:        f.err,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.err == nil {
		g.err = validateStep(g.step)
	}
	return g
}

func normalize(out ndarray.Operand) (ndarray.Operand, error) {
	switch v := out.(type) {
	case ndarray.Scalar:
		return v, nil
	case *ndarray.Array:
		if v == nil {
			return nil, fmt.Errorf("%w: mapping returned a nil array", ErrInvalidFunction)
		}
		if v.Rank() == 1 && v.Size() == 1 {
			x, _ := ndarray.Float(v)
			return ndarray.Scalar(x), nil
		}
		return v, nil
	}
	return nil, fmt.Errorf("%w: mapping returned %T", ErrInvalidFunction, out)
}

func validateStep(e float64) error {
	if !(e > 0) || math.IsInf(e, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidStep, e)
	}
	return nil
}
