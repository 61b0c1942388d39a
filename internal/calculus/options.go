package calculus

import (
	"fmt"
	"strings"
)

// DefaultStep is the finite-difference and Riemann step used when no
// WithStep option is given.
const DefaultStep = 1e-2

// MaxSteps bounds how many times one integration sweep may evaluate a
// function, over all dimensions of a Nested grid.
const MaxSteps = 1 << 24

// Quadrature selects how Integrate sweeps the input space.
type Quadrature int

const (
	// Diagonal advances every input together and returns the running sum.
	Diagonal Quadrature = iota
	// Nested sums over the full grid and returns the total.
	Nested
)

func (q Quadrature) String() string {
	switch q {
	case Diagonal:
		return "diagonal"
	case Nested:
		return "nested"
	}
	return fmt.Sprintf("quadrature(%d)", int(q))
}

func ParseQuadrature(s string) (Quadrature, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "diagonal":
		return Diagonal, nil
	case "nested":
		return Nested, nil
	}
	return 0, fmt.Errorf("unknown quadrature: %s", s)
}

// Option configures a Function. Options passed to Differentiate or
// Integrate apply to the derived function only.
type Option func(*Function)

// WithStep sets the step used by Differentiate and Integrate.
func WithStep(e float64) Option {
	return func(f *Function) { f.step = e }
}

// WithParallel evaluates partial derivatives concurrently.
func WithParallel(on bool) Option {
	return func(f *Function) { f.parallel = on }
}

func WithQuadrature(q Quadrature) Option {
	return func(f *Function) { f.quadrature = q }
}

// WithOutputDims records the shape of one output sample. It is metadata
// only; Call does not check it.
func WithOutputDims(dims ...int) Option {
	return func(f *Function) { f.outputDims = append([]int(nil), dims...) }
}
