package calculus

import (
	"fmt"
	"math"

	"github.com/san-kum/ndcalc/internal/ndarray"
)

// Integrate returns a function of (lower, upper) approximating the
// integral of f with a left Riemann sum of step e. Each evaluation of f
// contributes the sum of its components, so vector-valued functions such
// as gradients are integrated along the all-ones direction.
//
// With Diagonal quadrature (the default) every input advances together
// from lower to upper, only the first element of each bound is used, and
// the result is the running sum at every step: a numerical antiderivative
// sampled at resolution e. With Nested quadrature each bound may hold one
// value per input dimension and the result is the total over the grid.
//
// The upper bound is exclusive. An empty range integrates to an empty
// array (Diagonal) or zero (Nested). A sweep that would evaluate f more
// than MaxSteps times fails with ErrInvalidBounds.
func (f *Function) Integrate(opts ...Option) *Function {
	g := f.derive(opts)
	g.arity = 2
	g.outputDims = nil
	g.mapping = func(args []*ndarray.Array) (ndarray.Operand, error) {
		lower, upper := args[0], args[1]
		if g.quadrature == Nested {
			return g.sweepNested(f, lower, upper)
		}
		return g.sweepDiagonal(f, lower, upper)
	}
	return g
}

func (g *Function) sweepDiagonal(f *Function, lower, upper *ndarray.Array) (ndarray.Operand, error) {
	if lower.Size() == 0 || upper.Size() == 0 {
		return nil, fmt.Errorf("%w: empty bound", ErrInvalidBounds)
	}
	lo, hi := lower.Data()[0], upper.Data()[0]
	if err := checkFinite(lo, hi); err != nil {
		return nil, err
	}

	e := g.step
	n, err := steps(lo, hi, e)
	if err != nil {
		return nil, err
	}
	cumulative := make([]float64, n)
	point := make([]ndarray.Operand, f.arity)
	total := 0.0

	for k := 0; k < n; k++ {
		t := ndarray.Scalar(lo + float64(k)*e)
		for j := range point {
			point[j] = t
		}
		v, err := f.Call(point...)
		if err != nil {
			return nil, err
		}
		total += ndarray.Sum(v) * e
		cumulative[k] = total
	}

	return ndarray.FromFlat([]int{n}, cumulative)
}

func (g *Function) sweepNested(f *Function, lower, upper *ndarray.Array) (ndarray.Operand, error) {
	los, err := expandBound(lower, f.arity)
	if err != nil {
		return nil, err
	}
	his, err := expandBound(upper, f.arity)
	if err != nil {
		return nil, err
	}
	if err := checkFinite(append(los, his...)...); err != nil {
		return nil, err
	}

	e := g.step
	counts := make([]int, f.arity)
	points := 1
	for i := range counts {
		counts[i], err = steps(los[i], his[i], e)
		if err != nil {
			return nil, err
		}
		if counts[i] == 0 {
			return ndarray.Scalar(0), nil
		}
		if points > MaxSteps/counts[i] {
			return nil, fmt.Errorf("%w: grid exceeds %d points at step %v", ErrInvalidBounds, MaxSteps, e)
		}
		points *= counts[i]
	}

	cell := math.Pow(e, float64(f.arity))
	pos := make([]int, f.arity)
	point := make([]ndarray.Operand, f.arity)
	total := 0.0

	for {
		for i := range point {
			point[i] = ndarray.Scalar(los[i] + float64(pos[i])*e)
		}
		v, err := f.Call(point...)
		if err != nil {
			return nil, err
		}
		total += ndarray.Sum(v) * cell

		d := len(pos) - 1
		for ; d >= 0; d-- {
			pos[d]++
			if pos[d] < counts[d] {
				break
			}
			pos[d] = 0
		}
		if d < 0 {
			break
		}
	}

	return ndarray.Scalar(total), nil
}

// steps returns how many left endpoints lo + k*e lie below hi. It is
// computed once so the sweep does not accumulate floating-point drift.
func steps(lo, hi, e float64) (int, error) {
	if !(hi > lo) {
		return 0, nil
	}
	n := math.Ceil((hi-lo)/e - 1e-9)
	if math.IsNaN(n) || math.IsInf(n, 0) || n > MaxSteps {
		return 0, fmt.Errorf("%w: [%v, %v) needs more than %d steps of %v", ErrInvalidBounds, lo, hi, MaxSteps, e)
	}
	return int(n), nil
}

// Final returns the last value of an integral: the total of a Nested
// result or the final entry of a Diagonal running sum. An empty result
// is zero.
func Final(out ndarray.Operand) float64 {
	if v, ok := ndarray.Float(out); ok {
		return v
	}
	arr, ok := out.(*ndarray.Array)
	if !ok || arr == nil || arr.Size() == 0 {
		return 0
	}
	data := arr.Data()
	return data[len(data)-1]
}

// expandBound returns one bound per dimension. A single value applies to
// every dimension.
func expandBound(b *ndarray.Array, dims int) ([]float64, error) {
	vals := b.Data()
	switch len(vals) {
	case 1:
		out := make([]float64, dims)
		for i := range out {
			out[i] = vals[0]
		}
		return out, nil
	case dims:
		return vals, nil
	}
	return nil, fmt.Errorf("%w: got %d values for %d dimensions", ErrInvalidBounds, len(vals), dims)
}

func checkFinite(vs ...float64) error {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %v", ErrInvalidBounds, v)
		}
	}
	return nil
}
