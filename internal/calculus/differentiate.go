package calculus

import (
	"github.com/san-kum/ndcalc/internal/ndarray"
	"golang.org/x/sync/errgroup"
)

// Differentiate returns the gradient of f by forward differences:
//
//	df/dx_i ≈ (f(x + e·ê_i) - f(x)) / e
//
// The derived function has the same arity as f and returns the partials
// stacked along a new leading axis, in argument order.
func (f *Function) Differentiate(opts ...Option) *Function {
	g := f.derive(opts)
	g.outputDims = append(g.outputDims, f.arity)
	g.mapping = func(args []*ndarray.Array) (ndarray.Operand, error) {
		return g.gradient(f, args)
	}
	return g
}

func (g *Function) gradient(f *Function, args []*ndarray.Array) (ndarray.Operand, error) {
	point := make([]ndarray.Operand, len(args))
	for i, a := range args {
		point[i] = a
	}

	base, err := f.Call(point...)
	if err != nil {
		return nil, err
	}

	e := g.step
	partials := make([]ndarray.Operand, len(args))
	partial := func(i int) error {
		shifted := make([]ndarray.Operand, len(point))
		copy(shifted, point)
		shifted[i] = args[i].Shift(e)

		hi, err := f.Call(shifted...)
		if err != nil {
			return err
		}
		d, err := quotient(hi, base, e)
		if err != nil {
			return err
		}
		partials[i] = d
		return nil
	}

	if g.parallel {
		var eg errgroup.Group
		for i := range args {
			eg.Go(func() error { return partial(i) })
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range args {
			if err := partial(i); err != nil {
				return nil, err
			}
		}
	}

	return ndarray.Stack(partials...)
}

// quotient computes (hi - lo) / e for two results of the same function.
func quotient(hi, lo ndarray.Operand, e float64) (ndarray.Operand, error) {
	hs, hiScalar := hi.(ndarray.Scalar)
	ls, loScalar := lo.(ndarray.Scalar)
	if hiScalar && loScalar {
		return (hs - ls) / ndarray.Scalar(e), nil
	}

	left, err := ndarray.AsArray(hi)
	if err != nil {
		return nil, err
	}
	diff, err := left.Sub(lo)
	if err != nil {
		return nil, err
	}
	return diff.Div(ndarray.Scalar(e))
}
