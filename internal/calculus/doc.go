// Package calculus wraps numeric functions and derives new ones by finite
// differences and fixed-step Riemann sums.
//
// A [Function] maps a fixed number of array arguments to an array result:
//
//	f, _ := calculus.New(2, func(args []*ndarray.Array) (ndarray.Operand, error) {
//		x, y := args[0], args[1]
//		return x.Map(square).Add(y.Map(square))
//	})
//	v, _ := f.Call(ndarray.Scalar(1), ndarray.Scalar(2))      // Scalar(5)
//	grad, _ := f.Differentiate().Call(ndarray.Scalar(1), ndarray.Scalar(2))
//	area, _ := f.Differentiate().Integrate().Call(ndarray.Scalar(0), ndarray.Scalar(2))
//
// Differentiate and Integrate never modify the receiver; the derived
// function closes over it.
//
// # Integration
//
// The default [Diagonal] quadrature sweeps every input in lockstep along
// the line x_1 = ... = x_n and returns the running sum. For a gradient this
// is the line integral along the diagonal, so integrating a derivative
// recovers f(upper) - f(lower). [Nested] performs a true left Riemann sum
// over the hyper-rectangle and returns the total.
package calculus
