// Package ndarray provides a dense N-dimensional numeric array.
//
// The package is built around two types:
//
//   - [Array]: an immutable, rectangular, row-major float64 container
//   - [Operand]: a tagged variant holding either a [Scalar] or an [*Array]
//
// Arrays are constructed from nested Go slices with [New], or from flat
// storage with [FromFlat]. Every operation returns a new Array; the
// receiver is never modified.
//
// # Indexing
//
// [Array.Get] accepts one component per axis, each either an integer
// ([At]) or a range ([Span], [From], [To], [All]). Integer components drop
// their axis, range components keep it:
//
//	a := ndarray.MustNew([][]float64{{1, 2, 3}, {4, 5, 6}})
//	col, _ := a.Get(ndarray.All(), ndarray.At(0)) // Array([1 4])
//	v, _ := a.Get(ndarray.At(1), ndarray.At(2))   // Scalar(6)
//
// # Broadcasting
//
// Element-wise operators accept a right operand that is a Scalar, an Array
// of identical shape, or an Array whose leading axis matches the left
// operand's second axis (row broadcast). Anything else is a
// [ShapeMismatchError].
//
// # Transposition
//
// [Array.Permute] reorders axes of an array of any rank by permuting its
// strides; [Array.Transpose] reverses them.
package ndarray
