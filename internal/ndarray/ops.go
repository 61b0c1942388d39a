package ndarray

import (
	"fmt"
	"math"
)

// BinaryOp combines two elements.
type BinaryOp func(x, y float64) float64

// UnaryOp transforms one element.
type UnaryOp func(x float64) float64

func add(x, y float64) float64 { return x + y }
func sub(x, y float64) float64 { return x - y }
func mul(x, y float64) float64 { return x * y }
func div(x, y float64) float64 { return x / y }

func boolean(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func eq(x, y float64) float64 { return boolean(x == y) }
func ne(x, y float64) float64 { return boolean(x != y) }
func lt(x, y float64) float64 { return boolean(x < y) }
func le(x, y float64) float64 { return boolean(x <= y) }
func gt(x, y float64) float64 { return boolean(x > y) }
func ge(x, y float64) float64 { return boolean(x >= y) }

func (a *Array) Add(o Operand) (*Array, error) { return resolve(add, a, o) }
func (a *Array) Sub(o Operand) (*Array, error) { return resolve(sub, a, o) }
func (a *Array) Mul(o Operand) (*Array, error) { return resolve(mul, a, o) }

// Div divides element-wise. Division by zero follows IEEE 754.
func (a *Array) Div(o Operand) (*Array, error) { return resolve(div, a, o) }

func (a *Array) Pow(o Operand) (*Array, error) { return resolve(math.Pow, a, o) }

// Comparisons yield 1 where the relation holds and 0 elsewhere.

func (a *Array) Eq(o Operand) (*Array, error) { return resolve(eq, a, o) }
func (a *Array) Ne(o Operand) (*Array, error) { return resolve(ne, a, o) }
func (a *Array) Lt(o Operand) (*Array, error) { return resolve(lt, a, o) }
func (a *Array) Le(o Operand) (*Array, error) { return resolve(le, a, o) }
func (a *Array) Gt(o Operand) (*Array, error) { return resolve(gt, a, o) }
func (a *Array) Ge(o Operand) (*Array, error) { return resolve(ge, a, o) }

// Apply combines the array with o using op under the broadcasting rules.
func (a *Array) Apply(op BinaryOp, o Operand) (*Array, error) {
	return resolve(op, a, o)
}

// Map applies fn to every element.
func (a *Array) Map(fn UnaryOp) *Array {
	out := &Array{shape: a.Shape(), data: make([]float64, len(a.data))}
	out.strides = contiguousStrides(out.shape)
	for i, v := range a.data {
		out.data[i] = fn(v)
	}
	return out
}

func (a *Array) Abs() *Array { return a.Map(math.Abs) }

func (a *Array) Neg() *Array {
	return a.Map(func(x float64) float64 { return -x })
}

// Shift adds k to every element.
func (a *Array) Shift(k float64) *Array {
	return a.Map(func(x float64) float64 { return x + k })
}

// Scale multiplies every element by k.
func (a *Array) Scale(k float64) *Array {
	return a.Map(func(x float64) float64 { return x * k })
}

func (a *Array) Sum() float64 {
	sum := 0.0
	for _, v := range a.data {
		sum += v
	}
	return sum
}

// resolve picks the broadcasting rule for the operand pair:
//  1. scalar right operand: op against every element
//  2. identical shapes: op pairwise
//  3. left rank greater and left.shape[1] == right.shape[0]: each outer row
//     of left is combined with the whole right operand, recursively
//
// Anything else is a ShapeMismatchError.
func resolve(op BinaryOp, left *Array, right Operand) (*Array, error) {
	switch r := right.(type) {
	case Scalar:
		return left.Map(func(x float64) float64 { return op(x, float64(r)) }), nil

	case *Array:
		if r == nil {
			return nil, fmt.Errorf("%w: nil array operand", ErrInvalidInput)
		}

		if equalShape(left.shape, r.shape) {
			out := &Array{shape: left.Shape(), strides: contiguousStrides(left.shape), data: make([]float64, len(left.data))}
			for i := range left.data {
				out.data[i] = op(left.data[i], r.data[i])
			}
			return out, nil
		}

		if len(left.shape) > len(r.shape) && left.shape[1] == r.shape[0] {
			return broadcastRows(op, left, r)
		}

		return nil, &ShapeMismatchError{Left: left.Shape(), Right: r.Shape()}
	}

	return nil, fmt.Errorf("%w: unsupported operand %T", ErrInvalidInput, right)
}

func broadcastRows(op BinaryOp, left, right *Array) (*Array, error) {
	n := left.shape[0]
	var (
		data     []float64
		rowShape []int
	)
	for i := 0; i < n; i++ {
		res, err := resolve(op, left.subArray(i), right)
		if err != nil {
			// Report the operands the caller passed, not the inner rows.
			return nil, &ShapeMismatchError{Left: left.Shape(), Right: right.Shape()}
		}
		if data == nil {
			rowShape = res.shape
			data = make([]float64, 0, n*len(res.data))
		}
		data = append(data, res.data...)
	}

	if n == 0 {
		return FromFlat(left.shape, nil)
	}
	return FromFlat(append([]int{n}, rowShape...), data)
}
