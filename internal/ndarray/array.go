package ndarray

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Array is a dense, rectangular, row-major array of float64 values.
// The zero value is not usable; construct arrays with New or FromFlat.
type Array struct {
	shape   []int
	strides []int
	data    []float64
}

// New builds an array from a nested sequence. Accepted inputs are slices or
// Go arrays of any numeric kind (nested to any depth), []any trees whose
// leaves are numbers, and *Array values, which are copied. Ragged input and
// non-sequence input fail with ErrInvalidInput.
func New(data any) (*Array, error) {
	switch v := data.(type) {
	case *Array:
		if v == nil {
			return nil, fmt.Errorf("%w: nil array", ErrInvalidInput)
		}
		return v.clone(), nil
	case []float64:
		return FromFlat([]int{len(v)}, v)
	}

	rv := reflect.ValueOf(data)
	if !isSequence(rv) {
		return nil, fmt.Errorf("%w: %T is not a sequence", ErrInvalidInput, data)
	}

	shape := inferShape(rv)
	flat := make([]float64, 0, product(shape))
	flat, err := flatten(rv, shape, 0, flat)
	if err != nil {
		return nil, err
	}

	return &Array{shape: shape, strides: contiguousStrides(shape), data: flat}, nil
}

// MustNew is like New but panics on error. It is intended for literals.
func MustNew(data any) *Array {
	a, err := New(data)
	if err != nil {
		panic(err)
	}
	return a
}

// FromFlat builds an array of the given shape from row-major data.
// The data is copied.
func FromFlat(shape []int, data []float64) (*Array, error) {
	if err := validateShape(shape); err != nil {
		return nil, err
	}
	if n := product(shape); n != len(data) {
		return nil, fmt.Errorf("%w: shape %v needs %d values, got %d", ErrInvalidInput, shape, n, len(data))
	}

	s := make([]int, len(shape))
	copy(s, shape)
	d := make([]float64, len(data))
	copy(d, data)
	return &Array{shape: s, strides: contiguousStrides(s), data: d}, nil
}

// Full returns an array of the given shape with every element set to v.
func Full(shape []int, v float64) (*Array, error) {
	if err := validateShape(shape); err != nil {
		return nil, err
	}
	data := make([]float64, product(shape))
	for i := range data {
		data[i] = v
	}
	return FromFlat(shape, data)
}

func Zeros(shape []int) (*Array, error) {
	return Full(shape, 0)
}

// Arange returns the 1-D array start, start+step, ... stopping before stop.
func Arange(start, stop, step float64) (*Array, error) {
	if step == 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("%w: arange step %v", ErrInvalidInput, step)
	}
	n := int(math.Ceil((stop - start) / step))
	if n < 0 {
		n = 0
	}
	data := make([]float64, n)
	for i := range data {
		data[i] = start + float64(i)*step
	}
	return FromFlat([]int{n}, data)
}

// Shape returns the length of each axis. The returned slice is a copy.
func (a *Array) Shape() []int {
	s := make([]int, len(a.shape))
	copy(s, a.shape)
	return s
}

// Rank returns the number of axes.
func (a *Array) Rank() int { return len(a.shape) }

// Size returns the total number of elements.
func (a *Array) Size() int { return len(a.data) }

// Len returns the length of the outermost axis.
func (a *Array) Len() int { return a.shape[0] }

// Data returns a row-major copy of the elements.
func (a *Array) Data() []float64 {
	d := make([]float64, len(a.data))
	copy(d, a.data)
	return d
}

// Nested returns the elements as nested []any slices of float64,
// mirroring the array's shape.
func (a *Array) Nested() any {
	return a.nested(0, 0)
}

func (a *Array) nested(axis, offset int) any {
	n := a.shape[axis]
	out := make([]any, n)
	for i := 0; i < n; i++ {
		pos := offset + i*a.strides[axis]
		if axis == len(a.shape)-1 {
			out[i] = a.data[pos]
		} else {
			out[i] = a.nested(axis+1, pos)
		}
	}
	return out
}

// Equal reports whether both arrays have the same shape and elements.
func (a *Array) Equal(b *Array) bool {
	if b == nil || !equalShape(a.shape, b.shape) {
		return false
	}
	for i := range a.data {
		if a.data[i] != b.data[i] {
			return false
		}
	}
	return true
}

// AllClose reports whether both arrays have the same shape and every pair of
// elements differs by at most tol.
func (a *Array) AllClose(b *Array, tol float64) bool {
	if b == nil || !equalShape(a.shape, b.shape) {
		return false
	}
	for i := range a.data {
		if math.Abs(a.data[i]-b.data[i]) > tol {
			return false
		}
	}
	return true
}

func (a *Array) String() string {
	var sb strings.Builder
	sb.WriteString("Array(")
	a.format(&sb, 0, 0)
	sb.WriteString(")")
	return sb.String()
}

func (a *Array) format(sb *strings.Builder, axis, offset int) {
	sb.WriteByte('[')
	for i := 0; i < a.shape[axis]; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		pos := offset + i*a.strides[axis]
		if axis == len(a.shape)-1 {
			sb.WriteString(strconv.FormatFloat(a.data[pos], 'g', -1, 64))
		} else {
			a.format(sb, axis+1, pos)
		}
	}
	sb.WriteByte(']')
}

// MarshalJSON encodes the array as nested JSON arrays.
func (a *Array) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Nested())
}

// UnmarshalJSON decodes nested JSON arrays of numbers.
func (a *Array) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	decoded, err := New(raw)
	if err != nil {
		return err
	}
	*a = *decoded
	return nil
}

func (a *Array) clone() *Array {
	c, _ := FromFlat(a.shape, a.data)
	return c
}

// row returns element i of the outermost axis without bounds checks.
func (a *Array) row(i int) Operand {
	if len(a.shape) == 1 {
		return Scalar(a.data[i])
	}
	return a.subArray(i)
}

func (a *Array) subArray(i int) *Array {
	stride := a.strides[0]
	shape := make([]int, len(a.shape)-1)
	copy(shape, a.shape[1:])
	data := make([]float64, stride)
	copy(data, a.data[i*stride:(i+1)*stride])
	return &Array{shape: shape, strides: contiguousStrides(shape), data: data}
}

// gather materialises the strided view starting at offset into a new
// contiguous array.
func (a *Array) gather(offset int, shape, strides []int) *Array {
	out := &Array{shape: shape, strides: contiguousStrides(shape), data: make([]float64, product(shape))}
	if len(out.data) == 0 {
		return out
	}

	pos := make([]int, len(shape))
	src := offset
	for k := range out.data {
		out.data[k] = a.data[src]
		for d := len(shape) - 1; d >= 0; d-- {
			pos[d]++
			src += strides[d]
			if pos[d] < shape[d] {
				break
			}
			src -= strides[d] * shape[d]
			pos[d] = 0
		}
	}
	return out
}

func validateShape(shape []int) error {
	if len(shape) == 0 {
		return fmt.Errorf("%w: shape must have at least one axis", ErrInvalidInput)
	}
	for _, d := range shape {
		if d < 0 {
			return fmt.Errorf("%w: negative dimension in shape %v", ErrInvalidInput, shape)
		}
	}
	return nil
}

// contiguousStrides computes row-major element strides for shape.
func contiguousStrides(shape []int) []int {
	if len(shape) == 0 {
		return nil
	}
	strides := make([]int, len(shape))
	strides[len(shape)-1] = 1
	for i := len(shape) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * shape[i+1]
	}
	return strides
}

func product(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

func equalShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var arrayType = reflect.TypeOf((*Array)(nil))

func deref(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	return v
}

func isSequence(v reflect.Value) bool {
	v = deref(v)
	if !v.IsValid() {
		return false
	}
	if v.Type() == arrayType {
		return !v.IsNil()
	}
	return v.Kind() == reflect.Slice || v.Kind() == reflect.Array
}

// inferShape descends the first element at each depth until it reaches a
// leaf. Nested *Array values contribute their whole shape.
func inferShape(v reflect.Value) []int {
	var shape []int
	for {
		v = deref(v)
		if !isSequence(v) {
			return shape
		}
		if v.Type() == arrayType {
			return append(shape, v.Interface().(*Array).shape...)
		}
		shape = append(shape, v.Len())
		if v.Len() == 0 {
			return shape
		}
		v = v.Index(0)
	}
}

func flatten(v reflect.Value, shape []int, depth int, out []float64) ([]float64, error) {
	v = deref(v)

	if depth == len(shape) {
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("%w: non-numeric leaf at depth %d", ErrInvalidInput, depth)
		}
		return append(out, f), nil
	}

	if !isSequence(v) {
		return nil, fmt.Errorf("%w: ragged input at depth %d", ErrInvalidInput, depth)
	}

	if v.Type() == arrayType {
		sub := v.Interface().(*Array)
		if !equalShape(sub.shape, shape[depth:]) {
			return nil, fmt.Errorf("%w: ragged input at depth %d", ErrInvalidInput, depth)
		}
		return append(out, sub.data...), nil
	}

	if v.Len() != shape[depth] {
		return nil, fmt.Errorf("%w: ragged input at depth %d: length %d, expected %d", ErrInvalidInput, depth, v.Len(), shape[depth])
	}

	var err error
	for i := 0; i < v.Len(); i++ {
		out, err = flatten(v.Index(i), shape, depth+1, out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func toFloat(v reflect.Value) (float64, bool) {
	if !v.IsValid() {
		return 0, false
	}
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint()), true
	case reflect.Bool:
		if v.Bool() {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
