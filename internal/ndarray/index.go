package ndarray

import "fmt"

type indexKind int

const (
	pointIndex indexKind = iota
	rangeIndex
)

// Index is one component of a multi-axis index: a single position or a
// range with Python slice semantics. Negative positions count from the end.
type Index struct {
	kind     indexKind
	i        int
	start    int
	stop     int
	step     int
	hasStart bool
	hasStop  bool
}

// At selects a single position and drops the axis.
func At(i int) Index { return Index{kind: pointIndex, i: i} }

// Span selects [start, stop).
func Span(start, stop int) Index {
	return Index{kind: rangeIndex, start: start, stop: stop, step: 1, hasStart: true, hasStop: true}
}

// SpanStep selects [start, stop) every step elements. A negative step walks backwards.
func SpanStep(start, stop, step int) Index {
	return Index{kind: rangeIndex, start: start, stop: stop, step: step, hasStart: true, hasStop: true}
}

// From selects [start, end).
func From(start int) Index {
	return Index{kind: rangeIndex, start: start, step: 1, hasStart: true}
}

// To selects [0, stop).
func To(stop int) Index {
	return Index{kind: rangeIndex, stop: stop, step: 1, hasStop: true}
}

// All selects the whole axis.
func All() Index { return Index{kind: rangeIndex, step: 1} }

func (ix Index) String() string {
	if ix.kind == pointIndex {
		return fmt.Sprint(ix.i)
	}
	s := ""
	if ix.hasStart {
		s += fmt.Sprint(ix.start)
	}
	s += ":"
	if ix.hasStop {
		s += fmt.Sprint(ix.stop)
	}
	if ix.step != 1 {
		s += fmt.Sprintf(":%d", ix.step)
	}
	return s
}

// bounds resolves a range against an axis of length n and returns the first
// position, the step and the number of selected elements.
func (ix Index) bounds(n int) (start, step, count int, err error) {
	step = ix.step
	if step == 0 {
		return 0, 0, 0, fmt.Errorf("%w: slice step cannot be zero", ErrInvalidIndex)
	}

	// Backward ranges may stop one before the first element.
	lower, upper := 0, n
	if step < 0 {
		lower, upper = -1, n-1
	}
	clamp := func(v int) int {
		if v < 0 {
			v += n
			if v < lower {
				v = lower
			}
		} else if v > upper {
			v = upper
		}
		return v
	}

	var stop int
	if step > 0 {
		start, stop = 0, n
	} else {
		start, stop = n-1, -1
	}
	if ix.hasStart {
		start = clamp(ix.start)
	}
	if ix.hasStop {
		stop = clamp(ix.stop)
	}

	switch {
	case step > 0 && stop > start:
		count = (stop - start + step - 1) / step
	case step < 0 && start > stop:
		count = (start - stop - step - 1) / -step
	}
	return start, step, count, nil
}

// Get indexes the array with up to Rank components. Components are applied
// left to right; once a range has been applied, later components apply to
// every row of the ranged result. A result with no remaining axes is a
// Scalar, anything else a new *Array.
func (a *Array) Get(idx ...Index) (Operand, error) {
	if len(idx) > len(a.shape) {
		return nil, &IndexError{Shape: a.Shape(), Count: len(idx)}
	}

	offset := 0
	shape := make([]int, 0, len(a.shape))
	strides := make([]int, 0, len(a.shape))

	for axis, ix := range idx {
		n := a.shape[axis]
		if ix.kind == pointIndex {
			i := ix.i
			if i < 0 {
				i += n
			}
			if i < 0 || i >= n {
				return nil, fmt.Errorf("%w: index %d for axis %d with size %d", ErrIndexOutOfRange, ix.i, axis, n)
			}
			offset += i * a.strides[axis]
			continue
		}

		start, step, count, err := ix.bounds(n)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			offset += start * a.strides[axis]
		}
		shape = append(shape, count)
		strides = append(strides, step*a.strides[axis])
	}

	for axis := len(idx); axis < len(a.shape); axis++ {
		shape = append(shape, a.shape[axis])
		strides = append(strides, a.strides[axis])
	}

	if len(shape) == 0 {
		return Scalar(a.data[offset]), nil
	}
	return a.gather(offset, shape, strides), nil
}

// At returns the element at a full coordinate.
func (a *Array) At(coords ...int) (float64, error) {
	if len(coords) > len(a.shape) {
		return 0, &IndexError{Shape: a.Shape(), Count: len(coords)}
	}
	if len(coords) < len(a.shape) {
		return 0, fmt.Errorf("%w: need %d coordinates, got %d", ErrInvalidIndex, len(a.shape), len(coords))
	}

	idx := make([]Index, len(coords))
	for i, c := range coords {
		idx[i] = At(c)
	}
	v, err := a.Get(idx...)
	if err != nil {
		return 0, err
	}
	return float64(v.(Scalar)), nil
}
