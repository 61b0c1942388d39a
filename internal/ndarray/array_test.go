package ndarray

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

var (
	threeOne       = []float64{1, 2, 3}
	twoThree       = [][]float64{{1, -2, 3}, {4, 5, -6}}
	twoTwoThree    = [][][]float64{{{-1, 2, 3}, {4, -5, 6}}, {{7, -8, 9}, {-10, 11, 12}}}
	twoTwoTwoThree = [][][][]float64{
		{{{1, 2, 3}, {4, 5, 6}}, {{7, 8, 9}, {10, 11, 12}}},
		{{{13, 14, 15}, {16, 17, 18}}, {{19, 20, 21}, {22, 23, 24}}},
	}
)

// naiveShape computes axis lengths by recursive length inspection.
func naiveShape(v any) []int {
	rv := reflect.ValueOf(v)
	var shape []int
	for rv.Kind() == reflect.Slice {
		shape = append(shape, rv.Len())
		if rv.Len() == 0 {
			break
		}
		rv = rv.Index(0)
	}
	return shape
}

func TestNew_Shape(t *testing.T) {
	tests := []struct {
		name string
		data any
	}{
		{"rank1", threeOne},
		{"rank2", twoThree},
		{"rank3", twoTwoThree},
		{"rank4", twoTwoTwoThree},
		{"ints", [][]int{{1, 2}, {3, 4}, {5, 6}}},
		{"single", []float64{5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(tt.data)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if got, want := a.Shape(), naiveShape(tt.data); !reflect.DeepEqual(got, want) {
				t.Errorf("Shape() = %v, want %v", got, want)
			}
			if a.Rank() != len(naiveShape(tt.data)) {
				t.Errorf("Rank() = %d", a.Rank())
			}
		})
	}
}

func TestNew_AnyTree(t *testing.T) {
	a, err := New([]any{[]any{1.0, 2}, []any{int8(3), uint(4)}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	want := MustNew([][]float64{{1, 2}, {3, 4}})
	if !a.Equal(want) {
		t.Errorf("got %v, want %v", a, want)
	}
}

func TestNew_NestedArrays(t *testing.T) {
	row := MustNew([]float64{1, 2, 3})
	a, err := New([]*Array{row, row})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !reflect.DeepEqual(a.Shape(), []int{2, 3}) {
		t.Errorf("unexpected shape %v", a.Shape())
	}
}

func TestNew_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		data any
	}{
		{"string", "A"},
		{"number", 3.0},
		{"nil", nil},
		{"ragged", [][]float64{{1, 2}, {3}}},
		{"mixed depth", []any{[]float64{1}, 2.0}},
		{"strings inside", []any{"a", "b"}},
		{"nil array", (*Array)(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.data)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestNew_CopiesStorage(t *testing.T) {
	src := []float64{1, 2, 3}
	a := MustNew(src)
	src[0] = 100

	if v, _ := a.At(0); v != 1 {
		t.Errorf("array aliases its input: got %v", v)
	}

	b := MustNew(a)
	if b == a || !b.Equal(a) {
		t.Error("New(*Array) should return an equal copy")
	}
}

func TestFromFlat(t *testing.T) {
	a, err := FromFlat([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("FromFlat failed: %v", err)
	}
	if v, _ := a.At(1, 0); v != 4 {
		t.Errorf("At(1, 0) = %v, want 4", v)
	}

	if _, err := FromFlat([]int{2, 2}, []float64{1, 2, 3}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for short data, got %v", err)
	}
	if _, err := FromFlat(nil, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty shape, got %v", err)
	}
}

func TestArange(t *testing.T) {
	a, err := Arange(0, 1, 0.25)
	if err != nil {
		t.Fatalf("Arange failed: %v", err)
	}
	if !a.Equal(MustNew([]float64{0, 0.25, 0.5, 0.75})) {
		t.Errorf("unexpected arange %v", a)
	}

	if _, err := Arange(0, 1, 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected error for zero step, got %v", err)
	}
}

func TestString(t *testing.T) {
	a := MustNew([][]float64{{1, 2}, {3, 4.5}})
	if got, want := a.String(), "Array([[1 2] [3 4.5]])"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestJSON(t *testing.T) {
	a := MustNew(twoTwoThree)
	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if got, want := string(b), "[[[-1,2,3],[4,-5,6]],[[7,-8,9],[-10,11,12]]]"; got != want {
		t.Errorf("json = %s, want %s", got, want)
	}

	var decoded Array
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !decoded.Equal(a) {
		t.Errorf("decoded %v, want %v", &decoded, a)
	}
}

func TestRows(t *testing.T) {
	a := MustNew(twoThree)

	count := 0
	for i, row := range a.Rows() {
		r, ok := row.(*Array)
		if !ok {
			t.Fatalf("row %d is %T, want *Array", i, row)
		}
		want, _ := a.Get(At(i))
		if !r.Equal(want.(*Array)) {
			t.Errorf("row %d = %v, want %v", i, r, want)
		}
		count++
	}
	if count != 2 {
		t.Errorf("iterated %d rows, want 2", count)
	}

	// restartable
	count = 0
	for range a.Rows() {
		count++
	}
	if count != 2 {
		t.Errorf("second pass iterated %d rows, want 2", count)
	}

	for i, v := range MustNew(threeOne).Rows() {
		if v != Scalar(threeOne[i]) {
			t.Errorf("element %d = %v, want Scalar(%v)", i, v, threeOne[i])
		}
	}
}
