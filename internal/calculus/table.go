package calculus

import (
	"fmt"

	"github.com/san-kum/ndcalc/internal/ndarray"
)

// Table holds f, its gradient and its diagonal antiderivative sampled
// along the diagonal t = x_1 = ... = x_n.
type Table struct {
	Columns []string
	Rows    [][]float64
}

// Column returns the values of the named column.
func (t *Table) Column(name string) ([]float64, bool) {
	for j, c := range t.Columns {
		if c != name {
			continue
		}
		out := make([]float64, len(t.Rows))
		for i, row := range t.Rows {
			out[i] = row[j]
		}
		return out, true
	}
	return nil, false
}

// Tabulate samples f on the integration grid of [lower, upper), keeping at
// most maxRows evenly spaced rows. Columns are t, f, df0..df{n-1} and F,
// the running diagonal integral. Vector-valued samples are summed.
func Tabulate(f *Function, lower, upper float64, maxRows int) (*Table, error) {
	if maxRows < 1 {
		maxRows = 1
	}

	grad := f.Differentiate()
	antiderivative, err := f.Integrate(WithQuadrature(Diagonal)).CallValues(lower, upper)
	if err != nil {
		return nil, err
	}
	cumulative, err := ndarray.AsArray(antiderivative)
	if err != nil {
		return nil, err
	}
	running := cumulative.Data()

	n, err := steps(lower, upper, f.step)
	if err != nil {
		return nil, err
	}
	if n != len(running) {
		return nil, fmt.Errorf("%w: sampled %d points, integrated %d", ErrInvalidBounds, n, len(running))
	}
	stride := (n + maxRows - 1) / maxRows
	if stride < 1 {
		stride = 1
	}

	table := &Table{Columns: []string{"t", "f"}}
	for i := 0; i < f.arity; i++ {
		table.Columns = append(table.Columns, fmt.Sprintf("df%d", i))
	}
	table.Columns = append(table.Columns, "F")

	point := make([]ndarray.Operand, f.arity)
	for k := 0; k < n; k += stride {
		t := lower + float64(k)*f.step
		for j := range point {
			point[j] = ndarray.Scalar(t)
		}

		v, err := f.Call(point...)
		if err != nil {
			return nil, err
		}
		d, err := grad.Call(point...)
		if err != nil {
			return nil, err
		}

		row := []float64{t, ndarray.Sum(v)}
		row = append(row, components(d)...)
		row = append(row, running[k])
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// components sums each partial of a stacked gradient.
func components(d ndarray.Operand) []float64 {
	arr, ok := d.(*ndarray.Array)
	if !ok {
		return []float64{ndarray.Sum(d)}
	}
	out := make([]float64, 0, arr.Len())
	for _, row := range arr.Rows() {
		out = append(out, ndarray.Sum(row))
	}
	return out
}
