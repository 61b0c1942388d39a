package ndarray

import "iter"

// Rows iterates over the outermost axis. Elements of a 1-D array are
// yielded as Scalar, rows of higher-rank arrays as *Array. The sequence is
// lazy and can be ranged over any number of times.
func (a *Array) Rows() iter.Seq2[int, Operand] {
	return func(yield func(int, Operand) bool) {
		for i := 0; i < a.shape[0]; i++ {
			if !yield(i, a.row(i)) {
				return
			}
		}
	}
}
