package calculus_test

import (
	"errors"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ndcalc/internal/calculus"
	"github.com/san-kum/ndcalc/internal/ndarray"
)

func sumOfSquares(opts ...calculus.Option) *calculus.Function {
	f, err := calculus.NewRegistry().Get("sumsq", opts...)
	Expect(err).NotTo(HaveOccurred())
	return f
}

func array(data any) *ndarray.Array {
	return ndarray.MustNew(data)
}

func asArray(o ndarray.Operand) *ndarray.Array {
	a, ok := o.(*ndarray.Array)
	Expect(ok).To(BeTrue(), "expected *ndarray.Array, got %T", o)
	return a
}

var _ = Describe("Function", func() {
	Describe("New", func() {
		It("rejects a nil mapping", func() {
			_, err := calculus.New(2, nil)
			Expect(err).To(MatchError(calculus.ErrInvalidFunction))
		})

		It("rejects a non-positive arity", func() {
			_, err := calculus.New(0, func([]*ndarray.Array) (ndarray.Operand, error) { return ndarray.Scalar(0), nil })
			Expect(err).To(MatchError(calculus.ErrInvalidFunction))
		})

		It("rejects a non-positive step", func() {
			_, err := calculus.NewRegistry().Get("sumsq", calculus.WithStep(0))
			Expect(err).To(MatchError(calculus.ErrInvalidStep))
		})

		It("records its arity and the default step", func() {
			f := sumOfSquares()
			Expect(f.Arity()).To(Equal(2))
			Expect(f.Step()).To(Equal(calculus.DefaultStep))
			Expect(f.OutputDims()).To(BeEmpty())
		})
	})

	Describe("Call", func() {
		It("evaluates element-wise over arrays", func() {
			out, err := sumOfSquares().Call(array([]float64{1, 2, 3}), array([]float64{1, 2, 3}))
			Expect(err).NotTo(HaveOccurred())
			Expect(asArray(out).Equal(array([]float64{2, 8, 18}))).To(BeTrue())
		})

		It("unwraps a single-element result to a scalar", func() {
			out, err := sumOfSquares().CallValues(1, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(ndarray.Scalar(5)))
		})

		It("checks the number of arguments before evaluating", func() {
			var calls atomic.Int32
			f, err := calculus.New(2, func(args []*ndarray.Array) (ndarray.Operand, error) {
				calls.Add(1)
				return args[0], nil
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = f.CallValues(1, 2, 3)
			Expect(err).To(MatchError(calculus.ErrDimensionMismatch))

			var dme *calculus.DimensionMismatchError
			Expect(errors.As(err, &dme)).To(BeTrue())
			Expect(dme.Want).To(Equal(2))
			Expect(dme.Got).To(Equal(3))
			Expect(calls.Load()).To(BeZero())
		})

		It("propagates mapping errors", func() {
			_, err := sumOfSquares().Call(array([]float64{1, 2}), array([]float64{1, 2, 3}))
			Expect(err).To(MatchError(ndarray.ErrShapeMismatch))
		})

		It("rejects nil arguments", func() {
			_, err := sumOfSquares().Call(nil, ndarray.Scalar(1))
			Expect(err).To(MatchError(ndarray.ErrInvalidInput))
		})
	})

	Describe("Differentiate", func() {
		It("approximates the gradient within the step size", func() {
			x := array([]float64{-10, -5, 0, 5, 10})
			fPrime := sumOfSquares().Differentiate()

			Expect(fPrime.Arity()).To(Equal(2))
			Expect(fPrime.OutputDims()).To(Equal([]int{2}))

			out, err := fPrime.Call(x, x)
			Expect(err).NotTo(HaveOccurred())

			grad := asArray(out)
			Expect(grad.Shape()).To(Equal([]int{2, 5}))

			want, err := ndarray.Stack(x.Scale(2), x.Scale(2))
			Expect(err).NotTo(HaveOccurred())
			Expect(grad.AllClose(want, 1.5e-2)).To(BeTrue(), "got %v", grad)
		})

		It("uses the requested step", func() {
			out, err := sumOfSquares().Differentiate(calculus.WithStep(1e-6)).CallValues(3, -4)
			Expect(err).NotTo(HaveOccurred())

			grad := asArray(out).Data()
			Expect(grad[0]).To(BeNumerically("~", 6, 1e-4))
			Expect(grad[1]).To(BeNumerically("~", -8, 1e-4))
		})

		It("does not modify the receiver", func() {
			f := sumOfSquares()
			_ = f.Differentiate(calculus.WithStep(0.5))
			Expect(f.Step()).To(Equal(calculus.DefaultStep))

			out, err := f.CallValues(1, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(ndarray.Scalar(5)))
		})

		It("gives the same result in parallel", func() {
			x := array([]float64{-2, -1, 0, 1, 2})
			y := array([]float64{3, 1, 4, 1, 5})
			f := calculus.NewRegistry()

			serial, err := f.Get("paraboloid")
			Expect(err).NotTo(HaveOccurred())
			parallel, err := f.Get("paraboloid", calculus.WithParallel(true))
			Expect(err).NotTo(HaveOccurred())

			a, err := serial.Differentiate().Call(x, y)
			Expect(err).NotTo(HaveOccurred())
			b, err := parallel.Differentiate().Call(x, y)
			Expect(err).NotTo(HaveOccurred())
			Expect(asArray(a).Equal(asArray(b))).To(BeTrue())
		})

		It("reports invalid derived steps on call", func() {
			_, err := sumOfSquares().Differentiate(calculus.WithStep(-1)).CallValues(1, 2)
			Expect(err).To(MatchError(calculus.ErrInvalidStep))
		})

		It("nests to second derivatives", func() {
			cubic, err := calculus.NewRegistry().Get("cubic", calculus.WithStep(1e-4))
			Expect(err).NotTo(HaveOccurred())

			second := cubic.Differentiate().Differentiate()
			Expect(second.OutputDims()).To(Equal([]int{1, 1}))

			out, err := second.CallValues(2)
			Expect(err).NotTo(HaveOccurred())
			v, ok := ndarray.Float(out)
			Expect(ok).To(BeTrue())
			Expect(v).To(BeNumerically("~", 12, 1e-2))
		})
	})

	Describe("Integrate", func() {
		It("returns the running diagonal sum", func() {
			out, err := sumOfSquares().Integrate().CallValues(0, 2)
			Expect(err).NotTo(HaveOccurred())

			running := asArray(out)
			Expect(running.Shape()).To(Equal([]int{200})) // (2 - 0) / 1e-2

			data := running.Data()
			for i := 1; i < len(data); i++ {
				Expect(data[i]).To(BeNumerically(">=", data[i-1]))
			}
			// f(t, t) = 2t^2 integrates to 16/3 along the diagonal.
			Expect(data[len(data)-1]).To(BeNumerically("~", 16.0/3, 0.05))
		})

		It("approaches the double integral with nested quadrature", func() {
			f := sumOfSquares()
			coarse, err := f.Integrate(calculus.WithQuadrature(calculus.Nested), calculus.WithStep(0.05)).CallValues(0, 2)
			Expect(err).NotTo(HaveOccurred())
			fine, err := f.Integrate(calculus.WithQuadrature(calculus.Nested)).CallValues(0, 2)
			Expect(err).NotTo(HaveOccurred())

			exact := 32.0 / 3
			c, _ := ndarray.Float(coarse)
			v, _ := ndarray.Float(fine)
			Expect(v).To(BeNumerically("~", exact, 0.1))
			Expect(exact - v).To(BeNumerically("<", exact-c))
		})

		It("accepts per-dimension bounds with nested quadrature", func() {
			nested := sumOfSquares().Integrate(calculus.WithQuadrature(calculus.Nested), calculus.WithStep(0.005))
			out, err := nested.Call(array([]float64{0, 0}), array([]float64{1, 2}))
			Expect(err).NotTo(HaveOccurred())

			// integral of x^2 + y^2 over [0,1]x[0,2] = 2/3 + 8/3
			v, _ := ndarray.Float(out)
			Expect(v).To(BeNumerically("~", 10.0/3, 0.05))

			_, err = nested.Call(array([]float64{0, 0, 0}), ndarray.Scalar(1))
			Expect(err).To(MatchError(calculus.ErrInvalidBounds))
		})

		It("recovers f from its derivative along the diagonal", func() {
			f := sumOfSquares()
			out, err := f.Differentiate().Integrate().CallValues(0, 2)
			Expect(err).NotTo(HaveOccurred())

			data := asArray(out).Data()
			want, err := f.CallValues(2, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(data[len(data)-1]).To(BeNumerically("~", float64(want.(ndarray.Scalar)), 0.05))
		})

		It("is a function of the two bounds", func() {
			_, err := sumOfSquares().Integrate().CallValues(0, 1, 2)
			Expect(err).To(MatchError(calculus.ErrDimensionMismatch))
		})

		It("integrates an empty range to nothing", func() {
			out, err := sumOfSquares().Integrate().CallValues(2, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(asArray(out).Size()).To(BeZero())

			out, err = sumOfSquares().Integrate(calculus.WithQuadrature(calculus.Nested)).CallValues(1, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(ndarray.Scalar(0)))
		})

		It("rejects ranges that need too many steps", func() {
			_, err := sumOfSquares().Integrate().CallValues(0, 1e18)
			Expect(err).To(MatchError(calculus.ErrInvalidBounds))

			cubic, err := calculus.NewRegistry().Get("cubic", calculus.WithQuadrature(calculus.Nested))
			Expect(err).NotTo(HaveOccurred())
			_, err = cubic.Integrate().CallValues(1, 1e18)
			Expect(err).To(MatchError(calculus.ErrInvalidBounds))
		})

		It("caps the total size of a nested grid", func() {
			f := sumOfSquares(calculus.WithQuadrature(calculus.Nested), calculus.WithStep(1e-4))
			_, err := f.Integrate().CallValues(0, 1)
			Expect(err).To(MatchError(ContainSubstring("grid exceeds")))
			Expect(err).To(MatchError(calculus.ErrInvalidBounds))
		})

		DescribeTable("Final",
			func(out ndarray.Operand, want float64) {
				Expect(calculus.Final(out)).To(Equal(want))
			},
			Entry("scalar total", ndarray.Scalar(3), 3.0),
			Entry("running sum", ndarray.MustNew([]float64{1, 2, 4}), 4.0),
			Entry("empty running sum", ndarray.MustNew([]float64{}), 0.0),
		)
	})
})

var _ = Describe("Quadrature", func() {
	DescribeTable("ParseQuadrature",
		func(in string, want calculus.Quadrature, ok bool) {
			got, err := calculus.ParseQuadrature(in)
			if !ok {
				Expect(err).To(HaveOccurred())
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
			Expect(got.String()).To(Equal(want.String()))
		},
		Entry("default", "", calculus.Diagonal, true),
		Entry("diagonal", "diagonal", calculus.Diagonal, true),
		Entry("nested", "Nested", calculus.Nested, true),
		Entry("unknown", "simpson", calculus.Diagonal, false),
	)
})

var _ = Describe("Registry", func() {
	It("lists the built-in functions in order", func() {
		Expect(calculus.NewRegistry().List()).To(Equal([]string{"cubic", "norm3", "paraboloid", "product", "sumsq", "wave"}))
	})

	It("describes functions", func() {
		arity, desc, ok := calculus.NewRegistry().Describe("norm3")
		Expect(ok).To(BeTrue())
		Expect(arity).To(Equal(3))
		Expect(desc).To(ContainSubstring("z^2"))
	})

	It("rejects unknown names", func() {
		_, err := calculus.NewRegistry().Get("nope")
		Expect(err).To(MatchError(ContainSubstring("unknown function")))
	})
})

var _ = Describe("Tabulate", func() {
	It("samples f, its gradient and its antiderivative", func() {
		f := sumOfSquares(calculus.WithStep(0.1))
		table, err := calculus.Tabulate(f, 0, 2, 5)
		Expect(err).NotTo(HaveOccurred())

		Expect(table.Columns).To(Equal([]string{"t", "f", "df0", "df1", "F"}))
		Expect(table.Rows).To(HaveLen(5))

		ts, ok := table.Column("t")
		Expect(ok).To(BeTrue())
		Expect(ts[1]).To(BeNumerically("~", 0.4, 1e-12))

		for _, row := range table.Rows {
			t := row[0]
			Expect(row[1]).To(BeNumerically("~", 2*t*t, 1e-9))
			Expect(row[2]).To(BeNumerically("~", 2*t+0.1, 1e-9))
		}

		_, ok = table.Column("missing")
		Expect(ok).To(BeFalse())
	})

	It("fails instead of allocating an unbounded table", func() {
		_, err := calculus.Tabulate(sumOfSquares(), 0, 1e18, 5)
		Expect(err).To(MatchError(calculus.ErrInvalidBounds))
	})
})
