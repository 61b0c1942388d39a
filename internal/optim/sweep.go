package optim

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/san-kum/ndcalc/internal/calculus"
	"golang.org/x/sync/errgroup"
)

var ErrNoSteps = errors.New("optim: no step sizes to sweep")

// Evaluator reduces a function configured with one step size to a number,
// typically an integral or a derivative component.
type Evaluator func(ctx context.Context, f *calculus.Function) (float64, error)

type Point struct {
	Step   float64
	Value  float64
	Change float64
}

// StepSweep evaluates a function at a range of step sizes, coarsest first.
type StepSweep struct {
	steps []float64
}

func NewStepSweep(steps []float64) *StepSweep {
	s := append([]float64(nil), steps...)
	sort.Sort(sort.Reverse(sort.Float64Slice(s)))
	return &StepSweep{steps: s}
}

// Halving returns n step sizes starting at start, each half the previous.
func Halving(start float64, n int) []float64 {
	steps := make([]float64, n)
	for i := range steps {
		steps[i] = start / math.Pow(2, float64(i))
	}
	return steps
}

// Run evaluates every step concurrently; the first error cancels the rest.
// Change is the absolute difference to the next coarser step and NaN for
// the first point.
func (s *StepSweep) Run(ctx context.Context, f *calculus.Function, eval Evaluator) ([]Point, error) {
	if len(s.steps) == 0 {
		return nil, ErrNoSteps
	}

	points := make([]Point, len(s.steps))
	g, ctx := errgroup.WithContext(ctx)
	for i, e := range s.steps {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := eval(ctx, f.With(calculus.WithStep(e)))
			if err != nil {
				return err
			}
			points[i] = Point{Step: e, Value: v}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	points[0].Change = math.NaN()
	for i := 1; i < len(points); i++ {
		points[i].Change = math.Abs(points[i].Value - points[i-1].Value)
	}
	return points, nil
}

// Converged returns the coarsest point whose change is at most tol.
func Converged(points []Point, tol float64) (Point, bool) {
	for _, p := range points {
		if p.Change <= tol {
			return p, true
		}
	}
	return Point{}, false
}
