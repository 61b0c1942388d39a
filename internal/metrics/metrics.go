package metrics

import (
	"math"
	"strings"

	"github.com/san-kum/ndcalc/internal/calculus"
)

// Sample is one row of a sampled function: the abscissa, the value and
// the gradient components.
type Sample struct {
	T    float64
	F    float64
	Grad []float64
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// Defaults returns the metrics stored with every run.
func Defaults() []Metric {
	return []Metric{NewMeanValue(), NewMaxGradNorm(), NewFinite()}
}

// Summarize feeds every row of table to each metric and collects the values
// by name. Metrics are reset first.
func Summarize(table *calculus.Table, ms ...Metric) map[string]float64 {
	ti, fi := -1, -1
	var gi []int
	for j, c := range table.Columns {
		switch {
		case c == "t":
			ti = j
		case c == "f":
			fi = j
		case strings.HasPrefix(c, "df"):
			gi = append(gi, j)
		}
	}

	for _, m := range ms {
		m.Reset()
	}
	for _, row := range table.Rows {
		s := Sample{Grad: make([]float64, len(gi))}
		if ti >= 0 {
			s.T = row[ti]
		}
		if fi >= 0 {
			s.F = row[fi]
		}
		for k, j := range gi {
			s.Grad[k] = row[j]
		}
		for _, m := range ms {
			m.Observe(s)
		}
	}

	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

type MeanValue struct {
	sum     float64
	samples int
}

func NewMeanValue() *MeanValue { return &MeanValue{} }

func (m *MeanValue) Name() string { return "mean_f" }

func (m *MeanValue) Observe(s Sample) {
	m.sum += s.F
	m.samples++
}

func (m *MeanValue) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanValue) Reset() {
	m.sum = 0
	m.samples = 0
}

// MaxGradNorm tracks the largest Euclidean norm of the gradient.
type MaxGradNorm struct {
	max float64
}

func NewMaxGradNorm() *MaxGradNorm { return &MaxGradNorm{} }

func (m *MaxGradNorm) Name() string { return "max_grad_norm" }

func (m *MaxGradNorm) Observe(s Sample) {
	var sq float64
	for _, g := range s.Grad {
		sq += g * g
	}
	m.max = math.Max(m.max, math.Sqrt(sq))
}

func (m *MaxGradNorm) Value() float64 { return m.max }

func (m *MaxGradNorm) Reset() { m.max = 0 }

// Finite is the fraction of samples whose value and gradient are all finite.
type Finite struct {
	violations int
	samples    int
}

func NewFinite() *Finite { return &Finite{} }

func (f *Finite) Name() string { return "finite" }

func (f *Finite) Observe(s Sample) {
	f.samples++
	if !isFinite(s.F) {
		f.violations++
		return
	}
	for _, g := range s.Grad {
		if !isFinite(g) {
			f.violations++
			return
		}
	}
}

func (f *Finite) Value() float64 {
	if f.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(f.violations)/float64(f.samples)
}

func (f *Finite) Reset() {
	f.violations = 0
	f.samples = 0
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
