package viz

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/ndcalc/internal/calculus"
	"github.com/san-kum/ndcalc/internal/ndarray"
)

const (
	minStep         = 1e-5
	maxStep         = 1.0
	maxGridPoints   = 2_000_000
	historyCapacity = 64
)

// Explorer is a Bubble Tea model that re-evaluates one function each time
// the step size or quadrature changes.
type Explorer struct {
	name         string
	fn           *calculus.Function
	point        []float64
	lower, upper float64
	initialStep  float64
	step         float64
	quadrature   calculus.Quadrature
	parallel     bool

	gradient   []float64
	gradError  float64
	integral   float64
	integrals  []float64
	gradErrors []float64
	err        error
}

// NewExplorer evaluates fn at point and over [lower, upper) with its own
// step and quadrature as the starting configuration.
func NewExplorer(name string, fn *calculus.Function, point []float64, lower, upper float64) Explorer {
	m := Explorer{
		name:        name,
		fn:          fn,
		point:       append([]float64(nil), point...),
		lower:       lower,
		upper:       upper,
		initialStep: fn.Step(),
		step:        fn.Step(),
		quadrature:  fn.Quadrature(),
		integrals:   make([]float64, 0, historyCapacity),
		gradErrors:  make([]float64, 0, historyCapacity),
	}
	m.evaluate()
	return m
}

func (m Explorer) Init() tea.Cmd { return nil }

// Update handles key presses; every change re-runs the evaluation.
func (m Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "+", "=", "up", "k":
		m.setStep(m.step / 2)
	case "-", "_", "down", "j":
		m.setStep(m.step * 2)
	case "n":
		if m.quadrature == calculus.Diagonal {
			m.quadrature = calculus.Nested
		} else {
			m.quadrature = calculus.Diagonal
		}
		m.evaluate()
	case "p":
		m.parallel = !m.parallel
		m.evaluate()
	case "r":
		m.integrals = m.integrals[:0]
		m.gradErrors = m.gradErrors[:0]
		m.setStep(m.initialStep)
	}
	return m, nil
}

func (m *Explorer) setStep(e float64) {
	m.step = math.Max(minStep, math.Min(maxStep, e))
	m.evaluate()
}

// Step reports the current step size.
func (m Explorer) Step() float64 { return m.step }

// Quadrature reports the current integration strategy.
func (m Explorer) Quadrature() calculus.Quadrature { return m.quadrature }

// Integral reports the latest integral value.
func (m Explorer) Integral() float64 { return m.integral }

// Err reports the error of the latest evaluation, if any.
func (m Explorer) Err() error { return m.err }

func (m *Explorer) evaluate() {
	m.err = nil

	opts := []calculus.Option{
		calculus.WithStep(m.step),
		calculus.WithParallel(m.parallel),
		calculus.WithQuadrature(m.quadrature),
	}

	grad, err := gradientAt(m.fn.Differentiate(opts...), m.point)
	if err != nil {
		m.err = err
		return
	}
	half, err := gradientAt(m.fn.Differentiate(append(opts, calculus.WithStep(m.step/2))...), m.point)
	if err != nil {
		m.err = err
		return
	}
	m.gradient = grad
	m.gradError = 0
	for i := range grad {
		m.gradError = math.Max(m.gradError, math.Abs(grad[i]-half[i]))
	}

	if m.quadrature == calculus.Nested {
		n := math.Ceil((m.upper - m.lower) / m.step)
		if math.Pow(n, float64(m.fn.Arity())) > maxGridPoints {
			m.err = fmt.Errorf("nested grid too large at step %g; increase the step", m.step)
			return
		}
	}

	out, err := m.fn.Integrate(opts...).CallValues(m.lower, m.upper)
	if err != nil {
		m.err = err
		return
	}
	m.integral = calculus.Final(out)

	m.integrals = appendCapped(m.integrals, m.integral)
	m.gradErrors = appendCapped(m.gradErrors, m.gradError)
}

func gradientAt(d *calculus.Function, point []float64) ([]float64, error) {
	out, err := d.CallValues(point...)
	if err != nil {
		return nil, err
	}
	arr, err := ndarray.AsArray(out)
	if err != nil {
		return nil, err
	}
	grad := make([]float64, 0, arr.Len())
	for _, row := range arr.Rows() {
		grad = append(grad, ndarray.Sum(row))
	}
	return grad, nil
}

func appendCapped(xs []float64, v float64) []float64 {
	if len(xs) == historyCapacity {
		xs = append(xs[:0], xs[1:]...)
	}
	return append(xs, v)
}

// View renders the current evaluation.
func (m Explorer) View() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(strings.ToUpper(m.name)) + "\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Step", fmt.Sprintf("%g", m.step))
	row("Quadrature", m.quadrature.String())
	row("Parallel", fmt.Sprintf("%t", m.parallel))
	row("Point", fmt.Sprintf("%v", m.point))
	row("Bounds", fmt.Sprintf("[%g, %g)", m.lower, m.upper))

	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	} else {
		row("Gradient", formatVector(m.gradient))
		row("Grad change", fmt.Sprintf("%.3e", m.gradError))
		row("Integral", fmt.Sprintf("%.6f", m.integral))
	}

	if len(m.integrals) > 1 {
		chart := asciigraph.Plot(m.integrals, asciigraph.Height(6), asciigraph.Width(40), asciigraph.Caption("Integral"))
		s.WriteString(graphStyle.Render(chart) + "\n")
		s.WriteString(labelStyle.Render("Grad change") + Sparkline(m.gradErrors, 40) + "\n")
	}

	s.WriteString(keyHintStyle.Render("+/-:Step  N:Quadrature  P:Parallel  R:Reset  Q:Quit"))
	return lipgloss.JoinVertical(lipgloss.Left, panelStyle.Render(s.String()))
}

func formatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%.5f", x)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
