package calculus

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/ndcalc/internal/ndarray"
)

type entry struct {
	arity       int
	description string
	mapping     Mapping
}

// Registry holds named functions for the command line and presets.
type Registry struct {
	functions map[string]entry
}

func square(x float64) float64 { return x * x }
func cube(x float64) float64   { return x * x * x }

func NewRegistry() *Registry {
	r := &Registry{functions: make(map[string]entry)}

	r.Register("sumsq", 2, "x^2 + y^2", func(args []*ndarray.Array) (ndarray.Operand, error) {
		return args[0].Map(square).Add(args[1].Map(square))
	})
	r.Register("product", 2, "x * y", func(args []*ndarray.Array) (ndarray.Operand, error) {
		return args[0].Mul(args[1])
	})
	r.Register("cubic", 1, "x^3", func(args []*ndarray.Array) (ndarray.Operand, error) {
		return args[0].Map(cube), nil
	})
	r.Register("norm3", 3, "x^2 + y^2 + z^2", func(args []*ndarray.Array) (ndarray.Operand, error) {
		xy, err := args[0].Map(square).Add(args[1].Map(square))
		if err != nil {
			return nil, err
		}
		return xy.Add(args[2].Map(square))
	})
	r.Register("paraboloid", 2, "x^2 - 2xy + 3y^2", func(args []*ndarray.Array) (ndarray.Operand, error) {
		x, y := args[0], args[1]
		xy, err := x.Mul(y)
		if err != nil {
			return nil, err
		}
		out, err := x.Map(square).Sub(xy.Scale(2))
		if err != nil {
			return nil, err
		}
		return out.Add(y.Map(square).Scale(3))
	})
	r.Register("wave", 2, "sin(x) * cos(y)", func(args []*ndarray.Array) (ndarray.Operand, error) {
		return args[0].Map(math.Sin).Mul(args[1].Map(math.Cos))
	})

	return r
}

// Register adds or replaces a named function.
func (r *Registry) Register(name string, arity int, description string, m Mapping) {
	r.functions[name] = entry{arity: arity, description: description, mapping: m}
}

// Get builds the named function with opts applied.
func (r *Registry) Get(name string, opts ...Option) (*Function, error) {
	e, ok := r.functions[name]
	if !ok {
		return nil, fmt.Errorf("unknown function: %s", name)
	}
	return New(e.arity, e.mapping, opts...)
}

func (r *Registry) Describe(name string) (arity int, description string, ok bool) {
	e, ok := r.functions[name]
	return e.arity, e.description, ok
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
