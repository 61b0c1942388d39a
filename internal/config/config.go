package config

import (
	"fmt"
	"os"

	"github.com/san-kum/ndcalc/internal/calculus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFunction   = "sumsq"
	DefaultStep       = calculus.DefaultStep
	DefaultLower      = 0.0
	DefaultUpper      = 2.0
	DefaultQuadrature = "diagonal"
	DefaultSamples    = 50
)

type Config struct {
	Function   string    `yaml:"function"`
	Step       float64   `yaml:"step"`
	Lower      float64   `yaml:"lower"`
	Upper      float64   `yaml:"upper"`
	Quadrature string    `yaml:"quadrature"`
	Parallel   bool      `yaml:"parallel"`
	Samples    int       `yaml:"samples"`
	Point      []float64 `yaml:"point,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Function:   DefaultFunction,
		Step:       DefaultStep,
		Lower:      DefaultLower,
		Upper:      DefaultUpper,
		Quadrature: DefaultQuadrature,
		Samples:    DefaultSamples,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the fields that calculus would otherwise reject later.
func (c *Config) Validate() error {
	if c.Step <= 0 {
		return fmt.Errorf("step must be positive, got %v", c.Step)
	}
	if c.Samples < 1 {
		return fmt.Errorf("samples must be at least 1, got %d", c.Samples)
	}
	if _, err := calculus.ParseQuadrature(c.Quadrature); err != nil {
		return err
	}
	return nil
}

// Options translates the config into function options.
func (c *Config) Options() []calculus.Option {
	q, _ := calculus.ParseQuadrature(c.Quadrature)
	return []calculus.Option{
		calculus.WithStep(c.Step),
		calculus.WithParallel(c.Parallel),
		calculus.WithQuadrature(q),
	}
}

// GetPoint returns the configured evaluation point, or the lower bound
// repeated arity times when none is set.
func (c *Config) GetPoint(arity int) []float64 {
	if len(c.Point) == arity {
		return append([]float64(nil), c.Point...)
	}
	p := make([]float64, arity)
	for i := range p {
		p[i] = c.Lower
	}
	return p
}
