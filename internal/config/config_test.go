package config

import (
	"path/filepath"
	"testing"

	"github.com/san-kum/ndcalc/internal/calculus"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Function != "sumsq" {
		t.Errorf("expected function sumsq, got %s", cfg.Function)
	}
	if cfg.Step != calculus.DefaultStep {
		t.Errorf("expected default step %v, got %v", calculus.DefaultStep, cfg.Step)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.Function = "paraboloid"
	cfg.Step = 0.05
	cfg.Quadrature = "nested"
	cfg.Point = []float64{1, 2}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Function != "paraboloid" || loaded.Step != 0.05 || loaded.Quadrature != "nested" {
		t.Errorf("unexpected config: %+v", loaded)
	}
	if p := loaded.GetPoint(2); p[0] != 1 || p[1] != 2 {
		t.Errorf("unexpected point %v", p)
	}
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(dir, "bad.yaml")
	cfg := DefaultConfig()
	cfg.Quadrature = "simpson"
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown quadrature")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero step", func(c *Config) { c.Step = 0 }},
		{"negative step", func(c *Config) { c.Step = -1 }},
		{"no samples", func(c *Config) { c.Samples = 0 }},
		{"bad quadrature", func(c *Config) { c.Quadrature = "trapezoid" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Step = 0.25
	cfg.Quadrature = "nested"

	f, err := calculus.NewRegistry().Get(cfg.Function, cfg.Options()...)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if f.Step() != 0.25 {
		t.Errorf("expected step 0.25, got %v", f.Step())
	}
	if f.Quadrature() != calculus.Nested {
		t.Errorf("expected nested quadrature, got %v", f.Quadrature())
	}
}

func TestGetPoint_Default(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Lower = -1
	p := cfg.GetPoint(3)
	if len(p) != 3 || p[0] != -1 || p[2] != -1 {
		t.Errorf("unexpected point %v", p)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("sumsq", "coarse")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Step != 0.1 {
		t.Errorf("expected step 0.1, got %f", cfg.Step)
	}

	cfg.Step = 42
	if GetPreset("sumsq", "coarse").Step != 0.1 {
		t.Error("GetPreset should return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("sumsq", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "coarse"); cfg != nil {
		t.Error("expected nil for nonexistent function")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("sumsq")
	if len(presets) != 3 || presets[0] != "area" {
		t.Errorf("unexpected presets %v", presets)
	}

	if presets := ListPresets("nonexistent"); presets != nil {
		t.Error("expected nil for nonexistent function")
	}
}

func TestPresetsAreValid(t *testing.T) {
	registry := calculus.NewRegistry()
	for fn, presets := range Presets {
		if _, err := registry.Get(fn); err != nil {
			t.Errorf("preset group %s: %v", fn, err)
		}
		for name, cfg := range presets {
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s/%s: %v", fn, name, err)
			}
			if cfg.Function != fn {
				t.Errorf("%s/%s: function %s", fn, name, cfg.Function)
			}
		}
	}
}
