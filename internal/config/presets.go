package config

import "sort"

var Presets = map[string]map[string]*Config{
	"sumsq": {
		"coarse": {
			Function: "sumsq", Step: 0.1, Lower: 0, Upper: 2, Quadrature: "diagonal", Samples: 20,
		},
		"fine": {
			Function: "sumsq", Step: 1e-3, Lower: 0, Upper: 2, Quadrature: "diagonal", Samples: 100,
		},
		"area": {
			Function: "sumsq", Step: 1e-2, Lower: 0, Upper: 2, Quadrature: "nested", Samples: 50,
		},
	},
	"paraboloid": {
		"saddle": {
			Function: "paraboloid", Step: 1e-2, Lower: -1, Upper: 1, Quadrature: "diagonal", Samples: 40,
			Point: []float64{1, -1},
		},
		"parallel": {
			Function: "paraboloid", Step: 1e-3, Lower: -1, Upper: 1, Quadrature: "diagonal", Samples: 40,
			Parallel: true,
		},
	},
	"cubic": {
		"wide": {
			Function: "cubic", Step: 1e-2, Lower: -3, Upper: 3, Quadrature: "diagonal", Samples: 60,
		},
	},
	"norm3": {
		"unit": {
			Function: "norm3", Step: 0.05, Lower: 0, Upper: 1, Quadrature: "nested", Samples: 20,
		},
	},
	"wave": {
		"period": {
			Function: "wave", Step: 1e-2, Lower: 0, Upper: 6.283185307179586, Quadrature: "diagonal", Samples: 80,
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(function, preset string) *Config {
	fnPresets, ok := Presets[function]
	if !ok {
		return nil
	}
	cfg, ok := fnPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	c.Point = append([]float64(nil), cfg.Point...)
	return &c
}

func ListPresets(function string) []string {
	fnPresets, ok := Presets[function]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(fnPresets))
	for name := range fnPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
