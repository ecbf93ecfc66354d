package main

import (
	"github.com/calegria/outpost/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable economy parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Production
			{Name: "gold_rate", Path: "templates.gold_mine.production.rate", Min: 1.0, Max: 20.0, Default: 5.0},
			{Name: "gold_threshold", Path: "templates.gold_mine.production.threshold", Min: 1.0, Max: 50.0, Default: 10.0},
			{Name: "lumber_rate", Path: "templates.lumber_camp.production.rate", Min: 0.5, Max: 10.0, Default: 2.0},
			{Name: "lumber_threshold", Path: "templates.lumber_camp.production.threshold", Min: 1.0, Max: 50.0, Default: 8.0},
			// Construction
			{Name: "build_rate", Path: "tasks.build_rate", Min: 1.0, Max: 50.0, Default: 10.0},
			{Name: "tower_required", Path: "templates.watchtower.construction.required", Min: 20.0, Max: 600.0, Default: 120.0},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// setProduction rewrites a template's single production output.
func setProduction(cfg *config.Config, template string, rate, threshold float64) {
	t, ok := cfg.Template(template)
	if !ok {
		return
	}
	for i := range t.Capabilities {
		p := t.Capabilities[i].Production
		if p == nil {
			continue
		}
		p.Threshold = threshold
		for j := range p.Outputs {
			p.Outputs[j].Rate = rate
		}
	}
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	setProduction(cfg, "gold_mine", clamped[0], clamped[1])
	setProduction(cfg, "lumber_camp", clamped[2], clamped[3])

	cfg.Tasks.BuildRate = clamped[4]

	if t, ok := cfg.Template("watchtower"); ok && t.Construction != nil {
		t.Construction.Required = clamped[5]
	}
}
