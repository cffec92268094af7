package config

import (
	"math"
	"sort"
)

var floor = [3]float64{0, 0, 1}

var Presets = map[string]map[string]*Config{
	"pendulum": {
		"hanging": {
			Model:   "pendulum",
			Posture: PostureConfig{Configuration: []float64{0}},
		},
		"inverted": {
			Model:   "pendulum",
			Posture: PostureConfig{Configuration: []float64{math.Pi}},
			Weights: WeightsConfig{Q: []float64{10, 1}},
		},
	},
	"cartpole": {
		"balance": {
			Model:   "cartpole",
			Posture: PostureConfig{Configuration: []float64{0, 0}},
			Weights: WeightsConfig{Q: []float64{1, 10, 1, 1}},
		},
		"offset": {
			Model:   "cartpole",
			Posture: PostureConfig{Configuration: []float64{0.5, 0}},
		},
	},
	"double_pendulum": {
		"upright": {
			Model:   "double_pendulum",
			Posture: PostureConfig{Configuration: []float64{math.Pi, math.Pi}},
			Weights: WeightsConfig{Q: []float64{10, 10, 1, 1}},
		},
		"pinned_tip": {
			Model:   "double_pendulum",
			Posture: PostureConfig{Configuration: []float64{0, 0}},
			Contacts: []ContactConfig{
				{Body: "lower", Offset: [3]float64{0, 0, -1}, Mode: "no_slip"},
			},
		},
	},
	"planar_body": {
		"floor": {
			Model:   "planar_body",
			Posture: PostureConfig{Configuration: []float64{0, 0.1, 0}},
			Contacts: []ContactConfig{
				{Body: "body", Offset: [3]float64{0, 0, -0.1}, Mode: "frictionless", Normal: floor},
			},
		},
		"two_feet": {
			Model:   "planar_body",
			Posture: PostureConfig{Configuration: []float64{0, 0.1, 0}},
			Contacts: []ContactConfig{
				{Body: "body", Offset: [3]float64{-0.2, 0, -0.1}, Mode: "frictionless", Normal: floor},
				{Body: "body", Offset: [3]float64{0.2, 0, -0.1}, Mode: "frictionless", Normal: floor},
			},
		},
		"stuck": {
			Model:   "planar_body",
			Posture: PostureConfig{Configuration: []float64{0, 0.1, 0}},
			Contacts: []ContactConfig{
				{Body: "body", Offset: [3]float64{0, 0, -0.1}, Mode: "no_slip"},
			},
			Weights: WeightsConfig{Q: []float64{1}, R: []float64{0.1}},
		},
	},
}

// GetPreset returns a copy of the named preset with defaults filled in, or
// nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	p, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	cfg := p.Clone()
	def := DefaultConfig()
	if cfg.MinCoefficient == 0 {
		cfg.MinCoefficient = def.MinCoefficient
	}
	if cfg.Sweep.Steps == 0 {
		cfg.Sweep = def.Sweep
	}
	return cfg
}

// ListPresets returns the preset names of model in sorted order.
func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
