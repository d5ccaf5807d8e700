package main

import (
	"github.com/pthm-cable/supermatter/config"
	"github.com/pthm-cable/supermatter/gas"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable cooling loop parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of cooling loop parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "feed_temperature", Path: "atmosphere.feed.temperature", Min: 20, Max: 300, Default: 80},
			{Name: "exchange_rate", Path: "atmosphere.feed.exchange_rate", Min: 0.01, Max: 0.3, Default: 0.05},
			{Name: "feed_nitrogen", Path: "atmosphere.feed.mix.nitrogen", Min: 0, Max: 300, Default: 100},
			{Name: "feed_co2", Path: "atmosphere.feed.mix.carbon_dioxide", Min: 0, Max: 300, Default: 0},
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
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes parameter values into the feed section of cfg and
// refreshes the parsed feed mix. Order must match Specs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	feed := &cfg.Atmosphere.Feed
	feed.Enabled = true
	feed.Temperature = clamped[0]
	feed.ExchangeRate = clamped[1]
	feed.Mix = map[string]float64{
		gas.Nitrogen.String():      clamped[2],
		gas.CarbonDioxide.String(): clamped[3],
	}

	var mix gas.Storage
	mix[gas.Nitrogen] = clamped[2]
	mix[gas.CarbonDioxide] = clamped[3]
	cfg.Derived.FeedMix = mix
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Atmosphere.Feed.Temperature,
		cfg.Atmosphere.Feed.ExchangeRate,
		cfg.Derived.FeedMix[gas.Nitrogen],
		cfg.Derived.FeedMix[gas.CarbonDioxide],
	}
}
