package telemetry

import (
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for one reactor over a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Reactor         uint32  `csv:"reactor"`
	Samples         int     `csv:"samples"`

	// Sampled every tick
	PowerMean       float64 `csv:"power_mean"`
	PowerMax        float64 `csv:"power_max"`
	PowerStd        float64 `csv:"power_std"`
	TemperatureMean float64 `csv:"temperature_mean"`
	TemperatureMax  float64 `csv:"temperature_max"`
	DamageMean      float64 `csv:"damage_mean"`
	DamageMax       float64 `csv:"damage_max"`
	DamageP90       float64 `csv:"damage_p90"`
	IntegrityMin    float64 `csv:"integrity_min"`
	MolesMean       float64 `csv:"moles_mean"`

	// Worst status seen in the window
	Status string `csv:"status"`

	// Events during window
	Zaps          int  `csv:"zaps"`
	Bolts         int  `csv:"bolts"`
	Anomalies     int  `csv:"anomalies"`
	Announcements int  `csv:"announcements"`
	Delaminated   bool `csv:"delaminated"`
}

// Percentile returns the p-th quantile (p in [0, 1]) of an ascending
// slice using linear interpolation. Returns 0 if the slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Summary is the distribution of one sampled quantity.
type Summary struct {
	Mean, Std, Min, Max, P90 float64
}

// Summarize computes mean, population std, extremes and p90 of values.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	mean, variance := stat.PopMeanVariance(values, nil)

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	return Summary{
		Mean: mean,
		Std:  math.Sqrt(variance),
		Min:  floats.Min(values),
		Max:  floats.Max(values),
		P90:  Percentile(sorted, 0.90),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Any("reactor", s.Reactor),
		slog.Float64("power_mean", s.PowerMean),
		slog.Float64("power_max", s.PowerMax),
		slog.Float64("temperature_mean", s.TemperatureMean),
		slog.Float64("damage_max", s.DamageMax),
		slog.Float64("integrity_min", s.IntegrityMin),
		slog.String("status", s.Status),
		slog.Int("zaps", s.Zaps),
		slog.Int("anomalies", s.Anomalies),
		slog.Int("announcements", s.Announcements),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"reactor", s.Reactor,
		"power_mean", s.PowerMean,
		"power_max", s.PowerMax,
		"power_std", s.PowerStd,
		"temperature_mean", s.TemperatureMean,
		"temperature_max", s.TemperatureMax,
		"damage_mean", s.DamageMean,
		"damage_max", s.DamageMax,
		"damage_p90", s.DamageP90,
		"integrity_min", s.IntegrityMin,
		"moles_mean", s.MolesMean,
		"status", s.Status,
		"zaps", s.Zaps,
		"bolts", s.Bolts,
		"anomalies", s.Anomalies,
		"announcements", s.Announcements,
		"delaminated", s.Delaminated,
	)
}
