package game

import (
	"cmp"
	"maps"
	"slices"
	"time"
)

// PerfStats tracks how long each system takes per tick over a sliding
// window of recent ticks.
type PerfStats struct {
	samples    map[string][]time.Duration
	maxSamples int
}

// NewPerfStats creates a tracker averaging over maxSamples ticks.
func NewPerfStats(maxSamples int) *PerfStats {
	return &PerfStats{
		samples:    make(map[string][]time.Duration),
		maxSamples: max(maxSamples, 1),
	}
}

// Record adds a duration sample for the named system.
func (p *PerfStats) Record(name string, d time.Duration) {
	s := append(p.samples[name], d)
	if len(s) > p.maxSamples {
		s = s[1:]
	}
	p.samples[name] = s
}

// Avg returns the average duration for the named system.
func (p *PerfStats) Avg(name string) time.Duration {
	s := p.samples[name]
	if len(s) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range s {
		total += d
	}
	return total / time.Duration(len(s))
}

// Averages returns every system's average.
func (p *PerfStats) Averages() map[string]time.Duration {
	out := make(map[string]time.Duration, len(p.samples))
	for name := range p.samples {
		out[name] = p.Avg(name)
	}
	return out
}

// Total returns the sum of all average durations.
func (p *PerfStats) Total() time.Duration {
	var total time.Duration
	for name := range p.samples {
		total += p.Avg(name)
	}
	return total
}

// SortedNames returns system names by average duration, slowest first.
// Ties sort by name so the order is stable between frames.
func (p *PerfStats) SortedNames() []string {
	names := slices.Collect(maps.Keys(p.samples))
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(p.Avg(b), p.Avg(a)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return names
}
