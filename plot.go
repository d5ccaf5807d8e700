package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/supermatter/telemetry"
)

var (
	plotMetric  string
	plotReactor uint32
	plotHeight  int
)

// metrics maps a plot metric name to its window field.
var metrics = map[string]func(telemetry.WindowStats) float64{
	"power":       func(s telemetry.WindowStats) float64 { return s.PowerMean },
	"power_max":   func(s telemetry.WindowStats) float64 { return s.PowerMax },
	"temperature": func(s telemetry.WindowStats) float64 { return s.TemperatureMean },
	"damage":      func(s telemetry.WindowStats) float64 { return s.DamageMax },
	"integrity":   func(s telemetry.WindowStats) float64 { return s.IntegrityMin },
	"moles":       func(s telemetry.WindowStats) float64 { return s.MolesMean },
	"zaps":        func(s telemetry.WindowStats) float64 { return float64(s.Zaps) },
}

func metricNames() string {
	return strings.Join(slices.Sorted(maps.Keys(metrics)), ", ")
}

// seriesByReactor splits windows into one series per reactor, ordered by
// reactor id. A non-zero only keeps that reactor.
func seriesByReactor(stats []telemetry.WindowStats, metric func(telemetry.WindowStats) float64, only uint32) ([]uint32, [][]float64) {
	byID := make(map[uint32][]float64)
	for _, s := range stats {
		if only != 0 && s.Reactor != only {
			continue
		}
		byID[s.Reactor] = append(byID[s.Reactor], metric(s))
	}

	ids := slices.Sorted(maps.Keys(byID))
	series := make([][]float64, 0, len(ids))
	for _, id := range ids {
		series = append(series, byID[id])
	}
	return ids, series
}

func runPlot(cmd *cobra.Command, args []string) error {
	metric, ok := metrics[plotMetric]
	if !ok {
		return fmt.Errorf("unknown metric %q (want one of %s)", plotMetric, metricNames())
	}

	stats, err := telemetry.ReadTelemetry(args[0])
	if err != nil {
		return err
	}

	ids, series := seriesByReactor(stats, metric, plotReactor)
	if len(series) == 0 {
		return fmt.Errorf("no telemetry windows in %s", args[0])
	}

	labels := make([]string, len(ids))
	for i, id := range ids {
		labels[i] = fmt.Sprintf("#%d", id)
	}
	graph := asciigraph.PlotMany(series,
		asciigraph.Height(plotHeight),
		asciigraph.Caption(fmt.Sprintf("%s per window (%s)", plotMetric, strings.Join(labels, ", "))),
	)
	fmt.Fprintln(cmd.OutOrStdout(), graph)
	return nil
}
