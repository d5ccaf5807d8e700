package main

import (
	"slices"
	"testing"

	"github.com/pthm-cable/supermatter/telemetry"
)

func TestSeriesByReactor(t *testing.T) {
	stats := []telemetry.WindowStats{
		{Reactor: 2, PowerMean: 10},
		{Reactor: 1, PowerMean: 1},
		{Reactor: 2, PowerMean: 20},
		{Reactor: 1, PowerMean: 2},
	}
	power := metrics["power"]

	tests := []struct {
		name   string
		only   uint32
		ids    []uint32
		series [][]float64
	}{
		{"all", 0, []uint32{1, 2}, [][]float64{{1, 2}, {10, 20}}},
		{"one", 2, []uint32{2}, [][]float64{{10, 20}}},
		{"missing", 9, []uint32{}, [][]float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, series := seriesByReactor(stats, power, tt.only)
			if !slices.Equal(ids, tt.ids) {
				t.Errorf("ids = %v, want %v", ids, tt.ids)
			}
			if len(series) != len(tt.series) {
				t.Fatalf("series = %v, want %v", series, tt.series)
			}
			for i := range series {
				if !slices.Equal(series[i], tt.series[i]) {
					t.Errorf("series[%d] = %v, want %v", i, series[i], tt.series[i])
				}
			}
		})
	}
}
