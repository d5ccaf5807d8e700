package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	got := Summarize(values)

	if math.Abs(got.Mean-5.5) > 1e-9 {
		t.Errorf("mean = %v, want 5.5", got.Mean)
	}
	// Population std of 1..10 is sqrt(8.25)
	if math.Abs(got.Std-math.Sqrt(8.25)) > 1e-9 {
		t.Errorf("std = %v, want %v", got.Std, math.Sqrt(8.25))
	}
	if got.Min != 1 || got.Max != 10 {
		t.Errorf("min/max = %v/%v", got.Min, got.Max)
	}
	if math.Abs(got.P90-9.1) > 0.001 {
		t.Errorf("p90 = %v, want 9.1", got.P90)
	}
	if values[0] != 1 || values[9] != 10 {
		t.Error("Summarize reordered its input")
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if got := Summarize(nil); got != (Summary{}) {
		t.Errorf("empty summary = %+v", got)
	}
}
