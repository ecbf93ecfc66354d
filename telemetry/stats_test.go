package telemetry

import (
	"math"
	"testing"
)

func TestPercentile_Empty(t *testing.T) {
	if got := Percentile(nil, 0.5); got != 0 {
		t.Errorf("empty slice should give 0, got %f", got)
	}
}

func TestPercentile_Bounds(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	if got := Percentile(sorted, 0); got != 1 {
		t.Errorf("p=0 should give minimum, got %f", got)
	}
	if got := Percentile(sorted, 1); got != 5 {
		t.Errorf("p=1 should give maximum, got %f", got)
	}
}

func TestPercentile_Median(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	got := Percentile(sorted, 0.5)
	if got < 2 || got > 4 {
		t.Errorf("median of 1..5 should be near 3, got %f", got)
	}
}

func TestComputeSummary(t *testing.T) {
	mean, p10, p50, p90 := ComputeSummary([]float64{10, 10, 10, 10})
	if mean != 10 {
		t.Errorf("mean of constant series should be 10, got %f", mean)
	}
	if p10 != 10 || p50 != 10 || p90 != 10 {
		t.Errorf("percentiles of constant series should be 10, got %f %f %f", p10, p50, p90)
	}

	mean, _, _, _ = ComputeSummary([]float64{5, 15})
	if math.Abs(mean-10) > 1e-9 {
		t.Errorf("mean of 5,15 should be 10, got %f", mean)
	}

	mean, p10, p50, p90 = ComputeSummary(nil)
	if mean != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty input should give all zeros")
	}
}
