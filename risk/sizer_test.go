package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStopDistance(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 5.0, StopDistance(2, 2.5), 1e-12)
	assert.InDelta(t, 0.0, StopDistance(0, 2.5), 1e-12)
}

func TestComputeSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		balance      float64
		riskFraction float64
		stopDistance float64
		dampener     float64
		maxSize      float64
		want         float64
	}{
		{"reference case", 500, 0.05, 10, 0.1, 1000, 0.25},
		{"fx dampener", 500, 0.05, 0.005, 0.01, 1000, 50},
		{"capped at max", 1e9, 0.05, 1, 1, 1000, 1000},
		{"zero stop distance", 500, 0.05, 0, 0.1, 1000, 0},
		{"negative stop distance", 500, 0.05, -3, 0.1, 1000, 0},
		{"rounds below resolution", 500, 0.05, 10, 0.0001, 1000, 0},
		{"rounded to three places", 500, 0.05, 3, 0.1, 1000, 0.833},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ComputeSize(tt.balance, tt.riskFraction, tt.stopDistance, tt.dampener, tt.maxSize)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestComputeSize_RiskStaysConstantAcrossVolatility(t *testing.T) {
	t.Parallel()

	// Dollar risk if the stop is hit = size * stopDistance; it should track
	// balance*riskFraction regardless of the stop distance (before rounding).
	for _, dist := range []float64{0.5, 2, 8, 40} {
		size := ComputeSize(10000, 0.05, dist, 1.0, 1e9)
		assert.InDelta(t, 500.0, size*dist, 1.0, "stopDistance=%v", dist)
	}
}
