package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"auto_trend_go_1/indicators"
)

func TestDecide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		snap indicators.Snapshot
		want Signal
	}{
		{"uptrend with room", indicators.Snapshot{Price: 100, Trend: 95, Momentum: 50}, Buy},
		{"uptrend but overbought", indicators.Snapshot{Price: 100, Trend: 95, Momentum: 70}, None},
		{"uptrend just under overbought", indicators.Snapshot{Price: 100, Trend: 95, Momentum: 69.9}, Buy},
		{"downtrend with room", indicators.Snapshot{Price: 90, Trend: 95, Momentum: 50}, Sell},
		{"downtrend but oversold", indicators.Snapshot{Price: 90, Trend: 95, Momentum: 30}, None},
		{"downtrend just above oversold", indicators.Snapshot{Price: 90, Trend: 95, Momentum: 30.1}, Sell},
		{"price on trend line", indicators.Snapshot{Price: 95, Trend: 95, Momentum: 50}, None},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Decide(tt.snap))
		})
	}
}
