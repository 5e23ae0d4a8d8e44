// Package indicators turns a raw price series into the derived metrics the
// decision engine consumes: trend filter (EMA), momentum (RSI) and
// volatility (ATR). All functions are pure and operate on completed bars.
package indicators

import (
	"errors"
	"fmt"
	"math"

	"auto_trend_go_1/market"
)

// ErrUndefined is returned when an indicator has no defined value for the
// most recent bar (NaN trend filter, zero average loss for momentum).
var ErrUndefined = errors.New("indicators: value undefined for most recent bar")

// Params selects the indicator windows.
type Params struct {
	EMAPeriod int
	RSIPeriod int
	ATRPeriod int
}

// Snapshot holds the most recent bar's derived metrics.
type Snapshot struct {
	Price      float64 // close of the most recent bar
	Trend      float64 // EMA of close
	Momentum   float64 // RSI, bounded [0, 100]
	Volatility float64 // ATR, >= 0
}

// EMA computes the exponentially-weighted moving average of the series with
// smoothing factor 2/(period+1). The first value seeds the average directly,
// so there is no look-ahead.
func EMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("empty series")
	}

	alpha := 2.0 / float64(period+1)
	ema := values[0]
	for i := 1; i < len(values); i++ {
		ema = alpha*values[i] + (1-alpha)*ema
	}
	return ema, nil
}

// RSI computes the relative-strength index over the trailing window as a
// simple rolling mean of gains over losses, scaled to [0, 100]. When the
// window contains no losses the ratio is undefined and ErrUndefined is
// returned rather than pinning the value at 100.
func RSI(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(values) < period+1 {
		return 0, fmt.Errorf("not enough values: need %d, got %d", period+1, len(values))
	}

	gain := 0.0
	loss := 0.0
	for i := len(values) - period; i < len(values); i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			gain += change
		} else {
			loss -= change
		}
	}

	if loss == 0 {
		return 0, ErrUndefined
	}
	rs := gain / loss
	return 100 - (100 / (1 + rs)), nil
}

// ATR computes the average true range as a simple rolling mean of the true
// range over the trailing window. True range per bar is
// max(high-low, |high-prevClose|, |low-prevClose|).
func ATR(candles []market.Candle, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(candles) < period+1 {
		return 0, fmt.Errorf("not enough candles: need %d, got %d", period+1, len(candles))
	}

	sum := 0.0
	for i := len(candles) - period; i < len(candles); i++ {
		sum += trueRange(candles[i], candles[i-1])
	}
	return sum / float64(period), nil
}

// ComputeSnapshot derives all metrics for the most recent bar of the series.
// Any undefined metric invalidates the whole snapshot: the caller must skip
// the instrument for this pass.
func ComputeSnapshot(candles []market.Candle, p Params) (Snapshot, error) {
	if len(candles) == 0 {
		return Snapshot{}, fmt.Errorf("empty series")
	}

	closes := market.Closes(candles)

	trend, err := EMA(closes, p.EMAPeriod)
	if err != nil {
		return Snapshot{}, fmt.Errorf("trend filter: %w", err)
	}
	if math.IsNaN(trend) || math.IsInf(trend, 0) {
		return Snapshot{}, fmt.Errorf("trend filter: %w", ErrUndefined)
	}

	momentum, err := RSI(closes, p.RSIPeriod)
	if err != nil {
		return Snapshot{}, fmt.Errorf("momentum: %w", err)
	}

	volatility, err := ATR(candles, p.ATRPeriod)
	if err != nil {
		return Snapshot{}, fmt.Errorf("volatility: %w", err)
	}

	return Snapshot{
		Price:      closes[len(closes)-1],
		Trend:      trend,
		Momentum:   momentum,
		Volatility: volatility,
	}, nil
}

// trueRange calculates the true range for a candle given the previous candle.
func trueRange(current, previous market.Candle) float64 {
	highLow := current.High - current.Low
	highClose := math.Abs(current.High - previous.Close)
	lowClose := math.Abs(current.Low - previous.Close)
	return math.Max(highLow, math.Max(highClose, lowClose))
}
