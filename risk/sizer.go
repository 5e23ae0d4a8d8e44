// Package risk converts account risk appetite and market volatility into a
// position size.
package risk

import "auto_trend_go_1/utils"

// sizePrecision is the number of decimal places a computed size is rounded to.
const sizePrecision = 3

// StopDistance converts a volatility reading into the protective stop's
// distance from entry, in price units.
func StopDistance(volatility, atrMultiple float64) float64 {
	return volatility * atrMultiple
}

// ComputeSize sizes a new position so that the dollar risk if the stop is hit
// stays near balance*riskFraction regardless of instrument volatility. The
// dampener corrects for instruments whose natural unit carries far more
// notional than others. Returns 0 when sizing is undefined (non-positive
// stop distance) or the rounded size collapses to zero; the caller must not
// open in that case.
func ComputeSize(balance, riskFraction, stopDistance, dampener, maxSize float64) float64 {
	if stopDistance <= 0 {
		return 0
	}

	raw := (balance * riskFraction) / stopDistance
	size := utils.RoundToPrecision(raw*dampener, sizePrecision)
	if size > maxSize {
		size = maxSize
	}
	if size <= 0 {
		return 0
	}
	return size
}
