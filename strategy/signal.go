// Package strategy maps current price and indicators to a trade signal.
package strategy

import "auto_trend_go_1/indicators"

// Signal is the decision for one instrument on one pass.
type Signal string

const (
	Buy  Signal = "BUY"
	Sell Signal = "SELL"
	None Signal = "NONE"
)

// Overbought/oversold momentum bounds. A long entry is suppressed when
// momentum is already overbought; a short entry when already oversold.
const (
	momentumOverbought = 70.0
	momentumOversold   = 30.0
)

// Decide is the signal generator: BUY when price is above the trend filter
// and momentum is not overbought, SELL when price is below the trend filter
// and momentum is not oversold, otherwise NONE. Pure function, no state.
func Decide(snap indicators.Snapshot) Signal {
	switch {
	case snap.Price > snap.Trend && snap.Momentum < momentumOverbought:
		return Buy
	case snap.Price < snap.Trend && snap.Momentum > momentumOversold:
		return Sell
	default:
		return None
	}
}
