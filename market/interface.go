package market

import (
	"context"
	"errors"
)

// ErrInsufficientHistory is returned when the data source answered but the
// series is too short for the indicator windows. Callers treat it the same
// as any other fetch failure: skip the instrument for this pass.
var ErrInsufficientHistory = errors.New("market: insufficient price history")

// Feed is the market-data collaborator. Implementations must return a
// time-ordered series (oldest first) of completed bars, or an error when the
// data is unavailable or shorter than the configured minimum.
type Feed interface {
	// FetchSeries returns the trailing OHLC history for a ticker.
	FetchSeries(ctx context.Context, ticker string, lookbackDays int, barInterval string) ([]Candle, error)

	// LatestPrice returns the most recent close for a ticker. Used by
	// reporting, which needs a live price but no history.
	LatestPrice(ctx context.Context, ticker string) (float64, error)
}
