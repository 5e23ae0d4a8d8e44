package market

import (
	"context"
	"fmt"
	"math"
	"sync"
)

//
// Mock feed for running and testing the engine without the real chart API.
//

// Ensure MockFeed implements the Feed interface.
var _ Feed = (*MockFeed)(nil)

// MockFeed serves scripted candle series per ticker. Tests (and the
// simulation mode) load a series and can push ticks to advance the tape.
type MockFeed struct {
	mu      sync.RWMutex
	series  map[string][]Candle
	failing map[string]error
	minBars int
}

// NewMockFeed creates an empty mock feed. minBars mirrors the live client's
// minimum-history contract; pass 0 to accept any series length.
func NewMockFeed(minBars int) *MockFeed {
	return &MockFeed{
		series:  make(map[string][]Candle),
		failing: make(map[string]error),
		minBars: minBars,
	}
}

// SetSeries replaces the scripted series for a ticker.
func (f *MockFeed) SetSeries(ticker string, candles []Candle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.series[ticker] = candles
	delete(f.failing, ticker)
}

// PushTick appends one bar to a ticker's tape.
func (f *MockFeed) PushTick(ticker string, c Candle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.series[ticker] = append(f.series[ticker], c)
}

// Fail makes every fetch for a ticker return the given error.
func (f *MockFeed) Fail(ticker string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[ticker] = err
}

func (f *MockFeed) FetchSeries(_ context.Context, ticker string, _ int, _ string) ([]Candle, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if err := f.failing[ticker]; err != nil {
		return nil, err
	}
	candles, ok := f.series[ticker]
	if !ok {
		return nil, fmt.Errorf("mock feed: no series for ticker %s", ticker)
	}
	if len(candles) < f.minBars {
		return nil, fmt.Errorf("mock feed: ticker %s has %d bars, need %d: %w", ticker, len(candles), f.minBars, ErrInsufficientHistory)
	}
	out := make([]Candle, len(candles))
	copy(out, candles)
	return out, nil
}

func (f *MockFeed) LatestPrice(_ context.Context, ticker string) (float64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if err := f.failing[ticker]; err != nil {
		return 0, err
	}
	candles := f.series[ticker]
	if len(candles) == 0 {
		return 0, fmt.Errorf("mock feed: no price for ticker %s", ticker)
	}
	return candles[len(candles)-1].Close, nil
}

// SyntheticSeries generates n bars of a sine-wave market around base with the
// given amplitude. Handy for simulation mode and warmup fixtures.
func SyntheticSeries(n int, base, amplitude float64) []Candle {
	candles := make([]Candle, n)
	for i := 0; i < n; i++ {
		mid := base + amplitude*math.Sin(float64(i)/8.0)
		spread := amplitude / 10
		candles[i] = Candle{
			High:  mid + spread,
			Low:   mid - spread,
			Close: mid,
		}
	}
	return candles
}
