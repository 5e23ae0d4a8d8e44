package profit

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Trade is one closed round trip, recorded for postmortem and reporting.
type Trade struct {
	ID         string  // assigned at close
	Instrument string
	Direction  string // "LONG" or "SHORT"
	EntryPrice float64
	ExitPrice  float64
	Size       float64
	PNL        float64
	ClosedAt   int64 // unix seconds
}

// Accountant tracks realized profit and the trade ledger across the run.
// The persisted balance is the source of truth for money; the accountant is
// the in-memory view reporting reads from.
type Accountant struct {
	mu       sync.Mutex
	realized float64
	trades   []Trade
}

// NewAccountant creates a new accounting core.
func NewAccountant() *Accountant {
	return &Accountant{
		trades: make([]Trade, 0),
	}
}

// RecordClose records a closed position and returns the ledger entry.
func (a *Accountant) RecordClose(instrument, direction string, entry, exit, size, pnl float64) Trade {
	a.mu.Lock()
	defer a.mu.Unlock()

	trade := Trade{
		ID:         uuid.NewString(),
		Instrument: instrument,
		Direction:  direction,
		EntryPrice: entry,
		ExitPrice:  exit,
		Size:       size,
		PNL:        pnl,
		ClosedAt:   time.Now().Unix(),
	}
	a.trades = append(a.trades, trade)
	a.realized += pnl
	return trade
}

// GetRealizedPNL returns cumulative realized profit for this run.
func (a *Accountant) GetRealizedPNL() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.realized
}

// TradeCount returns the number of closed trades recorded.
func (a *Accountant) TradeCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.trades)
}

// Trades returns a copy of the ledger.
func (a *Accountant) Trades() []Trade {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Trade, len(a.trades))
	copy(out, a.trades)
	return out
}

// Restore recovers realized profit from a previous run's summary.
func (a *Accountant) Restore(realized float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.realized = realized
}
