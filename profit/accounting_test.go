package profit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountant_RecordClose(t *testing.T) {
	t.Parallel()

	a := NewAccountant()

	first := a.RecordClose("GOLD", "LONG", 100, 110, 0.5, 5)
	second := a.RecordClose("EUR", "SHORT", 1.10, 1.12, 10, -0.2)

	assert.NotEmpty(t, first.ID)
	assert.NotEmpty(t, second.ID)
	assert.NotEqual(t, first.ID, second.ID)

	assert.Equal(t, 2, a.TradeCount())
	assert.InDelta(t, 4.8, a.GetRealizedPNL(), 1e-9)

	trades := a.Trades()
	require.Len(t, trades, 2)
	assert.Equal(t, "GOLD", trades[0].Instrument)
	assert.Equal(t, "SHORT", trades[1].Direction)
}

func TestAccountant_Restore(t *testing.T) {
	t.Parallel()

	a := NewAccountant()
	a.Restore(42.5)
	assert.InDelta(t, 42.5, a.GetRealizedPNL(), 1e-12)
	assert.Zero(t, a.TradeCount())
}

func TestAccountant_TradesReturnsCopy(t *testing.T) {
	t.Parallel()

	a := NewAccountant()
	a.RecordClose("GOLD", "LONG", 100, 99, 1, -1)

	trades := a.Trades()
	trades[0].PNL = 999

	assert.InDelta(t, -1.0, a.Trades()[0].PNL, 1e-12)
}
