package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auto_trend_go_1/confirm"
	"auto_trend_go_1/market"
)

func TestGetReport_NoActiveTrades(t *testing.T) {
	t.Parallel()

	cfg := testConfig(goldInst)
	feed := market.NewMockFeed(cfg.Engine.MinHistoryBars)
	eng, _, _, _ := newTestEngine(t, cfg, feed, confirm.AllowAll{})

	report := eng.GetReport(context.Background())
	assert.Contains(t, report, "No Active Trades")
}

func TestGetReport_ShowsUnrealizedPNL(t *testing.T) {
	t.Parallel()

	cfg := testConfig(goldInst)
	feed := market.NewMockFeed(cfg.Engine.MinHistoryBars)
	feed.SetSeries(goldInst.Ticker, risingSeries(120))
	eng, sm, _, _ := newTestEngine(t, cfg, feed, confirm.AllowAll{})

	require.NoError(t, eng.EvaluateInstrument(context.Background(), goldInst))
	pos := sm.Position("GOLD")
	require.NotNil(t, pos)

	// Push the price above entry so the line shows a gain.
	up := pos.EntryPrice + 3
	feed.PushTick(goldInst.Ticker, market.Candle{High: up + 0.5, Low: up - 0.5, Close: up})

	report := eng.GetReport(context.Background())
	assert.Contains(t, report, "GOLD")
	assert.Contains(t, report, "LONG")
	assert.NotContains(t, report, "No Active Trades")
}

func TestGetReport_IncludesRealizedSummaryAfterClose(t *testing.T) {
	t.Parallel()

	cfg := testConfig(goldInst)
	feed := market.NewMockFeed(cfg.Engine.MinHistoryBars)
	feed.SetSeries(goldInst.Ticker, risingSeries(120))
	eng, sm, _, _ := newTestEngine(t, cfg, feed, confirm.AllowAll{})

	require.NoError(t, eng.EvaluateInstrument(context.Background(), goldInst))
	pos := sm.Position("GOLD")
	require.NotNil(t, pos)

	crash := pos.EntryPrice - 10
	feed.PushTick(goldInst.Ticker, market.Candle{High: crash + 0.5, Low: crash - 0.5, Close: crash})
	require.NoError(t, eng.EvaluateInstrument(context.Background(), goldInst))

	report := eng.GetReport(context.Background())
	assert.Contains(t, report, "Closed trades: 1")
}

func TestPingAndBalance(t *testing.T) {
	t.Parallel()

	cfg := testConfig(goldInst)
	feed := market.NewMockFeed(cfg.Engine.MinHistoryBars)
	eng, _, _, _ := newTestEngine(t, cfg, feed, confirm.AllowAll{})

	assert.Contains(t, eng.Ping(), "Online")
	assert.InDelta(t, 500.0, eng.GetBalance(), 1e-12)
}
