package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"auto_trend_go_1/logs"
	"auto_trend_go_1/state"
)

// GetReport renders the current open positions' unrealized P&L into operator
// text. Prices are fetched live per instrument; an instrument whose price is
// unavailable right now is silently omitted from the report rather than
// failing the whole query.
func (e *Engine) GetReport(ctx context.Context) string {
	snap := e.stateM.Snapshot()

	lines := []string{
		fmt.Sprintf("📡 STATUS REPORT | %s", time.Now().Format("15:04:05")),
		"━━━━━━━━",
	}

	active := false
	for _, inst := range e.cfg.Instruments {
		pos := snap.Positions[inst.Name]
		if pos == nil {
			continue
		}
		active = true

		price, err := e.feed.LatestPrice(ctx, inst.Ticker)
		if err != nil {
			logs.Debugf("[Report] No live price for %s: %v", inst.Name, err)
			continue
		}

		var pnl float64
		if pos.Direction == state.Long {
			pnl = (price - pos.EntryPrice) * pos.Size
		} else {
			pnl = (pos.EntryPrice - price) * pos.Size
		}

		icon := "🔻"
		if pnl > 0 {
			icon = "🟢"
		}
		lines = append(lines, fmt.Sprintf("%s %s %s: %+.2f$", icon, inst.Name, pos.Direction, pnl))
	}

	if !active {
		lines = append(lines, "💤 No Active Trades")
	}

	if n := e.accountant.TradeCount(); n > 0 {
		lines = append(lines, "━━━━━━━━",
			fmt.Sprintf("Closed trades: %d | Realized: %+.2f$", n, e.accountant.GetRealizedPNL()))
	}

	return strings.Join(lines, "\n")
}
