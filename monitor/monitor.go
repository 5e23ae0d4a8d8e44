// monitor/monitor.go
package monitor

import (
	"time"

	"auto_trend_go_1/config"
	"auto_trend_go_1/logs"
	"auto_trend_go_1/profit"
	"auto_trend_go_1/state"
)

// Start runs the heartbeat loop: a periodic log line summarizing account
// balance, open positions, and realized P&L so a postmortem can reconstruct
// the agent's health over time even when no trades fired.
func Start(
	stateM state.StateManagerInterface,
	accountant *profit.Accountant,
	cfg *config.Config,
	stopChan <-chan struct{},
) {
	interval := time.Duration(cfg.Normal.HeartbeatIntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopChan:
			logs.Info("Monitor received stop signal, exiting.")
			return
		case <-ticker.C:
			snap := stateM.Snapshot()
			open := 0
			for _, pos := range snap.Positions {
				if pos != nil {
					open++
				}
			}
			logs.Infof("[Heartbeat] balance %.2f | open positions %d/%d | closed trades %d | realized %+.2f",
				snap.Balance, open, len(cfg.Instruments), accountant.TradeCount(), accountant.GetRealizedPNL())
		}
	}
}
