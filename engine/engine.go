// Package engine is the decision-and-position-management core: it drives one
// evaluation pass per instrument per tick, advances trailing stops on open
// positions, and opens new positions from signal + risk sizing + the
// confirmation collaborator.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"auto_trend_go_1/config"
	"auto_trend_go_1/confirm"
	"auto_trend_go_1/indicators"
	"auto_trend_go_1/logs"
	"auto_trend_go_1/market"
	"auto_trend_go_1/profit"
	"auto_trend_go_1/risk"
	"auto_trend_go_1/state"
	"auto_trend_go_1/strategy"
)

// NotifyFunc is the best-effort operator notification sink. Delivery failure
// must never affect engine state, so the sink returns nothing.
type NotifyFunc func(text string)

// Engine owns the per-instrument position state machine and the scheduler
// loop. The persisted state (balance + positions) is the single critical
// resource shared with the command surface; mu serializes every
// read-modify-write on it. Market-data and confirmation I/O always happen
// before the lock is taken.
type Engine struct {
	cfg        *config.Config
	feed       market.Feed
	confirmer  confirm.Confirmer
	stateM     state.StateManagerInterface
	accountant *profit.Accountant
	notify     NotifyFunc

	mu sync.Mutex
}

// New wires up an engine. A nil notify sink is replaced with a no-op.
func New(cfg *config.Config, feed market.Feed, confirmer confirm.Confirmer, stateM state.StateManagerInterface, accountant *profit.Accountant, notify NotifyFunc) *Engine {
	if notify == nil {
		notify = func(string) {}
	}
	if confirmer == nil {
		confirmer = confirm.AllowAll{}
	}
	return &Engine{
		cfg:        cfg,
		feed:       feed,
		confirmer:  confirmer,
		stateM:     stateM,
		accountant: accountant,
		notify:     notify,
	}
}

// RunLoop drives one evaluation pass over all instruments at the configured
// cadence until the context is cancelled. A failing instrument never
// prevents the rest from being evaluated, and never stops the loop.
func (e *Engine) RunLoop(ctx context.Context) {
	interval := time.Duration(e.cfg.Engine.IntervalSeconds) * time.Second
	logs.Infof("[Engine] Scheduler loop started, interval %s, %d instruments.", interval, len(e.cfg.Instruments))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.runPass(ctx)
	for {
		select {
		case <-ctx.Done():
			logs.Info("[Engine] Scheduler loop received stop signal, exiting.")
			return
		case <-ticker.C:
			e.runPass(ctx)
		}
	}
}

// runPass evaluates every instrument once, isolating failures per instrument.
func (e *Engine) runPass(ctx context.Context) {
	for _, inst := range e.cfg.Instruments {
		if ctx.Err() != nil {
			return
		}
		e.evaluateGuarded(ctx, inst)
	}
}

// evaluateGuarded absorbs both errors and panics from a single instrument's
// evaluation so one bad instrument cannot take down the pass.
func (e *Engine) evaluateGuarded(ctx context.Context, inst config.Instrument) {
	defer func() {
		if r := recover(); r != nil {
			logs.Errorf("[Engine] Panic while evaluating %s: %v", inst.Name, r)
		}
	}()

	if err := e.EvaluateInstrument(ctx, inst); err != nil {
		// Data hiccups are routine and self-healing on the next tick; they
		// are logged for postmortem but never surfaced to the operator.
		logs.Debugf("[Engine] Skipping %s this pass: %v", inst.Name, err)
	}
}

// EvaluateInstrument performs one pass of the state machine for a single
// instrument: fetch, compute indicators, then either manage the open
// position or evaluate a new entry. Returns an error when the instrument had
// to be skipped; state is left untouched in that case.
func (e *Engine) EvaluateInstrument(ctx context.Context, inst config.Instrument) error {
	series, err := e.feed.FetchSeries(ctx, inst.Ticker, e.cfg.Engine.LookbackDays, e.cfg.Engine.BarInterval)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", inst.Ticker, err)
	}

	snap, err := indicators.ComputeSnapshot(series, indicators.Params{
		EMAPeriod: e.cfg.Engine.EMAPeriod,
		RSIPeriod: e.cfg.Engine.RSIPeriod,
		ATRPeriod: e.cfg.Engine.ATRPeriod,
	})
	if err != nil {
		return fmt.Errorf("indicators %s: %w", inst.Name, err)
	}

	if e.stateM.Position(inst.Name) != nil {
		e.manageOpen(inst, snap)
		return nil
	}
	return e.evaluateEntry(ctx, inst, snap)
}

// manageOpen advances the trailing stop of an open position and closes it
// when the stop is breached. Runs entirely under the engine lock.
func (e *Engine) manageOpen(inst config.Instrument, snap indicators.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pos := e.stateM.Position(inst.Name)
	if pos == nil {
		// Flattened between the flat-check and here; nothing to manage.
		return
	}

	price := snap.Price
	dist := risk.StopDistance(snap.Volatility, e.cfg.Engine.StopATRMultiple)

	switch pos.Direction {
	case state.Long:
		if price > pos.HighWaterMark {
			pos.HighWaterMark = price
			if candidate := price - dist; candidate > pos.StopPrice {
				pos.StopPrice = candidate
			}
			e.persistTrail(inst.Name, *pos)
		}
		if price <= pos.StopPrice {
			e.closePosition(inst, pos, price, (price-pos.EntryPrice)*pos.Size)
		}
	case state.Short:
		if price < pos.LowWaterMark {
			pos.LowWaterMark = price
			if candidate := price + dist; candidate < pos.StopPrice {
				pos.StopPrice = candidate
			}
			e.persistTrail(inst.Name, *pos)
		}
		if price >= pos.StopPrice {
			e.closePosition(inst, pos, price, (pos.EntryPrice-price)*pos.Size)
		}
	}
}

// persistTrail saves a ratchet advance. Durability is best-effort: a failed
// save costs at worst one tick of stop progress after a restart.
func (e *Engine) persistTrail(name string, pos state.Position) {
	if err := e.stateM.UpdatePosition(name, pos); err != nil {
		logs.Warnf("[Engine] Failed to persist trailing stop for %s: %v", name, err)
	}
}

// closePosition realizes P&L, credits the balance, records the trade and
// notifies the operator. Caller holds the engine lock.
func (e *Engine) closePosition(inst config.Instrument, pos *state.Position, price, pnl float64) {
	if err := e.stateM.ClosePosition(inst.Name, pnl); err != nil {
		logs.Errorf("[Engine] Failed to persist close for %s: %v", inst.Name, err)
	}

	trade := e.accountant.RecordClose(inst.Name, string(pos.Direction), pos.EntryPrice, price, pos.Size, pnl)
	logs.Infof("[Engine] Closed %s %s: entry %.4f, exit %.4f, size %.3f, pnl %+.2f (trade %s)",
		pos.Direction, inst.Name, pos.EntryPrice, price, pos.Size, pnl, trade.ID)
	e.notify(fmt.Sprintf("🛑 Close %s\nPnL: %+.2f$", inst.Name, pnl))
}

// evaluateEntry decides whether to open a new position for a flat
// instrument. The confirmation call is I/O and runs before the lock; the
// flat check is repeated under the lock before committing.
func (e *Engine) evaluateEntry(ctx context.Context, inst config.Instrument, snap indicators.Snapshot) error {
	sig := strategy.Decide(snap)
	if sig == strategy.None {
		return nil
	}

	dist := risk.StopDistance(snap.Volatility, e.cfg.Engine.StopATRMultiple)
	size := risk.ComputeSize(e.stateM.Balance(), e.cfg.Account.RiskFraction, dist, inst.SizeDampener, e.cfg.Engine.MaxPositionSize)
	if size <= 0 {
		logs.Debugf("[Engine] %s sizing undefined (dist %.6f), no entry.", inst.Name, dist)
		return nil
	}

	confirmCtx, cancel := context.WithTimeout(ctx, time.Duration(e.cfg.Engine.ConfirmTimeoutSeconds)*time.Second)
	defer cancel()
	if !e.confirmer.Confirm(confirmCtx, inst.ConfirmSymbol, string(sig)) {
		logs.Infof("[Engine] %s %s entry denied by confirmation service.", inst.Name, sig)
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stateM.Position(inst.Name) != nil {
		return nil
	}

	price := snap.Price
	pos := state.Position{
		EntryPrice:    price,
		Size:          size,
		HighWaterMark: price,
		LowWaterMark:  price,
	}
	if sig == strategy.Buy {
		pos.Direction = state.Long
		pos.StopPrice = price - dist
	} else {
		pos.Direction = state.Short
		pos.StopPrice = price + dist
	}

	if err := e.stateM.OpenPosition(inst.Name, pos); err != nil {
		logs.Errorf("[Engine] Failed to persist open for %s: %v", inst.Name, err)
	}
	logs.Infof("[Engine] Opened %s %s: entry %.4f, size %.3f, stop %.4f",
		pos.Direction, inst.Name, price, size, pos.StopPrice)
	e.notify(fmt.Sprintf("🚀 %s %s\nPrice: %.4f\nSize: %.3f\nStop: %.4f", sig, inst.Name, price, size, pos.StopPrice))
	return nil
}

// EmergencyFlatten discards every open position without realizing P&L. The
// balance is left untouched: this is a kill-switch "cancel", not a close at
// market. Idempotent.
func (e *Engine) EmergencyFlatten() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.stateM.FlattenAll(); err != nil {
		logs.Errorf("[Engine] Failed to persist emergency flatten: %v", err)
		return err
	}
	logs.Warn("[Engine] Emergency flatten executed, all positions discarded.")
	return nil
}

// GetBalance returns the current account balance.
func (e *Engine) GetBalance() float64 {
	return e.stateM.Balance()
}

// Ping answers the operator's liveness check.
func (e *Engine) Ping() string {
	return "🟢 Trend Agent Online"
}
