// orchestrator.go
package main

import (
	"context"
	"fmt"
	"sync"

	"auto_trend_go_1/config"
	"auto_trend_go_1/confirm"
	"auto_trend_go_1/engine"
	"auto_trend_go_1/logs"
	"auto_trend_go_1/market"
	"auto_trend_go_1/monitor"
	"auto_trend_go_1/profit"
	"auto_trend_go_1/state"
	"auto_trend_go_1/telegram"
)

// Orchestrator wires the collaborators (feed, confirmation service, state
// store, accountant, telegram surface) into the engine and owns the
// process lifecycle.
type Orchestrator struct {
	engine     *engine.Engine
	bot        *telegram.Bot
	stateM     state.StateManagerInterface
	accountant *profit.Accountant
	cfg        *config.Config
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

func NewOrchestrator(cfg *config.Config, envCfg *config.EnvConfig, stateFilePath string) (*Orchestrator, error) {
	var feed market.Feed
	if cfg.UseSimulation {
		mock := market.NewMockFeed(cfg.Engine.MinHistoryBars)
		for _, inst := range cfg.Instruments {
			mock.SetSeries(inst.Ticker, market.SyntheticSeries(cfg.Engine.MinHistoryBars*3, 100, 5))
		}
		feed = mock
		logs.Warnf("<<<<<<<<<< WARNING: Running in simulation mode >>>>>>>>>>")
	} else {
		feed = market.NewYahooClient("", cfg.Normal.HTTPTimeoutSeconds, cfg.Engine.MinHistoryBars)
	}

	var confirmer confirm.Confirmer
	if envCfg.AlphaVantageKey == "" {
		logs.Warn("[Orchestrator] No Alpha Vantage key configured, confirmation check disabled (always allow).")
		confirmer = confirm.AllowAll{}
	} else {
		confirmer = confirm.NewAlphaVantageClient(envCfg.AlphaVantageKey, "", cfg.Engine.ConfirmTimeoutSeconds)
	}

	names := make([]string, 0, len(cfg.Instruments))
	for _, inst := range cfg.Instruments {
		names = append(names, inst.Name)
	}
	stateM, err := state.NewStateManager(stateFilePath, names, cfg.Account.DefaultBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize state manager: %w", err)
	}
	logs.Infof("State manager initialized, state will be persisted to: %s", stateFilePath)

	bot, err := telegram.NewBot(envCfg.TelegramToken, envCfg.TelegramChatID)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telegram bot: %w", err)
	}

	accountant := profit.NewAccountant()
	eng := engine.New(cfg, feed, confirmer, stateM, accountant, bot.Notify)
	bot.Attach(eng)

	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		engine:     eng,
		bot:        bot,
		stateM:     stateM,
		accountant: accountant,
		cfg:        cfg,
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

func (o *Orchestrator) Start() {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.engine.RunLoop(o.ctx)
	}()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		if err := o.bot.Run(o.ctx); err != nil {
			logs.Errorf("[Orchestrator] Telegram bot stopped with error: %v", err)
		}
	}()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		monitor.Start(o.stateM, o.accountant, o.cfg, o.ctx.Done())
	}()

	o.bot.SendDashboard()
	logs.Infof("Trend agent started with %d instruments, press Ctrl+C to exit.", len(o.cfg.Instruments))
}

func (o *Orchestrator) Stop() {
	logs.Info("Received close signal, starting graceful shutdown...")

	o.printFinalSummary()

	o.cancel()
	o.wg.Wait()
	logs.Info("All services stopped successfully.")
}

func (o *Orchestrator) printFinalSummary() {
	snap := o.stateM.Snapshot()
	open := 0
	for _, pos := range snap.Positions {
		if pos != nil {
			open++
		}
	}

	logs.Info("--- Final Summary ---")
	logs.Infof("Balance: %.2f", snap.Balance)
	logs.Infof("Open positions: %d", open)
	logs.Infof("Closed trades this run: %d, realized P&L: %+.2f",
		o.accountant.TradeCount(), o.accountant.GetRealizedPNL())
	logs.Info("---------------------")
}
