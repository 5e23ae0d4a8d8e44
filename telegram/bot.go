// Package telegram is the remote-messaging surface: a long-polling bot that
// renders the operator menu, dispatches the query/command entry points, and
// serves as the engine's notification sink.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"auto_trend_go_1/logs"
)

// Menu button labels. These double as the command dispatch keys.
const (
	btnReport  = "📊 Status Report"
	btnBalance = "💰 Balance"
	btnPing    = "✅ Ping"
	btnFlatten = "🛑 Close All (Emergency)"
)

// Commands is the query/command surface the core exposes to the operator.
type Commands interface {
	GetReport(ctx context.Context) string
	GetBalance() float64
	Ping() string
	EmergencyFlatten() error
}

// Bot wraps the Telegram API client for a single operator chat.
type Bot struct {
	api    *tgbotapi.BotAPI
	chatID int64
	cmds   Commands
}

// NewBot connects to Telegram and validates the credentials. Connecting here
// (rather than lazily) lets startup fail fast when the token is unusable.
func NewBot(token, chatID string) (*Bot, error) {
	if token == "" || chatID == "" {
		return nil, fmt.Errorf("telegram token and chat id must both be set")
	}
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat id %q: %w", chatID, err)
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}
	api.Debug = false
	logs.Infof("[Telegram] Connected as @%s", api.Self.UserName)

	return &Bot{api: api, chatID: id}, nil
}

// Attach binds the command surface. Must be called before Run.
func (b *Bot) Attach(cmds Commands) {
	b.cmds = cmds
}

// Notify sends text to the operator chat. Best-effort: a delivery failure is
// logged and otherwise ignored, it must never affect engine state.
func (b *Bot) Notify(text string) {
	msg := tgbotapi.NewMessage(b.chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		logs.Warnf("[Telegram] Failed to deliver notification: %v", err)
	}
}

// SendDashboard pushes the operator menu keyboard.
func (b *Bot) SendDashboard() {
	markup := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnReport),
			tgbotapi.NewKeyboardButton(btnBalance),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnPing),
			tgbotapi.NewKeyboardButton(btnFlatten),
		),
	)
	markup.ResizeKeyboard = true

	msg := tgbotapi.NewMessage(b.chatID, "🔐 Trend Agent: Secure Mode Activated")
	msg.ReplyMarkup = markup
	if _, err := b.api.Send(msg); err != nil {
		logs.Warnf("[Telegram] Failed to send dashboard menu: %v", err)
	}
}

// Run processes operator messages until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if b.cmds == nil {
		return fmt.Errorf("telegram bot started without an attached command surface")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			logs.Info("[Telegram] Bot stopped.")
			return nil
		case up := <-updates:
			if up.Message == nil {
				continue
			}
			// Only the configured operator chat may command the agent.
			if up.Message.Chat.ID != b.chatID {
				logs.Warnf("[Telegram] Ignoring message from foreign chat %d", up.Message.Chat.ID)
				continue
			}
			b.handle(ctx, strings.TrimSpace(up.Message.Text))
		}
	}
}

func (b *Bot) handle(ctx context.Context, text string) {
	switch {
	case strings.HasPrefix(text, "/start"):
		b.SendDashboard()
	case text == btnReport:
		b.Notify(b.cmds.GetReport(ctx))
	case text == btnBalance:
		b.Notify(fmt.Sprintf("💰 Balance: %.2f$", b.cmds.GetBalance()))
	case text == btnPing:
		b.Notify(b.cmds.Ping())
	case text == btnFlatten:
		if err := b.cmds.EmergencyFlatten(); err != nil {
			b.Notify(fmt.Sprintf("⚠️ Emergency close failed to persist: %v", err))
			return
		}
		b.Notify("⚠️ Emergency Close Executed.")
	default:
		b.Notify("Unknown command. Try /start")
	}
}
