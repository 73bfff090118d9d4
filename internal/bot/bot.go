// Package bot is the Telegram-facing layer: command dispatch, the guided
// draft flow, deadline nudges, and the morning greeting. All outbound
// messages go to the single configured owner; updates from anyone else are
// dropped without a reply.
package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/claude/gymbot/internal/draft"
	"github.com/claude/gymbot/internal/quote"
	"github.com/claude/gymbot/internal/storage"
)

// API is the slice of the Telegram client the bot uses. *tgbotapi.BotAPI
// satisfies it; tests substitute a recorder.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Options configures bot behavior.
type Options struct {
	OwnerID         int64
	Zone            *time.Location
	SnoozeAfter     time.Duration
	StartupGreeting bool

	// Now overrides the clock in tests. Leave nil for time.Now.
	Now func() time.Time
}

// Bot wires the Telegram transport to the draft session, persistence
// gateway, reporting, and the deadline evaluator.
type Bot struct {
	api    API
	store  storage.Store
	quotes *quote.Client
	opts   Options
	log    *slog.Logger

	// Draft state for the single owner. The mutex covers webhook mode,
	// where Telegram may deliver updates concurrently.
	mu       sync.Mutex
	draft    *draft.Session
	awaiting bool
}

// New creates a Bot.
func New(api API, store storage.Store, quotes *quote.Client, opts Options, log *slog.Logger) *Bot {
	if opts.Zone == nil {
		opts.Zone = time.UTC
	}
	return &Bot{api: api, store: store, quotes: quotes, opts: opts, log: log}
}

// now returns the current time in the owner's zone.
func (b *Bot) now() time.Time {
	if b.opts.Now != nil {
		return b.opts.Now().In(b.opts.Zone)
	}
	return time.Now().In(b.opts.Zone)
}

// Run long-polls Telegram until ctx is canceled. Webhook deployments skip
// Run and feed HandleUpdate directly.
func (b *Bot) Run(ctx context.Context) {
	if b.opts.StartupGreeting {
		b.send("Gym supervisor is online. Choose an action:", mainMenuKeyboard())
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleTelegramUpdate decodes a raw webhook payload and dispatches it.
func (b *Bot) HandleTelegramUpdate(ctx context.Context, body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("decoding update: %w", err)
	}
	b.HandleUpdate(ctx, update)
	return nil
}

// HandleUpdate processes one inbound update. Updates from senders other
// than the owner are dropped silently.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	sender := update.SentFrom()
	if sender == nil || sender.ID != b.opts.OwnerID {
		return
	}

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.Message != nil:
		b.handleText(ctx, update.Message.Text)
	}
}

// send delivers text (plus an optional inline keyboard) to the owner.
// Transport failures are logged, never fatal.
func (b *Bot) send(text string, keyboards ...tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(b.opts.OwnerID, text)
	if len(keyboards) > 0 {
		msg.ReplyMarkup = keyboards[0]
	}
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("telegram send failed", "error", err)
	}
}
