// Package bot is the chat transport: it long-polls Telegram for messages,
// feeds each one through the normalization engine, submits validated rows to
// storage, and replies with a short acknowledgement. Per-chat ordering is
// Telegram's concern; the engine is stateless across messages.
package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"trade-parser-bot/config"
	"trade-parser-bot/internal/cache"
	"trade-parser-bot/internal/database"
	"trade-parser-bot/internal/engine"
)

// EnvelopeBroadcaster pushes produced envelopes to live subscribers.
type EnvelopeBroadcaster interface {
	BroadcastJSON(v any)
}

// Bot wires the Telegram transport to the engine and the trade store.
type Bot struct {
	api         *tgbotapi.BotAPI
	engine      *engine.Engine
	store       database.TradeStore
	tracker     *cache.UpdateTracker
	broadcaster EnvelopeBroadcaster
	logger      zerolog.Logger
	pollTimeout int
	defaultTF   string
}

// New creates the bot and verifies the token against the Telegram API.
func New(
	cfg config.TelegramConfig,
	engineCfg config.EngineConfig,
	eng *engine.Engine,
	store database.TradeStore,
	tracker *cache.UpdateTracker,
	broadcaster EnvelopeBroadcaster,
	logger zerolog.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}

	pollTimeout := cfg.PollInterval
	if pollTimeout <= 0 {
		pollTimeout = 1
	}

	return &Bot{
		api:         api,
		engine:      eng,
		store:       store,
		tracker:     tracker,
		broadcaster: broadcaster,
		logger:      logger.With().Str("component", "TelegramBot").Logger(),
		pollTimeout: pollTimeout,
		defaultTF:   engineCfg.DefaultTimeframe,
	}, nil
}

// Run long-polls updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info().Str("username", b.api.Self.UserName).Msg("telegram bot polling")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	if update.Message.IsCommand() {
		return
	}

	traceID := uuid.NewString()
	logger := b.logger.With().Str("trace_id", traceID).Int("update_id", update.UpdateID).Logger()

	if b.tracker != nil && b.tracker.IsProcessed(ctx, update.UpdateID) {
		logger.Debug().Msg("update already processed, skipping")
		return
	}

	chatID := update.Message.Chat.ID
	b.reply(chatID, "Parsing trade idea…")

	result := b.engine.Process(engine.RawMessage{
		Text:             update.Message.Text,
		ReferenceDate:    time.Unix(int64(update.Message.Date), 0).UTC(),
		DefaultTimeframe: b.defaultTF,
	})
	logger.Info().
		Str("class", result.Class.String()).
		Int("trades", len(result.Envelope.Trades)).
		Int("dropped", result.Dropped).
		Msg("message processed")

	if b.broadcaster != nil {
		b.broadcaster.BroadcastJSON(result.Envelope)
	}

	inserted := 0
	if result.Envelope.HasTrades {
		var err error
		inserted, err = b.store.SaveTrades(ctx, result.Envelope.Trades)
		if err != nil {
			logger.Error().Err(err).Int("inserted", inserted).Msg("some rows failed to persist")
		}
	}

	b.reply(chatID, FormatAck(result.Envelope, inserted, b.store.Name()))

	if b.tracker != nil {
		if err := b.tracker.MarkProcessed(ctx, update.UpdateID); err != nil {
			logger.Warn().Err(err).Msg("failed to mark update processed")
		}
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send reply")
	}
}

// FormatAck renders the short human-readable acknowledgement for one
// processed message.
func FormatAck(env engine.ResultEnvelope, inserted int, storeName string) string {
	if !env.HasTrades {
		reason := "no rule found"
		if env.NoTradeReason != nil {
			reason = *env.NoTradeReason
		}
		return fmt.Sprintf("No trade: %s", reason)
	}
	if storeName == "none" {
		return fmt.Sprintf("%d trade(s) found", len(env.Trades))
	}
	return fmt.Sprintf("%d trade(s) found, %d inserted into %s", len(env.Trades), inserted, storeName)
}
