package notifier

import (
	"context"
	"fmt"

	"carserve/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramAlerter pushes operator alerts (payout requests, urgent tickets)
// to the configured chat. When disabled it degrades to logging so the
// services that alert never have to care whether a bot token is present.
type TelegramAlerter struct {
	api    telegramAPI
	chatID int64
	logger zerolog.Logger
}

func NewTelegramAlerter(cfg config.TelegramConfig, logger *zerolog.Logger) (*TelegramAlerter, error) {
	l := logger.With().Str("component", "telegram").Logger()
	if !cfg.Enabled || cfg.BotToken == "" {
		l.Info().Msg("telegram alerts disabled")
		return &TelegramAlerter{chatID: cfg.ChatID, logger: l}, nil
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = cfg.Debug
	l.Info().Str("username", bot.Self.UserName).Msg("telegram alerts enabled")

	return &TelegramAlerter{api: bot, chatID: cfg.ChatID, logger: l}, nil
}

func (t *TelegramAlerter) Alert(ctx context.Context, text string) error {
	if t.api == nil {
		t.logger.Info().Str("text", text).Msg("admin alert")
		return nil
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram alert: %w", err)
	}
	return nil
}
