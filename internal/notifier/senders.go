package notifier

import (
	"context"

	"carserve/internal/domain"
	"carserve/internal/models"

	"github.com/rs/zerolog"
)

// LogSender records the delivery in the structured log and reports success.
// It stands in for the email, sms and push gateways: dispatch, retries and
// dead-lettering behave exactly as they will once a real gateway is plugged
// in behind the same interface.
type LogSender struct {
	channel string
	logger  zerolog.Logger
}

func NewLogSender(channel string, logger *zerolog.Logger) *LogSender {
	return &LogSender{
		channel: channel,
		logger:  logger.With().Str("component", "sender").Str("channel", channel).Logger(),
	}
}

func (s *LogSender) Channel() string { return s.channel }

func (s *LogSender) Send(ctx context.Context, n *models.Notification) error {
	s.logger.Info().
		Int64("notification_id", n.ID).
		Int64("recipient_id", n.RecipientID).
		Str("title", n.Title).
		Msg("notification delivered")
	return nil
}

// DefaultSenders returns one sender per supported notification channel.
func DefaultSenders(logger *zerolog.Logger) []domain.ChannelSender {
	return []domain.ChannelSender{
		NewLogSender(models.ChannelEmail, logger),
		NewLogSender(models.ChannelSMS, logger),
		NewLogSender(models.ChannelPush, logger),
	}
}
