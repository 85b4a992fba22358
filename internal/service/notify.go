package service

import (
	"context"

	"carserve/internal/domain"
	"carserve/internal/models"

	"github.com/rs/zerolog"
)

// enqueueNotification queues a message for the dispatch worker. Customers get
// their preferred channel; everyone else gets email. Enqueue failures are
// logged and swallowed so a notification hiccup never fails the operation
// that triggered it.
func enqueueNotification(ctx context.Context, repo domain.Repository, logger *zerolog.Logger, recipientID int64, title, message string, bookingID int64) {
	channel := models.ChannelEmail
	if profile, err := repo.GetCustomerProfile(ctx, recipientID); err == nil && profile.NotifyVia != "" {
		channel = profile.NotifyVia
	}

	notification := &models.Notification{
		RecipientID: recipientID,
		Title:       title,
		Message:     message,
		Channel:     channel,
		BookingID:   bookingID,
	}
	if err := repo.CreateNotification(ctx, notification); err != nil {
		logger.Error().Err(err).Int64("recipient_id", recipientID).Str("title", title).Msg("enqueue notification error")
	}
}
