package service

import (
	"context"

	"carserve/internal/domain"
	"carserve/internal/models"

	"github.com/rs/zerolog"
)

type NotificationService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewNotificationService(repo domain.Repository, logger *zerolog.Logger) *NotificationService {
	return &NotificationService{repo: repo, logger: logger}
}

// Enqueue queues a message for delivery on the recipient's preferred channel.
func (s *NotificationService) Enqueue(ctx context.Context, recipientID int64, title, message string, bookingID int64) {
	enqueueNotification(ctx, s.repo, s.logger, recipientID, title, message, bookingID)
}

func (s *NotificationService) MarkRead(ctx context.Context, notificationID, recipientID int64) error {
	return s.repo.MarkNotificationRead(ctx, notificationID, recipientID)
}

func (s *NotificationService) Inbox(ctx context.Context, recipientID int64, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListNotificationsByRecipient(ctx, recipientID, limit)
}
