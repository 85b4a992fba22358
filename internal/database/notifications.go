package database

import (
	"context"
	"fmt"
	"time"

	"carserve/internal/models"
)

func (db *DB) CreateNotification(ctx context.Context, n *models.Notification) error {
	now := time.Now()
	query := `INSERT INTO notifications (recipient_id, title, message, channel, status, booking_id, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		n.RecipientID, n.Title, n.Message, n.Channel, models.NotificationPending, n.BookingID, now)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	n.ID, _ = result.LastInsertId()
	n.Status = models.NotificationPending
	n.CreatedAt = now
	return nil
}

// FetchDueNotifications returns pending rows that are ready for delivery,
// either fresh or past their retry backoff.
func (db *DB) FetchDueNotifications(ctx context.Context, now time.Time, limit int) ([]*models.Notification, error) {
	query := `SELECT id, recipient_id, title, message, channel, status, booking_id,
                     retry_count, COALESCE(last_error, ''), next_retry_at, sent_at, read_at, created_at
              FROM notifications
              WHERE status = ? AND (next_retry_at IS NULL OR next_retry_at <= ?)
              ORDER BY id ASC LIMIT ?`
	rows, err := db.QueryContext(ctx, query, models.NotificationPending, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		err := rows.Scan(
			&n.ID, &n.RecipientID, &n.Title, &n.Message, &n.Channel, &n.Status, &n.BookingID,
			&n.RetryCount, &n.LastError, &n.NextRetryAt, &n.SentAt, &n.ReadAt, &n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (db *DB) MarkNotificationSent(ctx context.Context, id int64) error {
	now := time.Now()
	query := `UPDATE notifications SET status = ?, sent_at = ? WHERE id = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, models.NotificationSent, now, id, models.NotificationPending)
	if err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// RescheduleNotification records a delivery failure and the next attempt
// time. A zero nextRetry moves the row to failed for good.
func (db *DB) RescheduleNotification(ctx context.Context, id int64, lastError string, nextRetry time.Time) error {
	if nextRetry.IsZero() {
		query := `UPDATE notifications SET status = ?, retry_count = retry_count + 1, last_error = ? WHERE id = ?`
		if _, err := db.ExecContext(ctx, query, models.NotificationFailed, lastError, id); err != nil {
			return fmt.Errorf("failed to mark notification failed: %w", err)
		}
		return nil
	}
	query := `UPDATE notifications SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ? WHERE id = ?`
	if _, err := db.ExecContext(ctx, query, lastError, nextRetry, id); err != nil {
		return fmt.Errorf("failed to reschedule notification: %w", err)
	}
	return nil
}

func (db *DB) MarkNotificationRead(ctx context.Context, id, recipientID int64) error {
	query := `UPDATE notifications SET read_at = ? WHERE id = ? AND recipient_id = ? AND read_at IS NULL`
	result, err := db.ExecContext(ctx, query, time.Now(), id, recipientID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) ListNotificationsByRecipient(ctx context.Context, recipientID int64, limit int) ([]*models.Notification, error) {
	query := `SELECT id, recipient_id, title, message, channel, status, booking_id,
                     retry_count, COALESCE(last_error, ''), next_retry_at, sent_at, read_at, created_at
              FROM notifications WHERE recipient_id = ? ORDER BY id DESC LIMIT ?`
	rows, err := db.QueryContext(ctx, query, recipientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		err := rows.Scan(
			&n.ID, &n.RecipientID, &n.Title, &n.Message, &n.Channel, &n.Status, &n.BookingID,
			&n.RetryCount, &n.LastError, &n.NextRetryAt, &n.SentAt, &n.ReadAt, &n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
