package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"carserve/internal/models"
)

func (db *DB) CreateTicket(ctx context.Context, t *models.SupportTicket) error {
	now := time.Now()
	query := `INSERT INTO support_tickets (
                number, user_id, subject, description, category, status, priority, booking_id, created_at, updated_at
              ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		t.Number, t.UserID, t.Subject, t.Description, t.Category,
		models.TicketOpen, t.Priority, t.BookingID, now, now)
	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	t.ID, _ = result.LastInsertId()
	t.Status = models.TicketOpen
	t.CreatedAt = now
	t.UpdatedAt = now
	return nil
}

func (db *DB) GetTicket(ctx context.Context, id int64) (*models.SupportTicket, error) {
	return db.getTicket(ctx, `WHERE id = ?`, id)
}

func (db *DB) GetTicketByNumber(ctx context.Context, number string) (*models.SupportTicket, error) {
	return db.getTicket(ctx, `WHERE number = ?`, number)
}

func (db *DB) getTicket(ctx context.Context, clause string, args ...interface{}) (*models.SupportTicket, error) {
	var t models.SupportTicket
	query := `SELECT id, number, user_id, subject, COALESCE(description, ''), category, status, priority,
                     assigned_to, booking_id, resolved_at, created_at, updated_at
              FROM support_tickets ` + clause
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&t.ID, &t.Number, &t.UserID, &t.Subject, &t.Description, &t.Category, &t.Status, &t.Priority,
		&t.AssignedTo, &t.BookingID, &t.ResolvedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return &t, nil
}

// UpdateTicketStatus enforces the current status as a guard so stale admin
// tabs cannot clobber each other.
func (db *DB) UpdateTicketStatus(ctx context.Context, id int64, fromStatus, toStatus string) error {
	now := time.Now()
	set := `status = ?, updated_at = ?`
	args := []interface{}{toStatus, now}
	if toStatus == models.TicketResolved {
		set += `, resolved_at = ?`
		args = append(args, now)
	}
	args = append(args, id, fromStatus)

	query := `UPDATE support_tickets SET ` + set + ` WHERE id = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update ticket status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func (db *DB) AssignTicket(ctx context.Context, id, adminID int64) error {
	query := `UPDATE support_tickets SET assigned_to = ?, status = ?, updated_at = ?
              WHERE id = ? AND status IN (?, ?)`
	result, err := db.ExecContext(ctx, query, adminID, models.TicketInProgress, time.Now(),
		id, models.TicketOpen, models.TicketInProgress)
	if err != nil {
		return fmt.Errorf("failed to assign ticket: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func (db *DB) ListTicketsByUser(ctx context.Context, userID int64) ([]*models.SupportTicket, error) {
	return db.listTickets(ctx, `WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

func (db *DB) ListOpenTickets(ctx context.Context) ([]*models.SupportTicket, error) {
	return db.listTickets(ctx,
		`WHERE status IN (?, ?) ORDER BY
           CASE priority WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END,
           created_at ASC`,
		models.TicketOpen, models.TicketInProgress)
}

func (db *DB) listTickets(ctx context.Context, clause string, args ...interface{}) ([]*models.SupportTicket, error) {
	query := `SELECT id, number, user_id, subject, COALESCE(description, ''), category, status, priority,
                     assigned_to, booking_id, resolved_at, created_at, updated_at
              FROM support_tickets ` + clause
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*models.SupportTicket
	for rows.Next() {
		t := &models.SupportTicket{}
		err := rows.Scan(
			&t.ID, &t.Number, &t.UserID, &t.Subject, &t.Description, &t.Category, &t.Status, &t.Priority,
			&t.AssignedTo, &t.BookingID, &t.ResolvedAt, &t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (db *DB) AddTicketMessage(ctx context.Context, m *models.SupportMessage) error {
	now := time.Now()
	query := `INSERT INTO support_messages (ticket_id, sender_id, body, is_read, created_at)
              VALUES (?, ?, ?, 0, ?)`
	result, err := db.ExecContext(ctx, query, m.TicketID, m.SenderID, m.Body, now)
	if err != nil {
		return fmt.Errorf("failed to add ticket message: %w", err)
	}
	m.ID, _ = result.LastInsertId()
	m.CreatedAt = now

	if _, err := db.ExecContext(ctx,
		`UPDATE support_tickets SET updated_at = ? WHERE id = ?`, now, m.TicketID); err != nil {
		return fmt.Errorf("failed to touch ticket: %w", err)
	}
	return nil
}

func (db *DB) ListTicketMessages(ctx context.Context, ticketID int64) ([]*models.SupportMessage, error) {
	query := `SELECT id, ticket_id, sender_id, body, is_read, created_at
              FROM support_messages WHERE ticket_id = ? ORDER BY id ASC`
	rows, err := db.QueryContext(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ticket messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.SupportMessage
	for rows.Next() {
		m := &models.SupportMessage{}
		if err := rows.Scan(&m.ID, &m.TicketID, &m.SenderID, &m.Body, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ticket message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
