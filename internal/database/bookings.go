package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"carserve/internal/models"
)

const bookingColumns = `id, number, customer_id, slot_id, service_id, dealer_id, vehicle_id, status,
                 service_amount, discount, tax, total, platform_fee, dealer_amount,
                 policy_id, promotion_id, location, scheduled_at, deadline,
                 started_at, completed_at, COALESCE(instructions, ''), COALESCE(cancel_reason, ''),
                 created_at, updated_at, version`

// CreateBookingClaimingSlot atomically claims one unit of slot capacity and
// inserts the booking. The guarded decrement is the single source of truth
// for capacity: if it touches no rows the slot is full, blocked or inactive
// and the whole transaction rolls back with ErrSlotUnavailable.
func (db *DB) CreateBookingClaimingSlot(ctx context.Context, b *models.Booking) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		now := time.Now()

		claim := `UPDATE service_slots
                  SET available_capacity = available_capacity - 1, updated_at = ?
                  WHERE id = ? AND available_capacity > 0 AND is_active = 1 AND is_blocked = 0`
		result, err := tx.ExecContext(ctx, claim, now, b.SlotID)
		if err != nil {
			return fmt.Errorf("failed to claim slot capacity: %w", err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return ErrSlotUnavailable
		}

		insert := `INSERT INTO bookings (
                     number, customer_id, slot_id, service_id, dealer_id, vehicle_id, status,
                     service_amount, discount, tax, total, platform_fee, dealer_amount,
                     policy_id, promotion_id, location, scheduled_at, deadline, instructions,
                     created_at, updated_at, version
                   ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`
		result, err = tx.ExecContext(ctx, insert,
			b.Number, b.CustomerID, b.SlotID, b.ServiceID, b.DealerID, b.VehicleID, models.BookingPending,
			b.ServiceAmount, b.Discount, b.Tax, b.Total, b.PlatformFee, b.DealerAmount,
			b.PolicyID, b.PromotionID, b.Location, b.ScheduledAt, b.Deadline, b.Instructions,
			now, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert booking: %w", err)
		}
		b.ID, _ = result.LastInsertId()
		b.Status = models.BookingPending
		b.CreatedAt = now
		b.UpdatedAt = now
		b.Version = 1

		return insertStatusHistory(ctx, tx, b.ID, "", models.BookingPending, b.CustomerID, "booking created")
	})
}

// TransitionBooking moves the booking to newStatus guarded by both the
// current status and the optimistic version, and appends a history row. A
// zero-row update means either a concurrent writer won or the transition is
// no longer valid; callers distinguish by re-reading.
func (db *DB) TransitionBooking(ctx context.Context, b *models.Booking, newStatus string, changedBy int64, reason string) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		now := time.Now()

		set := `status = ?, updated_at = ?, version = version + 1`
		args := []interface{}{newStatus, now}
		switch newStatus {
		case models.BookingInProgress:
			set += `, started_at = ?`
			args = append(args, now)
		case models.BookingCompleted:
			set += `, completed_at = ?`
			args = append(args, now)
		case models.BookingCancelledByCustomer, models.BookingCancelledByDealer, models.BookingExpired, models.BookingNoShow:
			set += `, cancel_reason = ?`
			args = append(args, reason)
		}
		args = append(args, b.ID, b.Status, b.Version)

		query := `UPDATE bookings SET ` + set + ` WHERE id = ? AND status = ? AND version = ?`
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to transition booking: %w", err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return ErrConcurrentModification
		}

		if err := insertStatusHistory(ctx, tx, b.ID, b.Status, newStatus, changedBy, reason); err != nil {
			return err
		}

		b.Status = newStatus
		b.Version++
		b.UpdatedAt = now
		switch newStatus {
		case models.BookingInProgress:
			b.StartedAt = &now
		case models.BookingCompleted:
			b.CompletedAt = &now
		case models.BookingCancelledByCustomer, models.BookingCancelledByDealer, models.BookingExpired, models.BookingNoShow:
			b.CancelReason = reason
		}
		return nil
	})
}

// ReleaseBookingSlot returns the claimed capacity unit after a cancellation
// or expiry, capped at the slot's total so double releases cannot inflate it.
func (db *DB) ReleaseBookingSlot(ctx context.Context, slotID int64) error {
	query := `UPDATE service_slots
              SET available_capacity = available_capacity + 1, updated_at = ?
              WHERE id = ? AND available_capacity < total_capacity`
	if _, err := db.ExecContext(ctx, query, time.Now(), slotID); err != nil {
		return fmt.Errorf("failed to release slot capacity: %w", err)
	}
	return nil
}

func insertStatusHistory(ctx context.Context, tx *sql.Tx, bookingID int64, oldStatus, newStatus string, changedBy int64, reason string) error {
	query := `INSERT INTO booking_status_history (booking_id, old_status, new_status, changed_by, reason, created_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query, bookingID, oldStatus, newStatus, changedBy, reason, time.Now()); err != nil {
		return fmt.Errorf("failed to insert status history: %w", err)
	}
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	return db.scanBooking(db.QueryRowContext(ctx, query, id))
}

func (db *DB) GetBookingByNumber(ctx context.Context, number string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE number = ?`
	return db.scanBooking(db.QueryRowContext(ctx, query, number))
}

func (db *DB) scanBooking(row *sql.Row) (*models.Booking, error) {
	b := &models.Booking{}
	err := row.Scan(
		&b.ID, &b.Number, &b.CustomerID, &b.SlotID, &b.ServiceID, &b.DealerID, &b.VehicleID, &b.Status,
		&b.ServiceAmount, &b.Discount, &b.Tax, &b.Total, &b.PlatformFee, &b.DealerAmount,
		&b.PolicyID, &b.PromotionID, &b.Location, &b.ScheduledAt, &b.Deadline,
		&b.StartedAt, &b.CompletedAt, &b.Instructions, &b.CancelReason,
		&b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

func (db *DB) ListBookingsByCustomer(ctx context.Context, customerID int64) ([]*models.Booking, error) {
	return db.listBookings(ctx, `WHERE customer_id = ? ORDER BY scheduled_at DESC`, customerID)
}

func (db *DB) ListBookingsByDealer(ctx context.Context, dealerID int64) ([]*models.Booking, error) {
	return db.listBookings(ctx, `WHERE dealer_id = ? ORDER BY scheduled_at DESC`, dealerID)
}

// ListExpiredPending returns pending bookings whose confirmation deadline has
// passed, for the sweeper.
func (db *DB) ListExpiredPending(ctx context.Context, now time.Time) ([]*models.Booking, error) {
	return db.listBookings(ctx, `WHERE status = ? AND deadline < ? ORDER BY deadline ASC`,
		models.BookingPending, now)
}

// ListConfirmedForDate returns confirmed bookings scheduled on the given day,
// for reminder dispatch.
func (db *DB) ListConfirmedForDate(ctx context.Context, date time.Time) ([]*models.Booking, error) {
	return db.listBookings(ctx, `WHERE status = ? AND date(scheduled_at) = ? ORDER BY scheduled_at ASC`,
		models.BookingConfirmed, date.Format("2006-01-02"))
}

func (db *DB) ListBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	return db.listBookings(ctx, `WHERE date(scheduled_at) >= ? AND date(scheduled_at) <= ? ORDER BY scheduled_at ASC`,
		start.Format("2006-01-02"), end.Format("2006-01-02"))
}

func (db *DB) listBookings(ctx context.Context, clause string, args ...interface{}) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ` + clause
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b := &models.Booking{}
		err := rows.Scan(
			&b.ID, &b.Number, &b.CustomerID, &b.SlotID, &b.ServiceID, &b.DealerID, &b.VehicleID, &b.Status,
			&b.ServiceAmount, &b.Discount, &b.Tax, &b.Total, &b.PlatformFee, &b.DealerAmount,
			&b.PolicyID, &b.PromotionID, &b.Location, &b.ScheduledAt, &b.Deadline,
			&b.StartedAt, &b.CompletedAt, &b.Instructions, &b.CancelReason,
			&b.CreatedAt, &b.UpdatedAt, &b.Version,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (db *DB) GetBookingHistory(ctx context.Context, bookingID int64) ([]*models.BookingStatusHistory, error) {
	query := `SELECT id, booking_id, COALESCE(old_status, ''), new_status, changed_by, COALESCE(reason, ''), created_at
              FROM booking_status_history WHERE booking_id = ? ORDER BY id ASC`
	rows, err := db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking history: %w", err)
	}
	defer rows.Close()

	var history []*models.BookingStatusHistory
	for rows.Next() {
		h := &models.BookingStatusHistory{}
		err := rows.Scan(&h.ID, &h.BookingID, &h.OldStatus, &h.NewStatus, &h.ChangedBy, &h.Reason, &h.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan status history: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// SettleCompletedBooking posts the completion side effects in one
// transaction: the dealer balance is credited with the dealer share, a ledger
// row records before/after, and the rollup counters advance.
func (db *DB) SettleCompletedBooking(ctx context.Context, b *models.Booking) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		now := time.Now()

		var before int64
		err := tx.QueryRowContext(ctx,
			`SELECT current_balance FROM dealer_profiles WHERE account_id = ?`, b.DealerID).Scan(&before)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read dealer balance: %w", err)
		}
		after := before + b.DealerAmount

		if _, err := tx.ExecContext(ctx,
			`UPDATE dealer_profiles SET current_balance = ?, total_bookings = total_bookings + 1, updated_at = ?
             WHERE account_id = ?`, after, now, b.DealerID); err != nil {
			return fmt.Errorf("failed to credit dealer balance: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO balance_transactions (dealer_id, amount, type, description, booking_id, payout_id, balance_before, balance_after, created_at)
             VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?)`,
			b.DealerID, b.DealerAmount, models.TxBooking,
			fmt.Sprintf("earnings for booking %s", b.Number), b.ID, before, after, now); err != nil {
			return fmt.Errorf("failed to insert balance transaction: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE customer_profiles SET total_bookings = total_bookings + 1, total_spent = total_spent + ?, updated_at = ?
             WHERE account_id = ?`, b.Total, now, b.CustomerID); err != nil {
			return fmt.Errorf("failed to update customer rollups: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE services SET total_bookings = total_bookings + 1, updated_at = ? WHERE id = ?`,
			now, b.ServiceID); err != nil {
			return fmt.Errorf("failed to update service rollups: %w", err)
		}
		return nil
	})
}
