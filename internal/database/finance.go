package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"carserve/internal/models"
)

func (db *DB) CreatePayment(ctx context.Context, p *models.Payment) error {
	now := time.Now()
	query := `INSERT INTO payments (booking_id, amount, currency, status, method_type, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		p.BookingID, p.Amount, p.Currency, models.PaymentPending, p.MethodType, now, now)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	p.ID, _ = result.LastInsertId()
	p.Status = models.PaymentPending
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (db *DB) GetPaymentByBooking(ctx context.Context, bookingID int64) (*models.Payment, error) {
	var p models.Payment
	query := `SELECT id, booking_id, amount, currency, status, method_type, refund_amount,
                     captured_at, failed_at, refunded_at, COALESCE(failure_note, ''), created_at, updated_at
              FROM payments WHERE booking_id = ?`
	err := db.QueryRowContext(ctx, query, bookingID).Scan(
		&p.ID, &p.BookingID, &p.Amount, &p.Currency, &p.Status, &p.MethodType, &p.RefundAmount,
		&p.CapturedAt, &p.FailedAt, &p.RefundedAt, &p.FailureNote, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &p, nil
}

func (db *DB) MarkPaymentCaptured(ctx context.Context, id int64) error {
	now := time.Now()
	query := `UPDATE payments SET status = ?, captured_at = ?, updated_at = ? WHERE id = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, models.PaymentSucceeded, now, now, id, models.PaymentPending)
	if err != nil {
		return fmt.Errorf("failed to mark payment captured: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func (db *DB) MarkPaymentFailed(ctx context.Context, id int64, note string) error {
	now := time.Now()
	query := `UPDATE payments SET status = ?, failed_at = ?, failure_note = ?, updated_at = ? WHERE id = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, models.PaymentFailed, now, note, now, id, models.PaymentPending)
	if err != nil {
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// RefundPayment records a refund against a captured payment. Amount may be
// less than the capture for partial refunds after a late cancellation fee.
func (db *DB) RefundPayment(ctx context.Context, id, amount int64) error {
	now := time.Now()
	query := `UPDATE payments
              SET status = CASE WHEN ? + refund_amount >= amount THEN ? ELSE ? END,
                  refund_amount = refund_amount + ?, refunded_at = ?, updated_at = ?
              WHERE id = ? AND status IN (?, ?) AND refund_amount + ? <= amount`
	result, err := db.ExecContext(ctx, query,
		amount, models.PaymentRefunded, models.PaymentPartiallyRefunded,
		amount, now, now,
		id, models.PaymentSucceeded, models.PaymentPartiallyRefunded, amount)
	if err != nil {
		return fmt.Errorf("failed to refund payment: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// CreatePayoutRequest inserts the request after verifying the dealer balance
// covers the amount. The balance itself is only debited when the payout
// completes.
func (db *DB) CreatePayoutRequest(ctx context.Context, p *models.DealerPayout) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		var balance int64
		err := tx.QueryRowContext(ctx,
			`SELECT current_balance FROM dealer_profiles WHERE account_id = ?`, p.DealerID).Scan(&balance)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read dealer balance: %w", err)
		}
		if balance < p.Amount {
			return ErrInsufficientBalance
		}

		now := time.Now()
		query := `INSERT INTO dealer_payouts (
                    dealer_id, amount, processing_fee, net_amount, status, reference,
                    bank_snapshot, processed_by, created_at, updated_at
                  ) VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`
		result, err := tx.ExecContext(ctx, query,
			p.DealerID, p.Amount, p.ProcessingFee, p.NetAmount, models.PayoutPending,
			p.Reference, p.BankSnapshot, now, now)
		if err != nil {
			return fmt.Errorf("failed to create payout request: %w", err)
		}
		p.ID, _ = result.LastInsertId()
		p.Status = models.PayoutPending
		p.CreatedAt = now
		p.UpdatedAt = now
		return nil
	})
}

func (db *DB) GetPayout(ctx context.Context, id int64) (*models.DealerPayout, error) {
	var p models.DealerPayout
	query := `SELECT id, dealer_id, amount, processing_fee, net_amount, status, reference,
                     COALESCE(bank_snapshot, ''), processed_by, COALESCE(admin_notes, ''),
                     processed_at, created_at, updated_at
              FROM dealer_payouts WHERE id = ?`
	err := db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.DealerID, &p.Amount, &p.ProcessingFee, &p.NetAmount, &p.Status, &p.Reference,
		&p.BankSnapshot, &p.ProcessedBy, &p.AdminNotes, &p.ProcessedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payout: %w", err)
	}
	return &p, nil
}

// UpdatePayoutStatus moves the payout along the admin workflow with a guard
// on the current status.
func (db *DB) UpdatePayoutStatus(ctx context.Context, id int64, fromStatus, toStatus string, adminID int64, notes string) error {
	query := `UPDATE dealer_payouts SET status = ?, processed_by = ?, admin_notes = ?, updated_at = ?
              WHERE id = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, toStatus, adminID, notes, time.Now(), id, fromStatus)
	if err != nil {
		return fmt.Errorf("failed to update payout status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// CompletePayout debits the dealer balance by the net amount and writes the
// ledger row atomically with the status change. The balance guard inside the
// UPDATE keeps the balance from going negative even if completion races a
// concurrent settlement.
func (db *DB) CompletePayout(ctx context.Context, p *models.DealerPayout, adminID int64) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		now := time.Now()

		result, err := tx.ExecContext(ctx,
			`UPDATE dealer_payouts SET status = ?, processed_by = ?, processed_at = ?, updated_at = ?
             WHERE id = ? AND status = ?`,
			models.PayoutCompleted, adminID, now, now, p.ID, models.PayoutProcessing)
		if err != nil {
			return fmt.Errorf("failed to complete payout: %w", err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return ErrInvalidTransition
		}

		var before int64
		err = tx.QueryRowContext(ctx,
			`SELECT current_balance FROM dealer_profiles WHERE account_id = ?`, p.DealerID).Scan(&before)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read dealer balance: %w", err)
		}

		result, err = tx.ExecContext(ctx,
			`UPDATE dealer_profiles SET current_balance = current_balance - ?, updated_at = ?
             WHERE account_id = ? AND current_balance >= ?`,
			p.NetAmount, now, p.DealerID, p.NetAmount)
		if err != nil {
			return fmt.Errorf("failed to debit dealer balance: %w", err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return ErrInsufficientBalance
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO balance_transactions (dealer_id, amount, type, description, booking_id, payout_id, balance_before, balance_after, created_at)
             VALUES (?, ?, ?, ?, 0, ?, ?, ?, ?)`,
			p.DealerID, -p.NetAmount, models.TxPayout,
			fmt.Sprintf("payout %s", p.Reference), p.ID, before, before-p.NetAmount, now); err != nil {
			return fmt.Errorf("failed to insert balance transaction: %w", err)
		}

		p.Status = models.PayoutCompleted
		p.ProcessedBy = adminID
		p.ProcessedAt = &now
		p.UpdatedAt = now
		return nil
	})
}

func (db *DB) ListPayoutsByDealer(ctx context.Context, dealerID int64) ([]*models.DealerPayout, error) {
	return db.listPayouts(ctx, `WHERE dealer_id = ? ORDER BY created_at DESC`, dealerID)
}

func (db *DB) ListPayoutsByStatus(ctx context.Context, status string) ([]*models.DealerPayout, error) {
	return db.listPayouts(ctx, `WHERE status = ? ORDER BY created_at ASC`, status)
}

func (db *DB) ListPayoutsByDateRange(ctx context.Context, start, end time.Time) ([]*models.DealerPayout, error) {
	return db.listPayouts(ctx,
		`WHERE created_at >= ? AND created_at < ? ORDER BY created_at ASC`, start, end)
}

func (db *DB) listPayouts(ctx context.Context, clause string, args ...interface{}) ([]*models.DealerPayout, error) {
	query := `SELECT id, dealer_id, amount, processing_fee, net_amount, status, reference,
                     COALESCE(bank_snapshot, ''), processed_by, COALESCE(admin_notes, ''),
                     processed_at, created_at, updated_at
              FROM dealer_payouts ` + clause
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}
	defer rows.Close()

	var payouts []*models.DealerPayout
	for rows.Next() {
		p := &models.DealerPayout{}
		err := rows.Scan(
			&p.ID, &p.DealerID, &p.Amount, &p.ProcessingFee, &p.NetAmount, &p.Status, &p.Reference,
			&p.BankSnapshot, &p.ProcessedBy, &p.AdminNotes, &p.ProcessedAt, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payout: %w", err)
		}
		payouts = append(payouts, p)
	}
	return payouts, rows.Err()
}

// AdjustDealerBalance posts a signed manual adjustment with its ledger row.
func (db *DB) AdjustDealerBalance(ctx context.Context, dealerID, amount int64, description string) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		var before int64
		err := tx.QueryRowContext(ctx,
			`SELECT current_balance FROM dealer_profiles WHERE account_id = ?`, dealerID).Scan(&before)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read dealer balance: %w", err)
		}
		after := before + amount
		if after < 0 {
			return ErrInsufficientBalance
		}

		now := time.Now()
		if _, err := tx.ExecContext(ctx,
			`UPDATE dealer_profiles SET current_balance = ?, updated_at = ? WHERE account_id = ?`,
			after, now, dealerID); err != nil {
			return fmt.Errorf("failed to adjust dealer balance: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO balance_transactions (dealer_id, amount, type, description, booking_id, payout_id, balance_before, balance_after, created_at)
             VALUES (?, ?, ?, ?, 0, 0, ?, ?, ?)`,
			dealerID, amount, models.TxAdjustment, description, before, after, now); err != nil {
			return fmt.Errorf("failed to insert balance transaction: %w", err)
		}
		return nil
	})
}

func (db *DB) ListBalanceTransactions(ctx context.Context, dealerID int64) ([]*models.BalanceTransaction, error) {
	query := `SELECT id, dealer_id, amount, type, COALESCE(description, ''), booking_id, payout_id,
                     balance_before, balance_after, created_at
              FROM balance_transactions WHERE dealer_id = ? ORDER BY id DESC`
	rows, err := db.QueryContext(ctx, query, dealerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list balance transactions: %w", err)
	}
	defer rows.Close()

	var txs []*models.BalanceTransaction
	for rows.Next() {
		t := &models.BalanceTransaction{}
		err := rows.Scan(&t.ID, &t.DealerID, &t.Amount, &t.Type, &t.Description,
			&t.BookingID, &t.PayoutID, &t.BalanceBefore, &t.BalanceAfter, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
