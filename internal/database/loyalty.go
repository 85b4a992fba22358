package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"carserve/internal/models"
)

// ApplyLoyaltyPoints posts a signed points movement against the customer
// profile with its ledger row in one transaction. Negative points (a
// redemption) are guarded against the current balance.
func (db *DB) ApplyLoyaltyPoints(ctx context.Context, customerID int64, txType string, points int64, description string, bookingID int64) (*models.LoyaltyTransaction, error) {
	var lt *models.LoyaltyTransaction
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		var before int64
		err := tx.QueryRowContext(ctx,
			`SELECT loyalty_points FROM customer_profiles WHERE account_id = ?`, customerID).Scan(&before)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read loyalty balance: %w", err)
		}

		after := before + points
		if after < 0 {
			return ErrInsufficientPoints
		}

		now := time.Now()
		if _, err := tx.ExecContext(ctx,
			`UPDATE customer_profiles SET loyalty_points = ?, updated_at = ? WHERE account_id = ?`,
			after, now, customerID); err != nil {
			return fmt.Errorf("failed to update loyalty balance: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`INSERT INTO loyalty_transactions (customer_id, type, points, description, booking_id, balance_before, balance_after, created_at)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			customerID, txType, points, description, bookingID, before, after, now)
		if err != nil {
			return fmt.Errorf("failed to insert loyalty transaction: %w", err)
		}
		id, _ := result.LastInsertId()
		lt = &models.LoyaltyTransaction{
			ID: id, CustomerID: customerID, Type: txType, Points: points,
			Description: description, BookingID: bookingID,
			BalanceBefore: before, BalanceAfter: after, CreatedAt: now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lt, nil
}

func (db *DB) ListLoyaltyTransactions(ctx context.Context, customerID int64) ([]*models.LoyaltyTransaction, error) {
	query := `SELECT id, customer_id, type, points, COALESCE(description, ''), booking_id,
                     balance_before, balance_after, created_at
              FROM loyalty_transactions WHERE customer_id = ? ORDER BY id DESC`
	rows, err := db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loyalty transactions: %w", err)
	}
	defer rows.Close()

	var txs []*models.LoyaltyTransaction
	for rows.Next() {
		t := &models.LoyaltyTransaction{}
		err := rows.Scan(&t.ID, &t.CustomerID, &t.Type, &t.Points, &t.Description,
			&t.BookingID, &t.BalanceBefore, &t.BalanceAfter, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loyalty transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
