package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"carserve/internal/models"
)

// CreateReview inserts the review and recomputes the dealer's aggregate
// rating in the same transaction. One review per booking, enforced by the
// unique constraint.
func (db *DB) CreateReview(ctx context.Context, r *models.Review) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		now := time.Now()
		query := `INSERT INTO reviews (
                    customer_id, dealer_id, booking_id, overall_rating,
                    service_quality, punctuality, value_for_money,
                    title, comment, is_published, created_at
                  ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)`
		result, err := tx.ExecContext(ctx, query,
			r.CustomerID, r.DealerID, r.BookingID, r.OverallRating,
			r.ServiceQuality, r.Punctuality, r.ValueForMoney,
			r.Title, r.Comment, now)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateReview
			}
			return fmt.Errorf("failed to create review: %w", err)
		}
		r.ID, _ = result.LastInsertId()
		r.IsPublished = true
		r.CreatedAt = now

		return recomputeDealerRating(ctx, tx, r.DealerID)
	})
}

// SetReviewPublished hides or restores a review and keeps the dealer
// aggregates in step.
func (db *DB) SetReviewPublished(ctx context.Context, id int64, published bool) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		var dealerID int64
		err := tx.QueryRowContext(ctx, `SELECT dealer_id FROM reviews WHERE id = ?`, id).Scan(&dealerID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get review: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE reviews SET is_published = ? WHERE id = ?`, published, id); err != nil {
			return fmt.Errorf("failed to update review: %w", err)
		}
		return recomputeDealerRating(ctx, tx, dealerID)
	})
}

func recomputeDealerRating(ctx context.Context, tx *sql.Tx, dealerID int64) error {
	query := `UPDATE dealer_profiles SET
                rating = COALESCE((SELECT AVG(overall_rating) FROM reviews WHERE dealer_id = ? AND is_published = 1), 0),
                total_reviews = (SELECT COUNT(*) FROM reviews WHERE dealer_id = ? AND is_published = 1),
                updated_at = ?
              WHERE account_id = ?`
	if _, err := tx.ExecContext(ctx, query, dealerID, dealerID, time.Now(), dealerID); err != nil {
		return fmt.Errorf("failed to recompute dealer rating: %w", err)
	}
	return nil
}

func (db *DB) GetReviewByBooking(ctx context.Context, bookingID int64) (*models.Review, error) {
	var r models.Review
	query := `SELECT id, customer_id, dealer_id, booking_id, overall_rating,
                     service_quality, punctuality, value_for_money,
                     COALESCE(title, ''), COALESCE(comment, ''), is_published,
                     COALESCE(dealer_response, ''), responded_at, created_at
              FROM reviews WHERE booking_id = ?`
	err := db.QueryRowContext(ctx, query, bookingID).Scan(
		&r.ID, &r.CustomerID, &r.DealerID, &r.BookingID, &r.OverallRating,
		&r.ServiceQuality, &r.Punctuality, &r.ValueForMoney,
		&r.Title, &r.Comment, &r.IsPublished, &r.DealerResponse, &r.RespondedAt, &r.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &r, nil
}

func (db *DB) ListReviewsByDealer(ctx context.Context, dealerID int64) ([]*models.Review, error) {
	query := `SELECT id, customer_id, dealer_id, booking_id, overall_rating,
                     service_quality, punctuality, value_for_money,
                     COALESCE(title, ''), COALESCE(comment, ''), is_published,
                     COALESCE(dealer_response, ''), responded_at, created_at
              FROM reviews WHERE dealer_id = ? AND is_published = 1 ORDER BY created_at DESC`
	rows, err := db.QueryContext(ctx, query, dealerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		r := &models.Review{}
		err := rows.Scan(
			&r.ID, &r.CustomerID, &r.DealerID, &r.BookingID, &r.OverallRating,
			&r.ServiceQuality, &r.Punctuality, &r.ValueForMoney,
			&r.Title, &r.Comment, &r.IsPublished, &r.DealerResponse, &r.RespondedAt, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// RespondToReview records the dealer's single public reply.
func (db *DB) RespondToReview(ctx context.Context, id, dealerID int64, response string) error {
	now := time.Now()
	query := `UPDATE reviews SET dealer_response = ?, responded_at = ?
              WHERE id = ? AND dealer_id = ? AND dealer_response IS NULL`
	result, err := db.ExecContext(ctx, query, response, now, id, dealerID)
	if err != nil {
		return fmt.Errorf("failed to respond to review: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
