package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"carserve/internal/models"
)

// SeedCategories upserts the YAML catalog. Existing names keep their rows so
// service references stay stable across restarts.
func (db *DB) SeedCategories(ctx context.Context, categories []models.ServiceCategory) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		query := `INSERT INTO service_categories (name, description, sort_order, duration_min, is_active)
                  VALUES (?, ?, ?, ?, ?)
                  ON CONFLICT(name) DO UPDATE SET
                    description = excluded.description,
                    sort_order = excluded.sort_order,
                    duration_min = excluded.duration_min,
                    is_active = excluded.is_active`
		for _, c := range categories {
			if _, err := tx.ExecContext(ctx, query, c.Name, c.Description, c.SortOrder, c.DurationMin, c.IsActive); err != nil {
				return fmt.Errorf("failed to seed category %s: %w", c.Name, err)
			}
		}
		return nil
	})
}

func (db *DB) ListCategories(ctx context.Context) ([]*models.ServiceCategory, error) {
	query := `SELECT id, name, description, sort_order, duration_min, is_active, created_at
              FROM service_categories WHERE is_active = 1 ORDER BY sort_order ASC, name ASC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.ServiceCategory
	for rows.Next() {
		c := &models.ServiceCategory{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.SortOrder, &c.DurationMin, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (db *DB) GetCategoryByName(ctx context.Context, name string) (*models.ServiceCategory, error) {
	var c models.ServiceCategory
	query := `SELECT id, name, description, sort_order, duration_min, is_active, created_at
              FROM service_categories WHERE name = ?`
	err := db.QueryRowContext(ctx, query, name).Scan(
		&c.ID, &c.Name, &c.Description, &c.SortOrder, &c.DurationMin, &c.IsActive, &c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

func (db *DB) CreateService(ctx context.Context, s *models.Service) error {
	now := time.Now()
	query := `INSERT INTO services (
                dealer_id, category_id, name, description, base_price, discounted_price,
                duration_min, advance_booking_hours, policy_id, location_kind,
                is_active, created_at, updated_at
              ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		s.DealerID, s.CategoryID, s.Name, s.Description, s.BasePrice, s.DiscountedPrice,
		s.DurationMin, s.AdvanceBookingHours, s.PolicyID, s.LocationKind, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	s.ID, _ = result.LastInsertId()
	s.IsActive = true
	s.CreatedAt = now
	s.UpdatedAt = now
	return nil
}

func (db *DB) GetService(ctx context.Context, id int64) (*models.Service, error) {
	var s models.Service
	query := `SELECT id, dealer_id, category_id, name, description, base_price, discounted_price,
                     duration_min, advance_booking_hours, policy_id, location_kind,
                     is_active, total_bookings, created_at, updated_at
              FROM services WHERE id = ?`
	err := db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.DealerID, &s.CategoryID, &s.Name, &s.Description, &s.BasePrice, &s.DiscountedPrice,
		&s.DurationMin, &s.AdvanceBookingHours, &s.PolicyID, &s.LocationKind,
		&s.IsActive, &s.TotalBookings, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &s, nil
}

func (db *DB) ListServicesByDealer(ctx context.Context, dealerID int64) ([]*models.Service, error) {
	return db.listServices(ctx,
		`WHERE dealer_id = ? ORDER BY created_at ASC`, dealerID)
}

func (db *DB) ListActiveServicesByCategory(ctx context.Context, categoryID int64) ([]*models.Service, error) {
	return db.listServices(ctx,
		`WHERE category_id = ? AND is_active = 1 ORDER BY total_bookings DESC`, categoryID)
}

func (db *DB) listServices(ctx context.Context, clause string, args ...interface{}) ([]*models.Service, error) {
	query := `SELECT id, dealer_id, category_id, name, description, base_price, discounted_price,
                     duration_min, advance_booking_hours, policy_id, location_kind,
                     is_active, total_bookings, created_at, updated_at
              FROM services ` + clause
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	var services []*models.Service
	for rows.Next() {
		s := &models.Service{}
		err := rows.Scan(
			&s.ID, &s.DealerID, &s.CategoryID, &s.Name, &s.Description, &s.BasePrice, &s.DiscountedPrice,
			&s.DurationMin, &s.AdvanceBookingHours, &s.PolicyID, &s.LocationKind,
			&s.IsActive, &s.TotalBookings, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func (db *DB) SetServiceActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE services SET is_active = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) UpdateServicePricing(ctx context.Context, id, basePrice, discountedPrice int64) error {
	query := `UPDATE services SET base_price = ?, discounted_price = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, basePrice, discountedPrice, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update service pricing: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// SeedPolicies works like SeedCategories: policy names are the stable key.
func (db *DB) SeedPolicies(ctx context.Context, policies []models.CancellationPolicy) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		query := `INSERT INTO cancellation_policies (
                    name, description, free_cancel_hours, partial_hours, no_refund_hours,
                    partial_refund_pct, is_default, is_active
                  ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
                  ON CONFLICT(name) DO UPDATE SET
                    description = excluded.description,
                    free_cancel_hours = excluded.free_cancel_hours,
                    partial_hours = excluded.partial_hours,
                    no_refund_hours = excluded.no_refund_hours,
                    partial_refund_pct = excluded.partial_refund_pct,
                    is_default = excluded.is_default,
                    is_active = excluded.is_active`
		for _, p := range policies {
			if _, err := tx.ExecContext(ctx, query,
				p.Name, p.Description, p.FreeCancelHours, p.PartialHours, p.NoRefundHours,
				p.PartialRefundPct, p.IsDefault, p.IsActive); err != nil {
				return fmt.Errorf("failed to seed policy %s: %w", p.Name, err)
			}
		}
		return nil
	})
}

func (db *DB) GetPolicy(ctx context.Context, id int64) (*models.CancellationPolicy, error) {
	return db.getPolicy(ctx, `WHERE id = ?`, id)
}

func (db *DB) GetDefaultPolicy(ctx context.Context) (*models.CancellationPolicy, error) {
	return db.getPolicy(ctx, `WHERE is_default = 1 AND is_active = 1 LIMIT 1`)
}

func (db *DB) getPolicy(ctx context.Context, clause string, args ...interface{}) (*models.CancellationPolicy, error) {
	var p models.CancellationPolicy
	query := `SELECT id, name, description, free_cancel_hours, partial_hours, no_refund_hours,
                     partial_refund_pct, is_default, is_active, created_at
              FROM cancellation_policies ` + clause
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&p.ID, &p.Name, &p.Description, &p.FreeCancelHours, &p.PartialHours, &p.NoRefundHours,
		&p.PartialRefundPct, &p.IsDefault, &p.IsActive, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cancellation policy: %w", err)
	}
	return &p, nil
}

func (db *DB) CreatePromotion(ctx context.Context, p *models.Promotion) error {
	now := time.Now()
	query := `INSERT INTO promotions (
                code, title, type, discount_pct, discount_amount, min_order_amount,
                starts_at, ends_at, max_uses, max_uses_per_user, is_active, created_at
              ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)`
	result, err := db.ExecContext(ctx, query,
		strings.ToUpper(p.Code), p.Title, p.Type, p.DiscountPct, p.DiscountAmount, p.MinOrderAmount,
		p.StartsAt, p.EndsAt, p.MaxUses, p.MaxUsesPerUser, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create promotion: %w", err)
	}
	p.ID, _ = result.LastInsertId()
	p.Code = strings.ToUpper(p.Code)
	p.IsActive = true
	p.CreatedAt = now
	return nil
}

func (db *DB) GetPromotionByCode(ctx context.Context, code string) (*models.Promotion, error) {
	var p models.Promotion
	query := `SELECT id, code, title, type, discount_pct, discount_amount, min_order_amount,
                     starts_at, ends_at, max_uses, max_uses_per_user, current_uses, is_active, created_at
              FROM promotions WHERE code = ?`
	err := db.QueryRowContext(ctx, query, strings.ToUpper(code)).Scan(
		&p.ID, &p.Code, &p.Title, &p.Type, &p.DiscountPct, &p.DiscountAmount, &p.MinOrderAmount,
		&p.StartsAt, &p.EndsAt, &p.MaxUses, &p.MaxUsesPerUser, &p.CurrentUses, &p.IsActive, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get promotion: %w", err)
	}
	return &p, nil
}

// IncrementPromotionUse claims one use with a guard on max_uses so two
// concurrent checkouts cannot push usage past the cap.
func (db *DB) IncrementPromotionUse(ctx context.Context, id int64) error {
	query := `UPDATE promotions SET current_uses = current_uses + 1
              WHERE id = ? AND (max_uses = 0 OR current_uses < max_uses)`
	result, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment promotion use: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrPromotionExhausted
	}
	return nil
}

func (db *DB) CountPromotionUsesByCustomer(ctx context.Context, promotionID, customerID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings
              WHERE promotion_id = ? AND customer_id = ? AND status NOT IN (?, ?, ?)`
	var count int64
	err := db.QueryRowContext(ctx, query, promotionID, customerID,
		models.BookingCancelledByCustomer, models.BookingCancelledByDealer, models.BookingExpired).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count promotion uses: %w", err)
	}
	return count, nil
}
