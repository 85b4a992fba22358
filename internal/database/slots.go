package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"carserve/internal/models"
)

func (db *DB) CreateSlotTemplate(ctx context.Context, t *models.SlotTemplate) error {
	now := time.Now()
	query := `INSERT INTO slot_templates (service_id, weekday, start_time, end_time, capacity, custom_price, is_active, created_at)
              VALUES (?, ?, ?, ?, ?, ?, 1, ?)`
	result, err := db.ExecContext(ctx, query,
		t.ServiceID, int(t.Weekday), t.StartTime, t.EndTime, t.Capacity, t.CustomPrice, now)
	if err != nil {
		return fmt.Errorf("failed to create slot template: %w", err)
	}
	t.ID, _ = result.LastInsertId()
	t.IsActive = true
	t.CreatedAt = now
	return nil
}

func (db *DB) ListSlotTemplates(ctx context.Context, serviceID int64) ([]*models.SlotTemplate, error) {
	query := `SELECT id, service_id, weekday, start_time, end_time, capacity, custom_price, is_active, created_at
              FROM slot_templates WHERE service_id = ? AND is_active = 1 ORDER BY weekday ASC, start_time ASC`
	rows, err := db.QueryContext(ctx, query, serviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list slot templates: %w", err)
	}
	defer rows.Close()

	var templates []*models.SlotTemplate
	for rows.Next() {
		t := &models.SlotTemplate{}
		var weekday int
		err := rows.Scan(&t.ID, &t.ServiceID, &weekday, &t.StartTime, &t.EndTime,
			&t.Capacity, &t.CustomPrice, &t.IsActive, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slot template: %w", err)
		}
		t.Weekday = time.Weekday(weekday)
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (db *DB) SetSlotTemplateActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE slot_templates SET is_active = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("failed to update slot template: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GenerateSlots materializes slots from active templates over the next `days`
// days starting tomorrow. Already-existing slots are skipped via the unique
// (service, date, start_time) constraint, so the call is idempotent. Returns
// how many new slots were created.
func (db *DB) GenerateSlots(ctx context.Context, serviceID int64, days int, from time.Time) (int, error) {
	templates, err := db.ListSlotTemplates(ctx, serviceID)
	if err != nil {
		return 0, err
	}
	if len(templates) == 0 {
		return 0, nil
	}

	created := 0
	err = db.inTx(ctx, func(tx *sql.Tx) error {
		query := `INSERT OR IGNORE INTO service_slots (
                    service_id, date, start_time, end_time, total_capacity, available_capacity,
                    custom_price, is_active, is_blocked, created_at, updated_at
                  ) VALUES (?, ?, ?, ?, ?, ?, ?, 1, 0, ?, ?)`
		now := time.Now()
		start := from.AddDate(0, 0, 1)
		for i := 0; i < days; i++ {
			date := truncateToDay(start.AddDate(0, 0, i))
			for _, t := range templates {
				if t.Weekday != date.Weekday() {
					continue
				}
				result, err := tx.ExecContext(ctx, query,
					serviceID, date, t.StartTime, t.EndTime, t.Capacity, t.Capacity,
					t.CustomPrice, now, now)
				if err != nil {
					return fmt.Errorf("failed to insert slot: %w", err)
				}
				if rows, _ := result.RowsAffected(); rows > 0 {
					created++
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	db.log.Info().Int64("service_id", serviceID).Int("days", days).Int("created", created).Msg("slots generated")
	return created, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (db *DB) GetSlot(ctx context.Context, id int64) (*models.ServiceSlot, error) {
	var s models.ServiceSlot
	query := `SELECT id, service_id, date, start_time, end_time, total_capacity, available_capacity,
                     custom_price, is_active, is_blocked, COALESCE(block_reason, ''), created_at, updated_at
              FROM service_slots WHERE id = ?`
	err := db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.ServiceID, &s.Date, &s.StartTime, &s.EndTime, &s.TotalCapacity, &s.AvailableCapacity,
		&s.CustomPrice, &s.IsActive, &s.IsBlocked, &s.BlockReason, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	return &s, nil
}

func (db *DB) ListSlotsByServiceDate(ctx context.Context, serviceID int64, date time.Time) ([]*models.ServiceSlot, error) {
	query := `SELECT id, service_id, date, start_time, end_time, total_capacity, available_capacity,
                     custom_price, is_active, is_blocked, COALESCE(block_reason, ''), created_at, updated_at
              FROM service_slots
              WHERE service_id = ? AND date(date) = ? AND is_active = 1
              ORDER BY start_time ASC`
	rows, err := db.QueryContext(ctx, query, serviceID, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	defer rows.Close()

	var slots []*models.ServiceSlot
	for rows.Next() {
		s := &models.ServiceSlot{}
		err := rows.Scan(
			&s.ID, &s.ServiceID, &s.Date, &s.StartTime, &s.EndTime, &s.TotalCapacity, &s.AvailableCapacity,
			&s.CustomPrice, &s.IsActive, &s.IsBlocked, &s.BlockReason, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// GetAvailabilityForPeriod aggregates slot capacity per day for the service,
// used by the availability endpoint and the calendar views.
func (db *DB) GetAvailabilityForPeriod(ctx context.Context, serviceID int64, startDate time.Time, days int) ([]*models.Availability, error) {
	endDate := startDate.AddDate(0, 0, days-1)
	query := `SELECT date(date) as d, COUNT(*), SUM(total_capacity), SUM(available_capacity)
              FROM service_slots
              WHERE service_id = ? AND date(date) BETWEEN ? AND ? AND is_active = 1 AND is_blocked = 0
              GROUP BY d`
	rows, err := db.QueryContext(ctx, query, serviceID,
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to get availability: %w", err)
	}
	defer rows.Close()

	byDate := make(map[string]*models.Availability)
	for rows.Next() {
		var dateStr string
		a := &models.Availability{ServiceID: serviceID}
		if err := rows.Scan(&dateStr, &a.SlotCount, &a.Total, &a.Available); err != nil {
			return nil, fmt.Errorf("failed to scan availability: %w", err)
		}
		byDate[dateStr] = a
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var availability []*models.Availability
	for i := 0; i < days; i++ {
		date := truncateToDay(startDate.AddDate(0, 0, i))
		a, ok := byDate[date.Format("2006-01-02")]
		if !ok {
			a = &models.Availability{ServiceID: serviceID}
		}
		a.Date = date
		availability = append(availability, a)
	}
	return availability, nil
}

func (db *DB) BlockSlot(ctx context.Context, id int64, reason string) error {
	query := `UPDATE service_slots SET is_blocked = 1, block_reason = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, reason, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to block slot: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) UnblockSlot(ctx context.Context, id int64) error {
	query := `UPDATE service_slots SET is_blocked = 0, block_reason = NULL, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to unblock slot: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
