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

func (db *DB) CreateVehicle(ctx context.Context, v *models.Vehicle) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		now := time.Now()
		if v.IsPrimary {
			if _, err := tx.ExecContext(ctx,
				`UPDATE vehicles SET is_primary = 0, updated_at = ? WHERE owner_id = ?`, now, v.OwnerID); err != nil {
				return fmt.Errorf("failed to clear primary vehicle: %w", err)
			}
		}

		query := `INSERT INTO vehicles (
                    owner_id, make, model, year, color, license_plate, vin,
                    fuel_type, transmission, mileage, is_primary, is_active, created_at, updated_at
                  ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`
		result, err := tx.ExecContext(ctx, query,
			v.OwnerID, v.Make, v.Model, v.Year, v.Color,
			strings.ToUpper(v.LicensePlate), v.VIN,
			v.FuelType, v.Transmission, v.Mileage, v.IsPrimary, now, now,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicatePlate
			}
			return fmt.Errorf("failed to create vehicle: %w", err)
		}
		v.ID, _ = result.LastInsertId()
		v.LicensePlate = strings.ToUpper(v.LicensePlate)
		v.IsActive = true
		v.CreatedAt = now
		v.UpdatedAt = now
		return nil
	})
}

func (db *DB) GetVehicle(ctx context.Context, id int64) (*models.Vehicle, error) {
	var v models.Vehicle
	query := `SELECT id, owner_id, make, model, year, color, license_plate, vin,
                     fuel_type, transmission, mileage, is_primary, is_active, created_at, updated_at
              FROM vehicles WHERE id = ?`
	err := db.QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.OwnerID, &v.Make, &v.Model, &v.Year, &v.Color, &v.LicensePlate, &v.VIN,
		&v.FuelType, &v.Transmission, &v.Mileage, &v.IsPrimary, &v.IsActive, &v.CreatedAt, &v.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}
	return &v, nil
}

func (db *DB) ListVehiclesByOwner(ctx context.Context, ownerID int64) ([]*models.Vehicle, error) {
	query := `SELECT id, owner_id, make, model, year, color, license_plate, vin,
                     fuel_type, transmission, mileage, is_primary, is_active, created_at, updated_at
              FROM vehicles WHERE owner_id = ? AND is_active = 1 ORDER BY is_primary DESC, created_at ASC`
	rows, err := db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []*models.Vehicle
	for rows.Next() {
		v := &models.Vehicle{}
		err := rows.Scan(
			&v.ID, &v.OwnerID, &v.Make, &v.Model, &v.Year, &v.Color, &v.LicensePlate, &v.VIN,
			&v.FuelType, &v.Transmission, &v.Mileage, &v.IsPrimary, &v.IsActive, &v.CreatedAt, &v.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// SetPrimaryVehicle flips the primary flag to the given vehicle, clearing it
// from the owner's other vehicles inside the same transaction.
func (db *DB) SetPrimaryVehicle(ctx context.Context, ownerID, vehicleID int64) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		now := time.Now()
		if _, err := tx.ExecContext(ctx,
			`UPDATE vehicles SET is_primary = 0, updated_at = ? WHERE owner_id = ?`, now, ownerID); err != nil {
			return fmt.Errorf("failed to clear primary vehicle: %w", err)
		}
		result, err := tx.ExecContext(ctx,
			`UPDATE vehicles SET is_primary = 1, updated_at = ? WHERE id = ? AND owner_id = ? AND is_active = 1`,
			now, vehicleID, ownerID)
		if err != nil {
			return fmt.Errorf("failed to set primary vehicle: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (db *DB) UpdateVehicleMileage(ctx context.Context, id, mileage int64) error {
	query := `UPDATE vehicles SET mileage = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, mileage, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update vehicle mileage: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateVehicle soft-deletes so past bookings keep a valid reference.
func (db *DB) DeactivateVehicle(ctx context.Context, id, ownerID int64) error {
	query := `UPDATE vehicles SET is_active = 0, is_primary = 0, updated_at = ? WHERE id = ? AND owner_id = ?`
	result, err := db.ExecContext(ctx, query, time.Now(), id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to deactivate vehicle: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
