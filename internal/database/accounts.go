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

// CreateCustomer inserts the account and its customer profile in one
// transaction so a customer account never exists without a profile row.
func (db *DB) CreateCustomer(ctx context.Context, account *models.Account, profile *models.CustomerProfile) error {
	account.Role = models.RoleCustomer
	return db.inTx(ctx, func(tx *sql.Tx) error {
		if err := insertAccount(ctx, tx, account); err != nil {
			return err
		}

		now := time.Now()
		query := `INSERT INTO customer_profiles (account_id, address, city, postal_code, notify_via, created_at, updated_at)
                  VALUES (?, ?, ?, ?, ?, ?, ?)`
		notifyVia := profile.NotifyVia
		if notifyVia == "" {
			notifyVia = models.ChannelEmail
		}
		result, err := tx.ExecContext(ctx, query, account.ID, profile.Address, profile.City, profile.PostalCode, notifyVia, now, now)
		if err != nil {
			return fmt.Errorf("failed to create customer profile: %w", err)
		}
		profile.ID, _ = result.LastInsertId()
		profile.AccountID = account.ID
		profile.NotifyVia = notifyVia
		profile.CreatedAt = now
		profile.UpdatedAt = now
		return nil
	})
}

// CreateDealer inserts the account and its dealer profile in one transaction.
// New dealers start unapproved.
func (db *DB) CreateDealer(ctx context.Context, account *models.Account, profile *models.DealerProfile) error {
	account.Role = models.RoleDealer
	return db.inTx(ctx, func(tx *sql.Tx) error {
		if err := insertAccount(ctx, tx, account); err != nil {
			return err
		}

		if profile.CommissionPct <= 0 {
			profile.CommissionPct = models.DefaultCommissionPct
		}
		now := time.Now()
		query := `INSERT INTO dealer_profiles (
                    account_id, business_name, business_license, business_type,
                    address, city, phone, bank_account_name, bank_account_no, bank_name,
                    commission_pct, is_approved, is_active, created_at, updated_at
                  ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 1, ?, ?)`
		result, err := tx.ExecContext(ctx, query,
			account.ID, profile.BusinessName, profile.BusinessLicense, profile.BusinessType,
			profile.Address, profile.City, profile.Phone,
			profile.BankAccountName, profile.BankAccountNo, profile.BankName,
			profile.CommissionPct, now, now,
		)
		if err != nil {
			return fmt.Errorf("failed to create dealer profile: %w", err)
		}
		profile.ID, _ = result.LastInsertId()
		profile.AccountID = account.ID
		profile.IsApproved = false
		profile.IsActive = true
		profile.CreatedAt = now
		profile.UpdatedAt = now
		return nil
	})
}

func (db *DB) CreateAdmin(ctx context.Context, account *models.Account) error {
	account.Role = models.RoleAdmin
	return db.inTx(ctx, func(tx *sql.Tx) error {
		return insertAccount(ctx, tx, account)
	})
}

func insertAccount(ctx context.Context, tx *sql.Tx, account *models.Account) error {
	now := time.Now()
	query := `INSERT INTO accounts (email, full_name, phone, role, is_active, created_at, updated_at)
              VALUES (?, ?, ?, ?, 1, ?, ?)`
	result, err := tx.ExecContext(ctx, query, strings.ToLower(account.Email), account.FullName, account.Phone, account.Role, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	account.ID, _ = result.LastInsertId()
	account.Email = strings.ToLower(account.Email)
	account.IsActive = true
	account.CreatedAt = now
	account.UpdatedAt = now
	return nil
}

func (db *DB) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	var a models.Account
	query := `SELECT id, email, full_name, phone, role, is_active, created_at, updated_at
              FROM accounts WHERE id = ?`
	err := db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.Email, &a.FullName, &a.Phone, &a.Role, &a.IsActive, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &a, nil
}

func (db *DB) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	query := `SELECT id, email, full_name, phone, role, is_active, created_at, updated_at
              FROM accounts WHERE email = ?`
	err := db.QueryRowContext(ctx, query, strings.ToLower(email)).Scan(
		&a.ID, &a.Email, &a.FullName, &a.Phone, &a.Role, &a.IsActive, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return &a, nil
}

func (db *DB) SetAccountActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE accounts SET is_active = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) GetCustomerProfile(ctx context.Context, accountID int64) (*models.CustomerProfile, error) {
	var p models.CustomerProfile
	query := `SELECT id, account_id, address, city, postal_code, notify_via,
                     total_bookings, total_spent, loyalty_points, created_at, updated_at
              FROM customer_profiles WHERE account_id = ?`
	err := db.QueryRowContext(ctx, query, accountID).Scan(
		&p.ID, &p.AccountID, &p.Address, &p.City, &p.PostalCode, &p.NotifyVia,
		&p.TotalBookings, &p.TotalSpent, &p.LoyaltyPoints, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer profile: %w", err)
	}
	return &p, nil
}

func (db *DB) UpdateCustomerProfile(ctx context.Context, p *models.CustomerProfile) error {
	query := `UPDATE customer_profiles SET address = ?, city = ?, postal_code = ?, notify_via = ?, updated_at = ?
              WHERE account_id = ?`
	result, err := db.ExecContext(ctx, query, p.Address, p.City, p.PostalCode, p.NotifyVia, time.Now(), p.AccountID)
	if err != nil {
		return fmt.Errorf("failed to update customer profile: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) GetDealerProfile(ctx context.Context, accountID int64) (*models.DealerProfile, error) {
	var p models.DealerProfile
	query := `SELECT id, account_id, business_name, business_license, business_type,
                     address, city, phone, bank_account_name, bank_account_no, bank_name,
                     commission_pct, is_approved, is_active, rating, total_reviews,
                     total_bookings, current_balance, created_at, updated_at
              FROM dealer_profiles WHERE account_id = ?`
	err := db.QueryRowContext(ctx, query, accountID).Scan(
		&p.ID, &p.AccountID, &p.BusinessName, &p.BusinessLicense, &p.BusinessType,
		&p.Address, &p.City, &p.Phone, &p.BankAccountName, &p.BankAccountNo, &p.BankName,
		&p.CommissionPct, &p.IsApproved, &p.IsActive, &p.Rating, &p.TotalReviews,
		&p.TotalBookings, &p.CurrentBalance, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dealer profile: %w", err)
	}
	return &p, nil
}

func (db *DB) SetDealerApproved(ctx context.Context, accountID int64, approved bool) error {
	query := `UPDATE dealer_profiles SET is_approved = ?, updated_at = ? WHERE account_id = ?`
	result, err := db.ExecContext(ctx, query, approved, time.Now(), accountID)
	if err != nil {
		return fmt.Errorf("failed to update dealer approval: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) UpdateDealerBankDetails(ctx context.Context, accountID int64, accountName, accountNo, bankName string) error {
	query := `UPDATE dealer_profiles SET bank_account_name = ?, bank_account_no = ?, bank_name = ?, updated_at = ?
              WHERE account_id = ?`
	result, err := db.ExecContext(ctx, query, accountName, accountNo, bankName, time.Now(), accountID)
	if err != nil {
		return fmt.Errorf("failed to update dealer bank details: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) ListPendingDealers(ctx context.Context) ([]*models.DealerProfile, error) {
	query := `SELECT id, account_id, business_name, business_license, business_type,
                     address, city, phone, bank_account_name, bank_account_no, bank_name,
                     commission_pct, is_approved, is_active, rating, total_reviews,
                     total_bookings, current_balance, created_at, updated_at
              FROM dealer_profiles WHERE is_approved = 0 AND is_active = 1 ORDER BY created_at ASC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending dealers: %w", err)
	}
	defer rows.Close()

	var dealers []*models.DealerProfile
	for rows.Next() {
		p := &models.DealerProfile{}
		err := rows.Scan(
			&p.ID, &p.AccountID, &p.BusinessName, &p.BusinessLicense, &p.BusinessType,
			&p.Address, &p.City, &p.Phone, &p.BankAccountName, &p.BankAccountNo, &p.BankName,
			&p.CommissionPct, &p.IsApproved, &p.IsActive, &p.Rating, &p.TotalReviews,
			&p.TotalBookings, &p.CurrentBalance, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dealer profile: %w", err)
		}
		dealers = append(dealers, p)
	}
	return dealers, rows.Err()
}

func (db *DB) RecordAdminAction(ctx context.Context, a *models.AdminAction) error {
	now := time.Now()
	query := `INSERT INTO admin_actions (admin_id, action, target_kind, target_id, notes, created_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query, a.AdminID, a.Action, a.TargetKind, a.TargetID, a.Notes, now)
	if err != nil {
		return fmt.Errorf("failed to record admin action: %w", err)
	}
	a.ID, _ = result.LastInsertId()
	a.CreatedAt = now
	return nil
}

func (db *DB) ListAdminActions(ctx context.Context, targetKind string, targetID int64) ([]*models.AdminAction, error) {
	query := `SELECT id, admin_id, action, target_kind, target_id, COALESCE(notes, ''), created_at
              FROM admin_actions WHERE target_kind = ? AND target_id = ? ORDER BY created_at ASC`
	rows, err := db.QueryContext(ctx, query, targetKind, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin actions: %w", err)
	}
	defer rows.Close()

	var actions []*models.AdminAction
	for rows.Next() {
		a := &models.AdminAction{}
		if err := rows.Scan(&a.ID, &a.AdminID, &a.Action, &a.TargetKind, &a.TargetID, &a.Notes, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan admin action: %w", err)
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
