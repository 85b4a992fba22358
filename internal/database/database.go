package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite handle with the marketplace schema.
type DB struct {
	*sql.DB
	log zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	var log zerolog.Logger
	if logger != nil {
		log = logger.With().Str("component", "database").Logger()
	}
	log.Info().Str("path", path).Msg("database initialized")

	return &DB{DB: db, log: log}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            email TEXT UNIQUE NOT NULL,
            full_name TEXT NOT NULL,
            phone TEXT,
            role TEXT NOT NULL,
            is_active BOOLEAN NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS customer_profiles (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            account_id INTEGER UNIQUE NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
            address TEXT,
            city TEXT,
            postal_code TEXT,
            notify_via TEXT NOT NULL DEFAULT 'email',
            total_bookings INTEGER NOT NULL DEFAULT 0,
            total_spent INTEGER NOT NULL DEFAULT 0,
            loyalty_points INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS dealer_profiles (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            account_id INTEGER UNIQUE NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
            business_name TEXT NOT NULL,
            business_license TEXT,
            business_type TEXT NOT NULL DEFAULT 'garage',
            address TEXT,
            city TEXT,
            phone TEXT,
            bank_account_name TEXT,
            bank_account_no TEXT,
            bank_name TEXT,
            commission_pct REAL NOT NULL DEFAULT 15.0,
            is_approved BOOLEAN NOT NULL DEFAULT 0,
            is_active BOOLEAN NOT NULL DEFAULT 1,
            rating REAL NOT NULL DEFAULT 0,
            total_reviews INTEGER NOT NULL DEFAULT 0,
            total_bookings INTEGER NOT NULL DEFAULT 0,
            current_balance INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS vehicles (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            owner_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
            make TEXT NOT NULL,
            model TEXT NOT NULL,
            year INTEGER NOT NULL,
            color TEXT,
            license_plate TEXT UNIQUE NOT NULL,
            vin TEXT,
            fuel_type TEXT,
            transmission TEXT,
            mileage INTEGER NOT NULL DEFAULT 0,
            is_primary BOOLEAN NOT NULL DEFAULT 0,
            is_active BOOLEAN NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS service_categories (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT UNIQUE NOT NULL,
            description TEXT,
            sort_order INTEGER NOT NULL DEFAULT 0,
            duration_min INTEGER NOT NULL DEFAULT 60,
            is_active BOOLEAN NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS services (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            dealer_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
            category_id INTEGER NOT NULL REFERENCES service_categories(id),
            name TEXT NOT NULL,
            description TEXT,
            base_price INTEGER NOT NULL,
            discounted_price INTEGER NOT NULL DEFAULT 0,
            duration_min INTEGER NOT NULL DEFAULT 60,
            advance_booking_hours INTEGER NOT NULL DEFAULT 2,
            policy_id INTEGER NOT NULL DEFAULT 0,
            location_kind TEXT NOT NULL DEFAULT 'workshop',
            is_active BOOLEAN NOT NULL DEFAULT 1,
            total_bookings INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS service_slots (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            service_id INTEGER NOT NULL REFERENCES services(id) ON DELETE CASCADE,
            date DATETIME NOT NULL,
            start_time TEXT NOT NULL,
            end_time TEXT NOT NULL,
            total_capacity INTEGER NOT NULL DEFAULT 1,
            available_capacity INTEGER NOT NULL DEFAULT 1,
            custom_price INTEGER NOT NULL DEFAULT 0,
            is_active BOOLEAN NOT NULL DEFAULT 1,
            is_blocked BOOLEAN NOT NULL DEFAULT 0,
            block_reason TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            UNIQUE(service_id, date, start_time)
        )`,
		`CREATE TABLE IF NOT EXISTS slot_templates (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            service_id INTEGER NOT NULL REFERENCES services(id) ON DELETE CASCADE,
            weekday INTEGER NOT NULL,
            start_time TEXT NOT NULL,
            end_time TEXT NOT NULL,
            capacity INTEGER NOT NULL DEFAULT 1,
            custom_price INTEGER NOT NULL DEFAULT 0,
            is_active BOOLEAN NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS cancellation_policies (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT UNIQUE NOT NULL,
            description TEXT,
            free_cancel_hours INTEGER NOT NULL DEFAULT 24,
            partial_hours INTEGER NOT NULL DEFAULT 12,
            no_refund_hours INTEGER NOT NULL DEFAULT 2,
            partial_refund_pct REAL NOT NULL DEFAULT 50.0,
            is_default BOOLEAN NOT NULL DEFAULT 0,
            is_active BOOLEAN NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS promotions (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            code TEXT UNIQUE NOT NULL,
            title TEXT,
            type TEXT NOT NULL DEFAULT 'percentage',
            discount_pct REAL NOT NULL DEFAULT 0,
            discount_amount INTEGER NOT NULL DEFAULT 0,
            min_order_amount INTEGER NOT NULL DEFAULT 0,
            starts_at DATETIME NOT NULL,
            ends_at DATETIME NOT NULL,
            max_uses INTEGER NOT NULL DEFAULT 0,
            max_uses_per_user INTEGER NOT NULL DEFAULT 1,
            current_uses INTEGER NOT NULL DEFAULT 0,
            is_active BOOLEAN NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS bookings (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            number TEXT UNIQUE NOT NULL,
            customer_id INTEGER NOT NULL REFERENCES accounts(id),
            slot_id INTEGER NOT NULL REFERENCES service_slots(id),
            service_id INTEGER NOT NULL REFERENCES services(id),
            dealer_id INTEGER NOT NULL REFERENCES accounts(id),
            vehicle_id INTEGER NOT NULL REFERENCES vehicles(id),
            status TEXT NOT NULL DEFAULT 'pending',
            service_amount INTEGER NOT NULL,
            discount INTEGER NOT NULL DEFAULT 0,
            tax INTEGER NOT NULL DEFAULT 0,
            total INTEGER NOT NULL,
            platform_fee INTEGER NOT NULL DEFAULT 0,
            dealer_amount INTEGER NOT NULL DEFAULT 0,
            policy_id INTEGER NOT NULL DEFAULT 0,
            promotion_id INTEGER NOT NULL DEFAULT 0,
            location TEXT NOT NULL DEFAULT 'workshop',
            scheduled_at DATETIME NOT NULL,
            deadline DATETIME NOT NULL,
            started_at DATETIME,
            completed_at DATETIME,
            instructions TEXT,
            cancel_reason TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            version INTEGER NOT NULL DEFAULT 1
        )`,
		`CREATE TABLE IF NOT EXISTS booking_status_history (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            booking_id INTEGER NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
            old_status TEXT,
            new_status TEXT NOT NULL,
            changed_by INTEGER NOT NULL DEFAULT 0,
            reason TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS payments (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            booking_id INTEGER UNIQUE NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
            amount INTEGER NOT NULL,
            currency TEXT NOT NULL DEFAULT 'BDT',
            status TEXT NOT NULL DEFAULT 'pending',
            method_type TEXT NOT NULL DEFAULT 'customer_card',
            refund_amount INTEGER NOT NULL DEFAULT 0,
            captured_at DATETIME,
            failed_at DATETIME,
            refunded_at DATETIME,
            failure_note TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS dealer_payouts (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            dealer_id INTEGER NOT NULL REFERENCES accounts(id),
            amount INTEGER NOT NULL,
            processing_fee INTEGER NOT NULL DEFAULT 0,
            net_amount INTEGER NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            reference TEXT UNIQUE NOT NULL,
            bank_snapshot TEXT,
            processed_by INTEGER NOT NULL DEFAULT 0,
            admin_notes TEXT,
            processed_at DATETIME,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS balance_transactions (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            dealer_id INTEGER NOT NULL REFERENCES accounts(id),
            amount INTEGER NOT NULL,
            type TEXT NOT NULL,
            description TEXT,
            booking_id INTEGER NOT NULL DEFAULT 0,
            payout_id INTEGER NOT NULL DEFAULT 0,
            balance_before INTEGER NOT NULL,
            balance_after INTEGER NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS loyalty_transactions (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            customer_id INTEGER NOT NULL REFERENCES accounts(id),
            type TEXT NOT NULL,
            points INTEGER NOT NULL,
            description TEXT,
            booking_id INTEGER NOT NULL DEFAULT 0,
            balance_before INTEGER NOT NULL,
            balance_after INTEGER NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS reviews (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            customer_id INTEGER NOT NULL REFERENCES accounts(id),
            dealer_id INTEGER NOT NULL REFERENCES accounts(id),
            booking_id INTEGER UNIQUE NOT NULL REFERENCES bookings(id),
            overall_rating INTEGER NOT NULL,
            service_quality INTEGER NOT NULL DEFAULT 0,
            punctuality INTEGER NOT NULL DEFAULT 0,
            value_for_money INTEGER NOT NULL DEFAULT 0,
            title TEXT,
            comment TEXT,
            is_published BOOLEAN NOT NULL DEFAULT 1,
            dealer_response TEXT,
            responded_at DATETIME,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS notifications (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            recipient_id INTEGER NOT NULL REFERENCES accounts(id),
            title TEXT NOT NULL,
            message TEXT NOT NULL,
            channel TEXT NOT NULL DEFAULT 'email',
            status TEXT NOT NULL DEFAULT 'pending',
            booking_id INTEGER NOT NULL DEFAULT 0,
            retry_count INTEGER NOT NULL DEFAULT 0,
            last_error TEXT,
            next_retry_at DATETIME,
            sent_at DATETIME,
            read_at DATETIME,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS support_tickets (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            number TEXT UNIQUE NOT NULL,
            user_id INTEGER NOT NULL REFERENCES accounts(id),
            subject TEXT NOT NULL,
            description TEXT,
            category TEXT NOT NULL DEFAULT 'other',
            status TEXT NOT NULL DEFAULT 'open',
            priority TEXT NOT NULL DEFAULT 'medium',
            assigned_to INTEGER NOT NULL DEFAULT 0,
            booking_id INTEGER NOT NULL DEFAULT 0,
            resolved_at DATETIME,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS support_messages (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            ticket_id INTEGER NOT NULL REFERENCES support_tickets(id) ON DELETE CASCADE,
            sender_id INTEGER NOT NULL REFERENCES accounts(id),
            body TEXT NOT NULL,
            is_read BOOLEAN NOT NULL DEFAULT 0,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS admin_actions (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            admin_id INTEGER NOT NULL REFERENCES accounts(id),
            action TEXT NOT NULL,
            target_kind TEXT NOT NULL,
            target_id INTEGER NOT NULL,
            notes TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE INDEX IF NOT EXISTS idx_accounts_role ON accounts(role)`,
		`CREATE INDEX IF NOT EXISTS idx_vehicles_owner ON vehicles(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_services_dealer ON services(dealer_id, is_active)`,
		`CREATE INDEX IF NOT EXISTS idx_slots_service_date ON service_slots(service_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_customer ON bookings(customer_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_dealer ON bookings(dealer_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status, deadline)`,
		`CREATE INDEX IF NOT EXISTS idx_balance_tx_dealer ON balance_transactions(dealer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_loyalty_customer ON loyalty_transactions(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_dealer ON reviews(dealer_id, is_published)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_status ON notifications(status, next_retry_at)`,
		`CREATE INDEX IF NOT EXISTS idx_tickets_status ON support_tickets(status, priority)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// inTx runs fn inside a transaction, rolling back on error.
func (db *DB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
