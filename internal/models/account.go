package models

import "time"

// Account is the platform identity record. Role is an explicit enum; profile
// rows are attached per role and never mixed on one account.
type Account struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"` // customer, dealer, admin
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CustomerProfile struct {
	ID            int64     `json:"id"`
	AccountID     int64     `json:"account_id"`
	Address       string    `json:"address"`
	City          string    `json:"city"`
	PostalCode    string    `json:"postal_code"`
	NotifyVia     string    `json:"notify_via"` // email, sms, push
	TotalBookings int64     `json:"total_bookings"`
	TotalSpent    int64     `json:"total_spent"` // cents
	LoyaltyPoints int64     `json:"loyalty_points"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type DealerProfile struct {
	ID              int64     `json:"id"`
	AccountID       int64     `json:"account_id"`
	BusinessName    string    `json:"business_name"`
	BusinessLicense string    `json:"business_license"`
	BusinessType    string    `json:"business_type"` // garage, workshop, mobile_service, dealership
	Address         string    `json:"address"`
	City            string    `json:"city"`
	Phone           string    `json:"phone"`
	BankAccountName string    `json:"bank_account_name"`
	BankAccountNo   string    `json:"bank_account_no"`
	BankName        string    `json:"bank_name"`
	CommissionPct   float64   `json:"commission_pct"`
	IsApproved      bool      `json:"is_approved"`
	IsActive        bool      `json:"is_active"`
	Rating          float64   `json:"rating"`
	TotalReviews    int64     `json:"total_reviews"`
	TotalBookings   int64     `json:"total_bookings"`
	CurrentBalance  int64     `json:"current_balance"` // cents
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// AdminAction is the audit row written for moderation decisions that do not
// leave a trace on the target record itself.
type AdminAction struct {
	ID         int64     `json:"id"`
	AdminID    int64     `json:"admin_id"`
	Action     string    `json:"action"`
	TargetKind string    `json:"target_kind"` // account, service, review
	TargetID   int64     `json:"target_id"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
}

type Vehicle struct {
	ID           int64     `json:"id"`
	OwnerID      int64     `json:"owner_id"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Color        string    `json:"color"`
	LicensePlate string    `json:"license_plate"`
	VIN          string    `json:"vin"`
	FuelType     string    `json:"fuel_type"` // petrol, diesel, electric, hybrid, cng
	Transmission string    `json:"transmission"`
	Mileage      int64     `json:"mileage"`
	IsPrimary    bool      `json:"is_primary"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
