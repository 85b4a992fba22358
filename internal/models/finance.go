package models

import "time"

type Payment struct {
	ID           int64      `json:"id"`
	BookingID    int64      `json:"booking_id"`
	Amount       int64      `json:"amount"` // cents
	Currency     string     `json:"currency"`
	Status       string     `json:"status"`
	MethodType   string     `json:"method_type"` // customer_card, mobile_banking, bank_transfer
	RefundAmount int64      `json:"refund_amount"`
	CapturedAt   *time.Time `json:"captured_at,omitempty"`
	FailedAt     *time.Time `json:"failed_at,omitempty"`
	RefundedAt   *time.Time `json:"refunded_at,omitempty"`
	FailureNote  string     `json:"failure_note"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type DealerPayout struct {
	ID            int64      `json:"id"`
	DealerID      int64      `json:"dealer_id"` // account id
	Amount        int64      `json:"amount"`    // cents
	ProcessingFee int64      `json:"processing_fee"`
	NetAmount     int64      `json:"net_amount"`
	Status        string     `json:"status"`
	Reference     string     `json:"reference"` // e.g. PAY260826A1B2C3D4
	BankSnapshot  string     `json:"bank_snapshot"` // JSON copy of bank fields at request time
	ProcessedBy   int64      `json:"processed_by"`
	AdminNotes    string     `json:"admin_notes"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// BalanceTransaction is the dealer ledger row. Before/after balances make the
// ledger independently auditable.
type BalanceTransaction struct {
	ID            int64     `json:"id"`
	DealerID      int64     `json:"dealer_id"` // account id
	Amount        int64     `json:"amount"`    // signed cents
	Type          string    `json:"type"`
	Description   string    `json:"description"`
	BookingID     int64     `json:"booking_id"` // 0 = none
	PayoutID      int64     `json:"payout_id"`  // 0 = none
	BalanceBefore int64     `json:"balance_before"`
	BalanceAfter  int64     `json:"balance_after"`
	CreatedAt     time.Time `json:"created_at"`
}

type LoyaltyTransaction struct {
	ID            int64     `json:"id"`
	CustomerID    int64     `json:"customer_id"`
	Type          string    `json:"type"`
	Points        int64     `json:"points"` // signed
	Description   string    `json:"description"`
	BookingID     int64     `json:"booking_id"`
	BalanceBefore int64     `json:"balance_before"`
	BalanceAfter  int64     `json:"balance_after"`
	CreatedAt     time.Time `json:"created_at"`
}
