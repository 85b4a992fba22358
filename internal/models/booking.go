package models

import "time"

type Booking struct {
	ID         int64  `json:"id"`
	Number     string `json:"number"` // e.g. CS2608261234
	CustomerID int64  `json:"customer_id"`
	SlotID     int64  `json:"slot_id"`
	ServiceID  int64  `json:"service_id"`
	DealerID   int64  `json:"dealer_id"`
	VehicleID  int64  `json:"vehicle_id"`
	Status     string `json:"status"`

	// Financial breakdown, cents.
	ServiceAmount int64 `json:"service_amount"`
	Discount      int64 `json:"discount"`
	Tax           int64 `json:"tax"`
	Total         int64 `json:"total"`
	PlatformFee   int64 `json:"platform_fee"`
	DealerAmount  int64 `json:"dealer_amount"`

	PolicyID    int64  `json:"policy_id"`
	PromotionID int64  `json:"promotion_id"` // 0 = none
	Location    string `json:"location"`     // workshop, customer_location

	ScheduledAt  time.Time  `json:"scheduled_at"`
	Deadline     time.Time  `json:"deadline"` // dealer must confirm before this
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Instructions string     `json:"instructions"`
	CancelReason string     `json:"cancel_reason"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`
}

type BookingStatusHistory struct {
	ID        int64     `json:"id"`
	BookingID int64     `json:"booking_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	ChangedBy int64     `json:"changed_by"` // account id, 0 = system
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// CancellationPolicy holds the time-windowed refund rules attached to a
// booking at creation time. Hours count backwards from the scheduled time.
type CancellationPolicy struct {
	ID               int64     `yaml:"id" json:"id"`
	Name             string    `yaml:"name" json:"name"`
	Description      string    `yaml:"description" json:"description"`
	FreeCancelHours  int64     `yaml:"free_cancel_hours" json:"free_cancel_hours"`
	PartialHours     int64     `yaml:"partial_hours" json:"partial_hours"`
	NoRefundHours    int64     `yaml:"no_refund_hours" json:"no_refund_hours"`
	PartialRefundPct float64   `yaml:"partial_refund_pct" json:"partial_refund_pct"`
	IsDefault        bool      `yaml:"is_default" json:"is_default"`
	IsActive         bool      `yaml:"is_active" json:"is_active"`
	CreatedAt        time.Time `yaml:"-" json:"created_at"`
}

type Promotion struct {
	ID             int64     `json:"id"`
	Code           string    `json:"code"`
	Title          string    `json:"title"`
	Type           string    `json:"type"`        // percentage, fixed_amount
	DiscountPct    float64   `json:"discount_pct"`
	DiscountAmount int64     `json:"discount_amount"` // cents
	MinOrderAmount int64     `json:"min_order_amount"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	MaxUses        int64     `json:"max_uses"` // 0 = unlimited
	MaxUsesPerUser int64     `json:"max_uses_per_user"`
	CurrentUses    int64     `json:"current_uses"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}
