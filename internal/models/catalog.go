package models

import "time"

// ServiceCategory entries are seeded from a YAML catalog at startup.
type ServiceCategory struct {
	ID          int64     `yaml:"id" json:"id"`
	Name        string    `yaml:"name" json:"name"`
	Description string    `yaml:"description" json:"description"`
	SortOrder   int64     `yaml:"sort_order" json:"sort_order"`
	DurationMin int64     `yaml:"duration_min" json:"duration_min"`
	IsActive    bool      `yaml:"is_active" json:"is_active"`
	CreatedAt   time.Time `yaml:"-" json:"created_at"`
}

type Service struct {
	ID                  int64     `json:"id"`
	DealerID            int64     `json:"dealer_id"` // account id
	CategoryID          int64     `json:"category_id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	BasePrice           int64     `json:"base_price"`       // cents
	DiscountedPrice     int64     `json:"discounted_price"` // cents, 0 = none
	DurationMin         int64     `json:"duration_min"`
	AdvanceBookingHours int64     `json:"advance_booking_hours"`
	PolicyID            int64     `json:"policy_id"` // cancellation policy
	LocationKind        string    `json:"location_kind"` // workshop, customer_location, both
	IsActive            bool      `json:"is_active"`
	TotalBookings       int64     `json:"total_bookings"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Price returns the effective per-booking price in cents.
func (s *Service) Price() int64 {
	if s.DiscountedPrice > 0 && s.DiscountedPrice < s.BasePrice {
		return s.DiscountedPrice
	}
	return s.BasePrice
}

type ServiceSlot struct {
	ID                int64     `json:"id"`
	ServiceID         int64     `json:"service_id"`
	Date              time.Time `json:"date"`       // day, midnight UTC
	StartTime         string    `json:"start_time"` // "09:00"
	EndTime           string    `json:"end_time"`   // "10:00"
	TotalCapacity     int64     `json:"total_capacity"`
	AvailableCapacity int64     `json:"available_capacity"`
	CustomPrice       int64     `json:"custom_price"` // cents, 0 = inherit service price
	IsActive          bool      `json:"is_active"`
	IsBlocked         bool      `json:"is_blocked"`
	BlockReason       string    `json:"block_reason"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Bookable reports whether the slot accepts new bookings.
func (s *ServiceSlot) Bookable() bool {
	return s.IsActive && !s.IsBlocked && s.AvailableCapacity > 0
}

// SlotTemplate describes one weekly recurring slot used by batch generation.
type SlotTemplate struct {
	ID          int64        `json:"id"`
	ServiceID   int64        `json:"service_id"`
	Weekday     time.Weekday `json:"weekday"` // 0 = Sunday
	StartTime   string       `json:"start_time"`
	EndTime     string       `json:"end_time"`
	Capacity    int64        `json:"capacity"`
	CustomPrice int64        `json:"custom_price"`
	IsActive    bool         `json:"is_active"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Availability aggregates a service's slots for one date.
type Availability struct {
	Date      time.Time `json:"date"`
	ServiceID int64     `json:"service_id"`
	SlotCount int64     `json:"slot_count"`
	Total     int64     `json:"total"`
	Available int64     `json:"available"`
}
