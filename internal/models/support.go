package models

import "time"

type Review struct {
	ID             int64      `json:"id"`
	CustomerID     int64      `json:"customer_id"`
	DealerID       int64      `json:"dealer_id"`
	BookingID      int64      `json:"booking_id"`
	OverallRating  int64      `json:"overall_rating"` // 1..5
	ServiceQuality int64      `json:"service_quality"` // 0 = not rated
	Punctuality    int64      `json:"punctuality"`
	ValueForMoney  int64      `json:"value_for_money"`
	Title          string     `json:"title"`
	Comment        string     `json:"comment"`
	IsPublished    bool       `json:"is_published"`
	DealerResponse string     `json:"dealer_response"`
	RespondedAt    *time.Time `json:"responded_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Notification doubles as the dispatch queue row: the worker polls pending
// rows, delivers via the channel sender and records retry state in place.
type Notification struct {
	ID          int64      `json:"id"`
	RecipientID int64      `json:"recipient_id"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	Channel     string     `json:"channel"`
	Status      string     `json:"status"`
	BookingID   int64      `json:"booking_id"` // 0 = none
	RetryCount  int64      `json:"retry_count"`
	LastError   string     `json:"last_error"`
	NextRetryAt *time.Time `json:"next_retry_at,omitempty"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type SupportTicket struct {
	ID          int64      `json:"id"`
	Number      string     `json:"number"` // e.g. T2608261234
	UserID      int64      `json:"user_id"`
	Subject     string     `json:"subject"`
	Description string     `json:"description"`
	Category    string     `json:"category"` // booking_issue, payment_problem, account_issue, service_issue, other
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssignedTo  int64      `json:"assigned_to"` // account id, 0 = unassigned
	BookingID   int64      `json:"booking_id"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type SupportMessage struct {
	ID        int64     `json:"id"`
	TicketID  int64     `json:"ticket_id"`
	SenderID  int64     `json:"sender_id"`
	Body      string    `json:"body"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// SlotHold is a short-lived checkout reservation kept in Redis while the
// customer finishes the booking form. Holds are advisory; the guarded
// capacity decrement remains the source of truth.
type SlotHold struct {
	CustomerID int64     `json:"customer_id"`
	SlotID     int64     `json:"slot_id"`
	VehicleID  int64     `json:"vehicle_id"`
	HeldAt     time.Time `json:"held_at"`
}
