package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingConfirmed = "booking_confirmed"
	EventBookingStarted   = "booking_started"
	EventBookingCompleted = "booking_completed"
	EventBookingCanceled  = "booking_canceled"
	EventBookingExpired   = "booking_expired"
	EventBookingNoShow    = "booking_no_show"

	EventPayoutRequested = "payout_requested"
	EventPayoutCompleted = "payout_completed"

	EventDealerRegistered = "dealer_registered"
	EventDealerApproved   = "dealer_approved"

	EventReviewPosted  = "review_posted"
	EventTicketOpened  = "ticket_opened"
	EventTicketUpdated = "ticket_updated"
)

// BookingEventPayload is the booking snapshot handed to event consumers.
type BookingEventPayload struct {
	BookingID   int64     `json:"booking_id"`
	Number      string    `json:"number"`
	CustomerID  int64     `json:"customer_id"`
	DealerID    int64     `json:"dealer_id"`
	ServiceID   int64     `json:"service_id"`
	Status      string    `json:"status"`
	Total       int64     `json:"total"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Reason      string    `json:"reason,omitempty"`
	ChangedBy   int64     `json:"changed_by,omitempty"`
}

// PayoutEventPayload describes a payout lifecycle event.
type PayoutEventPayload struct {
	PayoutID  int64  `json:"payout_id"`
	DealerID  int64  `json:"dealer_id"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	NetAmount int64  `json:"net_amount"`
	Status    string `json:"status"`
}

// DealerEventPayload describes dealer registration and approval events.
type DealerEventPayload struct {
	AccountID    int64  `json:"account_id"`
	BusinessName string `json:"business_name"`
	Approved     bool   `json:"approved"`
}

// TicketEventPayload describes a support ticket event.
type TicketEventPayload struct {
	TicketID int64  `json:"ticket_id"`
	Number   string `json:"number"`
	UserID   int64  `json:"user_id"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
	Processed bool
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
