package models

// Account roles. Stored directly on the account record so a single lookup
// answers "who is this" without probing for related profile rows.
const (
	RoleCustomer = "customer"
	RoleDealer   = "dealer"
	RoleAdmin    = "admin"
)

// Booking statuses.
const (
	BookingPending             = "pending"
	BookingConfirmed           = "confirmed"
	BookingInProgress          = "in_progress"
	BookingCompleted           = "completed"
	BookingCancelledByCustomer = "cancelled_by_customer"
	BookingCancelledByDealer   = "cancelled_by_dealer"
	BookingNoShow              = "no_show"
	BookingExpired             = "expired"
)

// Payment statuses.
const (
	PaymentPending           = "pending"
	PaymentSucceeded         = "succeeded"
	PaymentFailed            = "failed"
	PaymentRefunded          = "refunded"
	PaymentPartiallyRefunded = "partially_refunded"
)

// Payout statuses.
const (
	PayoutPending    = "pending"
	PayoutApproved   = "approved"
	PayoutProcessing = "processing"
	PayoutCompleted  = "completed"
	PayoutFailed     = "failed"
	PayoutRejected   = "rejected"
)

// Balance transaction types.
const (
	TxBooking    = "booking"
	TxPayout     = "payout"
	TxRefund     = "refund"
	TxAdjustment = "adjustment"
)

// Loyalty transaction types.
const (
	LoyaltyEarned     = "earned"
	LoyaltyRedeemed   = "redeemed"
	LoyaltyBonus      = "bonus"
	LoyaltyAdjustment = "adjustment"
)

// Notification channels and statuses.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
	ChannelPush  = "push"

	NotificationPending = "pending"
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
)

// Support ticket statuses and priorities.
const (
	TicketOpen       = "open"
	TicketInProgress = "in_progress"
	TicketResolved   = "resolved"
	TicketClosed     = "closed"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Promotion types.
const (
	PromoPercentage  = "percentage"
	PromoFixedAmount = "fixed_amount"
)

const (
	// DefaultCommissionPct is applied to dealers without a negotiated rate.
	DefaultCommissionPct = 15.0

	// DefaultPayoutFeePct is withheld from every payout request.
	DefaultPayoutFeePct = 2.0

	// DefaultDealerResponseHours bounds how long a booking may stay pending
	// before the sweeper expires it.
	DefaultDealerResponseHours = 24

	// SlotHoldTTL is how long a checkout hold keeps a slot reserved in Redis.
	SlotHoldTTL = 10 * 60 // seconds

	// RateLimitBookings is the number of booking attempts per window.
	RateLimitBookings = 5

	// RateLimitWindow in seconds.
	RateLimitWindow = 60

	// WorkerQueueSize is the in-memory fallback queue capacity.
	WorkerQueueSize = 1000

	// ReminderHour is the local hour at which service reminders go out.
	ReminderHour = 9
)

// Allowed day windows for slot generation from templates.
var SlotGenerationWindows = map[int]bool{7: true, 15: true, 30: true}
