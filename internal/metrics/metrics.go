package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "carserve",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "carserve",
			Name:      "bookings_created_total",
			Help:      "Bookings successfully created.",
		},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "carserve",
			Name:      "booking_transitions_total",
			Help:      "Booking status transitions by target status.",
		},
		[]string{"status"},
	)

	slotConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "carserve",
			Name:      "slot_conflicts_total",
			Help:      "Booking attempts rejected because the slot was full.",
		},
	)

	notificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "carserve",
			Name:      "notifications_sent_total",
			Help:      "Notification deliveries by channel and outcome.",
		},
		[]string{"channel", "outcome"},
	)

	payoutsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "carserve",
			Name:      "payouts_completed_total",
			Help:      "Dealer payouts completed.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			bookingsCreated,
			bookingTransitions,
			slotConflicts,
			notificationsSent,
			payoutsCompleted,
		)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncBookingCreated() {
	bookingsCreated.Inc()
}

func IncBookingTransition(status string) {
	bookingTransitions.WithLabelValues(status).Inc()
}

func IncSlotConflict() {
	slotConflicts.Inc()
}

func IncNotificationSent(channel, outcome string) {
	notificationsSent.WithLabelValues(channel, outcome).Inc()
}

func IncPayoutCompleted() {
	payoutsCompleted.Inc()
}
