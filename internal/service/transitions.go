package service

import "carserve/internal/models"

// bookingTransitions is the single authority on booking status flow. Every
// status change in the service layer goes through CanTransition, so no code
// path can move a booking along an edge that is not listed here.
var bookingTransitions = map[string][]string{
	models.BookingPending: {
		models.BookingConfirmed,
		models.BookingCancelledByCustomer,
		models.BookingCancelledByDealer,
		models.BookingExpired,
	},
	models.BookingConfirmed: {
		models.BookingInProgress,
		models.BookingCancelledByCustomer,
		models.BookingCancelledByDealer,
	},
	models.BookingInProgress: {
		models.BookingCompleted,
		models.BookingNoShow,
	},
	models.BookingCompleted:           {},
	models.BookingCancelledByCustomer: {},
	models.BookingCancelledByDealer:   {},
	models.BookingNoShow:              {},
	models.BookingExpired:             {},
}

// CanTransition reports whether a booking may move from one status to
// another.
func CanTransition(from, to string) bool {
	for _, allowed := range bookingTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing transitions.
func IsTerminal(status string) bool {
	next, ok := bookingTransitions[status]
	return ok && len(next) == 0
}

// releasesSlot reports whether entering the status returns the claimed
// capacity unit to the slot.
func releasesSlot(status string) bool {
	switch status {
	case models.BookingCancelledByCustomer, models.BookingCancelledByDealer, models.BookingExpired:
		return true
	}
	return false
}
