package database

import "errors"

var (
	ErrNotFound               = errors.New("record not found")
	ErrSlotUnavailable        = errors.New("slot has no available capacity")
	ErrConcurrentModification = errors.New("record modified concurrently")
	ErrInvalidTransition      = errors.New("status transition not allowed")
	ErrInsufficientBalance    = errors.New("insufficient dealer balance")
	ErrInsufficientPoints     = errors.New("insufficient loyalty points")
	ErrDuplicateReview        = errors.New("booking already reviewed")
	ErrDuplicateEmail         = errors.New("email already registered")
	ErrDuplicatePlate         = errors.New("license plate already registered")
	ErrPromotionExhausted     = errors.New("promotion usage limit reached")
	ErrPastDate               = errors.New("date is in the past")
	ErrDateTooFar             = errors.New("date is beyond the booking window")
)
