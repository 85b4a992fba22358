package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carserve/internal/config"
	"carserve/internal/database"
	"carserve/internal/domain"
	"carserve/internal/events"
	"carserve/internal/metrics"
	"carserve/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo       domain.Repository
	holds      domain.HoldRepository
	eventBus   domain.EventPublisher
	cfg        config.BookingConfig
	loyaltyCfg config.LoyaltyConfig
	commission float64 // platform default, dealer profile overrides
	logger     *zerolog.Logger
}

func NewBookingService(repo domain.Repository, holds domain.HoldRepository, eventBus domain.EventPublisher, cfg config.BookingConfig, loyaltyCfg config.LoyaltyConfig, logger *zerolog.Logger) *BookingService {
	if cfg.DealerResponseHours <= 0 {
		cfg.DealerResponseHours = models.DefaultDealerResponseHours
	}
	if cfg.MaxBookingDays <= 0 {
		cfg.MaxBookingDays = 30
	}
	return &BookingService{
		repo:       repo,
		holds:      holds,
		eventBus:   eventBus,
		cfg:        cfg,
		loyaltyCfg: loyaltyCfg,
		commission: models.DefaultCommissionPct,
		logger:     logger,
	}
}

// CreateBookingInput carries everything the customer submits at checkout.
type CreateBookingInput struct {
	CustomerID   int64
	SlotID       int64
	VehicleID    int64
	PromoCode    string
	RedeemPoints int64
	Location     string
	Instructions string
	Method       string // payment method
}

// HoldSlot places a short advisory reservation on a slot while the customer
// fills in the checkout form.
func (s *BookingService) HoldSlot(ctx context.Context, customerID, slotID, vehicleID int64) error {
	if s.holds == nil {
		return nil
	}
	return s.holds.PlaceHold(ctx, &models.SlotHold{
		CustomerID: customerID,
		SlotID:     slotID,
		VehicleID:  vehicleID,
		HeldAt:     time.Now(),
	})
}

// CreateBooking runs the full checkout: rate limit, ownership and schedule
// validation, promotion and loyalty pricing, the guarded capacity claim, and
// the pending payment record. The claim is the commit point; steps after it
// are compensated or merely logged, never allowed to strand a claimed slot.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	now := time.Now()

	if s.holds != nil {
		window := time.Duration(s.cfg.RateLimitWindow) * time.Second
		ok, err := s.holds.CheckRateLimit(ctx, input.CustomerID, s.cfg.RateLimitBookings, window)
		if err != nil {
			s.logger.Warn().Err(err).Int64("customer_id", input.CustomerID).Msg("rate limit check error")
		} else if !ok {
			return nil, ErrRateLimited
		}
	}

	vehicle, err := s.repo.GetVehicle(ctx, input.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.OwnerID != input.CustomerID || !vehicle.IsActive {
		return nil, ErrVehicleNotOwned
	}

	slot, err := s.repo.GetSlot(ctx, input.SlotID)
	if err != nil {
		return nil, err
	}
	if !slot.Bookable() {
		return nil, ErrSlotNotBookable
	}

	svc, err := s.repo.GetService(ctx, slot.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, ErrSlotNotBookable
	}

	scheduledAt, err := slotStart(slot)
	if err != nil {
		return nil, err
	}
	if err := s.validateSchedule(scheduledAt, svc.AdvanceBookingHours, now); err != nil {
		return nil, err
	}

	if s.holds != nil {
		held, err := s.holds.GetHold(ctx, input.SlotID)
		if err != nil {
			s.logger.Warn().Err(err).Int64("slot_id", input.SlotID).Msg("hold lookup error")
		} else if held != nil && held.CustomerID != input.CustomerID {
			return nil, ErrSlotNotBookable
		}
	}

	dealer, err := s.repo.GetDealerProfile(ctx, svc.DealerID)
	if err != nil {
		return nil, err
	}
	commission := dealer.CommissionPct
	if commission <= 0 {
		commission = s.commission
	}

	var promo *models.Promotion
	var discount int64
	if input.PromoCode != "" {
		basePrice := svc.Price()
		if slot.CustomPrice > 0 {
			basePrice = slot.CustomPrice
		}
		promo, discount, err = validatePromotion(ctx, s.repo, input.PromoCode, input.CustomerID, basePrice, now)
		if err != nil {
			return nil, err
		}
	}

	quote := BuildQuote(svc, slot, discount, s.cfg.TaxPct, commission)

	// Points redemption is an additional discount, capped at the configured
	// share of the pre-redemption total.
	var redeemed int64
	if input.RedeemPoints > 0 {
		redeemed = redeemValue(input.RedeemPoints, s.loyaltyCfg)
		if redeemed > maxRedeemValue(quote.Total, s.loyaltyCfg) {
			return nil, ErrRedeemLimitExceeded
		}
		quote = BuildQuote(svc, slot, discount+redeemed, s.cfg.TaxPct, commission)
	}

	policyID := svc.PolicyID
	if policyID == 0 {
		policy, err := s.repo.GetDefaultPolicy(ctx)
		if err != nil {
			return nil, err
		}
		policyID = policy.ID
	}

	if promo != nil {
		if err := s.repo.IncrementPromotionUse(ctx, promo.ID); err != nil {
			return nil, err
		}
	}

	if input.RedeemPoints > 0 {
		_, err := s.repo.ApplyLoyaltyPoints(ctx, input.CustomerID, models.LoyaltyRedeemed, -input.RedeemPoints, "redeemed at checkout", 0)
		if err != nil {
			return nil, err
		}
	}

	deadline := now.Add(time.Duration(s.cfg.DealerResponseHours) * time.Hour)
	if deadline.After(scheduledAt) {
		deadline = scheduledAt
	}

	booking := &models.Booking{
		Number:        newReference("CS", now, 4),
		CustomerID:    input.CustomerID,
		SlotID:        slot.ID,
		ServiceID:     svc.ID,
		DealerID:      svc.DealerID,
		VehicleID:     vehicle.ID,
		ServiceAmount: quote.ServiceAmount,
		Discount:      quote.Discount,
		Tax:           quote.Tax,
		Total:         quote.Total,
		PlatformFee:   quote.PlatformFee,
		DealerAmount:  quote.DealerAmount,
		PolicyID:      policyID,
		Location:      input.Location,
		ScheduledAt:   scheduledAt,
		Deadline:      deadline,
		Instructions:  input.Instructions,
	}
	if promo != nil {
		booking.PromotionID = promo.ID
	}

	if err := s.repo.CreateBookingClaimingSlot(ctx, booking); err != nil {
		if errors.Is(err, database.ErrSlotUnavailable) {
			metrics.IncSlotConflict()
		}
		if input.RedeemPoints > 0 {
			s.refundPoints(ctx, input.CustomerID, input.RedeemPoints)
		}
		return nil, err
	}

	payment := &models.Payment{
		BookingID:  booking.ID,
		Amount:     booking.Total,
		Currency:   "USD",
		MethodType: input.Method,
	}
	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("create payment error")
	}

	if s.holds != nil {
		if err := s.holds.ReleaseHold(ctx, slot.ID, input.CustomerID); err != nil {
			s.logger.Warn().Err(err).Int64("slot_id", slot.ID).Msg("release hold error")
		}
	}

	metrics.IncBookingCreated()
	s.publishEvent(events.EventBookingCreated, booking, 0, "")
	enqueueNotification(ctx, s.repo, s.logger, booking.CustomerID,
		"Booking received", fmt.Sprintf("Booking %s is awaiting dealer confirmation.", booking.Number), booking.ID)
	enqueueNotification(ctx, s.repo, s.logger, booking.DealerID,
		"New booking", fmt.Sprintf("Booking %s needs your confirmation before %s.", booking.Number, booking.Deadline.Format(time.RFC822)), booking.ID)

	return booking, nil
}

// Confirm moves a pending booking to confirmed and captures its payment.
func (s *BookingService) Confirm(ctx context.Context, bookingID, dealerID int64) error {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.DealerID != dealerID {
		return ErrNotBookingParty
	}

	if err := s.transition(ctx, booking, models.BookingConfirmed, dealerID, ""); err != nil {
		return err
	}

	payment, err := s.repo.GetPaymentByBooking(ctx, bookingID)
	if err == nil {
		if err := s.repo.MarkPaymentCaptured(ctx, payment.ID); err != nil {
			s.logger.Error().Err(err).Int64("payment_id", payment.ID).Msg("capture payment error")
		}
	}

	enqueueNotification(ctx, s.repo, s.logger, booking.CustomerID,
		"Booking confirmed", fmt.Sprintf("Booking %s is confirmed for %s.", booking.Number, booking.ScheduledAt.Format(time.RFC822)), booking.ID)
	return nil
}

// Start marks the vehicle as checked in and work begun.
func (s *BookingService) Start(ctx context.Context, bookingID, dealerID int64) error {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.DealerID != dealerID {
		return ErrNotBookingParty
	}
	return s.transition(ctx, booking, models.BookingInProgress, dealerID, "")
}

// Complete finishes the work, settles the dealer balance and awards loyalty
// points on the amount actually paid.
func (s *BookingService) Complete(ctx context.Context, bookingID, dealerID int64) error {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.DealerID != dealerID {
		return ErrNotBookingParty
	}

	if err := s.transition(ctx, booking, models.BookingCompleted, dealerID, ""); err != nil {
		return err
	}

	if err := s.repo.SettleCompletedBooking(ctx, booking); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("settle booking error")
		return err
	}

	if points := earnedPoints(booking.Total, s.loyaltyCfg); points > 0 {
		_, err := s.repo.ApplyLoyaltyPoints(ctx, booking.CustomerID, models.LoyaltyEarned, points,
			fmt.Sprintf("earned on booking %s", booking.Number), booking.ID)
		if err != nil {
			s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("award points error")
		}
	}

	enqueueNotification(ctx, s.repo, s.logger, booking.CustomerID,
		"Service completed", fmt.Sprintf("Booking %s is done. Leave a review to help other drivers.", booking.Number), booking.ID)
	return nil
}

// Cancel ends a booking before service. Customer cancellations pay the
// policy's time-windowed fee; dealer cancellations always refund in full.
func (s *BookingService) Cancel(ctx context.Context, bookingID, actorID int64, reason string) error {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	var target string
	var refund int64
	switch actorID {
	case booking.CustomerID:
		target = models.BookingCancelledByCustomer
		policy, err := s.repo.GetPolicy(ctx, booking.PolicyID)
		if err != nil {
			return err
		}
		refund = booking.Total - CancellationFee(policy, booking.Total, booking.ScheduledAt, time.Now())
	case booking.DealerID:
		target = models.BookingCancelledByDealer
		refund = booking.Total
	default:
		return ErrNotBookingParty
	}

	wasPending := booking.Status == models.BookingPending
	if err := s.transition(ctx, booking, target, actorID, reason); err != nil {
		return err
	}

	s.settleCancellation(ctx, booking, refund, wasPending)

	enqueueNotification(ctx, s.repo, s.logger, booking.CustomerID,
		"Booking cancelled", fmt.Sprintf("Booking %s was cancelled.", booking.Number), booking.ID)
	enqueueNotification(ctx, s.repo, s.logger, booking.DealerID,
		"Booking cancelled", fmt.Sprintf("Booking %s was cancelled.", booking.Number), booking.ID)
	return nil
}

// NoShow records that the customer never arrived. The slot stays consumed and
// no refund is due.
func (s *BookingService) NoShow(ctx context.Context, bookingID, dealerID int64) error {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.DealerID != dealerID {
		return ErrNotBookingParty
	}
	return s.transition(ctx, booking, models.BookingNoShow, dealerID, "customer did not arrive")
}

// ExpireOverdue sweeps pending bookings whose confirmation deadline passed.
// Returns how many were expired.
func (s *BookingService) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	overdue, err := s.repo.ListExpiredPending(ctx, now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, booking := range overdue {
		if err := s.transition(ctx, booking, models.BookingExpired, 0, "dealer response deadline passed"); err != nil {
			// Someone else moved it first; the sweep is best effort.
			s.logger.Warn().Err(err).Int64("booking_id", booking.ID).Msg("expire booking error")
			continue
		}
		s.settleCancellation(ctx, booking, booking.Total, true)
		enqueueNotification(ctx, s.repo, s.logger, booking.CustomerID,
			"Booking expired", fmt.Sprintf("The dealer did not confirm booking %s in time. You have not been charged.", booking.Number), booking.ID)
		expired++
	}
	return expired, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

func (s *BookingService) GetBookingByNumber(ctx context.Context, number string) (*models.Booking, error) {
	return s.repo.GetBookingByNumber(ctx, number)
}

func (s *BookingService) ListCustomerBookings(ctx context.Context, customerID int64) ([]*models.Booking, error) {
	return s.repo.ListBookingsByCustomer(ctx, customerID)
}

func (s *BookingService) ListDealerBookings(ctx context.Context, dealerID int64) ([]*models.Booking, error) {
	return s.repo.ListBookingsByDealer(ctx, dealerID)
}

func (s *BookingService) GetHistory(ctx context.Context, bookingID int64) ([]*models.BookingStatusHistory, error) {
	return s.repo.GetBookingHistory(ctx, bookingID)
}

// transition is the only way a booking status changes. It validates the edge,
// applies the guarded update, releases slot capacity where the target status
// calls for it, and publishes the matching event.
func (s *BookingService) transition(ctx context.Context, booking *models.Booking, target string, changedBy int64, reason string) error {
	if !CanTransition(booking.Status, target) {
		return database.ErrInvalidTransition
	}

	if err := s.repo.TransitionBooking(ctx, booking, target, changedBy, reason); err != nil {
		return err
	}
	metrics.IncBookingTransition(target)

	if releasesSlot(target) {
		if err := s.repo.ReleaseBookingSlot(ctx, booking.SlotID); err != nil {
			s.logger.Error().Err(err).Int64("slot_id", booking.SlotID).Msg("release slot error")
		}
	}

	s.publishEvent(transitionEvent(target), booking, changedBy, reason)
	return nil
}

// settleCancellation unwinds the money side of a cancelled or expired
// booking: void the payment if it was never captured, refund it otherwise.
func (s *BookingService) settleCancellation(ctx context.Context, booking *models.Booking, refund int64, wasPending bool) {
	payment, err := s.repo.GetPaymentByBooking(ctx, booking.ID)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("load payment error")
		}
		return
	}

	if wasPending {
		if err := s.repo.MarkPaymentFailed(ctx, payment.ID, "booking cancelled before capture"); err != nil {
			s.logger.Error().Err(err).Int64("payment_id", payment.ID).Msg("void payment error")
		}
		return
	}

	if refund > 0 {
		if err := s.repo.RefundPayment(ctx, payment.ID, refund); err != nil {
			s.logger.Error().Err(err).Int64("payment_id", payment.ID).Int64("refund", refund).Msg("refund payment error")
		}
	}
}

func (s *BookingService) refundPoints(ctx context.Context, customerID, points int64) {
	_, err := s.repo.ApplyLoyaltyPoints(ctx, customerID, models.LoyaltyAdjustment, points, "checkout failed, points returned", 0)
	if err != nil {
		s.logger.Error().Err(err).Int64("customer_id", customerID).Msg("return points error")
	}
}

func (s *BookingService) validateSchedule(scheduledAt time.Time, advanceHours int64, now time.Time) error {
	if scheduledAt.Before(now) {
		return database.ErrPastDate
	}
	if scheduledAt.After(now.AddDate(0, 0, s.cfg.MaxBookingDays)) {
		return database.ErrDateTooFar
	}
	if scheduledAt.Sub(now) < time.Duration(advanceHours)*time.Hour {
		return ErrInsideAdvanceWindow
	}
	return nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, changedBy int64, reason string) {
	if s.eventBus == nil || eventType == "" {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		Number:      booking.Number,
		CustomerID:  booking.CustomerID,
		DealerID:    booking.DealerID,
		ServiceID:   booking.ServiceID,
		Status:      booking.Status,
		Total:       booking.Total,
		ScheduledAt: booking.ScheduledAt,
		Reason:      reason,
		ChangedBy:   changedBy,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func transitionEvent(status string) string {
	switch status {
	case models.BookingConfirmed:
		return events.EventBookingConfirmed
	case models.BookingInProgress:
		return events.EventBookingStarted
	case models.BookingCompleted:
		return events.EventBookingCompleted
	case models.BookingCancelledByCustomer, models.BookingCancelledByDealer:
		return events.EventBookingCanceled
	case models.BookingExpired:
		return events.EventBookingExpired
	case models.BookingNoShow:
		return events.EventBookingNoShow
	}
	return ""
}

// slotStart combines the slot's date with its wall-clock start time.
func slotStart(slot *models.ServiceSlot) (time.Time, error) {
	t, err := time.Parse("15:04", slot.StartTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse slot start time: %w", err)
	}
	d := slot.Date
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}
