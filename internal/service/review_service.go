package service

import (
	"context"
	"fmt"

	"carserve/internal/domain"
	"carserve/internal/events"
	"carserve/internal/models"

	"github.com/rs/zerolog"
)

type ReviewService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewReviewService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *ReviewService {
	return &ReviewService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// PostReview publishes a customer review of a completed booking. The dealer
// and booking linkage come from the booking record, never from the caller.
func (s *ReviewService) PostReview(ctx context.Context, review *models.Review) error {
	if review.OverallRating < 1 || review.OverallRating > 5 {
		return ErrInvalidRating
	}

	booking, err := s.repo.GetBooking(ctx, review.BookingID)
	if err != nil {
		return err
	}
	if booking.CustomerID != review.CustomerID || booking.Status != models.BookingCompleted {
		return ErrBookingNotReviewable
	}

	review.DealerID = booking.DealerID
	review.IsPublished = true

	if err := s.repo.CreateReview(ctx, review); err != nil {
		return err
	}

	if s.eventBus != nil {
		payload := map[string]int64{
			"review_id":  review.ID,
			"booking_id": booking.ID,
			"dealer_id":  booking.DealerID,
			"rating":     review.OverallRating,
		}
		if err := s.eventBus.PublishJSON(events.EventReviewPosted, payload); err != nil {
			s.logger.Error().Err(err).Int64("review_id", review.ID).Msg("publish event error")
		}
	}

	enqueueNotification(ctx, s.repo, s.logger, booking.DealerID,
		"New review", fmt.Sprintf("Booking %s received a %d star review.", booking.Number, review.OverallRating), booking.ID)
	return nil
}

// Respond records the dealer's single public reply to a review.
func (s *ReviewService) Respond(ctx context.Context, reviewID, dealerID int64, response string) error {
	return s.repo.RespondToReview(ctx, reviewID, dealerID, response)
}

func (s *ReviewService) GetReviewForBooking(ctx context.Context, bookingID int64) (*models.Review, error) {
	return s.repo.GetReviewByBooking(ctx, bookingID)
}

func (s *ReviewService) ListDealerReviews(ctx context.Context, dealerID int64) ([]*models.Review, error) {
	return s.repo.ListReviewsByDealer(ctx, dealerID)
}

// Moderate hides or restores a review; the dealer rating is recomputed
// underneath.
func (s *ReviewService) Moderate(ctx context.Context, reviewID int64, published bool) error {
	return s.repo.SetReviewPublished(ctx, reviewID, published)
}
