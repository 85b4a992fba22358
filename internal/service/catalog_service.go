package service

import (
	"context"
	"time"

	"carserve/internal/domain"
	"carserve/internal/models"

	"github.com/rs/zerolog"
)

type CatalogService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewCatalogService(repo domain.Repository, logger *zerolog.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

// SeedCatalog loads the category and cancellation policy reference data.
// Called once at startup; re-running updates rows in place.
func (s *CatalogService) SeedCatalog(ctx context.Context, categories []models.ServiceCategory, policies []models.CancellationPolicy) error {
	if err := s.repo.SeedCategories(ctx, categories); err != nil {
		return err
	}
	return s.repo.SeedPolicies(ctx, policies)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]*models.ServiceCategory, error) {
	return s.repo.ListCategories(ctx)
}

// PublishService creates a service offering for an approved dealer. Services
// without an explicit cancellation policy get the platform default.
func (s *CatalogService) PublishService(ctx context.Context, svc *models.Service) error {
	profile, err := s.repo.GetDealerProfile(ctx, svc.DealerID)
	if err != nil {
		return err
	}
	if !profile.IsApproved || !profile.IsActive {
		return ErrDealerNotApproved
	}

	if svc.PolicyID == 0 {
		policy, err := s.repo.GetDefaultPolicy(ctx)
		if err != nil {
			return err
		}
		svc.PolicyID = policy.ID
	}

	return s.repo.CreateService(ctx, svc)
}

func (s *CatalogService) GetService(ctx context.Context, id int64) (*models.Service, error) {
	return s.repo.GetService(ctx, id)
}

func (s *CatalogService) ListDealerServices(ctx context.Context, dealerID int64) ([]*models.Service, error) {
	return s.repo.ListServicesByDealer(ctx, dealerID)
}

func (s *CatalogService) ListServicesByCategory(ctx context.Context, categoryID int64) ([]*models.Service, error) {
	return s.repo.ListActiveServicesByCategory(ctx, categoryID)
}

func (s *CatalogService) UpdatePricing(ctx context.Context, dealerID, serviceID, basePrice, discountedPrice int64) error {
	if err := s.requireOwnership(ctx, dealerID, serviceID); err != nil {
		return err
	}
	return s.repo.UpdateServicePricing(ctx, serviceID, basePrice, discountedPrice)
}

func (s *CatalogService) SetServiceActive(ctx context.Context, dealerID, serviceID int64, active bool) error {
	if err := s.requireOwnership(ctx, dealerID, serviceID); err != nil {
		return err
	}
	return s.repo.SetServiceActive(ctx, serviceID, active)
}

func (s *CatalogService) AddSlotTemplate(ctx context.Context, dealerID int64, template *models.SlotTemplate) error {
	if err := s.requireOwnership(ctx, dealerID, template.ServiceID); err != nil {
		return err
	}
	return s.repo.CreateSlotTemplate(ctx, template)
}

func (s *CatalogService) ListSlotTemplates(ctx context.Context, serviceID int64) ([]*models.SlotTemplate, error) {
	return s.repo.ListSlotTemplates(ctx, serviceID)
}

// GenerateSlots materializes bookable slots from the service's templates for
// the next days. Only the fixed 7, 15 and 30 day windows are offered.
func (s *CatalogService) GenerateSlots(ctx context.Context, dealerID, serviceID int64, days int) (int, error) {
	if !models.SlotGenerationWindows[days] {
		return 0, ErrInvalidGenerationWindow
	}
	if err := s.requireOwnership(ctx, dealerID, serviceID); err != nil {
		return 0, err
	}
	return s.repo.GenerateSlots(ctx, serviceID, days, time.Now().UTC())
}

func (s *CatalogService) GetAvailability(ctx context.Context, serviceID int64, startDate time.Time, days int) ([]*models.Availability, error) {
	return s.repo.GetAvailabilityForPeriod(ctx, serviceID, startDate, days)
}

func (s *CatalogService) ListSlots(ctx context.Context, serviceID int64, date time.Time) ([]*models.ServiceSlot, error) {
	return s.repo.ListSlotsByServiceDate(ctx, serviceID, date)
}

func (s *CatalogService) BlockSlot(ctx context.Context, id int64, reason string) error {
	return s.repo.BlockSlot(ctx, id, reason)
}

func (s *CatalogService) UnblockSlot(ctx context.Context, id int64) error {
	return s.repo.UnblockSlot(ctx, id)
}

func (s *CatalogService) CreatePromotion(ctx context.Context, promotion *models.Promotion) error {
	return s.repo.CreatePromotion(ctx, promotion)
}

// ValidatePromotion checks a code against an order amount and returns the
// promotion with the discount it grants.
func (s *CatalogService) ValidatePromotion(ctx context.Context, code string, customerID, amount int64, now time.Time) (*models.Promotion, int64, error) {
	return validatePromotion(ctx, s.repo, code, customerID, amount, now)
}

func (s *CatalogService) requireOwnership(ctx context.Context, dealerID, serviceID int64) error {
	svc, err := s.repo.GetService(ctx, serviceID)
	if err != nil {
		return err
	}
	if svc.DealerID != dealerID {
		return ErrServiceNotOwned
	}
	return nil
}

// validatePromotion applies every eligibility rule in one place: the code
// must exist and be active, inside its validity window, the order must meet
// the minimum, and neither the global nor the per-user usage cap may be
// exhausted.
func validatePromotion(ctx context.Context, repo domain.Repository, code string, customerID, amount int64, now time.Time) (*models.Promotion, int64, error) {
	promo, err := repo.GetPromotionByCode(ctx, code)
	if err != nil {
		return nil, 0, err
	}

	switch {
	case !promo.IsActive:
		return nil, 0, ErrPromotionNotApplicable
	case !promo.StartsAt.IsZero() && now.Before(promo.StartsAt):
		return nil, 0, ErrPromotionNotApplicable
	case !promo.EndsAt.IsZero() && now.After(promo.EndsAt):
		return nil, 0, ErrPromotionNotApplicable
	case amount < promo.MinOrderAmount:
		return nil, 0, ErrPromotionNotApplicable
	case promo.MaxUses > 0 && promo.CurrentUses >= promo.MaxUses:
		return nil, 0, ErrPromotionNotApplicable
	}

	if promo.MaxUsesPerUser > 0 {
		used, err := repo.CountPromotionUsesByCustomer(ctx, promo.ID, customerID)
		if err != nil {
			return nil, 0, err
		}
		if used >= promo.MaxUsesPerUser {
			return nil, 0, ErrPromotionNotApplicable
		}
	}

	return promo, PromotionDiscount(promo, amount), nil
}
