package service

import (
	"context"

	"carserve/internal/config"
	"carserve/internal/domain"
	"carserve/internal/models"

	"github.com/rs/zerolog"
)

type LoyaltyService struct {
	repo   domain.Repository
	cfg    config.LoyaltyConfig
	logger *zerolog.Logger
}

func NewLoyaltyService(repo domain.Repository, cfg config.LoyaltyConfig, logger *zerolog.Logger) *LoyaltyService {
	return &LoyaltyService{repo: repo, cfg: cfg, logger: logger}
}

func (s *LoyaltyService) Balance(ctx context.Context, customerID int64) (int64, error) {
	profile, err := s.repo.GetCustomerProfile(ctx, customerID)
	if err != nil {
		return 0, err
	}
	return profile.LoyaltyPoints, nil
}

func (s *LoyaltyService) History(ctx context.Context, customerID int64) ([]*models.LoyaltyTransaction, error) {
	return s.repo.ListLoyaltyTransactions(ctx, customerID)
}

// GrantBonus credits promotional points outside the booking flow.
func (s *LoyaltyService) GrantBonus(ctx context.Context, customerID, points int64, description string) (*models.LoyaltyTransaction, error) {
	return s.repo.ApplyLoyaltyPoints(ctx, customerID, models.LoyaltyBonus, points, description, 0)
}

// Adjust applies a signed manual correction.
func (s *LoyaltyService) Adjust(ctx context.Context, customerID, points int64, description string) (*models.LoyaltyTransaction, error) {
	return s.repo.ApplyLoyaltyPoints(ctx, customerID, models.LoyaltyAdjustment, points, description, 0)
}

// earnedPoints converts a completed booking total into points: the configured
// rate per 100 currency units spent, rounded down.
func earnedPoints(total int64, cfg config.LoyaltyConfig) int64 {
	return total / 10000 * cfg.EarnRatePer100
}

// redeemValue is the currency value of points in cents.
func redeemValue(points int64, cfg config.LoyaltyConfig) int64 {
	return points * cfg.PointValue
}

// maxRedeemValue caps how much of an order total points may cover.
func maxRedeemValue(total int64, cfg config.LoyaltyConfig) int64 {
	return pctOf(total, cfg.MaxRedeemPct)
}
