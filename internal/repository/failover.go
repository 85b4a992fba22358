package repository

import (
	"context"
	"sync/atomic"
	"time"

	"carserve/internal/domain"
	"carserve/internal/models"

	"github.com/rs/zerolog"
)

// FailoverHoldRepository routes to the primary store and drops to the
// fallback when the primary errors. Recovery is probed once a minute.
type FailoverHoldRepository struct {
	primary   domain.HoldRepository
	fallback  domain.HoldRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverHoldRepository(primary, fallback domain.HoldRepository, logger *zerolog.Logger) *FailoverHoldRepository {
	return &FailoverHoldRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverHoldRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary hold repository failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverHoldRepository) shouldRetryPrimary() bool {
	return time.Since(time.Unix(0, r.lastCheck.Load())) > time.Minute
}

func (r *FailoverHoldRepository) PlaceHold(ctx context.Context, hold *models.SlotHold) error {
	if !r.isDown.Load() || r.shouldRetryPrimary() {
		err := r.primary.PlaceHold(ctx, hold)
		if err == nil || err == ErrHoldTaken {
			r.isDown.Store(false)
			return err
		}
		r.markDown(err)
	}
	return r.fallback.PlaceHold(ctx, hold)
}

func (r *FailoverHoldRepository) GetHold(ctx context.Context, slotID int64) (*models.SlotHold, error) {
	if !r.isDown.Load() || r.shouldRetryPrimary() {
		hold, err := r.primary.GetHold(ctx, slotID)
		if err == nil {
			r.isDown.Store(false)
			return hold, nil
		}
		r.markDown(err)
	}
	return r.fallback.GetHold(ctx, slotID)
}

func (r *FailoverHoldRepository) ReleaseHold(ctx context.Context, slotID, customerID int64) error {
	if !r.isDown.Load() || r.shouldRetryPrimary() {
		err := r.primary.ReleaseHold(ctx, slotID, customerID)
		if err == nil {
			r.isDown.Store(false)
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.ReleaseHold(ctx, slotID, customerID)
}

func (r *FailoverHoldRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() || r.shouldRetryPrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, userID, limit, window)
		if err == nil {
			r.isDown.Store(false)
			return allowed, nil
		}
		r.markDown(err)
	}
	return r.fallback.CheckRateLimit(ctx, userID, limit, window)
}
