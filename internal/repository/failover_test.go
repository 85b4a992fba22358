package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"carserve/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockHoldRepo struct {
	mock.Mock
}

func (m *mockHoldRepo) PlaceHold(ctx context.Context, hold *models.SlotHold) error {
	args := m.Called(ctx, hold)
	return args.Error(0)
}

func (m *mockHoldRepo) GetHold(ctx context.Context, slotID int64) (*models.SlotHold, error) {
	args := m.Called(ctx, slotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SlotHold), args.Error(1)
}

func (m *mockHoldRepo) ReleaseHold(ctx context.Context, slotID, customerID int64) error {
	args := m.Called(ctx, slotID, customerID)
	return args.Error(0)
}

func (m *mockHoldRepo) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, userID, limit, window)
	return args.Bool(0), args.Error(1)
}

func TestFailoverHoldRepository(t *testing.T) {
	logger := zerolog.New(io.Discard)
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary := new(mockHoldRepo)
		fallback := new(mockHoldRepo)
		repo := NewFailoverHoldRepository(primary, fallback, &logger)

		hold := &models.SlotHold{CustomerID: 1, SlotID: 10}
		primary.On("GetHold", ctx, int64(10)).Return(hold, nil).Once()

		got, err := repo.GetHold(ctx, 10)
		assert.NoError(t, err)
		assert.Equal(t, hold, got)
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		primary := new(mockHoldRepo)
		fallback := new(mockHoldRepo)
		repo := NewFailoverHoldRepository(primary, fallback, &logger)

		hold := &models.SlotHold{CustomerID: 2, SlotID: 20}
		primary.On("GetHold", ctx, int64(20)).Return(nil, errors.New("connection refused")).Once()
		fallback.On("GetHold", ctx, int64(20)).Return(hold, nil).Once()

		got, err := repo.GetHold(ctx, 20)
		assert.NoError(t, err)
		assert.Equal(t, hold, got)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("HoldTakenIsNotAFailure", func(t *testing.T) {
		primary := new(mockHoldRepo)
		fallback := new(mockHoldRepo)
		repo := NewFailoverHoldRepository(primary, fallback, &logger)

		hold := &models.SlotHold{CustomerID: 3, SlotID: 30}
		primary.On("PlaceHold", ctx, hold).Return(ErrHoldTaken).Once()

		err := repo.PlaceHold(ctx, hold)
		assert.ErrorIs(t, err, ErrHoldTaken)
		assert.False(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertNotCalled(t, "PlaceHold", mock.Anything, mock.Anything)
	})

	t.Run("RecoveryAfterWindow", func(t *testing.T) {
		primary := new(mockHoldRepo)
		fallback := new(mockHoldRepo)
		repo := NewFailoverHoldRepository(primary, fallback, &logger)

		repo.isDown.Store(true)
		repo.lastCheck.Store(time.Now().Add(-2 * time.Minute).UnixNano())

		hold := &models.SlotHold{CustomerID: 4, SlotID: 40}
		primary.On("GetHold", ctx, int64(40)).Return(hold, nil).Once()

		got, err := repo.GetHold(ctx, 40)
		assert.NoError(t, err)
		assert.Equal(t, hold, got)
		assert.False(t, repo.isDown.Load())
		primary.AssertExpectations(t)
	})

	t.Run("RateLimitFallsBack", func(t *testing.T) {
		primary := new(mockHoldRepo)
		fallback := new(mockHoldRepo)
		repo := NewFailoverHoldRepository(primary, fallback, &logger)

		primary.On("CheckRateLimit", ctx, int64(5), 3, time.Minute).Return(false, errors.New("down")).Once()
		fallback.On("CheckRateLimit", ctx, int64(5), 3, time.Minute).Return(true, nil).Once()

		allowed, err := repo.CheckRateLimit(ctx, 5, 3, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		fallback.AssertExpectations(t)
	})
}
