package service

import (
	"context"
	"testing"

	"carserve/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLoyaltyBalance(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetCustomerProfile", mock.Anything, int64(1)).Return(&models.CustomerProfile{
		AccountID: 1, LoyaltyPoints: 320,
	}, nil)

	svc := NewLoyaltyService(repo, testLoyaltyConfig(), testLogger())
	balance, err := svc.Balance(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(320), balance)
}

func TestGrantBonus(t *testing.T) {
	repo := new(mockRepo)
	repo.On("ApplyLoyaltyPoints", mock.Anything, int64(1), models.LoyaltyBonus, int64(50), "signup campaign", int64(0)).
		Return(&models.LoyaltyTransaction{ID: 1, Points: 50, BalanceAfter: 370}, nil)

	svc := NewLoyaltyService(repo, testLoyaltyConfig(), testLogger())
	tx, err := svc.GrantBonus(context.Background(), 1, 50, "signup campaign")
	require.NoError(t, err)
	assert.Equal(t, int64(370), tx.BalanceAfter)
}

func TestPointMath(t *testing.T) {
	cfg := testLoyaltyConfig()

	// 2500.00 in cents earns 25 points at 1 point per 100 spent.
	assert.Equal(t, int64(25), earnedPoints(250000, cfg))
	// Partial hundreds do not earn.
	assert.Equal(t, int64(0), earnedPoints(9900, cfg))
	assert.Equal(t, int64(2), earnedPoints(25099, cfg))

	assert.Equal(t, int64(10000), redeemValue(100, cfg))
	assert.Equal(t, int64(50000), maxRedeemValue(100000, cfg))
}
