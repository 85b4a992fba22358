package database

import (
	"context"
	"testing"

	"carserve/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyLoyaltyPoints_EarnAndRedeem(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	customer := createTestCustomer(t, db, "points@example.com")

	earned, err := db.ApplyLoyaltyPoints(ctx, customer.ID, models.LoyaltyEarned, 250, "points for booking CS001", 1)
	require.NoError(t, err)
	assert.Zero(t, earned.BalanceBefore)
	assert.Equal(t, int64(250), earned.BalanceAfter)

	redeemed, err := db.ApplyLoyaltyPoints(ctx, customer.ID, models.LoyaltyRedeemed, -100, "redeemed at checkout", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(250), redeemed.BalanceBefore)
	assert.Equal(t, int64(150), redeemed.BalanceAfter)

	profile, err := db.GetCustomerProfile(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(150), profile.LoyaltyPoints)

	txs, err := db.ListLoyaltyTransactions(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, models.LoyaltyRedeemed, txs[0].Type)
	assert.Equal(t, models.LoyaltyEarned, txs[1].Type)
}

func TestApplyLoyaltyPoints_InsufficientBalance(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	customer := createTestCustomer(t, db, "nopoints@example.com")

	_, err := db.ApplyLoyaltyPoints(ctx, customer.ID, models.LoyaltyRedeemed, -50, "redeem", 0)
	assert.ErrorIs(t, err, ErrInsufficientPoints)

	// The rejected redemption leaves no ledger row.
	txs, err := db.ListLoyaltyTransactions(ctx, customer.ID)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestApplyLoyaltyPoints_UnknownCustomer(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.ApplyLoyaltyPoints(context.Background(), 9999, models.LoyaltyBonus, 10, "bonus", 0)
	assert.ErrorIs(t, err, ErrNotFound)
}
