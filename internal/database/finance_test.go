package database

import (
	"context"
	"testing"

	"carserve/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentLifecycle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	f := setupBookingFixture(t, db, 1)
	b := newTestBooking(f, "CS2608262001")
	require.NoError(t, db.CreateBookingClaimingSlot(ctx, b))

	p := &models.Payment{BookingID: b.ID, Amount: b.Total, Currency: "BDT", MethodType: "customer_card"}
	require.NoError(t, db.CreatePayment(ctx, p))
	assert.Equal(t, models.PaymentPending, p.Status)

	require.NoError(t, db.MarkPaymentCaptured(ctx, p.ID))

	// Double capture is rejected.
	err := db.MarkPaymentCaptured(ctx, p.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err := db.GetPaymentByBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentSucceeded, got.Status)
	assert.NotNil(t, got.CapturedAt)
}

func TestRefundPayment_PartialThenFull(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	f := setupBookingFixture(t, db, 1)
	b := newTestBooking(f, "CS2608262010")
	require.NoError(t, db.CreateBookingClaimingSlot(ctx, b))

	p := &models.Payment{BookingID: b.ID, Amount: 100000, Currency: "BDT", MethodType: "customer_card"}
	require.NoError(t, db.CreatePayment(ctx, p))
	require.NoError(t, db.MarkPaymentCaptured(ctx, p.ID))

	require.NoError(t, db.RefundPayment(ctx, p.ID, 40000))
	got, err := db.GetPaymentByBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPartiallyRefunded, got.Status)
	assert.Equal(t, int64(40000), got.RefundAmount)

	require.NoError(t, db.RefundPayment(ctx, p.ID, 60000))
	got, err = db.GetPaymentByBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRefunded, got.Status)
	assert.Equal(t, int64(100000), got.RefundAmount)

	// Over-refunding is rejected.
	err = db.RefundPayment(ctx, p.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCreatePayoutRequest_InsufficientBalance(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	dealer := createTestDealer(t, db, "broke@example.com")

	p := &models.DealerPayout{
		DealerID: dealer.ID, Amount: 50000, ProcessingFee: 1000, NetAmount: 49000,
		Reference: "PAY260826AAAA0001",
	}
	err := db.CreatePayoutRequest(ctx, p)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestCompletePayout_DebitsNetAndWritesLedger(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	f := setupBookingFixture(t, db, 1)
	b := newTestBooking(f, "CS2608262020")
	require.NoError(t, db.CreateBookingClaimingSlot(ctx, b))
	require.NoError(t, db.SettleCompletedBooking(ctx, b)) // balance = 212500

	payout := &models.DealerPayout{
		DealerID: f.dealer.ID, Amount: 100000, ProcessingFee: 2000, NetAmount: 98000,
		Reference: "PAY260826BBBB0001", BankSnapshot: `{"bank_name":"City Bank"}`,
	}
	require.NoError(t, db.CreatePayoutRequest(ctx, payout))

	admin := &models.Account{Email: "admin@example.com", FullName: "Admin"}
	require.NoError(t, db.CreateAdmin(ctx, admin))

	require.NoError(t, db.UpdatePayoutStatus(ctx, payout.ID, models.PayoutPending, models.PayoutApproved, admin.ID, "verified"))
	require.NoError(t, db.UpdatePayoutStatus(ctx, payout.ID, models.PayoutApproved, models.PayoutProcessing, admin.ID, ""))
	require.NoError(t, db.CompletePayout(ctx, payout, admin.ID))

	assert.Equal(t, models.PayoutCompleted, payout.Status)
	assert.NotNil(t, payout.ProcessedAt)

	dealer, err := db.GetDealerProfile(ctx, f.dealer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(212500-98000), dealer.CurrentBalance)

	txs, err := db.ListBalanceTransactions(ctx, f.dealer.ID)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, models.TxPayout, txs[0].Type)
	assert.Equal(t, int64(-98000), txs[0].Amount)
	assert.Equal(t, int64(212500), txs[0].BalanceBefore)
	assert.Equal(t, int64(212500-98000), txs[0].BalanceAfter)
}

func TestCompletePayout_RequiresProcessingStatus(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	f := setupBookingFixture(t, db, 1)
	b := newTestBooking(f, "CS2608262030")
	require.NoError(t, db.CreateBookingClaimingSlot(ctx, b))
	require.NoError(t, db.SettleCompletedBooking(ctx, b))

	payout := &models.DealerPayout{
		DealerID: f.dealer.ID, Amount: 50000, ProcessingFee: 1000, NetAmount: 49000,
		Reference: "PAY260826CCCC0001",
	}
	require.NoError(t, db.CreatePayoutRequest(ctx, payout))

	err := db.CompletePayout(ctx, payout, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAdjustDealerBalance_GuardsNegative(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	dealer := createTestDealer(t, db, "adjust@example.com")

	require.NoError(t, db.AdjustDealerBalance(ctx, dealer.ID, 10000, "signup bonus"))

	err := db.AdjustDealerBalance(ctx, dealer.ID, -20000, "overcharge")
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	profile, err := db.GetDealerProfile(ctx, dealer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), profile.CurrentBalance)

	txs, err := db.ListBalanceTransactions(ctx, dealer.ID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, models.TxAdjustment, txs[0].Type)
}
