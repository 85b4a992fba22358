package service

import (
	"math"
	"time"

	"carserve/internal/models"
)

// Quote is the financial breakdown computed for a booking before it is
// written. All amounts are in cents.
type Quote struct {
	ServiceAmount int64
	Discount      int64
	Tax           int64
	Total         int64
	PlatformFee   int64
	DealerAmount  int64
}

// BuildQuote prices one booking: slot custom price wins over the service
// price, the discount is subtracted before tax, and the platform fee is taken
// from the pre-tax subtotal at the dealer's commission rate. Tax passes
// through to the dealer untouched.
func BuildQuote(service *models.Service, slot *models.ServiceSlot, discount int64, taxPct, commissionPct float64) Quote {
	amount := service.Price()
	if slot != nil && slot.CustomPrice > 0 {
		amount = slot.CustomPrice
	}

	if discount > amount {
		discount = amount
	}

	subtotal := amount - discount
	tax := pctOf(subtotal, taxPct)
	total := subtotal + tax
	fee := pctOf(subtotal, commissionPct)

	return Quote{
		ServiceAmount: amount,
		Discount:      discount,
		Tax:           tax,
		Total:         total,
		PlatformFee:   fee,
		DealerAmount:  total - fee,
	}
}

// PromotionDiscount computes the discount a promotion grants on the amount.
// Callers validate eligibility (window, minimum order, usage caps) first.
func PromotionDiscount(p *models.Promotion, amount int64) int64 {
	var discount int64
	switch p.Type {
	case models.PromoPercentage:
		discount = pctOf(amount, p.DiscountPct)
	case models.PromoFixedAmount:
		discount = p.DiscountAmount
	}
	if discount > amount {
		discount = amount
	}
	return discount
}

// CancellationFee applies the policy's time windows counting back from the
// scheduled time: free outside the free-cancel window, a partial charge
// inside it, the full total once the partial window has closed too.
func CancellationFee(policy *models.CancellationPolicy, total int64, scheduledAt, now time.Time) int64 {
	hoursUntil := scheduledAt.Sub(now).Hours()

	switch {
	case hoursUntil >= float64(policy.FreeCancelHours):
		return 0
	case hoursUntil >= float64(policy.PartialHours):
		return pctOf(total, 100-policy.PartialRefundPct)
	default:
		return total
	}
}

func pctOf(amount int64, pct float64) int64 {
	return int64(math.Round(float64(amount) * pct / 100))
}
