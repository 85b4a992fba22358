package service

import "errors"

// Business-rule failures surfaced by the service layer. Persistence anomalies
// keep their sentinels in the database package.
var (
	ErrEmailRequired           = errors.New("email is required")
	ErrDealerNotApproved       = errors.New("dealer is not approved")
	ErrBankDetailsMissing      = errors.New("dealer bank details are not on file")
	ErrVehicleNotOwned         = errors.New("vehicle does not belong to the customer")
	ErrPlateRequired           = errors.New("license plate is required")
	ErrMileageDecreased        = errors.New("mileage cannot decrease")
	ErrServiceNotOwned         = errors.New("service does not belong to the dealer")
	ErrSlotNotBookable         = errors.New("slot is not open for booking")
	ErrInsideAdvanceWindow     = errors.New("slot starts inside the advance booking window")
	ErrRateLimited             = errors.New("too many booking attempts")
	ErrPromotionNotApplicable  = errors.New("promotion is not applicable to this order")
	ErrBookingNotReviewable    = errors.New("only the customer's completed bookings can be reviewed")
	ErrInvalidRating           = errors.New("rating must be between 1 and 5")
	ErrAmountBelowMinimum      = errors.New("payout amount is below the minimum")
	ErrRedeemLimitExceeded     = errors.New("points exceed the redeemable share of the total")
	ErrInvalidGenerationWindow = errors.New("slot generation window must be 7, 15 or 30 days")
	ErrNotBookingParty         = errors.New("account is not a party to this booking")
)
