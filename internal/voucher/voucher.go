// Package voucher implements the read-only half of the voucher ledger:
// validation of a voucher against an order, and discount computation. The
// write half (redemption) lives in the voucher repository because it must
// share the order placement transaction.
package voucher

import (
	"time"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

// Validate checks whether the voucher can be applied to an order with the
// given subtotal by a user who has already redeemed it userUsageCount times.
// Checks run in a fixed order and the first failure is returned as a domain
// error; a nil return means the voucher is applicable. Pure read-and-check,
// no side effects: the authoritative re-check happens again at redemption
// time under a row lock.
func Validate(v *model.Voucher, userUsageCount int, subtotal float64, now time.Time) error {
	if !v.IsActive {
		return model.ErrVoucherInactive
	}
	if now.Before(v.StartDate) {
		return model.ErrVoucherNotStarted
	}
	if now.After(v.EndDate) {
		return model.ErrVoucherExpired
	}
	if subtotal < v.MinPurchaseAmount {
		return model.ErrVoucherMinPurchase
	}
	if v.TotalUsageLimit != nil && v.CurrentUsageCount >= *v.TotalUsageLimit {
		return model.ErrVoucherExhausted
	}
	if userUsageCount >= v.UsageLimitPerUser {
		return model.ErrVoucherUserLimit
	}
	return nil
}

// ComputeDiscount returns the discount amount the voucher grants on the given
// subtotal, rounded to cents. Percentage discounts are capped at
// MaxDiscountAmount when set; no discount ever exceeds the subtotal.
func ComputeDiscount(v *model.Voucher, subtotal float64) float64 {
	sub := decimal.NewFromFloat(subtotal)
	value := decimal.NewFromFloat(v.DiscountValue)

	var discount decimal.Decimal
	switch v.DiscountType {
	case model.DiscountTypePercentage:
		discount = sub.Mul(value).Div(decimal.NewFromInt(100))
		if v.MaxDiscountAmount != nil {
			ceiling := decimal.NewFromFloat(*v.MaxDiscountAmount)
			if discount.GreaterThan(ceiling) {
				discount = ceiling
			}
		}
	case model.DiscountTypeFixed:
		discount = value
	default:
		return 0
	}

	if discount.GreaterThan(sub) {
		discount = sub
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}

	f, _ := discount.Round(2).Float64()
	return f
}
