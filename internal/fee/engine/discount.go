package engine

import (
	"github.com/shopspring/decimal"

	feedomain "github.com/railzwaylabs/parkwise/internal/fee/domain"
)

var one = decimal.NewFromInt(1)

// EffectiveRate derives the discount rate for the active flags.
func EffectiveRate(policy feedomain.DiscountPolicy, set feedomain.EligibilitySet) decimal.Decimal {
	rate := decimal.Zero
	for _, flag := range set.Active() {
		r := policy.Rate(flag)
		switch policy.Combination() {
		case feedomain.CombineAdditive:
			rate = rate.Add(r)
		default:
			if r.GreaterThan(rate) {
				rate = r
			}
		}
	}
	if rate.GreaterThan(one) {
		return one
	}
	return rate
}

// ApplyDiscount produces the final result for a capped fee. The discounted
// amount is rounded half-up to the smallest currency unit.
func ApplyDiscount(fee int64, rate decimal.Decimal) feedomain.FeeResult {
	original := decimal.NewFromInt(fee)
	discounted := original
	if rate.IsPositive() {
		// Round is half away from zero, which equals half-up for fee >= 0.
		discounted = original.Mul(one.Sub(rate)).Round(0)
	}
	if discounted.GreaterThan(original) {
		discounted = original
	}
	return feedomain.FeeResult{
		Original:    original,
		Discounted:  discounted,
		HasDiscount: discounted.LessThan(original),
	}
}
