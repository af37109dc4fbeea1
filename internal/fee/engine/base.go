package engine

import feedomain "github.com/railzwaylabs/parkwise/internal/fee/domain"

// SimpleFee bills the basic fee for the allowance and one additional fee per
// started interval after it.
func SimpleFee(minutes int64, s feedomain.FeeSchedule) int64 {
	if minutes <= s.BasicAllowanceMinutes {
		return s.BasicFee
	}
	intervals := ceilDiv(minutes-s.BasicAllowanceMinutes, s.AdditionalIntervalMinutes)
	return addSat(s.BasicFee, mulSat(s.AdditionalFee, intervals))
}

// TierFee bills a resolved tier. Per-unit tiers count units from session
// start and always bill at least one unit.
func TierFee(minutes int64, tier feedomain.CustomTier) int64 {
	if tier.IsFixedFee {
		return tier.Fee
	}
	units := ceilDiv(minutes, tier.UnitMinutes)
	if units < 1 {
		units = 1
	}
	return mulSat(tier.Fee, units)
}

// BaseFee picks the tiered or simple algorithm; the two are never combined.
func BaseFee(minutes int64, s feedomain.FeeSchedule) (int64, *feedomain.CustomTier) {
	if tier, ok := SelectTier(minutes, s.CustomTiers); ok {
		return TierFee(minutes, tier), &tier
	}
	return SimpleFee(minutes, s), nil
}
