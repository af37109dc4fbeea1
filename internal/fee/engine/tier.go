package engine

import feedomain "github.com/railzwaylabs/parkwise/internal/fee/domain"

// SelectTier returns the first tier, in stored order, whose range contains
// minutes. It returns false when tiers is empty or nothing matches, in which
// case the simple schedule governs.
func SelectTier(minutes int64, tiers []feedomain.CustomTier) (feedomain.CustomTier, bool) {
	for _, tier := range tiers {
		if tier.Contains(minutes) {
			return tier, true
		}
	}
	return feedomain.CustomTier{}, false
}
