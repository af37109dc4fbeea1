package engine

import (
	"fmt"
	"math"
	"time"

	feedomain "github.com/railzwaylabs/parkwise/internal/fee/domain"
)

// Minutes returns the whole minutes elapsed between start and end. Partial
// minutes are truncated.
func Minutes(start, end time.Time) (int64, error) {
	if end.Before(start) {
		return 0, fmt.Errorf("%w: end %s is before start %s",
			feedomain.ErrInvalidInterval,
			end.Format(time.RFC3339),
			start.Format(time.RFC3339),
		)
	}
	return int64(end.Sub(start) / time.Minute), nil
}

// ceilDiv divides rounding up. n must be >= 0 and d > 0.
func ceilDiv(n, d int64) int64 {
	if d <= 0 || n <= 0 {
		return 0
	}
	return (n + d - 1) / d
}

// mulSat multiplies non-negative amounts, saturating at math.MaxInt64.
func mulSat(a, b int64) int64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	if a > math.MaxInt64/b {
		return math.MaxInt64
	}
	return a * b
}

// addSat adds non-negative amounts, saturating at math.MaxInt64.
func addSat(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}
