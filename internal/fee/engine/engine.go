// Package engine computes parking fees. Every function is a pure function of
// its inputs: nothing here reads a clock, performs I/O or keeps state, so an
// Engine may be shared freely between goroutines.
package engine

import (
	"time"

	feedomain "github.com/railzwaylabs/parkwise/internal/fee/domain"
)

type Engine struct {
	policy feedomain.DiscountPolicy
}

func New(policy feedomain.DiscountPolicy) *Engine {
	return &Engine{policy: policy}
}

// Policy returns the discount policy the engine was built with.
func (e *Engine) Policy() feedomain.DiscountPolicy {
	return e.policy
}

// Evaluate returns the fee owed for [start, end] under schedule. The only
// failure is feedomain.ErrInvalidInterval; schedule must already have passed
// feedomain.ValidateSchedule.
func (e *Engine) Evaluate(start, end time.Time, schedule feedomain.FeeSchedule, set feedomain.EligibilitySet) (feedomain.FeeResult, error) {
	quote, err := e.Explain(start, end, schedule, set)
	if err != nil {
		return feedomain.FeeResult{}, err
	}
	return quote.Result, nil
}

// Explain runs the same pipeline as Evaluate and keeps every intermediate value.
func (e *Engine) Explain(start, end time.Time, schedule feedomain.FeeSchedule, set feedomain.EligibilitySet) (feedomain.Quote, error) {
	minutes, err := Minutes(start, end)
	if err != nil {
		return feedomain.Quote{}, err
	}

	raw, tier := BaseFee(minutes, schedule)
	capped := ApplyCap(raw, start, end, schedule.DailyCap)
	rate := EffectiveRate(e.policy, set)

	return feedomain.Quote{
		Start:        start,
		End:          end,
		Minutes:      minutes,
		Tier:         tier,
		RawFee:       raw,
		CappedFee:    capped,
		DaysSpanned:  DaysSpanned(start, end),
		DiscountRate: rate,
		Result:       ApplyDiscount(capped, rate),
	}, nil
}
