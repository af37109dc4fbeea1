package domain

import (
	"context"
	"time"
)

// QuoteRequest is one evaluation input as received from callers.
type QuoteRequest struct {
	Start         time.Time      `json:"start" binding:"required"`
	End           time.Time      `json:"end" binding:"required"`
	Schedule      FeeSchedule    `json:"schedule"`
	Eligibilities []Eligibility  `json:"eligibilities,omitempty"`
	Location      *time.Location `json:"-"`
}

type Service interface {
	// Quote evaluates a request. Unvalidated schedules are rejected with
	// ErrInvalidSchedule and flags without a discount rate with
	// ErrUnknownEligibility before evaluation.
	Quote(ctx context.Context, req QuoteRequest) (Quote, error)
	// Evaluate runs the engine on an already validated schedule.
	Evaluate(ctx context.Context, start, end time.Time, schedule FeeSchedule, set EligibilitySet) (Quote, error)
	ValidateSchedule(schedule FeeSchedule) error
	Policy() DiscountPolicy
}
