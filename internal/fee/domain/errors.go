package domain

import "errors"

var (
	ErrInvalidInterval         = errors.New("invalid_interval")
	ErrInvalidSchedule         = errors.New("invalid_schedule")
	ErrUnsupportedDiscountRate = errors.New("unsupported_discount_rate")
	ErrUnknownEligibility      = errors.New("unknown_eligibility")
	ErrInvalidCombination      = errors.New("invalid_discount_combination")
)
