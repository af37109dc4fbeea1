package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

type Combination string

const (
	// CombineMax applies the best single rate among the active flags.
	CombineMax Combination = "max"
	// CombineAdditive sums the active rates, clamped to 1.
	CombineAdditive Combination = "additive"
)

// DiscountPolicy maps eligibility flags to discount rates. It is built once
// from configuration and handed to the engine; it is never mutated.
type DiscountPolicy struct {
	rates       map[Eligibility]decimal.Decimal
	combination Combination
}

// NewDiscountPolicy validates every rate against [0, 1].
func NewDiscountPolicy(rates map[Eligibility]float64, combination Combination) (DiscountPolicy, error) {
	switch combination {
	case "":
		combination = CombineMax
	case CombineMax, CombineAdditive:
	default:
		return DiscountPolicy{}, fmt.Errorf("%w: %q", ErrInvalidCombination, combination)
	}

	table := make(map[Eligibility]decimal.Decimal, len(rates))
	for flag, rate := range rates {
		name := Eligibility(strings.TrimSpace(string(flag)))
		if name == "" {
			return DiscountPolicy{}, fmt.Errorf("%w: empty flag name", ErrUnknownEligibility)
		}
		if math.IsNaN(rate) || math.IsInf(rate, 0) {
			return DiscountPolicy{}, fmt.Errorf("%w: %s=%v", ErrUnsupportedDiscountRate, name, rate)
		}
		d := decimal.NewFromFloat(rate)
		if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)) {
			return DiscountPolicy{}, fmt.Errorf("%w: %s=%v", ErrUnsupportedDiscountRate, name, rate)
		}
		table[name] = d
	}

	return DiscountPolicy{rates: table, combination: combination}, nil
}

// Combination returns the rule used when several flags are active.
func (p DiscountPolicy) Combination() Combination {
	if p.combination == "" {
		return CombineMax
	}
	return p.combination
}

// Rate returns the configured rate for a flag, zero when unknown.
func (p DiscountPolicy) Rate(flag Eligibility) decimal.Decimal {
	if rate, ok := p.rates[flag]; ok {
		return rate
	}
	return decimal.Zero
}

// Flags lists the configured flags in name order.
func (p DiscountPolicy) Flags() []Eligibility {
	out := make([]Eligibility, 0, len(p.rates))
	for flag := range p.rates {
		out = append(out, flag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
