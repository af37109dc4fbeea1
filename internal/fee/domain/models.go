// Package domain holds the value types consumed and produced by the fee engine.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeSchedule describes one zone's billing rules. When CustomTiers is
// non-empty it supersedes the basic/additional schedule for billing.
type FeeSchedule struct {
	BasicAllowanceMinutes     int64        `json:"basic_allowance_minutes" mapstructure:"basic_allowance_minutes"`
	BasicFee                  int64        `json:"basic_fee" mapstructure:"basic_fee"`
	AdditionalIntervalMinutes int64        `json:"additional_interval_minutes" mapstructure:"additional_interval_minutes"`
	AdditionalFee             int64        `json:"additional_fee" mapstructure:"additional_fee"`
	DailyCap                  DailyCap     `json:"daily_cap" mapstructure:"daily_cap"`
	CustomTiers               []CustomTier `json:"custom_tiers,omitempty" mapstructure:"custom_tiers"`
}

// HasCustomTiers reports whether tiered billing governs this schedule.
func (s FeeSchedule) HasCustomTiers() bool {
	return len(s.CustomTiers) > 0
}

// CustomTier is a minute range with its own billing rule. A nil MaxMinutes
// means the range is unbounded.
type CustomTier struct {
	MinMinutes  int64  `json:"min_minutes" mapstructure:"min_minutes"`
	MaxMinutes  *int64 `json:"max_minutes,omitempty" mapstructure:"max_minutes"`
	UnitMinutes int64  `json:"unit_minutes" mapstructure:"unit_minutes"`
	Fee         int64  `json:"fee" mapstructure:"fee"`
	IsFixedFee  bool   `json:"is_fixed_fee" mapstructure:"is_fixed_fee"`
}

// Contains reports whether minutes falls inside the tier, bounds inclusive.
func (t CustomTier) Contains(minutes int64) bool {
	if minutes < t.MinMinutes {
		return false
	}
	return t.MaxMinutes == nil || minutes <= *t.MaxMinutes
}

// Unbounded reports whether the tier has no upper bound.
func (t CustomTier) Unbounded() bool {
	return t.MaxMinutes == nil
}

type CapPolicy string

const (
	// CapPerSession uses MaxFee as one ceiling for the whole session.
	CapPerSession CapPolicy = "per_session"
	// CapPerCalendarDay allows MaxFee for every calendar day the session touches.
	CapPerCalendarDay CapPolicy = "per_calendar_day"
)

// DailyCap is either disabled or enabled with a maximum fee. Build it with
// NoDailyCap or CapAt; consumers read it through Limit.
type DailyCap struct {
	Enabled bool      `json:"enabled" mapstructure:"enabled"`
	MaxFee  int64     `json:"max_fee" mapstructure:"max_fee"`
	Policy  CapPolicy `json:"policy,omitempty" mapstructure:"policy"`
}

func NoDailyCap() DailyCap {
	return DailyCap{}
}

func CapAt(maxFee int64, policy CapPolicy) DailyCap {
	if policy == "" {
		policy = CapPerSession
	}
	return DailyCap{Enabled: true, MaxFee: maxFee, Policy: policy}
}

// Limit returns the maximum fee and policy, and false when capping is disabled.
func (c DailyCap) Limit() (int64, CapPolicy, bool) {
	if !c.Enabled {
		return 0, "", false
	}
	policy := c.Policy
	if policy == "" {
		policy = CapPerSession
	}
	return c.MaxFee, policy, true
}

// Eligibility is a named vehicle attribute that may unlock a discount rate.
type Eligibility string

const (
	EligibilityCompact     Eligibility = "compact"
	EligibilityLowEmission Eligibility = "low_emission"
)

// EligibilitySet is the set of flags attached to a vehicle. A flag mapped to
// false is inactive.
type EligibilitySet map[Eligibility]bool

func NewEligibilitySet(flags ...Eligibility) EligibilitySet {
	set := make(EligibilitySet, len(flags))
	for _, f := range flags {
		set[f] = true
	}
	return set
}

// Active returns the active flags.
func (s EligibilitySet) Active() []Eligibility {
	out := make([]Eligibility, 0, len(s))
	for flag, on := range s {
		if on {
			out = append(out, flag)
		}
	}
	return out
}

// FeeResult is the outcome of one evaluation. Discounted never exceeds
// Original and HasDiscount is true exactly when it is lower.
type FeeResult struct {
	Original    decimal.Decimal `json:"original"`
	Discounted  decimal.Decimal `json:"discounted"`
	HasDiscount bool            `json:"has_discount"`
}

// Quote is a FeeResult together with the intermediate values that produced it.
type Quote struct {
	Start        time.Time       `json:"start"`
	End          time.Time       `json:"end"`
	Minutes      int64           `json:"minutes"`
	Tier         *CustomTier     `json:"tier,omitempty"`
	RawFee       int64           `json:"raw_fee"`
	CappedFee    int64           `json:"capped_fee"`
	DaysSpanned  int64           `json:"days_spanned"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
	Result       FeeResult       `json:"result"`
}
