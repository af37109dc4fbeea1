package domain

import "fmt"

// MaxAmount bounds every fee and cap in a schedule, in minor units.
const MaxAmount int64 = 1_000_000_000_000

// ValidateSchedule checks a schedule once, when it is accepted into the
// system. Evaluation assumes a schedule that passed this check.
func ValidateSchedule(s FeeSchedule) error {
	if s.BasicAllowanceMinutes < 0 {
		return fmt.Errorf("%w: basic_allowance_minutes must be >= 0", ErrInvalidSchedule)
	}
	if err := checkAmount("basic_fee", s.BasicFee); err != nil {
		return err
	}
	if s.AdditionalIntervalMinutes <= 0 {
		return fmt.Errorf("%w: additional_interval_minutes must be > 0", ErrInvalidSchedule)
	}
	if err := checkAmount("additional_fee", s.AdditionalFee); err != nil {
		return err
	}
	if err := validateDailyCap(s.DailyCap); err != nil {
		return err
	}
	return validateTiers(s.CustomTiers)
}

func validateDailyCap(c DailyCap) error {
	if !c.Enabled {
		return nil
	}
	if err := checkAmount("daily_cap.max_fee", c.MaxFee); err != nil {
		return err
	}
	switch c.Policy {
	case "", CapPerSession, CapPerCalendarDay:
		return nil
	default:
		return fmt.Errorf("%w: unknown daily_cap.policy %q", ErrInvalidSchedule, c.Policy)
	}
}

func validateTiers(tiers []CustomTier) error {
	for i, t := range tiers {
		if t.MinMinutes < 0 {
			return fmt.Errorf("%w: tier %d min_minutes must be >= 0", ErrInvalidSchedule, i)
		}
		if t.MaxMinutes != nil && *t.MaxMinutes <= t.MinMinutes {
			return fmt.Errorf("%w: tier %d max_minutes must be > min_minutes", ErrInvalidSchedule, i)
		}
		if t.UnitMinutes <= 0 {
			return fmt.Errorf("%w: tier %d unit_minutes must be > 0", ErrInvalidSchedule, i)
		}
		if err := checkAmount(fmt.Sprintf("tier %d fee", i), t.Fee); err != nil {
			return err
		}
		if t.Unbounded() && i != len(tiers)-1 {
			return fmt.Errorf("%w: only the last tier may be unbounded", ErrInvalidSchedule)
		}
		if i == 0 {
			continue
		}

		prev := tiers[i-1]
		if t.MinMinutes <= prev.MinMinutes {
			return fmt.Errorf("%w: tiers must be in ascending min_minutes order", ErrInvalidSchedule)
		}
		// Bounds are inclusive, so the next tier starts strictly after the previous max.
		if t.MinMinutes <= *prev.MaxMinutes {
			return fmt.Errorf("%w: tier %d overlaps tier %d", ErrInvalidSchedule, i, i-1)
		}
	}
	return nil
}

func checkAmount(field string, v int64) error {
	if v < 0 || v > MaxAmount {
		return fmt.Errorf("%w: %s must be within 0..%d", ErrInvalidSchedule, field, MaxAmount)
	}
	return nil
}
