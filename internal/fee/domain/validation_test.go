package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func validSchedule() FeeSchedule {
	return FeeSchedule{
		BasicAllowanceMinutes:     30,
		BasicFee:                  1000,
		AdditionalIntervalMinutes: 10,
		AdditionalFee:             500,
		DailyCap:                  CapAt(10000, CapPerSession),
		CustomTiers: []CustomTier{
			{MinMinutes: 0, MaxMinutes: int64Ptr(60), UnitMinutes: 30, Fee: 400},
			{MinMinutes: 61, MaxMinutes: int64Ptr(1440), UnitMinutes: 60, Fee: 5000, IsFixedFee: true},
			{MinMinutes: 1441, UnitMinutes: 60, Fee: 700},
		},
	}
}

func TestValidateSchedule(t *testing.T) {
	require.NoError(t, ValidateSchedule(validSchedule()))

	noTiers := validSchedule()
	noTiers.CustomTiers = nil
	noTiers.DailyCap = NoDailyCap()
	require.NoError(t, ValidateSchedule(noTiers))

	tests := []struct {
		name   string
		mutate func(s *FeeSchedule)
	}{
		{"negative allowance", func(s *FeeSchedule) { s.BasicAllowanceMinutes = -1 }},
		{"negative basic fee", func(s *FeeSchedule) { s.BasicFee = -1 }},
		{"zero interval", func(s *FeeSchedule) { s.AdditionalIntervalMinutes = 0 }},
		{"negative additional fee", func(s *FeeSchedule) { s.AdditionalFee = -5 }},
		{"negative cap", func(s *FeeSchedule) { s.DailyCap = CapAt(-1, CapPerSession) }},
		{"unknown cap policy", func(s *FeeSchedule) { s.DailyCap.Policy = "weekly" }},
		{"negative tier min", func(s *FeeSchedule) { s.CustomTiers[0].MinMinutes = -1 }},
		{"max not above min", func(s *FeeSchedule) { s.CustomTiers[0].MaxMinutes = int64Ptr(0) }},
		{"zero unit", func(s *FeeSchedule) { s.CustomTiers[1].UnitMinutes = 0 }},
		{"negative tier fee", func(s *FeeSchedule) { s.CustomTiers[2].Fee = -1 }},
		{"basic fee above max", func(s *FeeSchedule) { s.BasicFee = MaxAmount + 1 }},
		{"additional fee above max", func(s *FeeSchedule) { s.AdditionalFee = math.MaxInt64 / 2 }},
		{"cap above max", func(s *FeeSchedule) { s.DailyCap = CapAt(math.MaxInt64/2, CapPerCalendarDay) }},
		{"tier fee above max", func(s *FeeSchedule) { s.CustomTiers[2].Fee = MaxAmount + 1 }},
		{"unbounded tier not last", func(s *FeeSchedule) { s.CustomTiers[1].MaxMinutes = nil }},
		{"overlapping tiers", func(s *FeeSchedule) { s.CustomTiers[1].MinMinutes = 60 }},
		{"descending tiers", func(s *FeeSchedule) {
			s.CustomTiers = []CustomTier{
				{MinMinutes: 100, MaxMinutes: int64Ptr(200), UnitMinutes: 10, Fee: 1},
				{MinMinutes: 0, MaxMinutes: int64Ptr(50), UnitMinutes: 10, Fee: 1},
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSchedule()
			s.CustomTiers = append([]CustomTier(nil), s.CustomTiers...)
			tt.mutate(&s)
			assert.ErrorIs(t, ValidateSchedule(s), ErrInvalidSchedule)
		})
	}
}

func TestDailyCapLimit(t *testing.T) {
	_, _, ok := NoDailyCap().Limit()
	assert.False(t, ok)

	maxFee, policy, ok := CapAt(800, "").Limit()
	require.True(t, ok)
	assert.Equal(t, int64(800), maxFee)
	assert.Equal(t, CapPerSession, policy)

	_, policy, ok = DailyCap{Enabled: true, MaxFee: 1}.Limit()
	require.True(t, ok)
	assert.Equal(t, CapPerSession, policy)
}

func TestNewDiscountPolicy(t *testing.T) {
	policy, err := NewDiscountPolicy(map[Eligibility]float64{
		EligibilityCompact:     0.2,
		EligibilityLowEmission: 0,
	}, "")
	require.NoError(t, err)
	assert.Equal(t, CombineMax, policy.Combination())
	assert.Equal(t, "0.2", policy.Rate(EligibilityCompact).String())
	assert.True(t, policy.Rate("unknown").IsZero())
	assert.Equal(t, []Eligibility{EligibilityCompact, EligibilityLowEmission}, policy.Flags())

	_, err = NewDiscountPolicy(map[Eligibility]float64{EligibilityCompact: 1.01}, CombineMax)
	assert.ErrorIs(t, err, ErrUnsupportedDiscountRate)

	_, err = NewDiscountPolicy(map[Eligibility]float64{EligibilityCompact: -0.1}, CombineMax)
	assert.ErrorIs(t, err, ErrUnsupportedDiscountRate)

	for _, rate := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err = NewDiscountPolicy(map[Eligibility]float64{EligibilityCompact: rate}, CombineMax)
		assert.ErrorIs(t, err, ErrUnsupportedDiscountRate)
	}

	_, err = NewDiscountPolicy(map[Eligibility]float64{" ": 0.1}, CombineMax)
	assert.ErrorIs(t, err, ErrUnknownEligibility)

	_, err = NewDiscountPolicy(nil, "stacked")
	assert.ErrorIs(t, err, ErrInvalidCombination)
}

func TestEligibilitySetActive(t *testing.T) {
	set := EligibilitySet{EligibilityCompact: true, EligibilityLowEmission: false}
	assert.Equal(t, []Eligibility{EligibilityCompact}, set.Active())
	assert.Empty(t, EligibilitySet(nil).Active())
}
