package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	feedomain "github.com/railzwaylabs/parkwise/internal/fee/domain"
)

var base = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func simpleSchedule() feedomain.FeeSchedule {
	return feedomain.FeeSchedule{
		BasicAllowanceMinutes:     30,
		BasicFee:                  1000,
		AdditionalIntervalMinutes: 10,
		AdditionalFee:             500,
	}
}

func testPolicy(t *testing.T, combination feedomain.Combination) feedomain.DiscountPolicy {
	t.Helper()
	policy, err := feedomain.NewDiscountPolicy(map[feedomain.Eligibility]float64{
		feedomain.EligibilityCompact:     0.2,
		feedomain.EligibilityLowEmission: 0.5,
	}, combination)
	require.NoError(t, err)
	return policy
}

func minutesAfter(m int) time.Time {
	return base.Add(time.Duration(m) * time.Minute)
}

func int64Ptr(v int64) *int64 {
	return &v
}

func TestEvaluateSimpleSchedule(t *testing.T) {
	e := New(testPolicy(t, feedomain.CombineMax))

	tests := []struct {
		name    string
		minutes int
		want    int64
	}{
		{name: "zero minutes bills basic fee", minutes: 0, want: 1000},
		{name: "within allowance", minutes: 12, want: 1000},
		{name: "exactly the allowance", minutes: 30, want: 1000},
		{name: "one minute past allowance", minutes: 31, want: 1500},
		{name: "45 minutes", minutes: 45, want: 2000}, // 1000 + 500*ceil(15/10)
		{name: "full interval boundary", minutes: 50, want: 2000},
		{name: "into third interval", minutes: 51, want: 2500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Evaluate(base, minutesAfter(tt.minutes), simpleSchedule(), nil)
			require.NoError(t, err)
			assert.True(t, decimal.NewFromInt(tt.want).Equal(got.Original), "original=%s", got.Original)
			assert.True(t, got.Original.Equal(got.Discounted))
			assert.False(t, got.HasDiscount)
		})
	}
}

func TestEvaluateTruncatesPartialMinutes(t *testing.T) {
	e := New(feedomain.DiscountPolicy{})

	end := base.Add(30*time.Minute + 59*time.Second)
	got, err := e.Evaluate(base, end, simpleSchedule(), nil)
	require.NoError(t, err)
	assert.Equal(t, "1000", got.Original.String())
}

func TestEvaluateFixedFeeTier(t *testing.T) {
	e := New(feedomain.DiscountPolicy{})
	schedule := simpleSchedule()
	schedule.CustomTiers = []feedomain.CustomTier{
		{MinMinutes: 0, MaxMinutes: int64Ptr(1440), UnitMinutes: 60, Fee: 5000, IsFixedFee: true},
	}

	for _, m := range []int{0, 1, 600, 1440} {
		got, err := e.Evaluate(base, minutesAfter(m), schedule, nil)
		require.NoError(t, err)
		assert.Equal(t, "5000", got.Original.String(), "minutes=%d", m)
	}
}

func TestEvaluatePerUnitTierCountsFromSessionStart(t *testing.T) {
	e := New(feedomain.DiscountPolicy{})
	schedule := simpleSchedule()
	schedule.CustomTiers = []feedomain.CustomTier{
		{MinMinutes: 0, MaxMinutes: int64Ptr(120), UnitMinutes: 30, Fee: 300},
		{MinMinutes: 121, UnitMinutes: 60, Fee: 800},
	}

	quote, err := e.Explain(base, minutesAfter(0), schedule, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(300), quote.RawFee) // at least one unit

	quote, err = e.Explain(base, minutesAfter(61), schedule, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(900), quote.RawFee) // ceil(61/30)=3
	require.NotNil(t, quote.Tier)
	assert.Equal(t, int64(0), quote.Tier.MinMinutes)

	quote, err = e.Explain(base, minutesAfter(150), schedule, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2400), quote.RawFee) // ceil(150/60)=3, not ceil(29/60)
	require.NotNil(t, quote.Tier)
	assert.Equal(t, int64(121), quote.Tier.MinMinutes)
}

func TestEvaluateFallsBackToSimpleScheduleOnTierGap(t *testing.T) {
	e := New(feedomain.DiscountPolicy{})
	schedule := simpleSchedule()
	schedule.CustomTiers = []feedomain.CustomTier{
		{MinMinutes: 60, MaxMinutes: int64Ptr(120), UnitMinutes: 60, Fee: 9000, IsFixedFee: true},
	}

	quote, err := e.Explain(base, minutesAfter(45), schedule, nil)
	require.NoError(t, err)
	assert.Nil(t, quote.Tier)
	assert.Equal(t, int64(2000), quote.RawFee)

	quote, err = e.Explain(base, minutesAfter(200), schedule, nil)
	require.NoError(t, err)
	assert.Nil(t, quote.Tier)
	assert.Equal(t, int64(1000+500*17), quote.RawFee)
}

func TestEvaluateCapThenDiscount(t *testing.T) {
	e := New(testPolicy(t, feedomain.CombineMax))
	schedule := feedomain.FeeSchedule{
		BasicAllowanceMinutes:     60,
		BasicFee:                  2000,
		AdditionalIntervalMinutes: 60,
		AdditionalFee:             2000,
		DailyCap:                  feedomain.CapAt(10000, feedomain.CapPerSession),
	}

	// 5 hours -> 2000 + 4*2000 = 10000, 6 hours -> 12000 raw.
	quote, err := e.Explain(base, minutesAfter(360), schedule, feedomain.NewEligibilitySet(feedomain.EligibilityCompact))
	require.NoError(t, err)
	assert.Equal(t, int64(12000), quote.RawFee)
	assert.Equal(t, int64(10000), quote.CappedFee)
	assert.Equal(t, "10000", quote.Result.Original.String())
	assert.Equal(t, "8000", quote.Result.Discounted.String())
	assert.True(t, quote.Result.HasDiscount)
}

func TestEvaluateInvalidInterval(t *testing.T) {
	e := New(feedomain.DiscountPolicy{})

	got, err := e.Evaluate(base, base.Add(-time.Second), simpleSchedule(), nil)
	require.ErrorIs(t, err, feedomain.ErrInvalidInterval)
	assert.Equal(t, feedomain.FeeResult{}, got)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	e := New(testPolicy(t, feedomain.CombineMax))
	set := feedomain.NewEligibilitySet(feedomain.EligibilityLowEmission)

	first, err := e.Evaluate(base, minutesAfter(97), simpleSchedule(), set)
	require.NoError(t, err)
	second, err := e.Evaluate(base, minutesAfter(97), simpleSchedule(), set)
	require.NoError(t, err)

	assert.True(t, first.Original.Equal(second.Original))
	assert.True(t, first.Discounted.Equal(second.Discounted))
	assert.Equal(t, first.HasDiscount, second.HasDiscount)
}

func TestEvaluateMonotonicWithoutTiers(t *testing.T) {
	e := New(feedomain.DiscountPolicy{})
	schedules := []feedomain.FeeSchedule{
		simpleSchedule(),
		{BasicAllowanceMinutes: 0, BasicFee: 0, AdditionalIntervalMinutes: 15, AdditionalFee: 250},
		{BasicAllowanceMinutes: 120, BasicFee: 300, AdditionalIntervalMinutes: 7, AdditionalFee: 0},
		{BasicAllowanceMinutes: 60, BasicFee: 500, AdditionalIntervalMinutes: 30, AdditionalFee: 400, DailyCap: feedomain.CapAt(3000, "")},
	}

	for i, schedule := range schedules {
		prev := decimal.NewFromInt(-1)
		for m := 0; m <= 3*24*60; m += 7 {
			got, err := e.Evaluate(base, minutesAfter(m), schedule, nil)
			require.NoError(t, err)
			require.False(t, got.Original.LessThan(prev), "schedule %d decreased at minute %d", i, m)
			prev = got.Original
		}
	}
}

func TestEvaluateDiscountInvariant(t *testing.T) {
	e := New(testPolicy(t, feedomain.CombineMax))
	sets := []feedomain.EligibilitySet{
		nil,
		feedomain.NewEligibilitySet(feedomain.EligibilityCompact),
		feedomain.NewEligibilitySet(feedomain.EligibilityCompact, feedomain.EligibilityLowEmission),
		{feedomain.EligibilityCompact: false},
	}

	for _, set := range sets {
		for m := 0; m <= 600; m += 13 {
			got, err := e.Evaluate(base, minutesAfter(m), simpleSchedule(), set)
			require.NoError(t, err)
			assert.False(t, got.Discounted.GreaterThan(got.Original))
			assert.Equal(t, got.Discounted.LessThan(got.Original), got.HasDiscount)
			assert.Equal(t, len(set.Active()) > 0, got.HasDiscount)
		}
	}
}
