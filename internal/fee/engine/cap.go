package engine

import (
	"time"

	feedomain "github.com/railzwaylabs/parkwise/internal/fee/domain"
)

// ApplyCap clamps fee to the schedule's daily cap. Calendar days are taken
// in start's location, so callers pass times in the zone's time zone.
func ApplyCap(fee int64, start, end time.Time, c feedomain.DailyCap) int64 {
	maxFee, policy, ok := c.Limit()
	if !ok {
		return fee
	}

	ceiling := maxFee
	if policy == feedomain.CapPerCalendarDay {
		ceiling = mulSat(maxFee, DaysSpanned(start, end))
	}
	if fee > ceiling {
		return ceiling
	}
	return fee
}

// DaysSpanned counts the calendar days touched by [start, end]. A session
// ending exactly at midnight does not touch the following day.
func DaysSpanned(start, end time.Time) int64 {
	if !end.After(start) {
		return 1
	}
	loc := start.Location()
	last := end.In(loc)
	if isMidnight(last) {
		last = last.Add(-time.Nanosecond)
	}

	first := civilDate(start)
	lastDay := civilDate(last)
	days := int64(lastDay.Sub(first).Hours()/24+0.5) + 1
	if days < 1 {
		return 1
	}
	return days
}

func isMidnight(t time.Time) bool {
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}

// civilDate maps a time to midnight UTC of its local calendar date so day
// differences are immune to DST transitions.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
