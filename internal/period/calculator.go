// Package period maps calendar dates to budgeting periods under a
// recurrence configuration and navigates between adjacent periods.
//
// All functions are pure; they assume a validated configuration (see
// domain.RecurrenceConfig.Validate) and produce undefined boundaries for a
// misconfigured one. Dates are treated as calendar days, normalized to
// midnight UTC.
package period

import (
	"time"

	"github.com/ledgerline/budget-engine-go/internal/domain"
)

// Compute returns the period enclosing date: Start <= date <= End.
func Compute(cfg domain.RecurrenceConfig, date time.Time) domain.PeriodRange {
	d := dateOnly(date)
	if cfg.Mode == domain.RecurrenceFixedInterval {
		return fixedIntervalPeriod(cfg.FixedInterval, d)
	}
	a := cfg.AnchorInMonth
	if a.AnchorDay2 == 0 {
		return singleAnchorPeriod(a.AnchorDay1, d)
	}
	return dualAnchorPeriod(a.AnchorDay1, a.AnchorDay2, d)
}

// Previous returns the period immediately before p. It recomputes from
// p.Start - 1 day rather than shifting boundaries arithmetically, which
// keeps results correct across variable-length months.
func Previous(cfg domain.RecurrenceConfig, p domain.PeriodRange) domain.PeriodRange {
	return Compute(cfg, p.Start.AddDate(0, 0, -1))
}

// Next returns the period immediately after p, recomputed from p.End + 1 day.
func Next(cfg domain.RecurrenceConfig, p domain.PeriodRange) domain.PeriodRange {
	return Compute(cfg, p.End.AddDate(0, 0, 1))
}

// At walks offset periods from the one enclosing today. Offset 0 returns
// today's period; positive offsets walk forward, negative backward. The walk
// is iterative because anchor-in-month periods vary in length, so there is
// no closed-form jump.
func At(cfg domain.RecurrenceConfig, today time.Time, offset int) domain.PeriodRange {
	p := Compute(cfg, today)
	for i := 0; i < offset; i++ {
		p = Next(cfg, p)
	}
	for i := 0; i > offset; i-- {
		p = Previous(cfg, p)
	}
	return p
}

func fixedIntervalPeriod(f *domain.FixedIntervalRecurrence, d time.Time) domain.PeriodRange {
	anchor := dateOnly(f.AnchorDate)
	idx := floorDiv(daysBetween(anchor, d), f.IntervalDays)
	start := anchor.AddDate(0, 0, idx*f.IntervalDays)
	return domain.PeriodRange{
		Start: start,
		End:   start.AddDate(0, 0, f.IntervalDays-1),
	}
}

func singleAnchorPeriod(anchorDay int, d time.Time) domain.PeriodRange {
	y, m, day := d.Date()

	var start time.Time
	if day >= clampDay(anchorDay, y, m) {
		start = monthDay(y, m, anchorDay)
	} else {
		py, pm := shiftMonth(y, m, -1)
		start = monthDay(py, pm, anchorDay)
	}

	// End is one day before the next month's (clamped) anchor.
	ny, nm := shiftMonth(start.Year(), start.Month(), 1)
	end := monthDay(ny, nm, anchorDay).AddDate(0, 0, -1)
	return domain.PeriodRange{Start: start, End: end}
}

func dualAnchorPeriod(day1, day2 int, d time.Time) domain.PeriodRange {
	lo, hi := day1, day2
	if lo > hi {
		lo, hi = hi, lo
	}

	y, m, day := d.Date()
	loCur := clampDay(lo, y, m)
	hiCur := clampDay(hi, y, m)

	switch {
	case day >= hiCur:
		// Upper half: runs from this month's high anchor to the day before
		// next month's low anchor.
		ny, nm := shiftMonth(y, m, 1)
		return domain.PeriodRange{
			Start: monthDay(y, m, hi),
			End:   monthDay(ny, nm, lo).AddDate(0, 0, -1),
		}
	case day >= loCur:
		// Lower half of the current month.
		return domain.PeriodRange{
			Start: monthDay(y, m, lo),
			End:   monthDay(y, m, hi).AddDate(0, 0, -1),
		}
	default:
		// Before the low anchor: still in the upper half that started last
		// month. The high anchor clamps against last month's length.
		py, pm := shiftMonth(y, m, -1)
		return domain.PeriodRange{
			Start: monthDay(py, pm, hi),
			End:   monthDay(y, m, lo).AddDate(0, 0, -1),
		}
	}
}

// dateOnly drops the time-of-day component and pins the date to UTC.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole-day distance from a to b (negative when b
// precedes a). Both arguments must already be midnight UTC.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// floorDiv divides rounding toward negative infinity, so day distances
// before the anchor land in the correct earlier period.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func daysInMonth(y int, m time.Month) int {
	// Day 0 of the following month is this month's last day.
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// clampDay clamps an anchor day to the length of the given month, so anchor
// day 31 behaves as day 28/29/30 in short months.
func clampDay(day, y int, m time.Month) int {
	if dim := daysInMonth(y, m); day > dim {
		return dim
	}
	return day
}

// monthDay builds the date for an anchor day in a month, clamping against
// that month's actual length.
func monthDay(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, clampDay(day, y, m), 0, 0, 0, 0, time.UTC)
}

// shiftMonth moves a year/month pair by n months, normalizing across year
// boundaries.
func shiftMonth(y int, m time.Month, n int) (int, time.Month) {
	t := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}
