// Package schedule expands recurring-item schedules into occurrence counts.
// The view builder consumes it through the port.OccurrenceCounter interface
// and treats the expansion as a black box.
package schedule

import (
	"time"

	"github.com/ledgerline/budget-engine-go/internal/domain"
)

// maxIterations bounds the expansion walk; at daily frequency it covers
// several years of window, far beyond any period length the engine asks for.
const maxIterations = 5000

// Expander counts schedule occurrences inside date windows.
type Expander struct{}

// NewExpander creates an occurrence expander.
func NewExpander() *Expander {
	return &Expander{}
}

// CountOccurrences returns how many occurrences of the item's schedule fall
// in [from, to], both bounds inclusive. Monthly and yearly schedules keep
// the start date's day-of-month, clamping to shorter months, so a schedule
// starting Jan 31 occurs on Feb 28/29 rather than skipping February.
func (e *Expander) CountOccurrences(item domain.RecurringItem, from, to time.Time) int {
	sched := item.Schedule
	if sched.StartsOn.IsZero() || to.Before(from) {
		return 0
	}
	interval := sched.Interval
	if interval < 1 {
		interval = 1
	}

	from = dateOnly(from)
	to = dateOnly(to)
	start := dateOnly(sched.StartsOn)

	count := 0
	for i := 0; i < maxIterations; i++ {
		occ := occurrenceAt(sched.Frequency, start, i*interval)
		if occ.After(to) {
			break
		}
		if !occ.Before(from) {
			count++
		}
	}
	return count
}

// occurrenceAt returns the n-th step of the schedule from its start date.
// Steps are always taken from the original start, not the previous
// occurrence, so monthly clamping does not drift (Jan 31 → Feb 28 → Mar 31).
func occurrenceAt(freq domain.ScheduleFrequency, start time.Time, n int) time.Time {
	switch freq {
	case domain.FreqDaily:
		return start.AddDate(0, 0, n)
	case domain.FreqWeekly:
		return start.AddDate(0, 0, 7*n)
	case domain.FreqMonthly:
		return monthStep(start, n)
	case domain.FreqYearly:
		return monthStep(start, 12*n)
	default:
		// Unknown frequency: only the start date itself can match.
		if n == 0 {
			return start
		}
		return start.AddDate(1000, 0, 0)
	}
}

// monthStep advances by whole months while clamping the day-of-month to the
// target month's length (time.AddDate would normalize Jan 31 + 1 month into
// March 2/3 instead).
func monthStep(start time.Time, months int) time.Time {
	anchor := time.Date(start.Year(), start.Month()+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	day := start.Day()
	if last := anchor.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(anchor.Year(), anchor.Month(), day, 0, 0, 0, 0, time.UTC)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
