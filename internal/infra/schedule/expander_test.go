package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ledgerline/budget-engine-go/internal/domain"
	"github.com/ledgerline/budget-engine-go/internal/infra/schedule"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func item(freq domain.ScheduleFrequency, interval int, startsOn time.Time) domain.RecurringItem {
	return domain.RecurringItem{Schedule: domain.Schedule{Frequency: freq, Interval: interval, StartsOn: startsOn}}
}

func TestCountOccurrences(t *testing.T) {
	e := schedule.NewExpander()

	cases := []struct {
		name     string
		item     domain.RecurringItem
		from, to time.Time
		want     int
	}{
		{
			name: "weekly inside a month",
			item: item(domain.FreqWeekly, 1, day(2025, time.January, 6)),
			from: day(2025, time.January, 1), to: day(2025, time.January, 31),
			want: 4, // Jan 6, 13, 20, 27
		},
		{
			name: "fortnightly",
			item: item(domain.FreqWeekly, 2, day(2025, time.January, 6)),
			from: day(2025, time.January, 1), to: day(2025, time.January, 31),
			want: 2, // Jan 6, 20
		},
		{
			name: "monthly on the 15th, semi-monthly window misses it",
			item: item(domain.FreqMonthly, 1, day(2024, time.June, 15)),
			from: day(2025, time.January, 31), to: day(2025, time.February, 14),
			want: 0,
		},
		{
			name: "monthly on the 15th, window hits it",
			item: item(domain.FreqMonthly, 1, day(2024, time.June, 15)),
			from: day(2025, time.February, 15), to: day(2025, time.February, 27),
			want: 1,
		},
		{
			name: "monthly on the 31st clamps into February",
			item: item(domain.FreqMonthly, 1, day(2025, time.January, 31)),
			from: day(2025, time.February, 1), to: day(2025, time.February, 28),
			want: 1, // Feb 28
		},
		{
			name: "monthly clamp does not drift after short months",
			item: item(domain.FreqMonthly, 1, day(2025, time.January, 31)),
			from: day(2025, time.March, 1), to: day(2025, time.March, 31),
			want: 1, // back on Mar 31, not Mar 28
		},
		{
			name: "daily over a fortnight",
			item: item(domain.FreqDaily, 1, day(2024, time.December, 1)),
			from: day(2025, time.January, 15), to: day(2025, time.January, 28),
			want: 14,
		},
		{
			name: "yearly",
			item: item(domain.FreqYearly, 1, day(2023, time.March, 10)),
			from: day(2025, time.March, 1), to: day(2025, time.March, 31),
			want: 1,
		},
		{
			name: "starts after the window",
			item: item(domain.FreqDaily, 1, day(2025, time.June, 1)),
			from: day(2025, time.January, 1), to: day(2025, time.January, 31),
			want: 0,
		},
		{
			name: "no start date",
			item: item(domain.FreqMonthly, 1, time.Time{}),
			from: day(2025, time.January, 1), to: day(2025, time.January, 31),
			want: 0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, e.CountOccurrences(tc.item, tc.from, tc.to))
		})
	}
}

func TestCountOccurrences_InclusiveBounds(t *testing.T) {
	e := schedule.NewExpander()
	it := item(domain.FreqMonthly, 1, day(2025, time.January, 15))

	// Window edges are inclusive on both ends.
	assert.Equal(t, 1, e.CountOccurrences(it, day(2025, time.January, 15), day(2025, time.January, 15)))
	assert.Equal(t, 0, e.CountOccurrences(it, day(2025, time.January, 16), day(2025, time.February, 14)))
}
