// Package domain defines the core business entities for the budget engine.
// These models are independent of persistence and transport and represent
// the canonical data structures used throughout the service.
package domain

import "time"

// ============================================================
// Budget / Recurrence
// ============================================================

// RecurrenceMode discriminates the two mutually exclusive recurrence shapes
// a budget can be configured with.
type RecurrenceMode int

const (
	// RecurrenceUnset means the budget has no period scheme configured yet.
	RecurrenceUnset RecurrenceMode = iota
	// RecurrenceFixedInterval produces consecutive fixed-length periods
	// anchored at a calendar date.
	RecurrenceFixedInterval
	// RecurrenceAnchorInMonth produces monthly (one anchor day) or
	// semi-monthly (two anchor days) periods.
	RecurrenceAnchorInMonth
)

// FixedIntervalRecurrence configures consecutive IntervalDays-long periods
// starting at AnchorDate.
type FixedIntervalRecurrence struct {
	AnchorDate   time.Time `json:"anchor_date"`
	IntervalDays int       `json:"interval_days"`
}

// AnchorInMonthRecurrence configures period boundaries on fixed days of the
// month. AnchorDay2 == 0 means single-anchor (monthly periods); a non-zero
// AnchorDay2 alternates boundaries between the two days (semi-monthly).
// Anchor days beyond a short month's length clamp to that month's last day.
type AnchorInMonthRecurrence struct {
	AnchorDay1 int `json:"anchor_day_1"`
	AnchorDay2 int `json:"anchor_day_2,omitempty"`
}

// RecurrenceConfig is a tagged union: exactly one payload matches Mode.
// Construct through NewFixedIntervalRecurrence / NewAnchorInMonthRecurrence
// so the "exactly one mode" invariant holds by construction.
type RecurrenceConfig struct {
	Mode          RecurrenceMode           `json:"mode"`
	FixedInterval *FixedIntervalRecurrence `json:"fixed_interval,omitempty"`
	AnchorInMonth *AnchorInMonthRecurrence `json:"anchor_in_month,omitempty"`
}

// NewFixedIntervalRecurrence builds a fixed-interval config.
func NewFixedIntervalRecurrence(anchorDate time.Time, intervalDays int) RecurrenceConfig {
	return RecurrenceConfig{
		Mode:          RecurrenceFixedInterval,
		FixedInterval: &FixedIntervalRecurrence{AnchorDate: anchorDate, IntervalDays: intervalDays},
	}
}

// NewAnchorInMonthRecurrence builds an anchor-in-month config.
// Pass day2 == 0 for monthly periods.
func NewAnchorInMonthRecurrence(day1, day2 int) RecurrenceConfig {
	return RecurrenceConfig{
		Mode:          RecurrenceAnchorInMonth,
		AnchorInMonth: &AnchorInMonthRecurrence{AnchorDay1: day1, AnchorDay2: day2},
	}
}

// IsConfigured reports whether any recurrence mode is set.
func (c RecurrenceConfig) IsConfigured() bool {
	return c.Mode != RecurrenceUnset
}

// Validate checks the config payload against its mode.
func (c RecurrenceConfig) Validate() error {
	switch c.Mode {
	case RecurrenceFixedInterval:
		if c.FixedInterval == nil {
			return &ErrConfiguration{Reason: "fixed-interval mode without payload"}
		}
		if c.AnchorInMonth != nil {
			return &ErrConfiguration{Reason: "both recurrence modes configured"}
		}
		if c.FixedInterval.AnchorDate.IsZero() {
			return &ErrConfiguration{Reason: "fixed-interval anchor date is required"}
		}
		if c.FixedInterval.IntervalDays < 1 {
			return &ErrConfiguration{Reason: "interval days must be >= 1"}
		}
	case RecurrenceAnchorInMonth:
		if c.AnchorInMonth == nil {
			return &ErrConfiguration{Reason: "anchor-in-month mode without payload"}
		}
		if c.FixedInterval != nil {
			return &ErrConfiguration{Reason: "both recurrence modes configured"}
		}
		a := c.AnchorInMonth
		if a.AnchorDay1 < 1 || a.AnchorDay1 > 31 {
			return &ErrConfiguration{Reason: "anchor day 1 outside 1-31"}
		}
		if a.AnchorDay2 != 0 {
			if a.AnchorDay2 < 1 || a.AnchorDay2 > 31 {
				return &ErrConfiguration{Reason: "anchor day 2 outside 1-31"}
			}
			if a.AnchorDay2 == a.AnchorDay1 {
				return &ErrConfiguration{Reason: "anchor days must differ"}
			}
		}
	default:
		return &ErrConfiguration{Reason: "no recurrence mode configured"}
	}
	return nil
}

// Budget ties a workspace's categories, accounts and entered amounts to a
// recurrence scheme.
type Budget struct {
	ID          string           `json:"id"`
	WorkspaceID string           `json:"workspace_id"`
	Name        string           `json:"name"`
	Recurrence  RecurrenceConfig `json:"recurrence"`
}

// ============================================================
// Period
// ============================================================

// PeriodRange is a date range inclusive on both ends. Start and End are
// normalized to midnight UTC; periods produced under the same config are
// non-overlapping and contiguous with their neighbors.
type PeriodRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether the date (its calendar day) falls in the period.
func (p PeriodRange) Contains(d time.Time) bool {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(p.Start) && !day.After(p.End)
}

// Equal reports whether two ranges cover the same days.
func (p PeriodRange) Equal(o PeriodRange) bool {
	return p.Start.Equal(o.Start) && p.End.Equal(o.End)
}

// Days returns the period length in days.
func (p PeriodRange) Days() int {
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}
