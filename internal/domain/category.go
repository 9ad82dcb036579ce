package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Categories
// ============================================================

// Category is a budgeting category. Categories form a two-level tree via
// ParentID; IsIncome flips the sign convention used for availability.
type Category struct {
	ID                string `json:"id"`
	WorkspaceID       string `json:"workspace_id"`
	ParentID          string `json:"parent_id,omitempty"`
	Name              string `json:"name"`
	DisplayOrder      int    `json:"display_order"`
	IsIncome          bool   `json:"is_income"`
	ExcludeFromBudget bool   `json:"exclude_from_budget"`
}

// RolloverPolicy controls how a category's unused balance carries between
// periods.
type RolloverPolicy string

const (
	// RolloverNone discards unused balance at period end.
	RolloverNone RolloverPolicy = "none"
	// RolloverSameCategory carries unused balance into the same category
	// next period. Negative balances carry too; there is no floor at zero.
	RolloverSameCategory RolloverPolicy = "same_category"
	// RolloverAvailablePool feeds unused balance into the workspace-level
	// shared pool instead of the category itself.
	RolloverAvailablePool RolloverPolicy = "available_pool"
)

// ParseRolloverPolicy maps a stored policy string to a RolloverPolicy,
// defaulting to RolloverNone for unknown values.
func ParseRolloverPolicy(s string) RolloverPolicy {
	switch RolloverPolicy(s) {
	case RolloverSameCategory:
		return RolloverSameCategory
	case RolloverAvailablePool:
		return RolloverAvailablePool
	default:
		return RolloverNone
	}
}

// CategoryPeriodFacts are the per-category per-period figures the engine
// computes fresh on every request; only the entered Expected amount and the
// rollover policy are durable.
type CategoryPeriodFacts struct {
	Expected          decimal.Decimal `json:"expected"`
	RecurringExpected decimal.Decimal `json:"recurring_expected"`
	Activity          decimal.Decimal `json:"activity"`
	RolledOver        decimal.Decimal `json:"rolled_over"`
	Available         decimal.Decimal `json:"available"`
}

// ZeroFacts returns facts with every figure set to zero. decimal.Decimal's
// zero value marshals fine but explicit zeros keep arithmetic uniform.
func ZeroFacts() CategoryPeriodFacts {
	return CategoryPeriodFacts{
		Expected:          decimal.Zero,
		RecurringExpected: decimal.Zero,
		Activity:          decimal.Zero,
		RolledOver:        decimal.Zero,
		Available:         decimal.Zero,
	}
}

// Add returns the member-wise sum of two facts.
func (f CategoryPeriodFacts) Add(o CategoryPeriodFacts) CategoryPeriodFacts {
	return CategoryPeriodFacts{
		Expected:          f.Expected.Add(o.Expected),
		RecurringExpected: f.RecurringExpected.Add(o.RecurringExpected),
		Activity:          f.Activity.Add(o.Activity),
		RolledOver:        f.RolledOver.Add(o.RolledOver),
		Available:         f.Available.Add(o.Available),
	}
}

// CategoryNode wraps a category and its period facts in the summary tree.
// Parent nodes hold the sum of all descendant facts; their own direct facts
// are zeroed during aggregation.
type CategoryNode struct {
	Category Category            `json:"category"`
	Facts    CategoryPeriodFacts `json:"facts"`
	Children []CategoryNode      `json:"children,omitempty"`
}

// ============================================================
// Accounts / Recurring items
// ============================================================

// Account is the slice of a bank account the engine needs: identity and
// current balance for the net-total-available figure.
type Account struct {
	ID          string          `json:"id"`
	WorkspaceID string          `json:"workspace_id"`
	Name        string          `json:"name"`
	Balance     decimal.Decimal `json:"balance"`
}

// ScheduleFrequency is the recurrence unit of a recurring item.
type ScheduleFrequency string

const (
	FreqDaily   ScheduleFrequency = "daily"
	FreqWeekly  ScheduleFrequency = "weekly"
	FreqMonthly ScheduleFrequency = "monthly"
	FreqYearly  ScheduleFrequency = "yearly"
)

// Schedule describes when a recurring item occurs: every Interval units of
// Frequency, starting at StartsOn. Monthly and yearly schedules clamp the
// start day to short months the same way period anchors do.
type Schedule struct {
	Frequency ScheduleFrequency `json:"frequency"`
	Interval  int               `json:"interval"`
	StartsOn  time.Time         `json:"starts_on"`
}

// RecurringItem is a scheduled expected transaction (salary, rent, ...).
// Items contribute to a category's recurringExpected figure when active,
// categorized, and linked to one of the budget's included accounts.
type RecurringItem struct {
	ID          string          `json:"id"`
	WorkspaceID string          `json:"workspace_id"`
	AccountID   string          `json:"account_id"`
	CategoryID  string          `json:"category_id,omitempty"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	Schedule    Schedule        `json:"schedule"`
}

// IsActive reports whether the item participates in aggregation.
func (r RecurringItem) IsActive() bool {
	return r.Status == "active"
}
