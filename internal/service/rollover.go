package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/budget-engine-go/internal/domain"
	"github.com/ledgerline/budget-engine-go/internal/period"
	"github.com/ledgerline/budget-engine-go/internal/port"
)

// MaxRolloverDepth bounds the recursive lookback through prior periods.
// Rollover is defined against the previous period's entered data, which may
// itself roll over from the period before; a budget with no entry history
// would otherwise recurse indefinitely back through calendar time.
const MaxRolloverDepth = 24

// rolloverResolver computes carried-forward balances for one view build.
// It is request-scoped: the memo map keeps repeated lookups for the same
// (category, period) pair from issuing redundant store reads, and is thrown
// away with the resolver when the build finishes.
type rolloverResolver struct {
	store    port.BudgetStore
	cfg      domain.RecurrenceConfig
	budgetID string
	maxDepth int

	memo map[string]decimal.Decimal
}

func newRolloverResolver(store port.BudgetStore, cfg domain.RecurrenceConfig, budgetID string, maxDepth int) *rolloverResolver {
	return &rolloverResolver{
		store:    store,
		cfg:      cfg,
		budgetID: budgetID,
		maxDepth: maxDepth,
		memo:     make(map[string]decimal.Decimal),
	}
}

// Resolve returns the balance carried into current for the category under
// its policy. Pooled categories never carry into themselves: their history
// feeds the workspace pool instead (see PoolContribution).
func (r *rolloverResolver) Resolve(ctx context.Context, categoryID string, policy domain.RolloverPolicy, current domain.PeriodRange, depth int) (decimal.Decimal, error) {
	switch policy {
	case domain.RolloverSameCategory:
		return r.carryForward(ctx, categoryID, current, depth)
	default:
		// none, available_pool, or anything unrecognized
		return decimal.Zero, nil
	}
}

// PoolContribution returns what the category feeds into the available pool
// for the current period: the previous period's available balance, computed
// with the same recursive formula as same-category carry-forward. The
// category's own rolledOver stays 0, but its historical chain is still
// walked as if it carried within itself — that asymmetry is deliberate.
func (r *rolloverResolver) PoolContribution(ctx context.Context, categoryID string, current domain.PeriodRange) (decimal.Decimal, error) {
	return r.carryForward(ctx, categoryID, current, 0)
}

// carryForward computes prevExpected + prevRolledOver + prevActivity for the
// period before current, recursing into prevRolledOver with an explicit
// depth counter. Hitting the cap or finding no entered amount both yield
// zero; absence of history is expected, not an error.
func (r *rolloverResolver) carryForward(ctx context.Context, categoryID string, current domain.PeriodRange, depth int) (decimal.Decimal, error) {
	if depth >= r.maxDepth {
		return decimal.Zero, nil
	}

	prev := period.Previous(r.cfg, current)
	key := memoKey(categoryID, prev.Start)
	if v, ok := r.memo[key]; ok {
		return v, nil
	}

	expected, _, err := r.store.GetEnteredAmount(ctx, r.budgetID, categoryID, prev.Start)
	if err != nil {
		return decimal.Zero, err
	}

	rolled, err := r.carryForward(ctx, categoryID, prev, depth+1)
	if err != nil {
		return decimal.Zero, err
	}

	activity, err := r.store.SumActivity(ctx, r.budgetID, categoryID, prev.Start, prev.End)
	if err != nil {
		return decimal.Zero, err
	}

	available := expected.Add(rolled).Add(activity)
	r.memo[key] = available
	return available, nil
}

func memoKey(categoryID string, periodStart time.Time) string {
	return fmt.Sprintf("%s@%s", categoryID, periodStart.Format("2006-01-02"))
}
