// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/budget-engine-go/internal/domain"
)

// BudgetStore defines the read-only data access the engine needs. The engine
// never writes; every method is a side-effect-free query. Callers are
// expected to run a whole view build against a consistent snapshot so
// concurrent writes cannot mix pre- and post-write data into one view.
type BudgetStore interface {
	// Budgets
	GetBudget(ctx context.Context, budgetID string) (*domain.Budget, error)

	// Categories (all non-deleted categories of the workspace, including
	// excluded ones; the engine filters ExcludeFromBudget itself)
	ListCategories(ctx context.Context, workspaceID string) ([]domain.Category, error)

	// Entered amounts, keyed on the exact period start date
	ListEnteredAmounts(ctx context.Context, budgetID string, periodStart time.Time) (map[string]decimal.Decimal, error)
	GetEnteredAmount(ctx context.Context, budgetID, categoryID string, periodStart time.Time) (decimal.Decimal, bool, error)

	// Rollover policies for the budget, keyed by category id
	ListRolloverPolicies(ctx context.Context, budgetID string) (map[string]domain.RolloverPolicy, error)

	// Signed sum of transaction amounts posted against the category within
	// [start 00:00:00, end 23:59:59.999], scoped to the budget's accounts
	SumActivity(ctx context.Context, budgetID, categoryID string, start, end time.Time) (decimal.Decimal, error)

	// Accounts linked to the budget
	ListIncludedAccountIDs(ctx context.Context, budgetID string) ([]string, error)
	SumAccountBalances(ctx context.Context, accountIDs []string) (decimal.Decimal, error)

	// Recurring items of the workspace, active ones only
	ListActiveRecurringItems(ctx context.Context, workspaceID string) ([]domain.RecurringItem, error)
}

// OccurrenceCounter expands a recurring item's schedule and counts the
// occurrences falling in [from, to], both inclusive. Consumed as a black box
// by the recurring-expected aggregation.
type OccurrenceCounter interface {
	CountOccurrences(item domain.RecurringItem, from, to time.Time) int
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
