package integration_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ledgerline/budget-engine-go/internal/domain"
	"github.com/ledgerline/budget-engine-go/internal/handler"
	"github.com/ledgerline/budget-engine-go/internal/infra/cache"
	"github.com/ledgerline/budget-engine-go/internal/infra/observability"
	"github.com/ledgerline/budget-engine-go/internal/infra/schedule"
	"github.com/ledgerline/budget-engine-go/internal/infra/sqlite"
	"github.com/ledgerline/budget-engine-go/internal/service"
)

// newEngine builds the full stack over a seeded SQLite database: store,
// view service, router. Mirrors the wiring in cmd/budget-engine.
func newEngine(t *testing.T) (http.Handler, *sqlite.Store) {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "engine.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	metrics := observability.NewMetrics()
	svc := service.NewViewService(
		store,
		schedule.NewExpander(),
		cache.New[*domain.PeriodSummary](time.Minute),
		metrics,
		zap.NewNop(),
	)
	return handler.NewRouter(svc, store, metrics, zap.NewNop()), store
}

func seed(t *testing.T, store *sqlite.Store, stmts []string) {
	t.Helper()
	for _, stmt := range stmts {
		_, err := store.DB().Exec(stmt)
		require.NoError(t, err)
	}
}

func TestIntegration_PeriodView(t *testing.T) {
	router, store := newEngine(t)

	seed(t, store, []string{
		`INSERT INTO budgets (id, workspace_id, name, recurrence_mode, anchor_day_1)
			VALUES ('b1', 'ws1', 'Household', 'anchor_in_month', 1)`,

		`INSERT INTO categories (id, workspace_id, parent_id, name, display_order, is_income) VALUES
			('inc', 'ws1', '', 'Salary', 0, 1),
			('food', 'ws1', '', 'Food', 1, 0),
			('fruit', 'ws1', 'food', 'Fruit', 0, 0),
			('rent', 'ws1', '', 'Rent', 2, 0),
			('misc', 'ws1', '', 'Everything Else', 3, 0)`,

		`INSERT INTO entered_amounts (budget_id, category_id, period_start, amount) VALUES
			('b1', 'inc', '2025-03-01', '3000'),
			('b1', 'fruit', '2025-03-01', '100'),
			('b1', 'rent', '2025-03-01', '1200'),
			('b1', 'misc', '2025-02-01', '50')`,

		`INSERT INTO rollover_policies (budget_id, category_id, policy)
			VALUES ('b1', 'misc', 'available_pool')`,

		`INSERT INTO transactions (id, budget_id, category_id, posted_at, amount) VALUES
			('t1', 'b1', 'inc', '2025-03-05 10:00:00.000', '2900'),
			('t2', 'b1', 'fruit', '2025-03-08 18:12:00.000', '-40'),
			('t3', 'b1', 'rent', '2025-03-01 09:00:00.000', '-1200'),
			('t4', 'b1', 'misc', '2025-03-10 11:00:00.000', '-15'),
			('t5', 'b1', 'misc', '2025-02-20 11:00:00.000', '-20')`,

		`INSERT INTO accounts (id, workspace_id, name, balance)
			VALUES ('a1', 'ws1', 'Checking', '500.25'), ('a2', 'ws1', 'Savings', '1000')`,
		`INSERT INTO budget_accounts (budget_id, account_id) VALUES ('b1', 'a1'), ('b1', 'a2')`,

		`INSERT INTO recurring_items (id, workspace_id, account_id, category_id, name, amount, status, frequency, interval, starts_on)
			VALUES ('r1', 'ws1', 'a1', 'rent', 'Rent payment', '-1200', 'active', 'monthly', 1, '2024-06-01')`,
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/budgets/b1/view?date=2025-03-15", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var summary domain.PeriodSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))

	assert.Equal(t, "b1", summary.BudgetID)
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), summary.Period.Start)
	assert.Equal(t, time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC), summary.Period.End)

	eq := func(want string, got decimal.Decimal, label string) {
		assert.True(t, decimal.RequireFromString(want).Equal(got), "%s: want %s got %s", label, want, got)
	}

	// Inflow: 3000 expected, 2900 received.
	require.Len(t, summary.Inflow.Categories, 1)
	eq("3000", summary.Inflow.Expected, "inflow expected")
	eq("100", summary.Inflow.Available, "inflow available")

	// Outflow roots ordered by display order: food, rent, misc.
	require.Len(t, summary.Outflow.Categories, 3)
	food := summary.Outflow.Categories[0]
	assert.Equal(t, "food", food.Category.ID)
	require.Len(t, food.Children, 1)
	eq("100", food.Facts.Expected, "food expected")
	eq("60", food.Facts.Available, "food available")

	rent := summary.Outflow.Categories[1]
	assert.Equal(t, "rent", rent.Category.ID)
	eq("0", rent.Facts.Available, "rent available")
	// One rent payment scheduled inside March.
	eq("-1200", rent.Facts.RecurringExpected, "rent recurring expected")

	misc := summary.Outflow.Categories[2]
	assert.Equal(t, "misc", misc.Category.ID)
	assert.True(t, misc.Facts.RolledOver.IsZero(), "pooled categories do not self-rollover")

	// Pool = February's misc available: 50 - 20 = 30.
	eq("30", summary.AvailablePool, "available pool")
	eq("3030", summary.Budgetable, "budgetable")
	eq("1300", summary.TotalBudgeted, "total budgeted")
	eq("1730", summary.LeftToBudget, "left to budget")
	eq("30", summary.TotalRolledOver, "total rolled over")
	eq("1500.25", summary.NetTotalAvailable, "net total available")
}

func TestIntegration_PeriodResolution(t *testing.T) {
	router, store := newEngine(t)

	seed(t, store, []string{
		`INSERT INTO budgets (id, workspace_id, name, recurrence_mode, anchor_date, interval_days)
			VALUES ('b1', 'ws1', 'Biweekly', 'fixed_interval', '2025-01-01', 14)`,
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/budgets/b1/period?date=2025-01-20", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var p domain.PeriodRange
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, time.Date(2025, time.January, 28, 0, 0, 0, 0, time.UTC), p.End)
}

func TestIntegration_UnconfiguredBudgetConflicts(t *testing.T) {
	router, store := newEngine(t)

	seed(t, store, []string{
		`INSERT INTO budgets (id, workspace_id, name) VALUES ('b1', 'ws1', 'Bare')`,
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/budgets/b1/view?date=2025-03-15", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestIntegration_MissingBudgetNotFound(t *testing.T) {
	router, _ := newEngine(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/budgets/ghost/view", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
