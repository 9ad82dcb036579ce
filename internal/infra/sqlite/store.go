// Package sqlite implements the engine's read-only store port on an
// embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/ledgerline/budget-engine-go/internal/domain"
)

var tracer = otel.Tracer("sqlite")

const (
	dateLayout = "2006-01-02"
	tsLayout   = "2006-01-02 15:04:05.000"
)

// Store is a BudgetStore backed by SQLite.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// DB exposes the underlying handle for seeding and tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports backend health for the readiness endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) GetBudget(ctx context.Context, budgetID string) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Store.GetBudget")
	defer span.End()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, workspace_id, name, recurrence_mode,
		       COALESCE(anchor_date, ''), COALESCE(interval_days, 0),
		       COALESCE(anchor_day_1, 0), COALESCE(anchor_day_2, 0)
		FROM budgets WHERE id = ?`, budgetID)

	var (
		b          domain.Budget
		mode       string
		anchorDate string
		interval   int
		day1, day2 int
	)
	if err := row.Scan(&b.ID, &b.WorkspaceID, &b.Name, &mode, &anchorDate, &interval, &day1, &day2); err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.ErrNotFound{Resource: "budget", ID: budgetID}
		}
		return nil, err
	}

	switch mode {
	case "fixed_interval":
		anchor, err := time.ParseInLocation(dateLayout, anchorDate, time.UTC)
		if err != nil {
			return nil, &domain.ErrConfiguration{Reason: "unparseable anchor date: " + anchorDate}
		}
		b.Recurrence = domain.NewFixedIntervalRecurrence(anchor, interval)
	case "anchor_in_month":
		b.Recurrence = domain.NewAnchorInMonthRecurrence(day1, day2)
	default:
		// left unconfigured; the service surfaces ErrPeriodNotConfigured
	}
	return &b, nil
}

func (s *Store) ListCategories(ctx context.Context, workspaceID string) ([]domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Store.ListCategories")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, workspace_id, parent_id, name, display_order, is_income, exclude_from_budget
		FROM categories WHERE workspace_id = ?
		ORDER BY display_order ASC, id ASC`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.WorkspaceID, &c.ParentID, &c.Name, &c.DisplayOrder, &c.IsIncome, &c.ExcludeFromBudget); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) ListEnteredAmounts(ctx context.Context, budgetID string, periodStart time.Time) (map[string]decimal.Decimal, error) {
	ctx, span := tracer.Start(ctx, "Store.ListEnteredAmounts")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id, amount FROM entered_amounts
		WHERE budget_id = ? AND period_start = ?`,
		budgetID, periodStart.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var categoryID, amount string
		if err := rows.Scan(&categoryID, &amount); err != nil {
			return nil, err
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("entered amount for category %s: %w", categoryID, err)
		}
		out[categoryID] = d
	}
	return out, rows.Err()
}

func (s *Store) GetEnteredAmount(ctx context.Context, budgetID, categoryID string, periodStart time.Time) (decimal.Decimal, bool, error) {
	ctx, span := tracer.Start(ctx, "Store.GetEnteredAmount")
	defer span.End()

	var amount string
	err := s.db.QueryRowContext(ctx, `
		SELECT amount FROM entered_amounts
		WHERE budget_id = ? AND category_id = ? AND period_start = ?`,
		budgetID, categoryID, periodStart.Format(dateLayout)).Scan(&amount)
	if err == sql.ErrNoRows {
		// Absence of historical data is expected, not an error.
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("entered amount for category %s: %w", categoryID, err)
	}
	return d, true, nil
}

func (s *Store) ListRolloverPolicies(ctx context.Context, budgetID string) (map[string]domain.RolloverPolicy, error) {
	ctx, span := tracer.Start(ctx, "Store.ListRolloverPolicies")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id, policy FROM rollover_policies WHERE budget_id = ?`, budgetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]domain.RolloverPolicy)
	for rows.Next() {
		var categoryID, policy string
		if err := rows.Scan(&categoryID, &policy); err != nil {
			return nil, err
		}
		out[categoryID] = domain.ParseRolloverPolicy(policy)
	}
	return out, rows.Err()
}

// SumActivity sums the signed transaction amounts for the category inside
// [start 00:00:00, end 23:59:59.999]. Summation happens in Go on decimals;
// SQLite's SUM would coerce the stored strings into floats.
func (s *Store) SumActivity(ctx context.Context, budgetID, categoryID string, start, end time.Time) (decimal.Decimal, error) {
	ctx, span := tracer.Start(ctx, "Store.SumActivity")
	defer span.End()

	windowStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	windowEnd := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 999000000, time.UTC)

	rows, err := s.db.QueryContext(ctx, `
		SELECT amount FROM transactions
		WHERE budget_id = ? AND category_id = ? AND posted_at >= ? AND posted_at <= ?`,
		budgetID, categoryID, windowStart.Format(tsLayout), windowEnd.Format(tsLayout))
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	sum := decimal.Zero
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, err
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return decimal.Zero, fmt.Errorf("transaction amount: %w", err)
		}
		sum = sum.Add(d)
	}
	return sum, rows.Err()
}

func (s *Store) ListIncludedAccountIDs(ctx context.Context, budgetID string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "Store.ListIncludedAccountIDs")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `
		SELECT account_id FROM budget_accounts WHERE budget_id = ? ORDER BY account_id`, budgetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *Store) SumAccountBalances(ctx context.Context, accountIDs []string) (decimal.Decimal, error) {
	ctx, span := tracer.Start(ctx, "Store.SumAccountBalances")
	defer span.End()

	sum := decimal.Zero
	if len(accountIDs) == 0 {
		return sum, nil
	}

	query := `SELECT balance FROM accounts WHERE id IN (?` +
		strings.Repeat(",?", len(accountIDs)-1) + `)`
	args := make([]any, len(accountIDs))
	for i, id := range accountIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	for rows.Next() {
		var balance string
		if err := rows.Scan(&balance); err != nil {
			return decimal.Zero, err
		}
		d, err := decimal.NewFromString(balance)
		if err != nil {
			return decimal.Zero, fmt.Errorf("account balance: %w", err)
		}
		sum = sum.Add(d)
	}
	return sum, rows.Err()
}

func (s *Store) ListActiveRecurringItems(ctx context.Context, workspaceID string) ([]domain.RecurringItem, error) {
	ctx, span := tracer.Start(ctx, "Store.ListActiveRecurringItems")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, workspace_id, account_id, category_id, name, amount, status, frequency, interval, starts_on
		FROM recurring_items WHERE workspace_id = ? AND status = 'active'`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RecurringItem
	for rows.Next() {
		var (
			item     domain.RecurringItem
			amount   string
			freq     string
			startsOn string
		)
		if err := rows.Scan(&item.ID, &item.WorkspaceID, &item.AccountID, &item.CategoryID,
			&item.Name, &amount, &item.Status, &freq, &item.Schedule.Interval, &startsOn); err != nil {
			return nil, err
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("recurring item %s amount: %w", item.ID, err)
		}
		item.Amount = d
		item.Schedule.Frequency = domain.ScheduleFrequency(freq)
		start, err := time.ParseInLocation(dateLayout, startsOn, time.UTC)
		if err != nil {
			s.logger.Warn("recurring item has unparseable start date, skipping",
				zap.String("item_id", item.ID), zap.String("starts_on", startsOn))
			continue
		}
		item.Schedule.StartsOn = start
		out = append(out, item)
	}
	return out, rows.Err()
}
