package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/budget-engine-go/internal/domain"
)

// recurringExpected sums expected recurring amounts per category for the
// period: for each active item whose account is among the budget's included
// accounts and whose category is set, occurrences inside the period window
// are counted and multiplied by the item amount. Items failing any filter
// contribute nothing. The figure is informational only and never feeds into
// a category's available balance.
func (s *ViewService) recurringExpected(ctx context.Context, workspaceID string, accountIDs []string, p domain.PeriodRange) (map[string]decimal.Decimal, error) {
	items, err := s.store.ListActiveRecurringItems(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	included := make(map[string]bool, len(accountIDs))
	for _, id := range accountIDs {
		included[id] = true
	}

	totals := make(map[string]decimal.Decimal)
	for _, item := range items {
		if !item.IsActive() || item.CategoryID == "" || !included[item.AccountID] {
			continue
		}
		n := s.occurrences.CountOccurrences(item, p.Start, p.End)
		if n == 0 {
			continue
		}
		totals[item.CategoryID] = totals[item.CategoryID].Add(item.Amount.Mul(decimal.NewFromInt(int64(n))))
	}
	return totals, nil
}
