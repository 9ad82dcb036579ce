package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/budget-engine-go/internal/domain"
)

// --- Mocks ---

// mockRolloverStore serves entered amounts and activity keyed by
// "categoryID@period-start". Unknown keys read as zero, matching the
// absent-data semantics of the real store.
type mockRolloverStore struct {
	entered  map[string]decimal.Decimal
	activity map[string]decimal.Decimal

	enteredCalls int
}

func rkey(categoryID string, start time.Time) string {
	return categoryID + "@" + start.Format("2006-01-02")
}

func (m *mockRolloverStore) GetEnteredAmount(_ context.Context, _, categoryID string, periodStart time.Time) (decimal.Decimal, bool, error) {
	m.enteredCalls++
	v, ok := m.entered[rkey(categoryID, periodStart)]
	if !ok {
		return decimal.Zero, false, nil
	}
	return v, true, nil
}

func (m *mockRolloverStore) SumActivity(_ context.Context, _, categoryID string, start, _ time.Time) (decimal.Decimal, error) {
	return m.activity[rkey(categoryID, start)], nil
}

func (m *mockRolloverStore) GetBudget(context.Context, string) (*domain.Budget, error) {
	return nil, nil
}
func (m *mockRolloverStore) ListCategories(context.Context, string) ([]domain.Category, error) {
	return nil, nil
}
func (m *mockRolloverStore) ListEnteredAmounts(context.Context, string, time.Time) (map[string]decimal.Decimal, error) {
	return nil, nil
}
func (m *mockRolloverStore) ListRolloverPolicies(context.Context, string) (map[string]domain.RolloverPolicy, error) {
	return nil, nil
}
func (m *mockRolloverStore) ListIncludedAccountIDs(context.Context, string) ([]string, error) {
	return nil, nil
}
func (m *mockRolloverStore) SumAccountBalances(context.Context, []string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}
func (m *mockRolloverStore) ListActiveRecurringItems(context.Context, string) ([]domain.RecurringItem, error) {
	return nil, nil
}

// --- Helpers ---

func monthlyConfig(t *testing.T) domain.RecurrenceConfig {
	t.Helper()
	return domain.NewAnchorInMonthRecurrence(1, 0)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// --- Tests ---

func TestResolve_SameCategorySingleStep(t *testing.T) {
	store := &mockRolloverStore{
		entered:  map[string]decimal.Decimal{rkey("c-1", day(2025, time.February, 1)): dec("100")},
		activity: map[string]decimal.Decimal{rkey("c-1", day(2025, time.February, 1)): dec("-40")},
	}
	r := newRolloverResolver(store, monthlyConfig(t), "b-1", MaxRolloverDepth)

	current := domain.PeriodRange{Start: day(2025, time.March, 1), End: day(2025, time.March, 31)}
	got, err := r.Resolve(context.Background(), "c-1", domain.RolloverSameCategory, current, 0)

	require.NoError(t, err)
	assert.True(t, dec("60").Equal(got), "got %s", got)
}

func TestResolve_ChainsAcrossPeriods(t *testing.T) {
	// January: 50 entered, -20 spent -> 30 carries into February.
	// February: 100 entered, 30 carried, -60 spent -> 70 carries into March.
	store := &mockRolloverStore{
		entered: map[string]decimal.Decimal{
			rkey("c-1", day(2025, time.January, 1)):  dec("50"),
			rkey("c-1", day(2025, time.February, 1)): dec("100"),
		},
		activity: map[string]decimal.Decimal{
			rkey("c-1", day(2025, time.January, 1)):  dec("-20"),
			rkey("c-1", day(2025, time.February, 1)): dec("-60"),
		},
	}
	r := newRolloverResolver(store, monthlyConfig(t), "b-1", MaxRolloverDepth)

	current := domain.PeriodRange{Start: day(2025, time.March, 1), End: day(2025, time.March, 31)}
	got, err := r.Resolve(context.Background(), "c-1", domain.RolloverSameCategory, current, 0)

	require.NoError(t, err)
	assert.True(t, dec("70").Equal(got), "got %s", got)
}

func TestResolve_NegativeCarry(t *testing.T) {
	store := &mockRolloverStore{
		entered:  map[string]decimal.Decimal{rkey("c-1", day(2025, time.February, 1)): dec("30")},
		activity: map[string]decimal.Decimal{rkey("c-1", day(2025, time.February, 1)): dec("-75.50")},
	}
	r := newRolloverResolver(store, monthlyConfig(t), "b-1", MaxRolloverDepth)

	current := domain.PeriodRange{Start: day(2025, time.March, 1), End: day(2025, time.March, 31)}
	got, err := r.Resolve(context.Background(), "c-1", domain.RolloverSameCategory, current, 0)

	require.NoError(t, err)
	assert.True(t, dec("-45.50").Equal(got), "got %s", got)
}

func TestResolve_DepthCapTerminates(t *testing.T) {
	// Every prior month has 10 entered; with the cap at 3 only three periods
	// are walked before the recursion bottoms out at zero.
	store := &mockRolloverStore{entered: map[string]decimal.Decimal{}}
	for i := 0; i < 48; i++ {
		start := day(2025, time.March, 1).AddDate(0, -i-1, 0)
		store.entered[rkey("c-1", start)] = dec("10")
	}
	r := newRolloverResolver(store, monthlyConfig(t), "b-1", 3)

	current := domain.PeriodRange{Start: day(2025, time.March, 1), End: day(2025, time.March, 31)}
	got, err := r.Resolve(context.Background(), "c-1", domain.RolloverSameCategory, current, 0)

	require.NoError(t, err)
	assert.True(t, dec("30").Equal(got), "got %s", got)
}

func TestResolve_NoPolicyYieldsZero(t *testing.T) {
	store := &mockRolloverStore{
		entered: map[string]decimal.Decimal{rkey("c-1", day(2025, time.February, 1)): dec("100")},
	}
	r := newRolloverResolver(store, monthlyConfig(t), "b-1", MaxRolloverDepth)

	current := domain.PeriodRange{Start: day(2025, time.March, 1), End: day(2025, time.March, 31)}

	for _, policy := range []domain.RolloverPolicy{domain.RolloverNone, domain.RolloverAvailablePool, "bogus"} {
		got, err := r.Resolve(context.Background(), "c-1", policy, current, 0)
		require.NoError(t, err)
		assert.True(t, got.IsZero(), "policy %s: got %s", policy, got)
	}
}

func TestPoolContribution_WalksOwnHistory(t *testing.T) {
	// A pooled category never carries into itself, but its contribution to
	// the pool is its previous available, computed with the full recursive
	// formula over its own history.
	store := &mockRolloverStore{
		entered: map[string]decimal.Decimal{
			rkey("c-1", day(2025, time.January, 1)):  dec("40"),
			rkey("c-1", day(2025, time.February, 1)): dec("40"),
		},
		activity: map[string]decimal.Decimal{
			rkey("c-1", day(2025, time.February, 1)): dec("-10"),
		},
	}
	r := newRolloverResolver(store, monthlyConfig(t), "b-1", MaxRolloverDepth)

	current := domain.PeriodRange{Start: day(2025, time.March, 1), End: day(2025, time.March, 31)}
	got, err := r.PoolContribution(context.Background(), "c-1", current)

	require.NoError(t, err)
	// 40 (Feb entered) + 40 (carried from Jan) - 10 (Feb activity) = 70
	assert.True(t, dec("70").Equal(got), "got %s", got)
}

func TestResolve_MemoizesRepeatedLookups(t *testing.T) {
	store := &mockRolloverStore{
		entered: map[string]decimal.Decimal{rkey("c-1", day(2025, time.February, 1)): dec("25")},
	}
	r := newRolloverResolver(store, monthlyConfig(t), "b-1", 2)

	current := domain.PeriodRange{Start: day(2025, time.March, 1), End: day(2025, time.March, 31)}

	first, err := r.Resolve(context.Background(), "c-1", domain.RolloverSameCategory, current, 0)
	require.NoError(t, err)
	callsAfterFirst := store.enteredCalls

	second, err := r.Resolve(context.Background(), "c-1", domain.RolloverSameCategory, current, 0)
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.Equal(t, callsAfterFirst, store.enteredCalls, "second resolve should be memoized")
}
