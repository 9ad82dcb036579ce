// Package service provides the business logic layer (use cases).
// ViewService resolves budgeting periods and assembles the hierarchical
// period view: per-category expected/actual amounts, rollover carry-forward,
// the workspace available pool, and the summary scalars.
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ledgerline/budget-engine-go/internal/domain"
	"github.com/ledgerline/budget-engine-go/internal/infra/cache"
	"github.com/ledgerline/budget-engine-go/internal/infra/observability"
	"github.com/ledgerline/budget-engine-go/internal/period"
	"github.com/ledgerline/budget-engine-go/internal/port"
)

var viewTracer = otel.Tracer("service/view")

// ViewService builds period summaries for budgets. The engine itself is
// synchronous and request-scoped; the service only adds a read-through cache
// and singleflight collapsing for identical concurrent builds.
type ViewService struct {
	store       port.BudgetStore
	occurrences port.OccurrenceCounter
	viewCache   *cache.InMemory[*domain.PeriodSummary]
	metrics     *observability.Metrics
	logger      *zap.Logger

	maxRolloverDepth int
	now              func() time.Time

	sf singleflight.Group
}

// NewViewService creates a view service with the default rollover depth cap.
func NewViewService(store port.BudgetStore, occurrences port.OccurrenceCounter, viewCache *cache.InMemory[*domain.PeriodSummary], metrics *observability.Metrics, logger *zap.Logger) *ViewService {
	return &ViewService{
		store:            store,
		occurrences:      occurrences,
		viewCache:        viewCache,
		metrics:          metrics,
		logger:           logger,
		maxRolloverDepth: MaxRolloverDepth,
		now:              time.Now,
	}
}

// SetMaxRolloverDepth overrides the lookback cap. Tests use a small value to
// exercise both the cap-reached and cap-not-reached branches.
func (s *ViewService) SetMaxRolloverDepth(depth int) {
	s.maxRolloverDepth = depth
}

// SetClock overrides the time source used to resolve "today's" period.
func (s *ViewService) SetClock(now func() time.Time) {
	s.now = now
}

// ResolvePeriod returns the period enclosing date under the budget's
// recurrence configuration.
func (s *ViewService) ResolvePeriod(ctx context.Context, budgetID string, date time.Time) (domain.PeriodRange, error) {
	ctx, span := viewTracer.Start(ctx, "ViewService.ResolvePeriod")
	defer span.End()

	cfg, err := s.recurrence(ctx, budgetID)
	if err != nil {
		return domain.PeriodRange{}, err
	}
	return period.Compute(cfg, date), nil
}

// ResolvePeriodByOffset walks offset periods from today's period.
func (s *ViewService) ResolvePeriodByOffset(ctx context.Context, budgetID string, offset int) (domain.PeriodRange, error) {
	ctx, span := viewTracer.Start(ctx, "ViewService.ResolvePeriodByOffset")
	defer span.End()

	cfg, err := s.recurrence(ctx, budgetID)
	if err != nil {
		return domain.PeriodRange{}, err
	}
	return period.At(cfg, s.now(), offset), nil
}

// BuildViewAt builds the period summary for the period enclosing date.
func (s *ViewService) BuildViewAt(ctx context.Context, budgetID string, date time.Time) (*domain.PeriodSummary, error) {
	p, err := s.ResolvePeriod(ctx, budgetID, date)
	if err != nil {
		return nil, err
	}
	return s.BuildView(ctx, budgetID, p)
}

// BuildViewByOffset builds the period summary offset periods from today.
func (s *ViewService) BuildViewByOffset(ctx context.Context, budgetID string, offset int) (*domain.PeriodSummary, error) {
	p, err := s.ResolvePeriodByOffset(ctx, budgetID, offset)
	if err != nil {
		return nil, err
	}
	return s.BuildView(ctx, budgetID, p)
}

// BuildView assembles the full period summary for a resolved period. The
// whole computation reads through the store once per figure; callers wanting
// strict consistency under concurrent writes should hand in a store bound to
// a consistent-read transaction.
func (s *ViewService) BuildView(ctx context.Context, budgetID string, p domain.PeriodRange) (*domain.PeriodSummary, error) {
	ctx, span := viewTracer.Start(ctx, "ViewService.BuildView")
	defer span.End()
	span.SetAttributes(
		attribute.String("budget.id", budgetID),
		attribute.String("period.start", p.Start.Format("2006-01-02")),
	)

	key := viewKey(budgetID, p)
	if s.viewCache != nil {
		if summary, ok := s.viewCache.Get(key); ok {
			s.metrics.IncrCacheHit("view")
			return summary, nil
		}
		s.metrics.IncrCacheMiss("view")
	}

	v, err, _ := s.sf.Do(key, func() (any, error) {
		start := time.Now()
		summary, err := s.buildView(ctx, budgetID, p)
		s.metrics.RecordViewDuration(time.Since(start))
		if err != nil {
			s.metrics.IncrViewBuild("error")
			return nil, err
		}
		s.metrics.IncrViewBuild("success")
		if s.viewCache != nil {
			s.viewCache.Set(key, summary)
		}
		return summary, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.PeriodSummary), nil
}

func (s *ViewService) buildView(ctx context.Context, budgetID string, p domain.PeriodRange) (*domain.PeriodSummary, error) {
	budget, err := s.store.GetBudget(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if !budget.Recurrence.IsConfigured() {
		return nil, &domain.ErrPeriodNotConfigured{BudgetID: budgetID}
	}
	if err := budget.Recurrence.Validate(); err != nil {
		return nil, err
	}

	// Request-scoped snapshots: one load per collection, local lookup maps
	// from here on.
	categories, err := s.store.ListCategories(ctx, budget.WorkspaceID)
	if err != nil {
		return nil, err
	}
	entered, err := s.store.ListEnteredAmounts(ctx, budgetID, p.Start)
	if err != nil {
		return nil, err
	}
	policies, err := s.store.ListRolloverPolicies(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	accountIDs, err := s.store.ListIncludedAccountIDs(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	recurring, err := s.recurringExpected(ctx, budget.WorkspaceID, accountIDs, p)
	if err != nil {
		return nil, err
	}

	resolver := newRolloverResolver(s.store, budget.Recurrence, budgetID, s.maxRolloverDepth)

	included := categories[:0:0]
	for _, c := range categories {
		if !c.ExcludeFromBudget {
			included = append(included, c)
		}
	}

	leaves := make(map[string]domain.CategoryNode, len(included))
	for _, c := range included {
		activity, err := s.store.SumActivity(ctx, budgetID, c.ID, p.Start, p.End)
		if err != nil {
			return nil, err
		}
		policy := policies[c.ID]
		if policy == "" {
			policy = domain.RolloverNone
		}
		rolled, err := resolver.Resolve(ctx, c.ID, policy, p, 0)
		if err != nil {
			return nil, err
		}
		s.metrics.IncrRolloverLookup()

		facts := domain.CategoryPeriodFacts{
			Expected:          entered[c.ID],
			RecurringExpected: recurring[c.ID],
			Activity:          activity,
			RolledOver:        rolled,
		}
		facts.Available = available(c, facts)
		leaves[c.ID] = domain.CategoryNode{Category: c, Facts: facts}
	}

	roots := buildTree(included, leaves)

	var inflowRoots, outflowRoots []domain.CategoryNode
	for _, root := range roots {
		if root.Category.IsIncome {
			inflowRoots = append(inflowRoots, root)
		} else {
			outflowRoots = append(outflowRoots, root)
		}
	}

	pool := decimal.Zero
	for _, c := range included {
		if policies[c.ID] != domain.RolloverAvailablePool {
			continue
		}
		contribution, err := resolver.PoolContribution(ctx, c.ID, p)
		if err != nil {
			return nil, err
		}
		pool = pool.Add(contribution)
	}

	netTotal := decimal.Zero
	if len(accountIDs) > 0 {
		netTotal, err = s.store.SumAccountBalances(ctx, accountIDs)
		if err != nil {
			return nil, err
		}
	}

	inflow := sectionOf(inflowRoots)
	outflow := sectionOf(outflowRoots)

	rolledOver := pool
	for _, root := range roots {
		rolledOver = rolledOver.Add(root.Facts.RolledOver)
	}

	budgetable := inflow.Expected.Add(pool)
	totalBudgeted := outflow.Expected

	summary := &domain.PeriodSummary{
		BudgetID:          budgetID,
		Period:            p,
		Inflow:            inflow,
		Outflow:           outflow,
		AvailablePool:     pool,
		Budgetable:        budgetable,
		TotalBudgeted:     totalBudgeted,
		LeftToBudget:      budgetable.Sub(totalBudgeted),
		NetTotalAvailable: netTotal,
		TotalRolledOver:   rolledOver,
	}

	s.logger.Debug("period view built",
		zap.String("budget_id", budgetID),
		zap.String("period_start", p.Start.Format("2006-01-02")),
		zap.Int("categories", len(included)),
		zap.String("left_to_budget", summary.LeftToBudget.String()),
	)
	return summary, nil
}

func (s *ViewService) recurrence(ctx context.Context, budgetID string) (domain.RecurrenceConfig, error) {
	budget, err := s.store.GetBudget(ctx, budgetID)
	if err != nil {
		return domain.RecurrenceConfig{}, err
	}
	if !budget.Recurrence.IsConfigured() {
		return domain.RecurrenceConfig{}, &domain.ErrPeriodNotConfigured{BudgetID: budgetID}
	}
	if err := budget.Recurrence.Validate(); err != nil {
		return domain.RecurrenceConfig{}, err
	}
	return budget.Recurrence, nil
}

// available computes budget headroom under the category's polarity.
// Transaction amounts are signed (expenses negative, income positive), so
// income subtracts activity while everything else adds it.
func available(c domain.Category, f domain.CategoryPeriodFacts) decimal.Decimal {
	if c.IsIncome {
		return f.Expected.Add(f.RolledOver).Sub(f.Activity)
	}
	return f.Expected.Add(f.RolledOver).Add(f.Activity)
}

// buildTree arranges leaf nodes into the two-level category tree and
// aggregates parents bottom-up. Categories whose ParentID is absent from the
// loaded set become roots. Both root and child ordering follow ascending
// DisplayOrder.
func buildTree(categories []domain.Category, leaves map[string]domain.CategoryNode) []domain.CategoryNode {
	childIDs := make(map[string][]string, len(categories))
	var rootIDs []string
	for _, c := range categories {
		if c.ParentID != "" {
			if _, ok := leaves[c.ParentID]; ok {
				childIDs[c.ParentID] = append(childIDs[c.ParentID], c.ID)
				continue
			}
		}
		rootIDs = append(rootIDs, c.ID)
	}

	roots := make([]domain.CategoryNode, 0, len(rootIDs))
	for _, id := range rootIDs {
		roots = append(roots, aggregate(attachChildren(leaves[id], childIDs, leaves)))
	}
	sortNodes(roots)
	return roots
}

// attachChildren wires descendants below a node (depth beyond two levels is
// not produced by category CRUD, but the fold handles it regardless).
func attachChildren(node domain.CategoryNode, childIDs map[string][]string, leaves map[string]domain.CategoryNode) domain.CategoryNode {
	ids := childIDs[node.Category.ID]
	if len(ids) == 0 {
		return node
	}
	children := make([]domain.CategoryNode, 0, len(ids))
	for _, cid := range ids {
		children = append(children, attachChildren(leaves[cid], childIDs, leaves))
	}
	sortNodes(children)
	node.Children = children
	return node
}

// aggregate is the immutable bottom-up fold: a node with children discards
// its own direct facts and holds the sum of its (already aggregated)
// children instead. Leaf nodes keep their computed facts.
func aggregate(node domain.CategoryNode) domain.CategoryNode {
	if len(node.Children) == 0 {
		return node
	}
	children := make([]domain.CategoryNode, 0, len(node.Children))
	sum := domain.ZeroFacts()
	for _, child := range node.Children {
		agg := aggregate(child)
		children = append(children, agg)
		sum = sum.Add(agg.Facts)
	}
	return domain.CategoryNode{Category: node.Category, Facts: sum, Children: children}
}

func sortNodes(nodes []domain.CategoryNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Category.DisplayOrder < nodes[j].Category.DisplayOrder
	})
}

func sectionOf(roots []domain.CategoryNode) domain.SummarySection {
	section := domain.SummarySection{
		Categories: roots,
		Expected:   decimal.Zero,
		Activity:   decimal.Zero,
		Available:  decimal.Zero,
	}
	for _, root := range roots {
		section.Expected = section.Expected.Add(root.Facts.Expected)
		section.Activity = section.Activity.Add(root.Facts.Activity)
		section.Available = section.Available.Add(root.Facts.Available)
	}
	return section
}

func viewKey(budgetID string, p domain.PeriodRange) string {
	return fmt.Sprintf("%s@%s", budgetID, p.Start.Format("2006-01-02"))
}
