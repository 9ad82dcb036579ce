package domain

import "github.com/shopspring/decimal"

// SummarySection groups the root category nodes of one polarity (inflow or
// outflow) with their aggregate figures.
type SummarySection struct {
	Categories []CategoryNode  `json:"categories"`
	Expected   decimal.Decimal `json:"expected"`
	Activity   decimal.Decimal `json:"activity"`
	Available  decimal.Decimal `json:"available"`
}

// PeriodSummary is the hierarchical period view the engine produces.
// leftToBudget = budgetable - totalBudgeted holds for every summary.
type PeriodSummary struct {
	BudgetID string      `json:"budget_id"`
	Period   PeriodRange `json:"period"`

	Inflow  SummarySection `json:"inflow"`
	Outflow SummarySection `json:"outflow"`

	// AvailablePool is the workspace-level shared balance fed by categories
	// with the available_pool rollover policy.
	AvailablePool decimal.Decimal `json:"available_pool"`

	Budgetable        decimal.Decimal `json:"budgetable"`
	TotalBudgeted     decimal.Decimal `json:"total_budgeted"`
	LeftToBudget      decimal.Decimal `json:"left_to_budget"`
	NetTotalAvailable decimal.Decimal `json:"net_total_available"`
	TotalRolledOver   decimal.Decimal `json:"total_rolled_over"`
}

// EngineMetrics is the JSON snapshot served by GET /v1/metrics/engine.
type EngineMetrics struct {
	TotalViews      int64   `json:"total_views"`
	ErrorRate       float64 `json:"error_rate"`
	CacheHitRate    float64 `json:"cache_hit_rate"`
	RolloverLookups int64   `json:"rollover_lookups"`
	Period          string  `json:"period"`
}
