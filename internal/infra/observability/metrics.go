package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/ledgerline/budget-engine-go/internal/domain"
)

// Metrics holds all Prometheus metrics for the budget engine.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	viewBuildDuration prometheus.Histogram
	viewBuilds        *prometheus.CounterVec
	rolloverLookups   prometheus.Counter
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		viewBuildDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "budget_view_build_duration_seconds",
				Help:    "Duration of period view builds.",
				Buckets: prometheus.DefBuckets,
			},
		),
		viewBuilds: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_view_builds_total",
				Help: "Total period view builds by outcome.",
			},
			[]string{"status"},
		),
		rolloverLookups: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "budget_rollover_lookups_total",
				Help: "Total rollover resolutions started at depth 0.",
			},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
	}
}

// RecordViewDuration records the duration of one view build.
func (m *Metrics) RecordViewDuration(d time.Duration) {
	m.viewBuildDuration.Observe(d.Seconds())
}

// IncrViewBuild increments the view build counter with an outcome label.
func (m *Metrics) IncrViewBuild(status string) {
	m.viewBuilds.WithLabelValues(status).Inc()
}

// IncrRolloverLookup counts a top-level rollover resolution.
func (m *Metrics) IncrRolloverLookup() {
	m.rolloverLookups.Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// GetEngineSnapshot returns a snapshot of engine metrics suitable for the
// GET /v1/metrics/engine endpoint. Prometheus counters expose cumulative
// values, so every figure here is all-time.
func (m *Metrics) GetEngineSnapshot() *domain.EngineMetrics {
	success := getCounterValue(m.viewBuilds, "success")
	errors := getCounterValue(m.viewBuilds, "error")
	hits := getCounterValue(m.cacheHits, "view")
	misses := getCounterValue(m.cacheMisses, "view")

	total := success + errors
	errorRate := float64(0)
	if total > 0 {
		errorRate = errors / total
	}
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &domain.EngineMetrics{
		TotalViews:      int64(total),
		ErrorRate:       errorRate,
		CacheHitRate:    hitRate,
		RolloverLookups: int64(readCounter(m.rolloverLookups)),
		Period:          "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	return readCounter(counter.(prometheus.Metric))
}

func readCounter(c prometheus.Metric) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
