// Package metrics provides the Prometheus registry for the ranking engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RecomputesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ranking_engine",
		Name:      "recomputes_total",
		Help:      "Total number of scope recomputes by kind and outcome",
	}, []string{"kind", "outcome"})
	RowsWrittenTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ranking_engine",
		Name:      "derived_rows_written_total",
		Help:      "Total number of derived rows inserted by table",
	}, []string{"table"})
	FallbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ranking_engine",
		Name:      "config_fallbacks_total",
		Help:      "Total number of configuration fallbacks applied by kind",
	}, []string{"kind"})
	SnapshotsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ranking_engine",
		Name:      "snapshots_total",
		Help:      "Total number of snapshot runs by outcome",
	}, []string{"outcome"})
	StandingsCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ranking_engine",
		Name:      "standings_cache_requests_total",
		Help:      "Standings cache lookups by result",
	}, []string{"result"})
	TablesReloadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ranking_engine",
		Name:      "scoring_tables_reloads_total",
		Help:      "Scoring tables reload attempts by outcome",
	}, []string{"outcome"})
)

// Gauge metrics
var (
	RankedRiders = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ranking_engine",
		Name:      "ranked_riders",
		Help:      "Number of riders in the latest ranking per discipline",
	}, []string{"discipline"})
)

// Histogram metrics
var (
	RecomputeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ranking_engine",
		Name:      "recompute_duration_seconds",
		Help:      "Duration of scope recomputes in seconds",
		Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
	}, []string{"kind"})
)

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(RecomputesTotal)
		registry.MustRegister(RowsWrittenTotal)
		registry.MustRegister(FallbacksTotal)
		registry.MustRegister(SnapshotsTotal)
		registry.MustRegister(StandingsCacheTotal)
		registry.MustRegister(TablesReloadsTotal)

		registry.MustRegister(RankedRiders)

		registry.MustRegister(RecomputeDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordRecompute records a finished recompute of the given kind.
func RecordRecompute(kind string, err error, durationSeconds float64) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	RecomputesTotal.WithLabelValues(kind, outcome).Inc()
	RecomputeDuration.WithLabelValues(kind).Observe(durationSeconds)
}

// RecordRowsWritten adds n inserted rows for table.
func RecordRowsWritten(table string, n int) {
	RowsWrittenTotal.WithLabelValues(table).Add(float64(n))
}

// RecordFallback records one applied configuration fallback.
func RecordFallback(kind string) {
	FallbacksTotal.WithLabelValues(kind).Inc()
}

// RecordSnapshot records a snapshot run outcome.
func RecordSnapshot(outcome string) {
	SnapshotsTotal.WithLabelValues(outcome).Inc()
}

// RecordCacheLookup records a standings cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	StandingsCacheTotal.WithLabelValues(result).Inc()
}

// RecordTablesReload records a scoring tables reload attempt.
func RecordTablesReload(err error) {
	if err != nil {
		TablesReloadsTotal.WithLabelValues(OutcomeFailure).Inc()
		return
	}
	TablesReloadsTotal.WithLabelValues(OutcomeSuccess).Inc()
}

// UpdateRankedRiders sets the ranked rider gauge for a discipline.
func UpdateRankedRiders(discipline string, count int) {
	RankedRiders.WithLabelValues(discipline).Set(float64(count))
}
