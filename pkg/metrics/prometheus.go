package metrics

import (
	"CoinBoard/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchLatency  *prometheus.HistogramVec
	fetchErrors   *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	refreshCycles *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
}

// New creates a recorder registered on reg, or on the default registry when reg is nil.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		fetchLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinboard_upstream_fetch_duration_seconds",
				Help:    "Duration of upstream market data requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		fetchErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinboard_upstream_fetch_errors_total",
				Help: "Failed upstream requests by operation and error kind",
			},
			[]string{"operation", "kind"},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinboard_cache_lookups_total",
				Help: "Cache lookups by key kind and result",
			},
			[]string{"kind", "result"},
		),
		refreshCycles: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinboard_refresh_cycles_total",
				Help: "Completed refresh cycles by trigger and outcome",
			},
			[]string{"trigger", "outcome"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinboard_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coinboard_last_price",
				Help: "Last published price for an asset",
			},
			[]string{"asset"},
		),
	}
}

// RecordFetch records one upstream request and its failure kind, if any.
func (r *Recorder) RecordFetch(op string, seconds float64, err error) {
	r.fetchLatency.WithLabelValues(op).Observe(seconds)
	if err == nil {
		return
	}
	kind := "unknown"
	if fe, ok := models.AsFetchError(err); ok {
		kind = string(fe.Kind)
	}
	r.fetchErrors.WithLabelValues(op, kind).Inc()
}

func (r *Recorder) RecordCacheHit(kind string) {
	r.cacheLookups.WithLabelValues(kind, "hit").Inc()
}

func (r *Recorder) RecordCacheMiss(kind string) {
	r.cacheLookups.WithLabelValues(kind, "miss").Inc()
}

// RecordRefreshCycle counts a finished cycle; outcome is ok, degraded or failed.
func (r *Recorder) RecordRefreshCycle(trigger, outcome string) {
	r.refreshCycles.WithLabelValues(trigger, outcome).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for an asset.
func (r *Recorder) RecordLastPrice(asset string, price float64) {
	r.lastPrice.WithLabelValues(asset).Set(price)
}
