// Package metrics holds the Prometheus collectors for the folio backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Valuation metrics
	SummariesComputed prometheus.Counter
	XIRRStatus        *prometheus.CounterVec
	XIRRIterations    prometheus.Histogram
	HoldingsPerFolio  prometheus.Histogram

	// Upstream folio API metrics
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration prometheus.Histogram

	// Sync metrics
	SyncRuns  *prometheus.CounterVec
	SyncUsers *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SummariesComputed: factory.NewCounter(prometheus.CounterOpts{
			Name: "folio_summaries_computed_total",
			Help: "Total number of portfolio summaries computed",
		}),
		XIRRStatus: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folio_xirr_results_total",
				Help: "XIRR outcomes by status",
			},
			[]string{"status"},
		),
		XIRRIterations: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "folio_xirr_iterations",
			Help:    "Newton-Raphson iterations needed to converge",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 50, 100},
		}),
		HoldingsPerFolio: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "folio_holdings_per_summary",
			Help:    "Number of holding records per summary",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),

		UpstreamRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folio_upstream_requests_total",
				Help: "Requests to the upstream folio API by outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		UpstreamDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "folio_upstream_request_duration_seconds",
			Help:    "Duration of upstream folio API requests",
			Buckets: prometheus.DefBuckets,
		}),

		SyncRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folio_sync_runs_total",
				Help: "Holding sync runs by result",
			},
			[]string{"result"},
		),
		SyncUsers: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folio_sync_users_total",
				Help: "Per-user holding syncs by result",
			},
			[]string{"result"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folio_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "folio_http_request_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// NewNop returns metrics registered on a throwaway registry, for tests and tools
// that do not expose /metrics.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
