// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ledger metrics
	TokensMinted       prometheus.Counter
	TokensUpdated      prometheus.Counter
	AttributeChanges   *prometheus.CounterVec
	LedgerErrors       *prometheus.CounterVec
	TotalSupply        prometheus.Gauge
	LastKnownPrice     prometheus.Gauge
	BatchRunsTotal     *prometheus.CounterVec
	BatchDuration      prometheus.Histogram
	BatchTokensUpdated prometheus.Counter

	// Oracle metrics
	OracleRequests  *prometheus.CounterVec
	OracleFallbacks *prometheus.CounterVec
	OracleLatency   *prometheus.HistogramVec

	// API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Health metrics
	LastSuccessfulBatch prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "dynamic_nft"
	}

	return &Metrics{
		// Ledger metrics
		TokensMinted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "tokens_minted_total",
			Help:      "Total number of tokens minted",
		}),
		TokensUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "tokens_updated_total",
			Help:      "Total number of token attribute updates applied",
		}),
		AttributeChanges: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "attribute_changes_total",
			Help:      "Total number of attribute changes by field",
		}, []string{"field"}),
		LedgerErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "errors_total",
			Help:      "Total number of failed ledger operations by operation",
		}, []string{"operation"}),
		TotalSupply: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "total_supply",
			Help:      "Number of tokens in the ledger",
		}),
		LastKnownPrice: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "last_known_price_usd",
			Help:      "Most recently applied BTC price in USD",
		}),
		BatchRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "runs_total",
			Help:      "Total number of batch update runs by status",
		}, []string{"status"}),
		BatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "duration_seconds",
			Help:      "Batch update duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}),
		BatchTokensUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "tokens_updated_total",
			Help:      "Total number of tokens updated by batch runs",
		}),

		// Oracle metrics
		OracleRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "requests_total",
			Help:      "Total number of oracle price requests by result source",
		}, []string{"source"}),
		OracleFallbacks: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "fallbacks_total",
			Help:      "Total number of oracle fallbacks by reason",
		}, []string{"reason"}),
		OracleLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "request_latency_seconds",
			Help:      "Oracle request latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}, []string{"transport"}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		// Health metrics
		LastSuccessfulBatch: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_batch_timestamp",
			Help:      "Unix timestamp of last successful batch update",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordMint increments the minted counter and sets the cached price gauge.
func RecordMint(price int64) {
	DefaultMetrics.TokensMinted.Inc()
	DefaultMetrics.LastKnownPrice.Set(float64(price))
}

// RecordTotalSupply sets the supply gauge from the stored token count.
func RecordTotalSupply(n int) {
	DefaultMetrics.TotalSupply.Set(float64(n))
}

// RecordTokenUpdate records one applied update and the fields it changed.
func RecordTokenUpdate(changedFields []string) {
	DefaultMetrics.TokensUpdated.Inc()
	for _, f := range changedFields {
		DefaultMetrics.AttributeChanges.WithLabelValues(f).Inc()
	}
}

// RecordLastKnownPrice updates the cached price gauge.
func RecordLastKnownPrice(price int64) {
	DefaultMetrics.LastKnownPrice.Set(float64(price))
}

// RecordLedgerError records a failed ledger operation.
func RecordLedgerError(operation string) {
	DefaultMetrics.LedgerErrors.WithLabelValues(operation).Inc()
}

// RecordBatchRun records a batch update run.
func RecordBatchRun(status string, updated int, durationSeconds float64, unixTime int64) {
	DefaultMetrics.BatchRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.BatchDuration.Observe(durationSeconds)
	DefaultMetrics.BatchTokensUpdated.Add(float64(updated))
	if status == "success" {
		DefaultMetrics.LastSuccessfulBatch.Set(float64(unixTime))
	}
}

// RecordOracleRequest records an oracle price request by result source and latency.
func RecordOracleRequest(transport, source string, seconds float64) {
	DefaultMetrics.OracleRequests.WithLabelValues(source).Inc()
	DefaultMetrics.OracleLatency.WithLabelValues(transport).Observe(seconds)
}

// RecordOracleFallback records why an oracle reply was not used.
func RecordOracleFallback(reason string) {
	DefaultMetrics.OracleFallbacks.WithLabelValues(reason).Inc()
}

// RecordHTTPRequest records an API request.
func RecordHTTPRequest(method, route, status string, seconds float64) {
	DefaultMetrics.HTTPRequests.WithLabelValues(method, route, status).Inc()
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}
