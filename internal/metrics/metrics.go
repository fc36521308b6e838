package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Push outcomes.
const (
	OutcomeMerged    = "merged"
	OutcomeUnchanged = "unchanged"
	OutcomeDuplicate = "duplicate"
	OutcomeMalformed = "malformed"
	OutcomeMismatch  = "mismatch"
	OutcomeError     = "error"
)

// Metrics holds all Prometheus collectors for the node.
// It is passed explicitly to the components that record metrics; a nil
// *Metrics disables recording at the call site.
type Metrics struct {
	// Ledger Metrics
	pushesTotal          *prometheus.CounterVec
	pushDuration         *prometheus.HistogramVec
	pullsTotal           *prometheus.CounterVec
	mergedTransactions   *prometheus.CounterVec
	balanceLookupsTotal  *prometheus.CounterVec
	walletTransactionLen prometheus.Histogram

	// HTTP Metrics
	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		pushesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zold_wallet_pushes_total",
				Help: "Total number of wallet pushes by outcome",
			},
			[]string{"outcome"},
		),
		pushDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "zold_wallet_push_duration_seconds",
				Help:    "Duration of wallet pushes including merge and persistence",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"outcome"},
		),
		pullsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zold_wallet_pulls_total",
				Help: "Total number of wallet pulls by outcome",
			},
			[]string{"outcome"},
		),
		mergedTransactions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zold_merge_transactions_total",
				Help: "Remote transactions seen by the merge engine, by result",
			},
			[]string{"result"},
		),
		balanceLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zold_balance_lookups_total",
				Help: "Balance reads by source (cache or storage)",
			},
			[]string{"source"},
		),
		walletTransactionLen: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "zold_wallet_transactions",
				Help:    "Number of transactions in a wallet after a merge",
				Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000},
			},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"handler", "method", "status"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"handler", "method", "status"},
		),
	}
}

// Ledger metric helpers

// RecordPush records a push with its outcome and duration in seconds.
func (m *Metrics) RecordPush(outcome string, duration float64) {
	m.pushesTotal.WithLabelValues(outcome).Inc()
	m.pushDuration.WithLabelValues(outcome).Observe(duration)
}

// RecordPull records a pull by outcome (found, not_found, error).
func (m *Metrics) RecordPull(outcome string) {
	m.pullsTotal.WithLabelValues(outcome).Inc()
}

// RecordMerge records how many remote transactions were accepted and
// rejected, and the resulting ledger length.
func (m *Metrics) RecordMerge(accepted, rejected, length int) {
	m.mergedTransactions.WithLabelValues("accepted").Add(float64(accepted))
	m.mergedTransactions.WithLabelValues("rejected").Add(float64(rejected))
	m.walletTransactionLen.Observe(float64(length))
}

// RecordBalanceLookup records where a balance read was served from.
func (m *Metrics) RecordBalanceLookup(source string) {
	m.balanceLookupsTotal.WithLabelValues(source).Inc()
}

// HTTP metric helpers

// RecordHTTPRequest records an HTTP request with duration.
func (m *Metrics) RecordHTTPRequest(handler, method string, statusCode int, duration float64) {
	status := strconv.Itoa(statusCode)
	m.httpRequestsTotal.WithLabelValues(handler, method, status).Inc()
	m.httpRequestDuration.WithLabelValues(handler, method, status).Observe(duration)
}
