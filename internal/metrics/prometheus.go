// Package metrics exposes rampart's Prometheus instruments.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once     sync.Once
	registry *Registry
)

// Outcome labels for OperationsTotal.
const (
	OutcomeFulfilled = "fulfilled"
	OutcomeRejected  = "rejected"
)

// Registry holds all rampart metrics.
type Registry struct {
	// Operation metrics
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// Store metrics
	StoreVersion    prometheus.Gauge
	CollectionItems *prometheus.GaugeVec

	// API metrics
	APIRequests *prometheus.CounterVec
	APILatency  *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// Get returns the process-wide registry bound to the default Prometheus registerer.
func Get() *Registry {
	once.Do(func() {
		registry = New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	})
	return registry
}

// NewIsolated returns a registry backed by its own prometheus.Registry.
func NewIsolated() *Registry {
	reg := prometheus.NewRegistry()
	return New(reg, reg)
}

// New creates all instruments on reg. g serves them over HTTP.
func New(reg prometheus.Registerer, g prometheus.Gatherer) *Registry {
	factory := promauto.With(reg)
	r := &Registry{gatherer: g}

	r.OperationsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "rampart_operations_total",
		Help: "Completed operations by collection, operation and outcome",
	}, []string{"collection", "op", "outcome"})

	r.OperationDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rampart_operation_duration_seconds",
		Help:    "Provider call latency per operation",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection", "op"})

	r.StoreVersion = factory.NewGauge(prometheus.GaugeOpts{
		Name: "rampart_store_version",
		Help: "Number of actions applied to the store",
	})

	r.CollectionItems = factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rampart_collection_items",
		Help: "Records currently held per collection",
	}, []string{"collection"})

	r.APIRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "rampart_api_requests_total",
		Help: "API requests by method, route and status class",
	}, []string{"method", "path", "status"})

	r.APILatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rampart_api_request_duration_seconds",
		Help:    "API request latency",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"method", "path"})

	return r
}

// RecordOperation counts one completed operation. A nil registry records nothing.
func (r *Registry) RecordOperation(collection, op string, err error, d time.Duration) {
	if r == nil {
		return
	}
	outcome := OutcomeFulfilled
	if err != nil {
		outcome = OutcomeRejected
	}
	r.OperationsTotal.WithLabelValues(collection, op, outcome).Inc()
	r.OperationDuration.WithLabelValues(collection, op).Observe(d.Seconds())
}

// RecordStore publishes the store version and per-collection sizes.
func (r *Registry) RecordStore(version uint64, sizes map[string]int) {
	if r == nil {
		return
	}
	r.StoreVersion.Set(float64(version))
	for collection, n := range sizes {
		r.CollectionItems.WithLabelValues(collection).Set(float64(n))
	}
}

// RecordAPIRequest counts one HTTP request.
func (r *Registry) RecordAPIRequest(method, path string, status int, duration float64) {
	if r == nil {
		return
	}
	r.APIRequests.WithLabelValues(method, path, statusString(status)).Inc()
	r.APILatency.WithLabelValues(method, path).Observe(duration)
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

func statusString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	}
	return strconv.Itoa(status)
}
