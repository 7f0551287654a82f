package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	LookupsTotal        *prometheus.CounterVec
	LookupDuration      *prometheus.HistogramVec
	ChatStreamsTotal    *prometheus.CounterVec
)

// Init registers the application metrics with the default registry.
// Call exactly once at startup.
func Init() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "availability_lookups_total",
			Help: "Total number of external availability lookups.",
		},
		[]string{"method", "outcome"}, // method: rdap, doh, whois
	)

	LookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "availability_lookup_duration_seconds",
			Help:    "Duration of external availability lookups.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method"},
	)

	ChatStreamsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_streams_total",
			Help: "Total number of chat completion streams.",
		},
		[]string{"status"}, // status: success, failure
	)
}

// ObserveLookup records one external lookup attempt. Safe to call before
// Init only in tests where metrics stay nil-guarded.
func ObserveLookup(method, outcome string, seconds float64) {
	if LookupsTotal == nil || LookupDuration == nil {
		return
	}
	LookupsTotal.WithLabelValues(method, outcome).Inc()
	LookupDuration.WithLabelValues(method).Observe(seconds)
}
