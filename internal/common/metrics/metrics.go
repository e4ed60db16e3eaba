// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests by route and status",
		},
		[]string{"route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of API request handling in seconds",
		},
		[]string{"route"},
	)

	StorefrontRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_requests_total",
			Help: "Total number of upstream storefront API requests",
		},
		[]string{"endpoint", "status"},
	)

	AssistRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assist_requests_total",
			Help: "Total number of AI assist calls by task and outcome",
		},
		[]string{"task", "outcome"},
	)
)

// Register attaches the shared collectors to a registry. The collectors are
// package-level, so a process with several registries exposes the same
// series set through each of them.
func Register(r prometheus.Registerer) {
	r.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		StorefrontRequestsTotal,
		AssistRequestsTotal,
	)
}
