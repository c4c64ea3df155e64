// Package metrics holds the Prometheus instruments of the client.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the client-side counters.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	AuthFailures    prometheus.Counter
	Redirects       *prometheus.CounterVec
}

// New creates the instruments and registers them with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "taskkeeper_client_requests_total",
			Help: "Backend requests by method and status code",
		}, []string{"method", "code"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskkeeper_client_request_duration_seconds",
			Help:    "Backend request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "code"}),
		AuthFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "taskkeeper_client_auth_failures_total",
			Help: "Responses that invalidated the session",
		}),
		Redirects: f.NewCounterVec(prometheus.CounterOpts{
			Name: "taskkeeper_client_redirects_total",
			Help: "Navigations requested by the session manager",
		}, []string{"route"}),
	}
}

// Middleware instruments the transport with the request counter and latency
// histogram.
func (m *Metrics) Middleware() func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return promhttp.InstrumentRoundTripperCounter(m.Requests,
			promhttp.InstrumentRoundTripperDuration(m.RequestDuration, next))
	}
}

// IncAuthFailure counts a session invalidated by the server.
func (m *Metrics) IncAuthFailure() {
	if m == nil {
		return
	}
	m.AuthFailures.Inc()
}

// IncRedirect counts a navigation to route.
func (m *Metrics) IncRedirect(route string) {
	if m == nil {
		return
	}
	m.Redirects.WithLabelValues(route).Inc()
}
