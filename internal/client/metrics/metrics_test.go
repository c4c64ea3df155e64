package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_CountsByMethodAndCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := New(prometheus.NewRegistry())
	c := &http.Client{Transport: m.Middleware()(http.DefaultTransport)}

	for _, p := range []string{"/ok", "/ok", "/missing"} {
		resp, err := c.Get(srv.URL + p)
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("get", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("get", "404")))
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncAuthFailure()
	m.IncRedirect("/login")
	m.IncRedirect("/login")
	m.IncRedirect("/dashboard")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthFailures))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Redirects.WithLabelValues("/login")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Redirects.WithLabelValues("/dashboard")))
}

func TestNilMetrics_AreNoops(t *testing.T) {
	var m *Metrics
	m.IncAuthFailure()
	m.IncRedirect("/login")
}

func TestNew_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	require.Panics(t, func() { New(reg) }, "duplicate registration must be detected")
}
