package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yvesthior/moncareme-agd/config"
)

func TestStatusBucket(t *testing.T) {
	cases := map[int]string{101: "1xx", 200: "2xx", 204: "2xx", 302: "3xx", 404: "4xx", 429: "4xx", 500: "5xx", 503: "5xx"}
	for code, want := range cases {
		assert.Equal(t, want, StatusBucket(code), "code=%d", code)
	}
}

func TestNew_DisabledIsNoop(t *testing.T) {
	rec := New(&config.MetricsConfig{Enabled: false})

	rec.IncRequestsTotal("/x", "GET", 200)
	rec.IncBlacklistHits()
	assert.Nil(t, rec.Handler())
}

func TestProvider_CountsAndExposes(t *testing.T) {
	rec := New(&config.MetricsConfig{Enabled: true, Path: "/metrics"})
	p, ok := rec.(*Provider)
	require.True(t, ok)

	p.IncRequestsTotal("/api/v1/entries", "GET", 200)
	p.IncRequestsTotal("/api/v1/entries", "GET", 201)
	p.IncRequestsTotal("/api/v1/entries", "GET", 404)
	p.ObserveRequestDuration("/api/v1/entries", 20*time.Millisecond)
	p.IncRateLimited("/api/v1/entries")

	assert.Equal(t, 2.0, testutil.ToFloat64(p.requestsTotal.WithLabelValues("/api/v1/entries", "GET", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.requestsTotal.WithLabelValues("/api/v1/entries", "GET", "4xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.rateLimited.WithLabelValues("/api/v1/entries")))

	w := httptest.NewRecorder()
	p.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "moncareme_http_requests_total"))
}

func TestNew_IndependentRegistries(t *testing.T) {
	// 每个 Provider 使用独立 Registry，可重复创建
	assert.NotPanics(t, func() {
		New(&config.MetricsConfig{Enabled: true})
		New(&config.MetricsConfig{Enabled: true})
	})
}
