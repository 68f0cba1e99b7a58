package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Yvesthior/moncareme-agd/config"
)

// Recorder HTTP 指标记录接口
type Recorder interface {
	IncRequestsTotal(endpoint, method string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncRateLimited(endpoint string)
	IncBlacklistHits()
	// Handler 暴露 Prometheus 抓取端点；未启用时返回 nil
	Handler() http.Handler
}

// Provider Prometheus 实现，使用独立 Registry
type Provider struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	rateLimited     *prometheus.CounterVec
	blacklistHits   prometheus.Counter
}

// New 根据配置创建 Recorder，未启用时返回空实现
func New(cfg *config.MetricsConfig) Recorder {
	if cfg == nil || !cfg.Enabled {
		return noopRecorder{}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Provider{
		registry: reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "moncareme_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "method", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "moncareme_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		rateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "moncareme_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		}, []string{"endpoint"}),

		blacklistHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "moncareme_token_blacklist_hits_total",
			Help: "Total number of requests carrying a revoked token",
		}),
	}
}

func (p *Provider) IncRequestsTotal(endpoint, method string, status int) {
	p.requestsTotal.WithLabelValues(endpoint, method, StatusBucket(status)).Inc()
}

func (p *Provider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	p.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (p *Provider) IncRateLimited(endpoint string) {
	p.rateLimited.WithLabelValues(endpoint).Inc()
}

func (p *Provider) IncBlacklistHits() {
	p.blacklistHits.Inc()
}

func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// StatusBucket 将状态码归并为 1xx … 5xx
func StatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

type noopRecorder struct{}

func (noopRecorder) IncRequestsTotal(_, _ string, _ int)              {}
func (noopRecorder) ObserveRequestDuration(_ string, _ time.Duration) {}
func (noopRecorder) IncRateLimited(_ string)                          {}
func (noopRecorder) IncBlacklistHits()                                {}
func (noopRecorder) Handler() http.Handler                            { return nil }
