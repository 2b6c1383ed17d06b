package observability

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus records every hook event as a Prometheus metric.
type Prometheus struct {
	layoutDuration *prometheus.HistogramVec
	layoutRecords  prometheus.Histogram
	renderDuration *prometheus.HistogramVec

	cacheEvents *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec
}

// NewPrometheus registers the cascade metrics with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		layoutDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cascade_layout_duration_seconds",
			Help:    "Duration of waterfall layout computations",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"result"}),
		layoutRecords: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "cascade_layout_records",
			Help:    "Number of records per laid out model",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		renderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cascade_render_duration_seconds",
			Help:    "Duration of chart rendering, by requested formats",
			Buckets: prometheus.DefBuckets,
		}, []string{"formats", "result"}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cascade_cache_events_total",
			Help: "Cache lookups and writes by key type",
		}, []string{"key_type", "event"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cascade_cache_written_bytes_total",
			Help: "Bytes written to the cache by key type",
		}, []string{"key_type"}),
		httpInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "cascade_http_requests_in_flight",
			Help: "Requests currently being served",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cascade_http_requests_total",
			Help: "Completed HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cascade_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cascade_http_errors_total",
			Help: "Requests that failed inside a handler",
		}, []string{"method", "route"}),
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// OnLayoutStart implements PipelineHooks.
func (p *Prometheus) OnLayoutStart(_ context.Context, records, _ int) {
	p.layoutRecords.Observe(float64(records))
}

// OnLayoutComplete implements PipelineHooks.
func (p *Prometheus) OnLayoutComplete(_ context.Context, d time.Duration, err error) {
	p.layoutDuration.WithLabelValues(result(err)).Observe(d.Seconds())
}

// OnRenderStart implements PipelineHooks.
func (p *Prometheus) OnRenderStart(context.Context, []string) {}

// OnRenderComplete implements PipelineHooks.
func (p *Prometheus) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	p.renderDuration.WithLabelValues(strings.Join(formats, ","), result(err)).Observe(d.Seconds())
}

// OnCacheHit implements CacheHooks.
func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements CacheHooks.
func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements CacheHooks.
func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheEvents.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// OnRequest implements HTTPHooks.
func (p *Prometheus) OnRequest(context.Context, string, string) {
	p.httpInFlight.Inc()
}

// OnResponse implements HTTPHooks.
func (p *Prometheus) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	p.httpInFlight.Dec()
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// OnError implements HTTPHooks.
func (p *Prometheus) OnError(_ context.Context, method, route string, _ error) {
	p.httpErrors.WithLabelValues(method, route).Inc()
}

var (
	_ PipelineHooks = (*Prometheus)(nil)
	_ CacheHooks    = (*Prometheus)(nil)
	_ HTTPHooks     = (*Prometheus)(nil)
)
