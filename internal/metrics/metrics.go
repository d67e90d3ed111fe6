package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the Prometheus metrics of one service instance. Each
// collector owns its registry so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	Redraws        *prometheus.CounterVec
	RedrawDuration *prometheus.HistogramVec

	DatasetLoads        *prometheus.CounterVec
	DatasetLoadDuration prometheus.Histogram
	RowsExcluded        *prometheus.CounterVec

	SessionsActive  prometheus.Gauge
	SessionsEvicted prometheus.Counter
}

// NewCollector creates and registers all metrics under namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Redraws: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "redraws_total",
				Help:      "Total number of slide redraws by outcome",
			},
			[]string{"slide", "outcome"},
		),
		RedrawDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "redraw_duration_seconds",
				Help:      "Time spent in one filter/aggregate/layout/render pass",
				Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
			},
			[]string{"slide"},
		),
		DatasetLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dataset_loads_total",
				Help:      "Total number of dataset load attempts by outcome",
			},
			[]string{"outcome"},
		),
		DatasetLoadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dataset_load_duration_seconds",
				Help:      "Dataset fetch and parse duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		RowsExcluded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dataset_rows_excluded_total",
				Help:      "CSV rows excluded by the schema step, by reason",
			},
			[]string{"reason"},
		),
		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions_active",
				Help:      "Number of viewer sessions held in memory",
			},
		),
		SessionsEvicted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_evicted_total",
				Help:      "Total number of sessions evicted from the store",
			},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Redraws,
		c.RedrawDuration,
		c.DatasetLoads,
		c.DatasetLoadDuration,
		c.RowsExcluded,
		c.SessionsActive,
		c.SessionsEvicted,
	)
	return c
}

// Registry returns the registry backing this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveLoad records one dataset load attempt.
func (c *Collector) ObserveLoad(outcome string, elapsed time.Duration) {
	c.DatasetLoads.WithLabelValues(outcome).Inc()
	c.DatasetLoadDuration.Observe(elapsed.Seconds())
}

// AddExcludedRows counts rows dropped by the schema step.
func (c *Collector) AddExcludedRows(reason string, n int) {
	c.RowsExcluded.WithLabelValues(reason).Add(float64(n))
}

// ObserveRedraw records one redraw of a slide.
func (c *Collector) ObserveRedraw(slide, outcome string, elapsed time.Duration) {
	c.Redraws.WithLabelValues(slide, outcome).Inc()
	if elapsed > 0 {
		c.RedrawDuration.WithLabelValues(slide).Observe(elapsed.Seconds())
	}
}

// SetSessions reports the current number of sessions.
func (c *Collector) SetSessions(n int) {
	c.SessionsActive.Set(float64(n))
}

// SessionEvicted counts one evicted session.
func (c *Collector) SessionEvicted() {
	c.SessionsEvicted.Inc()
}

// Middleware records request counts and latency per matched route.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		c.HTTPRequests.WithLabelValues(ctx.Request.Method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.HTTPDuration.WithLabelValues(ctx.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
