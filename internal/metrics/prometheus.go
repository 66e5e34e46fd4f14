// Package metrics exposes Prometheus instrumentation.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts processed HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glucotrack_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"endpoint", "method", "status"},
	)

	// RequestDuration tracks HTTP request latency
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "glucotrack_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"endpoint", "method"},
	)

	// ReadingsIngested counts accepted CGM readings
	ReadingsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "glucotrack_readings_ingested_total",
			Help: "Total number of CGM readings accepted",
		},
	)

	// ReadingsRejected counts readings that failed plausibility checks
	ReadingsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "glucotrack_readings_rejected_total",
			Help: "Total number of CGM readings rejected",
		},
	)

	// AnalysesComputed counts completed analysis reports
	AnalysesComputed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "glucotrack_analyses_computed_total",
			Help: "Total number of analysis reports computed",
		},
	)

	// ForecastsGenerated counts completed glucose forecasts
	ForecastsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "glucotrack_forecasts_generated_total",
			Help: "Total number of glucose forecasts generated",
		},
	)

	// AlertsEmitted counts predictive alerts by severity
	AlertsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glucotrack_alerts_emitted_total",
			Help: "Total number of predictive alerts emitted",
		},
		[]string{"severity"},
	)

	// CacheHits counts analysis cache hits
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "glucotrack_cache_hits_total",
			Help: "Total number of analysis cache hits",
		},
	)

	// CacheMisses counts analysis cache misses
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "glucotrack_cache_misses_total",
			Help: "Total number of analysis cache misses",
		},
	)

	// ForecastLatency tracks forecast rollout latency
	ForecastLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "glucotrack_forecast_latency_seconds",
			Help:    "Forecast rollout latency in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1},
		},
	)
)

// Middleware instruments gin requests with count and duration
func Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		endpoint := ctx.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestsTotal.WithLabelValues(endpoint, ctx.Request.Method, strconv.Itoa(ctx.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(endpoint, ctx.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// Handler returns the Prometheus scrape handler wrapped for gin
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(ctx *gin.Context) {
		h.ServeHTTP(ctx.Writer, ctx.Request)
	}
}
