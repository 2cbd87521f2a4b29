package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Request metrics are labelled by route template, never by raw URL, so
// document paths under /docs/*path do not explode cardinality.
var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitcircle",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fitcircle",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency of non-streaming HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	requestsInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fitcircle",
		Subsystem: "http",
		Name:      "requests_inflight",
		Help:      "HTTP requests currently being served, streams included.",
	})

	responseSize = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fitcircle",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "Size of non-streaming HTTP responses.",
		Buckets:   prometheus.ExponentialBuckets(256, 4, 8), // 256B..4MiB
	}, []string{"method", "route"})
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, requestsInflight, responseSize)
}

func routeOf(c *gin.Context) string {
	if r := c.FullPath(); r != "" {
		return r
	}
	return "unmatched"
}

// Metrics records request counters. Upgraded websocket connections are
// counted but kept out of the latency and size histograms, since their
// duration is the lifetime of the stream.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestsInflight.Inc()
		defer requestsInflight.Dec()

		c.Next()

		method, route := c.Request.Method, routeOf(c)
		requestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		if c.IsWebsocket() {
			return
		}
		requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size >= 0 {
			responseSize.WithLabelValues(method, route).Observe(float64(size))
		}
	}
}
