// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file holds the Prometheus instrumentation. Every series carries the
// registered route (c.FullPath()) rather than the raw URL, so gift and
// wishlist IDs never become label values.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Headers written by handlers and read back here.
const (
	HeaderTotalCount       = "X-Total-Count"
	HeaderIdempotentReplay = "Idempotent-Replay"
)

const metricsNamespace = "giftsvc"

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by method and route.",
			// POST /seed inserts several hundred rows; keep resolution up to 30s.
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_inflight",
			Help:      "Requests currently being served.",
		},
	)

	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_response_size_bytes",
			Help:      "Response body size by method and route.",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 8), // 256B..4MiB
		},
		[]string{"method", "path"},
	)

	// listTotals observes X-Total-Count on list routes: how many rows a
	// filter matched before paging.
	listTotals = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "list_matched_rows",
			Help:      "Rows matched by list filters before pagination.",
			Buckets:   []float64{0, 1, 5, 15, 50, 100, 250, 555, 1000, 5000},
		},
		[]string{"path"},
	)

	idemReplays = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "idempotent_replays_total",
			Help:      "Responses served from the idempotency store.",
		},
		[]string{"path"},
	)
)

// unmatchedPath labels requests that matched no registered route.
const unmatchedPath = "unmatched"

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize, listTotals, idemReplays)
}

// Metrics returns a Gin middleware recording request counts, latency,
// in-flight requests and response sizes. Successful list responses also
// feed giftsvc_list_matched_rows, and replayed POSTs increment
// giftsvc_idempotent_replays_total.
//
//	r.Use(middleware.Metrics())
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = unmatchedPath
		}
		method := c.Request.Method
		status := c.Writer.Status()

		httpReqs.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		httpLat.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size >= 0 {
			httpRespSize.WithLabelValues(method, path).Observe(float64(size))
		}

		h := c.Writer.Header()
		if status < 300 {
			if n, err := strconv.ParseInt(h.Get(HeaderTotalCount), 10, 64); err == nil {
				listTotals.WithLabelValues(path).Observe(float64(n))
			}
		}
		if h.Get(HeaderIdempotentReplay) == "true" {
			idemReplays.WithLabelValues(path).Inc()
		}
	}
}
