// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "interview_service"

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	KeystrokeBatches = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "keystroke_batches_total",
		Help:      "Keystroke batches persisted.",
	})

	KeystrokeEvents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "keystroke_events_total",
		Help:      "Keystroke events persisted.",
	})

	KeystrokeCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "keystroke_cache_lookups_total",
		Help:      "Keystroke log cache lookups by result (hit, miss).",
	}, []string{"result"})

	ReplayAnomalies = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "replay_anomalies_total",
		Help:      "Keystroke events that needed padding or clamping during reconstruction.",
	})

	ActiveStreams = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_websocket_streams",
		Help:      "Open websocket sessions by kind (capture, replay).",
	}, []string{"kind"})

	InterviewTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "interview_transitions_total",
		Help:      "Interview mutations by operation and outcome.",
	}, []string{"operation", "outcome"})

	ExpiryAnnouncements = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "interview_expiry_announcements_total",
		Help:      "interview.expired events published by the sweep.",
	})
)

// Middleware records request count and latency under the matched route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// Outcome labels a mutation result.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
