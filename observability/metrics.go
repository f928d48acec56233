package observability

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the prometheus instruments the service exports.
type Metrics struct {
	RidesCreated   prometheus.Counter
	RidesCompleted prometheus.Counter
	RidesCancelled prometheus.Counter
	UsersCreated   *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewMetrics registers the instruments under the given namespace on the
// default registry.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		RidesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "rides_created_total", Help: "Total rides created",
		}),
		RidesCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "rides_completed_total", Help: "Total rides completed",
		}),
		RidesCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "rides_cancelled_total", Help: "Total rides cancelled",
		}),
		UsersCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace, Name: "users_created_total", Help: "Total users created by role",
			},
			[]string{"role"},
		),
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests handled",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distribution",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
	}
}

// Middleware returns a Fiber handler that records request counts and
// latencies. The route pattern, not the raw URL, is used as the path label
// to keep cardinality bounded.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		path := c.Route().Path
		labels := []string{c.Method(), path, strconv.Itoa(status)}
		m.httpRequestsTotal.WithLabelValues(labels...).Inc()
		m.httpRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		return err
	}
}
