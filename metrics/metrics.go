package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the service's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pocket_ussd",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pocket_ussd",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	ussdResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pocket_ussd",
			Subsystem: "menu",
			Name:      "responses_total",
			Help:      "USSD responses by action (CON/END) and outcome.",
		},
		[]string{"action", "outcome"},
	)

	ussdDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pocket_ussd",
			Subsystem: "menu",
			Name:      "resolve_duration_seconds",
			Help:      "Time spent resolving one USSD request, store calls included.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		ussdResponses,
		ussdDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware counts requests per matched route.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		httpInFlight.Inc()
		defer httpInFlight.Dec()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		httpRequests.WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).Inc()
		return err
	}
}

// RecordResolve records one resolved USSD request.
func RecordResolve(action, outcome string, duration time.Duration) {
	if outcome == "" {
		outcome = "ok"
	}
	ussdResponses.WithLabelValues(action, outcome).Inc()
	ussdDuration.Observe(duration.Seconds())
}
