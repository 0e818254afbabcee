// Package metrics exposes the Prometheus collectors for the API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "xenith",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xenith",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "xenith",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	movements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xenith",
			Subsystem: "inventory",
			Name:      "movements_total",
			Help:      "Total number of committed inventory movements.",
		},
		[]string{"type"},
	)

	rfidDetections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "xenith",
			Subsystem: "rfid",
			Name:      "detections_total",
			Help:      "Total number of recorded RFID detections.",
		},
	)
)

func init() {
	Registry.MustRegister(httpInFlight, httpRequests, httpDuration, movements, rfidDetections)
}

// IncrementInFlight marks one more request in flight.
func IncrementInFlight() { httpInFlight.Inc() }

// DecrementInFlight marks one request finished.
func DecrementInFlight() { httpInFlight.Dec() }

// RecordHTTPRequest records a handled request.
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordMovement counts a committed inventory movement by type.
func RecordMovement(movementType string) { movements.WithLabelValues(movementType).Inc() }

// RecordRfidDetection counts one recorded tag detection.
func RecordRfidDetection() { rfidDetections.Inc() }

// Handler serves the collected metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
