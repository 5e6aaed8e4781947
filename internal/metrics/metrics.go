// Package metrics exposes prometheus instrumentation for the booking API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	ReservationsTotal  *prometheus.CounterVec
	CancellationsTotal prometheus.Counter
	NotificationsTotal *prometheus.CounterVec
}

// Reservation outcome labels.
const (
	OutcomeReserved  = "reserved"
	OutcomeSlotTaken = "slot_taken"
	OutcomeRejected  = "rejected"
)

func NewCollector(serviceName string) *Collector {
	return &Collector{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		ReservationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "booking",
			Name:      "reservations_total",
			Help:      "Reservation attempts by outcome.",
		}, []string{"outcome"}),

		CancellationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "booking",
			Name:      "cancellations_total",
			Help:      "Total reservations cancelled.",
		}),

		NotificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "booking",
			Name:      "notifications_total",
			Help:      "Confirmation notifications by result.",
		}, []string{"result"}),
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
