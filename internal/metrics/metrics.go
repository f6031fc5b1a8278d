package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AdmissionsTotal counts admission attempts by outcome
	// (admitted, slot_full, conflict, validation, store_closed, error).
	AdmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canteen_admissions_total",
		Help: "Order admission attempts by outcome.",
	}, []string{"outcome"})

	// AdmissionRetries counts transaction retries inside the admission loop.
	AdmissionRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "canteen_admission_retries_total",
		Help: "Admission transaction retries caused by commit conflicts.",
	})

	// TransitionsTotal counts status transitions by target status.
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canteen_status_transitions_total",
		Help: "Order status transitions by target status.",
	}, []string{"status"})

	// AdmissionDuration observes end-to-end admission latency.
	AdmissionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "canteen_admission_duration_seconds",
		Help:    "Order admission latency including retries.",
		Buckets: prometheus.DefBuckets,
	})
)

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
