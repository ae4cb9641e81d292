package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RegistrationsRecorded prometheus.Counter
	SubmissionsRejected   prometheus.Counter
	FieldValidationFailed *prometheus.CounterVec
	StoreSize             prometheus.Gauge
	RequestDuration       *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RegistrationsRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "regdesk_registrations_recorded_total",
			Help: "Total number of registrations appended to the store",
		}),
		SubmissionsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "regdesk_submissions_rejected_total",
			Help: "Total number of submissions that failed form validation",
		}),
		FieldValidationFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "regdesk_field_validation_failures_total",
			Help: "Field validation failures by field and failure kind",
		}, []string{"field", "kind"}),
		StoreSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "regdesk_registrations_in_memory",
			Help: "Number of registrations currently held in memory",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "regdesk_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and method",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"route", "method"}),
	}
}

// IncrementRecorded records a successful submission and the new store size.
func (m *Metrics) IncrementRecorded(storeSize int) {
	m.RegistrationsRecorded.Inc()
	m.StoreSize.Set(float64(storeSize))
}

// IncrementRejected records a submission that failed validation.
func (m *Metrics) IncrementRejected() {
	m.SubmissionsRejected.Inc()
}

// IncrementFieldFailure records one failing field verdict.
func (m *Metrics) IncrementFieldFailure(field, kind string) {
	m.FieldValidationFailed.WithLabelValues(field, kind).Inc()
}

// ObserveRequest records the duration of an HTTP request.
// Call with time.Now() taken at the start of the request.
func (m *Metrics) ObserveRequest(route, method string, start time.Time) {
	m.RequestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
}
