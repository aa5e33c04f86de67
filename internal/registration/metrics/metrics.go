package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registration pipeline.
type Metrics struct {
	// Step outcomes by step and result ("ok" or the error code).
	StepOutcome *prometheus.CounterVec

	// Step latency including store round trips.
	StepLatency *prometheus.HistogramVec

	// Current pipeline transitions by target status.
	StatusAdvanced *prometheus.CounterVec
}

// New creates a Metrics instance with all pipeline metrics registered.
func New() *Metrics {
	return &Metrics{
		StepOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "driverhub_registration_step_outcomes_total",
			Help: "Registration step outcomes by step and result",
		}, []string{"step", "result"}),

		StepLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "driverhub_registration_step_duration_seconds",
			Help:    "Duration of registration step operations",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"step"}),

		StatusAdvanced: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "driverhub_registration_status_advanced_total",
			Help: "Status advances by target status",
		}, []string{"status"}),
	}
}

// ObserveStep records one completed step operation.
func (m *Metrics) ObserveStep(step, result string, d time.Duration) {
	if m != nil {
		m.StepOutcome.WithLabelValues(step, result).Inc()
		m.StepLatency.WithLabelValues(step).Observe(d.Seconds())
	}
}

// IncrementAdvance records a real status transition.
func (m *Metrics) IncrementAdvance(status string) {
	if m != nil {
		m.StatusAdvanced.WithLabelValues(status).Inc()
	}
}
