package jobstore

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports job store activity to Prometheus. A nil *Metrics is valid and records nothing.
type Metrics struct {
	operations  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	installs    prometheus.Counter
	managedJobs prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg
// (prometheus.DefaultRegisterer when nil).
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "jobstore_operations_total",
				Help:      "Job store operations by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "jobstore_operation_duration_seconds",
				Help:      "Duration of job store read-modify-write cycles",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"op"},
		),
		installs: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "jobstore_installs_total",
				Help:      "Number of crontab replacements installed",
			},
		),
		managedJobs: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "jobstore_identified_jobs",
				Help:      "Identifier markers present in the last crontab read",
			},
		),
	}

	reg.MustRegister(m.operations, m.duration, m.installs, m.managedJobs)

	return m
}

func (m *Metrics) observe(op string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, outcome(err)).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Metrics) installed() {
	if m == nil {
		return
	}
	m.installs.Inc()
}

func (m *Metrics) setIdentified(n int) {
	if m == nil {
		return
	}
	m.managedJobs.Set(float64(n))
}
