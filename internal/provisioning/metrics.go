package provisioning

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts provisioning calls. Each instance owns its registry so
// the CLI can dump it to a node-exporter textfile after a run.
type Metrics struct {
	registry *prometheus.Registry
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rejected prometheus.Counter
	inFlight prometheus.Gauge
}

// NewMetrics registers the provisioning collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "galley",
			Subsystem: "provisioning",
			Name:      "calls_total",
			Help:      "Plan, apply and destroy calls by outcome.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "galley",
			Subsystem: "provisioning",
			Name:      "call_duration_seconds",
			Help:      "Wall-clock duration of provisioning calls.",
			Buckets:   []float64{5, 15, 30, 60, 120, 300, 600, 1200, 1800},
		}, []string{"operation"}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "galley",
			Subsystem: "provisioning",
			Name:      "rejected_total",
			Help:      "Calls refused because the session already had one in flight.",
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "galley",
			Subsystem: "provisioning",
			Name:      "in_flight",
			Help:      "Provisioning calls currently running.",
		}),
	}
	m.registry.MustRegister(m.calls, m.duration, m.rejected, m.inFlight)
	return m
}

// Registry exposes the collectors for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observe(op Operation, status Status, d time.Duration) {
	m.calls.WithLabelValues(string(op), string(status)).Inc()
	m.duration.WithLabelValues(string(op)).Observe(d.Seconds())
}

// WriteTextfile writes the current values in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
