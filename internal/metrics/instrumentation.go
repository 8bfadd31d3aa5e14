package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Instrumentation exposes the measurement engine's process metrics on a
// private Prometheus registry so the origin server can serve them
// without touching the global default registry.
type Instrumentation struct {
	registry *prometheus.Registry

	fetchCycles   *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	payloadBytes  *prometheus.HistogramVec
	exportCounter *prometheus.CounterVec
}

// NewInstrumentation creates and registers the engine's metrics.
func NewInstrumentation() *Instrumentation {
	registry := prometheus.NewRegistry()

	i := &Instrumentation{
		registry: registry,
		fetchCycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mediabench",
				Name:      "fetch_cycles_total",
				Help:      "Total number of measurement fetch cycles",
			},
			[]string{"provider", "status"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "mediabench",
				Name:      "fetch_duration_seconds",
				Help:      "Wall-clock duration of timed fetch cycles",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		payloadBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "mediabench",
				Name:      "payload_bytes",
				Help:      "Payload size of measured assets in bytes",
				Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
			},
			[]string{"provider"},
		),
		exportCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mediabench",
				Name:      "exports_total",
				Help:      "Total number of report exports",
			},
			[]string{"provider"},
		),
	}

	registry.MustRegister(i.fetchCycles, i.fetchDuration, i.payloadBytes, i.exportCounter)
	return i
}

// Registry returns the registry backing this instrumentation, suitable
// for serving through promhttp.
func (i *Instrumentation) Registry() *prometheus.Registry {
	return i.registry
}

func (i *Instrumentation) recordCycle(provider string, seconds float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	i.fetchCycles.With(prometheus.Labels{"provider": provider, "status": status}).Inc()
	if success {
		i.fetchDuration.With(prometheus.Labels{"provider": provider}).Observe(seconds)
	}
}

func (i *Instrumentation) recordPayload(provider string, bytes int64) {
	i.payloadBytes.With(prometheus.Labels{"provider": provider}).Observe(float64(bytes))
}

func (i *Instrumentation) recordExport(provider string) {
	i.exportCounter.With(prometheus.Labels{"provider": provider}).Inc()
}
