// Package metrics holds the Prometheus collectors for compilation and
// rendering. Collectors are registered on a caller-supplied registry so tests
// and multiple apps in one process do not collide on the global one.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "patchgrid"

// Compile results used as the "result" label.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics groups every collector the renderer reports to.
type Metrics struct {
	// CompilesTotal counts patch compilations by result (success, error).
	CompilesTotal *prometheus.CounterVec

	// SamplesRendered counts samples handed to a sink.
	SamplesRendered prometheus.Counter

	// RenderErrorsTotal counts aborted renders by error kind.
	RenderErrorsTotal *prometheus.CounterVec

	// BlockRenderSeconds measures the time to evaluate one block.
	BlockRenderSeconds prometheus.Histogram

	// ActiveSessions tracks renders in progress.
	ActiveSessions prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CompilesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compiles_total",
			Help:      "Total patch compilations by result",
		}, []string{"result"}),
		SamplesRendered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "samples_total",
			Help:      "Total samples written to a sink",
		}),
		RenderErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "errors_total",
			Help:      "Total aborted renders by error kind",
		}, []string{"kind"}),
		BlockRenderSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "block_seconds",
			Help:      "Time to evaluate one block of samples",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "active_sessions",
			Help:      "Number of renders in progress",
		}),
		gatherer: reg,
	}
}

// ObserveCompile records the outcome of one compilation. A nil receiver is a
// no-op, so callers can run without metrics.
func (m *Metrics) ObserveCompile(err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.CompilesTotal.WithLabelValues(result).Inc()
}

// ObserveBlock records one rendered block.
func (m *Metrics) ObserveBlock(samples int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SamplesRendered.Add(float64(samples))
	m.BlockRenderSeconds.Observe(elapsed.Seconds())
}

// ObserveRenderError records an aborted render.
func (m *Metrics) ObserveRenderError(kind string) {
	if m == nil {
		return
	}
	m.RenderErrorsTotal.WithLabelValues(kind).Inc()
}

// SessionStarted and SessionFinished bracket a render.
func (m *Metrics) SessionStarted() {
	if m != nil {
		m.ActiveSessions.Inc()
	}
}

func (m *Metrics) SessionFinished() {
	if m != nil {
		m.ActiveSessions.Dec()
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
