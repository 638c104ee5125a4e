// metrics.go - Prometheus collectors for the session manager
//
// Collectors live on a private registry so that several managers (tests, embedded use)
// never collide on the global default registerer. Every recording method is safe to call
// on a nil *Metrics, which is how metrics are disabled.

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// Session metrics
	SessionsActive  prometheus.Gauge
	SessionsCreated prometheus.Counter
	SpawnFailures   prometheus.Counter

	// Output metrics
	OutputBytes     prometheus.Counter
	BufferEvictions prometheus.Counter
	HandleErrors    *prometheus.CounterVec
	ProcessExits    *prometheus.CounterVec
	DroppedEvents   prometheus.Counter
}

// New creates a new metrics collector with its own registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tabmux_sessions_active",
			Help: "Number of sessions currently registered",
		}),
		SessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "tabmux_sessions_created_total",
			Help: "Total number of sessions created",
		}),
		SpawnFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "tabmux_spawn_failures_total",
			Help: "Total number of shell processes that failed to start",
		}),
		OutputBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "tabmux_output_bytes_total",
			Help: "Total bytes of pty output appended to session buffers",
		}),
		BufferEvictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "tabmux_buffer_evictions_total",
			Help: "Total number of times a session buffer was truncated",
		}),
		HandleErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tabmux_handle_errors_total",
			Help: "Write or resize failures on live handles",
		}, []string{"op"}),
		ProcessExits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tabmux_process_exits_total",
			Help: "Shell process exits by outcome",
		}, []string{"outcome"}),
		DroppedEvents: factory.NewCounter(prometheus.CounterOpts{
			Name: "tabmux_dropped_events_total",
			Help: "Handle events discarded because their session was already destroyed",
		}),
	}
}

// Registry returns the underlying prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler returns an http.Handler exposing the collectors
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// SessionCreated records a successfully spawned session
func (m *Metrics) SessionCreated() {
	if m == nil {
		return
	}
	m.SessionsCreated.Inc()
	m.SessionsActive.Inc()
}

// SessionDestroyed records a removed session
func (m *Metrics) SessionDestroyed() {
	if m == nil {
		return
	}
	m.SessionsActive.Dec()
}

// SpawnFailed records a shell that could not be started
func (m *Metrics) SpawnFailed() {
	if m == nil {
		return
	}
	m.SpawnFailures.Inc()
}

// Output records bytes appended to a buffer and whether the append evicted old content
func (m *Metrics) Output(n int, evicted bool) {
	if m == nil {
		return
	}
	m.OutputBytes.Add(float64(n))
	if evicted {
		m.BufferEvictions.Inc()
	}
}

// HandleError records a failed write or resize
func (m *Metrics) HandleError(op string) {
	if m == nil {
		return
	}
	m.HandleErrors.WithLabelValues(op).Inc()
}

// ProcessExited records a child exit, split by clean exit, failure and signal
func (m *Metrics) ProcessExited(code, signal int) {
	if m == nil {
		return
	}
	outcome := "ok"
	switch {
	case signal != 0:
		outcome = "signal"
	case code != 0:
		outcome = "error"
	}
	m.ProcessExits.WithLabelValues(outcome).Inc()
}

// EventDropped records an event for a session that no longer exists
func (m *Metrics) EventDropped() {
	if m == nil {
		return
	}
	m.DroppedEvents.Inc()
}
