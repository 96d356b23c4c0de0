// Package monitoring exposes Prometheus metrics for the broker plus a
// JSON snapshot consumed by the health endpoint.
package monitoring

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is a valid
// no-op receiver so components can run without a collector in tests.
type Metrics struct {
	// WebSocket metrics
	Connections prometheus.Gauge
	Messages    *prometheus.CounterVec

	// Pairing metrics
	PairingAttempts *prometheus.CounterVec
	CodeRotations   prometheus.Counter
	BindingActive   prometheus.Gauge

	// Relay metrics
	RelayForwarded *prometheus.CounterVec
	RelayDropped   prometheus.Counter

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	// Snapshot counters for the JSON health API
	connections   atomic.Int64
	relayedTotal  atomic.Int64
	droppedTotal  atomic.Int64
	pairingsTotal atomic.Int64
	rejectedTotal atomic.Int64
	bindingActive atomic.Bool
}

// Snapshot holds current values for the health endpoint
type Snapshot struct {
	Connections   int64   `json:"connections"`
	BindingActive bool    `json:"binding_active"`
	PairingsTotal int64   `json:"pairings_total"`
	RejectedTotal int64   `json:"pairings_rejected_total"`
	RelayedTotal  int64   `json:"messages_relayed_total"`
	DroppedTotal  int64   `json:"messages_dropped_total"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// New creates a metrics collector registered on the default registry
func New() *Metrics {
	return newWith(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector on a dedicated registry, used by
// tests to avoid duplicate registration panics
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	return newWith(reg)
}

func newWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		startTime: time.Now(),

		Connections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "broker_ws_connections",
			Help: "Current number of live WebSocket connections",
		}),
		Messages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "broker_ws_messages_total",
			Help: "Inbound WebSocket frames by event name",
		}, []string{"event"}),

		PairingAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "broker_pairing_attempts_total",
			Help: "Pairing attempts by outcome",
		}, []string{"outcome"}),
		CodeRotations: factory.NewCounter(prometheus.CounterOpts{
			Name: "broker_pairing_rotations_total",
			Help: "Number of pairing code rotations after successful pairings",
		}),
		BindingActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "broker_binding_active",
			Help: "1 when an application is bound to the simulator",
		}),

		RelayForwarded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "broker_relay_forwarded_total",
			Help: "Relayed messages by direction",
		}, []string{"direction"}),
		RelayDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "broker_relay_dropped_total",
			Help: "Messages silently dropped with no bound peer",
		}),

		Uptime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "broker_uptime_seconds",
			Help: "Process uptime in seconds",
		}),
	}
}

// ConnectionOpened tracks a new websocket
func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.Connections.Inc()
	m.connections.Add(1)
}

// ConnectionClosed tracks a websocket teardown
func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.Connections.Dec()
	m.connections.Add(-1)
}

// FrameReceived counts one inbound frame
func (m *Metrics) FrameReceived(event string) {
	if m == nil {
		return
	}
	m.Messages.WithLabelValues(event).Inc()
}

// PairingSucceeded records a successful pairing and code rotation
func (m *Metrics) PairingSucceeded() {
	if m == nil {
		return
	}
	m.PairingAttempts.WithLabelValues("success").Inc()
	m.CodeRotations.Inc()
	m.BindingActive.Set(1)
	m.pairingsTotal.Add(1)
	m.bindingActive.Store(true)
}

// PairingRejected records a failed pairing attempt
func (m *Metrics) PairingRejected(outcome string) {
	if m == nil {
		return
	}
	m.PairingAttempts.WithLabelValues(outcome).Inc()
	m.rejectedTotal.Add(1)
}

// BindingCleared records loss of the active binding
func (m *Metrics) BindingCleared() {
	if m == nil {
		return
	}
	m.BindingActive.Set(0)
	m.bindingActive.Store(false)
}

// Relayed counts one forwarded message
func (m *Metrics) Relayed(direction string) {
	if m == nil {
		return
	}
	m.RelayForwarded.WithLabelValues(direction).Inc()
	m.relayedTotal.Add(1)
}

// Dropped counts one silently discarded message
func (m *Metrics) Dropped() {
	if m == nil {
		return
	}
	m.RelayDropped.Inc()
	m.droppedTotal.Add(1)
}

// GetSnapshot returns current values for the JSON health API
func (m *Metrics) GetSnapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	uptime := time.Since(m.startTime).Seconds()
	m.Uptime.Set(uptime)

	return Snapshot{
		Connections:   m.connections.Load(),
		BindingActive: m.bindingActive.Load(),
		PairingsTotal: m.pairingsTotal.Load(),
		RejectedTotal: m.rejectedTotal.Load(),
		RelayedTotal:  m.relayedTotal.Load(),
		DroppedTotal:  m.droppedTotal.Load(),
		UptimeSeconds: uptime,
	}
}
