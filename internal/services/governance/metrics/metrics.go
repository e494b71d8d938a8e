// Package metrics exposes prometheus collectors for the governance
// service. Label values use the same wire names the journal and API use.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "signoria"
	subsystem = "governance"
)

// Metrics holds the service collectors behind nil-safe recording methods.
// A nil *Metrics records nothing, so callers never guard their calls.
type Metrics struct {
	registry *prometheus.Registry

	sessionsCreated  *prometheus.CounterVec
	votesCast        *prometheus.CounterVec
	sessionsResolved *prometheus.CounterVec
	eventsPublished  prometheus.Counter
	blockHeight      prometheus.Gauge
}

// New builds a registry with the governance collectors plus the standard
// Go runtime and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		sessionsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_created_total",
			Help:      "Governance sessions opened, by proposal topic.",
		}, []string{"topic"}),
		votesCast: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "votes_cast_total",
			Help:      "Votes recorded on governance sessions, by choice.",
		}, []string{"choice"}),
		sessionsResolved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_resolved_total",
			Help:      "Sessions leaving the pending state, by outcome.",
		}, []string{"outcome"}),
		eventsPublished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "events_published_total",
			Help:      "Journal records relayed to the event stream.",
		}),
		blockHeight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "block_height",
			Help:      "Current block height of the governance chain clock.",
		}),
	}
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SessionCreated counts one opened session.
func (m *Metrics) SessionCreated(topic string) {
	if m == nil {
		return
	}
	m.sessionsCreated.WithLabelValues(topic).Inc()
}

// VoteCast counts one recorded vote.
func (m *Metrics) VoteCast(choice string) {
	if m == nil {
		return
	}
	m.votesCast.WithLabelValues(choice).Inc()
}

// SessionResolved counts one session leaving the pending state.
func (m *Metrics) SessionResolved(outcome string) {
	if m == nil {
		return
	}
	m.sessionsResolved.WithLabelValues(outcome).Inc()
}

// EventPublished counts one journal record handed to the event stream.
func (m *Metrics) EventPublished() {
	if m == nil {
		return
	}
	m.eventsPublished.Inc()
}

// SetBlockHeight records the chain clock's current height.
func (m *Metrics) SetBlockHeight(height uint64) {
	if m == nil {
		return
	}
	m.blockHeight.Set(float64(height))
}
