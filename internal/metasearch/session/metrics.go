package session

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the aggregator on a dedicated
// registry.
type Metrics struct {
	Registry              *prometheus.Registry
	SessionsTotal         prometheus.Counter
	EventsTotal           *prometheus.CounterVec
	FramesDiscardedTotal  prometheus.Counter
	StreamFailuresTotal   *prometheus.CounterVec
	ProviderFailuresTotal *prometheus.CounterVec
}

// NewMetrics constructs and registers all collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	sessions := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "metasearch_sessions_total",
			Help: "Total search sessions started.",
		},
	)
	events := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metasearch_events_total",
			Help: "Total stream events processed, by event kind.",
		},
		[]string{"event"},
	)
	discarded := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "metasearch_frames_discarded_total",
			Help: "Total frames discarded by the validator.",
		},
	)
	streamFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metasearch_stream_failures_total",
			Help: "Total fatal stream failures, by error type.",
		},
		[]string{"error_type"},
	)
	providerFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metasearch_provider_failures_total",
			Help: "Total provider-level failures, by error type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(sessions, events, discarded, streamFailures, providerFailures)

	return &Metrics{
		Registry:              registry,
		SessionsTotal:         sessions,
		EventsTotal:           events,
		FramesDiscardedTotal:  discarded,
		StreamFailuresTotal:   streamFailures,
		ProviderFailuresTotal: providerFailures,
	}
}

// IncSession increments the sessions counter.
func (m *Metrics) IncSession() {
	if m == nil {
		return
	}
	m.SessionsTotal.Inc()
}

// IncEvent increments the events counter for an event kind.
func (m *Metrics) IncEvent(event string) {
	if m == nil {
		return
	}
	m.EventsTotal.WithLabelValues(event).Inc()
}

// IncDiscarded increments the discarded frames counter.
func (m *Metrics) IncDiscarded() {
	if m == nil {
		return
	}
	m.FramesDiscardedTotal.Inc()
}

// IncStreamFailure increments the stream failures counter for an error type.
func (m *Metrics) IncStreamFailure(errorType string) {
	if m == nil {
		return
	}
	m.StreamFailuresTotal.WithLabelValues(errorType).Inc()
}

// IncProviderFailure increments the provider failures counter for an error type.
func (m *Metrics) IncProviderFailure(errorType string) {
	if m == nil {
		return
	}
	m.ProviderFailuresTotal.WithLabelValues(errorType).Inc()
}
