package types

import "encoding/json"

// MetadataRecord is an opaque result payload from a metadata provider.
// The aggregator passes it through unmodified.
type MetadataRecord = json.RawMessage

// EventKind identifies one of the stream event variants.
type EventKind string

const (
	EventSearchStarted     EventKind = "search.started"
	EventProviderStarted   EventKind = "provider.started"
	EventProviderProgress  EventKind = "provider.progress"
	EventProviderCompleted EventKind = "provider.completed"
	EventProviderFailed    EventKind = "provider.failed"
	EventSearchProgress    EventKind = "search.progress"
	EventSearchCompleted   EventKind = "search.completed"
)

// Known reports whether k is one of the seven stream event kinds.
func (k EventKind) Known() bool {
	switch k {
	case EventSearchStarted, EventProviderStarted, EventProviderProgress,
		EventProviderCompleted, EventProviderFailed, EventSearchProgress,
		EventSearchCompleted:
		return true
	}
	return false
}

// EventMeta carries the fields common to every stream event.
type EventMeta struct {
	Event       string  `json:"event"`
	RequestID   string  `json:"request_id"`
	TimestampMS float64 `json:"timestamp_ms,omitempty"`
}

// Meta returns the common event fields.
func (m EventMeta) Meta() EventMeta { return m }

// Event is the closed set of frames the aggregation endpoint emits.
type Event interface {
	Kind() EventKind
	Meta() EventMeta
}

// SearchStarted announces the fan-out: which providers the backend will query.
type SearchStarted struct {
	EventMeta
	Query          string   `json:"query"`
	Locale         string   `json:"locale"`
	ProviderIDs    []string `json:"provider_ids"`
	TotalProviders int      `json:"total_providers"`
}

// ProviderStarted marks one provider as actively searching.
type ProviderStarted struct {
	EventMeta
	ProviderID   string `json:"provider_id"`
	ProviderName string `json:"provider_name"`
}

// ProviderProgress reports how many candidate records a provider has discovered.
type ProviderProgress struct {
	EventMeta
	ProviderID string `json:"provider_id"`
	Discovered int    `json:"discovered"`
}

// ProviderCompleted marks a provider terminal with its result count.
type ProviderCompleted struct {
	EventMeta
	ProviderID  string `json:"provider_id"`
	ResultCount int    `json:"result_count"`
	DurationMS  int64  `json:"duration_ms"`
}

// ProviderFailed marks a provider terminal with an error.
type ProviderFailed struct {
	EventMeta
	ProviderID string `json:"provider_id"`
	ErrorType  string `json:"error_type"`
	Message    string `json:"message"`
}

// SearchProgress is a periodic snapshot of the whole search. Results, when
// present (even empty), replaces the current best known result set wholesale.
type SearchProgress struct {
	EventMeta
	ProvidersCompleted int               `json:"providers_completed"`
	ProvidersFailed    int               `json:"providers_failed"`
	TotalProviders     int               `json:"total_providers"`
	TotalResultsSoFar  int               `json:"total_results_so_far"`
	Results            *[]MetadataRecord `json:"results,omitempty"`
}

// SearchCompleted is the terminal frame carrying the backend's final counts.
type SearchCompleted struct {
	EventMeta
	TotalResults       int               `json:"total_results"`
	ProvidersCompleted int               `json:"providers_completed"`
	ProvidersFailed    int               `json:"providers_failed"`
	DurationMS         int64             `json:"duration_ms"`
	Results            *[]MetadataRecord `json:"results,omitempty"`
}

func (SearchStarted) Kind() EventKind     { return EventSearchStarted }
func (ProviderStarted) Kind() EventKind   { return EventProviderStarted }
func (ProviderProgress) Kind() EventKind  { return EventProviderProgress }
func (ProviderCompleted) Kind() EventKind { return EventProviderCompleted }
func (ProviderFailed) Kind() EventKind    { return EventProviderFailed }
func (SearchProgress) Kind() EventKind    { return EventSearchProgress }
func (SearchCompleted) Kind() EventKind   { return EventSearchCompleted }
