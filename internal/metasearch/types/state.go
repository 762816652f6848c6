package types

// ProviderState is the lifecycle phase of one provider within a search.
type ProviderState string

const (
	StatusPending   ProviderState = "pending"
	StatusSearching ProviderState = "searching"
	StatusCompleted ProviderState = "completed"
	StatusFailed    ProviderState = "failed"
)

// Terminal reports whether the state can never transition again.
func (s ProviderState) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Error type labels recorded on provider statuses and on session state.
const (
	ErrorTypeTimeout    = "TimeoutError"
	ErrorTypeConnection = "ConnectionError"
	ErrorTypeStream     = "StreamError"
	ErrorTypeParse      = "ParseError"
	ErrorTypeOverflow   = "BufferOverflowError"
)

// ProviderStatus is the consolidated view of one provider within a search.
type ProviderStatus struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Status      ProviderState `json:"status"`
	ResultCount int           `json:"result_count"`
	Discovered  int           `json:"discovered"`
	Error       string        `json:"error,omitempty"`
	ErrorType   string        `json:"error_type,omitempty"`
	DurationMS  int64         `json:"duration_ms,omitempty"`
}

// SearchState is the consolidated view of one search session. Results is
// always the latest snapshot from the stream, replaced wholesale, never
// merged.
type SearchState struct {
	IsSearching        bool                      `json:"is_searching"`
	Query              string                    `json:"query"`
	Locale             string                    `json:"locale"`
	TotalProviders     int                       `json:"total_providers"`
	ProvidersCompleted int                       `json:"providers_completed"`
	ProvidersFailed    int                       `json:"providers_failed"`
	TotalResults       int                       `json:"total_results"`
	ProviderStatuses   map[string]ProviderStatus `json:"provider_statuses"`
	Error              string                    `json:"error,omitempty"`
	Results            []MetadataRecord          `json:"results"`
}

// NewSearchState returns the initial empty state.
func NewSearchState() SearchState {
	return SearchState{
		ProviderStatuses: make(map[string]ProviderStatus),
	}
}

// Clone returns a deep copy safe to hand to consumers. The session never
// aliases its own maps or slices to callers.
func (s SearchState) Clone() SearchState {
	out := s
	out.ProviderStatuses = make(map[string]ProviderStatus, len(s.ProviderStatuses))
	for id, ps := range s.ProviderStatuses {
		out.ProviderStatuses[id] = ps
	}
	if s.Results != nil {
		out.Results = make([]MetadataRecord, len(s.Results))
		copy(out.Results, s.Results)
	}
	return out
}

// Progress is derived from SearchState, never stored.
type Progress struct {
	Percentage int  `json:"percentage"`
	IsComplete bool `json:"is_complete"`
	HasErrors  bool `json:"has_errors"`
}
