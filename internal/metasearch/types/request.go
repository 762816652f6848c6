package types

// SearchRequest describes one logical metadata search. It is immutable once a
// session has been started from it.
type SearchRequest struct {
	Query                 string   `json:"query"`
	Locale                string   `json:"locale"`
	MaxResultsPerProvider int      `json:"max_results_per_provider"`
	ProviderIDs           []string `json:"provider_ids,omitempty"`
	EnableProviders       []string `json:"enable_providers,omitempty"`
	RequestID             string   `json:"request_id"`
}
