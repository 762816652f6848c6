package session

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lk2023060901/metasearch-client/internal/metasearch/types"
)

const defaultHistorySize = 16

// History keeps the final state of recently completed searches, so a repeated
// search can re-show its last outcome without a round trip. Entries are
// snapshots; they never alias a live session's state.
type History struct {
	cache *lru.Cache[string, types.SearchState]
}

// NewHistory creates a history holding up to size entries.
func NewHistory(size int) *History {
	if size <= 0 {
		size = defaultHistorySize
	}
	cache, _ := lru.New[string, types.SearchState](size)
	return &History{cache: cache}
}

// Add stores the final state of a completed search.
func (h *History) Add(st types.SearchState) {
	h.cache.Add(historyKey(st.Query, st.Locale), st.Clone())
}

// Get returns a copy of the most recent final state for query/locale.
func (h *History) Get(query, locale string) (types.SearchState, bool) {
	st, ok := h.cache.Get(historyKey(query, locale))
	if !ok {
		return types.SearchState{}, false
	}
	return st.Clone(), true
}

// Len returns the number of stored entries.
func (h *History) Len() int {
	return h.cache.Len()
}

func historyKey(query, locale string) string {
	return locale + "\x00" + query
}
