package session

import (
	"github.com/lk2023060901/metasearch-client/internal/metasearch/types"
)

// action is any signal the reducer consumes: a decoded stream event or one of
// the synthetic session signals below.
type action interface{}

// providerTimeout is synthesized by a watchdog when a provider never reached
// a terminal state within its deadline.
type providerTimeout struct {
	providerID string
}

// streamEnded signals that the transport reached EOF without a
// search.completed frame.
type streamEnded struct{}

// streamFailed signals a fatal stream failure: a transport error, a parse
// error or a buffer overflow.
type streamFailed struct {
	message string
}

// searchCancelled signals explicit user cancellation. It never surfaces as a
// state error.
type searchCancelled struct{}

// resetState replaces the state with the initial empty state.
type resetState struct{}

// reduce is the aggregation reducer: a pure, total transition from one
// SearchState to the next. The input state is never mutated; every call
// returns a fresh value with its own map and slices.
//
// Terminal provider statuses are monotonic: no signal about an already
// completed or failed provider changes it or re-increments a counter.
func reduce(st types.SearchState, act action) types.SearchState {
	next := st.Clone()

	switch a := act.(type) {
	case types.SearchStarted:
		next.TotalProviders = a.TotalProviders
		for _, id := range a.ProviderIDs {
			if ps, ok := next.ProviderStatuses[id]; ok && ps.Status.Terminal() {
				continue
			}
			next.ProviderStatuses[id] = types.ProviderStatus{
				ID:     id,
				Name:   id,
				Status: types.StatusPending,
			}
		}

	case types.ProviderStarted:
		ps, ok := next.ProviderStatuses[a.ProviderID]
		if ok && ps.Status.Terminal() {
			break
		}
		next.ProviderStatuses[a.ProviderID] = types.ProviderStatus{
			ID:         a.ProviderID,
			Name:       a.ProviderName,
			Status:     types.StatusSearching,
			Discovered: ps.Discovered,
		}

	case types.ProviderProgress:
		ps, ok := next.ProviderStatuses[a.ProviderID]
		if !ok || ps.Status.Terminal() {
			break
		}
		ps.Discovered = a.Discovered
		next.ProviderStatuses[a.ProviderID] = ps

	case types.ProviderCompleted:
		ps, ok := next.ProviderStatuses[a.ProviderID]
		if ok && ps.Status.Terminal() {
			break
		}
		if !ok {
			ps = types.ProviderStatus{ID: a.ProviderID, Name: a.ProviderID}
		}
		ps.Status = types.StatusCompleted
		ps.ResultCount = a.ResultCount
		ps.DurationMS = a.DurationMS
		next.ProviderStatuses[a.ProviderID] = ps
		next.ProvidersCompleted++

	case types.ProviderFailed:
		ps, ok := next.ProviderStatuses[a.ProviderID]
		if ok && ps.Status.Terminal() {
			break
		}
		if !ok {
			ps = types.ProviderStatus{ID: a.ProviderID, Name: a.ProviderID}
		}
		ps.Status = types.StatusFailed
		ps.Error = a.Message
		ps.ErrorType = a.ErrorType
		next.ProviderStatuses[a.ProviderID] = ps
		next.ProvidersFailed++

	case providerTimeout:
		ps, ok := next.ProviderStatuses[a.providerID]
		if !ok || ps.Status != types.StatusSearching {
			break
		}
		ps.Status = types.StatusFailed
		ps.Error = "provider timed out"
		ps.ErrorType = types.ErrorTypeTimeout
		next.ProviderStatuses[a.providerID] = ps
		next.ProvidersFailed++

	case types.SearchProgress:
		next.ProvidersCompleted = a.ProvidersCompleted
		next.ProvidersFailed = a.ProvidersFailed
		next.TotalResults = a.TotalResultsSoFar
		if a.Results != nil {
			next.Results = cloneRecords(*a.Results)
		}

	case types.SearchCompleted:
		next.IsSearching = false
		next.TotalResults = a.TotalResults
		if a.Results != nil {
			next.Results = cloneRecords(*a.Results)
		}
		// The backend's tallies are advisory: a lost provider frame leaves a
		// provider stuck searching even when the reported counts add up.
		// Force the stragglers terminal, then count the statuses themselves.
		failRemaining(&next, types.ErrorTypeConnection, "provider did not report a result")
		next.ProvidersCompleted, next.ProvidersFailed = tally(next.ProviderStatuses)

	case streamEnded:
		next.IsSearching = false
		failRemaining(&next, types.ErrorTypeStream, "stream ended before provider finished")

	case streamFailed:
		next.IsSearching = false
		next.Error = a.message
		failRemaining(&next, types.ErrorTypeConnection, a.message)

	case searchCancelled:
		next.IsSearching = false

	case resetState:
		return types.NewSearchState()
	}

	return next
}

// failRemaining forces every non-terminal provider to failed with the given
// error type, bumping the failure counter for each.
func failRemaining(st *types.SearchState, errorType, message string) {
	for id, ps := range st.ProviderStatuses {
		if ps.Status.Terminal() {
			continue
		}
		ps.Status = types.StatusFailed
		ps.Error = message
		ps.ErrorType = errorType
		st.ProviderStatuses[id] = ps
		st.ProvidersFailed++
	}
}

// tally counts terminal provider statuses.
func tally(statuses map[string]types.ProviderStatus) (completed, failed int) {
	for _, ps := range statuses {
		switch ps.Status {
		case types.StatusCompleted:
			completed++
		case types.StatusFailed:
			failed++
		}
	}
	return completed, failed
}

func cloneRecords(in []types.MetadataRecord) []types.MetadataRecord {
	out := make([]types.MetadataRecord, len(in))
	copy(out, in)
	return out
}
