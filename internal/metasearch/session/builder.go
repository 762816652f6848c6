package session

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/lk2023060901/metasearch-client/internal/metasearch/types"
)

const maxQueryLength = 1000

var providerIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,100}$`)

// BuildRequest validates the raw inputs and produces the immutable request
// descriptor a session opens its stream from. The query is trimmed; an empty
// or over-long query is rejected. Provider id lists are sanitized entry by
// entry; a list that ends up empty means "no filter" and is dropped. A
// caller-supplied request id is kept; when empty, one is generated.
func BuildRequest(query, locale string, maxResults int, providerIDs, enableProviders []string, requestID string) (*types.SearchRequest, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, types.ErrEmptyQuery
	}
	if utf8.RuneCountInString(query) > maxQueryLength {
		return nil, types.ErrQueryTooLong
	}

	rid := strings.TrimSpace(requestID)
	if rid == "" {
		rid = newRequestID()
	}

	return &types.SearchRequest{
		Query:                 query,
		Locale:                locale,
		MaxResultsPerProvider: maxResults,
		ProviderIDs:           sanitizeIDs(providerIDs),
		EnableProviders:       sanitizeIDs(enableProviders),
		RequestID:             rid,
	}, nil
}

// sanitizeIDs trims each entry and keeps only well-formed provider ids.
func sanitizeIDs(ids []string) []string {
	var out []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if providerIDPattern.MatchString(id) {
			out = append(out, id)
		}
	}
	return out
}

// newRequestID combines a clock component with a random component so the
// backend can correlate every frame of one search.
func newRequestID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// QueryValues renders the request as the aggregation endpoint's query
// parameters.
func QueryValues(req *types.SearchRequest) url.Values {
	v := url.Values{}
	v.Set("query", req.Query)
	v.Set("locale", req.Locale)
	v.Set("max_results_per_provider", strconv.Itoa(req.MaxResultsPerProvider))
	if len(req.ProviderIDs) > 0 {
		v.Set("provider_ids", strings.Join(req.ProviderIDs, ","))
	}
	if len(req.EnableProviders) > 0 {
		v.Set("enable_providers", strings.Join(req.EnableProviders, ","))
	}
	v.Set("request_id", req.RequestID)
	return v
}
