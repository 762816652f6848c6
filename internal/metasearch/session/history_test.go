package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/metasearch-client/internal/metasearch/types"
)

func TestHistory_RoundTrip(t *testing.T) {
	h := NewHistory(4)

	st := types.NewSearchState()
	st.Query = "dune"
	st.Locale = "en"
	st.TotalResults = 7

	h.Add(st)

	got, ok := h.Get("dune", "en")
	require.True(t, ok)
	assert.Equal(t, 7, got.TotalResults)

	_, ok = h.Get("dune", "de")
	assert.False(t, ok)
}

func TestHistory_ReturnsSnapshots(t *testing.T) {
	h := NewHistory(4)

	st := types.NewSearchState()
	st.Query = "dune"
	st.ProviderStatuses["a"] = types.ProviderStatus{ID: "a", Status: types.StatusCompleted}
	h.Add(st)

	got, ok := h.Get("dune", "")
	require.True(t, ok)
	got.ProviderStatuses["a"] = types.ProviderStatus{ID: "a", Status: types.StatusFailed}

	again, ok := h.Get("dune", "")
	require.True(t, ok)
	assert.Equal(t, types.StatusCompleted, again.ProviderStatuses["a"].Status)
}

func TestHistory_EvictsOldest(t *testing.T) {
	h := NewHistory(2)

	for i := 0; i < 3; i++ {
		st := types.NewSearchState()
		st.Query = fmt.Sprintf("q%d", i)
		h.Add(st)
	}

	assert.Equal(t, 2, h.Len())
	_, ok := h.Get("q0", "")
	assert.False(t, ok)
	_, ok = h.Get("q2", "")
	assert.True(t, ok)
}
