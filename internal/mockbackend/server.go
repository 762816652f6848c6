package mockbackend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lk2023060901/metasearch-client/internal/metasearch/types"
	"github.com/lk2023060901/metasearch-client/internal/pkg/logger"
)

// ProviderScript directs how the mock backend plays one provider.
type ProviderScript struct {
	ID          string
	Name        string
	Delay       time.Duration // simulated work time before the provider reports
	Results     int           // result_count on completion
	Fail        bool          // report provider.failed instead of completed
	FailType    string
	FailMessage string
	Stall       bool // start the provider but never report back
}

// Script is a playback plan for one search. Stalled providers are excluded
// from the final tallies, which reproduces a backend that under-reports.
type Script struct {
	Providers          []ProviderScript
	Records            []types.MetadataRecord // attached to the final frame
	Heartbeat          bool                   // interleave an SSE comment line
	DropBeforeComplete bool                   // close the stream without a terminal frame
}

// Handler returns a gin handler that streams the scripted search in the
// aggregation endpoint's wire format.
func Handler(script Script, log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.L()
	}
	log = log.Named("mockbackend")

	return func(c *gin.Context) {
		query := c.Query("query")
		if query == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing query"})
			return
		}
		requestID := c.Query("request_id")
		locale := c.Query("locale")

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		log.Info("playing search script",
			zap.String("request_id", requestID),
			zap.String("query", query),
			zap.Int("providers", len(script.Providers)),
		)

		start := time.Now()
		ids := make([]string, 0, len(script.Providers))
		for _, p := range script.Providers {
			ids = append(ids, p.ID)
		}

		writeEvent(c, types.SearchStarted{
			EventMeta:      meta(types.EventSearchStarted, requestID),
			Query:          query,
			Locale:         locale,
			ProviderIDs:    ids,
			TotalProviders: len(ids),
		})

		for _, p := range script.Providers {
			writeEvent(c, types.ProviderStarted{
				EventMeta:    meta(types.EventProviderStarted, requestID),
				ProviderID:   p.ID,
				ProviderName: p.Name,
			})
		}

		if script.Heartbeat {
			fmt.Fprintf(c.Writer, ": heartbeat\n\n")
			c.Writer.Flush()
		}

		var completed, failed, totalResults int
		for _, p := range script.Providers {
			select {
			case <-c.Request.Context().Done():
				return
			case <-time.After(p.Delay):
			}

			switch {
			case p.Stall:
				// Say nothing: the client's watchdog or the final
				// reconciliation has to account for this provider.
			case p.Fail:
				failed++
				writeEvent(c, types.ProviderFailed{
					EventMeta:  meta(types.EventProviderFailed, requestID),
					ProviderID: p.ID,
					ErrorType:  p.FailType,
					Message:    p.FailMessage,
				})
			default:
				writeEvent(c, types.ProviderProgress{
					EventMeta:  meta(types.EventProviderProgress, requestID),
					ProviderID: p.ID,
					Discovered: p.Results,
				})
				completed++
				totalResults += p.Results
				writeEvent(c, types.ProviderCompleted{
					EventMeta:   meta(types.EventProviderCompleted, requestID),
					ProviderID:  p.ID,
					ResultCount: p.Results,
					DurationMS:  p.Delay.Milliseconds(),
				})
			}

			writeEvent(c, types.SearchProgress{
				EventMeta:          meta(types.EventSearchProgress, requestID),
				ProvidersCompleted: completed,
				ProvidersFailed:    failed,
				TotalProviders:     len(ids),
				TotalResultsSoFar:  totalResults,
			})
		}

		if script.DropBeforeComplete {
			return
		}

		final := types.SearchCompleted{
			EventMeta:          meta(types.EventSearchCompleted, requestID),
			TotalResults:       totalResults,
			ProvidersCompleted: completed,
			ProvidersFailed:    failed,
			DurationMS:         time.Since(start).Milliseconds(),
		}
		if script.Records != nil {
			final.Results = &script.Records
		}
		writeEvent(c, final)
	}
}

func meta(kind types.EventKind, requestID string) types.EventMeta {
	return types.EventMeta{
		Event:       string(kind),
		RequestID:   requestID,
		TimestampMS: float64(time.Now().UnixMilli()),
	}
}

func writeEvent(c *gin.Context, ev types.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", data)
	c.Writer.Flush()
}
