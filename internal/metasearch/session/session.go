package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lk2023060901/metasearch-client/internal/metasearch/stream"
	"github.com/lk2023060901/metasearch-client/internal/metasearch/types"
	"github.com/lk2023060901/metasearch-client/internal/pkg/logger"
)

// DefaultProviderTimeout is the watchdog deadline for a single provider.
const DefaultProviderTimeout = 60 * time.Second

// Config controls a Session's transport and supervision behaviour.
type Config struct {
	// Endpoint is the aggregation endpoint URL, e.g.
	// "http://localhost:8080/api/v1/metadata/search".
	Endpoint string

	// Locale is sent with every request.
	Locale string

	// MaxResultsPerProvider caps how many records each provider may return.
	MaxResultsPerProvider int

	// ProviderTimeout is the per-provider watchdog deadline.
	// Zero means DefaultProviderTimeout.
	ProviderTimeout time.Duration

	// MaxFrameBuffer caps the decoder's residual line buffer.
	// Zero means stream.DefaultMaxBuffer.
	MaxFrameBuffer int

	// HTTPClient, when set, replaces the default transport. The client must
	// not enforce an overall request timeout; the stream is long-lived.
	HTTPClient *http.Client
}

// SearchOptions are the caller-supplied knobs for one search.
type SearchOptions struct {
	Query           string
	ProviderIDs     []string
	EnableProviders []string

	// RequestID, when set, is used instead of a generated one, e.g. to
	// correlate the stream with an upstream trace.
	RequestID string
}

// Session drives one metadata search at a time: it builds the request, owns
// the stream read loop and the watchdog supervisor, and funnels every decoded
// event and synthetic signal through the reducer. At most one run is live; a
// new StartSearch tears the previous run down first.
type Session struct {
	cfg     Config
	log     *logger.Logger
	client  *http.Client
	metrics *Metrics
	history *History

	mu     sync.Mutex
	state  types.SearchState
	gen    uint64 // run generation; actions from torn-down runs are dropped
	cancel context.CancelFunc
	sup    *Supervisor
	done   chan struct{}
}

// New creates an idle session.
func New(cfg Config, log *logger.Logger) *Session {
	if log == nil {
		log = logger.L()
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = DefaultProviderTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	done := make(chan struct{})
	close(done)

	return &Session{
		cfg:     cfg,
		log:     log.Named("metasearch"),
		client:  client,
		metrics: NewMetrics(),
		history: NewHistory(defaultHistorySize),
		state:   types.NewSearchState(),
		done:    done,
	}
}

// StartSearch validates and builds the request, cancels any prior run, and
// opens a new stream. An invalid request is silently dropped: nothing is
// dispatched and no error surfaces; callers check preconditions themselves.
func (s *Session) StartSearch(opts SearchOptions) {
	req, err := BuildRequest(opts.Query, s.cfg.Locale, s.cfg.MaxResultsPerProvider,
		opts.ProviderIDs, opts.EnableProviders, opts.RequestID)
	if err != nil {
		s.log.Warn("search request rejected", zap.Error(err))
		return
	}

	// Only one session may be live at a time.
	s.CancelSearch()

	ctx, cancel := context.WithCancel(context.Background())
	sup := NewSupervisor()
	done := make(chan struct{})

	s.mu.Lock()
	s.gen++
	gen := s.gen
	st := types.NewSearchState()
	st.IsSearching = true
	st.Query = req.Query
	st.Locale = req.Locale
	s.state = st
	s.cancel = cancel
	s.sup = sup
	s.done = done
	s.mu.Unlock()

	s.metrics.IncSession()
	s.log.Info("search started",
		zap.String("request_id", req.RequestID),
		zap.String("query", req.Query),
	)

	go s.run(ctx, cancel, gen, req, sup, done)
}

// CancelSearch aborts the transport, cancels all watchdogs and applies the
// cancellation transition. Cancellation is not a failure: no state error is
// set. Safe to call when idle.
func (s *Session) CancelSearch() {
	s.mu.Lock()
	cancel := s.cancel
	sup := s.sup
	s.cancel = nil
	s.sup = nil
	if cancel != nil {
		s.gen++ // orphan the running read loop
		s.state = reduce(s.state, searchCancelled{})
	}
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sup != nil {
		sup.CancelAll()
	}
}

// Reset cancels everything and replaces the state with the initial empty
// state.
func (s *Session) Reset() {
	s.CancelSearch()

	s.mu.Lock()
	s.state = reduce(s.state, resetState{})
	s.mu.Unlock()
}

// State returns a deep copy of the current search state.
func (s *Session) State() types.SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Progress derives completion figures from the current state.
func (s *Session) Progress() types.Progress {
	s.mu.Lock()
	st := s.state
	s.mu.Unlock()

	terminal := st.ProvidersCompleted + st.ProvidersFailed
	p := types.Progress{
		IsComplete: terminal >= st.TotalProviders,
		HasErrors:  st.ProvidersFailed > 0,
	}
	if st.TotalProviders > 0 {
		p.Percentage = int(math.Round(100 * float64(terminal) / float64(st.TotalProviders)))
	}
	return p
}

// Done returns a channel closed when the current run's read loop has exited.
// For an idle session the channel is already closed.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Recent returns the stored final state of a previously completed search for
// the session's locale, if any.
func (s *Session) Recent(query string) (types.SearchState, bool) {
	return s.history.Get(query, s.cfg.Locale)
}

// Metrics exposes the session's collector bundle, e.g. for an exporter.
func (s *Session) Metrics() *Metrics {
	return s.metrics
}

// run is the stream read loop for one generation. It exits on the first
// search.completed frame, on EOF, on a fatal stream error or on cancellation.
func (s *Session) run(ctx context.Context, cancel context.CancelFunc, gen uint64, req *types.SearchRequest, sup *Supervisor, done chan struct{}) {
	defer close(done)
	defer cancel()
	defer sup.CancelAll()

	body, err := s.open(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return // torn down before the stream opened
		}
		s.fail(gen, err)
		return
	}
	defer body.Close()

	dec := stream.NewDecoder(s.cfg.MaxFrameBuffer)
	buf := make([]byte, 4096)

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			frames, decErr := dec.Feed(buf[:n])
			for _, frame := range frames {
				ev, vErr := stream.Validate(frame)
				if vErr != nil {
					if types.Discardable(vErr) {
						s.metrics.IncDiscarded()
						s.log.Warn("frame discarded", zap.Error(vErr))
						continue
					}
					s.fail(gen, vErr)
					return
				}
				if s.apply(gen, ev, sup) {
					// search.completed processed: stop reading immediately,
					// do not wait for transport EOF.
					return
				}
			}
			if decErr != nil {
				s.fail(gen, decErr)
				return
			}
		}
		if readErr != nil {
			if ctx.Err() != nil {
				return // cancelled; the cancel transition was already applied
			}
			if errors.Is(readErr, io.EOF) {
				s.log.Warn("stream ended without terminal frame",
					zap.String("request_id", req.RequestID))
				s.dispatch(gen, streamEnded{})
				return
			}
			s.fail(gen, readErr)
			return
		}
	}
}

// open issues the GET request and returns the response body stream.
func (s *Session) open(ctx context.Context, req *types.SearchRequest) (io.ReadCloser, error) {
	u := s.cfg.Endpoint + "?" + QueryValues(req).Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("aggregation endpoint returned %s", resp.Status)
	}
	return resp.Body, nil
}

// apply dispatches a validated event and performs its side effects: arming
// and cancelling watchdogs, recording history. Returns true once the terminal
// search.completed frame has been processed.
func (s *Session) apply(gen uint64, ev types.Event, sup *Supervisor) (terminal bool) {
	s.metrics.IncEvent(string(ev.Kind()))
	s.dispatch(gen, ev)

	switch e := ev.(type) {
	case types.ProviderStarted:
		id := e.ProviderID
		sup.Schedule(id, s.cfg.ProviderTimeout, func() {
			s.timeoutProvider(gen, id)
		})

	case types.ProviderCompleted:
		sup.Cancel(e.ProviderID)

	case types.ProviderFailed:
		sup.Cancel(e.ProviderID)
		s.metrics.IncProviderFailure(e.ErrorType)

	case types.SearchCompleted:
		sup.CancelAll()
		s.recordHistory(gen)
		return true
	}
	return false
}

// timeoutProvider applies a watchdog fire. The log line and the failure
// metric are gated on the provider actually transitioning, so a late fire on
// an already-terminal provider or a stale generation stays silent.
func (s *Session) timeoutProvider(gen uint64, id string) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	ps, ok := s.state.ProviderStatuses[id]
	if !ok || ps.Status != types.StatusSearching {
		s.mu.Unlock()
		return
	}
	s.state = reduce(s.state, providerTimeout{providerID: id})
	s.mu.Unlock()

	s.log.Warn("provider watchdog fired", zap.String("provider_id", id))
	s.metrics.IncProviderFailure(types.ErrorTypeTimeout)
}

// dispatch funnels one action through the reducer. Dispatches are serialized
// under the session mutex, and actions from a stale generation are dropped so
// a torn-down run can never touch its successor's state.
func (s *Session) dispatch(gen uint64, act action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.state = reduce(s.state, act)
}

// fail applies the fatal-failure transition: the transport message becomes
// the state error and every unfinished provider is forced terminal.
func (s *Session) fail(gen uint64, err error) {
	s.log.Error("search stream failed", zap.Error(err))
	s.metrics.IncStreamFailure(classify(err))
	s.dispatch(gen, streamFailed{message: err.Error()})
}

// recordHistory snapshots the final state of a completed search.
func (s *Session) recordHistory(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	final := s.state.Clone()
	s.mu.Unlock()

	s.history.Add(final)
}

// classify maps a fatal stream error to its taxonomy label.
func classify(err error) string {
	switch {
	case errors.Is(err, types.ErrMalformedFrame):
		return types.ErrorTypeParse
	case errors.Is(err, types.ErrBufferOverflow):
		return types.ErrorTypeOverflow
	default:
		return types.ErrorTypeConnection
	}
}
