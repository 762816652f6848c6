package stream

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/lk2023060901/metasearch-client/internal/metasearch/types"
)

// Validate structurally checks a decoded frame payload and decodes it into
// one of the typed stream events.
//
// Malformed JSON is fatal (wraps ErrMalformedFrame): the caller must abort
// the stream. A parseable object with an unknown event string, a missing
// request_id, a non-numeric timestamp_ms or a mistyped field is rejected
// with a discardable error: the caller logs it and the stream continues.
func Validate(payload string) (types.Event, error) {
	if !gjson.Valid(payload) {
		return nil, types.NewFrameError(payload, types.ErrMalformedFrame)
	}

	kind := types.EventKind(gjson.Get(payload, "event").String())
	if !kind.Known() {
		return nil, types.NewFrameError(payload, types.ErrUnknownEvent)
	}

	rid := gjson.Get(payload, "request_id")
	if !rid.Exists() || rid.Type != gjson.String {
		return nil, types.NewFrameError(payload, types.ErrMissingRequestID)
	}

	if ts := gjson.Get(payload, "timestamp_ms"); ts.Exists() && ts.Type != gjson.Number {
		return nil, types.NewFrameError(payload, types.ErrBadTimestamp)
	}

	ev, err := decode(kind, []byte(payload))
	if err != nil {
		// gjson already vouched for the JSON itself, so an unmarshal failure
		// here is a field type mismatch, not a parse error.
		return nil, types.NewFrameError(payload, fmt.Errorf("%w: %v", types.ErrBadField, err))
	}
	return ev, nil
}

func decode(kind types.EventKind, payload []byte) (types.Event, error) {
	var ev types.Event
	var err error

	switch kind {
	case types.EventSearchStarted:
		var e types.SearchStarted
		err = json.Unmarshal(payload, &e)
		ev = e
	case types.EventProviderStarted:
		var e types.ProviderStarted
		err = json.Unmarshal(payload, &e)
		ev = e
	case types.EventProviderProgress:
		var e types.ProviderProgress
		err = json.Unmarshal(payload, &e)
		ev = e
	case types.EventProviderCompleted:
		var e types.ProviderCompleted
		err = json.Unmarshal(payload, &e)
		ev = e
	case types.EventProviderFailed:
		var e types.ProviderFailed
		err = json.Unmarshal(payload, &e)
		ev = e
	case types.EventSearchProgress:
		var e types.SearchProgress
		err = json.Unmarshal(payload, &e)
		ev = e
	case types.EventSearchCompleted:
		var e types.SearchCompleted
		err = json.Unmarshal(payload, &e)
		ev = e
	default:
		return nil, types.ErrUnknownEvent
	}

	if err != nil {
		return nil, err
	}
	return ev, nil
}
