package types

import (
	"errors"
	"fmt"
)

var (
	// Request validation errors
	ErrEmptyQuery   = errors.New("empty search query")
	ErrQueryTooLong = errors.New("search query too long")

	// Stream errors (fatal: the session aborts)
	ErrBufferOverflow = errors.New("frame buffer limit exceeded")
	ErrMalformedFrame = errors.New("malformed event frame")

	// Frame validation errors (non-fatal: the frame is discarded)
	ErrUnknownEvent     = errors.New("unknown event type")
	ErrMissingRequestID = errors.New("missing request id")
	ErrBadTimestamp     = errors.New("non-numeric timestamp")
	ErrBadField         = errors.New("invalid field type")
)

// FrameError annotates a frame rejection with the offending payload prefix.
type FrameError struct {
	Payload string
	Err     error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %q: %v", e.Payload, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// NewFrameError wraps err with a truncated copy of the payload for logging.
func NewFrameError(payload string, err error) *FrameError {
	const max = 120
	if len(payload) > max {
		payload = payload[:max] + "..."
	}
	return &FrameError{Payload: payload, Err: err}
}

// Discardable reports whether a frame validation error allows the stream to
// continue without the frame. Malformed JSON is never discardable.
func Discardable(err error) bool {
	return errors.Is(err, ErrUnknownEvent) ||
		errors.Is(err, ErrMissingRequestID) ||
		errors.Is(err, ErrBadTimestamp) ||
		errors.Is(err, ErrBadField)
}
