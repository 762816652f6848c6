package stream

import (
	"bytes"
	"strings"

	"github.com/lk2023060901/metasearch-client/internal/metasearch/types"
)

const dataPrefix = "data: "

// DefaultMaxBuffer caps the residual line buffer at 1 MiB. A server that
// never terminates a line cannot grow the buffer past this bound.
const DefaultMaxBuffer = 1 << 20

// Decoder incrementally splits a raw byte stream into frame payloads. It
// keeps the trailing partial line across Feed calls and recognizes lines
// starting with the SSE data prefix; comment lines and blank separators
// carry no payload and are dropped.
type Decoder struct {
	buf       bytes.Buffer
	maxBuffer int
}

// NewDecoder creates a decoder with the given residual buffer cap.
// Non-positive values fall back to DefaultMaxBuffer.
func NewDecoder(maxBuffer int) *Decoder {
	if maxBuffer <= 0 {
		maxBuffer = DefaultMaxBuffer
	}
	return &Decoder{maxBuffer: maxBuffer}
}

// Feed appends chunk to the residual buffer and returns the payload of every
// complete data line found. When the residual exceeds the buffer cap before
// a newline arrives, Feed returns ErrBufferOverflow alongside any frames
// decoded from the same chunk; the decoder is unusable afterwards.
func (d *Decoder) Feed(chunk []byte) ([]string, error) {
	d.buf.Write(chunk)

	var frames []string
	for {
		raw := d.buf.Bytes()
		i := bytes.IndexByte(raw, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimSuffix(string(raw[:i]), "\r")
		d.buf.Next(i + 1)

		if strings.HasPrefix(line, dataPrefix) {
			frames = append(frames, strings.TrimPrefix(line, dataPrefix))
		}
	}

	if d.buf.Len() > d.maxBuffer {
		return frames, types.ErrBufferOverflow
	}
	return frames, nil
}

// Buffered returns the size of the residual (incomplete) line.
func (d *Decoder) Buffered() int {
	return d.buf.Len()
}
