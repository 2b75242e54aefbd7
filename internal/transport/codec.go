// Package transport implements the three MTProto wire framings spec §4.2
// defines on top of the raw TCP byte stream: abridged, intermediate, and
// full (sequenced, CRC32-checked). Each hides its own per-connection state
// (the full codec's send/receive sequence counters) behind the shared
// Codec interface so the Sender never needs to know which framing it was
// built with.
package transport

import (
	"bufio"
	"fmt"
	"io"
)

// ErrFatal wraps a transport error the spec requires the client to treat
// as connection-fatal: drop the TCP connection and reconnect rather than
// attempt to resynchronize (the "-404" abridged/intermediate error and any
// full-codec CRC/seq mismatch).
type ErrFatal struct {
	Err error
}

func (e *ErrFatal) Error() string { return fmt.Sprintf("transport: fatal: %v", e.Err) }
func (e *ErrFatal) Unwrap() error { return e.Err }

// Codec packs an encrypted MTProto payload into one transport frame and
// unpacks a frame read off the wire back into a payload. Pack/Unpack
// operate on one frame per call; callers own the read/write loop.
type Codec interface {
	// Pack writes one framed message to w.
	Pack(w io.Writer, payload []byte) error
	// Unpack reads one framed message from r.
	Unpack(r *bufio.Reader) ([]byte, error)
	// Tag identifies the codec for logging/metrics.
	Tag() string
}

// quickAckMask is set on the length field of an abridged/intermediate
// frame to request the server include the quick-ack flag in its reply
// (spec §4.2); this client never sets it, and no Unpack checks for or
// strips it.
const quickAckMask = 1 << 31
