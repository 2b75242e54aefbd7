package transport

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Intermediate implements the intermediate transport: every frame is a
// plain 4-byte little-endian length prefix followed by the payload (spec
// §4.2 "Intermediate"). Slightly more overhead than abridged, but avoids
// abridged's word-count/extended-header branching.
type Intermediate struct{}

// IntermediateNegotiation is sent once, alone, as the first 4 bytes on a
// new TCP connection to select the intermediate transport.
var IntermediateNegotiation = [4]byte{0xEE, 0xEE, 0xEE, 0xEE}

func (Intermediate) Tag() string { return "intermediate" }

func (Intermediate) Pack(w io.Writer, payload []byte) error {
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

func (Intermediate) Unpack(r *bufio.Reader) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	length := binary.LittleEndian.Uint32(hdr[:])

	// A 4-byte payload whose value is small and negative is the server's
	// fatal-error signal rather than a real message (spec §4.2).
	if length == 4 {
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, fmt.Errorf("transport: intermediate: read payload: %w", err)
		}
		code := int32(binary.LittleEndian.Uint32(b[:]))
		if code < 0 {
			return nil, &ErrFatal{Err: fmt.Errorf("server closed connection with error code %d", code)}
		}
		return b[:], nil
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("transport: intermediate: read payload: %w", err)
	}
	return payload, nil
}
