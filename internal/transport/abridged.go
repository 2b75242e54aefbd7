package transport

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Abridged implements the abridged transport: lengths are counted in
// 4-byte words, framed with either a 1-byte or a 0x7F + 3-byte length
// header (spec §4.2 "Abridged"). It is the most compact of the three
// framings and carries no sequence number or checksum of its own.
type Abridged struct{}

// AbridgedNegotiationByte is sent once, alone, as the very first byte on a new TCP
// connection to select the abridged transport.
const AbridgedNegotiationByte = 0xEF

func (Abridged) Tag() string { return "abridged" }

func (Abridged) Pack(w io.Writer, payload []byte) error {
	if len(payload)%4 != 0 {
		return fmt.Errorf("transport: abridged: payload length %d is not a multiple of 4", len(payload))
	}
	words := len(payload) / 4
	if words < 127 {
		if _, err := w.Write([]byte{byte(words)}); err != nil {
			return err
		}
	} else {
		var hdr [4]byte
		hdr[0] = 0x7F
		hdr[1] = byte(words)
		hdr[2] = byte(words >> 8)
		hdr[3] = byte(words >> 16)
		if _, err := w.Write(hdr[:]); err != nil {
			return err
		}
	}
	_, err := w.Write(payload)
	return err
}

func (Abridged) Unpack(r *bufio.Reader) ([]byte, error) {
	first, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if first == 0x04 {
		return nil, readFatalError(r)
	}

	var words int
	if first == 0x7F {
		var rest [3]byte
		if _, err := io.ReadFull(r, rest[:]); err != nil {
			return nil, fmt.Errorf("transport: abridged: read extended length: %w", err)
		}
		words = int(rest[0]) | int(rest[1])<<8 | int(rest[2])<<16
	} else {
		words = int(first)
	}

	payload := make([]byte, words*4)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("transport: abridged: read payload: %w", err)
	}
	return payload, nil
}

// readFatalError reads the 4-byte little-endian negative error code a
// server sends (after a lone 0x04 byte) when it rejects the connection
// outright, e.g. -404 for an unrecognised auth_key_id. Always fatal: the
// caller must close and reconnect, never attempt to keep reading frames.
func readFatalError(r *bufio.Reader) error {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return fmt.Errorf("transport: read error code: %w", err)
	}
	code := int32(binary.LittleEndian.Uint32(b[:]))
	return &ErrFatal{Err: fmt.Errorf("server closed connection with error code %d", code)}
}
