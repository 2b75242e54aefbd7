package transport

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"sync"
)

// Full implements the full transport: every frame carries its own total
// length, a per-direction monotonic sequence number, and a CRC32 of
// everything before it (spec §4.2 "Full"). Unlike abridged/intermediate,
// Full can detect corruption and out-of-order delivery on its own, at the
// cost of 12 bytes of overhead per frame.
//
// Send and receive sequence counters are independent and each codec
// instance is bound to one TCP connection, so the mutexes only need to
// guard against the Sender's own concurrent read/write goroutines
// stepping on the same counter.
type Full struct {
	wmu     sync.Mutex
	sendSeq uint32

	rmu     sync.Mutex
	recvSeq uint32
}

func (*Full) Tag() string { return "full" }

func (f *Full) Pack(w io.Writer, payload []byte) error {
	f.wmu.Lock()
	seq := f.sendSeq
	f.sendSeq++
	f.wmu.Unlock()

	total := 4 + 4 + len(payload) + 4
	frame := make([]byte, total)
	binary.LittleEndian.PutUint32(frame[0:4], uint32(total))
	binary.LittleEndian.PutUint32(frame[4:8], seq)
	copy(frame[8:8+len(payload)], payload)
	sum := crc32.ChecksumIEEE(frame[:8+len(payload)])
	binary.LittleEndian.PutUint32(frame[8+len(payload):], sum)

	_, err := w.Write(frame)
	return err
}

func (f *Full) Unpack(r *bufio.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	total := binary.LittleEndian.Uint32(lenBuf[:])
	if total < 12 {
		return nil, &ErrFatal{Err: fmt.Errorf("transport: full: frame length %d below minimum 12", total)}
	}

	rest := make([]byte, total-4)
	if _, err := io.ReadFull(r, rest); err != nil {
		return nil, fmt.Errorf("transport: full: read frame body: %w", err)
	}

	seq := binary.LittleEndian.Uint32(rest[0:4])
	payload := rest[4 : len(rest)-4]
	wantSum := binary.LittleEndian.Uint32(rest[len(rest)-4:])

	gotSum := crc32.ChecksumIEEE(append(lenBuf[:], rest[:len(rest)-4]...))
	if gotSum != wantSum {
		return nil, &ErrFatal{Err: fmt.Errorf("transport: full: crc32 mismatch: got %#x want %#x", gotSum, wantSum)}
	}

	f.rmu.Lock()
	expected := f.recvSeq
	f.recvSeq++
	f.rmu.Unlock()
	if seq != expected {
		return nil, &ErrFatal{Err: fmt.Errorf("transport: full: sequence number %d, expected %d", seq, expected)}
	}

	return payload, nil
}
