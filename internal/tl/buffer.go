// Package tl implements the wire-level primitives of Telegram's Type
// Language: fixed-width scalar packing, the shared string/bytes framing,
// and the boxed Vector envelope. Generated (de)serializers from
// internal/schema build on top of Writer and Reader instead of touching
// encoding/binary directly.
package tl

import (
	"encoding/binary"
	"fmt"
	"math"
)

// VectorID is the constructor id of a boxed Vector<T>.
const VectorID uint32 = 0x1CB5C415

// Writer accumulates a serialized TL byte stream.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer with cap pre-reserved.
func NewWriter(sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Int writes a little-endian int32.
func (w *Writer) Int(v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	w.buf = append(w.buf, b[:]...)
}

// UInt writes a little-endian uint32.
func (w *Writer) UInt(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// Long writes a little-endian int64.
func (w *Writer) Long(v int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	w.buf = append(w.buf, b[:]...)
}

// ULong writes a little-endian uint64.
func (w *Writer) ULong(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// Double writes a little-endian float64.
func (w *Writer) Double(v float64) {
	w.ULong(math.Float64bits(v))
}

// Raw appends p unframed, with no length prefix or padding. Used for
// message_container entries, whose inner bodies are already fully framed.
func (w *Writer) Raw(p []byte) { w.buf = append(w.buf, p...) }

// Int128 writes 16 raw bytes, unmodified.
func (w *Writer) Int128(v [16]byte) {
	w.buf = append(w.buf, v[:]...)
}

// Int256 writes 32 raw bytes, unmodified.
func (w *Writer) Int256(v [32]byte) {
	w.buf = append(w.buf, v[:]...)
}

// WriteBytes writes the shared string/bytes framing: a short-form single
// length byte when len(p) < 254, else 0xFE followed by a 3-byte
// little-endian length, then the payload, then zero padding out to a
// 4-byte boundary.
func (w *Writer) WriteBytes(p []byte) {
	if len(p) < 254 {
		w.buf = append(w.buf, byte(len(p)))
		w.buf = append(w.buf, p...)
		pad := (4 - (1+len(p))%4) % 4
		w.buf = append(w.buf, make([]byte, pad)...)
		return
	}
	w.buf = append(w.buf, 0xFE, byte(len(p)), byte(len(p)>>8), byte(len(p)>>16))
	w.buf = append(w.buf, p...)
	pad := (4 - len(p)%4) % 4
	w.buf = append(w.buf, make([]byte, pad)...)
}

// String writes a TL string using the same framing as WriteBytes.
func (w *Writer) String(s string) { w.WriteBytes([]byte(s)) }

// Bool writes the constructor id for boolTrue or boolFalse.
func (w *Writer) Bool(v bool) {
	if v {
		w.UInt(BoolTrueID)
	} else {
		w.UInt(BoolFalseID)
	}
}

// VectorHeader writes the boxed Vector constructor id and element count.
// Bare vectors (nested inside another bare context) must not call this;
// callers write the int32 length directly instead.
func (w *Writer) VectorHeader(n int) {
	w.UInt(VectorID)
	w.Int(int32(n))
}

// Reader consumes a serialized TL byte stream sequentially.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps p for sequential decoding.
func NewReader(p []byte) *Reader {
	return &Reader{buf: p}
}

// Remaining returns the number of unconsumed bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// RestBytes returns every unconsumed byte without advancing the cursor,
// used by the update decoders to capture an opaque message body.
func (r *Reader) RestBytes() []byte { return r.buf[r.pos:] }

// TakeBytes advances past and returns n raw bytes.
func (r *Reader) TakeBytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, fmt.Errorf("tl: short read wanting %d bytes, have %d", n, r.Remaining())
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) need(n int) error {
	if r.Remaining() < n {
		return fmt.Errorf("tl: short read wanting %d bytes, have %d", n, r.Remaining())
	}
	return nil
}

// Int reads a little-endian int32.
func (r *Reader) Int() (int32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := int32(binary.LittleEndian.Uint32(r.buf[r.pos:]))
	r.pos += 4
	return v, nil
}

// UInt reads a little-endian uint32, typically a constructor id.
func (r *Reader) UInt() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// Long reads a little-endian int64.
func (r *Reader) Long() (int64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := int64(binary.LittleEndian.Uint64(r.buf[r.pos:]))
	r.pos += 8
	return v, nil
}

// ULong reads a little-endian uint64.
func (r *Reader) ULong() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

// Double reads a little-endian float64.
func (r *Reader) Double() (float64, error) {
	v, err := r.ULong()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// Int128 reads 16 raw bytes.
func (r *Reader) Int128() ([16]byte, error) {
	var out [16]byte
	b, err := r.TakeBytes(16)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

// Int256 reads 32 raw bytes.
func (r *Reader) Int256() ([32]byte, error) {
	var out [32]byte
	b, err := r.TakeBytes(32)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

// Bytes reads a length-prefixed, zero-padded byte string per the shared
// string/bytes framing (switches to the 4-byte length form at 254).
func (r *Reader) Bytes() ([]byte, error) {
	if err := r.need(1); err != nil {
		return nil, err
	}
	first := r.buf[r.pos]
	var n, headerLen int
	if first == 0xFE {
		if err := r.need(4); err != nil {
			return nil, err
		}
		n = int(r.buf[r.pos+1]) | int(r.buf[r.pos+2])<<8 | int(r.buf[r.pos+3])<<16
		headerLen = 4
	} else {
		n = int(first)
		headerLen = 1
	}
	r.pos += headerLen
	data, err := r.TakeBytes(n)
	if err != nil {
		return nil, err
	}
	total := headerLen + n
	pad := (4 - total%4) % 4
	if _, err := r.TakeBytes(pad); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, data)
	return out, nil
}

// String reads a TL string using the same framing as Bytes.
func (r *Reader) String() (string, error) {
	b, err := r.Bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Bool reads the boolTrue/boolFalse constructor id.
func (r *Reader) Bool() (bool, error) {
	id, err := r.UInt()
	if err != nil {
		return false, err
	}
	switch id {
	case BoolTrueID:
		return true, nil
	case BoolFalseID:
		return false, nil
	default:
		return false, fmt.Errorf("tl: constructor 0x%08X is not a Bool", id)
	}
}

// VectorHeader reads and validates the boxed Vector constructor id, then
// returns the element count.
func (r *Reader) VectorHeader() (int, error) {
	id, err := r.UInt()
	if err != nil {
		return 0, err
	}
	if id != VectorID {
		return 0, fmt.Errorf("tl: constructor 0x%08X is not a Vector", id)
	}
	n, err := r.Int()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("tl: negative vector length %d", n)
	}
	return int(n), nil
}

// Bool constructor ids (tor-spec has no analogue; these are fixed by the
// MTProto/TL wire format).
const (
	BoolTrueID  uint32 = 0x997275B5
	BoolFalseID uint32 = 0xBC799737
)
