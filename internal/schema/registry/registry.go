// Package registry holds the global {constructor_id -> deserializer}
// dispatch table (spec §4.1 "Output") that the MTProto layer uses to decode
// untyped Object payloads arriving inside rpc_result bodies and updates.
package registry

import (
	"fmt"

	"github.com/telemtp/mtproto-go/internal/tl"
)

// Object is any generated boxed TL value: it knows its own constructor id
// and can re-serialize itself.
type Object interface {
	ConstructorID() uint32
	Encode(w *tl.Writer)
}

// Decoder reads one value of a known constructor's body (the id itself has
// already been consumed by Decode).
type Decoder func(r *tl.Reader) (Object, error)

var table = map[uint32]Decoder{}

// Register adds a constructor id's decoder to the dispatch table. Called
// from generated code's init() functions; panics on a colliding id since
// that can only mean two generated files disagree about the schema.
func Register(id uint32, dec Decoder) {
	if _, exists := table[id]; exists {
		panic(fmt.Sprintf("registry: constructor 0x%08X already registered", id))
	}
	table[id] = dec
}

// Lookup returns the decoder for id, if any. Unknown ids are not an error
// at this layer — per spec §9, an unrecognised constructor must fail only
// the specific decode, never the connection.
func Lookup(id uint32) (Decoder, bool) {
	dec, ok := table[id]
	return dec, ok
}

// Decode reads a constructor id and dispatches to its registered decoder.
func Decode(r *tl.Reader) (Object, error) {
	id, err := r.UInt()
	if err != nil {
		return nil, err
	}
	dec, ok := table[id]
	if !ok {
		return nil, &UnknownConstructorError{ID: id}
	}
	return dec(r)
}

// UnknownConstructorError is returned by Decode for an id with no
// registered decoder. Callers (Sender, MessageBox) must treat this as a
// localized decode failure, not a connection-fatal error.
type UnknownConstructorError struct {
	ID uint32
}

func (e *UnknownConstructorError) Error() string {
	return fmt.Sprintf("registry: unknown constructor 0x%08X", e.ID)
}

// DecodeVector reads a boxed Vector<T> of Objects: the 0x1CB5C415 header,
// an int32 count, then that many dispatched values.
func DecodeVector(r *tl.Reader) ([]Object, error) {
	n, err := r.VectorHeader()
	if err != nil {
		return nil, err
	}
	out := make([]Object, 0, n)
	for i := 0; i < n; i++ {
		obj, err := Decode(r)
		if err != nil {
			return nil, fmt.Errorf("registry: vector element %d: %w", i, err)
		}
		out = append(out, obj)
	}
	return out, nil
}

// EncodeVector writes a boxed Vector<T> header followed by each element's
// own Encode.
func EncodeVector(w *tl.Writer, objs []Object) {
	w.VectorHeader(len(objs))
	for _, o := range objs {
		w.UInt(o.ConstructorID())
		o.Encode(w)
	}
}
