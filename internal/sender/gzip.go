package sender

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/telemtp/mtproto-go/internal/schema/gen"
	"github.com/telemtp/mtproto-go/internal/tl"
)

// gzipThreshold is the minimum serialized body size (spec §4.4) below
// which gzip_packed wrapping is never attempted: small messages rarely
// compress smaller once gzip's own framing overhead is counted.
const gzipThreshold = 512

// maybeGZIP wraps body in a gzip_packed constructor if doing so produces a
// strictly smaller payload, and returns body unchanged otherwise. The
// Sender applies this per outbound message before handing it to
// msg_container packing.
func maybeGZIP(body []byte) []byte {
	if len(body) < gzipThreshold {
		return body
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(body); err != nil {
		return body
	}
	if err := zw.Close(); err != nil {
		return body
	}
	if buf.Len() >= len(body) {
		return body
	}
	packed := &gen.GZIPPacked{PackedData: append([]byte(nil), buf.Bytes()...)}
	w := tl.NewWriter(len(packed.PackedData) + 16)
	w.UInt(packed.ConstructorID())
	packed.Encode(w)
	if w.Bytes() == nil || len(w.Bytes()) >= len(body) {
		return body
	}
	return w.Bytes()
}

// ungzip unwraps a gzip_packed body (detected by its constructor id having
// already been dispatched to *gen.GZIPPacked by the registry) back into
// the plain bytes it originally wrapped.
func ungzip(packed *gen.GZIPPacked) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(packed.PackedData))
	if err != nil {
		return nil, fmt.Errorf("sender: gzip_packed: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("sender: gzip_packed: decompress: %w", err)
	}
	return out, nil
}
