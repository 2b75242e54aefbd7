package mtproto

import (
	"sync"
	"time"
)

// MsgIDGenerator produces strictly increasing client message ids of the
// form (unix_seconds << 32) | (nanoseconds_within_second << 2), per spec
// §4.2: the low two bits are always clear, identifying the message as
// client-originated content (the server's own replies always set them to
// a nonzero remainder). Monotonicity is enforced by bumping into the next
// slot when the clock hasn't advanced since the previous call, rather than
// trusting wall-clock resolution alone.
type MsgIDGenerator struct {
	mu   sync.Mutex
	last int64
}

// Next returns the next msg_id, guaranteed strictly greater than every
// previous value this generator has returned. delta is the learned
// client/server clock offset (State.clockDelta); the id must embed
// unix_time_with_offset, the same corrected time the skew check validates
// it against, or the correction never reaches the ids the server sees.
func (g *MsgIDGenerator) Next(delta time.Duration) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().Add(delta)
	id := now.Unix()<<32 | int64(now.Nanosecond())<<2&0xFFFFFFFC

	if id <= g.last {
		id = (g.last + 4) &^ 3
	}
	g.last = id
	return id
}

// Observe records a msg_id seen from elsewhere (e.g. the server's own
// responses share the same 64-bit id space) so Next never generates a
// value at or below it.
func (g *MsgIDGenerator) Observe(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id > g.last {
		g.last = id
	}
}
