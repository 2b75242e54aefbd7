package sender

import (
	"sync"
	"time"

	"github.com/telemtp/mtproto-go/internal/schema/gen"
)

// ackFlushInterval and ackBatchSize bound how long an inbound content
// message's msg_id waits before being acknowledged: the server treats a
// missing ack as a signal to retransmit, so acks are flushed well before
// any reasonable retransmit timeout (spec §4.4).
const (
	ackFlushInterval = 2 * time.Second
	ackBatchSize     = 32
)

// ackQueue accumulates msg_ids awaiting acknowledgement and produces
// msgs_ack batches either once ackBatchSize is reached or after
// ackFlushInterval has elapsed since the oldest pending id, whichever
// comes first.
type ackQueue struct {
	mu      sync.Mutex
	pending []int64
	oldest  time.Time
}

func (q *ackQueue) add(msgID int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		q.oldest = time.Now()
	}
	q.pending = append(q.pending, msgID)
}

// drain returns a msgs_ack for the pending ids if due (batch size reached
// or flush interval elapsed), clearing the queue; otherwise returns nil.
func (q *ackQueue) drain(force bool) *gen.MsgsAck {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	if !force && len(q.pending) < ackBatchSize && time.Since(q.oldest) < ackFlushInterval {
		return nil
	}
	ack := &gen.MsgsAck{MsgIDs: q.pending}
	q.pending = nil
	return ack
}
