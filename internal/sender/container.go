package sender

import (
	"github.com/telemtp/mtproto-go/internal/schema/gen"
	"github.com/telemtp/mtproto-go/internal/tl"
)

// maxContainerBytes and maxContainerItems bound a single msg_container per
// spec §4.4: the server rejects anything larger, so the Sender must flush
// before either limit is crossed rather than after.
const (
	maxContainerBytes = 1044448
	maxContainerItems = 100
)

// queuedMessage is one fully-framed inner message (msg_id/seq_no already
// assigned, gzip_packed already applied) waiting to go out, either alone
// or batched into a msg_container with others queued in the same tick.
type queuedMessage struct {
	msgID int64
	seqNo int32
	body  []byte
}

// packContainer combines msgs into a single msg_container body when there
// is more than one, or returns the lone message's body unwrapped when
// there is exactly one (a one-element container wastes 24+ bytes for no
// benefit). Callers must have already split msgs into batches that each
// individually satisfy maxContainerBytes/maxContainerItems; packContainer
// itself does not re-split.
func packContainer(msgs []queuedMessage) []byte {
	if len(msgs) == 1 {
		return msgs[0].body
	}
	raw := make([]gen.RawMessage, len(msgs))
	for i, m := range msgs {
		raw[i] = gen.RawMessage{MsgID: m.msgID, SeqNo: m.seqNo, Bytes: int32(len(m.body)), Body: m.body}
	}
	container := &gen.MsgContainer{Messages: raw}
	w := tl.NewWriter(0)
	w.UInt(container.ConstructorID())
	container.Encode(w)
	return w.Bytes()
}

// batchForContainer splits msgs into groups that each fit within
// maxContainerBytes/maxContainerItems, preserving order. The per-message
// overhead (msg_id + seq_no + bytes-length header, 16 bytes) plus the
// container's own header (8 bytes) are counted toward the byte budget.
func batchForContainer(msgs []queuedMessage) [][]queuedMessage {
	var batches [][]queuedMessage
	var cur []queuedMessage
	curBytes := 8 // msg_container constructor id + count

	flush := func() {
		if len(cur) > 0 {
			batches = append(batches, cur)
			cur = nil
			curBytes = 8
		}
	}

	for _, m := range msgs {
		itemBytes := 16 + len(m.body)
		if len(cur) >= maxContainerItems || curBytes+itemBytes > maxContainerBytes {
			flush()
		}
		cur = append(cur, m)
		curBytes += itemBytes
	}
	flush()
	return batches
}
