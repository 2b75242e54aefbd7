// Package updates implements MessageBox, the update-gap reconciliation
// state machine of spec §4.5: tracking the common pts/qts/date/seq and a
// per-channel pts, detecting gaps via pts_count, and driving
// getDifference/getChannelDifference catch-up calls when a gap can't be
// closed by waiting for the missing update to arrive out of order.
package updates

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/telemtp/mtproto-go/internal/schema/gen"
	"github.com/telemtp/mtproto-go/internal/schema/registry"
)

// possibleGapDeadline is how long MessageBox waits for an out-of-order
// update to arrive and close a small gap before concluding a real gap
// exists and calling getDifference (spec §4.5).
const possibleGapDeadline = 500 * time.Millisecond

// Getter fetches the authoritative state (pts/qts/date/seq and new
// messages/updates since that point) from the server. Implemented by a
// thin adapter over Sender.Invoke for the updates.getDifference and
// updates.getChannelDifference RPCs; kept as an interface so MessageBox's
// gap logic is independently testable with a fake.
type Getter interface {
	GetDifference(ctx context.Context, pts, qts, date int32) (*gen.DifferenceFull, *gen.DifferenceEmpty, *gen.DifferenceTooLong, error)
	GetChannelDifference(ctx context.Context, channelID int64, pts int32) (*gen.ChannelDifferenceFull, *gen.ChannelDifferenceEmpty, *gen.ChannelDifferenceTooLong, error)
}

// Sink receives fully reconciled, gap-free updates and entity batches in
// arrival order.
type Sink interface {
	HandleUpdate(u gen.Update)
	// HandleMessage delivers one new message carried by a getDifference/
	// getChannelDifference reply. The Message TL type itself is out of
	// this curated schema's scope (see DESIGN.md), so obj is the opaque
	// registry.Object the decoder produced; callers that need the fields
	// decode it further themselves.
	HandleMessage(obj registry.Object)
	HandleGapReset(pts int32)
}

// pendingGap records an update seen out of order: pts_count implies a
// hole before it that hasn't yet been observed to fill.
type pendingGap struct {
	update   gen.Update
	wantPts  int32
	deadline time.Time
}

// channelState is the per-channel bookkeeping spec §4.5 requires in
// addition to the common pts/qts/date/seq.
type channelState struct {
	pts     int32
	pending []pendingGap
}

// MessageBox is the common (non-channel) and per-channel update
// reconciliation state for one client session.
type MessageBox struct {
	mu sync.Mutex

	pts  int32
	qts  int32
	date int32
	seq  int32

	pending  []pendingGap
	channels map[int64]*channelState

	getter  Getter
	sink    Sink
	logger  *slog.Logger
	metrics *Metrics

	gapTimer *time.Timer
}

// NewMessageBox constructs a MessageBox seeded with the pts/qts/date/seq
// returned by the initial updates.getState call.
func NewMessageBox(pts, qts, date, seq int32, getter Getter, sink Sink, logger *slog.Logger) *MessageBox {
	if logger == nil {
		logger = slog.Default()
	}
	return &MessageBox{
		pts:      pts,
		qts:      qts,
		date:     date,
		seq:      seq,
		channels: make(map[int64]*channelState),
		getter:   getter,
		sink:     sink,
		logger:   logger,
		metrics:  NewMetrics(nil),
	}
}

// SetMetrics attaches a Metrics instance registered against a live
// prometheus.Registerer, replacing the no-op default NewMessageBox sets
// up. Call before HandlePush/ApplyChannelUpdate see any traffic.
func (b *MessageBox) SetMetrics(m *Metrics) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.metrics = m
}

// State returns the common pts/qts/date/seq, for persistence across
// restarts.
func (b *MessageBox) State() (pts, qts, date, seq int32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pts, b.qts, b.date, b.seq
}

// HandlePush processes one Updates envelope arrived from Sender.Updates(),
// converting the short forms to their long-form equivalents and applying
// seq/pts gap detection before forwarding individual Update values to the
// Sink.
func (b *MessageBox) HandlePush(ctx context.Context, env gen.Updates) {
	switch v := env.(type) {
	case *gen.UpdatesTooLong:
		b.startCommonCatchUp(ctx)

	case *gen.UpdateShort:
		b.applyDateAdvance(v.Date)
		b.applyCommonUpdate(ctx, v.Update)

	case *gen.UpdateShortMessage:
		b.applyDateAdvance(v.Date)
		b.applyPtsWithGapCheck(ctx, v.Pts, v.PtsCount, nil)

	case *gen.UpdatesCombined:
		b.applySeq(ctx, v.SeqStart, v.Seq)
		b.applyDateAdvance(v.Date)
		for _, u := range v.UpdatesList {
			b.applyCommonUpdate(ctx, u)
		}

	case *gen.UpdatesEnvelope:
		b.applySeq(ctx, v.Seq, v.Seq)
		b.applyDateAdvance(v.Date)
		for _, u := range v.UpdatesList {
			b.applyCommonUpdate(ctx, u)
		}
	}
}

// applyDateAdvance enforces spec §4.5's "date always advances" invariant:
// an update batch with a date older than the last seen one is ignored for
// dating purposes (it can still carry valid pts progress).
func (b *MessageBox) applyDateAdvance(date int32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if date > b.date {
		b.date = date
	}
}

// applySeq validates a combined update batch's seq_start/seq against the
// common seq counter, triggering a common getDifference on a detected gap.
func (b *MessageBox) applySeq(ctx context.Context, seqStart, seq int32) {
	b.mu.Lock()
	expected := b.seq + 1
	if seqStart != 0 && seqStart != expected {
		b.mu.Unlock()
		b.startCommonCatchUp(ctx)
		return
	}
	b.seq = seq
	b.mu.Unlock()
}

// applyCommonUpdate routes one Update to its pts-bearing handler when it
// carries pts/pts_count, or straight to the Sink when it doesn't (spec
// §4.5: not every update participates in the pts sequence).
func (b *MessageBox) applyCommonUpdate(ctx context.Context, u gen.Update) {
	switch v := u.(type) {
	case *gen.UpdateNewMessage:
		b.applyPtsWithGapCheck(ctx, v.Pts, v.PtsCount, u)
	case *gen.UpdateDeleteMessages:
		b.applyPtsWithGapCheck(ctx, v.Pts, v.PtsCount, u)
	case *gen.UpdateNewChannelMessage:
		// Channel-scoped pts, unrelated to the common counter: delivered
		// to the Sink directly, with no per-channel pts check here.
		b.sink.HandleUpdate(u)
	default:
		b.sink.HandleUpdate(u)
	}
}

// applyPtsWithGapCheck is the common-pts state machine (spec §4.5): if
// newPts == b.pts+ptsCount, the update applies cleanly; if newPts is
// below b.pts+ptsCount, it's a duplicate and dropped; if newPts is above
// it, a gap exists
// and catch-up is scheduled after possibleGapDeadline in case the missing
// update is simply arriving out of order.
func (b *MessageBox) applyPtsWithGapCheck(ctx context.Context, newPts, ptsCount int32, u gen.Update) {
	b.mu.Lock()
	switch {
	case newPts == b.pts+ptsCount:
		b.pts = newPts
		b.mu.Unlock()
		if u != nil {
			b.sink.HandleUpdate(u)
		}
		return
	case newPts < b.pts+ptsCount:
		b.mu.Unlock()
		return // duplicate, already applied
	default:
		// gap: newPts > b.pts+ptsCount
		if u != nil {
			b.pending = append(b.pending, pendingGap{update: u, wantPts: newPts, deadline: time.Now().Add(possibleGapDeadline)})
		}
		b.metrics.incGap()
		b.scheduleGapCheckLocked(ctx)
		b.mu.Unlock()
	}
}

func (b *MessageBox) scheduleGapCheckLocked(ctx context.Context) {
	if b.gapTimer != nil {
		return
	}
	b.gapTimer = time.AfterFunc(possibleGapDeadline, func() {
		b.mu.Lock()
		b.gapTimer = nil
		stillGapped := len(b.pending) > 0
		b.mu.Unlock()
		if stillGapped {
			b.startCommonCatchUp(ctx)
		}
	})
}

// startCommonCatchUp runs updates.getDifference to close a detected
// common-pts/seq gap, applying the server's authoritative new messages,
// updates, and state.
func (b *MessageBox) startCommonCatchUp(ctx context.Context) {
	b.mu.Lock()
	pts, qts, date := b.pts, b.qts, b.date
	b.pending = nil
	metrics := b.metrics
	b.mu.Unlock()
	metrics.incCatchUp("common")

	full, empty, tooLong, err := b.getter.GetDifference(ctx, pts, qts, date)
	if err != nil {
		b.logger.Error("getDifference failed", "error", err)
		return
	}
	switch {
	case tooLong != nil:
		metrics.incResyncTooLong()
		b.mu.Lock()
		b.pts = tooLong.Pts
		b.mu.Unlock()
		b.sink.HandleGapReset(tooLong.Pts)
		return
	case empty != nil:
		b.mu.Lock()
		b.date, b.seq = empty.Date, empty.Seq
		b.mu.Unlock()
		return
	case full != nil:
		for _, obj := range full.NewMessages {
			b.sink.HandleMessage(obj)
		}
		for _, u := range full.OtherUpdates {
			b.sink.HandleUpdate(u)
		}
		b.mu.Lock()
		b.pts, b.qts, b.date, b.seq = full.State.Pts, full.State.Qts, full.State.Date, full.State.Seq
		b.mu.Unlock()
		if full.IsSlice {
			// An intermediate state: more history remains, so fetch the
			// next slice from the state just applied.
			b.startCommonCatchUp(ctx)
		}
	}
}
