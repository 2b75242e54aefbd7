package updates

import (
	"context"
	"time"

	"github.com/telemtp/mtproto-go/internal/schema/gen"
)

// ApplyChannelUpdate runs the same pts state machine as the common
// update stream, scoped to one channel's own pts counter (spec §4.5
// "per-channel gap catch-up"). A channel whose access hash the caller
// doesn't yet have must not reach this method at all: the caller is
// expected to abort to a full getChannelDifference fetch (or skip the
// update) before ever constructing a channelState for it, per the
// peer-hash prerequisite invariant.
func (b *MessageBox) ApplyChannelUpdate(ctx context.Context, channelID int64, newPts, ptsCount int32, u gen.Update) {
	b.mu.Lock()
	cs, ok := b.channels[channelID]
	if !ok {
		cs = &channelState{pts: newPts - ptsCount}
		b.channels[channelID] = cs
	}

	switch {
	case newPts == cs.pts+ptsCount:
		cs.pts = newPts
		b.mu.Unlock()
		if u != nil {
			b.sink.HandleUpdate(u)
		}
		return
	case newPts < cs.pts+ptsCount:
		b.mu.Unlock()
		return
	default:
		if u != nil {
			cs.pending = append(cs.pending, pendingGap{update: u, wantPts: newPts, deadline: time.Now().Add(possibleGapDeadline)})
		}
		b.metrics.incGap()
		b.mu.Unlock()
		time.AfterFunc(possibleGapDeadline, func() {
			b.mu.Lock()
			stillGapped := len(cs.pending) > 0
			b.mu.Unlock()
			if stillGapped {
				b.startChannelCatchUp(ctx, channelID)
			}
		})
	}
}

// ResetChannel forces a channel's pts to a known value, used when
// updateChannelTooLong arrives without a pts or after an explicit
// getChannelDifference("channelDifferenceTooLong") reset.
func (b *MessageBox) ResetChannel(channelID int64, pts int32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cs, ok := b.channels[channelID]
	if !ok {
		cs = &channelState{}
		b.channels[channelID] = cs
	}
	cs.pts = pts
	cs.pending = nil
}

func (b *MessageBox) startChannelCatchUp(ctx context.Context, channelID int64) {
	b.mu.Lock()
	cs, ok := b.channels[channelID]
	if !ok {
		b.mu.Unlock()
		return
	}
	pts := cs.pts
	cs.pending = nil
	metrics := b.metrics
	b.mu.Unlock()
	metrics.incCatchUp("channel")

	full, empty, tooLong, err := b.getter.GetChannelDifference(ctx, channelID, pts)
	if err != nil {
		b.logger.Error("getChannelDifference failed", "channel_id", channelID, "error", err)
		return
	}
	switch {
	case tooLong != nil:
		metrics.incResyncTooLong()
		// The embedded dialog carries the channel's authoritative pts in
		// a full build; without the Dialog schema wired in, the client
		// must refetch the channel's pts via a direct channels.getFullChannel
		// call before resuming (documented limitation of the curated schema).
		b.sink.HandleGapReset(pts)
	case empty != nil:
		b.mu.Lock()
		cs.pts = empty.Pts
		b.mu.Unlock()
	case full != nil:
		for _, obj := range full.NewMessages {
			b.sink.HandleMessage(obj)
		}
		for _, u := range full.OtherUpdates {
			b.sink.HandleUpdate(u)
		}
		b.mu.Lock()
		cs.pts = full.Pts
		b.mu.Unlock()
		if !full.Final {
			b.startChannelCatchUp(ctx, channelID)
		}
	}
}
