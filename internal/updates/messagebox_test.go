package updates

import (
	"context"
	"testing"
	"time"

	"github.com/telemtp/mtproto-go/internal/schema/gen"
	"github.com/telemtp/mtproto-go/internal/schema/registry"
)

type fakeGetter struct {
	difference func(ctx context.Context, pts, qts, date int32) (*gen.DifferenceFull, *gen.DifferenceEmpty, *gen.DifferenceTooLong, error)
	channel    func(ctx context.Context, channelID int64, pts int32) (*gen.ChannelDifferenceFull, *gen.ChannelDifferenceEmpty, *gen.ChannelDifferenceTooLong, error)
}

func (f *fakeGetter) GetDifference(ctx context.Context, pts, qts, date int32) (*gen.DifferenceFull, *gen.DifferenceEmpty, *gen.DifferenceTooLong, error) {
	return f.difference(ctx, pts, qts, date)
}

func (f *fakeGetter) GetChannelDifference(ctx context.Context, channelID int64, pts int32) (*gen.ChannelDifferenceFull, *gen.ChannelDifferenceEmpty, *gen.ChannelDifferenceTooLong, error) {
	return f.channel(ctx, channelID, pts)
}

type fakeSink struct {
	updates   []gen.Update
	messages  []registry.Object
	gapResets []int32
}

func (f *fakeSink) HandleUpdate(u gen.Update)         { f.updates = append(f.updates, u) }
func (f *fakeSink) HandleMessage(obj registry.Object) { f.messages = append(f.messages, obj) }
func (f *fakeSink) HandleGapReset(pts int32)           { f.gapResets = append(f.gapResets, pts) }

// TestMessageBoxCleanApply covers the no-gap path: newPts matches
// pts+ptsCount exactly, so the update applies without ever calling
// getDifference.
func TestMessageBoxCleanApply(t *testing.T) {
	sink := &fakeSink{}
	getter := &fakeGetter{
		difference: func(ctx context.Context, pts, qts, date int32) (*gen.DifferenceFull, *gen.DifferenceEmpty, *gen.DifferenceTooLong, error) {
			t.Fatal("getDifference should not be called on a clean pts sequence")
			return nil, nil, nil, nil
		},
	}
	box := NewMessageBox(100, 0, 0, 0, getter, sink, nil)
	box.HandlePush(context.Background(), &gen.UpdateShortMessage{ID: 1, Pts: 101, PtsCount: 1, Date: 1})
	pts, _, _, _ := box.State()
	if pts != 101 {
		t.Fatalf("pts = %d, want 101", pts)
	}
	if len(sink.updates) != 0 {
		t.Fatalf("UpdateShortMessage should not reach Sink.HandleUpdate directly, got %d", len(sink.updates))
	}
}

// TestMessageBoxGapTriggersGetDifference is the spec's worked gap
// scenario: pts=100, an update arrives claiming pts=103 with pts_count=1
// (implying the box should have been at pts=102 already), so a gap of
// two messages exists. After possibleGapDeadline elapses without the
// missing updates arriving, getDifference must be called and its
// returned state adopted.
func TestMessageBoxGapTriggersGetDifference(t *testing.T) {
	sink := &fakeSink{}
	called := make(chan struct{}, 1)
	getter := &fakeGetter{
		difference: func(ctx context.Context, pts, qts, date int32) (*gen.DifferenceFull, *gen.DifferenceEmpty, *gen.DifferenceTooLong, error) {
			if pts != 100 {
				t.Fatalf("getDifference called with pts=%d, want 100", pts)
			}
			called <- struct{}{}
			return nil, &gen.DifferenceEmpty{Date: 42, Seq: 7}, nil, nil
		},
	}
	box := NewMessageBox(100, 0, 0, 0, getter, sink, nil)
	box.HandlePush(context.Background(), &gen.UpdateShortMessage{ID: 1, Pts: 103, PtsCount: 1, Date: 1})

	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("getDifference was not called after possibleGapDeadline elapsed")
	}

	// give startCommonCatchUp's locked state mutation a moment to land
	time.Sleep(10 * time.Millisecond)
	_, _, date, seq := box.State()
	if date != 42 || seq != 7 {
		t.Fatalf("state after empty difference = (date=%d, seq=%d), want (42, 7)", date, seq)
	}
}

// TestMessageBoxDuplicateDropped covers a pts value at or behind the
// current pts: it must be dropped silently, never forwarded to Sink, and
// never trigger a catch-up.
func TestMessageBoxDuplicateDropped(t *testing.T) {
	sink := &fakeSink{}
	getter := &fakeGetter{
		difference: func(ctx context.Context, pts, qts, date int32) (*gen.DifferenceFull, *gen.DifferenceEmpty, *gen.DifferenceTooLong, error) {
			t.Fatal("getDifference should not be called for a duplicate/stale pts")
			return nil, nil, nil, nil
		},
	}
	box := NewMessageBox(100, 0, 0, 0, getter, sink, nil)
	box.HandlePush(context.Background(), &gen.UpdateShortMessage{ID: 1, Pts: 100, PtsCount: 0, Date: 1})
	pts, _, _, _ := box.State()
	if pts != 100 {
		t.Fatalf("pts = %d, want unchanged 100", pts)
	}
	if len(sink.updates) != 0 {
		t.Fatalf("duplicate update should not reach Sink, got %d", len(sink.updates))
	}
}

// TestMessageBoxDifferenceTooLong covers the resync-from-scratch path:
// getDifference reporting differenceTooLong must reset pts to the
// server's value and signal the Sink to drop any cached state.
func TestMessageBoxDifferenceTooLong(t *testing.T) {
	sink := &fakeSink{}
	getter := &fakeGetter{
		difference: func(ctx context.Context, pts, qts, date int32) (*gen.DifferenceFull, *gen.DifferenceEmpty, *gen.DifferenceTooLong, error) {
			return nil, nil, &gen.DifferenceTooLong{Pts: 9000}, nil
		},
	}
	box := NewMessageBox(100, 0, 0, 0, getter, sink, nil)
	box.startCommonCatchUp(context.Background())
	pts, _, _, _ := box.State()
	if pts != 9000 {
		t.Fatalf("pts = %d, want 9000", pts)
	}
	if len(sink.gapResets) != 1 || sink.gapResets[0] != 9000 {
		t.Fatalf("expected one gap reset to 9000, got %v", sink.gapResets)
	}
}

// TestMessageBoxFullDifferenceForwardsMessagesInOrder covers spec §8
// scenario 5: a getDifference reply's new_messages must reach the Sink,
// in order, rather than be silently discarded.
func TestMessageBoxFullDifferenceForwardsMessagesInOrder(t *testing.T) {
	sink := &fakeSink{}
	msgs := []registry.Object{&gen.UpdateShortMessage{ID: 1}, &gen.UpdateShortMessage{ID: 2}, &gen.UpdateShortMessage{ID: 3}}
	getter := &fakeGetter{
		difference: func(ctx context.Context, pts, qts, date int32) (*gen.DifferenceFull, *gen.DifferenceEmpty, *gen.DifferenceTooLong, error) {
			return &gen.DifferenceFull{
				NewMessages: msgs,
				State:       &gen.State{Pts: 200, Qts: 0, Date: 99, Seq: 1},
			}, nil, nil, nil
		},
	}
	box := NewMessageBox(100, 0, 0, 0, getter, sink, nil)
	box.startCommonCatchUp(context.Background())

	if len(sink.messages) != 3 {
		t.Fatalf("expected 3 messages forwarded to sink, got %d", len(sink.messages))
	}
	for i, m := range sink.messages {
		if m != msgs[i] {
			t.Fatalf("message %d forwarded out of order", i)
		}
	}
}

// TestChannelCleanApply mirrors TestMessageBoxCleanApply for the
// per-channel pts counter: the first update for a channel seeds
// channelState.pts at newPts-ptsCount, so a single clean update applies
// immediately.
func TestChannelCleanApply(t *testing.T) {
	sink := &fakeSink{}
	getter := &fakeGetter{
		channel: func(ctx context.Context, channelID int64, pts int32) (*gen.ChannelDifferenceFull, *gen.ChannelDifferenceEmpty, *gen.ChannelDifferenceTooLong, error) {
			t.Fatal("getChannelDifference should not be called on a clean pts sequence")
			return nil, nil, nil, nil
		},
	}
	box := NewMessageBox(0, 0, 0, 0, getter, sink, nil)
	upd := &gen.UpdateNewChannelMessage{Pts: 5, PtsCount: 1}
	box.ApplyChannelUpdate(context.Background(), 42, upd.Pts, upd.PtsCount, upd)
	if len(sink.updates) != 1 {
		t.Fatalf("expected 1 update delivered to sink, got %d", len(sink.updates))
	}
}

// TestChannelGapTriggersGetChannelDifference exercises the per-channel
// counterpart to the common-pts gap path.
func TestChannelGapTriggersGetChannelDifference(t *testing.T) {
	sink := &fakeSink{}
	called := make(chan struct{}, 1)
	getter := &fakeGetter{
		channel: func(ctx context.Context, channelID int64, pts int32) (*gen.ChannelDifferenceFull, *gen.ChannelDifferenceEmpty, *gen.ChannelDifferenceTooLong, error) {
			called <- struct{}{}
			return nil, &gen.ChannelDifferenceEmpty{Pts: 55}, nil, nil
		},
	}
	box := NewMessageBox(0, 0, 0, 0, getter, sink, nil)
	box.ApplyChannelUpdate(context.Background(), 42, 1, 1, &gen.UpdateNewChannelMessage{Pts: 1, PtsCount: 1})
	box.ApplyChannelUpdate(context.Background(), 42, 10, 1, &gen.UpdateNewChannelMessage{Pts: 10, PtsCount: 1})

	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("getChannelDifference was not called after a detected gap")
	}
}
