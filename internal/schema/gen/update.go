package gen

import (
	"fmt"

	"github.com/telemtp/mtproto-go/internal/schema/registry"
	"github.com/telemtp/mtproto-go/internal/tl"
)

// update .tl fragment this file's types are hand-rendered from. Telegram's
// real Update union has well over a hundred constructors; only the ones
// MessageBox's pts/qts bookkeeping must inspect directly are curated here,
// matching the distilled schema's scope. No other update constructor is
// registered: registry.Decode fails on one with UnknownConstructorError,
// and so does the decode of any Updates envelope that contains one.
const _ = `
update_new_message#1f2b0afd message:Message pts:int pts_count:int = Update;
update_delete_messages#a20db0e5 messages:Vector<int> pts:int pts_count:int = Update;
update_new_channel_message#62ba04d9 message:Message pts:int pts_count:int = Update;
update_channel_too_long#108d941f flags:# channel_id:long pts:flags.0?int = Update;
update_read_history_inbox#9c974fdf flags:# still_unread_count:int max_id:int pts:int pts_count:int = Update;
`

// Update is the abstract result of every update_* constructor inside an
// Updates envelope.
type Update interface {
	registry.Object
	isUpdate()
}

func errNotUpdate(obj registry.Object) error {
	return fmt.Errorf("gen: constructor %#x is not an Update", obj.ConstructorID())
}

// UpdateNewMessage is the 0x1F2B0AFD constructor: pts/pts_count describe
// the position of this update in the common sequence (spec §4.5).
type UpdateNewMessage struct {
	Message  []byte // opaque Message payload, re-decoded by the caller's schema
	Pts      int32
	PtsCount int32
}

func (*UpdateNewMessage) isUpdate()            {}
func (*UpdateNewMessage) ConstructorID() uint32 { return 0x1f2b0afd }

func (v *UpdateNewMessage) Encode(w *tl.Writer) {
	w.Raw(v.Message)
	w.Int(v.Pts)
	w.Int(v.PtsCount)
}

func decodeUpdateNewMessage(r *tl.Reader) (registry.Object, error) {
	start := r.RestBytes()
	if _, err := registry.Decode(r); err != nil {
		return nil, fmt.Errorf("update_new_message: message: %w", err)
	}
	consumed := len(start) - r.Remaining()
	v := &UpdateNewMessage{Message: append([]byte(nil), start[:consumed]...)}
	var err error
	if v.Pts, err = r.Int(); err != nil {
		return nil, err
	}
	if v.PtsCount, err = r.Int(); err != nil {
		return nil, err
	}
	return v, nil
}

func init() { registry.Register(0x1f2b0afd, decodeUpdateNewMessage) }

// UpdateDeleteMessages is the 0xA20DB0E5 constructor.
type UpdateDeleteMessages struct {
	Messages []int32
	Pts      int32
	PtsCount int32
}

func (*UpdateDeleteMessages) isUpdate()            {}
func (*UpdateDeleteMessages) ConstructorID() uint32 { return 0xa20db0e5 }

func (v *UpdateDeleteMessages) Encode(w *tl.Writer) {
	w.VectorHeader(len(v.Messages))
	for _, id := range v.Messages {
		w.Int(id)
	}
	w.Int(v.Pts)
	w.Int(v.PtsCount)
}

func decodeUpdateDeleteMessages(r *tl.Reader) (registry.Object, error) {
	n, err := r.VectorHeader()
	if err != nil {
		return nil, err
	}
	ids := make([]int32, n)
	for i := range ids {
		if ids[i], err = r.Int(); err != nil {
			return nil, err
		}
	}
	v := &UpdateDeleteMessages{Messages: ids}
	if v.Pts, err = r.Int(); err != nil {
		return nil, err
	}
	if v.PtsCount, err = r.Int(); err != nil {
		return nil, err
	}
	return v, nil
}

func init() { registry.Register(0xa20db0e5, decodeUpdateDeleteMessages) }

// UpdateNewChannelMessage is the 0x62BA04D9 constructor: identical shape
// to UpdateNewMessage but advances a per-channel pts instead of the common
// one (spec §4.5 "per-channel state machine").
type UpdateNewChannelMessage struct {
	Message  []byte
	Pts      int32
	PtsCount int32
}

func (*UpdateNewChannelMessage) isUpdate()            {}
func (*UpdateNewChannelMessage) ConstructorID() uint32 { return 0x62ba04d9 }

func (v *UpdateNewChannelMessage) Encode(w *tl.Writer) {
	w.Raw(v.Message)
	w.Int(v.Pts)
	w.Int(v.PtsCount)
}

func decodeUpdateNewChannelMessage(r *tl.Reader) (registry.Object, error) {
	start := r.RestBytes()
	if _, err := registry.Decode(r); err != nil {
		return nil, fmt.Errorf("update_new_channel_message: message: %w", err)
	}
	consumed := len(start) - r.Remaining()
	v := &UpdateNewChannelMessage{Message: append([]byte(nil), start[:consumed]...)}
	var err error
	if v.Pts, err = r.Int(); err != nil {
		return nil, err
	}
	if v.PtsCount, err = r.Int(); err != nil {
		return nil, err
	}
	return v, nil
}

func init() { registry.Register(0x62ba04d9, decodeUpdateNewChannelMessage) }

// UpdateChannelTooLong is the 0x108D941F constructor: signals that a
// channel's update gap cannot be closed incrementally and
// getChannelDifference must run. Pts is present only when flag bit 0 is
// set; absent it, the caller must fetch the channel's current pts first.
type UpdateChannelTooLong struct {
	Flags     uint32
	ChannelID int64
	Pts       *int32
}

func (*UpdateChannelTooLong) isUpdate()            {}
func (*UpdateChannelTooLong) ConstructorID() uint32 { return 0x108d941f }

func (v *UpdateChannelTooLong) Encode(w *tl.Writer) {
	w.UInt(v.Flags)
	w.Long(v.ChannelID)
	if v.Pts != nil {
		w.Int(*v.Pts)
	}
}

func decodeUpdateChannelTooLong(r *tl.Reader) (registry.Object, error) {
	v := &UpdateChannelTooLong{}
	var err error
	if v.Flags, err = r.UInt(); err != nil {
		return nil, err
	}
	if v.ChannelID, err = r.Long(); err != nil {
		return nil, err
	}
	if v.Flags&1 != 0 {
		pts, err := r.Int()
		if err != nil {
			return nil, err
		}
		v.Pts = &pts
	}
	return v, nil
}

func init() { registry.Register(0x108d941f, decodeUpdateChannelTooLong) }
