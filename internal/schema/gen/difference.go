package gen

import (
	"fmt"

	"github.com/telemtp/mtproto-go/internal/schema/registry"
	"github.com/telemtp/mtproto-go/internal/tl"
)

// updates.difference .tl fragment this file's types are hand-rendered
// from. Message/Chat/User elements inside these vectors decode through the
// shared registry dispatch table like any other Object; a production
// client registers the full message/peer schema alongside this curated
// set. An element whose constructor isn't registered makes
// registry.DecodeVector fail, and with it the decode of the whole
// difference; elements are not skipped individually.
const _ = `
updates.difference_empty#5d75a138 date:int seq:int = updates.Difference;
updates.difference#f49ca0 new_messages:Vector<Message> new_encrypted_messages:Vector<EncryptedMessage> other_updates:Vector<Update> chats:Vector<Chat> users:Vector<User> state:updates.State = updates.Difference;
updates.difference_slice#a8fb1981 new_messages:Vector<Message> new_encrypted_messages:Vector<EncryptedMessage> other_updates:Vector<Update> chats:Vector<Chat> users:Vector<User> intermediate_state:updates.State = updates.Difference;
updates.difference_too_long#4afe8f6d pts:int = updates.Difference;
updates.state#a56c2a3e pts:int qts:int date:int seq:int unread_count:int = updates.State;
updates.channel_difference_empty#3e11affb flags:# final:flags.0?true pts:int timeout:flags.1?int = updates.ChannelDifference;
updates.channel_difference_too_long#a4bcc6fe flags:# final:flags.0?true timeout:flags.1?int dialog:Dialog messages:Vector<Message> chats:Vector<Chat> users:Vector<User> = updates.ChannelDifference;
updates.channel_difference#2064674e flags:# final:flags.0?true pts:int timeout:flags.1?int new_messages:Vector<Message> other_updates:Vector<Update> chats:Vector<Chat> users:Vector<User> = updates.ChannelDifference;
`

// Difference is the abstract result of getDifference (spec §4.5 "common
// gap catch-up").
type Difference interface {
	registry.Object
	isDifference()
}

// DifferenceEmpty is the 0x5D75A138 constructor: no change since the
// client's last pts/qts, just an updated date/seq to store.
type DifferenceEmpty struct {
	Date int32
	Seq  int32
}

func (*DifferenceEmpty) isDifference()         {}
func (*DifferenceEmpty) ConstructorID() uint32 { return 0x5d75a138 }

func (v *DifferenceEmpty) Encode(w *tl.Writer) {
	w.Int(v.Date)
	w.Int(v.Seq)
}

func decodeDifferenceEmpty(r *tl.Reader) (registry.Object, error) {
	v := &DifferenceEmpty{}
	var err error
	if v.Date, err = r.Int(); err != nil {
		return nil, err
	}
	if v.Seq, err = r.Int(); err != nil {
		return nil, err
	}
	return v, nil
}

func init() { registry.Register(0x5d75a138, decodeDifferenceEmpty) }

// DifferenceTooLong is the 0x4AFE8F6D constructor: even getDifference's
// output would be too large, so the client must discard local state and
// resume from the returned pts.
type DifferenceTooLong struct {
	Pts int32
}

func (*DifferenceTooLong) isDifference()         {}
func (*DifferenceTooLong) ConstructorID() uint32 { return 0x4afe8f6d }

func (v *DifferenceTooLong) Encode(w *tl.Writer) { w.Int(v.Pts) }

func decodeDifferenceTooLong(r *tl.Reader) (registry.Object, error) {
	pts, err := r.Int()
	if err != nil {
		return nil, err
	}
	return &DifferenceTooLong{Pts: pts}, nil
}

func init() { registry.Register(0x4afe8f6d, decodeDifferenceTooLong) }

// State is the updates.state#a56c2a3e constructor describing the target
// pts/qts/date/seq a Difference (or DifferenceSlice's IntermediateState)
// leaves the client at.
type State struct {
	Pts          int32
	Qts          int32
	Date         int32
	Seq          int32
	UnreadCount  int32
}

func (*State) ConstructorID() uint32 { return 0xa56c2a3e }

func (v *State) Encode(w *tl.Writer) {
	w.Int(v.Pts)
	w.Int(v.Qts)
	w.Int(v.Date)
	w.Int(v.Seq)
	w.Int(v.UnreadCount)
}

func decodeState(r *tl.Reader) (registry.Object, error) {
	v := &State{}
	var err error
	if v.Pts, err = r.Int(); err != nil {
		return nil, err
	}
	if v.Qts, err = r.Int(); err != nil {
		return nil, err
	}
	if v.Date, err = r.Int(); err != nil {
		return nil, err
	}
	if v.Seq, err = r.Int(); err != nil {
		return nil, err
	}
	if v.UnreadCount, err = r.Int(); err != nil {
		return nil, err
	}
	return v, nil
}

func init() { registry.Register(0xa56c2a3e, decodeState) }

// DifferenceFull covers both updates.difference and updates.difference_slice:
// the two constructors differ only in whether State is final (Difference)
// or intermediate (DifferenceSlice, requiring another getDifference call).
type DifferenceFull struct {
	NewMessages   []registry.Object
	OtherUpdates  []Update
	State         *State
	IsSlice       bool
}

func (*DifferenceFull) isDifference()         {}
func (v *DifferenceFull) ConstructorID() uint32 {
	if v.IsSlice {
		return 0xa8fb1981
	}
	return 0xf49ca0
}

func (v *DifferenceFull) Encode(w *tl.Writer) {
	registry.EncodeVector(w, v.NewMessages)
	w.VectorHeader(0) // new_encrypted_messages, unused by this client
	registry.EncodeVector(w, toObjects(v.OtherUpdates))
	w.VectorHeader(0) // chats
	w.VectorHeader(0) // users
	w.UInt(v.State.ConstructorID())
	v.State.Encode(w)
}

func decodeDifferenceFull(isSlice bool) registry.Decoder {
	return func(r *tl.Reader) (registry.Object, error) {
		v := &DifferenceFull{IsSlice: isSlice}
		var err error
		if v.NewMessages, err = registry.DecodeVector(r); err != nil {
			return nil, err
		}
		if _, err := registry.DecodeVector(r); err != nil { // new_encrypted_messages
			return nil, err
		}
		otherObjs, err := registry.DecodeVector(r)
		if err != nil {
			return nil, err
		}
		if v.OtherUpdates, err = toUpdates(otherObjs); err != nil {
			return nil, err
		}
		if _, err := registry.DecodeVector(r); err != nil { // chats
			return nil, err
		}
		if _, err := registry.DecodeVector(r); err != nil { // users
			return nil, err
		}
		stateObj, err := registry.Decode(r)
		if err != nil {
			return nil, err
		}
		state, ok := stateObj.(*State)
		if !ok {
			return nil, fmt.Errorf("updates.difference: state constructor %#x is not updates.State", stateObj.ConstructorID())
		}
		v.State = state
		return v, nil
	}
}

func init() {
	registry.Register(0xf49ca0, decodeDifferenceFull(false))
	registry.Register(0xa8fb1981, decodeDifferenceFull(true))
}

// ChannelDifference is the abstract result of getChannelDifference (spec
// §4.5 "per-channel gap catch-up").
type ChannelDifference interface {
	registry.Object
	isChannelDifference()
}

// ChannelDifferenceEmpty is the 0x3E11AFFB constructor.
type ChannelDifferenceEmpty struct {
	Flags   uint32
	Final   bool
	Pts     int32
	Timeout *int32
}

func (*ChannelDifferenceEmpty) isChannelDifference()  {}
func (*ChannelDifferenceEmpty) ConstructorID() uint32 { return 0x3e11affb }

func (v *ChannelDifferenceEmpty) Encode(w *tl.Writer) {
	w.UInt(v.Flags)
	w.Int(v.Pts)
	if v.Timeout != nil {
		w.Int(*v.Timeout)
	}
}

func decodeChannelDifferenceEmpty(r *tl.Reader) (registry.Object, error) {
	v := &ChannelDifferenceEmpty{}
	var err error
	if v.Flags, err = r.UInt(); err != nil {
		return nil, err
	}
	v.Final = v.Flags&1 != 0
	if v.Pts, err = r.Int(); err != nil {
		return nil, err
	}
	if v.Flags&(1<<1) != 0 {
		t, err := r.Int()
		if err != nil {
			return nil, err
		}
		v.Timeout = &t
	}
	return v, nil
}

func init() { registry.Register(0x3e11affb, decodeChannelDifferenceEmpty) }

// ChannelDifferenceFull is the 0x2064674E constructor carrying the new
// channel messages and updates for the catch-up range.
type ChannelDifferenceFull struct {
	Flags        uint32
	Final        bool
	Pts          int32
	Timeout      *int32
	NewMessages  []registry.Object
	OtherUpdates []Update
}

func (*ChannelDifferenceFull) isChannelDifference()  {}
func (*ChannelDifferenceFull) ConstructorID() uint32 { return 0x2064674e }

func (v *ChannelDifferenceFull) Encode(w *tl.Writer) {
	w.UInt(v.Flags)
	w.Int(v.Pts)
	if v.Timeout != nil {
		w.Int(*v.Timeout)
	}
	registry.EncodeVector(w, v.NewMessages)
	registry.EncodeVector(w, toObjects(v.OtherUpdates))
	w.VectorHeader(0) // chats
	w.VectorHeader(0) // users
}

func decodeChannelDifferenceFull(r *tl.Reader) (registry.Object, error) {
	v := &ChannelDifferenceFull{}
	var err error
	if v.Flags, err = r.UInt(); err != nil {
		return nil, err
	}
	v.Final = v.Flags&1 != 0
	if v.Pts, err = r.Int(); err != nil {
		return nil, err
	}
	if v.Flags&(1<<1) != 0 {
		t, err := r.Int()
		if err != nil {
			return nil, err
		}
		v.Timeout = &t
	}
	if v.NewMessages, err = registry.DecodeVector(r); err != nil {
		return nil, err
	}
	otherObjs, err := registry.DecodeVector(r)
	if err != nil {
		return nil, err
	}
	if v.OtherUpdates, err = toUpdates(otherObjs); err != nil {
		return nil, err
	}
	if _, err := registry.DecodeVector(r); err != nil { // chats
		return nil, err
	}
	if _, err := registry.DecodeVector(r); err != nil { // users
		return nil, err
	}
	return v, nil
}

func init() { registry.Register(0x2064674e, decodeChannelDifferenceFull) }

// ChannelDifferenceTooLong is the 0xA4BCC6FE constructor: the channel's
// gap cannot be closed incrementally; the client must reset its per-channel
// pts from the embedded dialog and refetch history.
type ChannelDifferenceTooLong struct {
	Flags   uint32
	Final   bool
	Timeout *int32
}

func (*ChannelDifferenceTooLong) isChannelDifference()  {}
func (*ChannelDifferenceTooLong) ConstructorID() uint32 { return 0xa4bcc6fe }

func (v *ChannelDifferenceTooLong) Encode(w *tl.Writer) {
	w.UInt(v.Flags)
	if v.Timeout != nil {
		w.Int(*v.Timeout)
	}
	w.UInt(0) // dialog placeholder: Dialog schema not in the curated set
	w.VectorHeader(0)
	w.VectorHeader(0)
	w.VectorHeader(0)
}

func decodeChannelDifferenceTooLong(r *tl.Reader) (registry.Object, error) {
	v := &ChannelDifferenceTooLong{}
	var err error
	if v.Flags, err = r.UInt(); err != nil {
		return nil, err
	}
	v.Final = v.Flags&1 != 0
	if v.Flags&(1<<1) != 0 {
		t, err := r.Int()
		if err != nil {
			return nil, err
		}
		v.Timeout = &t
	}
	if _, err := registry.Decode(r); err != nil { // dialog
		return nil, err
	}
	if _, err := registry.DecodeVector(r); err != nil { // messages
		return nil, err
	}
	if _, err := registry.DecodeVector(r); err != nil { // chats
		return nil, err
	}
	if _, err := registry.DecodeVector(r); err != nil { // users
		return nil, err
	}
	return v, nil
}

func init() { registry.Register(0xa4bcc6fe, decodeChannelDifferenceTooLong) }
