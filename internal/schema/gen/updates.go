package gen

import (
	"github.com/telemtp/mtproto-go/internal/schema/registry"
	"github.com/telemtp/mtproto-go/internal/tl"
)

// updates .tl fragment this file's types are hand-rendered from.
const _ = `
updates_too_long#e317af7e = Updates;
update_short_message#313bc7f8 flags:# out:flags.1?true mentioned:flags.4?true media_unread:flags.5?true silent:flags.13?true id:int user_id:long message:string pts:int pts_count:int date:int = Updates;
update_short_chat_message#913c3acb flags:# out:flags.1?true mentioned:flags.4?true media_unread:flags.5?true silent:flags.13?true id:int from_id:long chat_id:long message:string pts:int pts_count:int date:int = Updates;
update_short#78d4dec1 update:Update date:int = Updates;
updates_combined#725b04c3 updates:Vector<Update> users:Vector<User> chats:Vector<Chat> date:int seq_start:int seq:int = Updates;
updates#74ae4240 updates:Vector<Update> users:Vector<User> chats:Vector<Chat> date:int seq:int = Updates;
update_short_sent_message#11f1331c flags:# out:flags.1?true id:int pts:int pts_count:int date:int media:flags.9?MessageMedia entities:flags.7?Vector<MessageEntity> = Updates;
`

// Updates is the abstract result of every update_* constructor.
type Updates interface {
	registry.Object
	isUpdates()
}

// UpdatesTooLong is the 0xE317AF7E constructor: the gap between the
// client's pts/qts and the server's is too large to express incrementally,
// forcing a getDifference catch-up (spec §4.5).
type UpdatesTooLong struct{}

func (*UpdatesTooLong) isUpdates()          {}
func (*UpdatesTooLong) ConstructorID() uint32 { return 0xe317af7e }
func (*UpdatesTooLong) Encode(w *tl.Writer)   {}

func decodeUpdatesTooLong(r *tl.Reader) (registry.Object, error) {
	return &UpdatesTooLong{}, nil
}

func init() { registry.Register(0xe317af7e, decodeUpdatesTooLong) }

// UpdateShort is the 0x78D4DEC1 constructor: a single update with no
// accompanying user/chat data, carrying only the server's current date.
type UpdateShort struct {
	Update Update
	Date   int32
}

func (*UpdateShort) isUpdates()            {}
func (*UpdateShort) ConstructorID() uint32 { return 0x78d4dec1 }

func (v *UpdateShort) Encode(w *tl.Writer) {
	w.UInt(v.Update.ConstructorID())
	v.Update.Encode(w)
	w.Int(v.Date)
}

func decodeUpdateShort(r *tl.Reader) (registry.Object, error) {
	obj, err := registry.Decode(r)
	if err != nil {
		return nil, err
	}
	upd, ok := obj.(Update)
	if !ok {
		return nil, errNotUpdate(obj)
	}
	date, err := r.Int()
	if err != nil {
		return nil, err
	}
	return &UpdateShort{Update: upd, Date: date}, nil
}

func init() { registry.Register(0x78d4dec1, decodeUpdateShort) }

// UpdateShortMessage is the 0x313BC7F8 constructor: a compact form of
// updateNewMessage for a private-chat text message, carrying its own
// pts/pts_count so MessageBox can apply it without unpacking a full
// Updates envelope.
type UpdateShortMessage struct {
	Flags      uint32
	Out        bool
	Mentioned  bool
	MediaUnread bool
	Silent     bool
	ID         int32
	UserID     int64
	Message    string
	Pts        int32
	PtsCount   int32
	Date       int32
}

func (*UpdateShortMessage) isUpdates()            {}
func (*UpdateShortMessage) ConstructorID() uint32 { return 0x313bc7f8 }

func (v *UpdateShortMessage) Encode(w *tl.Writer) {
	w.UInt(v.Flags)
	w.Int(v.ID)
	w.Long(v.UserID)
	w.String(v.Message)
	w.Int(v.Pts)
	w.Int(v.PtsCount)
	w.Int(v.Date)
}

func decodeUpdateShortMessage(r *tl.Reader) (registry.Object, error) {
	v := &UpdateShortMessage{}
	var err error
	if v.Flags, err = r.UInt(); err != nil {
		return nil, err
	}
	v.Out = v.Flags&(1<<1) != 0
	v.Mentioned = v.Flags&(1<<4) != 0
	v.MediaUnread = v.Flags&(1<<5) != 0
	v.Silent = v.Flags&(1<<13) != 0
	if v.ID, err = r.Int(); err != nil {
		return nil, err
	}
	if v.UserID, err = r.Long(); err != nil {
		return nil, err
	}
	if v.Message, err = r.String(); err != nil {
		return nil, err
	}
	if v.Pts, err = r.Int(); err != nil {
		return nil, err
	}
	if v.PtsCount, err = r.Int(); err != nil {
		return nil, err
	}
	if v.Date, err = r.Int(); err != nil {
		return nil, err
	}
	return v, nil
}

func init() { registry.Register(0x313bc7f8, decodeUpdateShortMessage) }

// UpdatesCombined is the 0x725B04C3 constructor: multiple updates sharing
// one seq range, with seq_start != seq signalling the span to validate
// against MessageBox's common seq counter.
type UpdatesCombined struct {
	UpdatesList []Update
	Date        int32
	SeqStart    int32
	Seq         int32
}

func (*UpdatesCombined) isUpdates()            {}
func (*UpdatesCombined) ConstructorID() uint32 { return 0x725b04c3 }

func (v *UpdatesCombined) Encode(w *tl.Writer) {
	registry.EncodeVector(w, toObjects(v.UpdatesList))
	w.VectorHeader(0) // users
	w.VectorHeader(0) // chats
	w.Int(v.Date)
	w.Int(v.SeqStart)
	w.Int(v.Seq)
}

func decodeUpdatesCombined(r *tl.Reader) (registry.Object, error) {
	v := &UpdatesCombined{}
	objs, err := registry.DecodeVector(r)
	if err != nil {
		return nil, err
	}
	if v.UpdatesList, err = toUpdates(objs); err != nil {
		return nil, err
	}
	if _, err := registry.DecodeVector(r); err != nil { // users
		return nil, err
	}
	if _, err := registry.DecodeVector(r); err != nil { // chats
		return nil, err
	}
	if v.Date, err = r.Int(); err != nil {
		return nil, err
	}
	if v.SeqStart, err = r.Int(); err != nil {
		return nil, err
	}
	if v.Seq, err = r.Int(); err != nil {
		return nil, err
	}
	return v, nil
}

func init() { registry.Register(0x725b04c3, decodeUpdatesCombined) }

// UpdatesEnvelope is the 0x74AE4240 "updates" constructor, the common case
// of a batch with a single seq (seq_start implicitly equals seq).
type UpdatesEnvelope struct {
	UpdatesList []Update
	Date        int32
	Seq         int32
}

func (*UpdatesEnvelope) isUpdates()            {}
func (*UpdatesEnvelope) ConstructorID() uint32 { return 0x74ae4240 }

func (v *UpdatesEnvelope) Encode(w *tl.Writer) {
	registry.EncodeVector(w, toObjects(v.UpdatesList))
	w.VectorHeader(0)
	w.VectorHeader(0)
	w.Int(v.Date)
	w.Int(v.Seq)
}

func decodeUpdatesEnvelope(r *tl.Reader) (registry.Object, error) {
	v := &UpdatesEnvelope{}
	objs, err := registry.DecodeVector(r)
	if err != nil {
		return nil, err
	}
	if v.UpdatesList, err = toUpdates(objs); err != nil {
		return nil, err
	}
	if _, err := registry.DecodeVector(r); err != nil {
		return nil, err
	}
	if _, err := registry.DecodeVector(r); err != nil {
		return nil, err
	}
	if v.Date, err = r.Int(); err != nil {
		return nil, err
	}
	if v.Seq, err = r.Int(); err != nil {
		return nil, err
	}
	return v, nil
}

func init() { registry.Register(0x74ae4240, decodeUpdatesEnvelope) }

func toObjects(us []Update) []registry.Object {
	out := make([]registry.Object, len(us))
	for i, u := range us {
		out[i] = u
	}
	return out
}

func toUpdates(objs []registry.Object) ([]Update, error) {
	out := make([]Update, len(objs))
	for i, o := range objs {
		u, ok := o.(Update)
		if !ok {
			return nil, errNotUpdate(o)
		}
		out[i] = u
	}
	return out, nil
}
