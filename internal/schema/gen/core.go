// Package gen holds the curated, hand-authored subset of the MTProto
// schema that the session/transport layers need to speak: container and
// service messages, acknowledgement and recovery constructors, and the
// update envelope family. It is written in the exact shape
// internal/schema/codegen would produce for these same declarations (see
// the embedded core.tl source below, consumable by the gen-schema CLI
// subcommand for diffing against a hand edit), but is checked in directly
// rather than generated so the runtime never depends on a codegen step.
package gen

import (
	"fmt"

	"github.com/telemtp/mtproto-go/internal/schema/registry"
	"github.com/telemtp/mtproto-go/internal/tl"
)

// CoreSchema is the .tl source this package's types are hand-rendered
// from, kept so it can be fed to gen-schema and diffed against.
const CoreSchema = `
msg_container#73f1f8dc messages:vector<%Message> = MessageContainer;
rpc_result#f35c6d01 req_msg_id:long result:Object = RpcResult;
rpc_error#2144ca19 error_code:int error_message:string = RpcError;
rpc_answer_dropped#a43ad8b7 msg_id:long seq_no:int bytes:int = RpcDropAnswer;
gzip_packed#3072cfa1 packed_data:bytes = Object;
msgs_ack#62d6b459 msg_ids:Vector<long> = MsgsAck;
bad_msg_notification#a7eff811 bad_msg_id:long bad_msg_seqno:int error_code:int = BadMsgNotification;
bad_server_salt#edab447b bad_msg_id:long bad_msg_seqno:int error_code:int new_server_salt:long = BadMsgNotification;
new_session_created#9ec20908 first_msg_id:long unique_id:long server_salt:long = NewSession;
ping#7abe77ec ping_id:long = Pong;
pong#347773c5 msg_id:long ping_id:long = Pong;
ping_delay_disconnect#f3427b8c ping_id:long disconnect_delay:int = Pong;
msgs_all_info#8cc0d131 msg_ids:Vector<long> info:string = MsgsAllInfo;
future_salt#0949d9dc valid_since:int valid_until:int salt:long = FutureSalt;
future_salts#ae500895 req_msg_id:long now:int salts:vector<future_salt> = FutureSalts;
`

// RawMessage is one entry of a msg_container: the inner message's own id,
// sequence number, byte length, and opaque body (decoded separately by the
// sender once the body's constructor id is known).
type RawMessage struct {
	MsgID  int64
	SeqNo  int32
	Bytes  int32
	Body   []byte
}

// MsgContainer is the 0x73F1F8DC constructor wrapping up to 1,044,448
// bytes / 100 inner messages into one transport frame.
type MsgContainer struct {
	Messages []RawMessage
}

func (*MsgContainer) ConstructorID() uint32 { return 0x73f1f8dc }

func (v *MsgContainer) Encode(w *tl.Writer) {
	w.Int(int32(len(v.Messages)))
	for _, m := range v.Messages {
		w.Long(m.MsgID)
		w.Int(m.SeqNo)
		w.Int(int32(len(m.Body)))
		w.Raw(m.Body)
	}
}

func decodeMsgContainer(r *tl.Reader) (registry.Object, error) {
	n, err := r.Int()
	if err != nil {
		return nil, err
	}
	v := &MsgContainer{Messages: make([]RawMessage, 0, n)}
	for i := int32(0); i < n; i++ {
		msgID, err := r.Long()
		if err != nil {
			return nil, err
		}
		seqNo, err := r.Int()
		if err != nil {
			return nil, err
		}
		size, err := r.Int()
		if err != nil {
			return nil, err
		}
		body, err := r.TakeBytes(int(size))
		if err != nil {
			return nil, fmt.Errorf("msg_container: message %d body: %w", i, err)
		}
		cp := make([]byte, len(body))
		copy(cp, body)
		v.Messages = append(v.Messages, RawMessage{MsgID: msgID, SeqNo: seqNo, Bytes: size, Body: cp})
	}
	return v, nil
}

func init() { registry.Register(0x73f1f8dc, decodeMsgContainer) }

// RPCResult is the 0xF35C6D01 constructor wrapping a method's response
// (or an RPCError) keyed by the original request's msg_id. Result is kept
// opaque (registry.Object) since its concrete shape depends entirely on
// which method ReqMsgID invoked; the Sender resolves it against its
// pending-request table rather than inspecting Result's type itself.
type RPCResult struct {
	ReqMsgID int64
	Result   registry.Object
}

func (*RPCResult) ConstructorID() uint32 { return 0xf35c6d01 }

func (v *RPCResult) Encode(w *tl.Writer) {
	w.Long(v.ReqMsgID)
	w.UInt(v.Result.ConstructorID())
	v.Result.Encode(w)
}

func decodeRPCResult(r *tl.Reader) (registry.Object, error) {
	v := &RPCResult{}
	var err error
	if v.ReqMsgID, err = r.Long(); err != nil {
		return nil, err
	}
	if v.Result, err = registry.Decode(r); err != nil {
		return nil, fmt.Errorf("rpc_result: result: %w", err)
	}
	return v, nil
}

func init() { registry.Register(0xf35c6d01, decodeRPCResult) }

// RPCError is the 0x2144CA19 constructor carrying a numeric code and a
// human-readable (but machine-parsed, see internal/rpcerr) message.
type RPCError struct {
	ErrorCode    int32
	ErrorMessage string
}

func (*RPCError) ConstructorID() uint32 { return 0x2144ca19 }

func (v *RPCError) Encode(w *tl.Writer) {
	w.Int(v.ErrorCode)
	w.String(v.ErrorMessage)
}

func decodeRPCError(r *tl.Reader) (registry.Object, error) {
	v := &RPCError{}
	var err error
	if v.ErrorCode, err = r.Int(); err != nil {
		return nil, err
	}
	if v.ErrorMessage, err = r.String(); err != nil {
		return nil, err
	}
	return v, nil
}

func init() { registry.Register(0x2144ca19, decodeRPCError) }

// RPCAnswerDropped is the spec's worked CRC32-inference example: a
// declaration carrying an explicit #id that the compiler must validate
// rather than infer, since its canonical text does hash to the same value.
type RPCAnswerDropped struct {
	MsgID int64
	SeqNo int32
	Bytes int32
}

func (*RPCAnswerDropped) ConstructorID() uint32 { return 0xa43ad8b7 }

func (v *RPCAnswerDropped) Encode(w *tl.Writer) {
	w.Long(v.MsgID)
	w.Int(v.SeqNo)
	w.Int(v.Bytes)
}

func decodeRPCAnswerDropped(r *tl.Reader) (registry.Object, error) {
	v := &RPCAnswerDropped{}
	var err error
	if v.MsgID, err = r.Long(); err != nil {
		return nil, err
	}
	if v.SeqNo, err = r.Int(); err != nil {
		return nil, err
	}
	if v.Bytes, err = r.Int(); err != nil {
		return nil, err
	}
	return v, nil
}

func init() { registry.Register(0xa43ad8b7, decodeRPCAnswerDropped) }

// GZIPPacked is the 0x3072CFA1 constructor: packed_data is a raw
// gzip-compressed re-serialization of another Object, unwrapped
// transparently by the sender before dispatch.
type GZIPPacked struct {
	PackedData []byte
}

func (*GZIPPacked) ConstructorID() uint32 { return 0x3072cfa1 }

func (v *GZIPPacked) Encode(w *tl.Writer) { w.WriteBytes(v.PackedData) }

func decodeGZIPPacked(r *tl.Reader) (registry.Object, error) {
	b, err := r.Bytes()
	if err != nil {
		return nil, err
	}
	return &GZIPPacked{PackedData: b}, nil
}

func init() { registry.Register(0x3072cfa1, decodeGZIPPacked) }

// MsgsAck is the 0x62D6B459 constructor acknowledging receipt of the
// listed message ids.
type MsgsAck struct {
	MsgIDs []int64
}

func (*MsgsAck) ConstructorID() uint32 { return 0x62d6b459 }

func (v *MsgsAck) Encode(w *tl.Writer) {
	w.VectorHeader(len(v.MsgIDs))
	for _, id := range v.MsgIDs {
		w.Long(id)
	}
}

func decodeMsgsAck(r *tl.Reader) (registry.Object, error) {
	n, err := r.VectorHeader()
	if err != nil {
		return nil, err
	}
	ids := make([]int64, n)
	for i := range ids {
		if ids[i], err = r.Long(); err != nil {
			return nil, err
		}
	}
	return &MsgsAck{MsgIDs: ids}, nil
}

func init() { registry.Register(0x62d6b459, decodeMsgsAck) }

// BadMsgNotification is the 0xA7EFF811 constructor reporting a msg_id/
// seq_no consistency failure (error codes 16-20, 32-48 per spec §4.4).
type BadMsgNotification struct {
	BadMsgID    int64
	BadMsgSeqno int32
	ErrorCode   int32
}

func (*BadMsgNotification) ConstructorID() uint32 { return 0xa7eff811 }

func (v *BadMsgNotification) Encode(w *tl.Writer) {
	w.Long(v.BadMsgID)
	w.Int(v.BadMsgSeqno)
	w.Int(v.ErrorCode)
}

func decodeBadMsgNotification(r *tl.Reader) (registry.Object, error) {
	v := &BadMsgNotification{}
	var err error
	if v.BadMsgID, err = r.Long(); err != nil {
		return nil, err
	}
	if v.BadMsgSeqno, err = r.Int(); err != nil {
		return nil, err
	}
	if v.ErrorCode, err = r.Int(); err != nil {
		return nil, err
	}
	return v, nil
}

func init() { registry.Register(0xa7eff811, decodeBadMsgNotification) }

// BadServerSalt is the 0xEDAB447B constructor: error code 48, carrying the
// salt the client must adopt and retry with.
type BadServerSalt struct {
	BadMsgID      int64
	BadMsgSeqno   int32
	ErrorCode     int32
	NewServerSalt int64
}

func (*BadServerSalt) ConstructorID() uint32 { return 0xedab447b }

func (v *BadServerSalt) Encode(w *tl.Writer) {
	w.Long(v.BadMsgID)
	w.Int(v.BadMsgSeqno)
	w.Int(v.ErrorCode)
	w.Long(v.NewServerSalt)
}

func decodeBadServerSalt(r *tl.Reader) (registry.Object, error) {
	v := &BadServerSalt{}
	var err error
	if v.BadMsgID, err = r.Long(); err != nil {
		return nil, err
	}
	if v.BadMsgSeqno, err = r.Int(); err != nil {
		return nil, err
	}
	if v.ErrorCode, err = r.Int(); err != nil {
		return nil, err
	}
	if v.NewServerSalt, err = r.Long(); err != nil {
		return nil, err
	}
	return v, nil
}

func init() { registry.Register(0xedab447b, decodeBadServerSalt) }

// NewSessionCreated is the 0x9EC20908 constructor the server sends once
// per new session, carrying the salt the client must start using.
type NewSessionCreated struct {
	FirstMsgID int64
	UniqueID   int64
	ServerSalt int64
}

func (*NewSessionCreated) ConstructorID() uint32 { return 0x9ec20908 }

func (v *NewSessionCreated) Encode(w *tl.Writer) {
	w.Long(v.FirstMsgID)
	w.Long(v.UniqueID)
	w.Long(v.ServerSalt)
}

func decodeNewSessionCreated(r *tl.Reader) (registry.Object, error) {
	v := &NewSessionCreated{}
	var err error
	if v.FirstMsgID, err = r.Long(); err != nil {
		return nil, err
	}
	if v.UniqueID, err = r.Long(); err != nil {
		return nil, err
	}
	if v.ServerSalt, err = r.Long(); err != nil {
		return nil, err
	}
	return v, nil
}

func init() { registry.Register(0x9ec20908, decodeNewSessionCreated) }

// Ping is the 0x7ABE77EC constructor the client sends to keep the
// connection alive and measure round-trip time.
type Ping struct {
	PingID int64
}

func (*Ping) ConstructorID() uint32 { return 0x7abe77ec }
func (v *Ping) Encode(w *tl.Writer) { w.Long(v.PingID) }

func decodePing(r *tl.Reader) (registry.Object, error) {
	id, err := r.Long()
	if err != nil {
		return nil, err
	}
	return &Ping{PingID: id}, nil
}

func init() { registry.Register(0x7abe77ec, decodePing) }

// Pong is the 0x347773C5 reply to Ping.
type Pong struct {
	MsgID  int64
	PingID int64
}

func (*Pong) ConstructorID() uint32 { return 0x347773c5 }

func (v *Pong) Encode(w *tl.Writer) {
	w.Long(v.MsgID)
	w.Long(v.PingID)
}

func decodePong(r *tl.Reader) (registry.Object, error) {
	v := &Pong{}
	var err error
	if v.MsgID, err = r.Long(); err != nil {
		return nil, err
	}
	if v.PingID, err = r.Long(); err != nil {
		return nil, err
	}
	return v, nil
}

func init() { registry.Register(0x347773c5, decodePong) }
