package sender

import (
	"errors"
	"fmt"

	"github.com/telemtp/mtproto-go/internal/mtproto"
	"github.com/telemtp/mtproto-go/internal/rpcerr"
	"github.com/telemtp/mtproto-go/internal/schema/gen"
	"github.com/telemtp/mtproto-go/internal/schema/registry"
	"github.com/telemtp/mtproto-go/internal/tl"
	"github.com/telemtp/mtproto-go/internal/transport"
)

// readLoop is the Sender's single reader goroutine: it owns s.reader and
// s.state's decrypt path exclusively, so no additional locking is needed
// around frame reads.
func (s *Sender) readLoop() error {
	for {
		frame, err := s.codec.Unpack(s.reader)
		if err != nil {
			var fatal *transport.ErrFatal
			if errors.As(err, &fatal) {
				s.logger.Error("transport fatal error, closing connection", "error", err)
			}
			s.pending.failAll(fmt.Errorf("sender: connection lost: %w", err))
			return err
		}

		msg, err := s.state.Decrypt(frame, false)
		if err != nil {
			if errors.Is(err, mtproto.ErrConnectionBroken) {
				s.pending.failAll(fmt.Errorf("sender: %w", err))
				return err
			}
			s.logger.Warn("dropping undecryptable frame", "error", err)
			continue
		}

		s.acks.add(msg.MsgID)
		if err := s.handleBody(msg.MsgID, msg.Body); err != nil {
			s.logger.Warn("error handling message body", "msg_id", msg.MsgID, "error", err)
		}
	}
}

// handleBody dispatches one decrypted message body by its leading
// constructor id, unwrapping gzip_packed and msg_container recursively
// (spec §4.4: a container's inner messages are processed exactly as if
// they had arrived unwrapped).
func (s *Sender) handleBody(msgID int64, body []byte) error {
	r := tl.NewReader(body)
	obj, err := registry.Decode(r)
	if err != nil {
		var unknown *registry.UnknownConstructorError
		if errors.As(err, &unknown) {
			s.logger.Debug("unknown constructor, ignoring message", "constructor", fmt.Sprintf("%#x", unknown.ID))
			return nil
		}
		return err
	}
	return s.dispatch(msgID, obj)
}

func (s *Sender) dispatch(msgID int64, obj registry.Object) error {
	switch v := obj.(type) {
	case *gen.GZIPPacked:
		plain, err := ungzip(v)
		if err != nil {
			return err
		}
		return s.handleBody(msgID, plain)

	case *gen.MsgContainer:
		for _, inner := range v.Messages {
			if err := s.handleBody(inner.MsgID, inner.Body); err != nil {
				s.logger.Warn("error handling container message", "msg_id", inner.MsgID, "error", err)
			}
		}
		return nil

	case *gen.RPCResult:
		return s.handleRPCResult(v)

	case *gen.BadServerSalt:
		s.state.SetServerSalt(v.NewServerSalt)
		s.pending.resolve(v.BadMsgID, nil, fmt.Errorf("sender: bad_server_salt: retry required"))
		return nil

	case *gen.BadMsgNotification:
		return s.handleBadMsgNotification(v)

	case *gen.NewSessionCreated:
		s.state.SetServerSalt(v.ServerSalt)
		return nil

	case *gen.Pong:
		s.pending.resolve(v.MsgID, v, nil)
		return nil

	case *gen.MsgsAck:
		return nil // purely informational; nothing to resolve on our side

	case gen.Updates:
		select {
		case s.updatesC <- v:
		default:
			s.logger.Warn("updates channel full, dropping update")
		}
		return nil

	default:
		// Anything else is a direct, non-rpc_result push (rare outside
		// Updates) or a response type whose request already resolved via
		// RPCResult; nothing further to do.
		return nil
	}
}

func (s *Sender) handleRPCResult(v *gen.RPCResult) error {
	if packed, ok := v.Result.(*gen.GZIPPacked); ok {
		plain, err := ungzip(packed)
		if err == nil {
			v.Result, err = registry.Decode(tl.NewReader(plain))
		}
		if err != nil {
			s.pending.resolve(v.ReqMsgID, nil, err)
			return err
		}
	}
	if rpcErrObj, ok := v.Result.(*gen.RPCError); ok {
		parsed := rpcerr.Parse(rpcErrObj.ErrorCode, rpcErrObj.ErrorMessage)
		s.pending.resolve(v.ReqMsgID, nil, parsed)
		return nil
	}
	s.pending.resolve(v.ReqMsgID, v.Result, nil)
	return nil
}

func (s *Sender) handleBadMsgNotification(v *gen.BadMsgNotification) error {
	if !rpcerr.Recoverable(v.ErrorCode) {
		s.pending.resolve(v.BadMsgID, nil, &rpcerr.BadMsgError{Code: v.ErrorCode})
		return nil
	}
	switch v.ErrorCode {
	case 16, 17:
		// msg_id too low/high relative to the server's clock: the caller
		// is expected to resynchronize via a fresh ping round-trip: retry
		// is delegated to Invoke's caller since the original request's
		// msg_id is no longer valid to resend as-is.
		s.pending.resolve(v.BadMsgID, nil, fmt.Errorf("sender: bad_msg_notification(%d): clock resync required", v.ErrorCode))
	default:
		s.pending.resolve(v.BadMsgID, nil, fmt.Errorf("sender: bad_msg_notification(%d): retry required", v.ErrorCode))
	}
	return nil
}
