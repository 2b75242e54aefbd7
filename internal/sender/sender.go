// Package sender implements the MTProto message multiplexer (spec §4.4):
// one Sender owns a single TCP connection to a datacenter, batches
// outbound messages into msg_containers, matches rpc_result replies back
// to their caller. Recovery is not transparent: on bad_server_salt it
// adopts the new salt and resolves the affected request with an error,
// a bad_msg_notification resolves the request with an error, and every
// rpc_error (FLOOD_WAIT_N included) is returned to Invoke's caller. No
// request is resent automatically.
package sender

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/telemtp/mtproto-go/internal/mtproto"
	"github.com/telemtp/mtproto-go/internal/rpcerr"
	"github.com/telemtp/mtproto-go/internal/schema/gen"
	"github.com/telemtp/mtproto-go/internal/schema/registry"
	"github.com/telemtp/mtproto-go/internal/tl"
	"github.com/telemtp/mtproto-go/internal/transport"
)

// Sender multiplexes RPC calls and server-pushed updates over one
// connection. Exported via Pool (pool.go) when a client needs more than
// one concurrent connection to the same datacenter.
type Sender struct {
	dial   DialFunc
	codec  transport.Codec
	state  *mtproto.State
	logger *slog.Logger
	metrics *Metrics

	writeMu sync.Mutex
	conn    net.Conn
	reader  *bufio.Reader

	pending  *pendingTable
	acks     *ackQueue
	outbound chan queuedMessage
	updatesC chan registry.Object

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	closeOnce sync.Once
	closed    chan struct{}
}

// Options configures a new Sender.
type Options struct {
	Dial    DialFunc
	Codec   transport.Codec
	State   *mtproto.State
	Logger  *slog.Logger
	Metrics *Metrics
	// UpdatesBuffer bounds the channel of server-pushed Updates objects;
	// once full, the newest update is dropped (the read loop never blocks
	// on it) and a warning is logged for every dropped update, with no
	// rate limit.
	UpdatesBuffer int
}

// New dials opt.Dial, performs the transport negotiation handshake, and
// starts the Sender's background read/write/keepalive goroutines. Close
// cancels their shared context and stops them all.
func New(ctx context.Context, opt Options) (*Sender, error) {
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.UpdatesBuffer == 0 {
		opt.UpdatesBuffer = 100
	}

	conn, err := dialWithBackoff(ctx, opt.Dial)
	if err != nil {
		return nil, err
	}
	if err := writeNegotiation(conn, opt.Codec); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sender: negotiate transport: %w", err)
	}

	sctx, cancel := context.WithCancel(ctx)
	group, gctx := errgroup.WithContext(sctx)

	s := &Sender{
		dial:     opt.Dial,
		codec:    opt.Codec,
		state:    opt.State,
		logger:   opt.Logger,
		metrics:  opt.Metrics,
		conn:     conn,
		reader:   bufio.NewReader(conn),
		pending:  newPendingTable(),
		acks:     &ackQueue{},
		outbound: make(chan queuedMessage, 64),
		updatesC: make(chan registry.Object, opt.UpdatesBuffer),
		ctx:      gctx,
		cancel:   cancel,
		group:    group,
		closed:   make(chan struct{}),
	}

	group.Go(func() error { return s.readLoop() })
	group.Go(func() error { return s.sendLoop() })
	group.Go(func() error { return s.keepaliveLoop() })
	group.Go(func() error { return s.ackFlushLoop() })

	return s, nil
}

func writeNegotiation(conn net.Conn, codec transport.Codec) error {
	switch codec.(type) {
	case transport.Abridged:
		_, err := conn.Write([]byte{transport.AbridgedNegotiationByte})
		return err
	case transport.Intermediate:
		_, err := conn.Write(transport.IntermediateNegotiation[:])
		return err
	case *transport.Full:
		// Full transport identifies itself via its first frame's own
		// structure; no separate negotiation byte is required.
		return nil
	default:
		return fmt.Errorf("sender: unknown codec %T", codec)
	}
}

// Updates returns the channel of server-pushed Updates objects. Consumers
// (internal/updates.MessageBox) must keep this drained; the Sender never
// blocks the read loop on it (spec §4.5's bounded-queue, drop-newest rule).
func (s *Sender) Updates() <-chan registry.Object { return s.updatesC }

// Invoke sends req and blocks until its rpc_result (or an unrecoverable
// error) arrives, or ctx is done.
func (s *Sender) Invoke(ctx context.Context, req registry.Object) (registry.Object, error) {
	callID := "inv_" + uuid.New().String()[:8]
	start := time.Now()
	w := tl.NewWriter(64)
	w.UInt(req.ConstructorID())
	req.Encode(w)
	body := maybeGZIP(w.Bytes())

	msgID := s.state.NextMsgID()
	seqNo := s.state.NextSeqNo(true)
	s.logger.Debug("invoke", "call_id", callID, "constructor", fmt.Sprintf("%#x", req.ConstructorID()), "msg_id", msgID)
	p := s.pending.register(msgID)

	select {
	case s.outbound <- queuedMessage{msgID: msgID, seqNo: seqNo, body: body}:
	case <-ctx.Done():
		s.pending.abandon(msgID)
		return nil, ctx.Err()
	case <-s.closed:
		s.pending.abandon(msgID)
		return nil, ErrClosed
	}

	select {
	case res := <-p.resultC:
		s.observeOutcome(res, time.Since(start))
		return res.obj, res.err
	case <-ctx.Done():
		s.pending.abandon(msgID)
		return nil, ctx.Err()
	case <-s.closed:
		return nil, ErrClosed
	}
}

func (s *Sender) observeOutcome(res pendingResult, elapsed time.Duration) {
	switch {
	case res.err == nil:
		s.metrics.observeRequest("ok", elapsed.Seconds())
	default:
		if rpcErr, ok := res.err.(*rpcerr.Error); ok {
			if _, ok := rpcErr.IsFloodWait(); ok {
				s.metrics.incFloodWait()
			}
			s.metrics.observeRequest("rpc_error", elapsed.Seconds())
			return
		}
		s.metrics.observeRequest("error", elapsed.Seconds())
	}
}

// sendLoop batches messages queued within a short debounce window into a
// single msg_container, per spec §4.4's container-packing guidance, and
// writes the resulting frame to the wire.
func (s *Sender) sendLoop() error {
	const debounce = 5 * time.Millisecond
	for {
		var batch []queuedMessage
		select {
		case m := <-s.outbound:
			batch = append(batch, m)
		case <-s.ctx.Done():
			return s.ctx.Err()
		}

		timer := time.NewTimer(debounce)
	drain:
		for {
			select {
			case m := <-s.outbound:
				batch = append(batch, m)
			case <-timer.C:
				break drain
			case <-s.ctx.Done():
				timer.Stop()
				return s.ctx.Err()
			}
		}

		if ack := s.acks.drain(false); ack != nil {
			w := tl.NewWriter(0)
			w.UInt(ack.ConstructorID())
			ack.Encode(w)
			ackMsgID := s.state.NextMsgID()
			batch = append(batch, queuedMessage{msgID: ackMsgID, seqNo: s.state.NextSeqNo(false), body: w.Bytes()})
		}

		for _, group := range batchForContainer(batch) {
			body := packContainer(group)
			containerMsgID := group[0].msgID
			containerSeq := group[0].seqNo
			if len(group) > 1 {
				containerSeq = s.state.NextSeqNo(false)
			}
			if err := s.sendFrame(containerMsgID, containerSeq, body); err != nil {
				s.failPending(group, err)
				return err
			}
		}
	}
}

func (s *Sender) failPending(msgs []queuedMessage, err error) {
	for _, m := range msgs {
		s.pending.resolve(m.msgID, nil, err)
	}
}

func (s *Sender) sendFrame(msgID int64, seqNo int32, body []byte) error {
	frame, err := s.state.Encrypt(msgID, seqNo, body)
	if err != nil {
		return fmt.Errorf("sender: encrypt: %w", err)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.codec.Pack(s.conn, frame)
}

func (s *Sender) keepaliveLoop() error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			ping := &gen.Ping{PingID: s.state.NextMsgID()}
			go func() {
				ctx, cancel := context.WithTimeout(s.ctx, pingDisconnectDelay)
				defer cancel()
				if _, err := s.Invoke(ctx, ping); err != nil {
					s.logger.Warn("keepalive ping failed", "error", err)
				}
			}()
		case <-s.ctx.Done():
			return s.ctx.Err()
		}
	}
}

func (s *Sender) ackFlushLoop() error {
	ticker := time.NewTicker(ackFlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if ack := s.acks.drain(true); ack != nil {
				w := tl.NewWriter(0)
				w.UInt(ack.ConstructorID())
				ack.Encode(w)
				msgID := s.state.NextMsgID()
				if err := s.sendFrame(msgID, s.state.NextSeqNo(false), w.Bytes()); err != nil {
					s.logger.Warn("ack flush failed", "error", err)
				}
			}
		case <-s.ctx.Done():
			return s.ctx.Err()
		}
	}
}

// Close shuts down the Sender's background goroutines and closes the
// underlying connection. Any Invoke calls still blocked return ErrClosed.
func (s *Sender) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.cancel()
		s.conn.Close()
		s.pending.failAll(ErrClosed)
	})
	return s.group.Wait()
}
