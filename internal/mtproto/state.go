// Package mtproto implements the MTProto 2.0 message envelope: encryption
// under an established AuthKey, msg_id/seq_no bookkeeping, and the replay
// and clock-skew checks spec §4.3/§4.4 require every connection to perform
// before handing a decrypted message up to the Sender.
package mtproto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	mcrypto "github.com/telemtp/mtproto-go/internal/crypto"
)

// replayWindowSize is the number of most-recently-seen msg_ids the state
// keeps to reject replayed server messages (spec §4.4).
const replayWindowSize = 500

// ErrConnectionBroken is wrapped into the error CheckReplay returns once
// maxConsecutiveIgnores consecutive inbound messages have had to be
// ignored; callers must close the connection rather than keep reading.
var ErrConnectionBroken = errors.New("mtproto: connection broken: too many consecutive ignored messages")

// maxPastSkew and maxFutureSkew bound how far the server's msg_id-implied
// timestamp may differ from the local clock before a message is rejected
// outright (spec §4.3 step 5: more than 300s in the past, or 30s in the
// future). A bad_msg_notification(16)/(17) response from the server
// corrects the client's clock instead of tripping this check again
// immediately.
const (
	maxPastSkew   = 300 * time.Second
	maxFutureSkew = 30 * time.Second
)

// maxConsecutiveIgnores is the number of consecutive ignored (replayed or
// stale) inbound messages the connection tolerates before it is considered
// broken and must be torn down (spec §4.3 step 6, §7).
const maxConsecutiveIgnores = 10

// State is the mutable per-connection session state: the negotiated
// AuthKey and salt, the session id, and the bookkeeping needed to validate
// every message that crosses the wire. The rmu/wmu split lets reads
// (decrypting inbound messages) and writes (encrypting outbound messages)
// proceed concurrently, since they touch disjoint fields.
type State struct {
	AuthKey mcrypto.AuthKey

	wmu        sync.Mutex
	serverSalt int64
	sessionID  int64
	seqCounter int32
	ids        MsgIDGenerator

	rmu                sync.Mutex
	clockDelta         time.Duration
	seen               [replayWindowSize]int64
	seenNext           int
	seenCount          int
	highestRemoteMsgID int64
	ignoreCount        int
}

// NewState allocates a State with a fresh random session id, as required
// at the start of every new MTProto session (spec §4.2).
func NewState(authKey mcrypto.AuthKey, serverSalt int64) (*State, error) {
	var idBytes [8]byte
	if _, err := rand.Read(idBytes[:]); err != nil {
		return nil, fmt.Errorf("mtproto: generate session id: %w", err)
	}
	sessionID := beInt64(idBytes[:])
	return &State{AuthKey: authKey, serverSalt: serverSalt, sessionID: sessionID}, nil
}

// ServerSalt returns the salt currently used to authenticate outgoing
// messages.
func (s *State) ServerSalt() int64 {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	return s.serverSalt
}

// SetServerSalt adopts a new salt, as instructed by a bad_server_salt
// notification or a future_salts response.
func (s *State) SetServerSalt(salt int64) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	s.serverSalt = salt
}

// SessionID returns this connection's session identifier.
func (s *State) SessionID() int64 {
	return s.sessionID
}

// NextMsgID returns the next client msg_id, embedding the learned
// clock offset so ids stay consistent with the skew check in
// CheckClockSkew (spec §4.2's unix_time_with_offset).
func (s *State) NextMsgID() int64 {
	s.rmu.Lock()
	delta := s.clockDelta
	s.rmu.Unlock()
	return s.ids.Next(delta)
}

// NextSeqNo computes the next seq_no, per spec §4.2: content messages
// (contentRelated=true) consume an odd slot and advance the counter;
// acks and other non-content messages take the next even value without
// advancing it.
func (s *State) NextSeqNo(contentRelated bool) int32 {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if contentRelated {
		seq := s.seqCounter*2 + 1
		s.seqCounter++
		return seq
	}
	return s.seqCounter * 2
}

// AdjustClock records a clock correction learned from a bad_msg_notification
// error code 16 (msg_id too low) or 17 (msg_id too high), per spec §4.4.
func (s *State) AdjustClock(delta time.Duration) {
	s.rmu.Lock()
	defer s.rmu.Unlock()
	s.clockDelta += delta
}

// CheckClockSkew reports whether msgID's embedded timestamp falls within
// the asymmetric window (spec §4.3 step 5) of the corrected local time:
// more than maxPastSkew behind is rejected, more than maxFutureSkew ahead
// is rejected. Decrypt skips this check when called with exemptClockCheck
// set.
func (s *State) CheckClockSkew(msgID int64) error {
	s.rmu.Lock()
	corrected := time.Now().Add(s.clockDelta)
	s.rmu.Unlock()

	msgTime := time.Unix(msgID>>32, 0)
	skew := msgTime.Sub(corrected)
	if skew > maxFutureSkew {
		return fmt.Errorf("mtproto: msg_id %d is %s ahead of corrected clock, exceeds %s", msgID, skew, maxFutureSkew)
	}
	if skew < -maxPastSkew {
		return fmt.Errorf("mtproto: msg_id %d is %s behind corrected clock, exceeds %s", msgID, -skew, maxPastSkew)
	}
	return nil
}

// CheckReplay reports whether msgID should be ignored: already seen within
// the replay window, or not greater than highest_remote_msg_id (spec §3,
// §4.3 step 6). A message that must be ignored counts against
// ignoreCount; once maxConsecutiveIgnores consecutive messages have been
// ignored the connection is reported broken and must be torn down by the
// caller. Any message that is accepted resets the counter.
func (s *State) CheckReplay(msgID int64) error {
	s.rmu.Lock()
	defer s.rmu.Unlock()

	if msgID <= s.highestRemoteMsgID {
		limit := s.seenCount
		if limit > replayWindowSize {
			limit = replayWindowSize
		}
		for i := 0; i < limit; i++ {
			if s.seen[i] == msgID {
				return s.ignoreLocked(fmt.Errorf("mtproto: msg_id %d replayed", msgID))
			}
		}
		return s.ignoreLocked(fmt.Errorf("mtproto: msg_id %d not greater than highest_remote_msg_id %d", msgID, s.highestRemoteMsgID))
	}

	s.seen[s.seenNext] = msgID
	s.seenNext = (s.seenNext + 1) % replayWindowSize
	s.seenCount++
	s.highestRemoteMsgID = msgID
	s.ignoreCount = 0
	return nil
}

// ignoreLocked records one more consecutive ignored message under rmu and
// escalates to a fatal error once maxConsecutiveIgnores is reached.
func (s *State) ignoreLocked(cause error) error {
	s.ignoreCount++
	if s.ignoreCount >= maxConsecutiveIgnores {
		return fmt.Errorf("mtproto: %d consecutive ignored messages: %w: %v", s.ignoreCount, ErrConnectionBroken, cause)
	}
	return cause
}

func beInt64(b []byte) int64 {
	var v int64
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v
}
