package mtproto

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	mcrypto "github.com/telemtp/mtproto-go/internal/crypto"
)

func testAuthKey() mcrypto.AuthKey {
	var b [256]byte
	for i := range b {
		b[i] = byte(i * 3)
	}
	return mcrypto.NewAuthKey(b)
}

// encryptFromServer frames body the way the server frames its replies to
// s: the same envelope State.Encrypt builds, but with msg_key and the
// AES key/iv derived under the server→client formula that Decrypt uses.
func encryptFromServer(t *testing.T, s *State, msgID int64, seqNo int32, body []byte) []byte {
	t.Helper()
	inner := make([]byte, 32+len(body))
	binary.LittleEndian.PutUint64(inner[0:8], uint64(s.ServerSalt()))
	binary.LittleEndian.PutUint64(inner[8:16], uint64(s.SessionID()))
	binary.LittleEndian.PutUint64(inner[16:24], uint64(msgID))
	binary.LittleEndian.PutUint32(inner[24:28], uint32(seqNo))
	binary.LittleEndian.PutUint32(inner[28:32], uint32(len(body)))
	copy(inner[32:], body)

	padLen := minPadding + (16-(len(inner)+minPadding)%16)%16
	padded := make([]byte, len(inner)+padLen)
	copy(padded, inner)

	authKeyBytes := s.AuthKey.Bytes()
	msgKey := mcrypto.MsgKey(authKeyBytes, mcrypto.ServerToClient, padded)
	key, iv := mcrypto.DeriveKeyIV(authKeyBytes, mcrypto.ServerToClient, msgKey)
	ciphertext, err := mcrypto.EncryptIGE(key[:], iv, padded)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	out := make([]byte, 8+16+len(ciphertext))
	binary.LittleEndian.PutUint64(out[0:8], s.AuthKey.ID())
	copy(out[8:24], msgKey[:])
	copy(out[24:], ciphertext)
	return out
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	authKey := testAuthKey()
	state, err := NewState(authKey, 12345)
	if err != nil {
		t.Fatalf("new state: %v", err)
	}

	body := []byte("a fully serialized TL request body")
	msgID := state.NextMsgID()
	seqNo := state.NextSeqNo(true)

	// The frame is built as the server would build it: Decrypt only
	// accepts server→client keying and this state's own session_id, since
	// the server's replies are addressed to the client's session.
	frame := encryptFromServer(t, state, msgID, seqNo, body)

	got, err := state.Decrypt(frame, false)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if got.MsgID != msgID {
		t.Fatalf("msg_id mismatch: got %d want %d", got.MsgID, msgID)
	}
	if got.SeqNo != seqNo {
		t.Fatalf("seq_no mismatch: got %d want %d", got.SeqNo, seqNo)
	}
	if !bytes.Equal(got.Body, body) {
		t.Fatalf("body mismatch: got %q want %q", got.Body, body)
	}
}

func TestDecryptRejectsWrongSession(t *testing.T) {
	authKey := testAuthKey()
	sender, err := NewState(authKey, 12345)
	if err != nil {
		t.Fatalf("new state: %v", err)
	}
	other, err := NewState(authKey, 12345)
	if err != nil {
		t.Fatalf("new state: %v", err)
	}

	frame := encryptFromServer(t, sender, sender.NextMsgID(), sender.NextSeqNo(true), []byte("hello"))
	if _, err := other.Decrypt(frame, false); err == nil {
		t.Fatal("expected session_id mismatch to be rejected")
	}
}

func TestDecryptRejectsReplay(t *testing.T) {
	authKey := testAuthKey()
	state, err := NewState(authKey, 12345)
	if err != nil {
		t.Fatalf("new state: %v", err)
	}
	frame := encryptFromServer(t, state, state.NextMsgID(), state.NextSeqNo(true), []byte("hello"))
	if _, err := state.Decrypt(frame, false); err != nil {
		t.Fatalf("first decrypt: %v", err)
	}
	if _, err := state.Decrypt(frame, false); err == nil {
		t.Fatal("expected second decrypt of the same frame to be rejected as a replay")
	}
}

func TestClockSkewRejectedUnlessExempt(t *testing.T) {
	authKey := testAuthKey()
	state, err := NewState(authKey, 12345)
	if err != nil {
		t.Fatalf("new state: %v", err)
	}

	staleMsgID := (time.Now().Add(-1 * time.Hour).Unix()) << 32
	if err := state.CheckClockSkew(staleMsgID); err == nil {
		t.Fatal("expected stale msg_id to fail the clock skew check")
	}

	state.AdjustClock(-1 * time.Hour)
	if err := state.CheckClockSkew(staleMsgID); err != nil {
		t.Fatalf("after clock adjustment, expected check to pass: %v", err)
	}
}

func TestSeqNoParity(t *testing.T) {
	authKey := testAuthKey()
	state, err := NewState(authKey, 1)
	if err != nil {
		t.Fatalf("new state: %v", err)
	}

	content := state.NextSeqNo(true)
	if content%2 != 1 {
		t.Fatalf("content-related seq_no should be odd, got %d", content)
	}
	ack := state.NextSeqNo(false)
	if ack%2 != 0 {
		t.Fatalf("non-content seq_no should be even, got %d", ack)
	}
}
