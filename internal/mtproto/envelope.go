package mtproto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/binary"
	"fmt"

	mcrypto "github.com/telemtp/mtproto-go/internal/crypto"
)

// minPadding/maxPadding bound the random padding appended before
// encryption, per MTProto 2.0's envelope format (spec §4.3): the total
// encrypted length must land on a 16-byte boundary with at least 12 bytes
// of padding, and the padding itself carries no information.
const (
	minPadding = 12
	maxPadding = 1024
)

// Encrypt frames body (an already-serialized TL message) into one
// encrypted MTProto message: salt || session_id || msg_id || seq_no ||
// length || body || padding, then AES-256-IGE under keys derived from the
// client→server formula, prefixed with the auth_key_id and msg_key.
func (s *State) Encrypt(msgID int64, seqNo int32, body []byte) ([]byte, error) {
	if s.AuthKey.Zero() {
		return nil, fmt.Errorf("mtproto: encrypt: no auth key established")
	}

	inner := make([]byte, 32+len(body))
	binary.LittleEndian.PutUint64(inner[0:8], uint64(s.ServerSalt()))
	binary.LittleEndian.PutUint64(inner[8:16], uint64(s.sessionID))
	binary.LittleEndian.PutUint64(inner[16:24], uint64(msgID))
	binary.LittleEndian.PutUint32(inner[24:28], uint32(seqNo))
	binary.LittleEndian.PutUint32(inner[28:32], uint32(len(body)))
	copy(inner[32:], body)

	padLen := minPadding + int(randUint32()%uint32(maxPadding-minPadding))
	padLen -= (len(inner) + padLen) % 16
	for padLen < minPadding {
		padLen += 16
	}
	padded := make([]byte, len(inner)+padLen)
	copy(padded, inner)
	if _, err := rand.Read(padded[len(inner):]); err != nil {
		return nil, fmt.Errorf("mtproto: encrypt: generate padding: %w", err)
	}

	authKeyBytes := s.AuthKey.Bytes()
	msgKey := mcrypto.MsgKey(authKeyBytes, mcrypto.ClientToServer, padded)
	key, iv := mcrypto.DeriveKeyIV(authKeyBytes, mcrypto.ClientToServer, msgKey)

	ciphertext, err := mcrypto.EncryptIGE(key[:], iv, padded)
	if err != nil {
		return nil, fmt.Errorf("mtproto: encrypt: %w", err)
	}

	out := make([]byte, 8+16+len(ciphertext))
	binary.LittleEndian.PutUint64(out[0:8], s.AuthKey.ID())
	copy(out[8:24], msgKey[:])
	copy(out[24:], ciphertext)
	return out, nil
}

// DecryptedMessage is one fully validated inbound MTProto message.
type DecryptedMessage struct {
	MsgID int64
	SeqNo int32
	Body  []byte
}

// Decrypt validates and unwraps a server-originated frame: auth_key_id and
// msg_key checks, AES-256-IGE decryption under the server→client formula,
// then the session_id, clock-skew, and replay checks from spec §4.3/§4.4.
// exemptClockCheck should be set only while processing a bad_msg_notification/
// bad_server_salt/new_session_created exchange, which exists to repair the
// very state this check otherwise enforces.
func (s *State) Decrypt(frame []byte, exemptClockCheck bool) (*DecryptedMessage, error) {
	if len(frame) < 8+16+16 {
		return nil, fmt.Errorf("mtproto: decrypt: frame too short (%d bytes)", len(frame))
	}
	authKeyID := binary.LittleEndian.Uint64(frame[0:8])
	if authKeyID != s.AuthKey.ID() {
		return nil, fmt.Errorf("mtproto: decrypt: auth_key_id %#x does not match session", authKeyID)
	}
	wantMsgKey := frame[8:24]
	ciphertext := frame[24:]

	authKeyBytes := s.AuthKey.Bytes()
	var msgKey16 [16]byte
	copy(msgKey16[:], wantMsgKey)
	key, iv := mcrypto.DeriveKeyIV(authKeyBytes, mcrypto.ServerToClient, msgKey16)

	plaintext, err := mcrypto.DecryptIGE(key[:], iv, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("mtproto: decrypt: %w", err)
	}

	gotMsgKey := mcrypto.MsgKey(authKeyBytes, mcrypto.ServerToClient, plaintext)
	if subtle.ConstantTimeCompare(gotMsgKey[:], wantMsgKey) != 1 {
		return nil, fmt.Errorf("mtproto: decrypt: msg_key mismatch")
	}

	if len(plaintext) < 32 {
		return nil, fmt.Errorf("mtproto: decrypt: plaintext too short (%d bytes)", len(plaintext))
	}
	sessionID := int64(binary.LittleEndian.Uint64(plaintext[8:16]))
	if sessionID != s.sessionID {
		return nil, fmt.Errorf("mtproto: decrypt: session_id %#x does not match %#x", sessionID, s.sessionID)
	}
	msgID := int64(binary.LittleEndian.Uint64(plaintext[16:24]))
	seqNo := int32(binary.LittleEndian.Uint32(plaintext[24:28]))
	bodyLen := binary.LittleEndian.Uint32(plaintext[28:32])
	if int(32+bodyLen) > len(plaintext) {
		return nil, fmt.Errorf("mtproto: decrypt: declared body length %d exceeds plaintext", bodyLen)
	}
	body := plaintext[32 : 32+bodyLen]

	if !exemptClockCheck {
		if err := s.CheckClockSkew(msgID); err != nil {
			return nil, err
		}
	}
	if err := s.CheckReplay(msgID); err != nil {
		return nil, err
	}
	s.ids.Observe(msgID)

	out := make([]byte, len(body))
	copy(out, body)
	return &DecryptedMessage{MsgID: msgID, SeqNo: seqNo, Body: out}, nil
}

func randUint32() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing means the system RNG is broken; there is no
		// safe fallback for a security-sensitive padding length.
		panic(fmt.Sprintf("mtproto: crypto/rand unavailable: %v", err))
	}
	return binary.LittleEndian.Uint32(b[:])
}
