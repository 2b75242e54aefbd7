package crypto

import "crypto/sha256"

// Direction selects which of the two key-derivation formulas (spec §4.3)
// applies: x=0 for client→server, x=8 for server→client.
type Direction int

const (
	ClientToServer Direction = 0
	ServerToClient Direction = 1
)

func (d Direction) x() int { return int(d) * 8 }

// MsgKey computes the 128-bit msg_key from the auth key and the plaintext
// message (decrypted_message_header || data || padding, 12-1024 bytes of
// padding per spec §4.3): the middle 16 bytes of
// SHA256(substr(auth_key, 88+x, 32) || plaintext).
func MsgKey(authKey [256]byte, dir Direction, plaintext []byte) [16]byte {
	x := dir.x()
	h := sha256.New()
	h.Write(authKey[88+x : 88+x+32])
	h.Write(plaintext)
	sum := h.Sum(nil)
	var key [16]byte
	copy(key[:], sum[8:24])
	return key
}

// DeriveKeyIV computes the AES-256-IGE key and 32-byte IV for one message,
// following the two-hash combination in spec §4.3.
func DeriveKeyIV(authKey [256]byte, dir Direction, msgKey [16]byte) (key [32]byte, iv [32]byte) {
	x := dir.x()

	ha := sha256.New()
	ha.Write(msgKey[:])
	ha.Write(authKey[x : x+36])
	shaA := ha.Sum(nil)

	hb := sha256.New()
	hb.Write(authKey[40+x : 40+x+36])
	hb.Write(msgKey[:])
	shaB := hb.Sum(nil)

	copy(key[0:8], shaA[0:8])
	copy(key[8:24], shaB[8:24])
	copy(key[24:32], shaA[24:32])

	copy(iv[0:8], shaB[0:8])
	copy(iv[8:24], shaA[8:24])
	copy(iv[24:32], shaB[24:32])

	return key, iv
}
