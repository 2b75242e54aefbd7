// Package crypto implements MTProto 2.0's message envelope cryptography:
// the 256-byte authorization key, AES-256-IGE block mode (not provided by
// crypto/cipher), and the key/iv derivation formulas for client→server and
// server→client messages (spec §4.3).
package crypto

import (
	"crypto/sha1"
)

// AuthKey is the 2048-bit shared secret established by the (out-of-scope)
// Diffie-Hellman key exchange. Every encrypted message is bound to it via
// the low 64 bits of its SHA-1 digest, the key id (spec §4.2).
type AuthKey struct {
	bytes [256]byte
}

// NewAuthKey wraps a 256-byte key material, typically loaded from Storage.
func NewAuthKey(b [256]byte) AuthKey { return AuthKey{bytes: b} }

// Bytes returns the raw key material.
func (k AuthKey) Bytes() [256]byte { return k.bytes }

// ID returns the auth_key_id: the low-order 64 bits of SHA-1(auth_key),
// used on the wire to identify which key a message was encrypted under.
func (k AuthKey) ID() uint64 {
	digest := sha1.Sum(k.bytes[:])
	return beUint64(digest[12:20])
}

// Zero reports whether the key has never been set (no auth-key exchange
// has completed yet for this connection).
func (k AuthKey) Zero() bool {
	for _, b := range k.bytes {
		if b != 0 {
			return false
		}
	}
	return true
}

// Clear zeroes the key material. Call on teardown or handshake failure so
// the secret doesn't linger in memory longer than necessary.
func (k *AuthKey) Clear() {
	clear(k.bytes[:])
}

func beUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}
