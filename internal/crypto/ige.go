package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// IGE implements AES-256 Infinite Garble Extension mode, the block mode
// MTProto uses for its message envelope (spec §4.3). IGE is not part of
// crypto/cipher, so it is hand-rolled here directly on top of a block
// cipher.Block the way crypto/cipher's own cbc.go composes one.
//
// Encryption:  C_i = E(P_i XOR C_{i-1}) XOR P_{i-1}
// Decryption:  P_i = D(C_i XOR P_{i-1}) XOR C_{i-1}
// with C_0 = iv[16:32], P_0 = iv[0:16].
type IGE struct {
	block     cipher.Block
	prevPlain [aes.BlockSize]byte
	prevCrypt [aes.BlockSize]byte
}

// NewIGE returns an IGE cipher over key (16/24/32 bytes) with the given
// 32-byte IV (iv[0:16] is P_0, iv[16:32] is C_0).
func NewIGE(key []byte, iv [32]byte) (*IGE, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: ige: %w", err)
	}
	ige := &IGE{block: block}
	copy(ige.prevPlain[:], iv[0:16])
	copy(ige.prevCrypt[:], iv[16:32])
	return ige, nil
}

// Encrypt writes len(src) bytes of ciphertext into dst. len(src) must be a
// non-zero multiple of the AES block size; src and dst must not overlap
// except for being identical.
func (c *IGE) Encrypt(dst, src []byte) error {
	if len(src)%aes.BlockSize != 0 || len(src) == 0 {
		return fmt.Errorf("crypto: ige: input length %d is not a non-zero multiple of %d", len(src), aes.BlockSize)
	}
	var tmp [aes.BlockSize]byte
	for off := 0; off < len(src); off += aes.BlockSize {
		block := src[off : off+aes.BlockSize]
		xorBytes(tmp[:], block, c.prevCrypt[:])
		c.block.Encrypt(tmp[:], tmp[:])
		xorBytes(tmp[:], tmp[:], c.prevPlain[:])
		copy(c.prevPlain[:], block)
		copy(dst[off:off+aes.BlockSize], tmp[:])
		copy(c.prevCrypt[:], tmp[:])
	}
	return nil
}

// Decrypt writes len(src) bytes of plaintext into dst. Same size
// constraints as Encrypt.
func (c *IGE) Decrypt(dst, src []byte) error {
	if len(src)%aes.BlockSize != 0 || len(src) == 0 {
		return fmt.Errorf("crypto: ige: input length %d is not a non-zero multiple of %d", len(src), aes.BlockSize)
	}
	var tmp [aes.BlockSize]byte
	for off := 0; off < len(src); off += aes.BlockSize {
		block := src[off : off+aes.BlockSize]
		xorBytes(tmp[:], block, c.prevPlain[:])
		c.block.Decrypt(tmp[:], tmp[:])
		xorBytes(tmp[:], tmp[:], c.prevCrypt[:])
		copy(c.prevPlain[:], tmp[:])
		copy(dst[off:off+aes.BlockSize], tmp[:])
		copy(c.prevCrypt[:], block)
	}
	return nil
}

func xorBytes(dst, a, b []byte) {
	for i := range dst {
		dst[i] = a[i] ^ b[i]
	}
}

// EncryptIGE is a convenience one-shot wrapper over a fresh IGE state.
func EncryptIGE(key []byte, iv [32]byte, plaintext []byte) ([]byte, error) {
	c, err := NewIGE(key, iv)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(plaintext))
	if err := c.Encrypt(out, plaintext); err != nil {
		return nil, err
	}
	return out, nil
}

// DecryptIGE is a convenience one-shot wrapper over a fresh IGE state.
func DecryptIGE(key []byte, iv [32]byte, ciphertext []byte) ([]byte, error) {
	c, err := NewIGE(key, iv)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(ciphertext))
	if err := c.Decrypt(out, ciphertext); err != nil {
		return nil, err
	}
	return out, nil
}
