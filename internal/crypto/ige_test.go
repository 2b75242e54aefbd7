package crypto

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestIGERoundTrip(t *testing.T) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("rand key: %v", err)
	}
	var iv [32]byte
	if _, err := rand.Read(iv[:]); err != nil {
		t.Fatalf("rand iv: %v", err)
	}
	plaintext := make([]byte, 64)
	if _, err := rand.Read(plaintext); err != nil {
		t.Fatalf("rand plaintext: %v", err)
	}

	ciphertext, err := EncryptIGE(key, iv, plaintext)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Equal(ciphertext, plaintext) {
		t.Fatal("ciphertext equals plaintext")
	}

	got, err := DecryptIGE(key, iv, ciphertext)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("round trip mismatch: got %x want %x", got, plaintext)
	}
}

// TestIGEDeterministic checks that encryption is a pure function of
// key/iv/plaintext and that changing the IV changes the ciphertext.
func TestIGEDeterministic(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, 32)
	var ivA, ivB [32]byte
	for i := range ivA {
		ivA[i] = byte(i)
		ivB[i] = byte(i + 1)
	}
	plaintext := bytes.Repeat([]byte{0x42}, 48)

	ct1, err := EncryptIGE(key, ivA, plaintext)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	ct2, err := EncryptIGE(key, ivA, plaintext)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if !bytes.Equal(ct1, ct2) {
		t.Fatal("encryption is not deterministic for a fixed key/iv/plaintext")
	}

	ct3, err := EncryptIGE(key, ivB, plaintext)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Equal(ct1, ct3) {
		t.Fatal("changing the IV did not change the ciphertext")
	}
}

func FuzzIGERoundTrip(f *testing.F) {
	f.Add(make([]byte, 16), make([]byte, 32))
	f.Fuzz(func(t *testing.T, plaintext, keyMaterial []byte) {
		if len(plaintext) == 0 || len(plaintext)%16 != 0 || len(plaintext) > 4096 {
			t.Skip()
		}
		if len(keyMaterial) < 32 {
			t.Skip()
		}
		key := keyMaterial[:32]
		var iv [32]byte
		if len(keyMaterial) >= 64 {
			copy(iv[:], keyMaterial[32:64])
		}

		ct, err := EncryptIGE(key, iv, plaintext)
		if err != nil {
			t.Fatalf("encrypt: %v", err)
		}
		pt, err := DecryptIGE(key, iv, ct)
		if err != nil {
			t.Fatalf("decrypt: %v", err)
		}
		if !bytes.Equal(pt, plaintext) {
			t.Fatalf("round trip mismatch")
		}
	})
}
