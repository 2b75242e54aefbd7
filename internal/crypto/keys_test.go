package crypto

import "testing"

func fakeAuthKey() [256]byte {
	var k [256]byte
	for i := range k {
		k[i] = byte(i)
	}
	return k
}

func TestMsgKeyDiffersByDirection(t *testing.T) {
	authKey := fakeAuthKey()
	plaintext := []byte("a fixed plaintext message padded to 16 bytes...")

	out := MsgKey(authKey, ClientToServer, plaintext)
	in := MsgKey(authKey, ServerToClient, plaintext)
	if out == in {
		t.Fatal("client-to-server and server-to-client msg_key collided")
	}
}

func TestDeriveKeyIVDeterministic(t *testing.T) {
	authKey := fakeAuthKey()
	msgKey := [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}

	k1, iv1 := DeriveKeyIV(authKey, ClientToServer, msgKey)
	k2, iv2 := DeriveKeyIV(authKey, ClientToServer, msgKey)
	if k1 != k2 || iv1 != iv2 {
		t.Fatal("key/iv derivation is not deterministic")
	}

	k3, iv3 := DeriveKeyIV(authKey, ServerToClient, msgKey)
	if k1 == k3 && iv1 == iv3 {
		t.Fatal("client and server directions derived identical key material")
	}
}

func TestAuthKeyID(t *testing.T) {
	a := NewAuthKey(fakeAuthKey())
	if a.ID() == 0 {
		t.Fatal("auth key id should not be zero for non-zero key material")
	}

	var zero [256]byte
	z := NewAuthKey(zero)
	if !z.Zero() {
		t.Fatal("all-zero key should report Zero() == true")
	}
	if a.Zero() {
		t.Fatal("non-zero key reported Zero() == true")
	}
}
