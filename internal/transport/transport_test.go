package transport

import (
	"bufio"
	"bytes"
	"errors"
	"testing"
)

// TestAbridgedShortHeader checks the largest payload the 1-byte short
// form holds: 504 bytes (126 words) packs with header byte 126. One word
// more takes the extended header (TestAbridgedExtendedHeader).
func TestAbridgedShortHeader(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, 504) // 126 words: still fits the short form
	var buf bytes.Buffer
	if err := (Abridged{}).Pack(&buf, payload); err != nil {
		t.Fatalf("pack: %v", err)
	}
	if buf.Bytes()[0] != 126 {
		t.Fatalf("want short-form header byte 126, got %d", buf.Bytes()[0])
	}

	got, err := (Abridged{}).Unpack(bufio.NewReader(&buf))
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("round trip mismatch")
	}
}

func TestAbridgedExtendedHeader(t *testing.T) {
	payload := bytes.Repeat([]byte{0xCD}, 508) // 127 words: crosses into the extended header
	var buf bytes.Buffer
	if err := (Abridged{}).Pack(&buf, payload); err != nil {
		t.Fatalf("pack: %v", err)
	}
	want := []byte{0x7F, 0x7F, 0x00, 0x00}
	if !bytes.Equal(buf.Bytes()[:4], want) {
		t.Fatalf("want extended header % x, got % x", want, buf.Bytes()[:4])
	}

	got, err := (Abridged{}).Unpack(bufio.NewReader(&buf))
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("round trip mismatch")
	}
}

func TestAbridgedRejectsUnalignedPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := (Abridged{}).Pack(&buf, []byte{1, 2, 3}); err == nil {
		t.Fatal("expected error packing a non-multiple-of-4 payload")
	}
}

func TestAbridgedFatalError(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(0x04)
	buf.Write([]byte{0x6C, 0xFE, 0xFF, 0xFF}) // little-endian -404

	_, err := (Abridged{}).Unpack(bufio.NewReader(&buf))
	var fatal *ErrFatal
	if !errors.As(err, &fatal) {
		t.Fatalf("want *ErrFatal, got %v (%T)", err, err)
	}
}

func TestIntermediateRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte{0x42}, 37)
	var buf bytes.Buffer
	if err := (Intermediate{}).Pack(&buf, payload); err != nil {
		t.Fatalf("pack: %v", err)
	}
	got, err := (Intermediate{}).Unpack(bufio.NewReader(&buf))
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("round trip mismatch")
	}
}

func TestFullRoundTrip(t *testing.T) {
	f := &Full{}
	var buf bytes.Buffer
	payload1 := []byte("first message")
	payload2 := []byte("second message, longer than the first")

	if err := f.Pack(&buf, payload1); err != nil {
		t.Fatalf("pack 1: %v", err)
	}
	if err := f.Pack(&buf, payload2); err != nil {
		t.Fatalf("pack 2: %v", err)
	}

	r := bufio.NewReader(&buf)
	got1, err := f.Unpack(r)
	if err != nil {
		t.Fatalf("unpack 1: %v", err)
	}
	if !bytes.Equal(got1, payload1) {
		t.Fatal("first message mismatch")
	}
	got2, err := f.Unpack(r)
	if err != nil {
		t.Fatalf("unpack 2: %v", err)
	}
	if !bytes.Equal(got2, payload2) {
		t.Fatal("second message mismatch")
	}
}

func TestFullRejectsBitFlip(t *testing.T) {
	f := &Full{}
	var buf bytes.Buffer
	if err := f.Pack(&buf, []byte("tamper with me")); err != nil {
		t.Fatalf("pack: %v", err)
	}
	raw := buf.Bytes()
	raw[10] ^= 0xFF // flip a bit inside the payload region

	_, err := f.Unpack(bufio.NewReader(bytes.NewReader(raw)))
	var fatal *ErrFatal
	if !errors.As(err, &fatal) {
		t.Fatalf("want *ErrFatal from crc mismatch, got %v (%T)", err, err)
	}
}

func TestFullRejectsOutOfOrderSequence(t *testing.T) {
	sender := &Full{}
	var buf bytes.Buffer
	if err := sender.Pack(&buf, []byte("one")); err != nil {
		t.Fatalf("pack: %v", err)
	}
	if err := sender.Pack(&buf, []byte("two")); err != nil {
		t.Fatalf("pack: %v", err)
	}

	receiver := &Full{}
	r := bufio.NewReader(&buf)
	// Read the first frame normally, then force the receiver's expected
	// counter to 5 so the second frame's real seq=1 mismatches.
	if _, err := receiver.Unpack(r); err != nil {
		t.Fatalf("unpack first: %v", err)
	}
	receiver.recvSeq = 5 // force a mismatch against the real seq=1

	_, err := receiver.Unpack(r)
	var fatal *ErrFatal
	if !errors.As(err, &fatal) {
		t.Fatalf("want *ErrFatal from sequence mismatch, got %v (%T)", err, err)
	}
}
