package rpcerr

import "testing"

func TestParseFloodWait(t *testing.T) {
	e := Parse(420, "FLOOD_WAIT_30")
	seconds, ok := e.IsFloodWait()
	if !ok {
		t.Fatal("expected FLOOD_WAIT_30 to be recognised")
	}
	if seconds != 30 {
		t.Fatalf("want 30 seconds, got %d", seconds)
	}
	if _, ok := e.IsMigrate(); ok {
		t.Fatal("FLOOD_WAIT should not be reported as a migration")
	}
}

func TestParseMigrate(t *testing.T) {
	e := Parse(303, "PHONE_MIGRATE_2")
	dc, ok := e.IsMigrate()
	if !ok {
		t.Fatal("expected PHONE_MIGRATE_2 to be recognised")
	}
	if dc != 2 {
		t.Fatalf("want dc 2, got %d", dc)
	}
}

func TestParseUnrecognized(t *testing.T) {
	e := Parse(400, "PEER_ID_INVALID")
	if _, ok := e.IsFloodWait(); ok {
		t.Fatal("PEER_ID_INVALID is not a flood wait")
	}
	if _, ok := e.IsMigrate(); ok {
		t.Fatal("PEER_ID_INVALID is not a migration")
	}
}

func TestRecoverableCodes(t *testing.T) {
	for _, code := range []int32{16, 17, 32, 33, 48} {
		if !Recoverable(code) {
			t.Fatalf("code %d should be recoverable", code)
		}
	}
	if Recoverable(64) {
		t.Fatal("code 64 should not be recoverable")
	}
}

func TestDescribeCatalogue(t *testing.T) {
	e := Parse(420, "FLOOD_WAIT_5")
	desc := Describe(e)
	if desc == "" {
		t.Fatal("expected a catalogue description for FLOOD_WAIT_X")
	}

	unknown := Parse(999, "SOMETHING_NEW")
	if got := Describe(unknown); got != "" {
		t.Fatalf("expected empty description for unrecognised error, got %q", got)
	}
}
