package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/telemtp/mtproto-go/internal/storage"
)

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "sessions.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()
	if _, err := s.Load(ctx, 1); err != storage.ErrNotFound {
		t.Fatalf("Load on empty store = %v, want ErrNotFound", err)
	}

	sess := &storage.Session{DCID: 1, ServerAddr: "149.154.175.53:443", AuthKeyID: 55, Pts: 10, UpdatedAt: time.Now()}
	if err := s.Save(ctx, sess); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got.AuthKeyID != 55 || got.Pts != 10 {
		t.Fatalf("loaded session mismatch: %+v", got)
	}

	if err := s.InsertEntity(ctx, storage.Entity{ID: 3, AccessHash: 4, Kind: storage.EntityChat}); err != nil {
		t.Fatal(err)
	}
	e, err := s.LookupEntity(ctx, storage.EntityChat, 3)
	if err != nil {
		t.Fatal(err)
	}
	if e.AccessHash != 4 {
		t.Fatalf("entity access hash = %d, want 4", e.AccessHash)
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sessions.db")
	ctx := context.Background()

	s1, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s1.Save(ctx, &storage.Session{DCID: 2, AuthKeyID: 7, Pts: 1}); err != nil {
		t.Fatal(err)
	}
	if err := s1.Close(); err != nil {
		t.Fatal(err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	got, err := s2.Load(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got.AuthKeyID != 7 {
		t.Fatalf("reloaded auth key id = %d, want 7", got.AuthKeyID)
	}
}
