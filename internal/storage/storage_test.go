package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestMemoryRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.Load(ctx, 2); err != ErrNotFound {
		t.Fatalf("Load on empty store = %v, want ErrNotFound", err)
	}

	sess := &Session{DCID: 2, ServerAddr: "149.154.167.50:443", AuthKeyID: 42, Pts: 100, UpdatedAt: time.Now()}
	if err := m.Save(ctx, sess); err != nil {
		t.Fatal(err)
	}
	got, err := m.Load(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got.AuthKeyID != 42 || got.Pts != 100 {
		t.Fatalf("loaded session mismatch: %+v", got)
	}

	if err := m.InsertEntity(ctx, Entity{ID: 7, AccessHash: 99, Kind: EntityUser}); err != nil {
		t.Fatal(err)
	}
	e, err := m.LookupEntity(ctx, EntityUser, 7)
	if err != nil {
		t.Fatal(err)
	}
	if e.AccessHash != 99 {
		t.Fatalf("entity access hash = %d, want 99", e.AccessHash)
	}
	if _, err := m.LookupEntity(ctx, EntityChat, 7); err != ErrNotFound {
		t.Fatalf("lookup under wrong kind should miss, got %v", err)
	}
}

func TestSessionFilePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	ctx := context.Background()

	sf, err := OpenSessionFile(path)
	if err != nil {
		t.Fatal(err)
	}
	sess := &Session{DCID: 4, ServerAddr: "149.154.167.91:443", AuthKeyID: 123, Pts: 50, Qts: 10, Date: 5, Seq: 3, UpdatedAt: time.Now()}
	if err := sf.Save(ctx, sess); err != nil {
		t.Fatal(err)
	}
	if err := sf.InsertEntity(ctx, Entity{ID: 1, AccessHash: 2, Kind: EntityChannel}); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("session file not written: %v", err)
	}

	reopened, err := OpenSessionFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got, err := reopened.Load(ctx, 4)
	if err != nil {
		t.Fatal(err)
	}
	if got.Pts != 50 || got.Seq != 3 {
		t.Fatalf("reloaded session mismatch: %+v", got)
	}
	e, err := reopened.LookupEntity(ctx, EntityChannel, 1)
	if err != nil {
		t.Fatal(err)
	}
	if e.AccessHash != 2 {
		t.Fatalf("reloaded entity access hash = %d, want 2", e.AccessHash)
	}
}

func TestSessionFileUpsertsEntity(t *testing.T) {
	dir := t.TempDir()
	sf, err := OpenSessionFile(filepath.Join(dir, "session.json"))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := sf.InsertEntity(ctx, Entity{ID: 1, AccessHash: 2, Kind: EntityUser}); err != nil {
		t.Fatal(err)
	}
	if err := sf.InsertEntity(ctx, Entity{ID: 1, AccessHash: 999, Kind: EntityUser}); err != nil {
		t.Fatal(err)
	}
	e, err := sf.LookupEntity(ctx, EntityUser, 1)
	if err != nil {
		t.Fatal(err)
	}
	if e.AccessHash != 999 {
		t.Fatalf("access hash = %d, want updated value 999", e.AccessHash)
	}
	if len(sf.contents.Entities) != 1 {
		t.Fatalf("expected upsert to replace, got %d entity records", len(sf.contents.Entities))
	}
}

func TestMemoryAndSessionFileAgreeOnEntityShape(t *testing.T) {
	ctx := context.Background()
	want := Entity{ID: 55, AccessHash: 4242, Kind: EntityChannel}

	m := NewMemory()
	if err := m.InsertEntity(ctx, want); err != nil {
		t.Fatal(err)
	}
	fromMemory, err := m.LookupEntity(ctx, EntityChannel, 55)
	if err != nil {
		t.Fatal(err)
	}

	sf, err := OpenSessionFile(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := sf.InsertEntity(ctx, want); err != nil {
		t.Fatal(err)
	}
	fromFile, err := sf.LookupEntity(ctx, EntityChannel, 55)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(fromMemory, fromFile); diff != "" {
		t.Fatalf("memory and session-file backends disagree on round-tripped entity (-memory +file):\n%s", diff)
	}
}
