package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultSessionDir returns ~/.mtproto-go/sessions, the default location
// for SessionFile stores.
func DefaultSessionDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mtproto-go", "sessions")
}

// sessionFileRecord is the on-disk JSON shape for one DC's session, kept
// deliberately close to the wire types (auth key as a fixed-length byte
// array, hex-less) rather than a portable interop format: this is a
// reference implementation's session file, not a Telethon/MadelineProto
// compatibility shim.
type sessionFileRecord struct {
	DCID       int32     `json:"dc_id"`
	ServerAddr string    `json:"server_addr"`
	AuthKey    [256]byte `json:"auth_key"`
	AuthKeyID  uint64    `json:"auth_key_id"`
	ServerSalt int64     `json:"server_salt"`
	Pts        int32     `json:"pts"`
	Qts        int32     `json:"qts"`
	Date       int32     `json:"date"`
	Seq        int32     `json:"seq"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type entityFileRecord struct {
	ID         int64      `json:"id"`
	AccessHash int64      `json:"access_hash"`
	Kind       EntityKind `json:"kind"`
}

type sessionFileContents struct {
	Sessions map[int32]sessionFileRecord `json:"sessions"`
	Entities []entityFileRecord          `json:"entities"`
}

// SessionFile is a single JSON file on disk holding every DC's session and
// the entity cache, rewritten atomically (write-temp-then-rename, matching
// directory.Cache's approach) on every Save/InsertEntity.
type SessionFile struct {
	mu   sync.Mutex
	path string

	contents sessionFileContents
}

// OpenSessionFile loads path if it exists, or starts an empty store that
// will create path on first write.
func OpenSessionFile(path string) (*SessionFile, error) {
	sf := &SessionFile{
		path: path,
		contents: sessionFileContents{
			Sessions: make(map[int32]sessionFileRecord),
		},
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return sf, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: open session file: %w", err)
	}
	if err := json.Unmarshal(data, &sf.contents); err != nil {
		return nil, fmt.Errorf("storage: decode session file: %w", err)
	}
	if sf.contents.Sessions == nil {
		sf.contents.Sessions = make(map[int32]sessionFileRecord)
	}
	return sf, nil
}

func (sf *SessionFile) Load(ctx context.Context, dcID int32) (*Session, error) {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	r, ok := sf.contents.Sessions[dcID]
	if !ok {
		return nil, ErrNotFound
	}
	return &Session{
		DCID:       r.DCID,
		ServerAddr: r.ServerAddr,
		AuthKey:    r.AuthKey,
		AuthKeyID:  r.AuthKeyID,
		ServerSalt: r.ServerSalt,
		Pts:        r.Pts,
		Qts:        r.Qts,
		Date:       r.Date,
		Seq:        r.Seq,
		UpdatedAt:  r.UpdatedAt,
	}, nil
}

func (sf *SessionFile) Save(ctx context.Context, sess *Session) error {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	sf.contents.Sessions[sess.DCID] = sessionFileRecord{
		DCID:       sess.DCID,
		ServerAddr: sess.ServerAddr,
		AuthKey:    sess.AuthKey,
		AuthKeyID:  sess.AuthKeyID,
		ServerSalt: sess.ServerSalt,
		Pts:        sess.Pts,
		Qts:        sess.Qts,
		Date:       sess.Date,
		Seq:        sess.Seq,
		UpdatedAt:  sess.UpdatedAt,
	}
	return sf.flushLocked()
}

func (sf *SessionFile) InsertEntity(ctx context.Context, e Entity) error {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	for i, ex := range sf.contents.Entities {
		if ex.Kind == e.Kind && ex.ID == e.ID {
			sf.contents.Entities[i] = entityFileRecord{ID: e.ID, AccessHash: e.AccessHash, Kind: e.Kind}
			return sf.flushLocked()
		}
	}
	sf.contents.Entities = append(sf.contents.Entities, entityFileRecord{ID: e.ID, AccessHash: e.AccessHash, Kind: e.Kind})
	return sf.flushLocked()
}

func (sf *SessionFile) LookupEntity(ctx context.Context, kind EntityKind, id int64) (*Entity, error) {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	for _, e := range sf.contents.Entities {
		if e.Kind == kind && e.ID == id {
			return &Entity{ID: e.ID, AccessHash: e.AccessHash, Kind: e.Kind}, nil
		}
	}
	return nil, ErrNotFound
}

func (sf *SessionFile) Close() error { return nil }

// flushLocked rewrites the session file. Callers must hold sf.mu.
func (sf *SessionFile) flushLocked() error {
	if sf.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(sf.path), 0o700); err != nil {
		return fmt.Errorf("storage: mkdir session dir: %w", err)
	}
	data, err := json.MarshalIndent(sf.contents, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode session file: %w", err)
	}
	tmp := sf.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("storage: write session file: %w", err)
	}
	if err := os.Rename(tmp, sf.path); err != nil {
		return fmt.Errorf("storage: replace session file: %w", err)
	}
	return nil
}
