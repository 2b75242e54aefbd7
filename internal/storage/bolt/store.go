// Package bolt implements storage.Store on top of bbolt, for a
// long-running daemon that needs crash-safe persistence of session state
// and the entity cache without an external database dependency.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/telemtp/mtproto-go/internal/storage"
)

var (
	sessionsBucket = []byte("sessions")
	entitiesBucket = []byte("entities")
)

// Store is a bbolt-backed storage.Store.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) a bbolt database at path and ensures
// its top-level buckets exist.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("storage/bolt: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(sessionsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(entitiesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("storage/bolt: init buckets: %w", err)
	}
	return &Store{db: db}, nil
}

type sessionRecord struct {
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

type entityRecord struct {
	AccessHash int64 `json:"access_hash"`
}

func sessionKey(dcID int32) []byte {
	k := make([]byte, 4)
	binary.BigEndian.PutUint32(k, uint32(dcID))
	return k
}

func entityKey(kind storage.EntityKind, id int64) []byte {
	k := make([]byte, 9)
	k[0] = byte(kind)
	binary.BigEndian.PutUint64(k[1:], uint64(id))
	return k
}

func (s *Store) Load(ctx context.Context, dcID int32) (*storage.Session, error) {
	var rec sessionRecord
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(sessionsBucket).Get(sessionKey(dcID))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &rec)
	})
	if err != nil {
		return nil, fmt.Errorf("storage/bolt: load session: %w", err)
	}
	if !found {
		return nil, storage.ErrNotFound
	}
	return &storage.Session{
		DCID:       dcID,
		ServerAddr: rec.ServerAddr,
		AuthKey:    rec.AuthKey,
		AuthKeyID:  rec.AuthKeyID,
		ServerSalt: rec.ServerSalt,
		Pts:        rec.Pts,
		Qts:        rec.Qts,
		Date:       rec.Date,
		Seq:        rec.Seq,
		UpdatedAt:  rec.UpdatedAt,
	}, nil
}

func (s *Store) Save(ctx context.Context, sess *storage.Session) error {
	rec := sessionRecord{
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
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("storage/bolt: encode session: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).Put(sessionKey(sess.DCID), data)
	})
}

func (s *Store) InsertEntity(ctx context.Context, e storage.Entity) error {
	data, err := json.Marshal(entityRecord{AccessHash: e.AccessHash})
	if err != nil {
		return fmt.Errorf("storage/bolt: encode entity: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(entitiesBucket).Put(entityKey(e.Kind, e.ID), data)
	})
}

func (s *Store) LookupEntity(ctx context.Context, kind storage.EntityKind, id int64) (*storage.Entity, error) {
	var rec entityRecord
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(entitiesBucket).Get(entityKey(kind, id))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &rec)
	})
	if err != nil {
		return nil, fmt.Errorf("storage/bolt: lookup entity: %w", err)
	}
	if !found {
		return nil, storage.ErrNotFound
	}
	return &storage.Entity{ID: id, AccessHash: rec.AccessHash, Kind: kind}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
