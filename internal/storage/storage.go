// Package storage abstracts persistence of session state (auth key, DC
// assignment, pts/qts/date/seq) and the peer-entity cache (access hashes
// required before referencing a user/chat/channel in a request), so the
// same client code can run against an in-memory store in tests, a JSON
// session file in this module's own format, or a bbolt-backed store for a
// long-running daemon.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Load and LookupEntity when no record exists.
var ErrNotFound = errors.New("storage: not found")

// Session is the persisted connection state for one datacenter.
type Session struct {
	DCID       int32
	ServerAddr string
	AuthKey    [256]byte
	AuthKeyID  uint64
	ServerSalt int64

	Pts  int32
	Qts  int32
	Date int32
	Seq  int32

	UpdatedAt time.Time
}

// Entity is a cached peer reference: the minimum a client needs to address
// a user, chat, or channel in a request without re-resolving it (spec
// §4.5's channel access-hash prerequisite, and the equivalent for users).
type Entity struct {
	ID         int64
	AccessHash int64
	Kind       EntityKind
}

// EntityKind distinguishes the three peer namespaces, which share no ID
// space guarantee across each other.
type EntityKind int

const (
	EntityUser EntityKind = iota
	EntityChat
	EntityChannel
)

// Store persists Session and Entity records. Implementations must be safe
// for concurrent use.
type Store interface {
	Load(ctx context.Context, dcID int32) (*Session, error)
	Save(ctx context.Context, sess *Session) error

	InsertEntity(ctx context.Context, e Entity) error
	LookupEntity(ctx context.Context, kind EntityKind, id int64) (*Entity, error)

	Close() error
}
