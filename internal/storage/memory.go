package storage

import (
	"context"
	"sync"
)

// Memory is an in-process Store, useful for tests and for a short-lived
// CLI invocation that doesn't need to persist across restarts.
type Memory struct {
	mu       sync.Mutex
	sessions map[int32]Session
	entities map[EntityKind]map[int64]Entity
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[int32]Session),
		entities: make(map[EntityKind]map[int64]Entity),
	}
}

func (m *Memory) Load(ctx context.Context, dcID int32) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[dcID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := s
	return &cp, nil
}

func (m *Memory) Save(ctx context.Context, sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.DCID] = *sess
	return nil
}

func (m *Memory) InsertEntity(ctx context.Context, e Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byID, ok := m.entities[e.Kind]
	if !ok {
		byID = make(map[int64]Entity)
		m.entities[e.Kind] = byID
	}
	byID[e.ID] = e
	return nil
}

func (m *Memory) LookupEntity(ctx context.Context, kind EntityKind, id int64) (*Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byID, ok := m.entities[kind]
	if !ok {
		return nil, ErrNotFound
	}
	e, ok := byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := e
	return &cp, nil
}

func (m *Memory) Close() error { return nil }
