package sender

import (
	"context"
	"fmt"
	"sync"
)

// Pool manages a small set of auxiliary "exported" Senders to the same or
// a different datacenter, used for bulk operations (large file transfer,
// bot API fan-out) that should not compete with the primary Sender's
// request queue for container-packing order. Each Sender in the pool gets
// its own independent mtproto.State and connection.
type Pool struct {
	mu      sync.Mutex
	factory func(ctx context.Context) (*Sender, error)
	idle    []*Sender
	total   int // idle + checked out
	maxSize int
}

// NewPool returns a Pool that lazily dials up to maxSize Senders via
// factory, reusing idle ones across Acquire/Release cycles instead of
// reconnecting for every bulk operation.
func NewPool(maxSize int, factory func(ctx context.Context) (*Sender, error)) *Pool {
	return &Pool{factory: factory, maxSize: maxSize}
}

// Acquire returns an idle Sender if one exists, otherwise dials a new one
// (failing if the pool is already at maxSize and all members are checked
// out — callers should retry or queue in that case).
func (p *Pool) Acquire(ctx context.Context) (*Sender, error) {
	p.mu.Lock()
	if n := len(p.idle); n > 0 {
		s := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return s, nil
	}
	if p.total >= p.maxSize {
		p.mu.Unlock()
		return nil, fmt.Errorf("sender: pool exhausted (max %d)", p.maxSize)
	}
	p.total++
	p.mu.Unlock()

	s, err := p.factory(ctx)
	if err != nil {
		p.mu.Lock()
		p.total--
		p.mu.Unlock()
		return nil, err
	}
	return s, nil
}

// Release returns s to the idle pool for reuse.
func (p *Pool) Release(s *Sender) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idle = append(p.idle, s)
}

// Close shuts down every idle Sender. Senders currently checked out are
// the caller's responsibility to Close individually.
func (p *Pool) Close() error {
	p.mu.Lock()
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()

	var firstErr error
	for _, s := range idle {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
