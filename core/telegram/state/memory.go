package state

import (
	"fmt"
	"time"

	"github.com/maypok86/otter"
)

// Store keeps one session per user.
type Store[D any] interface {
	// Get returns the user's session or an idle one with a zero draft.
	Get(userID int64) Session[D]
	Put(userID int64, s Session[D])
	Clear(userID int64)
	Len() int
}

// MemoryOptions bounds the in-memory store.
type MemoryOptions struct {
	Capacity int
	// TTL expires sessions that saw no input for this long.
	TTL time.Duration
}

// MemoryStore is an otter-backed Store. Sessions are lost on restart.
type MemoryStore[D any] struct {
	cache otter.Cache[int64, Session[D]]
}

// NewMemoryStore constructs an in-memory Store.
func NewMemoryStore[D any](opts MemoryOptions) (*MemoryStore[D], error) {
	if opts.Capacity <= 0 {
		return nil, fmt.Errorf("state: session capacity must be > 0")
	}
	if opts.TTL <= 0 {
		return nil, fmt.Errorf("state: session ttl must be > 0")
	}
	c, err := otter.MustBuilder[int64, Session[D]](opts.Capacity).WithTTL(opts.TTL).Build()
	if err != nil {
		return nil, fmt.Errorf("state: build session cache with capacity %d: %w", opts.Capacity, err)
	}
	return &MemoryStore[D]{cache: c}, nil
}

// Get returns the session for a user if it exists, otherwise returns a default idle session.
func (m *MemoryStore[D]) Get(userID int64) Session[D] {
	if s, ok := m.cache.Get(userID); ok {
		return s
	}
	return Session[D]{State: StateIdle}
}

// Put stores the session, replacing any previous one.
func (m *MemoryStore[D]) Put(userID int64, s Session[D]) {
	m.cache.Set(userID, s)
}

// Clear removes the entire session for a user.
func (m *MemoryStore[D]) Clear(userID int64) {
	m.cache.Delete(userID)
}

// Len reports the number of live sessions.
func (m *MemoryStore[D]) Len() int {
	return m.cache.Size()
}

// Close stops the cache background workers.
func (m *MemoryStore[D]) Close() {
	m.cache.Close()
}
