package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	attrs     map[string]string
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. Sessions expire after ttl of
// inactivity. Expired entries are dropped on access, and all of them are
// swept when a new session is stored, at most once per ttl.
type MemoryStore struct {
	mu        sync.Mutex
	sessions  map[string]*memoryEntry
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// live returns the entry for id if it has not expired. Caller holds mu.
func (m *MemoryStore) live(id string) (*memoryEntry, bool) {
	e, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	if m.ttl > 0 && !m.now().Before(e.expiresAt) {
		delete(m.sessions, id)
		return nil, false
	}
	return e, true
}

// sweep drops every expired entry. Caller holds mu.
func (m *MemoryStore) sweep() {
	if m.ttl <= 0 {
		return
	}
	now := m.now()
	if now.Sub(m.lastSweep) < m.ttl {
		return
	}
	m.lastSweep = now
	for id, e := range m.sessions {
		if !now.Before(e.expiresAt) {
			delete(m.sessions, id)
		}
	}
}

func (m *MemoryStore) Get(_ context.Context, sessionID, key string) (string, bool, error) {
	if sessionID == "" {
		return "", false, ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.live(sessionID)
	if !ok {
		return "", false, nil
	}
	value, ok := e.attrs[key]
	return value, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, sessionID, key, value string) error {
	if sessionID == "" {
		return ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.live(sessionID)
	if !ok {
		m.sweep()
		e = &memoryEntry{attrs: make(map[string]string)}
		m.sessions[sessionID] = e
	}
	e.attrs[key] = value
	e.expiresAt = m.now().Add(m.ttl)
	return nil
}

func (m *MemoryStore) Touch(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.live(sessionID); ok {
		e.expiresAt = m.now().Add(m.ttl)
	}
	return nil
}
