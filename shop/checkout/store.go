package checkout

import (
	"context"
	"sync"
)

// Store persists sessions per user. Loading a user without a stored session
// yields the zero (idle) Session; saving an idle session removes the entry.
type Store interface {
	Load(ctx context.Context, userID int64) (Session, error)
	Save(ctx context.Context, userID int64, s Session) error
	Reset(ctx context.Context, userID int64) error
}

// Memory keeps sessions in process memory.
type Memory struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{sessions: make(map[int64]Session)}
}

// Load implements Store.
func (m *Memory) Load(_ context.Context, userID int64) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[userID], nil
}

// Save implements Store.
func (m *Memory) Save(_ context.Context, userID int64, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !s.Active() {
		delete(m.sessions, userID)
		return nil
	}
	m.sessions[userID] = s
	return nil
}

// Reset implements Store.
func (m *Memory) Reset(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

// Active returns how many users are mid-checkout.
func (m *Memory) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
