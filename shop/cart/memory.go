package cart

import (
	"context"
	"sync"
)

// Memory is an in-process cart store.
type Memory struct {
	mu     sync.Mutex
	carts  map[int64][]Line
	nextID int64
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{carts: make(map[int64][]Line)}
}

// Add implements Store.
func (m *Memory) Add(_ context.Context, userID, productID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines := m.carts[userID]
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity += quantity
			return nil
		}
	}
	m.nextID++
	m.carts[userID] = append(lines, Line{ID: m.nextID, UserID: userID, ProductID: productID, Quantity: quantity})
	return nil
}

// Remove implements Store.
func (m *Memory) Remove(_ context.Context, userID, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines := m.carts[userID]
	for i := range lines {
		if lines[i].ProductID == productID {
			lines = append(lines[:i:i], lines[i+1:]...)
			break
		}
	}
	if len(lines) == 0 {
		delete(m.carts, userID)
		return nil
	}
	m.carts[userID] = lines
	return nil
}

// Clear implements Store.
func (m *Memory) Clear(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, userID)
	return nil
}

// Lines implements Store.
func (m *Memory) Lines(_ context.Context, userID int64) ([]Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines := m.carts[userID]
	out := make([]Line, len(lines))
	copy(out, lines)
	return out, nil
}
