package catalog

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process catalog used by tests and the memory storage backend.
type Memory struct {
	mu     sync.RWMutex
	items  map[int64]Product
	nextID int64
}

// NewMemory returns a Memory catalog holding products. Products with a zero ID get the next free one.
func NewMemory(products ...Product) *Memory {
	m := &Memory{items: make(map[int64]Product)}
	_ = m.Insert(context.Background(), products...)
	return m
}

// List implements Store.
func (m *Memory) List(_ context.Context) ([]Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Product, 0, len(m.items))
	for _, p := range m.items {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, id int64) (Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.items[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

// Count implements Writer.
func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items), nil
}

// Insert implements Writer.
func (m *Memory) Insert(_ context.Context, products ...Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range products {
		if p.ID == 0 {
			m.nextID++
			p.ID = m.nextID
		} else if p.ID > m.nextID {
			m.nextID = p.ID
		}
		m.items[p.ID] = p
	}
	return nil
}

// Delete removes a product. Cart lines that still reference it become stale.
func (m *Memory) Delete(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
}
