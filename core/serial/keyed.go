// Package serial orders work per key: everything submitted for one key runs
// one at a time, while distinct keys proceed independently.
package serial

import "sync"

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

// KeyedMutex is a set of mutexes indexed by int64 keys. Entries are created on
// demand and dropped once no goroutine holds or waits for them.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[int64]*keyedEntry
}

// NewKeyedMutex returns an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[int64]*keyedEntry)}
}

// Lock blocks until the mutex for key is held and returns its release func.
// The release func must be called exactly once.
func (k *KeyedMutex) Lock(key int64) (unlock func()) {
	k.mu.Lock()
	if k.entries == nil {
		k.entries = make(map[int64]*keyedEntry)
	}
	e, ok := k.entries[key]
	if !ok {
		e = &keyedEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			k.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(k.entries, key)
			}
			k.mu.Unlock()
		})
	}
}
