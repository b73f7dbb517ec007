// internal/storage/memory.go
package storage

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	value     string
	expiry    time.Time
	insertIdx int64
}

// MemoryStore is an in-process KVStore bounded by entry count. When full,
// the least recently written entry is evicted. Safe for concurrent use.
type MemoryStore struct {
	mu         sync.RWMutex
	items      map[string]memEntry
	ttl        time.Duration
	maxEntries int
	nextIdx    int64
	now        func() time.Time
}

// NewMemoryStore creates a store. ttl <= 0 disables expiry; maxEntries <= 0 means unbounded.
func NewMemoryStore(ttl time.Duration, maxEntries int) *MemoryStore {
	return &MemoryStore{
		items:      make(map[string]memEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return "", ErrNotFound
	}
	if m.expired(e) {
		m.mu.Lock()
		if e2, ok2 := m.items[key]; ok2 && m.expired(e2) {
			delete(m.items, key)
		}
		m.mu.Unlock()
		return "", ErrNotFound
	}
	return e.value, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memEntry{value: value, insertIdx: m.nextIdx}
	if m.ttl > 0 {
		e.expiry = m.now().Add(m.ttl)
	}
	m.nextIdx++

	// An overwrite refreshes recency and TTL without changing the count.
	if _, exists := m.items[key]; exists {
		m.items[key] = e
		return nil
	}
	if m.maxEntries > 0 && len(m.items) >= m.maxEntries {
		m.evictOldest()
	}
	m.items[key] = e
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, including expired ones not yet reaped.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *MemoryStore) expired(e memEntry) bool {
	return !e.expiry.IsZero() && m.now().After(e.expiry)
}

// evictOldest must be called with mu held.
func (m *MemoryStore) evictOldest() {
	var oldestKey string
	var oldestIdx int64 = -1
	for key, e := range m.items {
		if oldestIdx == -1 || e.insertIdx < oldestIdx {
			oldestIdx = e.insertIdx
			oldestKey = key
		}
	}
	if oldestIdx != -1 {
		delete(m.items, oldestKey)
	}
}
