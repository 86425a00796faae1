package mycache

import (
	"context"
	"sync"
	"time"
)

type inMemoryCache struct {
	sync.Mutex
	entries map[string]inMemoryEntry
}

type inMemoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func NewInMemoryCache() (*inMemoryCache, func(), error) {
	return &inMemoryCache{
		entries: make(map[string]inMemoryEntry),
	}, func() {}, nil
}

func (m *inMemoryCache) Get(c context.Context, key string) ([]byte, bool, error) {
	m.Lock()
	defer m.Unlock()

	entry, exists := m.entries[key]
	if !exists {
		return nil, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}

	return entry.value, true, nil
}

func (m *inMemoryCache) Set(c context.Context, key string, value []byte, ttl time.Duration) error {
	m.Lock()
	defer m.Unlock()

	m.entries[key] = inMemoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}

	return nil
}
