package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryCache is an in-process Cache used when Redis is not configured and in tests.
type MemoryCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	families map[string]map[string]memoryEntry
	observer Observer
}

// NewMemoryCache creates a MemoryCache. A non-positive ttl keeps entries until invalidated.
func NewMemoryCache(ttl time.Duration, observer Observer) *MemoryCache {
	return &MemoryCache{
		ttl:      ttl,
		now:      time.Now,
		families: make(map[string]map[string]memoryEntry),
		observer: observer,
	}
}

func (m *MemoryCache) Get(_ context.Context, family, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.families[family][key]
	if ok && !entry.expires.IsZero() && m.now().After(entry.expires) {
		delete(m.families[family], key)
		ok = false
	}
	if m.observer != nil {
		if ok {
			m.observer.Hit(family)
		} else {
			m.observer.Miss(family)
		}
	}
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), entry.value...), true, nil
}

func (m *MemoryCache) Set(_ context.Context, family, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.families[family]
	if entries == nil {
		entries = make(map[string]memoryEntry)
		m.families[family] = entries
	}
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if m.ttl > 0 {
		entry.expires = m.now().Add(m.ttl)
	}
	entries[key] = entry
	return nil
}

func (m *MemoryCache) Invalidate(_ context.Context, family string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.families, family)
	return nil
}
