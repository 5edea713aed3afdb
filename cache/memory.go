package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Memory is an in-process Cache. The API falls back to it when Redis is
// not configured; tests use it too.
type Memory struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

type memoryItem struct {
	raw     []byte
	expires time.Time
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]memoryItem), now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string, dest any) error {
	m.mu.Lock()
	item, ok := m.items[key]
	if ok && !item.expires.IsZero() && m.now().After(item.expires) {
		delete(m.items, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(item.raw, dest)
}

func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	item := memoryItem{raw: raw}
	if ttl > 0 {
		item.expires = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.items[key] = item
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.items, k)
	}
	m.mu.Unlock()
	return nil
}
