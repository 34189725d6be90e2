package kv

import (
	"context"
	"sync"
	"time"
)

// memoryStore implements Store with a mutex-guarded map. Atomic batches hold
// the write lock for their whole duration, which gives the same all-or-nothing
// visibility as a real transaction.
type memoryStore struct {
	prefix string
	mu     sync.RWMutex
	data   map[string]memoryEntry
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
	noExpire  bool
}

// NewMemory creates an in-process Store.
func NewMemory(prefix string) Store {
	return &memoryStore{
		prefix: prefix,
		data:   make(map[string]memoryEntry),
	}
}

func (s *memoryStore) key(k string) string {
	if s.prefix == "" {
		return k
	}
	return s.prefix + ":" + k
}

func (s *memoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.data[s.key(key)]
	if !ok {
		return "", ErrNotFound
	}
	if !entry.noExpire && time.Now().After(entry.expiresAt) {
		return "", ErrNotFound
	}
	return entry.value, nil
}

func (s *memoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[s.key(key)] = newEntry(value, ttl)
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, s.key(key))
	return nil
}

func (s *memoryStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.data[s.key(key)]
	if !ok {
		return false, nil
	}
	if !entry.noExpire && time.Now().After(entry.expiresAt) {
		return false, nil
	}
	return true, nil
}

func (s *memoryStore) Atomic(ctx context.Context, ops ...Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, op := range ops {
		if op.Delete {
			delete(s.data, s.key(op.Key))
			continue
		}
		s.data[s.key(op.Key)] = newEntry(op.Value, op.TTL)
	}
	return nil
}

func (s *memoryStore) Ping(ctx context.Context) error { return nil }

func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]memoryEntry)
	return nil
}

func newEntry(value string, ttl time.Duration) memoryEntry {
	entry := memoryEntry{value: value, noExpire: ttl == 0}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	return entry
}
