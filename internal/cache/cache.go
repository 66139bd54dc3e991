// Package cache provides a process-wide keyed store with per-entry
// expiry. It memoizes forecast runs so repeated requests for the same
// symbol within the validity window skip the model entirely.
//
// There is no single-flight guarantee: concurrent misses for the same
// key may both compute the value. That only costs redundant work, it
// never corrupts results.
package cache

import (
	"sync"
	"time"
)

// entry is a cached value with its expiry timestamp
type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Store is a mutex-guarded TTL cache
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time // injectable clock for tests
}

// New creates a store whose entries expire after ttl
func New(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached value for key, or false when the key is
// missing or expired. Expired entries are removed on access.
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the store's TTL
func (s *Store) Set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{
		value:     value,
		expiresAt: s.now().Add(s.ttl),
	}
}

// Sweep removes all expired entries and returns how many were evicted
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	now := s.now()
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of entries currently held, expired or not
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
