package cache

import (
	"sync"
	"time"
)

// entry wraps a stored value with expiry and access order tracking.
type entry[V any] struct {
	value     V
	expiry    time.Time
	accessIdx int64
}

// Store holds values for a sliding TTL: every hit pushes the expiry out again.
// When full, the least recently used entry is evicted.
// Thread-safe with sync.Mutex.
type Store[V any] struct {
	mu         sync.Mutex
	items      map[string]*entry[V]
	ttl        time.Duration
	maxEntries int
	nextIdx    int64
	now        func() time.Time
}

// New creates a new Store with the given TTL and max entry count.
func New[V any](ttl time.Duration, maxEntries int) *Store[V] {
	return &Store[V]{
		items:      make(map[string]*entry[V]),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the value for key if present and not expired, refreshing its expiry.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V
	e, ok := s.items[key]
	if !ok {
		return zero, false
	}

	now := s.now()
	if now.After(e.expiry) {
		delete(s.items, key)
		return zero, false
	}

	e.expiry = now.Add(s.ttl)
	e.accessIdx = s.nextIdx
	s.nextIdx++
	return e.value, true
}

// Set stores a value. Expired entries are swept first; if the store is still
// at capacity the least recently used entry is evicted.
func (s *Store[V]) Set(key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := &entry[V]{
		value:     value,
		expiry:    s.now().Add(s.ttl),
		accessIdx: s.nextIdx,
	}
	s.nextIdx++

	if _, exists := s.items[key]; exists {
		s.items[key] = e
		return
	}

	if len(s.items) >= s.maxEntries {
		s.sweepExpired()
	}
	if len(s.items) >= s.maxEntries {
		s.evictOldest()
	}

	s.items[key] = e
}

// Delete removes key. Missing keys are ignored.
func (s *Store[V]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}

// Len returns the number of entries, including expired ones not yet swept.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Sweep removes all expired entries and returns how many were dropped.
func (s *Store[V]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepExpired()
}

// sweepExpired must be called with mu held.
func (s *Store[V]) sweepExpired() int {
	now := s.now()
	removed := 0
	for key, e := range s.items {
		if now.After(e.expiry) {
			delete(s.items, key)
			removed++
		}
	}
	return removed
}

// evictOldest removes the entry with the lowest accessIdx. Must be called with mu held.
func (s *Store[V]) evictOldest() {
	var oldestKey string
	var oldestIdx int64 = -1

	for key, e := range s.items {
		if oldestIdx == -1 || e.accessIdx < oldestIdx {
			oldestIdx = e.accessIdx
			oldestKey = key
		}
	}

	if oldestKey != "" {
		delete(s.items, oldestKey)
	}
}
