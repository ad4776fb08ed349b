package cache

import (
	"context"
	"sync"
	"time"
)

// entry holds one cached value with its expiration.
type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e *entry) expired() bool {
	return time.Now().After(e.expiresAt)
}

// LocalStore is a simple in-memory cache with TTL support. It is the
// fallback when no Redis address is configured.
type LocalStore struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	ttl      time.Duration
	maxSize  int
	stopChan chan struct{}
}

// NewLocalStore creates an in-memory store with the given TTL and entry cap.
func NewLocalStore(ttl time.Duration, maxSize int) *LocalStore {
	s := &LocalStore{
		entries:  make(map[string]*entry),
		ttl:      ttl,
		maxSize:  maxSize,
		stopChan: make(chan struct{}),
	}

	go s.cleanupExpiredEntries()

	return s
}

// Get retrieves a cached value by key.
func (s *LocalStore) Get(ctx context.Context, key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.entries[key]
	if !exists || e.expired() {
		return nil, false
	}
	return e.value, true
}

// Set stores a value under the key. When the store is full, the incoming
// value is dropped rather than evicting live entries; expired entries are
// reclaimed by the background cleanup.
func (s *LocalStore) Set(ctx context.Context, key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxSize {
		return
	}
	s.entries[key] = &entry{
		value:     value,
		expiresAt: time.Now().Add(s.ttl),
	}
}

// Close stops the background cleanup goroutine.
func (s *LocalStore) Close() error {
	close(s.stopChan)
	return nil
}

// cleanupExpiredEntries periodically removes expired entries.
func (s *LocalStore) cleanupExpiredEntries() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			for key, e := range s.entries {
				if e.expired() {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		case <-s.stopChan:
			return
		}
	}
}
