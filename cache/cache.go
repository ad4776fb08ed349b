// Package cache provides listing page caches for browsefs. A cache stores
// serialized listing pages keyed by kind, root path, directory, page and
// filter, so repeated walks over hot directories skip backend round trips.
package cache

import "context"

// Store defines the interface for listing page caches.
type Store interface {
	// Get retrieves a cached value by key.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value under the key for the store's TTL.
	Set(ctx context.Context, key string, value []byte)

	// Close releases any resources used by the store.
	Close() error
}
