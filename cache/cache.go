package cache

import "time"

// Cache is the generic cache contract used for quick-code lookups and
// the IP block list. The cost and admission semantics follow Ristretto:
// Set may decline an entry and still return without error.
type Cache[K comparable, V any] interface {
	// Get retrieves a value from the cache
	Get(key K) (V, bool)

	// Set stores a value with cost, returning true if admitted
	Set(key K, value V, cost int64) bool

	// SetWithTTL stores a value with cost and TTL, returning true if admitted
	SetWithTTL(key K, value V, cost int64, ttl time.Duration) bool
}
