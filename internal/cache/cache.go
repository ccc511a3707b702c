package cache

import "time"

// Cache is a key-value store whose entries expire after a per-entry TTL.
type Cache[K comparable, V any] interface {
	// Get returns the value and whether it was present and not expired.
	Get(key K) (V, bool)

	// Set stores the value. If ttl <= 0, the entry does not expire.
	Set(key K, value V, ttl time.Duration)

	Delete(key K)

	// DeleteFunc removes every entry whose key matches.
	DeleteFunc(match func(K) bool) int

	// Len counts non-expired entries.
	Len() int

	PurgeExpired()
}
