// Package cache stores raw API response bodies keyed by request URL, so
// repeated reads of the same tree records skip the network.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the storage interface shared by the memory, disk, and layered
// implementations
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from a request URL
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "kinsource:v1:" + hex.EncodeToString(hash[:])
}
