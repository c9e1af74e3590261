package pricing

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Cache bucket names. Keys within a bucket identify (asset, truncated hour).
const (
	bucketNative      = "sol_price"
	bucketTokenNative = "token_sol"
	bucketTokenUSD    = "token_usd"
)

// Cache is the price memoization store shared by all resolver lookups.
// Entries are idempotent: once a key holds a value it is never replaced with
// a different one. Concurrent writers racing to fill the same missing key may
// both write; values for a key are stable so the last write is harmless.
// The cache is persisted to a JSON file so it survives process restarts.
type Cache struct {
	mu      sync.RWMutex
	path    string
	buckets map[string]map[string]float64
}

// NewCache creates an empty cache persisted at path. An empty path disables
// persistence (memory-only cache for tests).
func NewCache(path string) *Cache {
	return &Cache{
		path: path,
		buckets: map[string]map[string]float64{
			bucketNative:      {},
			bucketTokenNative: {},
			bucketTokenUSD:    {},
		},
	}
}

// Load reads previously persisted entries. A missing file is not an error;
// the cache simply starts empty.
func (c *Cache) Load() error {
	if c.path == "" {
		return nil
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read price cache: %w", err)
	}

	var loaded map[string]map[string]float64
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("decode price cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for bucket, entries := range loaded {
		if _, ok := c.buckets[bucket]; !ok {
			continue
		}
		for k, v := range entries {
			c.buckets[bucket][k] = v
		}
	}
	return nil
}

// Flush writes the full cache to disk. Called after every successful fetch
// and at run end.
func (c *Cache) Flush() error {
	if c.path == "" {
		return nil
	}
	c.mu.RLock()
	data, err := json.Marshal(c.buckets)
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode price cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write price cache: %w", err)
	}
	return nil
}

// get returns the cached value for (bucket, key).
func (c *Cache) get(bucket, key string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.buckets[bucket][key]
	return v, ok
}

// put stores a value for (bucket, key) if absent and returns the value that
// ended up in the cache.
func (c *Cache) put(bucket, key string, value float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.buckets[bucket][key]; ok {
		return existing
	}
	c.buckets[bucket][key] = value
	return value
}

// Len returns the number of entries in the named bucket.
func (c *Cache) Len(bucket string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.buckets[bucket])
}
