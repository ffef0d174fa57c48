// Package cache is the explicit memo cache used by the dashboard. Entries are
// keyed by the identity of the cached function plus its arguments, expire
// after a TTL and can be busted by hand. Computations stay unaware of it.
package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/ristretto"

	"go-data-dashboard/internal/metrics"
)

// Config sets the size and lifetime of cached entries
type Config struct {
	MaxEntries int64
	TTL        time.Duration
}

type Cache struct {
	store   *ristretto.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
}

func New(cfg Config, m *metrics.Metrics) (*Cache, error) {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 1024
	}
	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        cfg.MaxEntries * 10,
		MaxCost:            cfg.MaxEntries,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{store: store, ttl: cfg.TTL, metrics: m}, nil
}

// Key hashes a function identity and its argument tuple. Arguments must be
// JSON encodable.
func Key(fn string, args ...interface{}) (uint64, error) {
	b, err := json.Marshal(args)
	if err != nil {
		return 0, fmt.Errorf("cache key for %s: %w", fn, err)
	}
	h := xxhash.New()
	h.WriteString(fn)
	h.Write([]byte{0})
	h.Write(b)
	return h.Sum64(), nil
}

func (c *Cache) Get(key uint64) (interface{}, bool) {
	return c.store.Get(key)
}

// Set stores value and waits until it is visible to Get. A zero TTL keeps
// the entry until it is evicted or busted.
func (c *Cache) Set(key uint64, value interface{}) bool {
	ok := c.store.SetWithTTL(key, value, 1, c.ttl)
	c.store.Wait()
	return ok
}

func (c *Cache) Delete(key uint64) {
	c.store.Del(key)
}

// Bust drops every entry.
func (c *Cache) Bust() {
	c.store.Clear()
}

func (c *Cache) Close() {
	c.store.Close()
}

// Memo returns the cached result of fn(args) or computes and stores it.
// Errors are never cached. A nil cache always computes.
func Memo[T any](c *Cache, fn string, args []interface{}, compute func() (T, error)) (T, error) {
	if c == nil {
		return compute()
	}
	key, err := Key(fn, args...)
	if err != nil {
		return compute()
	}
	if v, ok := c.Get(key); ok {
		if t, ok := v.(T); ok {
			c.metrics.CacheHit(fn)
			return t, nil
		}
	}
	c.metrics.CacheMiss(fn)
	t, err := compute()
	if err != nil {
		return t, err
	}
	c.Set(key, t)
	return t, nil
}
