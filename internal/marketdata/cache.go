package marketdata

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a valuation stays fresh. Market listings move
// daily, not hourly.
const DefaultCacheTTL = 6 * time.Hour

// Cache stores serialized valuations by key.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type ttlEntry struct {
	value     string
	expiresAt time.Time
}

// TTLCache is a process-local cache with per-entry expiry. Expired entries
// are dropped lazily on read.
type TTLCache struct {
	mu      sync.RWMutex
	entries map[string]ttlEntry
	now     func() time.Time
}

// NewTTLCache creates an empty TTLCache.
func NewTTLCache() *TTLCache {
	return &TTLCache{
		entries: make(map[string]ttlEntry),
		now:     time.Now,
	}
}

func (c *TTLCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", false
	}
	return e.value, true
}

func (c *TTLCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = ttlEntry{value: value, expiresAt: c.now().Add(ttl)}
	return nil
}

// CachedValuator wraps a Valuator with a Cache keyed by VIN.
type CachedValuator struct {
	inner Valuator
	cache Cache
	ttl   time.Duration
}

// NewCachedValuator wraps inner. A zero ttl uses DefaultCacheTTL.
func NewCachedValuator(inner Valuator, cache Cache, ttl time.Duration) *CachedValuator {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedValuator{inner: inner, cache: cache, ttl: ttl}
}

func (c *CachedValuator) Value(ctx context.Context, vin string, askingPrice float64) (Valuation, error) {
	key := "market:vin:" + vin
	if raw, ok := c.cache.Get(ctx, key); ok {
		var val Valuation
		if err := json.Unmarshal([]byte(raw), &val); err == nil {
			val.Source = "cache"
			return val, nil
		}
	}

	val, err := c.inner.Value(ctx, vin, askingPrice)
	if err != nil {
		return Valuation{}, err
	}

	if raw, err := json.Marshal(val); err == nil {
		// Cache write failures degrade to uncached reads, nothing more.
		_ = c.cache.Set(ctx, key, string(raw), c.ttl)
	}
	return val, nil
}
