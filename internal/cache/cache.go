package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/curtools/cur/internal/metrics"
)

// Eviction reasons reported to metrics.
const (
	evictExpired = "expired"
	evictCorrupt = "corrupt"
)

// RateCache stores payloads in a Store wrapped in an Envelope.
// Every call goes through the store; there is no in-memory layer.
type RateCache struct {
	store   Store
	logger  zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewRateCache creates a RateCache on top of store.
func NewRateCache(store Store, opts ...Option) *RateCache {
	s := newSettings(opts)
	return &RateCache{
		store:   store,
		logger:  s.logger,
		metrics: s.metrics,
		now:     s.now,
	}
}

// Get returns the payload stored under key.
// Returns ErrCacheNotFound when the key is absent, expired or malformed;
// expired and malformed entries are deleted as a side effect.
func (c *RateCache) Get(key string) (json.RawMessage, error) {
	env, err := c.envelope(key)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// Load decodes the payload stored under key into v. A payload that does not
// decode, or fails v's Validate method, is evicted and reported as
// ErrCacheNotFound.
func (c *RateCache) Load(key string, v any) error {
	env, err := c.envelope(key)
	if err != nil {
		return err
	}

	if decodeErr := decodeOrEvict(c.store, key, env.Data, v, c.logger); decodeErr != nil {
		c.metrics.CacheEvicted(evictCorrupt)
		return ErrCacheNotFound
	}
	return nil
}

// Set stores payload under key until expiryUnix, replacing any prior value.
func (c *RateCache) Set(key string, payload json.RawMessage, expiryUnix int64) error {
	if key == "" {
		return ErrInvalidCacheKey
	}

	data, err := json.Marshal(NewEnvelope(payload, expiryUnix))
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if writeErr := c.store.Write(key, data); writeErr != nil {
		return writeErr
	}

	c.logger.Debug().
		Str("component", "cache").
		Str("key", key).
		Time("expires_at", time.Unix(expiryUnix, 0)).
		Msg("cache set")
	return nil
}

// Delete removes key.
func (c *RateCache) Delete(key string) error {
	return c.store.Delete(key)
}

// Clear removes every key the store currently lists. Keys written while
// Clear runs may survive.
func (c *RateCache) Clear() error {
	keys, err := c.store.Keys()
	if err != nil {
		return err
	}

	for _, key := range keys {
		if delErr := c.store.Delete(key); delErr != nil {
			return fmt.Errorf("failed to remove cache entry %s: %w", key, delErr)
		}
	}

	c.logger.Debug().Str("component", "cache").Int("count", len(keys)).Msg("cache cleared")
	return nil
}

// Entry describes a live cache entry for listings.
type Entry struct {
	Key       string
	ExpiresAt time.Time
	TTL       time.Duration
}

// Entries returns the live entries in the store. Expired and malformed
// entries encountered while listing are evicted like on Get.
func (c *RateCache) Entries() ([]Entry, error) {
	keys, err := c.store.Keys()
	if err != nil {
		return nil, err
	}

	now := c.now()
	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		env, envErr := c.envelope(key)
		if errors.Is(envErr, ErrCacheNotFound) {
			continue
		}
		if envErr != nil {
			return nil, envErr
		}
		entries = append(entries, Entry{
			Key:       key,
			ExpiresAt: env.ExpiresAt(),
			TTL:       env.TimeUntilExpiration(now),
		})
	}
	return entries, nil
}

// envelope reads and validates the envelope under key, evicting it when it
// is malformed or expired.
func (c *RateCache) envelope(key string) (*Envelope, error) {
	data, err := c.store.Read(key)
	if err != nil {
		if !errors.Is(err, ErrCacheNotFound) {
			return nil, err
		}
		if errors.Is(err, ErrCorruptEntry) {
			c.metrics.CacheEvicted(evictCorrupt)
		}
		c.metrics.CacheMiss()
		c.logger.Debug().Str("component", "cache").Str("key", key).Msg("cache miss")
		return nil, ErrCacheNotFound
	}

	var env Envelope
	if decodeErr := decodeOrEvict(c.store, key, data, &env, c.logger); decodeErr != nil {
		c.metrics.CacheEvicted(evictCorrupt)
		c.metrics.CacheMiss()
		return nil, ErrCacheNotFound
	}

	if env.IsExpiredAt(c.now()) {
		c.logger.Debug().
			Str("component", "cache").
			Str("key", key).
			Time("expired_at", env.ExpiresAt()).
			Msg("cache entry expired")
		if delErr := c.store.Delete(key); delErr != nil {
			c.logger.Warn().Str("component", "cache").Str("key", key).Err(delErr).
				Msg("failed to evict expired cache entry")
		}
		c.metrics.CacheEvicted(evictExpired)
		c.metrics.CacheMiss()
		return nil, ErrCacheNotFound
	}

	c.metrics.CacheHit()
	c.logger.Debug().Str("component", "cache").Str("key", key).Msg("cache hit")
	return &env, nil
}
