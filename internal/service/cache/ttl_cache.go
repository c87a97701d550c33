package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"CoinBoard/internal/domain/models"
	drepo "CoinBoard/internal/domain/repository"
	applogger "CoinBoard/pkg/logger"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

const defaultFetchTimeout = 30 * time.Second

// TTLCache memoizes fetch results per key. An entry is valid while
// now-created < ttl. Failed fetches never touch stored entries.
type TTLCache struct {
	mu           sync.RWMutex
	m            map[string]models.CacheEntry[any]
	clock        clockwork.Clock
	l2           BytesCache
	metrics      drepo.Metrics
	log          *applogger.Logger
	group        singleflight.Group
	fetchTimeout time.Duration
}

// Option configures TTLCache.
type Option func(*TTLCache)

// WithClock injects the clock used for expiry.
func WithClock(c clockwork.Clock) Option {
	return func(tc *TTLCache) { tc.clock = c }
}

// WithSecondTier adds a shared byte cache behind the in-process map.
func WithSecondTier(b BytesCache) Option {
	return func(tc *TTLCache) { tc.l2 = b }
}

// WithMetrics records hits and misses per key kind.
func WithMetrics(m drepo.Metrics) Option {
	return func(tc *TTLCache) {
		if m != nil {
			tc.metrics = m
		}
	}
}

// WithLogger sets the logger used for second-tier failures.
func WithLogger(l *applogger.Logger) Option {
	return func(tc *TTLCache) {
		if l != nil {
			tc.log = l
		}
	}
}

// WithFetchTimeout bounds a shared fetch. It runs apart from any single
// caller's context, so it needs its own deadline.
func WithFetchTimeout(d time.Duration) Option {
	return func(tc *TTLCache) {
		if d > 0 {
			tc.fetchTimeout = d
		}
	}
}

func NewTTLCache(opts ...Option) *TTLCache {
	c := &TTLCache{
		m:            make(map[string]models.CacheEntry[any]),
		clock:        clockwork.NewRealClock(),
		metrics:      drepo.NopMetrics{},
		log:          applogger.Nop(),
		fetchTimeout: defaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Now returns the cache clock's current time.
func (c *TTLCache) Now() time.Time { return c.clock.Now() }

// Get returns the value for key if it is still valid.
func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok || !e.ValidAt(c.clock.Now()) {
		return nil, false
	}
	return e.Value, true
}

// Peek returns the last stored entry for key even if it has expired.
// Expired entries stay visible until the next Sweep.
func (c *TTLCache) Peek(key string) (models.CacheEntry[any], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.m[key]
	return e, ok
}

// PeekAs is Peek with the value asserted to T.
func PeekAs[T any](c *TTLCache, key string) (models.CacheEntry[T], bool) {
	e, ok := c.Peek(key)
	if !ok {
		return models.CacheEntry[T]{}, false
	}
	v, ok := e.Value.(T)
	if !ok {
		return models.CacheEntry[T]{}, false
	}
	return models.CacheEntry[T]{Value: v, CreatedAt: e.CreatedAt, TTL: e.TTL}, true
}

// Set stores v under key, created now.
func (c *TTLCache) Set(key string, v any, ttl time.Duration) {
	c.store(key, v, c.clock.Now(), ttl)
}

func (c *TTLCache) store(key string, v any, created time.Time, ttl time.Duration) {
	c.mu.Lock()
	c.m[key] = models.CacheEntry[any]{Value: v, CreatedAt: created, TTL: ttl}
	c.mu.Unlock()
}

// Sweep drops expired entries and returns how many were removed.
func (c *TTLCache) Sweep() int {
	now := c.clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.m {
		if !e.ValidAt(now) {
			delete(c.m, k)
			n++
		}
	}
	return n
}

// Stats is a point-in-time view of the cache.
type Stats struct {
	Entries int
	Valid   int
}

func (c *TTLCache) Stats() Stats {
	now := c.clock.Now()
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := Stats{Entries: len(c.m)}
	for _, e := range c.m {
		if e.ValidAt(now) {
			s.Valid++
		}
	}
	return s
}

// envelope is the second-tier wire format.
type envelope struct {
	CreatedAt time.Time       `json:"created_at"`
	TTL       time.Duration   `json:"ttl"`
	Value     json.RawMessage `json:"value"`
}

// GetOrFetch returns the valid cached value for key or calls fetch.
// A successful fetch is stored with the current time; a failed one is
// returned as-is and leaves any earlier entry in place. Concurrent calls
// for the same key share one fetch.
func GetOrFetch[T any](ctx context.Context, c *TTLCache, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	kind := kindOf(key)
	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			c.metrics.RecordCacheHit(kind)
			return typed, nil
		}
	}
	if v, ok := fromSecondTier[T](ctx, c, key); ok {
		c.metrics.RecordCacheHit(kind)
		return v, nil
	}
	c.metrics.RecordCacheMiss(kind)
	return fetchAndStore(ctx, c, key, ttl, fetch)
}

// Revalidate always calls fetch, bypassing any valid entry. On failure the
// earlier entry stays untouched and keeps serving GetOrFetch until it expires.
func Revalidate[T any](ctx context.Context, c *TTLCache, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	return fetchAndStore(ctx, c, key, ttl, fetch)
}

// fetchAndStore runs one shared fetch per key. The fetch is detached from
// the caller that started it; every caller stops waiting when its own ctx ends.
func fetchAndStore[T any](ctx context.Context, c *TTLCache, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	ch := c.group.DoChan(key, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()
		v, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		created := c.clock.Now()
		c.store(key, v, created, ttl)
		toSecondTier(fctx, c, key, v, created, ttl)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		typed, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("cache %s: unexpected value type %T", key, res.Val)
		}
		return typed, nil
	}
}

func fromSecondTier[T any](ctx context.Context, c *TTLCache, key string) (T, bool) {
	var zero T
	if c.l2 == nil {
		return zero, false
	}
	b, ok, err := c.l2.GetBytes(ctx, key)
	if err != nil {
		c.log.Warn("cache.l2 get_error", applogger.String("key", key), applogger.Error(err))
		return zero, false
	}
	if !ok {
		return zero, false
	}
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		c.log.Warn("cache.l2 bad_envelope", applogger.String("key", key), applogger.Error(err))
		return zero, false
	}
	e := models.CacheEntry[any]{CreatedAt: env.CreatedAt, TTL: env.TTL}
	if !e.ValidAt(c.clock.Now()) {
		return zero, false
	}
	var v T
	if err := json.Unmarshal(env.Value, &v); err != nil {
		c.log.Warn("cache.l2 decode_error", applogger.String("key", key), applogger.Error(err))
		return zero, false
	}
	c.store(key, v, env.CreatedAt, env.TTL)
	return v, true
}

func toSecondTier(ctx context.Context, c *TTLCache, key string, v any, created time.Time, ttl time.Duration) {
	if c.l2 == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("cache.l2 encode_error", applogger.String("key", key), applogger.Error(err))
		return
	}
	b, err := json.Marshal(envelope{CreatedAt: created, TTL: ttl, Value: raw})
	if err != nil {
		return
	}
	if err := c.l2.SetBytes(ctx, key, b, ttl); err != nil {
		c.log.Warn("cache.l2 set_error", applogger.String("key", key), applogger.Error(err))
	}
}
