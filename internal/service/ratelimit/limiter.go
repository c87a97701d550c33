package ratelimit

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type bucket struct {
	tokens float64
	last   time.Time
}

// Limiter is a keyed token bucket. Each key starts full.
type Limiter struct {
	mu         sync.Mutex
	m          map[string]*bucket
	capacity   float64
	refillRate float64 // tokens per second
	clock      clockwork.Clock
}

// Option configures Limiter.
type Option func(*Limiter)

// WithClock injects a clock (tests use a fake one).
func WithClock(c clockwork.Clock) Option {
	return func(l *Limiter) { l.clock = c }
}

// New creates a limiter allowing burst requests at once and perMinute
// requests per minute sustained. perMinute <= 0 disables limiting.
func New(burst, perMinute int, opts ...Option) *Limiter {
	if burst < 1 {
		burst = 1
	}
	l := &Limiter{
		m:          make(map[string]*bucket),
		capacity:   float64(burst),
		refillRate: float64(perMinute) / 60,
		clock:      clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
	if l == nil || l.refillRate <= 0 {
		return true
	}
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.m[key]
	if !ok {
		b = &bucket{tokens: l.capacity, last: now}
		l.m[key] = b
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens += elapsed * l.refillRate
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.last = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}
