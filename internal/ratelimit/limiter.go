// internal/ratelimit/limiter.go
//
// Fixed-window request limiter.
//
// Context
// -------
// Each client key (normally the resolved client address) owns a counter
// and a window end.  The first request after the window closes starts a
// new window with count 1.  Requests inside the window are granted until
// the counter reaches the limit.
//
// Buckets live in an expirable LRU whose TTL equals the window, so stale
// keys age out and the table never grows past MaxKeys entries.  An evicted
// key simply starts a fresh window on its next request.
//
// Notes
// -----
//   - State is per process.  Several replicas each enforce their own
//     window, so the effective limit across a fleet is limit × replicas.
//   - The clock is injectable for tests; the LRU TTL still runs on wall
//     time, which only ever causes an early reset.
package ratelimit

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Defaults used when Options fields are zero.
const (
	DefaultLimit   = 100
	DefaultWindow  = time.Minute
	DefaultMaxKeys = 10000
)

// Options configures a Limiter.
type Options struct {
	Limit   int
	Window  time.Duration
	MaxKeys int
}

// Result is the outcome of one Allow call.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time

	// RetryAfter is the wait until the window resets; zero when Allowed.
	RetryAfter time.Duration
}

type bucket struct {
	count   int
	resetAt time.Time
}

// Limiter is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	buckets *expirable.LRU[string, *bucket]
}

// Option mutates a Limiter at construction.
type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New builds a Limiter, filling zero Options with defaults.
func New(o Options, opts ...Option) *Limiter {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Window <= 0 {
		o.Window = DefaultWindow
	}
	if o.MaxKeys <= 0 {
		o.MaxKeys = DefaultMaxKeys
	}
	l := &Limiter{
		limit:   o.Limit,
		window:  o.Window,
		now:     time.Now,
		buckets: expirable.NewLRU[string, *bucket](o.MaxKeys, nil, o.Window),
	}
	for _, fn := range opts {
		fn(l)
	}
	return l
}

// Allow records one request for key and reports whether it fits the
// current window.
func (l *Limiter) Allow(key string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets.Get(key)
	if !ok || !now.Before(b.resetAt) {
		b = &bucket{count: 1, resetAt: now.Add(l.window)}
		l.buckets.Add(key, b)
		return Result{Allowed: true, Limit: l.limit, Remaining: l.limit - 1, ResetAt: b.resetAt}
	}

	if b.count < l.limit {
		b.count++
		return Result{Allowed: true, Limit: l.limit, Remaining: l.limit - b.count, ResetAt: b.resetAt}
	}
	return Result{Allowed: false, Limit: l.limit, Remaining: 0, ResetAt: b.resetAt, RetryAfter: b.resetAt.Sub(now)}
}

// Len reports how many keys are tracked.
func (l *Limiter) Len() int { return l.buckets.Len() }
