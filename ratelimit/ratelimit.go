// Package ratelimit admits or denies requests per caller identity.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultMaxRequests = 10
	DefaultWindow      = time.Minute
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter allows up to max requests per window for each identity. A caller
// that spends its whole allowance regains one request every window/max.
type Limiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	buckets map[string]*bucket
	now     func() time.Time
}

func New(max int, window time.Duration) *Limiter {
	if max < 1 {
		max = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		max:     max,
		window:  window,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// WithClock replaces the wall clock, for tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

func (l *Limiter) Allow(identity string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	b, ok := l.buckets[identity]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Every(l.window/time.Duration(l.max)), l.max)}
		l.buckets[identity] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// Reset forgets identity, restoring its full allowance.
func (l *Limiter) Reset(identity string) {
	l.mu.Lock()
	delete(l.buckets, identity)
	l.mu.Unlock()
}

// Cleanup drops identities idle for a full window; their allowance is full
// again by then. Returns how many were removed.
func (l *Limiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	removed := 0
	for id, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.window {
			delete(l.buckets, id)
			removed++
		}
	}
	return removed
}

// Tracked is the number of identities currently held.
func (l *Limiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
