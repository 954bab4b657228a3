// Package ratelimit provides a sliding-window admission limiter keyed by
// client identity.
//
// The limiter never blocks or retries: Admit reports the decision and the
// caller surfaces a 429 on rejection.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter admits up to limit requests per client within a trailing window.
// Safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string][]time.Time
	limit   int
	window  time.Duration
	now     func() time.Time
}

// New creates a Limiter allowing limit admissions per window per client.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		buckets: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Admit records an admission for clientID if it is under its quota and
// reports whether the request is allowed. Timestamps older than the window
// are discarded before the check.
func (l *Limiter) Admit(clientID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	bucket := l.buckets[clientID]
	expired := 0
	for expired < len(bucket) && !bucket[expired].After(cutoff) {
		expired++
	}
	if expired > 0 {
		// Copy so the pruned prefix's backing array can be collected.
		bucket = append([]time.Time(nil), bucket[expired:]...)
		if len(bucket) == 0 {
			delete(l.buckets, clientID)
		}
	}

	if len(bucket) >= l.limit {
		l.buckets[clientID] = bucket
		return false
	}

	l.buckets[clientID] = append(bucket, now)
	return true
}

// Limit returns the configured admission count.
func (l *Limiter) Limit() int { return l.limit }

// Window returns the configured trailing window.
func (l *Limiter) Window() time.Duration { return l.window }
