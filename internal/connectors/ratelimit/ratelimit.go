// Package ratelimit paces requests to a single upstream archive.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultCooldown is applied after a 429 that carries no Retry-After.
const DefaultCooldown = 60 * time.Second

// Limiter enforces a minimum interval between requests to one upstream.
// It uses a token bucket with a burst of one, plus a cooldown window set
// when the upstream reports it is rate limiting us.
type Limiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// New creates a limiter allowing requestsPerSecond. A non-positive rate
// disables pacing.
func New(requestsPerSecond float64) *Limiter {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Limiter{
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Interval returns the minimum spacing between requests.
func (l *Limiter) Interval() time.Duration {
	limit := l.limiter.Limit()
	if limit == rate.Inf || limit <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(limit))
}

// Wait blocks until a request may be made. It honours any cooldown
// recorded by RecordRetryAfter and returns early if ctx is cancelled.
// A wait that cannot finish before the ctx deadline fails at once with
// an error wrapping context.DeadlineExceeded.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		if deadline, ok := ctx.Deadline(); ok && retryAt.After(deadline) {
			return fmt.Errorf("%w: cooldown of %s outlasts deadline", context.DeadlineExceeded, d.Round(time.Millisecond))
		}
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if err := l.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if _, ok := ctx.Deadline(); ok {
			return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		return err
	}
	return nil
}

// RecordRetryAfter starts a cooldown. Call it when the upstream answers
// 429. A non-positive duration falls back to DefaultCooldown.
func (l *Limiter) RecordRetryAfter(d time.Duration) {
	if d <= 0 {
		d = DefaultCooldown
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if at := time.Now().Add(d); at.After(l.retryAt) {
		l.retryAt = at
	}
}

// Allow reports whether a request may be made now without blocking.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return l.limiter.Allow()
}
