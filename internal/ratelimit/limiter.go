// Package ratelimit implements the client-side throttling used when calling
// external quota-limited APIs: a token bucket for request pacing and an
// exponential backoff schedule for retries.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// pollInterval bounds how long an Acquire waits between token checks, so
// context cancellation is noticed promptly even at very low refill rates.
const pollInterval = 100 * time.Millisecond

// Limiter is a token bucket. The bucket starts full at maxTokens and refills
// continuously at a fractional per-millisecond rate derived from the
// per-minute budget, capped at maxTokens.
type Limiter struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per millisecond
	lastRefill time.Time

	now func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces the wall clock. Used by tests to simulate time.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// NewLimiter creates a Limiter that allows requestsPerMinute sustained
// throughput with a burst capacity of maxTokens. A maxTokens of 0 defaults
// the burst to requestsPerMinute.
func NewLimiter(requestsPerMinute int, maxTokens int, opts ...Option) *Limiter {
	if maxTokens <= 0 {
		maxTokens = requestsPerMinute
	}
	l := &Limiter{
		maxTokens:  float64(maxTokens),
		refillRate: float64(requestsPerMinute) / float64(time.Minute/time.Millisecond),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.tokens = l.maxTokens
	l.lastRefill = l.now()
	return l
}

// refill tops up the bucket based on elapsed time. Callers must hold mu.
func (l *Limiter) refill() {
	now := l.now()
	elapsed := now.Sub(l.lastRefill)
	if elapsed <= 0 {
		return
	}
	l.tokens += float64(elapsed) / float64(time.Millisecond) * l.refillRate
	if l.tokens > l.maxTokens {
		l.tokens = l.maxTokens
	}
	l.lastRefill = now
}

// TryAcquire takes a token if one is available without blocking.
func (l *Limiter) TryAcquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refill()
	if l.tokens >= 1 {
		l.tokens--
		return true
	}
	return false
}

// Acquire blocks until a token is available or the context is cancelled.
func (l *Limiter) Acquire(ctx context.Context) error {
	for {
		if l.TryAcquire() {
			return nil
		}

		wait := l.waitForNextToken()
		if wait > pollInterval {
			wait = pollInterval
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// waitForNextToken estimates how long until a whole token is available.
func (l *Limiter) waitForNextToken() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refill()
	if l.tokens >= 1 {
		return 0
	}
	missing := 1 - l.tokens
	ms := missing / l.refillRate
	return time.Duration(ms) * time.Millisecond
}

// AvailableTokens returns the number of whole tokens currently in the bucket.
func (l *Limiter) AvailableTokens() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refill()
	return int(l.tokens)
}
