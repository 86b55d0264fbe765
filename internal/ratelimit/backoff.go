package ratelimit

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// maxJitter is the upper bound of the random delay added to each backoff
// step so that retrying clients do not synchronize.
const maxJitter = time.Second

// Backoff computes exponentially growing retry delays with jitter.
type Backoff struct {
	initial time.Duration
	max     time.Duration
	factor  float64

	jitter func() time.Duration
}

// BackoffOption configures a Backoff.
type BackoffOption func(*Backoff)

// WithJitter replaces the jitter source. Used by tests for determinism.
func WithJitter(jitter func() time.Duration) BackoffOption {
	return func(b *Backoff) {
		b.jitter = jitter
	}
}

// NewBackoff creates a Backoff where attempt n (zero-based) waits
// initial*factor^n, capped at max, plus up to one second of jitter.
func NewBackoff(initial, max time.Duration, factor float64, opts ...BackoffOption) *Backoff {
	b := &Backoff{
		initial: initial,
		max:     max,
		factor:  factor,
		jitter: func() time.Duration {
			return time.Duration(rand.Int63n(int64(maxJitter)))
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Delay returns the wait for the given zero-based attempt number.
func (b *Backoff) Delay(attempt int) time.Duration {
	d := time.Duration(float64(b.initial) * math.Pow(b.factor, float64(attempt)))
	if d > b.max || d < 0 {
		d = b.max
	}
	return d + b.jitter()
}

// Wait sleeps for the attempt's delay, returning early if the context is
// cancelled.
func (b *Backoff) Wait(ctx context.Context, attempt int) error {
	timer := time.NewTimer(b.Delay(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
