package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/publisherradar/sellersync/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock simulates time for deterministic refill tests.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func TestLimiter_BurstExhaustion(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	limiter := ratelimit.NewLimiter(60, 5, ratelimit.WithClock(clock.now))

	for i := range 5 {
		assert.True(t, limiter.TryAcquire(), "token %d should be available", i)
	}
	assert.False(t, limiter.TryAcquire(), "bucket should be empty after burst")
}

func TestLimiter_ContinuousRefill(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	// 60 requests per minute refills one token per second.
	limiter := ratelimit.NewLimiter(60, 5, ratelimit.WithClock(clock.now))

	for limiter.TryAcquire() {
	}
	assert.Equal(t, 0, limiter.AvailableTokens())

	clock.advance(500 * time.Millisecond)
	assert.Equal(t, 0, limiter.AvailableTokens(), "half a token is not a whole token")
	assert.False(t, limiter.TryAcquire())

	clock.advance(1 * time.Second)
	assert.Equal(t, 1, limiter.AvailableTokens(), "fractional balance floors to one")
	assert.True(t, limiter.TryAcquire())
	assert.False(t, limiter.TryAcquire())
}

func TestLimiter_SubMillisecondRefillAccumulates(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	// 60000 rpm refills one token per millisecond.
	limiter := ratelimit.NewLimiter(60000, 1, ratelimit.WithClock(clock.now))
	require.True(t, limiter.TryAcquire())

	// Polling faster than the refill granularity must not lose credit.
	clock.advance(500 * time.Microsecond)
	assert.Equal(t, 0, limiter.AvailableTokens())
	clock.advance(500 * time.Microsecond)
	assert.Equal(t, 1, limiter.AvailableTokens())
}

func TestLimiter_RefillCapsAtBurst(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	limiter := ratelimit.NewLimiter(60, 5, ratelimit.WithClock(clock.now))

	require.True(t, limiter.TryAcquire())
	clock.advance(10 * time.Minute)

	assert.Equal(t, 5, limiter.AvailableTokens(), "bucket never exceeds burst capacity")
}

func TestLimiter_AcquireImmediate(t *testing.T) {
	limiter := ratelimit.NewLimiter(60, 1)

	err := limiter.Acquire(context.Background())
	require.NoError(t, err)
}

func TestLimiter_AcquireBlocksUntilRefill(t *testing.T) {
	// 60000 rpm refills a token every millisecond, so the blocked Acquire
	// completes well within the test timeout.
	limiter := ratelimit.NewLimiter(60000, 1)
	require.True(t, limiter.TryAcquire())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := limiter.Acquire(ctx)
	require.NoError(t, err)
}

func TestLimiter_AcquireContextCancelled(t *testing.T) {
	// One request per minute, so a drained bucket will not refill during
	// the test and Acquire must exit via the context.
	limiter := ratelimit.NewLimiter(1, 1)
	require.True(t, limiter.TryAcquire())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := limiter.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
