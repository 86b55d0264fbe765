package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/publisherradar/sellersync/internal/ratelimit"
	"github.com/stretchr/testify/assert"
)

func noJitter() time.Duration { return 0 }

func TestBackoff_ExponentialGrowth(t *testing.T) {
	b := ratelimit.NewBackoff(time.Second, 30*time.Second, 2.0, ratelimit.WithJitter(noJitter))

	assert.Equal(t, 1*time.Second, b.Delay(0))
	assert.Equal(t, 2*time.Second, b.Delay(1))
	assert.Equal(t, 4*time.Second, b.Delay(2))
	assert.Equal(t, 8*time.Second, b.Delay(3))
}

func TestBackoff_CappedAtMax(t *testing.T) {
	b := ratelimit.NewBackoff(time.Second, 30*time.Second, 2.0, ratelimit.WithJitter(noJitter))

	assert.Equal(t, 30*time.Second, b.Delay(5), "2^5 = 32s exceeds the cap")
	assert.Equal(t, 30*time.Second, b.Delay(20))
	assert.Equal(t, 30*time.Second, b.Delay(100), "huge exponents must not overflow past the cap")
}

func TestBackoff_JitterBounds(t *testing.T) {
	b := ratelimit.NewBackoff(time.Second, 30*time.Second, 2.0)

	for range 50 {
		d := b.Delay(1)
		assert.GreaterOrEqual(t, d, 2*time.Second)
		assert.Less(t, d, 3*time.Second)
	}
}

func TestBackoff_WaitContextCancelled(t *testing.T) {
	b := ratelimit.NewBackoff(time.Minute, time.Hour, 2.0, ratelimit.WithJitter(noJitter))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := b.Wait(ctx, 0)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
