package service

import (
	"context"
	"testing"
	"time"

	"coursebot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEpoch = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func TestLimiter_AdmissionCheck(t *testing.T) {
	clk := testutil.NewFakeClock(testEpoch)
	limiter := NewLimiter(2, 100, clk)
	ctx := context.Background()

	assert.False(t, limiter.Exhausted())
	require.NoError(t, limiter.Acquire(ctx))
	assert.False(t, limiter.Exhausted())
	require.NoError(t, limiter.Acquire(ctx))
	assert.True(t, limiter.Exhausted())

	clk.Advance(59 * time.Second)
	assert.True(t, limiter.Exhausted())

	clk.Advance(time.Second)
	assert.False(t, limiter.Exhausted())
}

func TestLimiter_AcquireWaitsForWindow(t *testing.T) {
	clk := testutil.NewFakeClock(testEpoch)
	limiter := NewLimiter(3, 0, clk)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Acquire(ctx))
	}
	assert.Empty(t, clk.Slept())

	require.NoError(t, limiter.Acquire(ctx))

	assert.Equal(t, []time.Duration{time.Minute}, clk.Slept())
	assert.Equal(t, testEpoch.Add(time.Minute), clk.Now())
}

func TestLimiter_HourlyCap(t *testing.T) {
	clk := testutil.NewFakeClock(testEpoch)
	limiter := NewLimiter(0, 2, clk)
	ctx := context.Background()

	require.NoError(t, limiter.Acquire(ctx))
	clk.Advance(10 * time.Minute)
	require.NoError(t, limiter.Acquire(ctx))
	require.NoError(t, limiter.Acquire(ctx))

	// the first send expires one hour after it was made
	assert.Equal(t, testEpoch.Add(time.Hour), clk.Now())

	snap := limiter.Snapshot()
	assert.Equal(t, 2, snap.SentLastHour)
	assert.Equal(t, 2, snap.MaxPerHour)
}

func TestLimiter_RollingWindowInvariant(t *testing.T) {
	const perMinute = 20

	clk := testutil.NewFakeClock(testEpoch)
	limiter := NewLimiter(perMinute, 0, clk)
	ctx := context.Background()

	var sends []time.Time
	for i := 0; i < 75; i++ {
		require.NoError(t, limiter.Acquire(ctx))
		sends = append(sends, clk.Now())
		// uneven pacing between sends
		require.NoError(t, clk.Sleep(ctx, time.Duration(i%7)*700*time.Millisecond))
	}

	for i, end := range sends {
		count := 0
		for _, s := range sends[:i+1] {
			if end.Sub(s) < time.Minute {
				count++
			}
		}
		assert.LessOrEqual(t, count, perMinute, "window ending at send %d", i)
	}
}

func TestLimiter_AcquireHonoursCancellation(t *testing.T) {
	clk := testutil.NewFakeClock(testEpoch)
	limiter := NewLimiter(1, 0, clk)
	require.NoError(t, limiter.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := limiter.Acquire(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}
