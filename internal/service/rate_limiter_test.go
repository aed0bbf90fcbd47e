package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/exam-prep-accounts/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAttemptLimiter(t *testing.T) {
	ctx := context.Background()
	limiter := NewMemoryAttemptLimiter(3, time.Hour)

	for i := range 3 {
		allowed, err := limiter.Allow(ctx, "a@x.com")
		require.NoError(t, err)
		assert.True(t, allowed, "attempt %d", i+1)
	}

	allowed, err := limiter.Allow(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = limiter.Allow(ctx, "b@x.com")
	require.NoError(t, err)
	assert.True(t, allowed, "keys are independent")

	require.NoError(t, limiter.Reset(ctx, "a@x.com"))
	allowed, err = limiter.Allow(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestMemoryAttemptLimiter_ClampsLimit(t *testing.T) {
	limiter := NewMemoryAttemptLimiter(0, time.Minute)

	allowed, err := limiter.Allow(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisAttemptLimiter(t *testing.T) {
	ctx := context.Background()
	redis, err := database.NewRedis(ctx, "localhost:6379", "", 0)
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	defer redis.Close()

	limiter := NewRedisAttemptLimiter(redis, 2, time.Minute)
	key := uuid.New().String()
	defer limiter.Reset(ctx, key)

	now := time.Now()
	limiter.now = func() time.Time { return now }

	for range 2 {
		now = now.Add(time.Millisecond)
		allowed, err := limiter.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	now = now.Add(time.Millisecond)
	allowed, err := limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, allowed)

	// once the window has slid past the recorded attempts they no longer count
	now = now.Add(time.Minute)
	allowed, err = limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, allowed)

	require.NoError(t, limiter.Reset(ctx, key))
}
