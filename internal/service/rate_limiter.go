package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prperemyshlev/exam-prep-accounts/pkg/database"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// AttemptLimiter throttles login attempts per key
type AttemptLimiter interface {
	// Allow records an attempt and reports whether it is within the limit
	Allow(ctx context.Context, key string) (bool, error)
	// Reset forgets the attempts recorded for key
	Reset(ctx context.Context, key string) error
}

// MemoryAttemptLimiter keeps one token bucket per key in process memory.
// A full bucket holds limit attempts and refills over window.
type MemoryAttemptLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    int
	every    rate.Limit
}

// NewMemoryAttemptLimiter creates a limiter allowing limit attempts per window
func NewMemoryAttemptLimiter(limit int, window time.Duration) *MemoryAttemptLimiter {
	if limit < 1 {
		limit = 1
	}
	return &MemoryAttemptLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		every:    rate.Every(window / time.Duration(limit)),
	}
}

func (l *MemoryAttemptLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.every, l.limit)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow(), nil
}

func (l *MemoryAttemptLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.limiters, key)
	return nil
}

// RedisAttemptLimiter handles rate limiting using Redis, so the count
// survives process restarts
type RedisAttemptLimiter struct {
	redis  *database.Redis
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRedisAttemptLimiter creates a new rate limiter
func NewRedisAttemptLimiter(redis *database.Redis, limit int, window time.Duration) *RedisAttemptLimiter {
	return &RedisAttemptLimiter{
		redis:  redis,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow checks if an attempt is allowed based on rate limit
func (r *RedisAttemptLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := r.now()
	windowStart := now.Add(-r.window)

	// Use sliding window log algorithm
	redisKey := r.key(key)

	// Remove entries older than the window
	err := r.redis.Client.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.UnixMilli())).Err()
	if err != nil {
		return false, fmt.Errorf("failed to clean old entries: %w", err)
	}

	// Count current entries in the window
	count, err := r.redis.Client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to count entries: %w", err)
	}

	if count >= int64(r.limit) {
		return false, nil
	}

	// Add current attempt to the set with current timestamp as score
	err = r.redis.Client.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: fmt.Sprintf("%d", now.UnixNano()),
	}).Err()
	if err != nil {
		return false, fmt.Errorf("failed to add entry: %w", err)
	}

	// Set expiration on the key (window duration + 1 minute buffer)
	_ = r.redis.Client.Expire(ctx, redisKey, r.window+time.Minute).Err()

	return true, nil
}

// Reset drops the attempt log for key
func (r *RedisAttemptLimiter) Reset(ctx context.Context, key string) error {
	if err := r.redis.Client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to reset attempts: %w", err)
	}
	return nil
}

func (r *RedisAttemptLimiter) key(key string) string {
	return fmt.Sprintf("login_attempts:%s", key)
}
