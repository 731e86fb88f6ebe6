package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"inys-backend/internal/delivery/http/response"
	"inys-backend/pkg/audit"
	"inys-backend/pkg/redis"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Time window duration
	Window time.Duration
	// Custom key extractor (default: client IP)
	KeyFunc func(*gin.Context) string
	// Key prefix for Redis, also namespaces the in-memory buckets
	KeyPrefix string
	// Whether to fail closed (reject) when Redis errors
	FailClosed bool
}

// GlobalRateLimitConfig limits every route per client IP.
func GlobalRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{Limit: limit, Window: window, KeyPrefix: "rl:ip:"}
}

// LoginRateLimitConfig is the strict limit of the login endpoint.
func LoginRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{Limit: limit, Window: window, KeyPrefix: "rl:login:", FailClosed: true}
}

// UploadRateLimitConfig limits avatar uploads.
func UploadRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{Limit: limit, Window: window, KeyPrefix: "rl:upload:"}
}

// Lua script for atomic increment with TTL on first set
// KEYS[1] = counter key
// ARGV[1] = TTL in seconds
// Returns: [current_count, ttl_remaining]
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

// memoryBucket is a fixed window counter used when Redis is not configured.
type memoryBucket struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
	dead    bool // removed by sweep, callers must load a fresh bucket
}

type memoryStore struct {
	buckets sync.Map
	window  time.Duration
}

func (s *memoryStore) hit(key string, now time.Time) (int, time.Time) {
	for {
		v, _ := s.buckets.LoadOrStore(key, &memoryBucket{resetAt: now.Add(s.window)})
		b := v.(*memoryBucket)

		b.mu.Lock()
		if b.dead {
			b.mu.Unlock()
			continue
		}
		if !now.Before(b.resetAt) {
			b.count = 0
			b.resetAt = now.Add(s.window)
		}
		b.count++
		count, resetAt := b.count, b.resetAt
		b.mu.Unlock()
		return count, resetAt
	}
}

// sweep drops buckets whose window has passed.
func (s *memoryStore) sweep(now time.Time) {
	s.buckets.Range(func(key, value interface{}) bool {
		b := value.(*memoryBucket)
		b.mu.Lock()
		if !now.Before(b.resetAt) {
			b.dead = true
			s.buckets.CompareAndDelete(key, b)
		}
		b.mu.Unlock()
		return true
	})
}

// RateLimitMiddleware creates a rate limiting middleware with the given config.
// Uses Redis when available and falls back to a per-middleware memory store,
// swept until ctx is done.
func RateLimitMiddleware(ctx context.Context, config RateLimitConfig) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}

	store := &memoryStore{window: config.Window}
	var janitor sync.Once

	return func(c *gin.Context) {
		if config.Limit <= 0 {
			c.Next()
			return
		}

		key := config.KeyPrefix + config.KeyFunc(c)
		now := time.Now()

		var count int
		var resetAt time.Time

		if client := redis.Client(); client != nil {
			var err error
			count, resetAt, err = checkRateLimitRedis(c.Request.Context(), client, key, config.Window)
			if err != nil {
				logRateLimitError(c, "redis_error", err)
				if config.FailClosed {
					response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
					c.Abort()
					return
				}
				count, resetAt = store.hit(key, now)
			}
		} else {
			janitor.Do(func() { go sweepEvery(ctx, store, 5*time.Minute) })
			count, resetAt = store.hit(key, now)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > config.Limit {
			retryAfter := max(1, int(time.Until(resetAt).Seconds()))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			logRateLimitTriggered(c)

			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(config.Limit-count))
		c.Next()
	}
}

func sweepEvery(ctx context.Context, store *memoryStore, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			store.sweep(now)
		}
	}
}

// checkRateLimitRedis checks rate limit using Redis with atomic Lua script
func checkRateLimitRedis(ctx context.Context, client *goredis.Client, key string, window time.Duration) (int, time.Time, error) {
	result, err := client.Eval(ctx, rateLimitLuaScript, []string{key}, int(window.Seconds())).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}

	// Parse result [count, ttl]
	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}

	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)

	return int(count), time.Now().Add(time.Duration(ttl) * time.Second), nil
}

func logRateLimitTriggered(c *gin.Context) {
	audit.Default().Log(c.Request.Context(), audit.Event{
		Event:       audit.EventRateLimitTriggered,
		SubjectType: "ip",
		IP:          c.ClientIP(),
		RequestID:   c.GetString("RequestID"),
		Details: map[string]interface{}{
			"path":       c.FullPath(),
			"user_agent": c.GetHeader("User-Agent"),
		},
	})
}

func logRateLimitError(c *gin.Context, errorType string, err error) {
	audit.Default().Log(c.Request.Context(), audit.Event{
		Event:       audit.EventRateLimitTriggered,
		SubjectType: "system",
		IP:          c.ClientIP(),
		Details: map[string]interface{}{
			"error_type": errorType,
			"error":      err.Error(),
		},
	})
}
