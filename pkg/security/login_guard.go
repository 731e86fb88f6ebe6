// Package security holds the brute-force protection of the admin login.
package security

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"inys-backend/pkg/audit"
	"inys-backend/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
)

// LoginGuardConfig holds configuration for login lockout
type LoginGuardConfig struct {
	MaxAttempts   int           // failed attempts before a block (default: 5)
	AttemptWindow time.Duration // window the attempts are counted in (default: 15min)
	BlockDuration time.Duration // how long a block lasts (default: 15min)
}

func DefaultLoginGuardConfig() LoginGuardConfig {
	return LoginGuardConfig{
		MaxAttempts:   5,
		AttemptWindow: 15 * time.Minute,
		BlockDuration: 15 * time.Minute,
	}
}

// Redis key patterns. The email part is hashed.
const (
	failLoginPrefix    = "fail:login:user:"
	blockedLoginPrefix = "blocked:login:user:"
)

// KEYS[1] = counter key, ARGV[1] = TTL in seconds. Returns the count after increment.
const incrWithTTLScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`

// LoginGuard counts failed logins per email in Redis, or in process memory
// when Redis is not connected.
type LoginGuard struct {
	config LoginGuardConfig
	now    func() time.Time

	mu        sync.Mutex
	entries   map[string]*attempts
	lastPrune time.Time
}

type attempts struct {
	count        int
	windowEnd    time.Time
	blockedUntil time.Time
}

func (a *attempts) expired(now time.Time) bool {
	return now.After(a.windowEnd) && !now.Before(a.blockedUntil)
}

// prune drops finished entries, at most once per attempt window. Callers hold g.mu.
func (g *LoginGuard) prune(now time.Time) {
	if now.Sub(g.lastPrune) < g.config.AttemptWindow {
		return
	}
	g.lastPrune = now
	for key, e := range g.entries {
		if e.expired(now) {
			delete(g.entries, key)
		}
	}
}

func NewLoginGuard(config LoginGuardConfig) *LoginGuard {
	defaults := DefaultLoginGuardConfig()
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.AttemptWindow <= 0 {
		config.AttemptWindow = defaults.AttemptWindow
	}
	if config.BlockDuration <= 0 {
		config.BlockDuration = defaults.BlockDuration
	}
	return &LoginGuard{config: config, now: time.Now, entries: make(map[string]*attempts)}
}

func (g *LoginGuard) Blocked(ctx context.Context, email string) (time.Duration, error) {
	key := audit.HashSubject(email)

	if client := redis.Client(); client != nil {
		ttl, err := client.TTL(ctx, blockedLoginPrefix+key).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to check login block: %w", err)
		}
		if ttl < 0 {
			return 0, nil
		}
		return ttl, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	e, ok := g.entries[key]
	if !ok {
		return 0, nil
	}
	if left := e.blockedUntil.Sub(now); left > 0 {
		return left, nil
	}
	if e.expired(now) {
		delete(g.entries, key)
	}
	return 0, nil
}

func (g *LoginGuard) Fail(ctx context.Context, email string) (bool, error) {
	key := audit.HashSubject(email)

	if client := redis.Client(); client != nil {
		return g.failRedis(ctx, client, key)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	g.prune(now)
	e, ok := g.entries[key]
	if !ok || now.After(e.windowEnd) {
		e = &attempts{windowEnd: now.Add(g.config.AttemptWindow)}
		g.entries[key] = e
	}
	e.count++
	if e.count < g.config.MaxAttempts {
		return false, nil
	}
	e.count = 0
	e.blockedUntil = now.Add(g.config.BlockDuration)
	if e.windowEnd.Before(e.blockedUntil) {
		e.windowEnd = e.blockedUntil
	}
	return true, nil
}

func (g *LoginGuard) failRedis(ctx context.Context, client *goredis.Client, key string) (bool, error) {
	result, err := client.Eval(ctx, incrWithTTLScript, []string{failLoginPrefix + key}, int(g.config.AttemptWindow.Seconds())).Result()
	if err != nil {
		return false, fmt.Errorf("failed to count login attempt: %w", err)
	}
	count, ok := result.(int64)
	if !ok {
		return false, errors.New("unexpected result type from Lua script")
	}
	if int(count) < g.config.MaxAttempts {
		return false, nil
	}

	pipe := client.TxPipeline()
	pipe.Set(ctx, blockedLoginPrefix+key, "1", g.config.BlockDuration)
	pipe.Del(ctx, failLoginPrefix+key)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, fmt.Errorf("failed to set login block: %w", err)
	}
	return true, nil
}

// Reset forgets the failed attempts of email after a successful login.
func (g *LoginGuard) Reset(ctx context.Context, email string) error {
	key := audit.HashSubject(email)

	if client := redis.Client(); client != nil {
		if err := client.Del(ctx, failLoginPrefix+key).Err(); err != nil {
			return fmt.Errorf("failed to clear login attempts: %w", err)
		}
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.entries, key)
	return nil
}
