// Package ratelimit throttles the public authentication endpoints: a
// Redis-backed failed-login counter per email and an in-process token bucket
// per client IP.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrRateLimited      = errors.New("rate limited")
	ErrRedisUnavailable = errors.New("redis unavailable")
)

const loginKeyPrefix = "todo:login:"

// LoginConfig tunes the failed-login throttle.
type LoginConfig struct {
	MaxAttempts int
	Cooldown    time.Duration
}

// LoginLimiter counts failed logins per email in fixed windows. A nil
// client or a non-positive MaxAttempts disables it.
type LoginLimiter struct {
	redis  redis.UniversalClient
	config LoginConfig
}

// NewLoginLimiter creates a limiter backed by the given Redis client.
func NewLoginLimiter(client redis.UniversalClient, cfg LoginConfig) *LoginLimiter {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 5 * time.Minute
	}
	return &LoginLimiter{redis: client, config: cfg}
}

func (l *LoginLimiter) enabled() bool {
	return l != nil && l.redis != nil && l.config.MaxAttempts > 0
}

// Check returns ErrRateLimited once the email has used up its failure budget.
func (l *LoginLimiter) Check(ctx context.Context, email string) error {
	if !l.enabled() {
		return nil
	}
	count, err := l.redis.Get(ctx, loginKey(email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count >= int64(l.config.MaxAttempts) {
		return ErrRateLimited
	}
	return nil
}

// RecordFailure counts a failed attempt, starting the window on the first one.
func (l *LoginLimiter) RecordFailure(ctx context.Context, email string) error {
	if !l.enabled() {
		return nil
	}
	key := loginKey(email)
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Cooldown).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	return nil
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	if !l.enabled() {
		return nil
	}
	if err := l.redis.Del(ctx, loginKey(email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func loginKey(email string) string {
	return loginKeyPrefix + strings.ToLower(strings.TrimSpace(email))
}
