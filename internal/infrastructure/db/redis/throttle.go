package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	throttleWindow   = 15 * time.Minute
	throttleAttempts = 10
)

// LoginThrottle caps login attempts per email using fixed-window counters in
// Redis. Key format: login_attempts:<email>. The throttle fails open: a Redis
// error never blocks a login.
type LoginThrottle struct {
	client *redis.Client
}

// NewLoginThrottle creates a LoginThrottle wrapping the given Redis client.
func NewLoginThrottle(client *redis.Client) *LoginThrottle {
	return &LoginThrottle{client: client}
}

// Allow reports whether another login attempt for email may proceed, counting
// this attempt. The window starts with the first attempt and expires
// throttleWindow later regardless of further attempts.
func (t *LoginThrottle) Allow(ctx context.Context, email string) (bool, error) {
	key := t.key(email)

	n, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return true, fmt.Errorf("throttle incr: %w", err)
	}
	if n == 1 {
		// First attempt in this window; arm the expiry.
		if err := t.client.Expire(ctx, key, throttleWindow).Err(); err != nil {
			return true, fmt.Errorf("throttle expire: %w", err)
		}
	}

	return n <= throttleAttempts, nil
}

func (t *LoginThrottle) key(email string) string {
	return "login_attempts:" + email
}
