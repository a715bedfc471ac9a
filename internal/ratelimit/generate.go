package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/tambiyash/image-lizard/internal/config"
	"go.uber.org/fx"
)

const (
	keyGenerateUser = "ratelimit:generate:%s"
	keyGenerateLock = "generation:lock:%s"

	generateLockTTL = 2 * time.Minute
)

// Module provides the generate-endpoint limiter. Disabled without redis or
// with GENERATE_RATE_PER_MINUTE=0.
var Module = fx.Module("ratelimit",
	fx.Provide(NewGenerateLimiter),
)

// GenerateLimiter caps how often a user can start a generation and
// single-flights in-progress renders per user.
type GenerateLimiter struct {
	enabled bool

	bucket *TokenBucket
	locker *Locker

	rate  float64
	burst int
}

func NewGenerateLimiter(cfg config.Config, client *redis.Client) *GenerateLimiter {
	if client == nil || cfg.GenerateRatePerMinute <= 0 {
		return nil
	}
	perMinute := cfg.GenerateRatePerMinute
	return &GenerateLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		locker:  NewLocker(client),
		rate:    float64(perMinute) / 60,
		burst:   perMinute,
	}
}

func (l *GenerateLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *GenerateLimiter) Allow(ctx context.Context, userID string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyGenerateUser, strings.TrimSpace(userID)), l.rate, l.burst)
}

// TryLockUser claims the user's single in-flight generation slot. The token
// must be handed back to ReleaseUser when the render finishes.
func (l *GenerateLimiter) TryLockUser(ctx context.Context, userID string) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.locker.TryLock(ctx, fmt.Sprintf(keyGenerateLock, strings.TrimSpace(userID)), generateLockTTL)
}

func (l *GenerateLimiter) ReleaseUser(ctx context.Context, userID, token string) error {
	if !l.Enabled() {
		return nil
	}
	return l.locker.Release(ctx, fmt.Sprintf(keyGenerateLock, strings.TrimSpace(userID)), token)
}
