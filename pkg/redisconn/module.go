package redisconn

import (
	"context"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/tambiyash/image-lizard/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides a shared redis client. The client is nil when REDIS_ADDR is
// unset; consumers fall back to in-process implementations.
var Module = fx.Module("redis",
	fx.Provide(New),
	fx.Invoke(register),
)

func New(cfg config.Config) *redis.Client {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})
}

func register(lc fx.Lifecycle, log *zap.Logger, client *redis.Client) {
	if client == nil {
		log.Info("redis not configured, using in-memory fallbacks")
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return err
			}
			log.Info("redis connected", zap.String("addr", client.Options().Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}
