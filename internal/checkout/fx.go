package checkout

import (
	redis "github.com/redis/go-redis/v9"
	"github.com/tambiyash/image-lizard/internal/checkout/domain"
	"github.com/tambiyash/image-lizard/internal/checkout/service"
	"github.com/tambiyash/image-lizard/internal/checkout/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("checkout.service",
	fx.Provide(provideStore),
	fx.Provide(service.New),
)

func provideStore(client *redis.Client, log *zap.Logger) domain.SessionStore {
	if client == nil {
		log.Named("checkout").Info("session store running in memory")
		return store.NewMemoryStore()
	}
	return store.NewRedisStore(client)
}
