package generation

import (
	"github.com/tambiyash/image-lizard/internal/config"
	"github.com/tambiyash/image-lizard/internal/generation/domain"
	"github.com/tambiyash/image-lizard/internal/generation/providers"
	"github.com/tambiyash/image-lizard/internal/generation/providers/fal"
	"github.com/tambiyash/image-lizard/internal/generation/providers/mock"
	"github.com/tambiyash/image-lizard/internal/generation/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("generation.service",
	fx.Provide(provideRegistry),
	fx.Provide(provideProvider),
	fx.Provide(service.New),
)

func provideRegistry(cfg config.Config) *providers.Registry {
	return providers.NewRegistry(
		fal.New(cfg),
		mock.New(),
	)
}

func provideProvider(registry *providers.Registry, cfg config.Config, log *zap.Logger) (domain.Provider, error) {
	provider, err := registry.Get(cfg.GenerationProvider)
	if err != nil {
		return nil, err
	}
	log.Named("generation").Info("image provider selected", zap.String("provider", provider.Name()))
	return provider, nil
}
