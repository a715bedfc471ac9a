package profile

import (
	"github.com/tambiyash/image-lizard/internal/profile/repository"
	"github.com/tambiyash/image-lizard/internal/profile/service"
	"go.uber.org/fx"
)

var Module = fx.Module("profile.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
