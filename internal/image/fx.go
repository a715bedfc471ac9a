package image

import (
	"github.com/tambiyash/image-lizard/internal/image/repository"
	"github.com/tambiyash/image-lizard/internal/image/service"
	"go.uber.org/fx"
)

var Module = fx.Module("image.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
