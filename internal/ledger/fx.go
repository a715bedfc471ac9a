package ledger

import (
	"github.com/tambiyash/image-lizard/internal/ledger/repository"
	"github.com/tambiyash/image-lizard/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
