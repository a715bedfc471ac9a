package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/tambiyash/image-lizard/internal/clock"
	"github.com/tambiyash/image-lizard/internal/image/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("image.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Save(ctx context.Context, image *domain.Image) error {
	if image == nil || strings.TrimSpace(image.UserID) == "" || strings.TrimSpace(image.ImageURL) == "" {
		return domain.ErrMissingFields
	}
	if image.ID == 0 {
		image.ID = s.genID.Generate()
	}
	if image.CreatedAt.IsZero() {
		image.CreatedAt = s.clock.Now()
	}
	return s.repo.Insert(ctx, s.db, image)
}

func (s *Service) ListByUser(ctx context.Context, req domain.ListRequest) ([]domain.Image, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		return nil, domain.ErrMissingFields
	}
	return s.repo.ListByUser(ctx, s.db, req)
}
