package service

import (
	"context"
	"strings"

	"github.com/tambiyash/image-lizard/internal/clock"
	"github.com/tambiyash/image-lizard/internal/config"
	"github.com/tambiyash/image-lizard/internal/profile/domain"
	"github.com/tambiyash/image-lizard/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Cfg   config.Config
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	grant int64
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("profile.service"),
		clock: p.Clock,
		grant: p.Cfg.SignupCreditGrant,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProfileRequest) (domain.Profile, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return domain.Profile{}, domain.ErrInvalidUserID
	}

	now := s.clock.Now()
	profile := domain.Profile{
		ID:        id,
		Username:  strings.TrimSpace(req.Username),
		FullName:  strings.TrimSpace(req.FullName),
		Credits:   s.grant,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &profile); err != nil {
		if db.IsDuplicateKeyErr(err) {
			// Registration hooks retry; hand back the row that won.
			existing, findErr := s.repo.FindByID(ctx, s.db, id)
			if findErr != nil {
				return domain.Profile{}, findErr
			}
			if existing != nil {
				return *existing, nil
			}
		}
		return domain.Profile{}, err
	}

	s.log.Info("profile created",
		zap.String("user_id", id),
		zap.Int64("starting_credits", s.grant),
	)
	return profile, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Profile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Profile{}, domain.ErrInvalidUserID
	}

	profile, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Profile{}, err
	}
	if profile == nil {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	return *profile, nil
}
