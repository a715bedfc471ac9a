package repository

import (
	"context"

	"github.com/tambiyash/image-lizard/internal/image/domain"
	"gorm.io/gorm"
)

const defaultListLimit = 100

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, image *domain.Image) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO images (id, user_id, prompt, model, image_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		image.ID,
		image.UserID,
		image.Prompt,
		image.Model,
		image.ImageURL,
		image.CreatedAt,
	).Error
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, req domain.ListRequest) ([]domain.Image, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	var images []domain.Image
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, prompt, model, image_url, created_at
		 FROM images WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		req.UserID,
		limit,
		offset,
	).Scan(&images).Error
	if err != nil {
		return nil, err
	}
	return images, nil
}
