package repository

import (
	"context"
	"time"

	"github.com/tambiyash/image-lizard/internal/profile/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, profile *domain.Profile) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO profiles (id, username, full_name, credits, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		profile.ID,
		profile.Username,
		profile.FullName,
		profile.Credits,
		profile.CreatedAt,
		profile.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id string) (*domain.Profile, error) {
	var profile domain.Profile
	err := db.WithContext(ctx).Raw(
		`SELECT id, username, full_name, credits, created_at, updated_at
		 FROM profiles WHERE id = ?`,
		id,
	).Scan(&profile).Error
	if err != nil {
		return nil, err
	}
	if profile.ID == "" {
		return nil, nil
	}
	return &profile, nil
}

func (r *repo) AddCredits(ctx context.Context, db *gorm.DB, id string, delta int64, now time.Time) (int64, bool, error) {
	var balance int64
	result := db.WithContext(ctx).Raw(
		`UPDATE profiles SET credits = credits + ?, updated_at = ?
		 WHERE id = ?
		 RETURNING credits`,
		delta,
		now,
		id,
	).Scan(&balance)
	if result.Error != nil {
		return 0, false, result.Error
	}
	return balance, result.RowsAffected > 0, nil
}

func (r *repo) DeductCredits(ctx context.Context, db *gorm.DB, id string, credits int64, now time.Time) (int64, bool, error) {
	var balance int64
	result := db.WithContext(ctx).Raw(
		`UPDATE profiles SET credits = credits - ?, updated_at = ?
		 WHERE id = ? AND credits >= ?
		 RETURNING credits`,
		credits,
		now,
		id,
		credits,
	).Scan(&balance)
	if result.Error != nil {
		return 0, false, result.Error
	}
	return balance, result.RowsAffected > 0, nil
}
