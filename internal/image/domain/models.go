package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Image is one generated gallery entry. ImageURL is either a hosted URL or a
// base64 data URL, whatever the provider returned.
type Image struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    string       `gorm:"column:user_id;not null;index" json:"user_id"`
	Prompt    string       `gorm:"not null" json:"prompt"`
	Model     string       `gorm:"not null" json:"model"`
	ImageURL  string       `gorm:"column:image_url;not null" json:"image_url"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Image) TableName() string { return "images" }

type ListRequest struct {
	UserID string
	Limit  int
	Offset int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, image *Image) error
	ListByUser(ctx context.Context, db *gorm.DB, req ListRequest) ([]Image, error)
}

type Service interface {
	Save(ctx context.Context, image *Image) error
	// ListByUser returns the user's gallery newest-first.
	ListByUser(ctx context.Context, req ListRequest) ([]Image, error)
}

var ErrMissingFields = errors.New("missing_required_fields")
