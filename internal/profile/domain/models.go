package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Profile is a user account row. The id is the opaque subject issued by the
// identity provider; this service never mints identities itself.
type Profile struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"not null;default:''" json:"username"`
	FullName  string    `gorm:"column:full_name;not null;default:''" json:"full_name"`
	Credits   int64     `gorm:"not null;default:0" json:"credits"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Profile) TableName() string { return "profiles" }

type CreateProfileRequest struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

type Service interface {
	// Create registers a profile with the configured starting credit grant.
	// Creating an already-registered id returns the existing profile.
	Create(ctx context.Context, req CreateProfileRequest) (Profile, error)
	GetByID(ctx context.Context, id string) (Profile, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, profile *Profile) error
	FindByID(ctx context.Context, db *gorm.DB, id string) (*Profile, error)
	// AddCredits applies a single atomic increment and returns the new
	// balance. delta may be negative; callers guard against overdraft.
	AddCredits(ctx context.Context, db *gorm.DB, id string, delta int64, now time.Time) (int64, bool, error)
	// DeductCredits decrements the balance only when it covers credits,
	// in one statement. It returns the new balance and whether a row
	// was updated.
	DeductCredits(ctx context.Context, db *gorm.DB, id string, credits int64, now time.Time) (int64, bool, error)
}

var (
	ErrInvalidUserID   = errors.New("invalid_user_id")
	ErrProfileNotFound = errors.New("profile_not_found")
)
