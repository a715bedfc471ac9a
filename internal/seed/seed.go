package seed

import (
	"context"
	"errors"
	"time"

	profiledomain "github.com/tambiyash/image-lizard/internal/profile/domain"
	"gorm.io/gorm"
)

const (
	demoProfileID = "demo-user"
	demoUsername  = "demo"
	demoFullName  = "Demo Lizard"
)

// EnsureDemoProfile seeds a demo profile so a fresh development database is
// usable without a signup flow. Safe to run on every boot; an existing
// profile is left untouched, whatever its balance.
func EnsureDemoProfile(db *gorm.DB, startingCredits int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing profiledomain.Profile
		err := tx.WithContext(ctx).
			Where("id = ?", demoProfileID).
			First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		return tx.WithContext(ctx).Create(&profiledomain.Profile{
			ID:        demoProfileID,
			Username:  demoUsername,
			FullName:  demoFullName,
			Credits:   startingCredits,
			CreatedAt: now,
			UpdatedAt: now,
		}).Error
	})
}
