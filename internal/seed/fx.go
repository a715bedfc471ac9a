package seed

import (
	"github.com/tambiyash/image-lizard/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module seeds development fixtures at boot. Production skips it.
var Module = fx.Module("seed", fx.Invoke(run))

func run(cfg config.Config, db *gorm.DB, log *zap.Logger) error {
	if cfg.IsProduction() {
		return nil
	}
	if err := EnsureDemoProfile(db, cfg.SignupCreditGrant); err != nil {
		return err
	}
	log.Info("demo profile ready", zap.String("profile_id", demoProfileID))
	return nil
}
