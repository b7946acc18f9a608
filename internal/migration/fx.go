package migration

import (
	"github.com/smallbiznis/sitebill/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module applies pending migrations when the application starts.
var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		if err := RunMigrations(sqlDB, cfg.DBType); err != nil {
			return err
		}

		version, _, err := CurrentVersion(sqlDB, cfg.DBType)
		if err != nil {
			return err
		}
		log.Info("schema migrated", zap.String("db_type", cfg.DBType), zap.Uint("version", version))
		return nil
	}),
)
