// Package dbtest opens migrated SQLite databases for package tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/smallbiznis/sitebill/internal/config"
	"github.com/smallbiznis/sitebill/internal/migration"
	obslogger "github.com/smallbiznis/sitebill/internal/observability/logger"
	"github.com/smallbiznis/sitebill/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Open returns a database at the latest schema version. It is closed when
// the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	conn, err := db.Open(config.Config{
		DBType:        db.TypeSQLite,
		DBName:        "test",
		DBPath:        filepath.Join(t.TempDir(), "sitebill.db"),
		DBMaxOpenConn: 1,
	}, quietGormLogger())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migration.RunMigrations(sqlDB, db.TypeSQLite); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return conn
}

func quietGormLogger() obslogger.GormLoggerConfig {
	cfg := obslogger.DefaultGormLoggerConfig()
	cfg.Base = zap.NewNop()
	return cfg
}
