package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReadsDatabaseSettings(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_TYPE", "SQLite")
	t.Setenv("DATABASE_PATH", "/tmp/x.db")
	t.Setenv("DATABASE_MAX_OPEN_CONN", "not-a-number")
	t.Setenv("ENVIRONMENT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, 20, cfg.DBMaxOpenConn)
	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.IsSQLite())
	assert.False(t, cfg.IsProduction())
}

func TestLoadRejectsUnknownDatabase(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_TYPE", "oracle")

	_, err := Load()
	assert.ErrorIs(t, err, ErrUnsupportedDatabase)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"postgres", Config{DBType: "postgres", DBMaxIdleConn: 5, DBMaxOpenConn: 20}, nil},
		{"sqlite3 with path", Config{DBType: "sqlite3", DBPath: "a.db"}, nil},
		{"sqlite without path", Config{DBType: "sqlite", DBPath: "  "}, ErrMissingDatabasePath},
		{"empty type", Config{}, ErrUnsupportedDatabase},
		{"negative pool", Config{DBType: "mysql", DBMaxOpenConn: -1}, ErrInvalidPoolSize},
		{"idle above open", Config{DBType: "mysql", DBMaxIdleConn: 10, DBMaxOpenConn: 2}, ErrInvalidPoolSize},
		{"unbounded open", Config{DBType: "mysql", DBMaxIdleConn: 10}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestIsProduction(t *testing.T) {
	assert.True(t, Config{Environment: " Production "}.IsProduction())
	assert.False(t, Config{Environment: "staging"}.IsProduction())
}
