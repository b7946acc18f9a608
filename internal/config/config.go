package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration read from the environment.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	OTLPEndpoint string

	// DBType is one of postgres, mysql, sqlite (pure Go) or sqlite3 (cgo).
	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
	// DBPath is the database file for the SQLite types.
	DBPath string

	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int // seconds
	DBConnMaxIdleTime int // seconds
	DBMetricsPort     int

	UnitsConfigPath string
}

var (
	ErrUnsupportedDatabase = errors.New("unsupported_database_type")
	ErrMissingDatabasePath = errors.New("missing_database_path")
	ErrInvalidPoolSize     = errors.New("invalid_pool_size")
)

var databaseTypes = map[string]bool{"postgres": true, "mysql": true, "sqlite": true, "sqlite3": true}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	env := envReader{}
	cfg := Config{
		AppName:           env.str("APP_SERVICE", "sitebill"),
		AppVersion:        env.str("APP_VERSION", "0.1.0"),
		Environment:       env.str("ENVIRONMENT", "development"),
		OTLPEndpoint:      env.str("OTLP_ENDPOINT", "localhost:4317"),
		DBType:            strings.ToLower(env.str("DATABASE_TYPE", "postgres")),
		DBHost:            env.str("DATABASE_HOST", "localhost"),
		DBPort:            env.str("DATABASE_PORT", "5432"),
		DBName:            env.str("DATABASE_NAME", "sitebill"),
		DBUser:            env.str("DATABASE_USER", "postgres"),
		DBPassword:        os.Getenv("DATABASE_PASSWORD"),
		DBSSLMode:         env.str("DATABASE_SSLMODE", "disable"),
		DBPath:            env.str("DATABASE_PATH", "sitebill.db"),
		DBMaxIdleConn:     env.int("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     env.int("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: env.int("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: env.int("DATABASE_CONN_MAX_IDLE_TIME", 60),
		DBMetricsPort:     env.int("DATABASE_METRICS_PORT", 0),
		UnitsConfigPath:   env.str("UNITS_CONFIG_PATH", ""),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the database settings before any connection is opened.
func (c Config) Validate() error {
	if !databaseTypes[c.DBType] {
		return fmt.Errorf("%w: %q", ErrUnsupportedDatabase, c.DBType)
	}
	if c.IsSQLite() && strings.TrimSpace(c.DBPath) == "" {
		return ErrMissingDatabasePath
	}
	if c.DBMaxIdleConn < 0 || c.DBMaxOpenConn < 0 {
		return ErrInvalidPoolSize
	}
	if c.DBMaxOpenConn > 0 && c.DBMaxIdleConn > c.DBMaxOpenConn {
		return fmt.Errorf("%w: idle %d exceeds open %d", ErrInvalidPoolSize, c.DBMaxIdleConn, c.DBMaxOpenConn)
	}
	return nil
}

func (c Config) IsSQLite() bool {
	return c.DBType == "sqlite" || c.DBType == "sqlite3"
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

// envReader falls back to the default for unset, blank or unparsable values.
type envReader struct{}

func (envReader) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (envReader) int(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}
