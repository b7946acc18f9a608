package observability

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/sitebill/internal/config"
	"github.com/smallbiznis/sitebill/internal/observability/logger"
	gormlogger "gorm.io/gorm/logger"
)

const defaultServiceName = "sitebill"

// Config is the observability view of the environment. Values from
// config.Config are used unless an OTel or logging variable overrides them.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	// DBLogLevel is the GORM statement log level (DB_LOG_LEVEL).
	DBLogLevel gormlogger.LogLevel
	// DBSlowQuery marks statements slower than this as slow (DB_SLOW_QUERY).
	DBSlowQuery time.Duration

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

func LoadConfig(app config.Config) Config {
	cfg := Config{
		ServiceName:          firstNonEmpty(os.Getenv("OTEL_SERVICE_NAME"), app.AppName, defaultServiceName),
		Environment:          firstNonEmpty(os.Getenv("DEPLOYMENT_ENV"), app.Environment),
		Version:              firstNonEmpty(os.Getenv("SERVICE_VERSION"), app.AppVersion),
		LogLevel:             strings.ToLower(firstNonEmpty(os.Getenv("LOG_LEVEL"), "info")),
		LogFormat:            strings.ToLower(firstNonEmpty(os.Getenv("LOG_FORMAT"), "json")),
		DBLogLevel:           gormlogger.Warn,
		DBSlowQuery:          logger.DefaultGormLoggerConfig().SlowThreshold,
		OtelEnabled:          parseBool(os.Getenv("OTEL_ENABLED"), false),
		OtelExporterEndpoint: firstNonEmpty(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"), app.OTLPEndpoint),
		OtelExporterProtocol: strings.ToLower(firstNonEmpty(
			os.Getenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL"),
			os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL"),
			"grpc",
		)),
		OtelSamplingRatio: 0.1,
	}

	if level, ok := logger.ParseGormLevel(os.Getenv("DB_LOG_LEVEL")); ok {
		cfg.DBLogLevel = level
	}
	if d, err := time.ParseDuration(strings.TrimSpace(os.Getenv("DB_SLOW_QUERY"))); err == nil && d >= 0 {
		cfg.DBSlowQuery = d
	}
	if ratio, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv("OTEL_SAMPLING_RATIO")), 64); err == nil {
		cfg.OtelSamplingRatio = ratio
	}
	return cfg
}

// Debug is true for debug logging or a development environment.
func (c Config) Debug() bool {
	if strings.EqualFold(strings.TrimSpace(c.LogLevel), "debug") {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func parseBool(value string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}
