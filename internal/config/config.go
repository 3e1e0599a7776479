package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

// DefaultJWTSecret signs tokens when JWT_SECRET is unset. Development only.
const DefaultJWTSecret = "supersecret"

type Config struct {
	ServiceName string
	LogLevel    string
	LogFile     string
	HTTPPort    int

	// DBDriver is "postgres" or "memory" (seeded in-process store for demos).
	DBDriver       string
	DatabaseURL    string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBTimezone     string
	DBMaxOpenConns int
	MigrateOnStart bool

	RedisURL string

	JWTSecret string
	JWTTTL    time.Duration

	CORSOrigins []string

	WahaURL            string
	WahaToken          string
	N8nWebhook         string
	IntegrationTimeout time.Duration
	NotifyOnReject     bool
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.ServiceName = cast.ToString(getOrReturnDefault("SERVICE_NAME", "aurum-leasing"))
	cfg.LogLevel = cast.ToString(getOrReturnDefault("LOG_LEVEL", "info"))
	cfg.LogFile = cast.ToString(getOrReturnDefault("LOG_FILE", "./logs/app.log"))
	cfg.HTTPPort = cast.ToInt(getOrReturnDefault("HTTP_PORT", 8080))

	cfg.DBDriver = strings.ToLower(cast.ToString(getOrReturnDefault("DB_DRIVER", "postgres")))
	cfg.DatabaseURL = cast.ToString(getOrReturnDefault("DATABASE_URL", ""))
	cfg.DBHost = cast.ToString(getOrReturnDefault("DB_HOST", "localhost"))
	cfg.DBPort = cast.ToString(getOrReturnDefault("DB_PORT", "5432"))
	cfg.DBUser = cast.ToString(getOrReturnDefault("DB_USER", "postgres"))
	cfg.DBPassword = cast.ToString(getOrReturnDefault("DB_PASSWORD", "password"))
	cfg.DBName = cast.ToString(getOrReturnDefault("DB_NAME", "aurum"))
	cfg.DBSSLMode = cast.ToString(getOrReturnDefault("DB_SSLMODE", "disable"))
	cfg.DBTimezone = cast.ToString(getOrReturnDefault("DB_TIMEZONE", "UTC"))
	cfg.DBMaxOpenConns = cast.ToInt(getOrReturnDefault("DB_MAX_OPEN_CONNS", 20))
	cfg.MigrateOnStart = cast.ToBool(getOrReturnDefault("MIGRATE_ON_START", true))

	cfg.RedisURL = cast.ToString(getOrReturnDefault("REDIS_URL", ""))

	cfg.JWTSecret = cast.ToString(getOrReturnDefault("JWT_SECRET", DefaultJWTSecret))
	cfg.JWTTTL = time.Duration(cast.ToInt(getOrReturnDefault("JWT_TTL_HOURS", 72))) * time.Hour

	cfg.CORSOrigins = splitList(cast.ToString(getOrReturnDefault("CORS_ORIGINS", "")))

	cfg.WahaURL = cast.ToString(getOrReturnDefault("WAHA_URL", ""))
	cfg.WahaToken = cast.ToString(getOrReturnDefault("WAHA_TOKEN", ""))
	cfg.N8nWebhook = cast.ToString(getOrReturnDefault("N8N_WEBHOOK", ""))
	cfg.IntegrationTimeout = time.Duration(cast.ToInt(getOrReturnDefault("INTEGRATION_TIMEOUT_SECONDS", 10))) * time.Second
	cfg.NotifyOnReject = cast.ToBool(getOrReturnDefault("NOTIFY_ON_REJECT", true))

	return cfg
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN built from the DB_* parts.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode, c.DBTimezone,
	)
}

// WarnInsecureDefaults logs settings that are only safe for local development.
func (c Config) WarnInsecureDefaults() {
	if c.JWTSecret == DefaultJWTSecret {
		logrus.Warn("JWT_SECRET is not set; tokens are signed with the development default")
	}
}

func (c Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.HTTPPort)
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
