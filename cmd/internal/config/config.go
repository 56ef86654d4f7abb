package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

type Config struct {
	AppEnv       string
	Port         string
	DatabasePath string
	LogLevel     log.Lvl

	JWTSecret    string
	JWTExpiresIn time.Duration

	ClinicLocation *time.Location

	SuperAdminEmail    string
	SuperAdminPassword string

	SESEnabled    bool
	AWSRegion     string
	EmailFrom     string
	NotifyTimeout time.Duration

	RateLimitMax    int
	RateLimitWindow time.Duration
}

var ErrMissingSecret = errors.New("JWT_SECRET must be set")

// Load reads the process configuration from the environment, optionally
// seeded from a .env file. A missing signing key is the only fatal error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn("no .env file found, relying on environment variables")
	}

	loc, err := time.LoadLocation(getEnv("CLINIC_TIMEZONE", "UTC"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "production"),
		Port:               getEnv("PORT", "6060"),
		DatabasePath:       getEnv("DATABASE_PATH", "./database.db"),
		LogLevel:           parseLevel(getEnv("LOG_LEVEL", "INFO")),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTExpiresIn:       getDuration("JWT_EXPIRES_IN", 24*time.Hour),
		ClinicLocation:     loc,
		SuperAdminEmail:    os.Getenv("SUPERADMIN_EMAIL"),
		SuperAdminPassword: os.Getenv("SUPERADMIN_PASSWORD"),
		SESEnabled:         getBool("SES_ENABLED", false),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		EmailFrom:          os.Getenv("EMAIL_FROM"),
		NotifyTimeout:      getDuration("NOTIFY_TIMEOUT", 10*time.Second),
		RateLimitMax:       getInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow:    getDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Warnf("invalid duration for %s (%q), using %s", key, v, fallback)
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warnf("invalid integer for %s (%q), using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func parseLevel(s string) log.Lvl {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return log.DEBUG
	case "WARN":
		return log.WARN
	case "ERROR":
		return log.ERROR
	case "OFF":
		return log.OFF
	default:
		return log.INFO
	}
}
