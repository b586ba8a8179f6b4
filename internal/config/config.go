package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr          = ":8080"
	defaultDatabaseURL       = "deptbook.db"
	defaultJWTSecret         = "change-me-jwt-secret"
	defaultJWTAccessTTL      = "12h"
	defaultTxMaxAttempts     = "3"
	defaultTxRetryBackoff    = "25ms"
	defaultAuditBuffer       = "256"
	defaultStatusRefresh     = "30s"
	defaultTimezone          = "Asia/Seoul"
	defaultTimelineStartHour = "9"
	defaultTimelineEndHour   = "23"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string
	RedisURL    string
	LogFile     string
	SeedFile    string

	JWTSecret    string
	JWTAccessTTL time.Duration

	TxMaxAttempts  int
	TxRetryBackoff time.Duration
	AuditBuffer    int

	StatusRefreshInterval time.Duration
	Location              *time.Location
	TimelineStartHour     int
	TimelineEndHour       int

	CORSAllowedOrigins []string
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.LogFile = strings.TrimSpace(os.Getenv("LOG_FILE"))
	cfg.SeedFile = strings.TrimSpace(os.Getenv("SEED_FILE"))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.CORSAllowedOrigins = parseListEnv("CORS_ALLOWED_ORIGINS")

	var err error
	if cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL); err != nil {
		return nil, err
	}
	if cfg.TxMaxAttempts, err = parseIntEnv("BOOKING_TX_MAX_ATTEMPTS", defaultTxMaxAttempts); err != nil {
		return nil, err
	}
	if cfg.TxRetryBackoff, err = parseDurationEnv("BOOKING_TX_RETRY_BACKOFF", defaultTxRetryBackoff); err != nil {
		return nil, err
	}
	if cfg.AuditBuffer, err = parseIntEnv("AUDIT_BUFFER", defaultAuditBuffer); err != nil {
		return nil, err
	}
	if cfg.StatusRefreshInterval, err = parseDurationEnv("STATUS_REFRESH_INTERVAL", defaultStatusRefresh); err != nil {
		return nil, err
	}
	if cfg.TimelineStartHour, err = parseIntEnv("TIMELINE_START_HOUR", defaultTimelineStartHour); err != nil {
		return nil, err
	}
	if cfg.TimelineEndHour, err = parseIntEnv("TIMELINE_END_HOUR", defaultTimelineEndHour); err != nil {
		return nil, err
	}

	tz := strings.TrimSpace(getEnv("APP_TIMEZONE", defaultTimezone))
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE value %q: %w", tz, err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("config: env=%s addr=%s redis=%t tz=%s", cfg.AppEnv, cfg.HTTPAddr, cfg.RedisURL != "", cfg.Location)

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.TxMaxAttempts < 1 {
		return fmt.Errorf("BOOKING_TX_MAX_ATTEMPTS must be >= 1")
	}
	if cfg.TxRetryBackoff < 0 {
		return fmt.Errorf("BOOKING_TX_RETRY_BACKOFF must be >= 0")
	}
	if cfg.AuditBuffer < 1 {
		return fmt.Errorf("AUDIT_BUFFER must be >= 1")
	}
	if cfg.StatusRefreshInterval <= 0 {
		return fmt.Errorf("STATUS_REFRESH_INTERVAL must be > 0")
	}
	if cfg.TimelineStartHour < 0 || cfg.TimelineEndHour > 24 || cfg.TimelineStartHour >= cfg.TimelineEndHour {
		return fmt.Errorf("TIMELINE_START_HOUR and TIMELINE_END_HOUR must satisfy 0 <= start < end <= 24")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseListEnv(name string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(name), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
