// Package config loads the shop configuration from the environment. A .env
// file in the working directory is read first when present; real
// environment variables win over it.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/jcmexdev/shop-checkout/internal/pkg/telemetry"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	HTTPAddr       string
	GRPCAddr       string
	StorageDriver  string
	SQLitePath     string
	DatabaseURL    string
	RedisAddr      string
	KafkaBrokers   string
	OutboxInterval time.Duration
	IdempotencyTTL time.Duration
	SecureCookies  bool
	ServiceName    string
	OTLPEndpoint   string
	LogLevel       slog.Level
}

// Load reads .env (if any) and the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: read .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, applying defaults.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		HTTPAddr:      get("HTTP_ADDR", ":8080"),
		GRPCAddr:      get("GRPC_ADDR", ":9090"),
		StorageDriver: strings.ToLower(get("STORAGE_DRIVER", DriverSQLite)),
		SQLitePath:    get("SQLITE_PATH", "./data/shop.db"),
		DatabaseURL:   get("DATABASE_URL", ""),
		RedisAddr:     get("REDIS_ADDR", ""),
		KafkaBrokers:  get("KAFKA_BROKERS", ""),
		ServiceName:   get("OTEL_SERVICE_NAME", "shop-api"),
		OTLPEndpoint:  get("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	var err error
	if cfg.OutboxInterval, err = time.ParseDuration(get("OUTBOX_INTERVAL", "2s")); err != nil || cfg.OutboxInterval <= 0 {
		return Config{}, fmt.Errorf("config: OUTBOX_INTERVAL must be a positive duration")
	}
	if cfg.IdempotencyTTL, err = time.ParseDuration(get("IDEMPOTENCY_TTL", "24h")); err != nil || cfg.IdempotencyTTL <= 0 {
		return Config{}, fmt.Errorf("config: IDEMPOTENCY_TTL must be a positive duration")
	}

	switch v := strings.ToLower(get("SECURE_COOKIES", "false")); v {
	case "1", "true", "yes":
		cfg.SecureCookies = true
	case "0", "false", "no":
	default:
		return Config{}, fmt.Errorf("config: SECURE_COOKIES: invalid boolean %q", v)
	}

	level, ok := telemetry.ParseLevel(get("LOG_LEVEL", "info"))
	if !ok {
		return Config{}, fmt.Errorf("config: LOG_LEVEL: unknown level %q", getenv("LOG_LEVEL"))
	}
	cfg.LogLevel = level

	switch cfg.StorageDriver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("config: DATABASE_URL is required for the postgres driver")
		}
	default:
		return Config{}, fmt.Errorf("config: STORAGE_DRIVER: unknown driver %q", cfg.StorageDriver)
	}
	return cfg, nil
}
