package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envOf(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":9090", cfg.GRPCAddr)
	assert.Equal(t, DriverSQLite, cfg.StorageDriver)
	assert.Equal(t, "./data/shop.db", cfg.SQLitePath)
	assert.Equal(t, 2*time.Second, cfg.OutboxInterval)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.False(t, cfg.SecureCookies)
	assert.Equal(t, "shop-api", cfg.ServiceName)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"STORAGE_DRIVER":  "Postgres",
		"DATABASE_URL":    "postgres://shop@localhost/shop",
		"REDIS_ADDR":      "localhost:6379",
		"KAFKA_BROKERS":   "k1:9092,k2:9092",
		"OUTBOX_INTERVAL": "500ms",
		"SECURE_COOKIES":  "yes",
		"LOG_LEVEL":       "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.StorageDriver)
	assert.Equal(t, 500*time.Millisecond, cfg.OutboxInterval)
	assert.True(t, cfg.SecureCookies)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"postgres without url": {"STORAGE_DRIVER": "postgres"},
		"unknown driver":       {"STORAGE_DRIVER": "mysql"},
		"bad interval":         {"OUTBOX_INTERVAL": "soon"},
		"negative ttl":         {"IDEMPOTENCY_TTL": "-1m"},
		"bad bool":             {"SECURE_COOKIES": "maybe"},
		"bad level":            {"LOG_LEVEL": "loud"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(envOf(env))
			assert.Error(t, err)
		})
	}
}
