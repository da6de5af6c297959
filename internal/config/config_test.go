package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musyaffa-iman/EchoShift/internal/factory"
	"github.com/musyaffa-iman/EchoShift/internal/storage/gormdb"
)

// missingEnvFile keeps Load from picking up a .env in the package directory
func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "memory", cfg.StorageType)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, time.Duration(0), cfg.SessionTTL)
	assert.Equal(t, time.Hour, cfg.SessionCleanupInterval)
	assert.False(t, cfg.EnforceRunUpdateOwnership)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STORAGE_TYPE", "redis")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("SESSION_TTL", "12h")
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("RUNS_ENFORCE_UPDATE_OWNERSHIP", "true")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 0.5, cfg.RateLimitRPS)
	assert.True(t, cfg.EnforceRunUpdateOwnership)

	fc := cfg.Factory(nil)
	require.NotNil(t, fc.RedisConfig)
	assert.Equal(t, "redis://cache:6379/1", fc.RedisConfig.URL)
	assert.Equal(t, 12*time.Hour, fc.AuthConfig.SessionTTL)
	assert.True(t, fc.RunsConfig.EnforceUpdateOwnership)
}

func TestLoadFromDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("STORAGE_TYPE=sqlite\nSQLITE_PATH=/tmp/es.db\nHTTP_PORT=7000\n"), 0o600))
	// Register for cleanup; godotenv sets variables on the process
	t.Setenv("STORAGE_TYPE", "")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("HTTP_PORT", "")
	os.Unsetenv("STORAGE_TYPE")
	os.Unsetenv("SQLITE_PATH")
	os.Unsetenv("HTTP_PORT")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.StorageType)
	assert.Equal(t, 7000, cfg.HTTPPort)

	fc := cfg.Factory(nil)
	require.NotNil(t, fc.DatabaseConfig)
	assert.Equal(t, "/tmp/es.db", fc.DatabaseConfig.DSN)
}

func TestEnvironmentWinsOverDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_PORT=7000\n"), 0o600))
	t.Setenv("HTTP_PORT", "7100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7100, cfg.HTTPPort)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-number")
	_, err := Load(missingEnvFile(t))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		HTTPPort:    8080,
		LogLevel:    "info",
		LogFormat:   "json",
		StorageType: factory.StorageTypeMemory,
		BcryptCost:  10,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"redis without url", func(c *Config) { c.StorageType = "redis" }},
		{"postgres without url", func(c *Config) { c.StorageType = "postgres" }},
		{"unknown storage", func(c *Config) { c.StorageType = "mongo" }},
		{"bad port", func(c *Config) { c.HTTPPort = 70000 }},
		{"bcrypt cost too low", func(c *Config) { c.BcryptCost = 1 }},
		{"negative ttl", func(c *Config) { c.SessionTTL = -time.Second }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestFactoryPostgres(t *testing.T) {
	cfg := Config{StorageType: factory.StorageTypePostgres, DatabaseURL: "postgres://u:p@db/echoshift"}

	fc := cfg.Factory(nil)
	require.NotNil(t, fc.DatabaseConfig)
	assert.Equal(t, "postgres://u:p@db/echoshift", fc.DatabaseConfig.DSN)
	assert.Equal(t, gormdb.DefaultConfig().MaxOpenConns, fc.DatabaseConfig.MaxOpenConns)
	assert.Nil(t, fc.RedisConfig)
}

func TestLoggerHonoursLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Config{LogLevel: "warn", LogFormat: "text"}.Logger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", slog.String("k", "v"))

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "k=v")
}

func TestServerAndRateLimit(t *testing.T) {
	cfg := Config{HTTPHost: "127.0.0.1", HTTPPort: 9000, RateLimitRPS: 2, RateLimitBurst: 4}

	assert.Equal(t, "127.0.0.1", cfg.Server().Host)
	assert.Equal(t, 9000, cfg.Server().Port)
	assert.Equal(t, 2.0, cfg.RateLimit().RPS)
	assert.Equal(t, 4, cfg.RateLimit().Burst)
}
