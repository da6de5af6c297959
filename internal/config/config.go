package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/musyaffa-iman/EchoShift/internal/api"
	"github.com/musyaffa-iman/EchoShift/internal/factory"
	"github.com/musyaffa-iman/EchoShift/internal/services/auth"
	"github.com/musyaffa-iman/EchoShift/internal/services/runs"
	"github.com/musyaffa-iman/EchoShift/internal/storage/gormdb"
	redisstorage "github.com/musyaffa-iman/EchoShift/internal/storage/redis"
)

// Config is the server configuration read from the environment
type Config struct {
	HTTPHost string `env:"HTTP_HOST"`
	HTTPPort int    `env:"HTTP_PORT" envDefault:"8080"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL"`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"echoshift.db"`
	DBDebug     bool   `env:"DB_DEBUG"`

	BcryptCost             int           `env:"BCRYPT_COST" envDefault:"10"`
	SessionTTL             time.Duration `env:"SESSION_TTL"`
	SessionCleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"1h"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`

	EnforceRunUpdateOwnership bool `env:"RUNS_ENFORCE_UPDATE_OWNERSHIP"`
}

// Load reads an optional .env file and then the environment. Variables
// already set in the environment win over the file.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks combinations that env tags cannot express
func (c Config) Validate() error {
	var errs []error

	switch c.StorageType {
	case factory.StorageTypeMemory:
	case factory.StorageTypeRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL required when STORAGE_TYPE=redis"))
		}
	case factory.StorageTypePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL required when STORAGE_TYPE=postgres"))
		}
	case factory.StorageTypeSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH required when STORAGE_TYPE=sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid STORAGE_TYPE %q: must be memory, redis, postgres or sqlite", c.StorageType))
	}

	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d", c.HTTPPort))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.SessionTTL < 0 {
		errs = append(errs, errors.New("SESSION_TTL must not be negative"))
	}
	if c.SessionCleanupInterval < 0 {
		errs = append(errs, errors.New("SESSION_CLEANUP_INTERVAL must not be negative"))
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative"))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("invalid LOG_FORMAT %q: must be json or text", c.LogFormat))
	}

	return errors.Join(errs...)
}

// Logger builds the application logger writing to w
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.LogLevel)
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// Factory maps the configuration onto factory.Config
func (c Config) Factory(logger *slog.Logger) factory.Config {
	cfg := factory.Config{
		Logger:      logger,
		StorageType: c.StorageType,
		AuthConfig: auth.Config{
			BcryptCost: c.BcryptCost,
			SessionTTL: c.SessionTTL,
		},
		RunsConfig: runs.Config{
			EnforceUpdateOwnership: c.EnforceRunUpdateOwnership,
		},
	}

	switch c.StorageType {
	case factory.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		cfg.RedisConfig = &redisCfg
	case factory.StorageTypePostgres:
		dbCfg := gormdb.DefaultConfig()
		dbCfg.DSN = c.DatabaseURL
		dbCfg.Debug = c.DBDebug
		cfg.DatabaseConfig = &dbCfg
	case factory.StorageTypeSQLite:
		dbCfg := gormdb.DefaultConfig()
		dbCfg.DSN = c.SQLitePath
		dbCfg.Debug = c.DBDebug
		cfg.DatabaseConfig = &dbCfg
	}
	return cfg
}

// Server maps the configuration onto api.ServerConfig
func (c Config) Server() api.ServerConfig {
	cfg := api.DefaultServerConfig()
	cfg.Host = c.HTTPHost
	cfg.Port = c.HTTPPort
	return cfg
}

// RateLimit maps the configuration onto api.RateLimitConfig
func (c Config) RateLimit() api.RateLimitConfig {
	return api.RateLimitConfig{RPS: c.RateLimitRPS, Burst: c.RateLimitBurst}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
	return level, nil
}
