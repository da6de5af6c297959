package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/musyaffa-iman/EchoShift/internal/dependencies/clock"
	"github.com/musyaffa-iman/EchoShift/internal/dependencies/random"
	"github.com/musyaffa-iman/EchoShift/internal/services/auth"
	"github.com/musyaffa-iman/EchoShift/internal/services/runs"
	"github.com/musyaffa-iman/EchoShift/internal/storage"
	"github.com/musyaffa-iman/EchoShift/internal/storage/gormdb"
	"github.com/musyaffa-iman/EchoShift/internal/storage/memory"
	redisstorage "github.com/musyaffa-iman/EchoShift/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
	StorageTypeSQLite   = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	AuthService *auth.Service
	RunService  *runs.Service
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If BcryptCost is zero, bcrypt.DefaultCost is used
	AuthConfig auth.Config
	// RunsConfig holds configuration for the run service (optional)
	RunsConfig runs.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis", "postgres" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// DatabaseConfig holds relational settings (required if StorageType is "postgres" or "sqlite").
	// Its Driver is set from StorageType.
	DatabaseConfig *gormdb.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("storage ready", slog.String("type", storageType(cfg)))

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, cfg.AuthConfig, cfg.RunsConfig, logger), nil
}

func storageType(cfg Config) string {
	if cfg.StorageType == "" {
		return StorageTypeMemory
	}
	return cfg.StorageType
}

// newStorage creates the storage backend selected by cfg
func newStorage(cfg Config) (storage.Storage, error) {
	switch storageType(cfg) {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypePostgres, StorageTypeSQLite:
		if cfg.DatabaseConfig == nil {
			return nil, fmt.Errorf("DatabaseConfig required when StorageType is %s", cfg.StorageType)
		}
		dbCfg := *cfg.DatabaseConfig
		dbCfg.Driver = cfg.StorageType
		return gormdb.Open(dbCfg)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis', 'postgres' or 'sqlite'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, authCfg auth.Config, runsCfg runs.Config, logger *slog.Logger) *App {
	// Create services
	authService := auth.New(store, clk, rnd, authCfg, logger)
	runService := runs.New(store, authService, clk, rnd, runsCfg, logger)

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		AuthService: authService,
		RunService:  runService,
	}
}
