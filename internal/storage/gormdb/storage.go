// Package gormdb stores players, sessions and runs in a relational database
// through GORM. PostgreSQL is the production target; SQLite serves local
// development and tests.
package gormdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/musyaffa-iman/EchoShift/internal/model"
	"github.com/musyaffa-iman/EchoShift/internal/storage"
)

// Storage is a GORM-backed implementation of the storage interface
type Storage struct {
	db *gorm.DB
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Open connects to the configured database and bootstraps the schema
func Open(cfg Config) (*Storage, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres:
		dialector = postgres.New(postgres.Config{
			DSN:                  cfg.DSN,
			PreferSimpleProtocol: true,
		})
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == DriverSQLite {
		// SQLite allows one writer; a single connection serialises transactions
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return s, nil
}

func (s *Storage) migrate() error {
	if err := s.db.AutoMigrate(&playerRecord{}, &sessionRecord{}, &runRecord{}); err != nil {
		return err
	}
	// At most one active session per player
	return s.db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_player_sessions_one_active ON player_sessions (player_id) WHERE is_active",
	).Error
}

// Ping checks the database connection
func (s *Storage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// forUpdate locks selected rows on dialects that support it. SQLite already
// serialises write transactions.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == DriverPostgres {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	err := s.db.WithContext(ctx).Create(playerToRecord(player)).Error
	if err != nil && isDuplicateKey(err) {
		return model.ErrUsernameTaken
	}
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id uuid.UUID) (*model.Player, error) {
	var rec playerRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}

func (s *Storage) GetPlayerByUsername(ctx context.Context, username string) (*model.Player, error) {
	var rec playerRecord
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&playerRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrPlayerNotFound
	}
	return nil
}

// Session operations

func (s *Storage) ReplaceActiveSessions(ctx context.Context, session *model.Session) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serialise concurrent logins of the same player on the player row.
		// A deleted player has no row to lock; the partial unique index
		// still guards the invariant.
		var owner playerRecord
		err := forUpdate(tx).Select("id").Where("id = ?", session.PlayerID).Take(&owner).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		err = tx.Model(&sessionRecord{}).
			Where("player_id = ? AND is_active = ?", session.PlayerID, true).
			Update("is_active", false).Error
		if err != nil {
			return err
		}

		return tx.Create(sessionToRecord(session)).Error
	})
}

func (s *Storage) GetActiveSession(ctx context.Context, token string) (*model.Session, error) {
	var rec sessionRecord
	err := s.db.WithContext(ctx).
		Where("session_token = ? AND is_active = ?", token, true).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}

func (s *Storage) DeactivateSession(ctx context.Context, token string) error {
	// Conditional update: only an active row flips, so concurrent logouts
	// of the same token see exactly one success
	result := s.db.WithContext(ctx).
		Model(&sessionRecord{}).
		Where("session_token = ? AND is_active = ?", token, true).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrSessionNotFound
	}
	return nil
}

func (s *Storage) DeleteInactiveSessions(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("is_active = ?", false).
		Delete(&sessionRecord{})
	return result.RowsAffected, result.Error
}

// Run operations

func (s *Storage) CreateRun(ctx context.Context, run *model.Run) error {
	return s.db.WithContext(ctx).Create(runToRecord(run)).Error
}

func (s *Storage) GetRun(ctx context.Context, id uuid.UUID) (*model.Run, error) {
	var rec runRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}

func (s *Storage) UpdateRun(ctx context.Context, id uuid.UUID, patch model.RunPatch) (*model.Run, error) {
	var updated *model.Run
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec runRecord
		err := forUpdate(tx).Where("id = ?", id).First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ErrRunNotFound
		}
		if err != nil {
			return err
		}

		run := rec.toModel()
		patch.Apply(run)

		err = tx.Model(&runRecord{}).Where("id = ?", id).Updates(map[string]any{
			"score":         run.Score,
			"time_elapsed":  run.TimeElapsed,
			"level_reached": run.LevelReached,
		}).Error
		if err != nil {
			return err
		}
		updated = run
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Storage) DeleteRun(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&runRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrRunNotFound
	}
	return nil
}

func (s *Storage) ListRunsByPlayer(ctx context.Context, playerID uuid.UUID) ([]*model.Run, error) {
	var recs []runRecord
	err := s.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("score DESC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}

	runs := make([]*model.Run, len(recs))
	for i := range recs {
		runs[i] = recs[i].toModel()
	}
	return runs, nil
}
