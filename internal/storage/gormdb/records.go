package gormdb

import (
	"time"

	"github.com/google/uuid"

	"github.com/musyaffa-iman/EchoShift/internal/model"
)

// Table rows. Columns carry no database defaults so that zero values
// (inactive sessions, zero scores) are written as given.

type playerRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"size:50;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Experience   int       `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (playerRecord) TableName() string { return "players" }

func playerToRecord(p *model.Player) *playerRecord {
	return &playerRecord{
		ID:           p.ID,
		Username:     p.Username,
		PasswordHash: p.PasswordHash,
		Experience:   p.Experience,
		CreatedAt:    p.CreatedAt,
	}
}

func (r *playerRecord) toModel() *model.Player {
	return &model.Player{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		Experience:   r.Experience,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

type sessionRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionToken string    `gorm:"not null;uniqueIndex"`
	PlayerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	IsActive     bool      `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (sessionRecord) TableName() string { return "player_sessions" }

func sessionToRecord(s *model.Session) *sessionRecord {
	return &sessionRecord{
		ID:           s.ID,
		SessionToken: s.Token,
		PlayerID:     s.PlayerID,
		IsActive:     s.IsActive,
		CreatedAt:    s.CreatedAt,
	}
}

func (r *sessionRecord) toModel() *model.Session {
	return &model.Session{
		ID:        r.ID,
		Token:     r.SessionToken,
		PlayerID:  r.PlayerID,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type runRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	PlayerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Score        int       `gorm:"not null"`
	TimeElapsed  float64   `gorm:"not null"`
	LevelReached int       `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (runRecord) TableName() string { return "runs" }

func runToRecord(r *model.Run) *runRecord {
	return &runRecord{
		ID:           r.ID,
		PlayerID:     r.PlayerID,
		Score:        r.Score,
		TimeElapsed:  r.TimeElapsed,
		LevelReached: r.LevelReached,
		CreatedAt:    r.CreatedAt,
	}
}

func (r *runRecord) toModel() *model.Run {
	return &model.Run{
		ID:           r.ID,
		PlayerID:     r.PlayerID,
		Score:        r.Score,
		TimeElapsed:  r.TimeElapsed,
		LevelReached: r.LevelReached,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}
