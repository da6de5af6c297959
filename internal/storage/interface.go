package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/musyaffa-iman/EchoShift/internal/model"
)

// PlayerStore persists player accounts
type PlayerStore interface {
	// CreatePlayer inserts a new player, failing with model.ErrUsernameTaken
	// if the username is already in use
	CreatePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id uuid.UUID) (*model.Player, error)
	GetPlayerByUsername(ctx context.Context, username string) (*model.Player, error)
	// DeletePlayer removes the player row only; sessions and runs are kept
	DeletePlayer(ctx context.Context, id uuid.UUID) error
}

// SessionStore persists session tokens
type SessionStore interface {
	// ReplaceActiveSessions deactivates every active session of
	// session.PlayerID and inserts session, as one atomic step
	ReplaceActiveSessions(ctx context.Context, session *model.Session) error

	// GetActiveSession returns the active session for token, or
	// model.ErrSessionNotFound
	GetActiveSession(ctx context.Context, token string) (*model.Session, error)

	// DeactivateSession flips an active session to inactive. It fails with
	// model.ErrSessionNotFound if no active session has that token.
	DeactivateSession(ctx context.Context, token string) error

	// DeleteInactiveSessions purges inactive sessions, returning how many went
	DeleteInactiveSessions(ctx context.Context) (int64, error)
}

// RunStore persists gameplay runs
type RunStore interface {
	CreateRun(ctx context.Context, run *model.Run) error
	GetRun(ctx context.Context, id uuid.UUID) (*model.Run, error)

	// UpdateRun applies patch to the stored run in a single read-modify-write
	// and returns the result
	UpdateRun(ctx context.Context, id uuid.UUID, patch model.RunPatch) (*model.Run, error)
	DeleteRun(ctx context.Context, id uuid.UUID) error

	// ListRunsByPlayer returns the player's runs ordered by score descending
	ListRunsByPlayer(ctx context.Context, playerID uuid.UUID) ([]*model.Run, error)
}

// Storage defines the interface for data persistence
type Storage interface {
	PlayerStore
	SessionStore
	RunStore

	// Ping checks the backend is reachable
	Ping(ctx context.Context) error
	Close() error
}
