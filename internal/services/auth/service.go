package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/musyaffa-iman/EchoShift/internal/dependencies/clock"
	"github.com/musyaffa-iman/EchoShift/internal/dependencies/random"
	"github.com/musyaffa-iman/EchoShift/internal/model"
	"github.com/musyaffa-iman/EchoShift/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

// Store is the persistence the auth service needs
type Store interface {
	storage.PlayerStore
	storage.SessionStore
}

// Session represents an authenticated session
type Session struct {
	Token     string
	PlayerID  uuid.UUID
	Player    model.Player
	CreatedAt time.Time
}

// Service handles player accounts and session management
type Service struct {
	store  Store
	clock  clock.Clock
	random random.Random
	logger *slog.Logger

	bcryptCost int
	sessionTTL time.Duration

	dummyOnce sync.Once
	dummyHash []byte
}

// Config holds configuration for the auth service
type Config struct {
	// BcryptCost is the bcrypt work factor for new password hashes
	BcryptCost int

	// SessionTTL bounds how long a session stays valid after login.
	// Zero means sessions last until logout or the next login.
	SessionTTL time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		BcryptCost: bcrypt.DefaultCost,
	}
}

// New creates a new auth Service
func New(store Store, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultConfig().BcryptCost
	}
	return &Service{
		store:      store,
		clock:      clk,
		random:     rnd,
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
		sessionTTL: cfg.SessionTTL,
	}
}

// Register creates a player account and logs it in
func (s *Service) Register(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, model.NewValidationError("Username cannot be null")
	}
	if utf8.RuneCountInString(username) > model.MaxUsernameLength {
		return nil, model.NewValidationError("Username must be at most %d characters", model.MaxUsernameLength)
	}
	if strings.TrimSpace(password) == "" {
		return nil, model.NewValidationError("Password cannot be null")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, model.NewValidationError("Password must be at most 72 bytes")
		}
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	player := &model.Player{
		ID:           s.random.NewID(),
		Username:     username,
		PasswordHash: string(hash),
		Experience:   0,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.store.CreatePlayer(ctx, player); err != nil {
		return nil, err
	}

	// A login racing this registration must not leave two active sessions
	session := s.newSession(player.ID)
	if err := s.store.ReplaceActiveSessions(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("player registered",
		slog.String("player_id", player.ID.String()),
		slog.String("username", player.Username),
	)
	return toSession(session, player), nil
}

// Login checks credentials and issues a new session, deactivating every
// session the player held before
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, model.NewValidationError("Username and password are required")
	}

	player, err := s.store.GetPlayerByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			// Spend the same work as a real comparison so timing does not
			// reveal which usernames exist
			_ = bcrypt.CompareHashAndPassword(s.dummyPasswordHash(), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session := s.newSession(player.ID)
	if err := s.store.ReplaceActiveSessions(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("player logged in", slog.String("player_id", player.ID.String()))
	return toSession(session, player), nil
}

// Logout deactivates the session identified by token. The row is kept.
func (s *Service) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return model.NewValidationError("Session token is required")
	}

	if err := s.store.DeactivateSession(ctx, token); err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return ErrInvalidSession
		}
		return err
	}

	s.logger.Info("player logged out")
	return nil
}

// ValidateSession checks that token names an active session and returns it
// together with its player
func (s *Service) ValidateSession(ctx context.Context, token string) (*Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, model.NewValidationError("Session token is required")
	}

	session, err := s.store.GetActiveSession(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	if session.ExpiredAt(s.clock.Now(), s.sessionTTL) {
		if err := s.store.DeactivateSession(ctx, token); err != nil && !errors.Is(err, model.ErrSessionNotFound) {
			return nil, err
		}
		s.logger.Info("session expired", slog.String("player_id", session.PlayerID.String()))
		return nil, ErrInvalidSession
	}

	player, err := s.store.GetPlayer(ctx, session.PlayerID)
	if err != nil {
		// Players are deleted without touching their sessions
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	return toSession(session, player), nil
}

// GetPlayer returns a player by id
func (s *Service) GetPlayer(ctx context.Context, id uuid.UUID) (*model.Player, error) {
	return s.store.GetPlayer(ctx, id)
}

// DeletePlayer removes a player account. Sessions and runs are left in place.
func (s *Service) DeletePlayer(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeletePlayer(ctx, id); err != nil {
		return err
	}
	s.logger.Info("player deleted", slog.String("player_id", id.String()))
	return nil
}

// CleanupInactiveSessions purges every inactive session
func (s *Service) CleanupInactiveSessions(ctx context.Context) (int64, error) {
	deleted, err := s.store.DeleteInactiveSessions(ctx)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("purged inactive sessions", slog.Int64("count", deleted))
	}
	return deleted, nil
}

// RunCleanupLoop purges inactive sessions every interval until ctx is done
func (s *Service) RunCleanupLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.CleanupInactiveSessions(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("session cleanup failed", slog.String("error", err.Error()))
			}
		}
	}
}

func (s *Service) newSession(playerID uuid.UUID) *model.Session {
	return &model.Session{
		ID:        s.random.NewID(),
		Token:     s.random.Token(),
		PlayerID:  playerID,
		IsActive:  true,
		CreatedAt: s.clock.Now(),
	}
}

func (s *Service) dummyPasswordHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("echoshift-dummy-password"), s.bcryptCost)
	})
	return s.dummyHash
}

func toSession(session *model.Session, player *model.Player) *Session {
	return &Session{
		Token:     session.Token,
		PlayerID:  player.ID,
		Player:    *player,
		CreatedAt: session.CreatedAt,
	}
}
