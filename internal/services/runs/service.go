package runs

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/musyaffa-iman/EchoShift/internal/dependencies/clock"
	"github.com/musyaffa-iman/EchoShift/internal/dependencies/random"
	"github.com/musyaffa-iman/EchoShift/internal/model"
	"github.com/musyaffa-iman/EchoShift/internal/services/auth"
	"github.com/musyaffa-iman/EchoShift/internal/storage"
)

// ErrNotRunOwner is returned when a session tries to modify another player's run
var ErrNotRunOwner = errors.New("run belongs to another player")

// SessionResolver resolves a session token to the authenticated player
type SessionResolver interface {
	ValidateSession(ctx context.Context, token string) (*auth.Session, error)
}

// Config holds configuration for the run service
type Config struct {
	// EnforceUpdateOwnership makes update and end require the owner's
	// session, the same way delete does. Off by default.
	EnforceUpdateOwnership bool
}

// Service records and queries gameplay runs
type Service struct {
	store    storage.RunStore
	sessions SessionResolver
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger

	enforceUpdateOwnership bool
}

// New creates a new run Service
func New(store storage.RunStore, sessions SessionResolver, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *Service {
	return &Service{
		store:                  store,
		sessions:               sessions,
		clock:                  clk,
		random:                 rnd,
		logger:                 logger,
		enforceUpdateOwnership: cfg.EnforceUpdateOwnership,
	}
}

// ListRunsForPlayer returns the player's runs, best score first.
// A player with no runs gets an empty slice.
func (s *Service) ListRunsForPlayer(ctx context.Context, playerID uuid.UUID) ([]*model.Run, error) {
	return s.store.ListRunsByPlayer(ctx, playerID)
}

// GetRun returns a single run by id
func (s *Service) GetRun(ctx context.Context, id uuid.UUID) (*model.Run, error) {
	return s.store.GetRun(ctx, id)
}

// CreateRun starts a run for the player behind token. Fields missing from
// patch take their defaults.
func (s *Service) CreateRun(ctx context.Context, token string, patch model.RunPatch) (*model.Run, error) {
	session, err := s.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	run := model.NewRun(s.random.NewID(), session.PlayerID, patch, s.clock.Now())
	if err := s.store.CreateRun(ctx, run); err != nil {
		return nil, err
	}

	s.logger.Info("run created",
		slog.String("run_id", run.ID.String()),
		slog.String("player_id", run.PlayerID.String()),
	)
	return run, nil
}

// UpdateRun overwrites the fields present in patch
func (s *Service) UpdateRun(ctx context.Context, id uuid.UUID, token string, patch model.RunPatch) (*model.Run, error) {
	run, err := s.patchRun(ctx, id, token, patch)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("run updated", slog.String("run_id", id.String()))
	return run, nil
}

// EndRun records the final values of a run. It has the same partial-update
// semantics as UpdateRun; runs carry no completion marker.
func (s *Service) EndRun(ctx context.Context, id uuid.UUID, token string, patch model.RunPatch) (*model.Run, error) {
	run, err := s.patchRun(ctx, id, token, patch)
	if err != nil {
		return nil, err
	}
	s.logger.Info("run completed",
		slog.String("run_id", id.String()),
		slog.Int("score", run.Score),
		slog.Int("level_reached", run.LevelReached),
	)
	return run, nil
}

// DeleteRun removes a run owned by the player behind token
func (s *Service) DeleteRun(ctx context.Context, id uuid.UUID, token string) error {
	session, err := s.authenticate(ctx, token)
	if err != nil {
		return err
	}
	if err := s.checkOwner(ctx, id, session); err != nil {
		return err
	}

	// A run's owner is fixed at creation, so the check above still holds here
	if err := s.store.DeleteRun(ctx, id); err != nil {
		return err
	}

	s.logger.Info("run deleted",
		slog.String("run_id", id.String()),
		slog.String("player_id", session.PlayerID.String()),
	)
	return nil
}

func (s *Service) patchRun(ctx context.Context, id uuid.UUID, token string, patch model.RunPatch) (*model.Run, error) {
	if s.enforceUpdateOwnership {
		session, err := s.authenticate(ctx, token)
		if err != nil {
			return nil, err
		}
		if err := s.checkOwner(ctx, id, session); err != nil {
			return nil, err
		}
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return s.store.UpdateRun(ctx, id, patch)
}

// authenticate maps every way a token can fail to auth.ErrInvalidSession
func (s *Service) authenticate(ctx context.Context, token string) (*auth.Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, auth.ErrInvalidSession
	}
	session, err := s.sessions.ValidateSession(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrInvalidInput) {
			return nil, auth.ErrInvalidSession
		}
		return nil, err
	}
	return session, nil
}

func (s *Service) checkOwner(ctx context.Context, id uuid.UUID, session *auth.Session) error {
	run, err := s.store.GetRun(ctx, id)
	if err != nil {
		return err
	}
	if run.PlayerID != session.PlayerID {
		s.logger.Warn("run ownership check failed",
			slog.String("run_id", id.String()),
			slog.String("player_id", session.PlayerID.String()),
		)
		return ErrNotRunOwner
	}
	return nil
}
