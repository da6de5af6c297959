package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/musyaffa-iman/EchoShift/internal/model"
	"github.com/musyaffa-iman/EchoShift/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Values are copied in and out so callers never share state with the store.
type Storage struct {
	mu sync.RWMutex

	players        map[uuid.UUID]*model.Player
	usernameIndex  map[string]uuid.UUID
	sessions       map[string]*model.Session // keyed by token
	playerSessions map[uuid.UUID]map[string]struct{}
	runs           map[uuid.UUID]*model.Run
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:        make(map[uuid.UUID]*model.Player),
		usernameIndex:  make(map[string]uuid.UUID),
		sessions:       make(map[string]*model.Session),
		playerSessions: make(map[uuid.UUID]map[string]struct{}),
		runs:           make(map[uuid.UUID]*model.Run),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) Ping(ctx context.Context) error {
	return nil
}

func (s *Storage) Close() error {
	return nil
}

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.usernameIndex[player.Username]; taken {
		return model.ErrUsernameTaken
	}
	p := *player
	s.players[p.ID] = &p
	s.usernameIndex[p.Username] = p.ID
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id uuid.UUID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

func (s *Storage) GetPlayerByUsername(ctx context.Context, username string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *s.players[id]
	return &p, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[id]
	if !ok {
		return model.ErrPlayerNotFound
	}
	delete(s.usernameIndex, player.Username)
	delete(s.players, id)
	return nil
}

// Session operations

func (s *Storage) ReplaceActiveSessions(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token := range s.playerSessions[session.PlayerID] {
		s.sessions[token].IsActive = false
	}
	s.putSession(session)
	return nil
}

// putSession stores a copy of session; the caller must hold the write lock
func (s *Storage) putSession(session *model.Session) {
	sess := *session
	s.sessions[sess.Token] = &sess
	tokens, ok := s.playerSessions[sess.PlayerID]
	if !ok {
		tokens = make(map[string]struct{})
		s.playerSessions[sess.PlayerID] = tokens
	}
	tokens[sess.Token] = struct{}{}
}

func (s *Storage) GetActiveSession(ctx context.Context, token string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok || !session.IsActive {
		return nil, model.ErrSessionNotFound
	}
	sess := *session
	return &sess, nil
}

func (s *Storage) DeactivateSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok || !session.IsActive {
		return model.ErrSessionNotFound
	}
	session.IsActive = false
	return nil
}

func (s *Storage) DeleteInactiveSessions(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for token, session := range s.sessions {
		if session.IsActive {
			continue
		}
		delete(s.sessions, token)
		if tokens, ok := s.playerSessions[session.PlayerID]; ok {
			delete(tokens, token)
			if len(tokens) == 0 {
				delete(s.playerSessions, session.PlayerID)
			}
		}
		deleted++
	}
	return deleted, nil
}

// Run operations

func (s *Storage) CreateRun(ctx context.Context, run *model.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := *run
	s.runs[r.ID] = &r
	return nil
}

func (s *Storage) GetRun(ctx context.Context, id uuid.UUID) (*model.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, model.ErrRunNotFound
	}
	r := *run
	return &r, nil
}

func (s *Storage) UpdateRun(ctx context.Context, id uuid.UUID, patch model.RunPatch) (*model.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, model.ErrRunNotFound
	}
	patch.Apply(run)
	r := *run
	return &r, nil
}

func (s *Storage) DeleteRun(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		return model.ErrRunNotFound
	}
	delete(s.runs, id)
	return nil
}

func (s *Storage) ListRunsByPlayer(ctx context.Context, playerID uuid.UUID) ([]*model.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := make([]*model.Run, 0)
	for _, run := range s.runs {
		if run.PlayerID == playerID {
			r := *run
			runs = append(runs, &r)
		}
	}
	model.SortRunsByScore(runs)
	return runs, nil
}
