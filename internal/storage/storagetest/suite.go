// Package storagetest holds the behaviour every storage backend must share.
// Backend packages embed Suite in their own test suite and supply a
// constructor.
package storagetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/musyaffa-iman/EchoShift/internal/model"
	"github.com/musyaffa-iman/EchoShift/internal/storage"
)

// Suite is the storage contract test suite
type Suite struct {
	suite.Suite

	// NewStorage returns an empty store for the current test
	NewStorage func(t *testing.T) storage.Storage

	Store storage.Storage
	Ctx   context.Context
	Now   time.Time
}

func (s *Suite) SetupTest() {
	s.Store = s.NewStorage(s.T())
	s.Ctx = context.Background()
	s.Now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *Suite) TearDownTest() {
	if s.Store != nil {
		_ = s.Store.Close()
	}
}

func (s *Suite) newPlayer(username string) *model.Player {
	return &model.Player{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: "hash-" + username,
		CreatedAt:    s.Now,
	}
}

func (s *Suite) savePlayer(username string) *model.Player {
	p := s.newPlayer(username)
	s.Require().NoError(s.Store.CreatePlayer(s.Ctx, p))
	return p
}

func (s *Suite) newSession(playerID uuid.UUID, token string) *model.Session {
	return &model.Session{
		ID:        uuid.New(),
		Token:     token,
		PlayerID:  playerID,
		IsActive:  true,
		CreatedAt: s.Now,
	}
}

func (s *Suite) saveRun(playerID uuid.UUID, score int, offset time.Duration) *model.Run {
	run := &model.Run{
		ID:           uuid.New(),
		PlayerID:     playerID,
		Score:        score,
		TimeElapsed:  12.5,
		LevelReached: 2,
		CreatedAt:    s.Now.Add(offset),
	}
	s.Require().NoError(s.Store.CreateRun(s.Ctx, run))
	return run
}

func (s *Suite) TestPing() {
	s.NoError(s.Store.Ping(s.Ctx))
}

// Player tests

func (s *Suite) TestCreateAndGetPlayer() {
	p := s.savePlayer("alice")

	retrieved, err := s.Store.GetPlayer(s.Ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p.ID, retrieved.ID)
	s.Equal("alice", retrieved.Username)
	s.Equal(p.PasswordHash, retrieved.PasswordHash)
	s.Equal(0, retrieved.Experience)
	s.True(p.CreatedAt.Equal(retrieved.CreatedAt))
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Store.GetPlayer(s.Ctx, uuid.New())
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestGetPlayerByUsername() {
	p := s.savePlayer("alice")

	retrieved, err := s.Store.GetPlayerByUsername(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(p.ID, retrieved.ID)
}

func (s *Suite) TestGetPlayerByUsernameNotFound() {
	_, err := s.Store.GetPlayerByUsername(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestCreatePlayerRejectsDuplicateUsername() {
	first := s.savePlayer("alice")

	err := s.Store.CreatePlayer(s.Ctx, s.newPlayer("alice"))
	s.ErrorIs(err, model.ErrUsernameTaken)

	retrieved, err := s.Store.GetPlayerByUsername(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(first.ID, retrieved.ID)
}

func (s *Suite) TestConcurrentCreatePlayerOnlyOneWins() {
	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.Store.CreatePlayer(s.Ctx, s.newPlayer("racer"))
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.ErrorIs(err, model.ErrUsernameTaken)
	}
	s.Equal(1, succeeded)
}

func (s *Suite) TestDeletePlayer() {
	p := s.savePlayer("alice")

	s.Require().NoError(s.Store.DeletePlayer(s.Ctx, p.ID))

	_, err := s.Store.GetPlayer(s.Ctx, p.ID)
	s.ErrorIs(err, model.ErrPlayerNotFound)
	_, err = s.Store.GetPlayerByUsername(s.Ctx, "alice")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	// The username is free again
	s.NoError(s.Store.CreatePlayer(s.Ctx, s.newPlayer("alice")))
}

func (s *Suite) TestDeletePlayerNotFound() {
	err := s.Store.DeletePlayer(s.Ctx, uuid.New())
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestDeletePlayerKeepsSessionsAndRuns() {
	p := s.savePlayer("alice")
	s.Require().NoError(s.Store.ReplaceActiveSessions(s.Ctx, s.newSession(p.ID, "tok-1")))
	run := s.saveRun(p.ID, 10, 0)

	s.Require().NoError(s.Store.DeletePlayer(s.Ctx, p.ID))

	_, err := s.Store.GetActiveSession(s.Ctx, "tok-1")
	s.NoError(err)
	_, err = s.Store.GetRun(s.Ctx, run.ID)
	s.NoError(err)
}

// Session tests

func (s *Suite) TestCreateAndGetActiveSession() {
	p := s.savePlayer("alice")
	sess := s.newSession(p.ID, "tok-1")
	s.Require().NoError(s.Store.ReplaceActiveSessions(s.Ctx, sess))

	retrieved, err := s.Store.GetActiveSession(s.Ctx, "tok-1")
	s.Require().NoError(err)
	s.Equal(sess.ID, retrieved.ID)
	s.Equal(p.ID, retrieved.PlayerID)
	s.True(retrieved.IsActive)
	s.True(sess.CreatedAt.Equal(retrieved.CreatedAt))
}

func (s *Suite) TestGetActiveSessionUnknownToken() {
	_, err := s.Store.GetActiveSession(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *Suite) TestReplaceActiveSessionsDeactivatesPrevious() {
	p := s.savePlayer("alice")
	s.Require().NoError(s.Store.ReplaceActiveSessions(s.Ctx, s.newSession(p.ID, "tok-1")))

	s.Require().NoError(s.Store.ReplaceActiveSessions(s.Ctx, s.newSession(p.ID, "tok-2")))
	s.Require().NoError(s.Store.ReplaceActiveSessions(s.Ctx, s.newSession(p.ID, "tok-3")))

	_, err := s.Store.GetActiveSession(s.Ctx, "tok-1")
	s.ErrorIs(err, model.ErrSessionNotFound)
	_, err = s.Store.GetActiveSession(s.Ctx, "tok-2")
	s.ErrorIs(err, model.ErrSessionNotFound)
	_, err = s.Store.GetActiveSession(s.Ctx, "tok-3")
	s.NoError(err)
}

func (s *Suite) TestReplaceActiveSessionsLeavesOtherPlayers() {
	alice := s.savePlayer("alice")
	bob := s.savePlayer("bob")
	s.Require().NoError(s.Store.ReplaceActiveSessions(s.Ctx, s.newSession(bob.ID, "bob-tok")))

	s.Require().NoError(s.Store.ReplaceActiveSessions(s.Ctx, s.newSession(alice.ID, "alice-tok")))

	_, err := s.Store.GetActiveSession(s.Ctx, "bob-tok")
	s.NoError(err)
}

func (s *Suite) TestConcurrentReplaceLeavesOneActiveSession() {
	p := s.savePlayer("alice")

	const logins = 10
	tokens := make([]string, logins)
	var wg sync.WaitGroup
	for i := range logins {
		tokens[i] = uuid.NewString()
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.NoError(s.Store.ReplaceActiveSessions(s.Ctx, s.newSession(p.ID, tokens[i])))
		}()
	}
	wg.Wait()

	active := 0
	for _, tok := range tokens {
		if _, err := s.Store.GetActiveSession(s.Ctx, tok); err == nil {
			active++
		}
	}
	s.Equal(1, active)
}

func (s *Suite) TestDeactivateSession() {
	p := s.savePlayer("alice")
	s.Require().NoError(s.Store.ReplaceActiveSessions(s.Ctx, s.newSession(p.ID, "tok-1")))

	s.Require().NoError(s.Store.DeactivateSession(s.Ctx, "tok-1"))

	_, err := s.Store.GetActiveSession(s.Ctx, "tok-1")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *Suite) TestDeactivateSessionTwiceFails() {
	p := s.savePlayer("alice")
	s.Require().NoError(s.Store.ReplaceActiveSessions(s.Ctx, s.newSession(p.ID, "tok-1")))
	s.Require().NoError(s.Store.DeactivateSession(s.Ctx, "tok-1"))

	err := s.Store.DeactivateSession(s.Ctx, "tok-1")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *Suite) TestDeactivateUnknownSession() {
	err := s.Store.DeactivateSession(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *Suite) TestDeleteInactiveSessions() {
	p := s.savePlayer("alice")
	s.Require().NoError(s.Store.ReplaceActiveSessions(s.Ctx, s.newSession(p.ID, "tok-1")))
	s.Require().NoError(s.Store.ReplaceActiveSessions(s.Ctx, s.newSession(p.ID, "tok-2")))
	s.Require().NoError(s.Store.ReplaceActiveSessions(s.Ctx, s.newSession(p.ID, "tok-3")))

	deleted, err := s.Store.DeleteInactiveSessions(s.Ctx)
	s.Require().NoError(err)
	s.Equal(int64(2), deleted)

	_, err = s.Store.GetActiveSession(s.Ctx, "tok-3")
	s.NoError(err)

	deleted, err = s.Store.DeleteInactiveSessions(s.Ctx)
	s.Require().NoError(err)
	s.Equal(int64(0), deleted)

	// A purged player can still log in again
	s.NoError(s.Store.ReplaceActiveSessions(s.Ctx, s.newSession(p.ID, "tok-4")))
	_, err = s.Store.GetActiveSession(s.Ctx, "tok-3")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// Run tests

func (s *Suite) TestCreateAndGetRun() {
	p := s.savePlayer("alice")
	run := s.saveRun(p.ID, 100, 0)

	retrieved, err := s.Store.GetRun(s.Ctx, run.ID)
	s.Require().NoError(err)
	s.Equal(run.ID, retrieved.ID)
	s.Equal(p.ID, retrieved.PlayerID)
	s.Equal(100, retrieved.Score)
	s.Equal(12.5, retrieved.TimeElapsed)
	s.Equal(2, retrieved.LevelReached)
}

func (s *Suite) TestGetRunNotFound() {
	_, err := s.Store.GetRun(s.Ctx, uuid.New())
	s.ErrorIs(err, model.ErrRunNotFound)
}

func (s *Suite) TestUpdateRunIsPartial() {
	p := s.savePlayer("alice")
	run := s.saveRun(p.ID, 10, 0)
	score := 50

	updated, err := s.Store.UpdateRun(s.Ctx, run.ID, model.RunPatch{Score: &score})
	s.Require().NoError(err)
	s.Equal(50, updated.Score)
	s.Equal(12.5, updated.TimeElapsed)
	s.Equal(2, updated.LevelReached)

	retrieved, err := s.Store.GetRun(s.Ctx, run.ID)
	s.Require().NoError(err)
	s.Equal(50, retrieved.Score)
	s.Equal(12.5, retrieved.TimeElapsed)
}

func (s *Suite) TestUpdateRunCanWriteZero() {
	p := s.savePlayer("alice")
	run := s.saveRun(p.ID, 10, 0)
	zero := 0
	noTime := 0.0

	updated, err := s.Store.UpdateRun(s.Ctx, run.ID, model.RunPatch{Score: &zero, TimeElapsed: &noTime})
	s.Require().NoError(err)
	s.Equal(0, updated.Score)
	s.Equal(0.0, updated.TimeElapsed)

	retrieved, err := s.Store.GetRun(s.Ctx, run.ID)
	s.Require().NoError(err)
	s.Equal(0, retrieved.Score)
	s.Equal(0.0, retrieved.TimeElapsed)
}

func (s *Suite) TestUpdateRunNotFound() {
	score := 1
	_, err := s.Store.UpdateRun(s.Ctx, uuid.New(), model.RunPatch{Score: &score})
	s.ErrorIs(err, model.ErrRunNotFound)
}

func (s *Suite) TestConcurrentUpdatesToDifferentFieldsBothLand() {
	p := s.savePlayer("alice")
	run := s.saveRun(p.ID, 10, 0)
	score := 99
	level := 7

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := s.Store.UpdateRun(s.Ctx, run.ID, model.RunPatch{Score: &score})
		s.NoError(err)
	}()
	go func() {
		defer wg.Done()
		_, err := s.Store.UpdateRun(s.Ctx, run.ID, model.RunPatch{LevelReached: &level})
		s.NoError(err)
	}()
	wg.Wait()

	retrieved, err := s.Store.GetRun(s.Ctx, run.ID)
	s.Require().NoError(err)
	s.Equal(99, retrieved.Score)
	s.Equal(7, retrieved.LevelReached)
}

func (s *Suite) TestDeleteRun() {
	p := s.savePlayer("alice")
	run := s.saveRun(p.ID, 10, 0)

	s.Require().NoError(s.Store.DeleteRun(s.Ctx, run.ID))

	_, err := s.Store.GetRun(s.Ctx, run.ID)
	s.ErrorIs(err, model.ErrRunNotFound)
	runs, err := s.Store.ListRunsByPlayer(s.Ctx, p.ID)
	s.Require().NoError(err)
	s.Empty(runs)
}

func (s *Suite) TestDeleteRunNotFound() {
	err := s.Store.DeleteRun(s.Ctx, uuid.New())
	s.ErrorIs(err, model.ErrRunNotFound)
}

func (s *Suite) TestListRunsByPlayerOrdersByScore() {
	alice := s.savePlayer("alice")
	bob := s.savePlayer("bob")
	s.saveRun(alice.ID, 10, 0)
	s.saveRun(alice.ID, 50, time.Second)
	s.saveRun(alice.ID, 30, 2*time.Second)
	s.saveRun(bob.ID, 1000, 0)

	runs, err := s.Store.ListRunsByPlayer(s.Ctx, alice.ID)
	s.Require().NoError(err)
	s.Require().Len(runs, 3)
	s.Equal(50, runs[0].Score)
	s.Equal(30, runs[1].Score)
	s.Equal(10, runs[2].Score)
}

func (s *Suite) TestListRunsByPlayerReflectsUpdates() {
	p := s.savePlayer("alice")
	low := s.saveRun(p.ID, 10, 0)
	s.saveRun(p.ID, 20, time.Second)
	score := 500

	_, err := s.Store.UpdateRun(s.Ctx, low.ID, model.RunPatch{Score: &score})
	s.Require().NoError(err)

	runs, err := s.Store.ListRunsByPlayer(s.Ctx, p.ID)
	s.Require().NoError(err)
	s.Require().Len(runs, 2)
	s.Equal(low.ID, runs[0].ID)
	s.Equal(500, runs[0].Score)
}

func (s *Suite) TestListRunsByPlayerEmpty() {
	runs, err := s.Store.ListRunsByPlayer(s.Ctx, uuid.New())
	s.Require().NoError(err)
	s.NotNil(runs)
	s.Empty(runs)
}
