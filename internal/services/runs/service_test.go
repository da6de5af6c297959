package runs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/musyaffa-iman/EchoShift/internal/dependencies/mocks"
	"github.com/musyaffa-iman/EchoShift/internal/model"
	"github.com/musyaffa-iman/EchoShift/internal/services/auth"
	"github.com/musyaffa-iman/EchoShift/internal/storage/memory"
	"github.com/musyaffa-iman/EchoShift/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	auth    *auth.Service
	service *Service
	ctx     context.Context

	alice *auth.Session
	bob   *auth.Session
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.ctx = context.Background()
	s.auth = auth.New(s.storage, s.clock, s.random, auth.Config{BcryptCost: bcrypt.MinCost}, testutil.NopLogger())
	s.service = s.newService(Config{})

	var err error
	s.alice, err = s.auth.Register(s.ctx, "alice", "password123")
	s.Require().NoError(err)
	s.bob, err = s.auth.Register(s.ctx, "bob", "password123")
	s.Require().NoError(err)
}

func (s *ServiceSuite) newService(cfg Config) *Service {
	return New(s.storage, s.auth, s.clock, s.random, cfg, testutil.NopLogger())
}

func (s *ServiceSuite) createRun(session *auth.Session, score int) *model.Run {
	run, err := s.service.CreateRun(s.ctx, session.Token, model.RunPatch{Score: &score})
	s.Require().NoError(err)
	return run
}

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

// CreateRun tests

func (s *ServiceSuite) TestCreateRunAppliesDefaults() {
	run, err := s.service.CreateRun(s.ctx, s.alice.Token, model.RunPatch{Score: intPtr(100)})
	s.Require().NoError(err)

	s.Equal(100, run.Score)
	s.Equal(0.0, run.TimeElapsed)
	s.Equal(1, run.LevelReached)
	s.Equal(s.clock.Now(), run.CreatedAt)
}

func (s *ServiceSuite) TestCreateRunWithEmptyPatch() {
	run, err := s.service.CreateRun(s.ctx, s.alice.Token, model.RunPatch{})
	s.Require().NoError(err)

	s.Equal(model.DefaultScore, run.Score)
	s.Equal(model.DefaultTimeElapsed, run.TimeElapsed)
	s.Equal(model.DefaultLevelReached, run.LevelReached)
}

func (s *ServiceSuite) TestCreateRunTakesPlayerFromSession() {
	run := s.createRun(s.bob, 10)
	s.Equal(s.bob.PlayerID, run.PlayerID)

	stored, err := s.service.GetRun(s.ctx, run.ID)
	s.Require().NoError(err)
	s.Equal(s.bob.PlayerID, stored.PlayerID)
}

func (s *ServiceSuite) TestCreateRunRejectsMissingOrInvalidToken() {
	for _, token := range []string{"", "  ", "not-a-session"} {
		_, err := s.service.CreateRun(s.ctx, token, model.RunPatch{Score: intPtr(10)})
		s.ErrorIs(err, auth.ErrInvalidSession, "token %q", token)
	}

	runs, err := s.service.ListRunsForPlayer(s.ctx, s.alice.PlayerID)
	s.Require().NoError(err)
	s.Empty(runs)
}

func (s *ServiceSuite) TestCreateRunRejectsLoggedOutSession() {
	s.Require().NoError(s.auth.Logout(s.ctx, s.alice.Token))

	_, err := s.service.CreateRun(s.ctx, s.alice.Token, model.RunPatch{})
	s.ErrorIs(err, auth.ErrInvalidSession)
}

func (s *ServiceSuite) TestCreateRunRejectsInvalidValues() {
	_, err := s.service.CreateRun(s.ctx, s.alice.Token, model.RunPatch{Score: intPtr(-1)})
	s.ErrorIs(err, model.ErrInvalidInput)

	_, err = s.service.CreateRun(s.ctx, s.alice.Token, model.RunPatch{LevelReached: intPtr(0)})
	s.ErrorIs(err, model.ErrInvalidInput)
}

// ListRunsForPlayer tests

func (s *ServiceSuite) TestListRunsOrderedByScore() {
	for _, score := range []int{10, 50, 30} {
		s.createRun(s.alice, score)
	}
	s.createRun(s.bob, 40)

	runs, err := s.service.ListRunsForPlayer(s.ctx, s.alice.PlayerID)
	s.Require().NoError(err)
	s.Require().Len(runs, 3)
	s.Equal(50, runs[0].Score)
	s.Equal(30, runs[1].Score)
	s.Equal(10, runs[2].Score)
}

func (s *ServiceSuite) TestListRunsUnknownPlayerIsEmpty() {
	runs, err := s.service.ListRunsForPlayer(s.ctx, uuid.New())
	s.Require().NoError(err)
	s.NotNil(runs)
	s.Empty(runs)
}

// UpdateRun / EndRun tests

func (s *ServiceSuite) TestUpdateRunLeavesAbsentFields() {
	run, err := s.service.CreateRun(s.ctx, s.alice.Token, model.RunPatch{
		Score:        intPtr(10),
		TimeElapsed:  floatPtr(12.5),
		LevelReached: intPtr(3),
	})
	s.Require().NoError(err)

	updated, err := s.service.UpdateRun(s.ctx, run.ID, "", model.RunPatch{Score: intPtr(50)})
	s.Require().NoError(err)
	s.Equal(50, updated.Score)
	s.Equal(12.5, updated.TimeElapsed)
	s.Equal(3, updated.LevelReached)
}

func (s *ServiceSuite) TestUpdateRunNotFound() {
	_, err := s.service.UpdateRun(s.ctx, uuid.New(), "", model.RunPatch{Score: intPtr(1)})
	s.ErrorIs(err, model.ErrRunNotFound)
}

func (s *ServiceSuite) TestUpdateRunRejectsInvalidValues() {
	run := s.createRun(s.alice, 10)

	_, err := s.service.UpdateRun(s.ctx, run.ID, "", model.RunPatch{TimeElapsed: floatPtr(-2)})
	s.ErrorIs(err, model.ErrInvalidInput)

	stored, err := s.service.GetRun(s.ctx, run.ID)
	s.Require().NoError(err)
	s.Equal(0.0, stored.TimeElapsed)
}

func (s *ServiceSuite) TestUpdateRunIsPermissiveByDefault() {
	run := s.createRun(s.alice, 10)

	updated, err := s.service.UpdateRun(s.ctx, run.ID, s.bob.Token, model.RunPatch{Score: intPtr(99)})
	s.Require().NoError(err)
	s.Equal(99, updated.Score)
}

func (s *ServiceSuite) TestEndRunSetsFinalValues() {
	run := s.createRun(s.alice, 10)

	ended, err := s.service.EndRun(s.ctx, run.ID, "", model.RunPatch{
		TimeElapsed:  floatPtr(93.25),
		LevelReached: intPtr(7),
	})
	s.Require().NoError(err)
	s.Equal(10, ended.Score)
	s.Equal(93.25, ended.TimeElapsed)
	s.Equal(7, ended.LevelReached)
}

func (s *ServiceSuite) TestEndRunNotFound() {
	_, err := s.service.EndRun(s.ctx, uuid.New(), "", model.RunPatch{})
	s.ErrorIs(err, model.ErrRunNotFound)
}

func (s *ServiceSuite) TestEnforcedOwnershipOnUpdate() {
	s.service = s.newService(Config{EnforceUpdateOwnership: true})
	run := s.createRun(s.alice, 10)

	_, err := s.service.UpdateRun(s.ctx, run.ID, "", model.RunPatch{Score: intPtr(20)})
	s.ErrorIs(err, auth.ErrInvalidSession)

	_, err = s.service.UpdateRun(s.ctx, run.ID, s.bob.Token, model.RunPatch{Score: intPtr(20)})
	s.ErrorIs(err, ErrNotRunOwner)

	_, err = s.service.EndRun(s.ctx, run.ID, s.bob.Token, model.RunPatch{Score: intPtr(20)})
	s.ErrorIs(err, ErrNotRunOwner)

	updated, err := s.service.UpdateRun(s.ctx, run.ID, s.alice.Token, model.RunPatch{Score: intPtr(20)})
	s.Require().NoError(err)
	s.Equal(20, updated.Score)
}

func (s *ServiceSuite) TestEnforcedOwnershipNotFound() {
	s.service = s.newService(Config{EnforceUpdateOwnership: true})

	_, err := s.service.EndRun(s.ctx, uuid.New(), s.alice.Token, model.RunPatch{})
	s.ErrorIs(err, model.ErrRunNotFound)
}

// DeleteRun tests

func (s *ServiceSuite) TestDeleteRun() {
	run := s.createRun(s.alice, 10)

	s.Require().NoError(s.service.DeleteRun(s.ctx, run.ID, s.alice.Token))

	_, err := s.service.GetRun(s.ctx, run.ID)
	s.ErrorIs(err, model.ErrRunNotFound)
}

func (s *ServiceSuite) TestDeleteRunByOtherPlayerIsForbidden() {
	run := s.createRun(s.alice, 10)

	err := s.service.DeleteRun(s.ctx, run.ID, s.bob.Token)
	s.ErrorIs(err, ErrNotRunOwner)

	_, err = s.service.GetRun(s.ctx, run.ID)
	s.NoError(err)
}

func (s *ServiceSuite) TestDeleteRunChecksSessionBeforeExistence() {
	err := s.service.DeleteRun(s.ctx, uuid.New(), "bogus")
	s.ErrorIs(err, auth.ErrInvalidSession)

	err = s.service.DeleteRun(s.ctx, uuid.New(), s.alice.Token)
	s.ErrorIs(err, model.ErrRunNotFound)
}

func (s *ServiceSuite) TestDeleteRunAfterLoginWithNewToken() {
	run := s.createRun(s.alice, 10)

	session, err := s.auth.Login(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	err = s.service.DeleteRun(s.ctx, run.ID, s.alice.Token)
	s.ErrorIs(err, auth.ErrInvalidSession)

	s.NoError(s.service.DeleteRun(s.ctx, run.ID, session.Token))
}
