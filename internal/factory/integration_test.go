package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rpsarena/rps-arena-go/internal/model"
	"github.com/rpsarena/rps-arena-go/internal/services/match"
)

// IntegrationSuite exercises the wired application end to end at the
// service layer: accounts, a full match, and the resulting leaderboard.
type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.app.MockRandom.QueueString("MATCH1", "MATCH2", "MATCH3")
	s.ctx = context.Background()
}

func (s *IntegrationSuite) register(username string) model.UserID {
	session, err := s.app.AuthService.Register(s.ctx, username, "password123")
	s.Require().NoError(err)
	return session.User.ID
}

func (s *IntegrationSuite) TestRegisterLoginVerify() {
	s.register("alice")

	session, err := s.app.AuthService.Login(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	user, err := s.app.AuthService.Verify(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal("alice", user.Username)
}

func (s *IntegrationSuite) TestHumanMatchToRanking() {
	alice := s.register("alice")
	bob := s.register("bob")

	created, err := s.app.MatchController.Create(s.ctx, alice, false)
	s.Require().NoError(err)
	s.Equal(model.MatchStatusWaiting, created.Status)

	joined, err := s.app.MatchController.Join(s.ctx, created.ID, bob)
	s.Require().NoError(err)
	s.Equal(model.MatchStatusPlaying, joined.Status)

	// Alice sweeps three rounds
	var result *match.PlayResult
	for i := 0; i < 3; i++ {
		_, err = s.app.MatchController.SubmitChoice(s.ctx, created.ID, alice, model.ChoiceRock)
		s.Require().NoError(err)
		result, err = s.app.MatchController.SubmitChoice(s.ctx, created.ID, bob, model.ChoiceScissors)
		s.Require().NoError(err)
	}

	s.True(result.MatchFinished)
	s.Equal(model.MatchStatusFinished, result.Match.Status)
	s.Equal(alice, result.Match.Winner.UserID)

	entries, err := s.app.RankingService.TopPlayers(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal("alice", entries[0].Username)
	s.Equal(1, entries[0].Rank)
	s.Equal("bob", entries[1].Username)
}

func (s *IntegrationSuite) TestMachineMatch() {
	alice := s.register("alice")

	// Machine always answers rock
	s.app.MockRandom.QueueIntn(0, 0, 0)

	created, err := s.app.MatchController.Create(s.ctx, alice, true)
	s.Require().NoError(err)
	s.Equal(model.MatchStatusPlaying, created.Status)
	s.True(created.IsMachine())

	var result *match.PlayResult
	for i := 0; i < 3; i++ {
		result, err = s.app.MatchController.SubmitChoice(s.ctx, created.ID, alice, model.ChoicePaper)
		s.Require().NoError(err)
		s.Equal(match.PlayStateResolved, result.State)
	}

	s.True(result.MatchFinished)
	s.Equal(alice, result.Match.Winner.UserID)
}
