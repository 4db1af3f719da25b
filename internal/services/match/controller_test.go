package match

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rpsarena/rps-arena-go/internal/dependencies/mocks"
	"github.com/rpsarena/rps-arena-go/internal/model"
	"github.com/rpsarena/rps-arena-go/internal/services/rounds"
	"github.com/rpsarena/rps-arena-go/internal/storage/memory"
	"github.com/rpsarena/rps-arena-go/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	logger := testutil.NopLogger()
	ledger := rounds.NewLedger(s.storage, logger)
	s.controller = NewController(s.storage, ledger, s.clock, s.random, logger)
	s.ctx = context.Background()

	// Distinct ids for every match a test might create
	s.random.QueueString("MATCH1", "MATCH2", "MATCH3", "MATCH4", "MATCH5")
}

func (s *ControllerSuite) addUser(id model.UserID) {
	err := s.storage.SaveUser(s.ctx, &model.User{
		ID:       id,
		Username: string(id),
	})
	s.Require().NoError(err)
}

// createPlayingMatch sets up a two-player match in progress
func (s *ControllerSuite) createPlayingMatch() *model.Match {
	s.addUser("alice")
	s.addUser("bob")

	match, err := s.controller.Create(s.ctx, "alice", false)
	s.Require().NoError(err)

	match, err = s.controller.Join(s.ctx, match.ID, "bob")
	s.Require().NoError(err)
	s.Require().Equal(model.MatchStatusPlaying, match.Status)
	return match
}

func (s *ControllerSuite) user(id model.UserID) *model.User {
	user, err := s.storage.GetUser(s.ctx, id)
	s.Require().NoError(err)
	return user
}

// Create

func (s *ControllerSuite) TestCreate() {
	s.addUser("alice")

	match, err := s.controller.Create(s.ctx, "alice", false)
	s.Require().NoError(err)
	s.Equal(model.MatchStatusWaiting, match.Status)
	s.Equal(model.UserID("alice"), match.Player1)
	s.True(match.Player2.IsZero())
	s.True(match.Winner.IsZero())
}

func (s *ControllerSuite) TestCreateUnknownUser() {
	_, err := s.controller.Create(s.ctx, "ghost", false)
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *ControllerSuite) TestCreateMachineMatchStartsPlaying() {
	s.addUser("alice")

	match, err := s.controller.Create(s.ctx, "alice", true)
	s.Require().NoError(err)
	s.Equal(model.MatchStatusPlaying, match.Status)
	s.True(match.Player2.Machine)
	s.True(match.IsMachine())
}

func (s *ControllerSuite) TestCreateWhileActiveRejected() {
	s.addUser("alice")

	_, err := s.controller.Create(s.ctx, "alice", false)
	s.Require().NoError(err)

	_, err = s.controller.Create(s.ctx, "alice", false)
	s.ErrorIs(err, model.ErrAlreadyActive)

	_, err = s.controller.Create(s.ctx, "alice", true)
	s.ErrorIs(err, model.ErrAlreadyActive)
}

func (s *ControllerSuite) TestConcurrentCreateExactlyOneSucceeds() {
	s.addUser("alice")

	const attempts = 16
	var wg sync.WaitGroup
	results := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = s.controller.Create(s.ctx, "alice", false)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			s.ErrorIs(err, model.ErrAlreadyActive)
		}
	}
	s.Equal(1, succeeded)
}

// Join

func (s *ControllerSuite) TestJoin() {
	match := s.createPlayingMatch()

	s.Equal(model.HumanParticipant("bob"), match.Player2)

	stored, err := s.storage.GetMatch(s.ctx, match.ID)
	s.Require().NoError(err)
	s.Equal(model.MatchStatusPlaying, stored.Status)
}

func (s *ControllerSuite) TestJoinNotFound() {
	s.addUser("bob")

	_, err := s.controller.Join(s.ctx, "nonexistent", "bob")
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *ControllerSuite) TestJoinOwnMatchRejected() {
	s.addUser("alice")

	match, err := s.controller.Create(s.ctx, "alice", false)
	s.Require().NoError(err)

	_, err = s.controller.Join(s.ctx, match.ID, "alice")
	s.ErrorIs(err, model.ErrSelfJoin)
}

func (s *ControllerSuite) TestJoinNonWaitingMatchRejected() {
	match := s.createPlayingMatch()
	s.addUser("carol")

	_, err := s.controller.Join(s.ctx, match.ID, "carol")
	s.ErrorIs(err, model.ErrMatchNotWaiting)
}

func (s *ControllerSuite) TestJoinWhileActiveRejected() {
	s.addUser("alice")
	s.addUser("bob")

	match, err := s.controller.Create(s.ctx, "alice", false)
	s.Require().NoError(err)
	_, err = s.controller.Create(s.ctx, "bob", false)
	s.Require().NoError(err)

	_, err = s.controller.Join(s.ctx, match.ID, "bob")
	s.ErrorIs(err, model.ErrAlreadyActive)
}

// SubmitChoice

func (s *ControllerSuite) TestSubmitChoicePendingUntilOpponentPlays() {
	match := s.createPlayingMatch()

	result, err := s.controller.SubmitChoice(s.ctx, match.ID, "alice", model.ChoiceRock)
	s.Require().NoError(err)
	s.Equal(PlayStatePending, result.State)
	s.Equal(1, result.Round.Number)
	s.False(result.MatchFinished)
	s.Equal(model.RoundWinnerNone, result.Round.Winner)
}

func (s *ControllerSuite) TestSubmitChoiceResolvesRound() {
	match := s.createPlayingMatch()

	_, err := s.controller.SubmitChoice(s.ctx, match.ID, "alice", model.ChoiceRock)
	s.Require().NoError(err)

	result, err := s.controller.SubmitChoice(s.ctx, match.ID, "bob", model.ChoiceScissors)
	s.Require().NoError(err)
	s.Equal(PlayStateResolved, result.State)
	s.Equal(model.RoundWinnerPlayer1, result.Round.Winner)
	s.Equal(1, result.Match.Player1Score)
	s.Equal(0, result.Match.Player2Score)
	s.False(result.MatchFinished)
}

func (s *ControllerSuite) TestSubmitChoiceTieScoresNothing() {
	match := s.createPlayingMatch()

	_, err := s.controller.SubmitChoice(s.ctx, match.ID, "alice", model.ChoicePaper)
	s.Require().NoError(err)

	result, err := s.controller.SubmitChoice(s.ctx, match.ID, "bob", model.ChoicePaper)
	s.Require().NoError(err)
	s.Equal(model.RoundWinnerTie, result.Round.Winner)
	s.Equal(0, result.Match.Player1Score)
	s.Equal(0, result.Match.Player2Score)
}

func (s *ControllerSuite) TestSubmitChoiceTwiceRejected() {
	match := s.createPlayingMatch()

	_, err := s.controller.SubmitChoice(s.ctx, match.ID, "alice", model.ChoiceRock)
	s.Require().NoError(err)

	_, err = s.controller.SubmitChoice(s.ctx, match.ID, "alice", model.ChoicePaper)
	s.ErrorIs(err, model.ErrAlreadyPlayed)

	// The recorded choice is unchanged
	matchRounds, err := s.controller.Rounds(s.ctx, match.ID)
	s.Require().NoError(err)
	s.Require().Len(matchRounds, 1)
	s.Equal(model.ChoiceRock, *matchRounds[0].Player1Choice)
}

func (s *ControllerSuite) TestSubmitChoiceValidation() {
	match := s.createPlayingMatch()

	_, err := s.controller.SubmitChoice(s.ctx, match.ID, "alice", "lizard")
	s.ErrorIs(err, model.ErrInvalidChoice)
}

func (s *ControllerSuite) TestSubmitChoiceNonParticipantRejected() {
	match := s.createPlayingMatch()
	s.addUser("carol")

	_, err := s.controller.SubmitChoice(s.ctx, match.ID, "carol", model.ChoiceRock)
	s.ErrorIs(err, model.ErrNotParticipant)
}

func (s *ControllerSuite) TestSubmitChoiceWaitingMatchRejected() {
	s.addUser("alice")

	match, err := s.controller.Create(s.ctx, "alice", false)
	s.Require().NoError(err)

	_, err = s.controller.SubmitChoice(s.ctx, match.ID, "alice", model.ChoiceRock)
	s.ErrorIs(err, model.ErrMatchNotPlaying)
}

func (s *ControllerSuite) TestSubmitChoiceFinishedMatchRejected() {
	match := s.playBestOfFive()

	_, err := s.controller.SubmitChoice(s.ctx, match.ID, "alice", model.ChoiceRock)
	s.ErrorIs(err, model.ErrMatchAlreadyDecided)
}

func (s *ControllerSuite) TestGaplessRoundNumbering() {
	match := s.createPlayingMatch()

	for i := 1; i <= 3; i++ {
		result, err := s.controller.SubmitChoice(s.ctx, match.ID, "alice", model.ChoiceRock)
		s.Require().NoError(err)
		s.Equal(i, result.Round.Number)

		result, err = s.controller.SubmitChoice(s.ctx, match.ID, "bob", model.ChoiceRock)
		s.Require().NoError(err)
		s.Equal(i, result.Round.Number)
	}

	matchRounds, err := s.controller.Rounds(s.ctx, match.ID)
	s.Require().NoError(err)
	s.Require().Len(matchRounds, 3)
	for i, round := range matchRounds {
		s.Equal(i+1, round.Number)
	}
}

// playBestOfFive plays alice to a 3-0 win over bob
func (s *ControllerSuite) playBestOfFive() *model.Match {
	match := s.createPlayingMatch()

	for i := 0; i < model.WinningScore; i++ {
		_, err := s.controller.SubmitChoice(s.ctx, match.ID, "alice", model.ChoiceRock)
		s.Require().NoError(err)
		_, err = s.controller.SubmitChoice(s.ctx, match.ID, "bob", model.ChoiceScissors)
		s.Require().NoError(err)
	}

	finished, err := s.storage.GetMatch(s.ctx, match.ID)
	s.Require().NoError(err)
	s.Require().Equal(model.MatchStatusFinished, finished.Status)
	return finished
}

func (s *ControllerSuite) TestBestOfFiveFinishesAtThreeWins() {
	match := s.playBestOfFive()

	s.Equal(3, match.Player1Score)
	s.Equal(0, match.Player2Score)
	s.Equal(model.HumanParticipant("alice"), match.Winner)

	alice := s.user("alice")
	s.Equal(1, alice.GamesPlayed)
	s.Equal(1, alice.Wins)
	s.Equal(0, alice.Losses)

	bob := s.user("bob")
	s.Equal(1, bob.GamesPlayed)
	s.Equal(0, bob.Wins)
	s.Equal(1, bob.Losses)
}

func (s *ControllerSuite) TestStatsAppliedExactlyOnce() {
	match := s.playBestOfFive()

	// A late submission cannot re-trigger the finish transition
	_, err := s.controller.SubmitChoice(s.ctx, match.ID, "bob", model.ChoiceRock)
	s.ErrorIs(err, model.ErrMatchAlreadyDecided)

	alice := s.user("alice")
	s.Equal(1, alice.GamesPlayed)
	s.Equal(1, alice.Wins)
}

func (s *ControllerSuite) TestMixedSeriesScoring() {
	match := s.createPlayingMatch()

	plays := []struct {
		alice, bob model.Choice
	}{
		{model.ChoiceRock, model.ChoiceScissors},  // alice 1-0
		{model.ChoicePaper, model.ChoiceScissors}, // 1-1
		{model.ChoiceRock, model.ChoiceRock},      // tie, 1-1
		{model.ChoiceScissors, model.ChoicePaper}, // 2-1
		{model.ChoicePaper, model.ChoiceRock},     // 3-1, finished
	}

	var result *PlayResult
	for _, p := range plays {
		var err error
		_, err = s.controller.SubmitChoice(s.ctx, match.ID, "alice", p.alice)
		s.Require().NoError(err)
		result, err = s.controller.SubmitChoice(s.ctx, match.ID, "bob", p.bob)
		s.Require().NoError(err)
	}

	s.True(result.MatchFinished)
	s.Equal(3, result.Match.Player1Score)
	s.Equal(1, result.Match.Player2Score)
	s.Equal(model.HumanParticipant("alice"), result.Match.Winner)

	// Five rounds played, numbered 1..5
	matchRounds, err := s.controller.Rounds(s.ctx, match.ID)
	s.Require().NoError(err)
	s.Require().Len(matchRounds, 5)
	s.Equal(5, matchRounds[4].Number)
}

// Machine matches

func (s *ControllerSuite) TestMachineMatchResolvesSynchronously() {
	s.addUser("alice")

	match, err := s.controller.Create(s.ctx, "alice", true)
	s.Require().NoError(err)

	// Machine plays scissors (index 2)
	s.random.QueueIntn(2)

	result, err := s.controller.SubmitChoice(s.ctx, match.ID, "alice", model.ChoiceRock)
	s.Require().NoError(err)
	s.Equal(PlayStateResolved, result.State)
	s.Equal(model.ChoiceScissors, *result.Round.Player2Choice)
	s.Equal(model.RoundWinnerPlayer1, result.Round.Winner)
	s.Equal(1, result.Match.Player1Score)
}

func (s *ControllerSuite) TestMachineMatchFullSeries() {
	s.addUser("alice")

	match, err := s.controller.Create(s.ctx, "alice", true)
	s.Require().NoError(err)

	// Machine plays scissors every round; alice plays rock
	s.random.QueueIntn(2, 2, 2)

	var result *PlayResult
	for i := 0; i < model.WinningScore; i++ {
		result, err = s.controller.SubmitChoice(s.ctx, match.ID, "alice", model.ChoiceRock)
		s.Require().NoError(err)
	}

	s.True(result.MatchFinished)
	s.Equal(model.MachineParticipant(), result.Match.Player2)
	s.Equal(model.HumanParticipant("alice"), result.Match.Winner)

	// Machine has no stat record; alice's stats are applied
	alice := s.user("alice")
	s.Equal(1, alice.GamesPlayed)
	s.Equal(1, alice.Wins)
}

func (s *ControllerSuite) TestMachineMatchMachineWins() {
	s.addUser("alice")

	match, err := s.controller.Create(s.ctx, "alice", true)
	s.Require().NoError(err)

	// Machine plays paper against rock three times
	s.random.QueueIntn(1, 1, 1)

	var result *PlayResult
	for i := 0; i < model.WinningScore; i++ {
		result, err = s.controller.SubmitChoice(s.ctx, match.ID, "alice", model.ChoiceRock)
		s.Require().NoError(err)
	}

	s.True(result.MatchFinished)
	s.Equal(model.MachineParticipant(), result.Match.Winner)

	alice := s.user("alice")
	s.Equal(1, alice.GamesPlayed)
	s.Equal(1, alice.Losses)
}

// Abandon

func (s *ControllerSuite) TestAbandonWaitingMatch() {
	s.addUser("alice")

	match, err := s.controller.Create(s.ctx, "alice", false)
	s.Require().NoError(err)

	abandoned, err := s.controller.Abandon(s.ctx, match.ID, "alice")
	s.Require().NoError(err)
	s.Equal(model.MatchStatusAbandoned, abandoned.Status)
	s.True(abandoned.Winner.IsZero())

	// The abandoning user takes the loss even with no opponent yet
	alice := s.user("alice")
	s.Equal(1, alice.GamesPlayed)
	s.Equal(1, alice.Losses)

	// The slot is free again
	_, err = s.controller.Create(s.ctx, "alice", false)
	s.Require().NoError(err)
}

func (s *ControllerSuite) TestAbandonPlayingMatchAwardsOpponent() {
	match := s.createPlayingMatch()

	abandoned, err := s.controller.Abandon(s.ctx, match.ID, "alice")
	s.Require().NoError(err)
	s.Equal(model.MatchStatusAbandoned, abandoned.Status)
	s.Equal(model.HumanParticipant("bob"), abandoned.Winner)

	alice := s.user("alice")
	s.Equal(1, alice.GamesPlayed)
	s.Equal(1, alice.Losses)

	bob := s.user("bob")
	s.Equal(1, bob.GamesPlayed)
	s.Equal(1, bob.Wins)
}

func (s *ControllerSuite) TestAbandonMachineMatchNoWinner() {
	s.addUser("alice")

	match, err := s.controller.Create(s.ctx, "alice", true)
	s.Require().NoError(err)

	abandoned, err := s.controller.Abandon(s.ctx, match.ID, "alice")
	s.Require().NoError(err)
	s.Equal(model.MatchStatusAbandoned, abandoned.Status)
	s.True(abandoned.Winner.IsZero())

	alice := s.user("alice")
	s.Equal(1, alice.GamesPlayed)
	s.Equal(1, alice.Losses)
}

func (s *ControllerSuite) TestAbandonTerminalMatchIsNoOp() {
	match := s.playBestOfFive()

	abandoned, err := s.controller.Abandon(s.ctx, match.ID, "alice")
	s.Require().NoError(err)
	s.Equal(model.MatchStatusFinished, abandoned.Status)

	// No extra stats
	alice := s.user("alice")
	s.Equal(1, alice.GamesPlayed)
}

func (s *ControllerSuite) TestAbandonNonParticipantRejected() {
	match := s.createPlayingMatch()
	s.addUser("carol")

	_, err := s.controller.Abandon(s.ctx, match.ID, "carol")
	s.ErrorIs(err, model.ErrNotParticipant)
}

// Queries

func (s *ControllerSuite) TestMatchForUser() {
	match := s.createPlayingMatch()

	active, err := s.controller.MatchForUser(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal(match.ID, active.ID)

	_, err = s.controller.MatchForUser(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrNoActiveMatch)
}

func (s *ControllerSuite) TestListOpenExcludesMachineMatches() {
	s.addUser("alice")
	s.addUser("bob")

	_, err := s.controller.Create(s.ctx, "alice", true)
	s.Require().NoError(err)
	waiting, err := s.controller.Create(s.ctx, "bob", false)
	s.Require().NoError(err)

	open, err := s.controller.ListOpen(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(open, 1)
	s.Equal(waiting.ID, open[0].ID)
}
