package match

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/rpsarena/rps-arena-go/internal/dependencies/clock"
	"github.com/rpsarena/rps-arena-go/internal/dependencies/random"
	"github.com/rpsarena/rps-arena-go/internal/model"
	"github.com/rpsarena/rps-arena-go/internal/services/rounds"
	"github.com/rpsarena/rps-arena-go/internal/storage"
)

// MatchIDLength and MatchIDAlphabet define generated match ids
const (
	MatchIDLength   = 12
	MatchIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// PlayState says whether a submitted choice resolved the round or left
// it waiting for the opponent
type PlayState string

const (
	PlayStatePending  PlayState = "pending"
	PlayStateResolved PlayState = "resolved"
)

// PlayResult is the outcome of a choice submission
type PlayResult struct {
	State PlayState
	Match *model.Match
	Round *model.Round
	// MatchFinished is set when this round pushed a score to the winning
	// threshold
	MatchFinished bool
}

// Controller manages the match lifecycle: creation, joining, choice
// submission and abandonment. All mutations of one match are serialized
// behind a per-match lock; the registry lock makes the
// one-active-match-per-user check atomic with the write that relies on it.
type Controller struct {
	storage storage.Storage
	ledger  *rounds.Ledger
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	// registryMu serializes create/join admission checks
	registryMu sync.Mutex

	// locksMu guards the keyed per-match lock table
	locksMu sync.Mutex
	locks   map[model.MatchID]*sync.Mutex
}

// NewController creates a new match Controller
func NewController(
	storage storage.Storage,
	ledger *rounds.Ledger,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		ledger:  ledger,
		clock:   clock,
		random:  random,
		logger:  logger,
		locks:   make(map[model.MatchID]*sync.Mutex),
	}
}

// matchLock returns the mutex serializing mutations of the given match
func (c *Controller) matchLock(id model.MatchID) *sync.Mutex {
	c.locksMu.Lock()
	defer c.locksMu.Unlock()
	lock, ok := c.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[id] = lock
	}
	return lock
}

// ensureNoActiveMatch rejects users who already have a waiting or
// playing match. Callers hold registryMu.
func (c *Controller) ensureNoActiveMatch(ctx context.Context, userID model.UserID) error {
	_, err := c.storage.GetActiveMatchForUser(ctx, userID)
	if err == nil {
		return model.ErrAlreadyActive
	}
	if !errors.Is(err, model.ErrNoActiveMatch) {
		return err
	}
	return nil
}

// Create opens a new match for the user. Machine matches start playing
// immediately; human matches wait for an opponent.
func (c *Controller) Create(ctx context.Context, userID model.UserID, vsMachine bool) (*model.Match, error) {
	if _, err := c.storage.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	c.registryMu.Lock()
	defer c.registryMu.Unlock()

	if err := c.ensureNoActiveMatch(ctx, userID); err != nil {
		return nil, err
	}

	now := c.clock.Now()
	match := &model.Match{
		ID:        model.MatchID(c.random.String(MatchIDLength, MatchIDAlphabet)),
		Player1:   userID,
		Status:    model.MatchStatusWaiting,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if vsMachine {
		match.Player2 = model.MachineParticipant()
		match.Status = model.MatchStatusPlaying
	}

	if err := c.storage.SaveMatch(ctx, match); err != nil {
		c.logger.Error("failed to save match",
			slog.String("match_id", string(match.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("match created",
		slog.String("match_id", string(match.ID)),
		slog.String("user_id", string(userID)),
		slog.Bool("vs_machine", vsMachine),
	)

	return match, nil
}

// Join takes the open slot in a waiting match and starts play
func (c *Controller) Join(ctx context.Context, matchID model.MatchID, userID model.UserID) (*model.Match, error) {
	if _, err := c.storage.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	c.registryMu.Lock()
	defer c.registryMu.Unlock()

	lock := c.matchLock(matchID)
	lock.Lock()
	defer lock.Unlock()

	match, err := c.storage.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if match.Status != model.MatchStatusWaiting {
		return nil, model.ErrMatchNotWaiting
	}
	if match.Player1 == userID {
		return nil, model.ErrSelfJoin
	}
	if err := c.ensureNoActiveMatch(ctx, userID); err != nil {
		return nil, err
	}

	match.Player2 = model.HumanParticipant(userID)
	match.Status = model.MatchStatusPlaying
	match.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveMatch(ctx, match); err != nil {
		return nil, err
	}

	c.logger.Info("match joined",
		slog.String("match_id", string(matchID)),
		slog.String("user_id", string(userID)),
	)

	return match, nil
}

// SubmitChoice records the user's choice for the current round. Against
// the machine, the machine's reply is generated and recorded in the same
// step, so the round always resolves synchronously.
func (c *Controller) SubmitChoice(ctx context.Context, matchID model.MatchID, userID model.UserID, choice model.Choice) (*PlayResult, error) {
	if _, err := model.ParseChoice(string(choice)); err != nil {
		return nil, err
	}

	lock := c.matchLock(matchID)
	lock.Lock()
	defer lock.Unlock()

	match, err := c.storage.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if match.Status == model.MatchStatusFinished || match.Status == model.MatchStatusAbandoned {
		return nil, model.ErrMatchAlreadyDecided
	}
	if match.Status != model.MatchStatusPlaying {
		return nil, model.ErrMatchNotPlaying
	}

	slot, ok := match.SlotOf(userID)
	if !ok {
		return nil, model.ErrNotParticipant
	}

	round, err := c.ledger.OpenOrCreateRound(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if err := c.ledger.RecordChoice(ctx, round, slot, choice); err != nil {
		return nil, err
	}

	// The machine answers within the same step
	if match.IsMachine() && round.ChoiceFor(model.Slot2) == nil {
		if err := c.ledger.RecordChoice(ctx, round, model.Slot2, c.machineChoice()); err != nil {
			return nil, err
		}
	}

	if !round.Complete() {
		return &PlayResult{
			State: PlayStatePending,
			Match: match,
			Round: round,
		}, nil
	}

	return c.resolveRound(ctx, match, round)
}

// resolveRound scores a complete round and finishes the match when a
// side reaches the winning score. Callers hold the match lock.
func (c *Controller) resolveRound(ctx context.Context, match *model.Match, round *model.Round) (*PlayResult, error) {
	switch model.Resolve(*round.Player1Choice, *round.Player2Choice) {
	case model.OutcomeFirstWins:
		round.Winner = model.RoundWinnerPlayer1
		match.Player1Score++
	case model.OutcomeSecondWins:
		round.Winner = model.RoundWinnerPlayer2
		match.Player2Score++
	default:
		round.Winner = model.RoundWinnerTie
	}

	if err := c.storage.SaveRound(ctx, round); err != nil {
		return nil, err
	}

	match.UpdatedAt = c.clock.Now()
	finished := match.Decided()
	winnerSlot := model.Slot1
	if match.Player2Score >= model.WinningScore {
		winnerSlot = model.Slot2
	}
	if finished {
		match.Winner = match.ParticipantIn(winnerSlot)
		match.Status = model.MatchStatusFinished
	}

	if err := c.storage.SaveMatch(ctx, match); err != nil {
		return nil, err
	}

	if finished {
		if err := c.applyStats(ctx, match.Winner, match.ParticipantIn(winnerSlot.Other())); err != nil {
			return nil, err
		}

		c.logger.Info("match finished",
			slog.String("match_id", string(match.ID)),
			slog.Int("player1_score", match.Player1Score),
			slog.Int("player2_score", match.Player2Score),
		)
	}

	return &PlayResult{
		State:         PlayStateResolved,
		Match:         match,
		Round:         round,
		MatchFinished: finished,
	}, nil
}

// machineChoice picks the machine's play uniformly
func (c *Controller) machineChoice() model.Choice {
	return model.Choices[c.random.Intn(len(model.Choices))]
}

// Abandon ends the match immediately. The abandoning user takes the
// loss; a human opponent takes the win. Machine matches and matches
// still waiting for an opponent end with no winner. Abandoning an
// already terminal match is a no-op.
func (c *Controller) Abandon(ctx context.Context, matchID model.MatchID, userID model.UserID) (*model.Match, error) {
	lock := c.matchLock(matchID)
	lock.Lock()
	defer lock.Unlock()

	match, err := c.storage.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if !match.HasParticipant(userID) {
		return nil, model.ErrNotParticipant
	}

	if !match.Active() {
		return match, nil
	}

	slot, _ := match.SlotOf(userID)
	opponent := match.ParticipantIn(slot.Other())

	match.Status = model.MatchStatusAbandoned
	if opponent.IsHuman() {
		match.Winner = opponent
	}
	match.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveMatch(ctx, match); err != nil {
		return nil, err
	}

	if err := c.applyStats(ctx, opponent, model.HumanParticipant(userID)); err != nil {
		return nil, err
	}

	c.logger.Info("match abandoned",
		slog.String("match_id", string(matchID)),
		slog.String("user_id", string(userID)),
	)

	return match, nil
}

// applyStats records the outcome on each human participant's lifetime
// record. It runs once, on the transition into a terminal status.
func (c *Controller) applyStats(ctx context.Context, winner, loser model.Participant) error {
	if winner.IsHuman() {
		user, err := c.storage.GetUser(ctx, winner.UserID)
		if err != nil {
			return err
		}
		user.GamesPlayed++
		user.Wins++
		if err := c.storage.SaveUser(ctx, user); err != nil {
			return err
		}
	}

	if loser.IsHuman() {
		user, err := c.storage.GetUser(ctx, loser.UserID)
		if err != nil {
			return err
		}
		user.GamesPlayed++
		user.Losses++
		if err := c.storage.SaveUser(ctx, user); err != nil {
			return err
		}
	}

	return nil
}

// Get retrieves a match by id
func (c *Controller) Get(ctx context.Context, matchID model.MatchID) (*model.Match, error) {
	return c.storage.GetMatch(ctx, matchID)
}

// MatchForUser returns the user's current waiting or playing match
func (c *Controller) MatchForUser(ctx context.Context, userID model.UserID) (*model.Match, error) {
	return c.storage.GetActiveMatchForUser(ctx, userID)
}

// ListOpen returns joinable matches, newest first
func (c *Controller) ListOpen(ctx context.Context) ([]*model.Match, error) {
	return c.storage.ListWaitingMatches(ctx)
}

// Rounds returns the match's round history
func (c *Controller) Rounds(ctx context.Context, matchID model.MatchID) ([]*model.Round, error) {
	return c.ledger.RoundsForMatch(ctx, matchID)
}

// ControllerInterface defines the match controller operations
type ControllerInterface interface {
	Create(ctx context.Context, userID model.UserID, vsMachine bool) (*model.Match, error)
	Join(ctx context.Context, matchID model.MatchID, userID model.UserID) (*model.Match, error)
	SubmitChoice(ctx context.Context, matchID model.MatchID, userID model.UserID, choice model.Choice) (*PlayResult, error)
	Abandon(ctx context.Context, matchID model.MatchID, userID model.UserID) (*model.Match, error)
	Get(ctx context.Context, matchID model.MatchID) (*model.Match, error)
	MatchForUser(ctx context.Context, userID model.UserID) (*model.Match, error)
	ListOpen(ctx context.Context) ([]*model.Match, error)
	Rounds(ctx context.Context, matchID model.MatchID) ([]*model.Round, error)
}

var _ ControllerInterface = (*Controller)(nil)
