package rounds

import (
	"context"
	"log/slog"

	"github.com/rpsarena/rps-arena-go/internal/model"
	"github.com/rpsarena/rps-arena-go/internal/storage"
)

// Ledger manages the ordered history of rounds within a match: finding
// the round currently accepting choices, opening the next one, and
// recording choices exactly once per slot.
type Ledger struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewLedger creates a new round Ledger
func NewLedger(storage storage.Storage, logger *slog.Logger) *Ledger {
	return &Ledger{
		storage: storage,
		logger:  logger,
	}
}

// FindOpenRound returns the earliest round still missing a choice, or
// (nil, nil) when every stored round is complete.
func (l *Ledger) FindOpenRound(ctx context.Context, matchID model.MatchID) (*model.Round, error) {
	rounds, err := l.storage.GetRoundsForMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	for _, round := range rounds {
		if round.Open() {
			return round, nil
		}
	}
	return nil, nil
}

// OpenOrCreateRound returns the open round, creating the next one when
// all stored rounds are complete. New rounds are numbered by completed
// count plus one, keeping the sequence gapless and 1-based.
func (l *Ledger) OpenOrCreateRound(ctx context.Context, matchID model.MatchID) (*model.Round, error) {
	rounds, err := l.storage.GetRoundsForMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	completed := 0
	for _, round := range rounds {
		if round.Open() {
			return round, nil
		}
		completed++
	}

	round := &model.Round{
		MatchID: matchID,
		Number:  completed + 1,
	}
	if err := l.storage.SaveRound(ctx, round); err != nil {
		return nil, err
	}

	l.logger.Debug("round opened",
		slog.String("match_id", string(matchID)),
		slog.Int("number", round.Number),
	)

	return round, nil
}

// RecordChoice writes a choice into the round's slot and persists it.
// A slot that already holds a choice is never overwritten.
func (l *Ledger) RecordChoice(ctx context.Context, round *model.Round, slot model.Slot, choice model.Choice) error {
	if round.ChoiceFor(slot) != nil {
		return model.ErrAlreadyPlayed
	}

	round.SetChoice(slot, choice)
	return l.storage.SaveRound(ctx, round)
}

// RoundsForMatch returns the match's full round history, ordered by number
func (l *Ledger) RoundsForMatch(ctx context.Context, matchID model.MatchID) ([]*model.Round, error) {
	return l.storage.GetRoundsForMatch(ctx, matchID)
}
