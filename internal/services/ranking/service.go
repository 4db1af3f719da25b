package ranking

import (
	"context"
	"log/slog"

	"github.com/rpsarena/rps-arena-go/internal/model"
	"github.com/rpsarena/rps-arena-go/internal/storage"
)

// DefaultLimit is the size of the global leaderboard
const DefaultLimit = 10

// Entry is one leaderboard row
type Entry struct {
	Rank        int          `json:"rank"`
	UserID      model.UserID `json:"userId"`
	Username    string       `json:"username"`
	Wins        int          `json:"wins"`
	Losses      int          `json:"losses"`
	GamesPlayed int          `json:"gamesPlayed"`
	WinRate     float64      `json:"winRate"`
}

// Service produces the global ranking
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new ranking Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// TopPlayers returns the leaderboard, ordered by win rate then wins
func (s *Service) TopPlayers(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	users, err := s.storage.TopUsers(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(users))
	for i, user := range users {
		entries = append(entries, Entry{
			Rank:        i + 1,
			UserID:      user.ID,
			Username:    user.Username,
			Wins:        user.Wins,
			Losses:      user.Losses,
			GamesPlayed: user.GamesPlayed,
			WinRate:     user.WinRate(),
		})
	}
	return entries, nil
}
