package storage

import (
	"context"

	"github.com/rpsarena/rps-arena-go/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	// TopUsers returns up to limit users ordered by win rate descending,
	// ties broken by absolute wins descending.
	TopUsers(ctx context.Context, limit int) ([]*model.User, error)

	// Credential operations
	SaveCredentials(ctx context.Context, creds *model.Credentials) error
	GetCredentialsByUsername(ctx context.Context, username string) (*model.Credentials, error)

	// Match operations
	SaveMatch(ctx context.Context, match *model.Match) error
	GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error)
	// GetActiveMatchForUser returns the user's waiting or playing match,
	// or model.ErrNoActiveMatch if they have none.
	GetActiveMatchForUser(ctx context.Context, userID model.UserID) (*model.Match, error)
	// ListWaitingMatches returns joinable matches, newest first.
	ListWaitingMatches(ctx context.Context) ([]*model.Match, error)

	// Round operations
	SaveRound(ctx context.Context, round *model.Round) error
	// GetRoundsForMatch returns the match's rounds ordered by number ascending.
	GetRoundsForMatch(ctx context.Context, matchID model.MatchID) ([]*model.Round, error)
}
