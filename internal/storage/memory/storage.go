package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/rpsarena/rps-arena-go/internal/model"
	"github.com/rpsarena/rps-arena-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Records are copied on save and on read so callers can mutate their
// working copy freely; nothing becomes visible until the next save.
type Storage struct {
	mu sync.RWMutex

	users         map[model.UserID]*model.User
	usernameIndex map[string]model.UserID
	credentials   map[string]*model.Credentials
	matches       map[model.MatchID]*model.Match
	rounds        map[model.MatchID][]*model.Round
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:         make(map[model.UserID]*model.User),
		usernameIndex: make(map[string]model.UserID),
		credentials:   make(map[string]*model.Credentials),
		matches:       make(map[model.MatchID]*model.Match),
		rounds:        make(map[model.MatchID][]*model.Round),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = copyUser(user)
	s.usernameIndex[user.Username] = user.ID
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return copyUser(user), nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return copyUser(user), nil
}

func (s *Storage) TopUsers(ctx context.Context, limit int) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, copyUser(u))
	}
	return storage.RankUsers(users, limit), nil
}

// Credential operations

func (s *Storage) SaveCredentials(ctx context.Context, creds *model.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *creds
	s.credentials[creds.Username] = &c
	return nil
}

func (s *Storage) GetCredentialsByUsername(ctx context.Context, username string) (*model.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	creds, ok := s.credentials[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	c := *creds
	return &c, nil
}

// Match operations

func (s *Storage) SaveMatch(ctx context.Context, match *model.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := *match
	s.matches[match.ID] = &m
	return nil
}

func (s *Storage) GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	match, ok := s.matches[id]
	if !ok {
		return nil, model.ErrMatchNotFound
	}
	m := *match
	return &m, nil
}

func (s *Storage) GetActiveMatchForUser(ctx context.Context, userID model.UserID) (*model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, match := range s.matches {
		if match.Active() && match.HasParticipant(userID) {
			m := *match
			return &m, nil
		}
	}
	return nil, model.ErrNoActiveMatch
}

func (s *Storage) ListWaitingMatches(ctx context.Context) ([]*model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := make([]*model.Match, 0)
	for _, match := range s.matches {
		if match.Status == model.MatchStatusWaiting {
			m := *match
			matches = append(matches, &m)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

// Round operations

func (s *Storage) SaveRound(ctx context.Context, round *model.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rounds := s.rounds[round.MatchID]
	for i, r := range rounds {
		if r.Number == round.Number {
			rounds[i] = copyRound(round)
			return nil
		}
	}
	s.rounds[round.MatchID] = append(rounds, copyRound(round))
	return nil
}

func (s *Storage) GetRoundsForMatch(ctx context.Context, matchID model.MatchID) ([]*model.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.rounds[matchID]
	rounds := make([]*model.Round, 0, len(stored))
	for _, r := range stored {
		rounds = append(rounds, copyRound(r))
	}
	sort.Slice(rounds, func(i, j int) bool {
		return rounds[i].Number < rounds[j].Number
	})
	return rounds, nil
}

func copyUser(u *model.User) *model.User {
	c := *u
	return &c
}

func copyRound(r *model.Round) *model.Round {
	c := *r
	if r.Player1Choice != nil {
		ch := *r.Player1Choice
		c.Player1Choice = &ch
	}
	if r.Player2Choice != nil {
		ch := *r.Player2Choice
		c.Player2Choice = &ch
	}
	return &c
}
