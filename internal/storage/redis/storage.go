package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rpsarena/rps-arena-go/internal/model"
	"github.com/rpsarena/rps-arena-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	// Pipeline the record, the username index and the all-users set
	pipe := s.client.Pipeline()
	pipe.Set(ctx, userKey(user.ID), data, 0)
	pipe.Set(ctx, usernameIndexKey(user.Username), string(user.ID), 0)
	pipe.SAdd(ctx, usersIndexKey(), string(user.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	userIDStr, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	return s.GetUser(ctx, model.UserID(userIDStr))
}

func (s *Storage) TopUsers(ctx context.Context, limit int) ([]*model.User, error) {
	ids, err := s.client.SMembers(ctx, usersIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	users := make([]*model.User, 0, len(ids))
	for _, id := range ids {
		user, err := s.GetUser(ctx, model.UserID(id))
		if err != nil {
			if errors.Is(err, model.ErrUserNotFound) {
				continue
			}
			return nil, err
		}
		users = append(users, user)
	}

	return storage.RankUsers(users, limit), nil
}

// Credential operations

// credentialsRecord is the stored shape of model.Credentials. The model
// excludes the hash from its JSON form, so the record carries it explicitly.
type credentialsRecord struct {
	UserID       model.UserID `json:"userId"`
	Username     string       `json:"username"`
	PasswordHash string       `json:"passwordHash"`
	CreatedAt    time.Time    `json:"createdAt"`
}

func (s *Storage) SaveCredentials(ctx context.Context, creds *model.Credentials) error {
	data, err := json.Marshal(credentialsRecord{
		UserID:       creds.UserID,
		Username:     creds.Username,
		PasswordHash: creds.PasswordHash,
		CreatedAt:    creds.CreatedAt,
	})
	if err != nil {
		return err
	}

	return s.client.Set(ctx, credentialsKey(creds.Username), data, 0).Err()
}

func (s *Storage) GetCredentialsByUsername(ctx context.Context, username string) (*model.Credentials, error) {
	data, err := s.client.Get(ctx, credentialsKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var record credentialsRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &model.Credentials{
		UserID:       record.UserID,
		Username:     record.Username,
		PasswordHash: record.PasswordHash,
		CreatedAt:    record.CreatedAt,
	}, nil
}

// Match operations

func (s *Storage) SaveMatch(ctx context.Context, match *model.Match) error {
	data, err := json.Marshal(match)
	if err != nil {
		return err
	}

	// Pipeline the record plus the active-match and waiting indexes so a
	// status change and its index updates land together
	pipe := s.client.Pipeline()
	pipe.Set(ctx, matchKey(match.ID), data, s.cfg.MatchTTL)

	if match.Active() {
		pipe.Set(ctx, activeMatchIndexKey(match.Player1), string(match.ID), s.cfg.MatchTTL)
		if match.Player2.IsHuman() {
			pipe.Set(ctx, activeMatchIndexKey(match.Player2.UserID), string(match.ID), s.cfg.MatchTTL)
		}
	} else {
		pipe.Del(ctx, activeMatchIndexKey(match.Player1))
		if match.Player2.IsHuman() {
			pipe.Del(ctx, activeMatchIndexKey(match.Player2.UserID))
		}
	}

	if match.Status == model.MatchStatusWaiting {
		pipe.SAdd(ctx, waitingMatchesIndexKey(), string(match.ID))
	} else {
		pipe.SRem(ctx, waitingMatchesIndexKey(), string(match.ID))
	}

	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	data, err := s.client.Get(ctx, matchKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrMatchNotFound
		}
		return nil, err
	}

	var match model.Match
	if err := json.Unmarshal(data, &match); err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *Storage) GetActiveMatchForUser(ctx context.Context, userID model.UserID) (*model.Match, error) {
	matchIDStr, err := s.client.Get(ctx, activeMatchIndexKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrNoActiveMatch
		}
		return nil, err
	}

	match, err := s.GetMatch(ctx, model.MatchID(matchIDStr))
	if err != nil {
		if errors.Is(err, model.ErrMatchNotFound) {
			return nil, model.ErrNoActiveMatch
		}
		return nil, err
	}
	if !match.Active() {
		return nil, model.ErrNoActiveMatch
	}
	return match, nil
}

func (s *Storage) ListWaitingMatches(ctx context.Context) ([]*model.Match, error) {
	ids, err := s.client.SMembers(ctx, waitingMatchesIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	matches := make([]*model.Match, 0, len(ids))
	for _, id := range ids {
		match, err := s.GetMatch(ctx, model.MatchID(id))
		if err != nil {
			if errors.Is(err, model.ErrMatchNotFound) {
				// Expired entry still in the index
				continue
			}
			return nil, err
		}
		if match.Status != model.MatchStatusWaiting {
			continue
		}
		matches = append(matches, match)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

// Round operations

func (s *Storage) SaveRound(ctx context.Context, round *model.Round) error {
	data, err := json.Marshal(round)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, roundKey(round.MatchID, round.Number), data, s.cfg.MatchTTL)
	pipe.SAdd(ctx, roundsForMatchIndexKey(round.MatchID), round.Number)
	pipe.Expire(ctx, roundsForMatchIndexKey(round.MatchID), s.cfg.MatchTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRoundsForMatch(ctx context.Context, matchID model.MatchID) ([]*model.Round, error) {
	numbers, err := s.client.SMembers(ctx, roundsForMatchIndexKey(matchID)).Result()
	if err != nil {
		return nil, err
	}

	rounds := make([]*model.Round, 0, len(numbers))
	for _, n := range numbers {
		number, err := strconv.Atoi(n)
		if err != nil {
			continue
		}

		data, err := s.client.Get(ctx, roundKey(matchID, number)).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, err
		}

		var round model.Round
		if err := json.Unmarshal(data, &round); err != nil {
			return nil, err
		}
		rounds = append(rounds, &round)
	}

	sort.Slice(rounds, func(i, j int) bool {
		return rounds[i].Number < rounds[j].Number
	})
	return rounds, nil
}
