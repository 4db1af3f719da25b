package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rpsarena/rps-arena-go/internal/model"
	"github.com/rpsarena/rps-arena-go/internal/storage"
)

// Storage is a Postgres-backed implementation of the storage interface,
// using GORM for schema management and queries.
type Storage struct {
	db *gorm.DB
}

// New connects to Postgres and migrates the schema
func New(dsn string) (*Storage, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&userRecord{}, &credentialsRecord{}, &matchRecord{}, &roundRecord{}); err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

// NewWithDB creates a Postgres storage with an existing connection (for testing)
func NewWithDB(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

// Close closes the underlying connection pool
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Record types

type userRecord struct {
	ID          string `gorm:"primaryKey"`
	Username    string `gorm:"uniqueIndex"`
	Wins        int
	Losses      int
	GamesPlayed int
	CreatedAt   time.Time
}

func (userRecord) TableName() string { return "users" }

type credentialsRecord struct {
	Username     string `gorm:"primaryKey"`
	UserID       string `gorm:"index"`
	PasswordHash string
	CreatedAt    time.Time
}

func (credentialsRecord) TableName() string { return "credentials" }

type matchRecord struct {
	ID             string `gorm:"primaryKey"`
	Player1ID      string `gorm:"index"`
	Player2ID      string `gorm:"index"`
	Player2Machine bool
	Status         string `gorm:"index"`
	Player1Score   int
	Player2Score   int
	WinnerUserID   string
	WinnerMachine  bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (matchRecord) TableName() string { return "matches" }

type roundRecord struct {
	MatchID       string `gorm:"primaryKey"`
	Number        int    `gorm:"primaryKey"`
	Player1Choice string
	Player2Choice string
	Winner        string
}

func (roundRecord) TableName() string { return "rounds" }

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	record := userRecord{
		ID:          string(user.ID),
		Username:    user.Username,
		Wins:        user.Wins,
		Losses:      user.Losses,
		GamesPlayed: user.GamesPlayed,
		CreatedAt:   user.CreatedAt,
	}
	return s.db.WithContext(ctx).Save(&record).Error
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	var record userRecord
	err := s.db.WithContext(ctx).First(&record, "id = ?", string(id)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return userFromRecord(&record), nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var record userRecord
	err := s.db.WithContext(ctx).First(&record, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return userFromRecord(&record), nil
}

func (s *Storage) TopUsers(ctx context.Context, limit int) ([]*model.User, error) {
	var records []userRecord
	err := s.db.WithContext(ctx).
		Order("(wins::float / GREATEST(games_played, 1)) DESC, wins DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	users := make([]*model.User, 0, len(records))
	for i := range records {
		users = append(users, userFromRecord(&records[i]))
	}
	return users, nil
}

// Credential operations

func (s *Storage) SaveCredentials(ctx context.Context, creds *model.Credentials) error {
	record := credentialsRecord{
		Username:     creds.Username,
		UserID:       string(creds.UserID),
		PasswordHash: creds.PasswordHash,
		CreatedAt:    creds.CreatedAt,
	}
	return s.db.WithContext(ctx).Save(&record).Error
}

func (s *Storage) GetCredentialsByUsername(ctx context.Context, username string) (*model.Credentials, error) {
	var record credentialsRecord
	err := s.db.WithContext(ctx).First(&record, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return &model.Credentials{
		UserID:       model.UserID(record.UserID),
		Username:     record.Username,
		PasswordHash: record.PasswordHash,
		CreatedAt:    record.CreatedAt,
	}, nil
}

// Match operations

func (s *Storage) SaveMatch(ctx context.Context, match *model.Match) error {
	record := matchRecord{
		ID:             string(match.ID),
		Player1ID:      string(match.Player1),
		Player2ID:      string(match.Player2.UserID),
		Player2Machine: match.Player2.Machine,
		Status:         string(match.Status),
		Player1Score:   match.Player1Score,
		Player2Score:   match.Player2Score,
		WinnerUserID:   string(match.Winner.UserID),
		WinnerMachine:  match.Winner.Machine,
		CreatedAt:      match.CreatedAt,
		UpdatedAt:      match.UpdatedAt,
	}
	return s.db.WithContext(ctx).Save(&record).Error
}

func (s *Storage) GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	var record matchRecord
	err := s.db.WithContext(ctx).First(&record, "id = ?", string(id)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrMatchNotFound
		}
		return nil, err
	}
	return matchFromRecord(&record), nil
}

func (s *Storage) GetActiveMatchForUser(ctx context.Context, userID model.UserID) (*model.Match, error) {
	var record matchRecord
	err := s.db.WithContext(ctx).
		Where("status IN ?", []string{string(model.MatchStatusWaiting), string(model.MatchStatusPlaying)}).
		Where("player1_id = ? OR player2_id = ?", string(userID), string(userID)).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNoActiveMatch
		}
		return nil, err
	}
	return matchFromRecord(&record), nil
}

func (s *Storage) ListWaitingMatches(ctx context.Context) ([]*model.Match, error) {
	var records []matchRecord
	err := s.db.WithContext(ctx).
		Where("status = ?", string(model.MatchStatusWaiting)).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	matches := make([]*model.Match, 0, len(records))
	for i := range records {
		matches = append(matches, matchFromRecord(&records[i]))
	}
	return matches, nil
}

// Round operations

func (s *Storage) SaveRound(ctx context.Context, round *model.Round) error {
	record := roundRecord{
		MatchID: string(round.MatchID),
		Number:  round.Number,
		Winner:  string(round.Winner),
	}
	if round.Player1Choice != nil {
		record.Player1Choice = string(*round.Player1Choice)
	}
	if round.Player2Choice != nil {
		record.Player2Choice = string(*round.Player2Choice)
	}
	return s.db.WithContext(ctx).Save(&record).Error
}

func (s *Storage) GetRoundsForMatch(ctx context.Context, matchID model.MatchID) ([]*model.Round, error) {
	var records []roundRecord
	err := s.db.WithContext(ctx).
		Where("match_id = ?", string(matchID)).
		Order("number ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	rounds := make([]*model.Round, 0, len(records))
	for i := range records {
		rounds = append(rounds, roundFromRecord(&records[i]))
	}
	return rounds, nil
}

// Mapping helpers

func userFromRecord(r *userRecord) *model.User {
	return &model.User{
		ID:          model.UserID(r.ID),
		Username:    r.Username,
		Wins:        r.Wins,
		Losses:      r.Losses,
		GamesPlayed: r.GamesPlayed,
		CreatedAt:   r.CreatedAt,
	}
}

func matchFromRecord(r *matchRecord) *model.Match {
	return &model.Match{
		ID:           model.MatchID(r.ID),
		Player1:      model.UserID(r.Player1ID),
		Player2:      model.Participant{UserID: model.UserID(r.Player2ID), Machine: r.Player2Machine},
		Status:       model.MatchStatus(r.Status),
		Player1Score: r.Player1Score,
		Player2Score: r.Player2Score,
		Winner:       model.Participant{UserID: model.UserID(r.WinnerUserID), Machine: r.WinnerMachine},
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func roundFromRecord(r *roundRecord) *model.Round {
	round := &model.Round{
		MatchID: model.MatchID(r.MatchID),
		Number:  r.Number,
		Winner:  model.RoundWinner(r.Winner),
	}
	if r.Player1Choice != "" {
		c := model.Choice(r.Player1Choice)
		round.Player1Choice = &c
	}
	if r.Player2Choice != "" {
		c := model.Choice(r.Player2Choice)
		round.Player2Choice = &c
	}
	return round
}
