package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/rpsarena/rps-arena-go/internal/dependencies/clock"
	"github.com/rpsarena/rps-arena-go/internal/model"
	"github.com/rpsarena/rps-arena-go/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUsernameExists     = errors.New("username already exists")
	ErrInvalidUsername    = errors.New("username must be between 3 and 50 characters")
	ErrInvalidPassword    = errors.New("password must be at least 6 characters")
)

// Username and password bounds
const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 6
)

// Session is the result of a successful register or login
type Session struct {
	Token     string
	User      model.User
	ExpiresAt time.Time
}

// Service handles registration, login and token verification
type Service struct {
	storage storage.Storage
	clock   clock.Clock

	secret        []byte
	tokenDuration time.Duration
}

// Config holds configuration for the auth service
type Config struct {
	Secret        string
	TokenDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		Secret:        "dev-secret-change-me",
		TokenDuration: 7 * 24 * time.Hour,
	}
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, cfg Config) *Service {
	if cfg.TokenDuration == 0 {
		cfg.TokenDuration = DefaultConfig().TokenDuration
	}
	if cfg.Secret == "" {
		cfg.Secret = DefaultConfig().Secret
	}
	return &Service{
		storage:       storage,
		clock:         clock,
		secret:        []byte(cfg.Secret),
		tokenDuration: cfg.TokenDuration,
	}
}

// Register creates a user account and returns a fresh session
func (s *Service) Register(ctx context.Context, username, password string) (*Session, error) {
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return nil, ErrInvalidUsername
	}
	if len(password) < minPasswordLen {
		return nil, ErrInvalidPassword
	}

	// Check if username exists
	_, err := s.storage.GetUserByUsername(ctx, username)
	if err == nil {
		return nil, ErrUsernameExists
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &model.User{
		ID:        model.UserID(generateID("u_")),
		Username:  username,
		CreatedAt: now,
	}
	creds := &model.Credentials{
		UserID:       user.ID,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	if err := s.storage.SaveCredentials(ctx, creds); err != nil {
		return nil, err
	}

	return s.issueSession(user)
}

// Login authenticates a user and returns a fresh session
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	creds, err := s.storage.GetCredentialsByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.storage.GetUser(ctx, creds.UserID)
	if err != nil {
		return nil, err
	}

	return s.issueSession(user)
}

// Verify parses a bearer token and loads the user it names
func (s *Service) Verify(ctx context.Context, tokenString string) (*model.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrInvalidToken
	}

	user, err := s.storage.GetUser(ctx, model.UserID(sub))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

// issueSession signs a token for the user
func (s *Service) issueSession(user *model.User) (*Session, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.tokenDuration)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": string(user.ID),
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &Session{
		Token:     signed,
		User:      *user,
		ExpiresAt: expiresAt,
	}, nil
}

// generateID generates a random ID with a prefix
func generateID(prefix string) string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return prefix + base64.RawURLEncoding.EncodeToString(b)
}
