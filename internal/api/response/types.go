package response

import (
	"time"

	"github.com/rpsarena/rps-arena-go/internal/model"
	"github.com/rpsarena/rps-arena-go/internal/notify"
	"github.com/rpsarena/rps-arena-go/internal/services/auth"
)

// User represents a user in API responses
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	GamesPlayed int       `json:"gamesPlayed"`
	WinRate     float64   `json:"winRate"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	return User{
		ID:          string(u.ID),
		Username:    u.Username,
		Wins:        u.Wins,
		Losses:      u.Losses,
		GamesPlayed: u.GamesPlayed,
		WinRate:     u.WinRate(),
		CreatedAt:   u.CreatedAt,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		User:      UserFromModel(&s.User),
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
	}
}

// PlayResponse is the response after submitting a choice. Match and
// round views come from the same projection the event stream uses.
type PlayResponse struct {
	State         string            `json:"state"`
	MatchFinished bool              `json:"matchFinished,omitempty"`
	Match         notify.MatchView  `json:"match"`
	Round         *notify.RoundView `json:"round,omitempty"`
}
