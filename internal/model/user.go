package model

import "time"

// UserID uniquely identifies a registered user
type UserID string

// User is a registered player's public record, including lifetime stats
type User struct {
	ID          UserID    `json:"id"`
	Username    string    `json:"username"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	GamesPlayed int       `json:"gamesPlayed"`
	CreatedAt   time.Time `json:"createdAt"`
}

// WinRate is wins over games played, with games played floored at 1 so
// fresh accounts rank at zero rather than dividing by zero
func (u *User) WinRate() float64 {
	games := u.GamesPlayed
	if games < 1 {
		games = 1
	}
	return float64(u.Wins) / float64(games)
}

// Credentials holds a user's login secret, stored separately from the
// public user record
type Credentials struct {
	UserID       UserID    `json:"userId"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
