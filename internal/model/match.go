package model

import "time"

// MatchID uniquely identifies a match
type MatchID string

// MatchStatus represents the lifecycle state of a match
type MatchStatus string

const (
	MatchStatusWaiting   MatchStatus = "waiting"
	MatchStatusPlaying   MatchStatus = "playing"
	MatchStatusFinished  MatchStatus = "finished"
	MatchStatusAbandoned MatchStatus = "abandoned"
)

// WinningScore is the number of round wins that decides a match
const WinningScore = 3

// Match is a best-of-five series between two participants.
// Player2 is the zero participant until someone joins (or the machine
// for machine matches). Winner is the zero participant until decided.
type Match struct {
	ID           MatchID     `json:"id"`
	Player1      UserID      `json:"player1"`
	Player2      Participant `json:"player2"`
	Status       MatchStatus `json:"status"`
	Player1Score int         `json:"player1Score"`
	Player2Score int         `json:"player2Score"`
	Winner       Participant `json:"winner"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// IsMachine reports whether the match is against the built-in opponent
func (m *Match) IsMachine() bool {
	return m.Player2.Machine
}

// Active reports whether the match is in a non-terminal state
func (m *Match) Active() bool {
	return m.Status == MatchStatusWaiting || m.Status == MatchStatusPlaying
}

// HasParticipant reports whether the user occupies either slot
func (m *Match) HasParticipant(id UserID) bool {
	return m.Player1 == id || m.Player2.Is(id)
}

// SlotOf returns the slot the user occupies, or false if they are not
// a participant
func (m *Match) SlotOf(id UserID) (Slot, bool) {
	switch {
	case m.Player1 == id:
		return Slot1, true
	case m.Player2.Is(id):
		return Slot2, true
	default:
		return "", false
	}
}

// ParticipantIn returns the participant occupying the given slot
func (m *Match) ParticipantIn(slot Slot) Participant {
	if slot == Slot1 {
		return HumanParticipant(m.Player1)
	}
	return m.Player2
}

// Decided reports whether either side has reached the winning score
func (m *Match) Decided() bool {
	return m.Player1Score >= WinningScore || m.Player2Score >= WinningScore
}
