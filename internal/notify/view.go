package notify

import (
	"time"

	"github.com/rpsarena/rps-arena-go/internal/model"
)

// Machine opponent identity as rendered to clients
const (
	MachineSentinelID  = "machine"
	MachineDisplayName = "Machine"
)

// ParticipantView is a participant as rendered to clients
type ParticipantView struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
	Machine  bool   `json:"machine,omitempty"`
}

// RoundView is one round as rendered to clients
type RoundView struct {
	Number        int     `json:"number"`
	Player1Choice *string `json:"player1Choice,omitempty"`
	Player2Choice *string `json:"player2Choice,omitempty"`
	Winner        string  `json:"winner,omitempty"`
}

// MatchView is the full client-facing projection of a match: identities,
// scores, status, winner and round history
type MatchView struct {
	ID           string           `json:"id"`
	Player1      ParticipantView  `json:"player1"`
	Player2      *ParticipantView `json:"player2,omitempty"`
	Status       string           `json:"status"`
	Player1Score int              `json:"player1Score"`
	Player2Score int              `json:"player2Score"`
	Winner       *ParticipantView `json:"winner,omitempty"`
	Rounds       []RoundView      `json:"rounds"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// OpenMatchView is a joinable match as listed on the arena lobby
type OpenMatchView struct {
	ID        string          `json:"id"`
	Player1   ParticipantView `json:"player1"`
	CreatedAt time.Time       `json:"createdAt"`
}

// participantView renders a participant, resolving usernames through the
// given lookup and giving the machine its fixed identity
func participantView(p model.Participant, usernames map[model.UserID]string) *ParticipantView {
	if p.IsZero() {
		return nil
	}
	if p.Machine {
		return &ParticipantView{
			ID:       MachineSentinelID,
			Username: MachineDisplayName,
			Machine:  true,
		}
	}
	return &ParticipantView{
		ID:       string(p.UserID),
		Username: usernames[p.UserID],
	}
}

// NewMatchView projects a match and its rounds for clients
func NewMatchView(match *model.Match, rounds []*model.Round, usernames map[model.UserID]string) MatchView {
	view := MatchView{
		ID:           string(match.ID),
		Player1:      *participantView(model.HumanParticipant(match.Player1), usernames),
		Player2:      participantView(match.Player2, usernames),
		Status:       string(match.Status),
		Player1Score: match.Player1Score,
		Player2Score: match.Player2Score,
		Winner:       participantView(match.Winner, usernames),
		Rounds:       make([]RoundView, 0, len(rounds)),
		CreatedAt:    match.CreatedAt,
		UpdatedAt:    match.UpdatedAt,
	}

	for _, round := range rounds {
		rv := RoundView{
			Number: round.Number,
			Winner: string(round.Winner),
		}
		if round.Player1Choice != nil {
			c := string(*round.Player1Choice)
			rv.Player1Choice = &c
		}
		if round.Player2Choice != nil {
			c := string(*round.Player2Choice)
			rv.Player2Choice = &c
		}
		view.Rounds = append(view.Rounds, rv)
	}

	return view
}

// NewOpenMatchView projects a waiting match for the lobby list
func NewOpenMatchView(match *model.Match, usernames map[model.UserID]string) OpenMatchView {
	return OpenMatchView{
		ID:        string(match.ID),
		Player1:   *participantView(model.HumanParticipant(match.Player1), usernames),
		CreatedAt: match.CreatedAt,
	}
}
