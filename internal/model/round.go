package model

// Slot identifies a side of a match
type Slot string

const (
	Slot1 Slot = "player1"
	Slot2 Slot = "player2"
)

// Other returns the opposing slot
func (s Slot) Other() Slot {
	if s == Slot1 {
		return Slot2
	}
	return Slot1
}

// RoundWinner records which slot won a round, or a tie. Empty until the
// round resolves.
type RoundWinner string

const (
	RoundWinnerNone    RoundWinner = ""
	RoundWinnerPlayer1 RoundWinner = "player1"
	RoundWinnerPlayer2 RoundWinner = "player2"
	RoundWinnerTie     RoundWinner = "tie"
)

// Round is a single exchange of choices within a match. Numbers are
// 1-based and gapless. A choice pointer is nil until that side plays.
type Round struct {
	MatchID       MatchID     `json:"matchId"`
	Number        int         `json:"number"`
	Player1Choice *Choice     `json:"player1Choice,omitempty"`
	Player2Choice *Choice     `json:"player2Choice,omitempty"`
	Winner        RoundWinner `json:"winner,omitempty"`
}

// Open reports whether the round is still missing at least one choice
func (r *Round) Open() bool {
	return r.Player1Choice == nil || r.Player2Choice == nil
}

// Complete reports whether both choices are in
func (r *Round) Complete() bool {
	return r.Player1Choice != nil && r.Player2Choice != nil
}

// ChoiceFor returns the choice recorded for the slot, or nil
func (r *Round) ChoiceFor(slot Slot) *Choice {
	if slot == Slot1 {
		return r.Player1Choice
	}
	return r.Player2Choice
}

// SetChoice records a choice for the slot. It does not guard against
// overwriting; callers check ChoiceFor first.
func (r *Round) SetChoice(slot Slot, choice Choice) {
	c := choice
	if slot == Slot1 {
		r.Player1Choice = &c
	} else {
		r.Player2Choice = &c
	}
}
