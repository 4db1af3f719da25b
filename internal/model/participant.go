package model

// Participant identifies one side of a match: either a registered user
// or the built-in machine opponent. The zero value means "no one", used
// for an unfilled slot or an undecided match winner.
type Participant struct {
	UserID  UserID `json:"userId,omitempty"`
	Machine bool   `json:"machine,omitempty"`
}

// HumanParticipant wraps a user id as a match participant
func HumanParticipant(id UserID) Participant {
	return Participant{UserID: id}
}

// MachineParticipant is the built-in opponent
func MachineParticipant() Participant {
	return Participant{Machine: true}
}

// IsZero reports whether the participant is unset
func (p Participant) IsZero() bool {
	return p.UserID == "" && !p.Machine
}

// IsHuman reports whether the participant is a registered user
func (p Participant) IsHuman() bool {
	return p.UserID != ""
}

// Is reports whether the participant is the given user
func (p Participant) Is(id UserID) bool {
	return p.UserID != "" && p.UserID == id
}
