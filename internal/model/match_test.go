package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParticipantZeroValue(t *testing.T) {
	var p Participant
	assert.True(t, p.IsZero())
	assert.False(t, p.IsHuman())
	assert.False(t, p.Is("user-1"))

	human := HumanParticipant("user-1")
	assert.False(t, human.IsZero())
	assert.True(t, human.IsHuman())
	assert.True(t, human.Is("user-1"))
	assert.False(t, human.Is("user-2"))

	machine := MachineParticipant()
	assert.False(t, machine.IsZero())
	assert.False(t, machine.IsHuman())
	assert.False(t, machine.Is("user-1"))
}

func TestMatchSlots(t *testing.T) {
	m := &Match{
		ID:      "match-1",
		Player1: "alice",
		Player2: HumanParticipant("bob"),
		Status:  MatchStatusPlaying,
	}

	slot, ok := m.SlotOf("alice")
	assert.True(t, ok)
	assert.Equal(t, Slot1, slot)

	slot, ok = m.SlotOf("bob")
	assert.True(t, ok)
	assert.Equal(t, Slot2, slot)

	_, ok = m.SlotOf("carol")
	assert.False(t, ok)

	assert.True(t, m.HasParticipant("alice"))
	assert.True(t, m.HasParticipant("bob"))
	assert.False(t, m.HasParticipant("carol"))

	assert.Equal(t, HumanParticipant("alice"), m.ParticipantIn(Slot1))
	assert.Equal(t, HumanParticipant("bob"), m.ParticipantIn(Slot2))
}

func TestMatchActive(t *testing.T) {
	m := &Match{Status: MatchStatusWaiting}
	assert.True(t, m.Active())

	m.Status = MatchStatusPlaying
	assert.True(t, m.Active())

	m.Status = MatchStatusFinished
	assert.False(t, m.Active())

	m.Status = MatchStatusAbandoned
	assert.False(t, m.Active())
}

func TestMatchDecided(t *testing.T) {
	m := &Match{Player1Score: 2, Player2Score: 2}
	assert.False(t, m.Decided())

	m.Player1Score = WinningScore
	assert.True(t, m.Decided())
}

func TestRoundChoices(t *testing.T) {
	r := &Round{MatchID: "match-1", Number: 1}
	assert.True(t, r.Open())
	assert.False(t, r.Complete())
	assert.Nil(t, r.ChoiceFor(Slot1))

	r.SetChoice(Slot1, ChoiceRock)
	assert.True(t, r.Open())
	assert.NotNil(t, r.ChoiceFor(Slot1))
	assert.Equal(t, ChoiceRock, *r.ChoiceFor(Slot1))

	r.SetChoice(Slot2, ChoiceScissors)
	assert.False(t, r.Open())
	assert.True(t, r.Complete())
	assert.Equal(t, ChoiceScissors, *r.ChoiceFor(Slot2))
}

func TestWinRate(t *testing.T) {
	u := &User{Wins: 0, GamesPlayed: 0}
	assert.Equal(t, 0.0, u.WinRate())

	u = &User{Wins: 3, GamesPlayed: 4}
	assert.Equal(t, 0.75, u.WinRate())
}

func TestSlotOther(t *testing.T) {
	assert.Equal(t, Slot2, Slot1.Other())
	assert.Equal(t, Slot1, Slot2.Other())
}
