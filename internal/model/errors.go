package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Match errors
	ErrMatchNotFound       = errors.New("match not found")
	ErrNoActiveMatch       = errors.New("no active match")
	ErrAlreadyActive       = errors.New("user already has an active match")
	ErrMatchNotWaiting     = errors.New("match is not open for joining")
	ErrSelfJoin            = errors.New("cannot join your own match")
	ErrMatchNotPlaying     = errors.New("match is not in progress")
	ErrMatchAlreadyDecided = errors.New("match has already been decided")
	ErrNotParticipant      = errors.New("user is not a participant in this match")

	// Round errors
	ErrInvalidChoice = errors.New("invalid choice")
	ErrAlreadyPlayed = errors.New("choice already recorded for this round")
	ErrRoundNotFound = errors.New("round not found")
)
