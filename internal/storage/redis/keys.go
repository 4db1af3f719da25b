package redis

import (
	"fmt"

	"github.com/rpsarena/rps-arena-go/internal/model"
)

// Key prefix for all arena data
const keyPrefix = "rpsarena"

// Key generation functions for each entity type

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// usernameIndexKey returns the Redis key for the username -> user_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// credentialsKey returns the Redis key for a user's Credentials
func credentialsKey(username string) string {
	return fmt.Sprintf("%s:credentials:%s", keyPrefix, username)
}

// usersIndexKey returns the Redis key for the SET of all user ids
func usersIndexKey() string {
	return fmt.Sprintf("%s:idx:users", keyPrefix)
}

// matchKey returns the Redis key for a Match
func matchKey(id model.MatchID) string {
	return fmt.Sprintf("%s:match:%s", keyPrefix, id)
}

// activeMatchIndexKey returns the Redis key for the user_id -> active match index
func activeMatchIndexKey(userID model.UserID) string {
	return fmt.Sprintf("%s:idx:active_match:%s", keyPrefix, userID)
}

// waitingMatchesIndexKey returns the Redis key for the SET of waiting match ids
func waitingMatchesIndexKey() string {
	return fmt.Sprintf("%s:idx:waiting_matches", keyPrefix)
}

// roundKey returns the Redis key for a Round
func roundKey(matchID model.MatchID, number int) string {
	return fmt.Sprintf("%s:round:%s:%d", keyPrefix, matchID, number)
}

// roundsForMatchIndexKey returns the Redis key for the SET of rounds for a match
func roundsForMatchIndexKey(matchID model.MatchID) string {
	return fmt.Sprintf("%s:idx:rounds_for_match:%s", keyPrefix, matchID)
}
