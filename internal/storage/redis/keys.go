package redis

import (
	"fmt"

	"github.com/google/uuid"
)

// Key prefix for all EchoShift data
const keyPrefix = "es"

// playerKey returns the Redis key for a Player
func playerKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// usernameIndexKey returns the Redis key for the username -> player_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// sessionKey returns the Redis key for a Session, addressed by its token
func sessionKey(token string) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, token)
}

// activeSessionsKey returns the Redis key for the SET of a player's active tokens
func activeSessionsKey(playerID uuid.UUID) string {
	return fmt.Sprintf("%s:idx:active_sessions:%s", keyPrefix, playerID)
}

// inactiveSessionsKey returns the Redis key for the SET of deactivated tokens
func inactiveSessionsKey() string {
	return fmt.Sprintf("%s:idx:inactive_sessions", keyPrefix)
}

// runKey returns the Redis key for a Run
func runKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:run:%s", keyPrefix, id)
}

// playerRunsKey returns the Redis key for the ZSET of a player's runs, scored by run score
func playerRunsKey(playerID uuid.UUID) string {
	return fmt.Sprintf("%s:idx:player_runs:%s", keyPrefix, playerID)
}
