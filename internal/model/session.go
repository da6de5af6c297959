package model

import (
	"time"

	"github.com/google/uuid"
)

// Session links an opaque bearer token to a player.
// Sessions only ever move from active to inactive; an inactive session is
// never reactivated and is eventually purged.
type Session struct {
	ID        uuid.UUID
	Token     string
	PlayerID  uuid.UUID
	IsActive  bool
	CreatedAt time.Time
}

// ExpiredAt reports whether the session is older than ttl at now.
// A non-positive ttl means sessions never expire.
func (s *Session) ExpiredAt(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(s.CreatedAt) > ttl
}
