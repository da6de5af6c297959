package model

import (
	"time"

	"github.com/google/uuid"
)

// MaxUsernameLength is the longest username a player may register
const MaxUsernameLength = 50

// Player is a registered account
type Player struct {
	ID           uuid.UUID
	Username     string // unique, immutable
	PasswordHash string // bcrypt hash, never returned to clients
	Experience   int
	CreatedAt    time.Time
}
