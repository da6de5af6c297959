package random

import (
	"github.com/google/uuid"
)

// Random generates identifiers and session tokens. It can be mocked for testing.
type Random interface {
	// NewID returns a fresh entity identifier
	NewID() uuid.UUID

	// Token returns an opaque, unguessable session token
	Token() string
}

// UUIDRandom implements Random with version 4 UUIDs drawn from crypto/rand
type UUIDRandom struct{}

// New creates a new UUIDRandom
func New() *UUIDRandom {
	return &UUIDRandom{}
}

// NewID returns a random UUID
func (r *UUIDRandom) NewID() uuid.UUID {
	return uuid.New()
}

// Token returns a random UUID in its canonical string form
func (r *UUIDRandom) Token() string {
	return uuid.NewString()
}
