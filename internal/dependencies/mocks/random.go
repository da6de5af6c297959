package mocks

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/musyaffa-iman/EchoShift/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
// Queued values are returned first; once a queue is drained, values are
// derived deterministically from a counter so tests stay reproducible.
type MockRandom struct {
	mu sync.Mutex

	ids    []uuid.UUID
	tokens []string
	idSeq  int
	tokSeq int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// NewID returns the next queued id, or a deterministic one if none remain
func (r *MockRandom) NewID() uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ids) > 0 {
		id := r.ids[0]
		r.ids = r.ids[1:]
		return id
	}
	r.idSeq++
	return uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "mock-id-%d", r.idSeq))
}

// Token returns the next queued token, or "token-N" if none remain
func (r *MockRandom) Token() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.tokens) > 0 {
		tok := r.tokens[0]
		r.tokens = r.tokens[1:]
		return tok
	}
	r.tokSeq++
	return fmt.Sprintf("token-%d", r.tokSeq)
}

// QueueID adds values to the NewID result queue
func (r *MockRandom) QueueID(ids ...uuid.UUID) {
	r.mu.Lock()
	r.ids = append(r.ids, ids...)
	r.mu.Unlock()
}

// QueueToken adds values to the Token result queue
func (r *MockRandom) QueueToken(tokens ...string) {
	r.mu.Lock()
	r.tokens = append(r.tokens, tokens...)
	r.mu.Unlock()
}

// Reset clears all queued results and restarts the counters
func (r *MockRandom) Reset() {
	r.mu.Lock()
	r.ids = nil
	r.tokens = nil
	r.idSeq = 0
	r.tokSeq = 0
	r.mu.Unlock()
}
