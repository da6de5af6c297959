package model

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Defaults applied to fields a client leaves out when starting a run
const (
	DefaultScore        = 0
	DefaultTimeElapsed  = 0.0
	DefaultLevelReached = 1
)

// Run is one recorded gameplay attempt
type Run struct {
	ID           uuid.UUID
	PlayerID     uuid.UUID
	Score        int
	TimeElapsed  float64 // seconds
	LevelReached int
	CreatedAt    time.Time
}

// RunPatch carries the optional fields of a run create/update request.
// Nil fields are left untouched.
type RunPatch struct {
	Score        *int
	TimeElapsed  *float64
	LevelReached *int
}

// Validate rejects values no run could hold
func (p RunPatch) Validate() error {
	if p.Score != nil && *p.Score < 0 {
		return NewValidationError("score must not be negative")
	}
	if p.TimeElapsed != nil {
		t := *p.TimeElapsed
		if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
			return NewValidationError("timeElapsed must be a non-negative number")
		}
	}
	if p.LevelReached != nil && *p.LevelReached < 1 {
		return NewValidationError("levelReached must be at least 1")
	}
	return nil
}

// Apply overwrites the fields of run that are present in the patch
func (p RunPatch) Apply(run *Run) {
	if p.Score != nil {
		run.Score = *p.Score
	}
	if p.TimeElapsed != nil {
		run.TimeElapsed = *p.TimeElapsed
	}
	if p.LevelReached != nil {
		run.LevelReached = *p.LevelReached
	}
}

// IsEmpty reports whether the patch would change nothing
func (p RunPatch) IsEmpty() bool {
	return p.Score == nil && p.TimeElapsed == nil && p.LevelReached == nil
}

// NewRun builds a run for playerID with defaults for any field the patch omits
func NewRun(id, playerID uuid.UUID, patch RunPatch, createdAt time.Time) *Run {
	run := &Run{
		ID:           id,
		PlayerID:     playerID,
		Score:        DefaultScore,
		TimeElapsed:  DefaultTimeElapsed,
		LevelReached: DefaultLevelReached,
		CreatedAt:    createdAt,
	}
	patch.Apply(run)
	return run
}

// SortRunsByScore orders runs best score first. Equal scores keep creation
// order, with the id as a final tie-break so the order is stable across stores.
func SortRunsByScore(runs []*Run) {
	slices.SortFunc(runs, func(a, b *Run) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
}
