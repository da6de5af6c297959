package model

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestNewRunAppliesDefaults(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	run := NewRun(uuid.New(), uuid.New(), RunPatch{Score: intPtr(100)}, now)

	assert.Equal(t, 100, run.Score)
	assert.Equal(t, 0.0, run.TimeElapsed)
	assert.Equal(t, 1, run.LevelReached)
	assert.Equal(t, now, run.CreatedAt)
}

func TestNewRunWithEmptyPatch(t *testing.T) {
	run := NewRun(uuid.New(), uuid.New(), RunPatch{}, time.Time{})

	assert.Equal(t, DefaultScore, run.Score)
	assert.Equal(t, DefaultTimeElapsed, run.TimeElapsed)
	assert.Equal(t, DefaultLevelReached, run.LevelReached)
}

func TestApplyOnlyOverwritesPresentFields(t *testing.T) {
	run := &Run{Score: 10, TimeElapsed: 42.5, LevelReached: 3}

	RunPatch{Score: intPtr(50)}.Apply(run)

	assert.Equal(t, 50, run.Score)
	assert.Equal(t, 42.5, run.TimeElapsed)
	assert.Equal(t, 3, run.LevelReached)
}

func TestApplyCanSetZeroValues(t *testing.T) {
	run := &Run{Score: 10, TimeElapsed: 42.5, LevelReached: 3}

	RunPatch{Score: intPtr(0), TimeElapsed: floatPtr(0)}.Apply(run)

	assert.Equal(t, 0, run.Score)
	assert.Equal(t, 0.0, run.TimeElapsed)
	assert.Equal(t, 3, run.LevelReached)
}

func TestRunPatchValidate(t *testing.T) {
	tests := []struct {
		name    string
		patch   RunPatch
		wantErr bool
	}{
		{"empty", RunPatch{}, false},
		{"all valid", RunPatch{Score: intPtr(0), TimeElapsed: floatPtr(1.5), LevelReached: intPtr(1)}, false},
		{"negative score", RunPatch{Score: intPtr(-1)}, true},
		{"negative time", RunPatch{TimeElapsed: floatPtr(-0.1)}, true},
		{"nan time", RunPatch{TimeElapsed: floatPtr(math.NaN())}, true},
		{"infinite time", RunPatch{TimeElapsed: floatPtr(math.Inf(1))}, true},
		{"level zero", RunPatch{LevelReached: intPtr(0)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSortRunsByScore(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	low := &Run{ID: uuid.New(), Score: 10, CreatedAt: base}
	high := &Run{ID: uuid.New(), Score: 50, CreatedAt: base.Add(time.Second)}
	mid := &Run{ID: uuid.New(), Score: 30, CreatedAt: base.Add(2 * time.Second)}

	runs := []*Run{low, high, mid}
	SortRunsByScore(runs)

	assert.Equal(t, []*Run{high, mid, low}, runs)
}

func TestSortRunsByScoreTieKeepsCreationOrder(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	first := &Run{ID: uuid.New(), Score: 20, CreatedAt: base}
	second := &Run{ID: uuid.New(), Score: 20, CreatedAt: base.Add(time.Minute)}

	runs := []*Run{second, first}
	SortRunsByScore(runs)

	assert.Equal(t, []*Run{first, second}, runs)
}

func TestSessionExpiredAt(t *testing.T) {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := &Session{CreatedAt: created}

	assert.False(t, s.ExpiredAt(created.Add(100*time.Hour), 0))
	assert.False(t, s.ExpiredAt(created.Add(time.Hour), 2*time.Hour))
	assert.True(t, s.ExpiredAt(created.Add(3*time.Hour), 2*time.Hour))
}

func TestValidationErrorMatchesInvalidInput(t *testing.T) {
	err := NewValidationError("username %s", "cannot be empty")

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "username cannot be empty", err.Error())

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
}
