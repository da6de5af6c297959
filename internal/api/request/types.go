package request

import "github.com/musyaffa-iman/EchoShift/internal/model"

// RegisterRequest is the request body for creating a player
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RunRequest is the request body for creating, updating and ending runs.
// Every field is optional.
type RunRequest struct {
	Score        *int     `json:"score" validate:"omitnil,min=0"`
	TimeElapsed  *float64 `json:"timeElapsed" validate:"omitnil,min=0"`
	LevelReached *int     `json:"levelReached" validate:"omitnil,min=1"`
}

// Patch converts the request into a model.RunPatch
func (r RunRequest) Patch() model.RunPatch {
	return model.RunPatch{
		Score:        r.Score,
		TimeElapsed:  r.TimeElapsed,
		LevelReached: r.LevelReached,
	}
}
